// Copyright (c) 2014-2015 The btcsuite developers
// Copyright (c) 2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

const (
	// DefaultMaxTransactionsPerBlock is the default transaction count limit
	// of a block.
	DefaultMaxTransactionsPerBlock = 512

	// DefaultMaxBlockSize is the default serialized size limit of a block
	// in bytes.
	DefaultMaxBlockSize = 262144

	// DefaultMaxBlockSystemFee is the default limit on the summed system
	// fees of a block in datoshi.
	DefaultMaxBlockSystemFee = 150_000 * 100_000_000
)

// Policy houses the policy (configuration parameters) which is used to control
// the generation of block templates.  See the documentation for
// NewBlockTemplate for more details on each of these parameters are used.
type Policy struct {
	// MaxTransactionsPerBlock is the maximum number of transactions a
	// template may include.
	MaxTransactionsPerBlock int

	// MaxBlockSize is the maximum serialized block size in bytes.
	MaxBlockSize int

	// MaxBlockSystemFee is the maximum summed system fee of the
	// template's transactions.
	MaxBlockSystemFee int64
}

// DefaultPolicy returns the limits a node assembles blocks with when nothing
// is overridden.
func DefaultPolicy() Policy {
	return Policy{
		MaxTransactionsPerBlock: DefaultMaxTransactionsPerBlock,
		MaxBlockSize:            DefaultMaxBlockSize,
		MaxBlockSystemFee:       DefaultMaxBlockSystemFee,
	}
}

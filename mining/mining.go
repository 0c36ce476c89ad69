// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"fmt"
	"time"

	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/chainutil"
	"github.com/r3e-network/neo-rs-sub003/wire"
)

// TxSource represents a source of transactions to consider for inclusion in
// new blocks.
//
// The interface contract requires that all of these methods are safe for
// concurrent access with respect to the source.
type TxSource interface {
	// LastUpdated returns the last time a transaction was added to or
	// removed from the source pool.
	LastUpdated() time.Time

	// SortedVerified returns up to limit verified transactions, highest
	// priority first.
	SortedVerified(limit int) []*chainutil.Tx
}

// BlockTemplate houses a block that has yet to be solved along with
// additional details about the fees.
type BlockTemplate struct {
	// Block is a block that is ready to be signed by the consensus nodes.
	Block *chainutil.Block

	// SystemFees is the sum of the system fees of the included
	// transactions.
	SystemFees int64

	// NetworkFees is the sum of the network fees of the included
	// transactions.
	NetworkFees int64
}

// NewBlockTemplate returns a block template extending prevBlock at the
// passed height.  Transactions are drawn from the source in priority order;
// assembly stops at the first transaction that would push the template over
// any of the policy limits, so lower priority transactions never jump ahead
// of a transaction that did not fit.
func NewBlockTemplate(policy *Policy, source TxSource,
	prevBlock *chainhash.Hash, height uint32,
	timestamp time.Time) (*BlockTemplate, error) {

	if policy.MaxTransactionsPerBlock <= 0 {
		return nil, fmt.Errorf("max transactions per block must be "+
			"positive, got %d", policy.MaxTransactionsPerBlock)
	}

	candidates := source.SortedVerified(policy.MaxTransactionsPerBlock)

	blockSize := wire.MaxBlockHeaderPayload +
		wire.VarIntSerializeSize(uint64(len(candidates)))
	var (
		txs        []*chainutil.Tx
		sysFees    int64
		netFees    int64
		stopReason string
	)
	for _, tx := range candidates {
		if blockSize+tx.Size() > policy.MaxBlockSize {
			stopReason = "block size"
			break
		}
		if sysFees+tx.SystemFee() > policy.MaxBlockSystemFee {
			stopReason = "block system fee"
			break
		}
		blockSize += tx.Size()
		sysFees += tx.SystemFee()
		netFees += tx.NetworkFee()
		txs = append(txs, tx)
	}
	if stopReason != "" {
		log.Debugf("Template for block %d stopped at %s limit after %d "+
			"of %d candidates", height, stopReason, len(txs),
			len(candidates))
	}

	hashes := make([]chainhash.Hash, 0, len(txs))
	for _, tx := range txs {
		hashes = append(hashes, *tx.Hash())
	}
	header := &wire.BlockHeader{
		PrevBlock:  *prevBlock,
		MerkleRoot: CalcMerkleRoot(hashes),
		Timestamp:  uint64(timestamp.UnixMilli()),
		Index:      height,
	}

	log.Debugf("Created block template for height %d with %d transactions "+
		"(system fees %v, network fees %v)", height, len(txs),
		chainutil.Amount(sysFees), chainutil.Amount(netFees))

	return &BlockTemplate{
		Block:       chainutil.NewBlockFromTxs(header, txs),
		SystemFees:  sysFees,
		NetworkFees: netFees,
	}, nil
}

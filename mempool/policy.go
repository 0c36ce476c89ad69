// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"
	"time"
)

const (
	// DefaultMaxTransactions is the default capacity of the pool across
	// both the verified and unverified sets.
	DefaultMaxTransactions = 50_000

	// DefaultMaxTransactionsPerBlock is the default number of transactions
	// a block may include.
	DefaultMaxTransactionsPerBlock = 512

	// DefaultTimePerBlock is the default target block interval.
	DefaultTimePerBlock = 15 * time.Second

	// DefaultBlocksTillRebroadcast is the number of block intervals after
	// which a reverified transaction is handed back to the relayer.
	DefaultBlocksTillRebroadcast = 10

	// DefaultRecentlyPersistedSize is the number of hashes from persisted
	// blocks remembered to reject stale resubmissions.
	DefaultRecentlyPersistedSize = 10_000
)

// Policy houses the policy (configuration parameters) which is used to
// control the mempool.
type Policy struct {
	// MaxTransactions is the ceiling on the number of pooled transactions,
	// verified and unverified combined.
	MaxTransactions int

	// MaxTransactionsPerBlock is the number of transactions a block may
	// include.  It sizes persistence-time reverification and throttles
	// reverification to one entry per call once the verified set already
	// exceeds it.  Zero disables the throttle.
	MaxTransactionsPerBlock int

	// TimePerBlock is the target block interval.  Reverification budgets
	// and the rebroadcast interval derive from it.
	TimePerBlock time.Duration

	// BlocksTillRebroadcast is the number of block intervals a reverified
	// transaction must have gone without a broadcast before it is handed
	// to the relayer again.
	BlocksTillRebroadcast int

	// RecentlyPersistedSize bounds the cache of hashes included in
	// persisted blocks.  Zero disables the AlreadyExists check.
	RecentlyPersistedSize uint
}

// DefaultPolicy returns the policy a node runs with when nothing is
// overridden.
func DefaultPolicy() Policy {
	return Policy{
		MaxTransactions:         DefaultMaxTransactions,
		MaxTransactionsPerBlock: DefaultMaxTransactionsPerBlock,
		TimePerBlock:            DefaultTimePerBlock,
		BlocksTillRebroadcast:   DefaultBlocksTillRebroadcast,
		RecentlyPersistedSize:   DefaultRecentlyPersistedSize,
	}
}

// Validate returns an error describing the first invalid policy field.
func (p *Policy) Validate() error {
	switch {
	case p.MaxTransactions <= 0:
		return fmt.Errorf("max transactions must be positive, got %d",
			p.MaxTransactions)
	case p.MaxTransactionsPerBlock < 0:
		return fmt.Errorf("max transactions per block must not be "+
			"negative, got %d", p.MaxTransactionsPerBlock)
	case p.TimePerBlock < 0:
		return fmt.Errorf("time per block must not be negative, got %v",
			p.TimePerBlock)
	case p.BlocksTillRebroadcast < 0:
		return fmt.Errorf("blocks till rebroadcast must not be negative, "+
			"got %d", p.BlocksTillRebroadcast)
	}
	return nil
}

// PersistReverifyBudget is the time reverification may spend while a block
// is being persisted.
func (p *Policy) PersistReverifyBudget() time.Duration {
	return p.TimePerBlock / 3
}

// IdleReverifyBudget is the time a single idle reverification call may
// spend.
func (p *Policy) IdleReverifyBudget() time.Duration {
	return p.TimePerBlock / 15
}

// rebroadcastInterval returns how long a verified transaction goes without
// a broadcast before it is relayed again.  The interval stretches
// proportionally once the pool holds more than a tenth of its capacity.
func (p *Policy) rebroadcastInterval(poolSize int) time.Duration {
	blocks := p.BlocksTillRebroadcast
	if blocks < 1 {
		blocks = 1
	}
	if threshold := p.MaxTransactions / 10; threshold > 0 && poolSize > threshold {
		blocks = blocks * poolSize / threshold
	}
	return p.TimePerBlock * time.Duration(blocks)
}

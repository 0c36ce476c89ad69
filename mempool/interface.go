// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"iter"
	"time"

	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/chainutil"
)

// LedgerSnapshot is an opaque handle identifying a point-in-chain ledger
// state.  The pool never inspects it beyond passing it to its collaborators,
// except that a snapshot with a Height() uint32 method enables the
// ValidUntilBlock expiry check.
type LedgerSnapshot = any

// heightReporter is implemented by ledger snapshots that know the height of
// the chain they describe.
type heightReporter interface {
	Height() uint32
}

// BalanceProvider supplies account balances as of a ledger snapshot.
type BalanceProvider interface {
	// BalanceOf returns the spendable fee balance of the account.
	BalanceOf(account chainutil.Address, snapshot LedgerSnapshot) (int64, error)
}

// AdmissionHook is consulted before any pool state is examined.  A non-nil
// error vetoes admission with PolicyFail.
type AdmissionHook interface {
	AllowTransaction(tx *chainutil.Tx, snapshot LedgerSnapshot) error
}

// Notifier receives pool events.  It is invoked after the pool lock has been
// released, so it may query the pool.
type Notifier interface {
	Notify(n *Notification)
}

// NotifierFunc adapts an ordinary function to the Notifier interface.
type NotifierFunc func(n *Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n *Notification) {
	f(n)
}

// Relayer is handed reverified transactions that are due for another
// broadcast.
type Relayer interface {
	RelayTransaction(tx *chainutil.Tx)
}

// TxMempool defines an interface that's used by other subsystems to interact
// with the mempool.
type TxMempool interface {
	// LastUpdated returns the last time a transaction was added to or
	// removed from the pool.
	LastUpdated() time.Time

	// TxDescs returns a slice of descriptors for all the transactions in
	// the pool.
	TxDescs() []*TxDesc

	// Count returns the number of pooled transactions, verified and
	// unverified.
	Count() int

	// VerifiedCount returns the number of verified transactions.
	VerifiedCount() int

	// UnverifiedCount returns the number of unverified transactions.
	UnverifiedCount() int

	// TryGet returns the pooled transaction with the passed hash.
	TryGet(hash *chainhash.Hash) (*chainutil.Tx, bool)

	// Contains returns whether the passed hash is pooled.
	Contains(hash *chainhash.Hash) bool

	// TryAdd runs admission control for the transaction.
	TryAdd(tx *chainutil.Tx, snapshot LedgerSnapshot) error

	// Remove drops the transaction from whichever set holds it.
	Remove(hash *chainhash.Hash) bool

	// SortedVerified returns up to limit verified transactions in priority
	// order.  A negative limit returns all of them.
	SortedVerified(limit int) []*chainutil.Tx

	// SortedUnverified returns up to limit unverified transactions in
	// priority order.  A negative limit returns all of them.
	SortedUnverified(limit int) []*chainutil.Tx

	// IterVerified iterates the verified transactions in priority order.
	IterVerified() iter.Seq[*chainutil.Tx]

	// IterUnverified iterates the unverified transactions in priority
	// order.
	IterUnverified() iter.Seq[*chainutil.Tx]

	// CanFit reports whether the transaction could currently be pooled
	// without being the capacity eviction victim.
	CanFit(tx *chainutil.Tx) bool

	// ReverifyTopUnverified re-validates the highest priority unverified
	// transactions and reports whether unverified work remains.
	ReverifyTopUnverified(limit int, snapshot LedgerSnapshot,
		budget time.Duration) bool

	// BlockPersisted synchronizes the pool with a newly persisted block.
	BlockPersisted(block *chainutil.Block, snapshot LedgerSnapshot,
		mode SyncMode)

	// InvalidateAllVerified moves every verified transaction to the
	// unverified set.
	InvalidateAllVerified()

	// InvalidateAll empties the pool.
	InvalidateAll()
}

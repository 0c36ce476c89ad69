// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"

	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/chainutil"
)

// SyncMode selects what BlockPersisted does with the entries that survive a
// block.
type SyncMode int

const (
	// SyncDefer parks every surviving entry in the unverified set for
	// later reverification.
	SyncDefer SyncMode = iota

	// SyncImmediateReverify reverifies every surviving entry before
	// returning.
	SyncImmediateReverify

	// SyncBoundedReverify reverifies up to MaxTransactionsPerBlock of the
	// surviving entries within the persistence budget and leaves the rest
	// unverified.
	SyncBoundedReverify
)

var syncModeStrings = map[SyncMode]string{
	SyncDefer:             "Defer",
	SyncImmediateReverify: "ImmediateReverify",
	SyncBoundedReverify:   "BoundedReverify",
}

// String returns the SyncMode in human-readable form.
func (m SyncMode) String() string {
	if s, ok := syncModeStrings[m]; ok {
		return s
	}
	return fmt.Sprintf("Unknown SyncMode (%d)", int(m))
}

// BlockPersisted synchronizes the pool with a block that was just persisted
// and the snapshot describing the ledger after it.  Included transactions
// leave the pool without an event.  Entries named by an included
// transaction's Conflicts attribute and sharing a signer with it, and
// entries that themselves name an included transaction, are removed with
// RemovalConflict.  Every other entry is then handled according to mode.
//
// Admissions are blocked until the call returns.
//
// This function is safe for concurrent access.
func (mp *TxPool) BlockPersisted(block *chainutil.Block,
	snapshot LedgerSnapshot, mode SyncMode) {

	var out poolOutput
	mp.mu.Lock()
	mp.blockPersistedLocked(block, snapshot, mode, &out)
	mp.mu.Unlock()

	mp.deliver(&out)
}

// blockPersistedLocked is the main workhorse of BlockPersisted.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) blockPersistedLocked(block *chainutil.Block,
	snapshot LedgerSnapshot, mode SyncMode, out *poolOutput) {

	var included int
	for _, tx := range block.Transactions() {
		if _, ok := mp.removeLocked(tx.Hash()); ok {
			included++
		}
		mp.persisted.Add(*tx.Hash())
	}

	stale := mp.blockConflictsLocked(block)
	out.removed(RemovalConflict, mp.removeDescsLocked(stale)...)

	mp.invalidateVerifiedLocked()

	switch mode {
	case SyncImmediateReverify:
		mp.reverifyLocked(-1, snapshot, 0, false, out)

	case SyncBoundedReverify:
		limit := mp.cfg.Policy.MaxTransactionsPerBlock
		if limit == 0 {
			limit = -1
		}
		mp.reverifyLocked(limit, snapshot,
			mp.cfg.Policy.PersistReverifyBudget(), true, out)
	}
	mp.markUpdated()

	log.Infof("Block %d (%v) persisted in %v mode: %d pooled %s "+
		"included, %d conflicting removed (verified: %d, unverified: %d)",
		block.Height(), block.Hash(), mode, included,
		pickNoun(included, "transaction", "transactions"), len(stale),
		mp.verified.len(), mp.unverified.len())
}

// blockConflictsLocked returns the pooled entries invalidated by the
// Conflicts attributes of the block's transactions, and the pooled entries
// whose own Conflicts attribute names a transaction of the block.  A block
// transaction only invalidates the entries it names when they share a
// signer with it.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) blockConflictsLocked(block *chainutil.Block) []*TxDesc {
	var stale []*TxDesc
	seen := make(map[chainhash.Hash]struct{})
	add := func(desc *TxDesc) {
		if _, ok := seen[*desc.Tx.Hash()]; ok {
			return
		}
		seen[*desc.Tx.Hash()] = struct{}{}
		stale = append(stale, desc)
	}

	for _, tx := range block.Transactions() {
		for i := range tx.Conflicts() {
			desc, ok := mp.lookup(&tx.Conflicts()[i])
			if ok && tx.SharesSigner(desc.Tx) {
				add(desc)
			}
		}
		for _, desc := range mp.declaring(tx.Hash()) {
			add(desc)
		}
	}
	return stale
}

// invalidateVerifiedLocked moves every verified entry to the unverified set
// and releases all signer charges.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) invalidateVerifiedLocked() {
	descs := mp.verified.top(-1)
	mp.verified.clear()
	mp.verifyCtx.reset()
	for _, desc := range descs {
		if !mp.unverified.add(desc.withState(StateUnverified)) {
			panic(fmt.Sprintf("transaction %v is in both sets",
				desc.Tx.Hash()))
		}
	}
}

// InvalidateAllVerified moves every verified entry to the unverified set
// without evaluating them.  The existing unverified entries are untouched.
//
// This function is safe for concurrent access.
func (mp *TxPool) InvalidateAllVerified() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	n := mp.verified.len()
	mp.invalidateVerifiedLocked()
	mp.markUpdated()
	log.Debugf("Invalidated %d verified %s", n,
		pickNoun(n, "transaction", "transactions"))
}

// InvalidateAll removes every entry from the pool without emitting events.
//
// This function is safe for concurrent access.
func (mp *TxPool) InvalidateAll() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	n := mp.countLocked()
	mp.verified.clear()
	mp.unverified.clear()
	mp.conflicts = make(conflictIndex)
	mp.verifyCtx.reset()
	mp.markUpdated()
	log.Infof("Flushed %d %s from the pool", n,
		pickNoun(n, "transaction", "transactions"))
}

// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"time"

	"github.com/google/btree"
	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/chainutil"
)

// btreeDegree is the branching factor of the priority trees.
const btreeDegree = 32

// EntryState is the partition of the pool an entry belongs to.
type EntryState int

const (
	// StateVerified entries are eligible for block inclusion.
	StateVerified EntryState = iota

	// StateUnverified entries await reverification.
	StateUnverified
)

// String returns the EntryState in human-readable form.
func (s EntryState) String() string {
	if s == StateVerified {
		return "Verified"
	}
	return "Unverified"
}

// TxDesc is a descriptor containing a transaction in the mempool along with
// additional metadata.  Descriptors are never modified once pooled; state
// transitions replace the descriptor.
type TxDesc struct {
	// Tx is the transaction associated with the entry.
	Tx *chainutil.Tx

	// Added is the time when the entry was added to the pool.
	Added time.Time

	// Sequence is the insertion order of the entry.  It is diagnostic
	// only and plays no part in priority.
	Sequence uint64

	// State is the partition currently holding the entry.
	State EntryState

	// LastBroadcast is the last time the transaction was relayed or
	// handed to the relayer.
	LastBroadcast time.Time
}

// withState returns a copy of the descriptor in the passed state.
func (d *TxDesc) withState(state EntryState) *TxDesc {
	moved := *d
	moved.State = state
	return &moved
}

// higherPriority reports whether a orders strictly before b: a higher
// fee-per-byte first, and the lower hash first among equal fee-per-byte.
func higherPriority(a, b *TxDesc) bool {
	if fa, fb := a.Tx.FeePerByte(), b.Tx.FeePerByte(); fa != fb {
		return fa > fb
	}
	return a.Tx.Hash().Compare(b.Tx.Hash()) < 0
}

// priorityIndex is a set of descriptors keyed by hash and ordered by
// priority.  The tree ascends from the highest priority entry, so Min is the
// best entry and Max the eviction candidate.
type priorityIndex struct {
	entries map[chainhash.Hash]*TxDesc
	sorted  *btree.BTreeG[*TxDesc]
}

// newPriorityIndex returns an empty priority index.
func newPriorityIndex() *priorityIndex {
	return &priorityIndex{
		entries: make(map[chainhash.Hash]*TxDesc),
		sorted:  btree.NewG[*TxDesc](btreeDegree, higherPriority),
	}
}

// add inserts the descriptor.  It returns false and leaves the index
// unchanged when the hash is already present.
func (pi *priorityIndex) add(desc *TxDesc) bool {
	hash := *desc.Tx.Hash()
	if _, ok := pi.entries[hash]; ok {
		return false
	}
	pi.entries[hash] = desc
	pi.sorted.ReplaceOrInsert(desc)
	return true
}

// replace swaps the stored descriptor for one with the same transaction.
func (pi *priorityIndex) replace(desc *TxDesc) {
	hash := *desc.Tx.Hash()
	if _, ok := pi.entries[hash]; !ok {
		return
	}
	pi.entries[hash] = desc
	pi.sorted.ReplaceOrInsert(desc)
}

// remove deletes the descriptor with the passed hash and returns it.
func (pi *priorityIndex) remove(hash *chainhash.Hash) (*TxDesc, bool) {
	desc, ok := pi.entries[*hash]
	if !ok {
		return nil, false
	}
	delete(pi.entries, *hash)
	pi.sorted.Delete(desc)
	return desc, true
}

// get returns the descriptor with the passed hash.
func (pi *priorityIndex) get(hash *chainhash.Hash) (*TxDesc, bool) {
	desc, ok := pi.entries[*hash]
	return desc, ok
}

// has reports whether the passed hash is indexed.
func (pi *priorityIndex) has(hash *chainhash.Hash) bool {
	_, ok := pi.entries[*hash]
	return ok
}

// len returns the number of indexed descriptors.
func (pi *priorityIndex) len() int {
	return len(pi.entries)
}

// top returns up to limit descriptors in priority order.  A negative limit
// returns every descriptor.
func (pi *priorityIndex) top(limit int) []*TxDesc {
	if limit < 0 || limit > pi.len() {
		limit = pi.len()
	}
	descs := make([]*TxDesc, 0, limit)
	if limit == 0 {
		return descs
	}
	pi.sorted.Ascend(func(desc *TxDesc) bool {
		descs = append(descs, desc)
		return len(descs) < limit
	})
	return descs
}

// lowest returns the descriptor with the lowest priority.
func (pi *priorityIndex) lowest() (*TxDesc, bool) {
	return pi.sorted.Max()
}

// clear empties the index.
func (pi *priorityIndex) clear() {
	pi.entries = make(map[chainhash.Hash]*TxDesc)
	pi.sorted.Clear(false)
}

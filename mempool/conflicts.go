// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"
	"slices"

	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/chainutil"
)

// conflictIndex maps a hash named by a Conflicts attribute to the pooled
// transactions declaring it.  It covers both the verified and unverified
// sets.
type conflictIndex map[chainhash.Hash]map[chainhash.Hash]struct{}

// add registers every conflict declared by the transaction.
func (ci conflictIndex) add(tx *chainutil.Tx) {
	for _, h := range tx.Conflicts() {
		declarers, ok := ci[h]
		if !ok {
			declarers = make(map[chainhash.Hash]struct{})
			ci[h] = declarers
		}
		declarers[*tx.Hash()] = struct{}{}
	}
}

// remove unregisters every conflict declared by the transaction.
func (ci conflictIndex) remove(tx *chainutil.Tx) {
	for _, h := range tx.Conflicts() {
		declarers, ok := ci[h]
		if !ok {
			continue
		}
		delete(declarers, *tx.Hash())
		if len(declarers) == 0 {
			delete(ci, h)
		}
	}
}

// declarers returns the hashes of the pooled transactions naming the passed
// hash, in ascending hash order.
func (ci conflictIndex) declarers(hash *chainhash.Hash) []chainhash.Hash {
	set := ci[*hash]
	if len(set) == 0 {
		return nil
	}
	hashes := make([]chainhash.Hash, 0, len(set))
	for h := range set {
		hashes = append(hashes, h)
	}
	slices.SortFunc(hashes, func(a, b chainhash.Hash) int {
		return a.Compare(&b)
	})
	return hashes
}

// poolView is the read access the conflict resolver needs.
type poolView interface {
	// lookup returns the pooled entry with the passed hash from either
	// set.
	lookup(hash *chainhash.Hash) (*TxDesc, bool)

	// declaring returns the pooled entries naming the passed hash in their
	// Conflicts attribute.
	declaring(hash *chainhash.Hash) []*TxDesc
}

// resolveConflicts decides whether tx may enter the pool given the entries
// it names and the entries naming it.  On acceptance it returns the entries
// that must be evicted, each at most once.  A rejection is a RuleError with
// HasConflicts and implies nothing is evicted.
//
// A transaction may only displace entries sharing one of its signers and
// only by paying a strictly higher network fee.  An entry naming tx blocks
// it only when it shares a signer and pays at least as much; any other
// declaring entry is consumed once tx is accepted.
func resolveConflicts(tx *chainutil.Tx, view poolView) ([]*TxDesc, error) {
	var evict []*TxDesc
	seen := make(map[chainhash.Hash]struct{})
	addEviction := func(desc *TxDesc) {
		if _, ok := seen[*desc.Tx.Hash()]; ok {
			return
		}
		seen[*desc.Tx.Hash()] = struct{}{}
		evict = append(evict, desc)
	}

	// Outgoing: the entries tx declares it supersedes.
	for i := range tx.Conflicts() {
		conflict := &tx.Conflicts()[i]
		desc, ok := view.lookup(conflict)
		if !ok {
			continue
		}
		if !tx.SharesSigner(desc.Tx) {
			str := fmt.Sprintf("transaction %v names conflicting "+
				"transaction %v which shares none of its signers",
				tx.Hash(), conflict)
			return nil, ruleError(HasConflicts, str)
		}
		if tx.NetworkFee() <= desc.Tx.NetworkFee() {
			str := fmt.Sprintf("transaction %v network fee %d does "+
				"not exceed fee %d of conflicting transaction %v",
				tx.Hash(), tx.NetworkFee(), desc.Tx.NetworkFee(),
				conflict)
			return nil, ruleError(HasConflicts, str)
		}
		addEviction(desc)
	}

	// Incoming: the entries declaring they supersede tx.
	for _, desc := range view.declaring(tx.Hash()) {
		if tx.SharesSigner(desc.Tx) &&
			desc.Tx.NetworkFee() >= tx.NetworkFee() {

			str := fmt.Sprintf("transaction %v is superseded by pooled "+
				"transaction %v paying network fee %d", tx.Hash(),
				desc.Tx.Hash(), desc.Tx.NetworkFee())
			return nil, ruleError(HasConflicts, str)
		}
		addEviction(desc)
	}

	return evict, nil
}

// lookup returns the pooled entry with the passed hash from either set.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) lookup(hash *chainhash.Hash) (*TxDesc, bool) {
	if desc, ok := mp.verified.get(hash); ok {
		return desc, true
	}
	return mp.unverified.get(hash)
}

// declaring returns the pooled entries that name the passed hash in a
// Conflicts attribute.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) declaring(hash *chainhash.Hash) []*TxDesc {
	hashes := mp.conflicts.declarers(hash)
	descs := make([]*TxDesc, 0, len(hashes))
	for i := range hashes {
		if desc, ok := mp.lookup(&hashes[i]); ok {
			descs = append(descs, desc)
		}
	}
	return descs
}

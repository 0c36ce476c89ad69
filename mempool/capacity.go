// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/r3e-network/neo-rs-sub003/chainutil"
)

// lowestLocked returns the lowest priority entry across both sets.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) lowestLocked() (*TxDesc, bool) {
	v, vok := mp.verified.lowest()
	u, uok := mp.unverified.lowest()
	switch {
	case !vok:
		return u, uok
	case !uok:
		return v, true
	case higherPriority(v, u):
		return u, true
	default:
		return v, true
	}
}

// enforceCapacityLocked evicts the globally lowest priority entries until
// the pool is back within capacity and returns them in eviction order.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) enforceCapacityLocked() []*TxDesc {
	var dropped []*TxDesc
	for mp.countLocked() > mp.cfg.Policy.MaxTransactions {
		lowest, ok := mp.lowestLocked()
		if !ok {
			break
		}
		mp.removeLocked(lowest.Tx.Hash())
		dropped = append(dropped, lowest)

		log.Debugf("Evicted %v transaction %v with fee-per-byte %d "+
			"(pool size: %v)", lowest.State, lowest.Tx.Hash(),
			lowest.Tx.FeePerByte(), mp.countLocked())
	}
	return dropped
}

// CanFit reports whether the transaction could be pooled right now without
// being the capacity eviction victim: the pool has room, or the
// transaction's fee-per-byte exceeds the lowest one pooled.  It has no side
// effects.
//
// This function is safe for concurrent access.
func (mp *TxPool) CanFit(tx *chainutil.Tx) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if mp.countLocked() < mp.cfg.Policy.MaxTransactions {
		return true
	}
	lowest, ok := mp.lowestLocked()
	if !ok {
		return true
	}
	return tx.FeePerByte() > lowest.Tx.FeePerByte()
}

// LowestFeePerByte returns the fee-per-byte of the lowest priority pooled
// transaction and false when the pool is empty.
//
// This function is safe for concurrent access.
func (mp *TxPool) LowestFeePerByte() (int64, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	lowest, ok := mp.lowestLocked()
	if !ok {
		return 0, false
	}
	return lowest.Tx.FeePerByte(), true
}

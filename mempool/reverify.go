// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"time"
)

// ReverifyTopUnverified re-validates up to limit of the highest priority
// unverified transactions against the passed snapshot, stopping early once
// budget has elapsed.  A non-positive budget is unbounded.  Entries that
// pass move to the verified set; entries that fail are discarded with
// RemovalFailedReverification.  When the verified set already holds more
// than Policy.MaxTransactionsPerBlock entries only one candidate is
// processed per call.
//
// It returns whether unverified transactions remain so the caller can
// schedule another pass.
//
// This function is safe for concurrent access.
func (mp *TxPool) ReverifyTopUnverified(limit int, snapshot LedgerSnapshot,
	budget time.Duration) bool {

	var out poolOutput
	mp.mu.Lock()
	if limit > 0 {
		mp.reverifyLocked(limit, snapshot, budget, true, &out)
	}
	more := mp.unverified.len() > 0
	mp.mu.Unlock()

	mp.deliver(&out)
	return more
}

// reverifyLocked is the main workhorse of ReverifyTopUnverified.  A negative
// limit considers every unverified entry.  The per-block throttle only
// applies when throttle is set.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) reverifyLocked(limit int, snapshot LedgerSnapshot,
	budget time.Duration, throttle bool, out *poolOutput) {

	if limit == 0 || mp.unverified.len() == 0 {
		return
	}

	perBlock := mp.cfg.Policy.MaxTransactionsPerBlock
	if throttle && perBlock > 0 && mp.verified.len() > perBlock {
		limit = 1
	}

	candidates := mp.unverified.top(limit)
	start := mp.cfg.Now()

	var promoted, failed []*TxDesc
	for _, cand := range candidates {
		if budget > 0 && mp.cfg.Now().Sub(start) > budget {
			log.Debugf("Reverification budget of %v exhausted after "+
				"%d of %d candidates", budget,
				len(promoted)+len(failed), len(candidates))
			break
		}

		// An earlier candidate may have consumed this one through a
		// conflict.
		if !mp.unverified.has(cand.Tx.Hash()) {
			continue
		}

		valid, evicted, err := mp.reverifyEntryLocked(cand, snapshot)
		if err != nil {
			log.Errorf("Unable to reverify transaction %v: %v",
				cand.Tx.Hash(), err)
			break
		}
		if !valid {
			mp.removeLocked(cand.Tx.Hash())
			failed = append(failed, cand)
			continue
		}
		out.removed(RemovalConflict, evicted...)
		promoted = append(promoted, cand)
	}
	out.removed(RemovalFailedReverification, failed...)
	out.removed(RemovalCapacityExceeded, mp.enforceCapacityLocked()...)
	mp.rebroadcastLocked(promoted, out)
	mp.checkInvariantsLocked()

	if len(promoted) > 0 || len(failed) > 0 {
		mp.markUpdated()
		log.Debugf("Reverified %d %s, discarded %d (verified: %d, "+
			"unverified: %d)", len(promoted),
			pickNoun(len(promoted), "transaction", "transactions"),
			len(failed), mp.verified.len(), mp.unverified.len())
	}
}

// reverifyEntryLocked re-runs the expiry, conflict and balance checks for an
// unverified entry.  On success the entry is moved to the verified set and
// the entries it displaced are removed and returned.  An error means the
// balance provider failed and nothing was changed.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) reverifyEntryLocked(desc *TxDesc,
	snapshot LedgerSnapshot) (bool, []*TxDesc, error) {

	tx := desc.Tx
	if _, expired := isExpired(tx, snapshot); expired {
		log.Debugf("Transaction %v expired at block %d", tx.Hash(),
			tx.ValidUntilBlock())
		return false, nil, nil
	}

	evict, err := resolveConflicts(tx, mp)
	if err != nil {
		log.Debugf("Reverification of %v failed: %v", tx.Hash(), err)
		return false, nil, nil
	}

	funded, err := mp.verifyCtx.checkTransaction(tx, mp.cfg.Balances,
		snapshot, evict)
	if err != nil {
		return false, nil, err
	}
	if !funded {
		log.Debugf("Reverification of %v failed: insufficient funds",
			tx.Hash())
		return false, nil, nil
	}

	evicted := mp.removeDescsLocked(evict)
	mp.removeLocked(tx.Hash())
	mp.insertLocked(desc.withState(StateVerified))
	return true, evicted, nil
}

// rebroadcastLocked queues the promoted entries that have gone a full
// rebroadcast interval without a broadcast for the relayer.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) rebroadcastLocked(promoted []*TxDesc, out *poolOutput) {
	if mp.cfg.Relayer == nil || len(promoted) == 0 {
		return
	}

	now := mp.cfg.Now()
	interval := mp.cfg.Policy.rebroadcastInterval(mp.countLocked())
	cutoff := now.Add(-interval)
	for _, desc := range promoted {
		cur, ok := mp.verified.get(desc.Tx.Hash())
		if !ok || !cur.LastBroadcast.Before(cutoff) {
			continue
		}
		updated := *cur
		updated.LastBroadcast = now
		mp.verified.replace(&updated)
		out.relays = append(out.relays, cur.Tx)
	}
}

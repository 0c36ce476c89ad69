// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/lru"
	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/chainutil"
)

// Config is a descriptor containing the memory pool configuration.
type Config struct {
	// Policy defines the various mempool configuration options related
	// to policy.
	Policy Policy

	// Balances supplies the account balances the cumulative fee check is
	// evaluated against.  It is required.
	Balances BalanceProvider

	// AdmissionHook, when set, may veto a transaction before anything
	// else is checked.
	AdmissionHook AdmissionHook

	// Notifier, when set, receives added and removed events.
	Notifier Notifier

	// Relayer, when set, is handed reverified transactions due for
	// rebroadcast.
	Relayer Relayer

	// Now returns the current time.  It defaults to time.Now and exists
	// so callers can drive reverification budgets deterministically.
	Now func() time.Time
}

// TxPool is used as a source of transactions that need to be included in
// blocks.  It keeps admitted transactions in two priority ordered sets:
// verified entries are valid against the latest ledger snapshot the pool
// was told about, unverified entries await reverification after the ledger
// moved on.  A transaction hash is never in both.
type TxPool struct {
	// The following variables must only be used atomically.
	lastUpdated atomic.Int64 // last time pool was updated

	mu         sync.RWMutex
	cfg        Config
	verified   *priorityIndex
	unverified *priorityIndex
	conflicts  conflictIndex
	verifyCtx  *verificationContext
	persisted  lru.Cache
	nextSeq    uint64
}

// Ensure the TxPool type implements the TxMempool interface.
var _ TxMempool = (*TxPool)(nil)

// New returns a new memory pool for validating and storing standalone
// transactions until they are mined into a block.
func New(cfg *Config) (*TxPool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Balances == nil {
		return nil, fmt.Errorf("Balances is required")
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}

	mp := &TxPool{
		cfg:        *cfg,
		verified:   newPriorityIndex(),
		unverified: newPriorityIndex(),
		conflicts:  make(conflictIndex),
		verifyCtx:  newVerificationContext(),
		persisted:  lru.NewCache(cfg.Policy.RecentlyPersistedSize),
	}
	if mp.cfg.Now == nil {
		mp.cfg.Now = time.Now
	}
	return mp, nil
}

// Policy returns the policy the pool was created with.
func (mp *TxPool) Policy() Policy {
	return mp.cfg.Policy
}

// countLocked returns the number of pooled transactions.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) countLocked() int {
	return mp.verified.len() + mp.unverified.len()
}

// containsLocked returns whether the passed hash is pooled in either set.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) containsLocked(hash *chainhash.Hash) bool {
	return mp.verified.has(hash) || mp.unverified.has(hash)
}

// newDescLocked wraps the transaction in a fresh descriptor.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) newDescLocked(tx *chainutil.Tx, state EntryState) *TxDesc {
	now := mp.cfg.Now()
	mp.nextSeq++
	return &TxDesc{
		Tx:            tx,
		Added:         now,
		Sequence:      mp.nextSeq,
		State:         state,
		LastBroadcast: now,
	}
}

// insertLocked adds the descriptor to the set its state names and registers
// its conflicts.  Verified entries are charged to their signers.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) insertLocked(desc *TxDesc) {
	hash := desc.Tx.Hash()
	target, other := mp.verified, mp.unverified
	if desc.State == StateUnverified {
		target, other = mp.unverified, mp.verified
	}
	if other.has(hash) || !target.add(desc) {
		panic(fmt.Sprintf("transaction %v is already pooled", hash))
	}
	if desc.State == StateVerified {
		mp.verifyCtx.addTransaction(desc.Tx)
	}
	mp.conflicts.add(desc.Tx)
}

// removeLocked removes the transaction with the passed hash from whichever
// set holds it and returns its descriptor.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) removeLocked(hash *chainhash.Hash) (*TxDesc, bool) {
	desc, ok := mp.verified.remove(hash)
	if ok {
		mp.verifyCtx.removeTransaction(desc.Tx)
	} else if desc, ok = mp.unverified.remove(hash); !ok {
		return nil, false
	}
	mp.conflicts.remove(desc.Tx)
	return desc, true
}

// removeDescsLocked removes every passed descriptor that is still pooled and
// returns the ones actually removed.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) removeDescsLocked(descs []*TxDesc) []*TxDesc {
	removed := make([]*TxDesc, 0, len(descs))
	for _, desc := range descs {
		if d, ok := mp.removeLocked(desc.Tx.Hash()); ok {
			removed = append(removed, d)
		}
	}
	return removed
}

// markUpdated records the current time as the last pool update.
func (mp *TxPool) markUpdated() {
	mp.lastUpdated.Store(mp.cfg.Now().Unix())
}

// isExpired reports whether the snapshot height has reached the transaction's
// ValidUntilBlock.  Snapshots that do not report a height never expire
// anything.
func isExpired(tx *chainutil.Tx, snapshot LedgerSnapshot) (uint32, bool) {
	hr, ok := snapshot.(heightReporter)
	if !ok {
		return 0, false
	}
	height := hr.Height()
	return height, tx.ValidUntilBlock() <= height
}

// TryAdd runs admission control for the transaction against the passed
// ledger snapshot.  A nil error means the transaction was added to the
// verified set.  Rule violations are returned as a RuleError whose Result
// identifies the failed check; ResultOf maps any returned error to a
// VerifyResult.  Entries displaced by the transaction are reported to the
// Notifier after the Added event.
//
// This function is safe for concurrent access.
func (mp *TxPool) TryAdd(tx *chainutil.Tx, snapshot LedgerSnapshot) error {
	log.Tracef("Processing transaction %v", tx.Hash())

	// The hook runs before the lock is taken so it may query the pool.
	if hook := mp.cfg.AdmissionHook; hook != nil {
		if err := hook.AllowTransaction(tx, snapshot); err != nil {
			str := fmt.Sprintf("transaction %v rejected by admission "+
				"policy: %v", tx.Hash(), err)
			return ruleError(PolicyFail, str)
		}
	}

	var out poolOutput
	mp.mu.Lock()
	err := mp.tryAddLocked(tx, snapshot, &out)
	mp.mu.Unlock()

	mp.deliver(&out)
	return err
}

// tryAddLocked is the main workhorse of TryAdd.  See its comment for
// details.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) tryAddLocked(tx *chainutil.Tx, snapshot LedgerSnapshot,
	out *poolOutput) error {

	txHash := tx.Hash()

	// Don't accept the transaction if it already exists in the pool.
	if mp.containsLocked(txHash) {
		str := fmt.Sprintf("already have transaction %v", txHash)
		return ruleError(AlreadyInPool, str)
	}

	// Don't accept the transaction if it was just included in a block.
	if mp.persisted.Contains(*txHash) {
		str := fmt.Sprintf("transaction %v was included in a recent "+
			"block", txHash)
		return ruleError(AlreadyExists, str)
	}

	if height, expired := isExpired(tx, snapshot); expired {
		str := fmt.Sprintf("transaction %v is valid until block %d, "+
			"ledger is at %d", txHash, tx.ValidUntilBlock(), height)
		return ruleError(Expired, str)
	}

	evict, err := resolveConflicts(tx, mp)
	if err != nil {
		return err
	}

	funded, err := mp.verifyCtx.checkTransaction(tx, mp.cfg.Balances,
		snapshot, evict)
	if err != nil {
		return fmt.Errorf("unable to check balances for transaction "+
			"%v: %w", txHash, err)
	}
	if !funded {
		str := fmt.Sprintf("signers of transaction %v cannot cover "+
			"its fees of %v on top of their pooled transactions",
			txHash, chainutil.Amount(tx.TotalFee()))
		return ruleError(InsufficientFunds, str)
	}

	evicted := mp.removeDescsLocked(evict)
	desc := mp.newDescLocked(tx, StateVerified)
	mp.insertLocked(desc)
	dropped := mp.enforceCapacityLocked()
	mp.markUpdated()

	admitted := true
	for _, d := range dropped {
		if d.Tx.Hash().IsEqual(txHash) {
			admitted = false
		}
	}
	if admitted {
		out.added(tx)
	}
	out.removed(RemovalConflict, evicted...)
	out.removed(RemovalCapacityExceeded, dropped...)
	mp.checkInvariantsLocked()

	if !admitted {
		str := fmt.Sprintf("transaction %v with fee-per-byte %d is the "+
			"lowest priority transaction in a full pool", txHash,
			tx.FeePerByte())
		return ruleError(OutOfMemory, str)
	}

	log.Debugf("Accepted transaction %v (pool size: %v)", txHash,
		mp.countLocked())
	if len(evicted) > 0 {
		log.Debugf("Transaction %v replaced %d conflicting %s", txHash,
			len(evicted), pickNoun(len(evicted), "transaction",
				"transactions"))
	}
	log.Tracef("%v", newLogClosure(func() string {
		return spew.Sdump(tx.MsgTx())
	}))
	return nil
}

// checkInvariantsLocked panics when the pool is over capacity.  Overlap of
// the two sets is caught on insertion.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) checkInvariantsLocked() {
	if n := mp.countLocked(); n > mp.cfg.Policy.MaxTransactions {
		panic(fmt.Sprintf("pool holds %d transactions, capacity %d", n,
			mp.cfg.Policy.MaxTransactions))
	}
}

// TryGet returns the pooled transaction with the passed hash from either
// set.
//
// This function is safe for concurrent access.
func (mp *TxPool) TryGet(hash *chainhash.Hash) (*chainutil.Tx, bool) {
	mp.mu.RLock()
	desc, ok := mp.lookup(hash)
	mp.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return desc.Tx, true
}

// Contains returns whether the passed hash is pooled, verified or not.
//
// This function is safe for concurrent access.
func (mp *TxPool) Contains(hash *chainhash.Hash) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.containsLocked(hash)
}

// Remove drops the transaction with the passed hash from whichever set holds
// it.  No event is emitted.  It returns whether anything was removed.
//
// This function is safe for concurrent access.
func (mp *TxPool) Remove(hash *chainhash.Hash) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	_, ok := mp.removeLocked(hash)
	if ok {
		mp.markUpdated()
		log.Debugf("Removed transaction %v (pool size: %v)", hash,
			mp.countLocked())
	}
	return ok
}

// VerifiedCount returns the number of verified transactions.
//
// This function is safe for concurrent access.
func (mp *TxPool) VerifiedCount() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.verified.len()
}

// UnverifiedCount returns the number of unverified transactions.
//
// This function is safe for concurrent access.
func (mp *TxPool) UnverifiedCount() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.unverified.len()
}

// Count returns the number of pooled transactions, verified and unverified.
//
// This function is safe for concurrent access.
func (mp *TxPool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.countLocked()
}

func txsOf(descs []*TxDesc) []*chainutil.Tx {
	txs := make([]*chainutil.Tx, 0, len(descs))
	for _, desc := range descs {
		txs = append(txs, desc.Tx)
	}
	return txs
}

// SortedVerified returns up to limit verified transactions, highest priority
// first.  A negative limit returns all of them.  For any k,
// SortedVerified(k) is a prefix of SortedVerified(k+m).
//
// This function is safe for concurrent access.
func (mp *TxPool) SortedVerified(limit int) []*chainutil.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return txsOf(mp.verified.top(limit))
}

// SortedUnverified returns up to limit unverified transactions, highest
// priority first.  A negative limit returns all of them.
//
// This function is safe for concurrent access.
func (mp *TxPool) SortedUnverified(limit int) []*chainutil.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return txsOf(mp.unverified.top(limit))
}

// iterate returns a sequence over the set as it is when iteration starts.
// The lock is not held while the caller's loop body runs.
func (mp *TxPool) iterate(set func() *priorityIndex) iter.Seq[*chainutil.Tx] {
	return func(yield func(*chainutil.Tx) bool) {
		mp.mu.RLock()
		descs := set().top(-1)
		mp.mu.RUnlock()

		for _, desc := range descs {
			if !yield(desc.Tx) {
				return
			}
		}
	}
}

// IterVerified iterates the verified transactions in priority order.
//
// This function is safe for concurrent access.
func (mp *TxPool) IterVerified() iter.Seq[*chainutil.Tx] {
	return mp.iterate(func() *priorityIndex { return mp.verified })
}

// IterUnverified iterates the unverified transactions in priority order.
//
// This function is safe for concurrent access.
func (mp *TxPool) IterUnverified() iter.Seq[*chainutil.Tx] {
	return mp.iterate(func() *priorityIndex { return mp.unverified })
}

// TxDescs returns a slice of descriptors for all the transactions in the
// pool, verified entries first, each set in priority order.
//
// This function is safe for concurrent access.
func (mp *TxPool) TxDescs() []*TxDesc {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	descs := mp.verified.top(-1)
	descs = append(descs, mp.unverified.top(-1)...)
	for i, desc := range descs {
		copied := *desc
		descs[i] = &copied
	}
	return descs
}

// LastUpdated returns the last time a transaction was added to or removed
// from the pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) LastUpdated() time.Time {
	return time.Unix(mp.lastUpdated.Load(), 0)
}

// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/chainutil"
	"github.com/r3e-network/neo-rs-sub003/wire"
	"github.com/stretchr/testify/require"
)

// testingT is the subset of *testing.T and *rapid.T the harness needs.
type testingT interface {
	require.TestingT
	Helper()
}

// defaultTestBalance is the balance of any account the stub has not been
// told about.  It is large enough that fees never matter unless a test sets
// a balance explicitly.
const defaultTestBalance int64 = 1 << 50

// stubBalances is a deterministic in-memory BalanceProvider.
type stubBalances struct {
	mu       sync.Mutex
	balances map[chainutil.Address]int64
}

func newStubBalances() *stubBalances {
	return &stubBalances{balances: make(map[chainutil.Address]int64)}
}

func (s *stubBalances) BalanceOf(account chainutil.Address,
	_ LedgerSnapshot) (int64, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.balances[account]; ok {
		return b, nil
	}
	return defaultTestBalance, nil
}

func (s *stubBalances) set(account chainutil.Address, balance int64) {
	s.mu.Lock()
	s.balances[account] = balance
	s.mu.Unlock()
}

// heightSnapshot is a ledger snapshot reporting its height.
type heightSnapshot struct {
	height uint32
}

func (s heightSnapshot) Height() uint32 { return s.height }

// eventRecorder collects pool notifications.
type eventRecorder struct {
	mu     sync.Mutex
	events []Notification
}

func (r *eventRecorder) Notify(n *Notification) {
	r.mu.Lock()
	r.events = append(r.events, *n)
	r.mu.Unlock()
}

// take returns and clears the recorded notifications.
func (r *eventRecorder) take() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.events
	r.events = nil
	return events
}

// removedWith returns the hashes of the removal notifications with the
// passed reason in delivery order.
func removedWith(events []Notification, reason RemovalReason) []chainhash.Hash {
	var hashes []chainhash.Hash
	for _, n := range events {
		if n.Type == NTTxRemoved && n.Reason == reason {
			hashes = append(hashes, *n.Hash())
		}
	}
	return hashes
}

// testClock is a manually driven clock.  Every call to Now advances it by
// step.
type testClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newTestClock(step time.Duration) *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0), step: step}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// testNonce makes every generated transaction unique.
var testNonce atomic.Uint32

// testAddress returns a deterministic distinct account for each index.
func testAddress(i int) chainutil.Address {
	var a chainutil.Address
	a[0] = 0xa0
	binary.BigEndian.PutUint32(a[1:], uint32(i))
	return a
}

// txOption customizes a generated transaction.
type txOption func(*wire.MsgTx)

func withConflicts(hashes ...*chainhash.Hash) txOption {
	return func(msgTx *wire.MsgTx) {
		for _, h := range hashes {
			msgTx.AddConflict(*h)
		}
	}
}

func withSystemFee(fee int64) txOption {
	return func(msgTx *wire.MsgTx) {
		msgTx.SystemFee = fee
	}
}

func withValidUntil(height uint32) txOption {
	return func(msgTx *wire.MsgTx) {
		msgTx.ValidUntilBlock = height
	}
}

func withSigners(signers ...chainutil.Address) txOption {
	return func(msgTx *wire.MsgTx) {
		msgTx.Signers = nil
		for _, s := range signers {
			msgTx.AddSigner(s, wire.ScopeCalledByEntry)
		}
	}
}

// newTestTx returns a unique transaction signed by signer paying the passed
// network fee.  A single signer transaction without attributes is 51 bytes.
func newTestTx(netFee int64, signer chainutil.Address, opts ...txOption) *chainutil.Tx {
	msgTx := wire.NewMsgTx(testNonce.Add(1), 1_000_000)
	msgTx.NetworkFee = netFee
	msgTx.AddSigner(signer, wire.ScopeCalledByEntry)
	msgTx.Script = []byte{0x40}
	for _, opt := range opts {
		opt(msgTx)
	}
	return chainutil.NewTx(msgTx)
}

// poolHarness bundles a pool with its stub collaborators.
type poolHarness struct {
	pool     *TxPool
	balances *stubBalances
	events   *eventRecorder
	clock    *testClock
}

// newPoolHarness creates a pool with default policy, stub balances and an
// event recorder.  The passed functions may adjust the config before the pool
// is created.
func newPoolHarness(t testingT, adjust ...func(*Config)) *poolHarness {
	t.Helper()

	h := &poolHarness{
		balances: newStubBalances(),
		events:   &eventRecorder{},
		clock:    newTestClock(time.Millisecond),
	}
	cfg := &Config{
		Policy:   DefaultPolicy(),
		Balances: h.balances,
		Notifier: h.events,
		Now:      h.clock.Now,
	}
	for _, f := range adjust {
		f(cfg)
	}

	pool, err := New(cfg)
	require.NoError(t, err, "failed to create test mempool")
	h.pool = pool
	return h
}

// withCapacity sets the pool capacity.
func withCapacity(n int) func(*Config) {
	return func(cfg *Config) {
		cfg.Policy.MaxTransactions = n
	}
}

// mustAdd admits the transaction and fails the test otherwise.
func (h *poolHarness) mustAdd(t testingT, txs ...*chainutil.Tx) {
	t.Helper()
	for _, tx := range txs {
		require.NoError(t, h.pool.TryAdd(tx, nil), "failed to add %v",
			tx.Hash())
	}
}

// persist builds a block at the passed height out of txs and notifies the
// pool.
func (h *poolHarness) persist(height uint32, mode SyncMode,
	snapshot LedgerSnapshot, txs ...*chainutil.Tx) {

	block := chainutil.NewBlockFromTxs(&wire.BlockHeader{Index: height}, txs)
	h.pool.BlockPersisted(block, snapshot, mode)
}

// requirePooled checks every transaction's membership and state.
func (h *poolHarness) requirePooled(t testingT, state EntryState,
	txs ...*chainutil.Tx) {

	t.Helper()
	for _, tx := range txs {
		var desc *TxDesc
		var ok bool
		h.pool.mu.RLock()
		if state == StateVerified {
			desc, ok = h.pool.verified.get(tx.Hash())
		} else {
			desc, ok = h.pool.unverified.get(tx.Hash())
		}
		h.pool.mu.RUnlock()
		require.True(t, ok, "transaction %v is not %v", tx.Hash(), state)
		require.Equal(t, state, desc.State)
	}
}

// requireAbsent checks none of the transactions are pooled.
func (h *poolHarness) requireAbsent(t testingT, txs ...*chainutil.Tx) {
	t.Helper()
	for _, tx := range txs {
		require.False(t, h.pool.Contains(tx.Hash()),
			"transaction %v is still pooled", tx.Hash())
	}
}

// checkInvariants verifies the structural invariants of the pool.
func (h *poolHarness) checkInvariants(t testingT) {
	t.Helper()

	mp := h.pool
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	require.LessOrEqual(t, mp.countLocked(), mp.cfg.Policy.MaxTransactions)
	require.Equal(t, mp.verified.len(), mp.verified.sorted.Len())
	require.Equal(t, mp.unverified.len(), mp.unverified.sorted.Len())

	fees := make(map[chainutil.Address]int64)
	for hash, desc := range mp.verified.entries {
		require.False(t, mp.unverified.has(&hash),
			"transaction %v is in both sets", hash)
		require.Equal(t, StateVerified, desc.State)
		for _, s := range desc.Tx.Signers() {
			fees[s] += desc.Tx.TotalFee()
		}
	}
	for _, desc := range mp.unverified.entries {
		require.Equal(t, StateUnverified, desc.State)
	}

	for signer, fee := range mp.verifyCtx.senderFees {
		require.Equal(t, fees[signer], fee)
	}
	for signer, fee := range fees {
		require.Equal(t, fee, mp.verifyCtx.committed(signer))
		balance, err := mp.cfg.Balances.BalanceOf(signer, nil)
		require.NoError(t, err)
		require.LessOrEqual(t, fee, balance,
			"signer %v is overcommitted", signer)
	}

	// The conflicts index names exactly the pooled declarers.
	declared := 0
	for _, declarers := range mp.conflicts {
		for hash := range declarers {
			require.True(t, mp.containsLocked(&hash),
				"conflicts index names unpooled %v", hash)
			declared++
		}
	}
	want := 0
	for _, set := range []*priorityIndex{mp.verified, mp.unverified} {
		for _, desc := range set.entries {
			want += len(uniqueHashes(desc.Tx.Conflicts()))
		}
	}
	require.Equal(t, want, declared)
}

func uniqueHashes(hashes []chainhash.Hash) map[chainhash.Hash]struct{} {
	set := make(map[chainhash.Hash]struct{})
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	return set
}

// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"path/filepath"
	"testing"

	"github.com/r3e-network/neo-rs-sub003/chainutil"
	"github.com/r3e-network/neo-rs-sub003/mempool"
	"github.com/r3e-network/neo-rs-sub003/wire"
	"github.com/stretchr/testify/require"
)

// forEachDbType runs f against a fresh store of every supported engine.
func forEachDbType(t *testing.T, f func(t *testing.T, s *Store)) {
	for _, dbType := range SupportedDbTypes {
		t.Run(dbType, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "ledger")
			s, err := Open(dbType, path)
			require.NoError(t, err, "failed to open ledger")
			t.Cleanup(func() { s.Close() })
			f(t, s)
		})
	}
}

func account(b byte) chainutil.Address {
	return chainutil.Address{b}
}

func feeTx(sender chainutil.Address, sysFee, netFee int64) *chainutil.Tx {
	msgTx := wire.NewMsgTx(uint32(sysFee+netFee), 100)
	msgTx.SystemFee = sysFee
	msgTx.NetworkFee = netFee
	msgTx.AddSigner(sender, wire.ScopeCalledByEntry)
	return chainutil.NewTx(msgTx)
}

func block(height uint32, txs ...*chainutil.Tx) *chainutil.Block {
	return chainutil.NewBlockFromTxs(&wire.BlockHeader{Index: height}, txs)
}

func TestOpenUnknownType(t *testing.T) {
	t.Parallel()

	_, err := Open("bolt", t.TempDir())
	require.ErrorIs(t, err, ErrUnknownDbType)
}

func TestCreditAndSnapshots(t *testing.T) {
	t.Parallel()

	forEachDbType(t, func(t *testing.T, s *Store) {
		alice := account(1)

		before, err := s.Snapshot()
		require.NoError(t, err)
		defer before.Release()

		require.NoError(t, s.Credit(alice, 500))
		require.NoError(t, s.Credit(alice, 250))
		require.Error(t, s.Credit(alice, -1))

		// Snapshots are isolated from later writes.
		balance, err := before.Balance(alice)
		require.NoError(t, err)
		require.Zero(t, balance)

		balance, err = s.BalanceOf(alice, nil)
		require.NoError(t, err)
		require.Equal(t, int64(750), balance)

		_, err = s.BalanceOf(alice, "not a snapshot")
		require.Error(t, err)

		var funded []chainutil.Address
		require.NoError(t, s.Credit(account(0), 1))
		after, err := s.Snapshot()
		require.NoError(t, err)
		defer after.Release()
		require.NoError(t, after.Balances(func(a chainutil.Address,
			_ int64) error {

			funded = append(funded, a)
			return nil
		}))
		require.Equal(t, []chainutil.Address{account(0), alice}, funded)
	})
}

func TestPersistBlock(t *testing.T) {
	t.Parallel()

	forEachDbType(t, func(t *testing.T, s *Store) {
		alice, bob := account(1), account(2)
		require.NoError(t, s.Credit(alice, 1000))
		require.NoError(t, s.Credit(bob, 100))

		height, err := s.Height()
		require.NoError(t, err)
		require.Zero(t, height)

		require.NoError(t, s.PersistBlock(block(1,
			feeTx(alice, 100, 200), feeTx(alice, 0, 300))))

		snap, err := s.Snapshot()
		require.NoError(t, err)
		require.Equal(t, uint32(1), snap.Height())
		balance, err := s.BalanceOf(alice, snap)
		require.NoError(t, err)
		require.Equal(t, int64(400), balance)
		snap.Release()

		// A block that overdraws any sender changes nothing.
		err = s.PersistBlock(block(2, feeTx(alice, 0, 100),
			feeTx(bob, 0, 101)))
		require.ErrorIs(t, err, ErrInsufficientBalance)

		height, err = s.Height()
		require.NoError(t, err)
		require.Equal(t, uint32(1), height)
		balance, err = s.BalanceOf(alice, nil)
		require.NoError(t, err)
		require.Equal(t, int64(400), balance)
	})
}

// TestMempoolIntegration drives a pool with the ledger as its balance
// provider.
func TestMempoolIntegration(t *testing.T) {
	t.Parallel()

	forEachDbType(t, func(t *testing.T, s *Store) {
		alice := account(1)
		require.NoError(t, s.Credit(alice, 250))

		pool, err := mempool.New(&mempool.Config{
			Policy:   mempool.DefaultPolicy(),
			Balances: s,
		})
		require.NoError(t, err, "failed to create mempool")

		snap, err := s.Snapshot()
		require.NoError(t, err)
		tx1 := feeTx(alice, 0, 200)
		tx2 := feeTx(alice, 0, 100)
		require.NoError(t, pool.TryAdd(tx1, snap))
		require.Equal(t, mempool.InsufficientFunds,
			mempool.ResultOf(pool.TryAdd(tx2, snap)))
		snap.Release()

		// Once tx1 is persisted it no longer counts against the
		// pool, so a top up makes tx2 affordable.
		b := block(1, tx1)
		require.NoError(t, s.PersistBlock(b))
		require.NoError(t, s.Credit(alice, 100))
		snap, err = s.Snapshot()
		require.NoError(t, err)
		defer snap.Release()
		pool.BlockPersisted(b, snap, mempool.SyncImmediateReverify)

		require.NoError(t, pool.TryAdd(tx2, snap))
		require.Equal(t, mempool.AlreadyExists,
			mempool.ResultOf(pool.TryAdd(tx1, snap)))

		// Transactions valid until the current height are expired.
		stale := wire.NewMsgTx(7, 1)
		stale.AddSigner(alice, wire.ScopeCalledByEntry)
		require.Equal(t, mempool.Expired, mempool.ResultOf(
			pool.TryAdd(chainutil.NewTx(stale), snap)))
	})
}

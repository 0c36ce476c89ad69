// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"iter"
	"time"

	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/chainutil"
	"github.com/stretchr/testify/mock"
)

// MockBalanceProvider is a mock implementation of the BalanceProvider
// interface.
type MockBalanceProvider struct {
	mock.Mock
}

// Ensure the MockBalanceProvider implements the BalanceProvider interface.
var _ BalanceProvider = (*MockBalanceProvider)(nil)

// BalanceOf returns the mocked balance of the account.
func (m *MockBalanceProvider) BalanceOf(account chainutil.Address,
	snapshot LedgerSnapshot) (int64, error) {

	args := m.Called(account, snapshot)
	return args.Get(0).(int64), args.Error(1)
}

// MockAdmissionHook is a mock implementation of the AdmissionHook
// interface.
type MockAdmissionHook struct {
	mock.Mock
}

// Ensure the MockAdmissionHook implements the AdmissionHook interface.
var _ AdmissionHook = (*MockAdmissionHook)(nil)

// AllowTransaction returns the mocked verdict for the transaction.
func (m *MockAdmissionHook) AllowTransaction(tx *chainutil.Tx,
	snapshot LedgerSnapshot) error {

	args := m.Called(tx, snapshot)
	return args.Error(0)
}

// MockRelayer is a mock implementation of the Relayer interface.
type MockRelayer struct {
	mock.Mock
}

// Ensure the MockRelayer implements the Relayer interface.
var _ Relayer = (*MockRelayer)(nil)

// RelayTransaction records the relay request.
func (m *MockRelayer) RelayTransaction(tx *chainutil.Tx) {
	m.Called(tx)
}

// MockTxMempool is a mock implementation of the TxMempool interface.
type MockTxMempool struct {
	mock.Mock
}

// Ensure the MockTxMempool implements the TxMempool interface.
var _ TxMempool = (*MockTxMempool)(nil)

// LastUpdated returns the last time a transaction was added to or removed from
// the source pool.
func (m *MockTxMempool) LastUpdated() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

// TxDescs returns a slice of descriptors for all the transactions in the pool.
func (m *MockTxMempool) TxDescs() []*TxDesc {
	args := m.Called()
	return args.Get(0).([]*TxDesc)
}

// Count returns the number of pooled transactions.
func (m *MockTxMempool) Count() int {
	args := m.Called()
	return args.Int(0)
}

// VerifiedCount returns the number of verified transactions.
func (m *MockTxMempool) VerifiedCount() int {
	args := m.Called()
	return args.Int(0)
}

// UnverifiedCount returns the number of unverified transactions.
func (m *MockTxMempool) UnverifiedCount() int {
	args := m.Called()
	return args.Int(0)
}

// TryGet returns the requested transaction from the pool.
func (m *MockTxMempool) TryGet(hash *chainhash.Hash) (*chainutil.Tx, bool) {
	args := m.Called(hash)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*chainutil.Tx), args.Bool(1)
}

// Contains returns whether the passed hash is pooled.
func (m *MockTxMempool) Contains(hash *chainhash.Hash) bool {
	args := m.Called(hash)
	return args.Bool(0)
}

// TryAdd runs admission control for the transaction.
func (m *MockTxMempool) TryAdd(tx *chainutil.Tx, snapshot LedgerSnapshot) error {
	args := m.Called(tx, snapshot)
	return args.Error(0)
}

// Remove drops the transaction from the pool.
func (m *MockTxMempool) Remove(hash *chainhash.Hash) bool {
	args := m.Called(hash)
	return args.Bool(0)
}

// SortedVerified returns up to limit verified transactions.
func (m *MockTxMempool) SortedVerified(limit int) []*chainutil.Tx {
	args := m.Called(limit)
	return args.Get(0).([]*chainutil.Tx)
}

// SortedUnverified returns up to limit unverified transactions.
func (m *MockTxMempool) SortedUnverified(limit int) []*chainutil.Tx {
	args := m.Called(limit)
	return args.Get(0).([]*chainutil.Tx)
}

// IterVerified iterates the verified transactions.
func (m *MockTxMempool) IterVerified() iter.Seq[*chainutil.Tx] {
	args := m.Called()
	return args.Get(0).(iter.Seq[*chainutil.Tx])
}

// IterUnverified iterates the unverified transactions.
func (m *MockTxMempool) IterUnverified() iter.Seq[*chainutil.Tx] {
	args := m.Called()
	return args.Get(0).(iter.Seq[*chainutil.Tx])
}

// CanFit reports whether the transaction fits in the pool.
func (m *MockTxMempool) CanFit(tx *chainutil.Tx) bool {
	args := m.Called(tx)
	return args.Bool(0)
}

// ReverifyTopUnverified re-validates unverified transactions.
func (m *MockTxMempool) ReverifyTopUnverified(limit int,
	snapshot LedgerSnapshot, budget time.Duration) bool {

	args := m.Called(limit, snapshot, budget)
	return args.Bool(0)
}

// BlockPersisted synchronizes the pool with a persisted block.
func (m *MockTxMempool) BlockPersisted(block *chainutil.Block,
	snapshot LedgerSnapshot, mode SyncMode) {

	m.Called(block, snapshot, mode)
}

// InvalidateAllVerified moves every verified transaction to the unverified
// set.
func (m *MockTxMempool) InvalidateAllVerified() {
	m.Called()
}

// InvalidateAll empties the pool.
func (m *MockTxMempool) InvalidateAll() {
	m.Called()
}

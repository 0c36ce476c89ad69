// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/r3e-network/neo-rs-sub003/chainutil"
	"github.com/r3e-network/neo-rs-sub003/database/engine"
	"github.com/r3e-network/neo-rs-sub003/database/engine/leveldb"
	"github.com/r3e-network/neo-rs-sub003/database/engine/pebbledb"
	"github.com/r3e-network/neo-rs-sub003/mempool"
)

const (
	// balancePrefix prefixes the account keys.
	balancePrefix = 'b'

	// DefaultDbType is the engine used when none is named.
	DefaultDbType = "leveldb"
)

// heightKey stores the index of the last persisted block.
var heightKey = []byte("h")

var (
	// ErrUnknownDbType is returned by Open for an unsupported engine.
	ErrUnknownDbType = errors.New("ledger: unknown database type")

	// ErrInsufficientBalance is returned when a block debits an account
	// below zero.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
)

// SupportedDbTypes lists the engines Open accepts.
var SupportedDbTypes = []string{"leveldb", "pebble"}

// Store is an account ledger persisted in a storage engine.  Writes are
// serialized; reads go through snapshots and never block.
type Store struct {
	mu sync.Mutex // serializes writers
	db engine.Engine
}

// Ensure the Store type implements the mempool BalanceProvider interface.
var _ mempool.BalanceProvider = (*Store)(nil)

// Open opens or creates the ledger at path with the named engine.
func Open(dbType, path string) (*Store, error) {
	var (
		db  engine.Engine
		err error
	)
	switch dbType {
	case "leveldb":
		db, err = leveldb.NewDB(path, false)
	case "pebble":
		db, err = pebbledb.NewDB(path, false, 0, 0)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDbType, dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open %s ledger at %s: %w",
			dbType, path, err)
	}

	log.Infof("Opened %s ledger at %s", dbType, path)
	return New(db), nil
}

// New returns a ledger over an already opened engine.
func New(db engine.Engine) *Store {
	return &Store{db: db}
}

// Close closes the underlying engine.
func (s *Store) Close() error {
	return s.db.Close()
}

func balanceKey(account chainutil.Address) []byte {
	key := make([]byte, 1+len(account))
	key[0] = balancePrefix
	copy(key[1:], account[:])
	return key
}

func encodeInt64(v int64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return b[:]
}

func decodeInt64(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("malformed ledger value of %d bytes", len(b))
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// Snapshot is a consistent read view of the ledger.  It must be released
// once no longer needed.
type Snapshot struct {
	snap   engine.Snapshot
	height uint32
}

// Snapshot returns a view of the ledger as of now.
func (s *Store) Snapshot() (*Snapshot, error) {
	snap, err := s.db.Snapshot()
	if err != nil {
		return nil, err
	}

	height, err := readHeight(snap)
	if err != nil {
		snap.Release()
		return nil, err
	}
	return &Snapshot{snap: snap, height: height}, nil
}

func readHeight(snap engine.Snapshot) (uint32, error) {
	b, err := snap.Get(heightKey)
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return 0, nil
	case err != nil:
		return 0, err
	case len(b) != 4:
		return 0, fmt.Errorf("malformed height of %d bytes", len(b))
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Height returns the index of the last persisted block.
func (s *Snapshot) Height() uint32 {
	return s.height
}

// Balance returns the fee balance of the account.  Unknown accounts have a
// zero balance.
func (s *Snapshot) Balance(account chainutil.Address) (int64, error) {
	b, err := s.snap.Get(balanceKey(account))
	if errors.Is(err, engine.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return decodeInt64(b)
}

// Balances iterates every funded account in key order.
func (s *Snapshot) Balances(fn func(chainutil.Address, int64) error) error {
	iter := s.snap.NewIterator(engine.BytesPrefix([]byte{balancePrefix}))
	defer iter.Release()

	for iter.Next() {
		var account chainutil.Address
		copy(account[:], iter.Key()[1:])
		balance, err := decodeInt64(iter.Value())
		if err != nil {
			return err
		}
		if err := fn(account, balance); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Release frees the snapshot.
func (s *Snapshot) Release() {
	s.snap.Release()
}

// BalanceOf returns the balance of the account as of the passed snapshot,
// which must be a *Snapshot from this store or nil for the current state.
//
// This function is safe for concurrent access.
func (s *Store) BalanceOf(account chainutil.Address,
	snapshot mempool.LedgerSnapshot) (int64, error) {

	switch snap := snapshot.(type) {
	case *Snapshot:
		return snap.Balance(account)
	case nil:
		cur, err := s.Snapshot()
		if err != nil {
			return 0, err
		}
		defer cur.Release()
		return cur.Balance(account)
	default:
		return 0, fmt.Errorf("unsupported ledger snapshot %T", snapshot)
	}
}

// Height returns the index of the last persisted block.
func (s *Store) Height() (uint32, error) {
	snap, err := s.db.Snapshot()
	if err != nil {
		return 0, err
	}
	defer snap.Release()
	return readHeight(snap)
}

// Credit adds amount to the account's balance.
func (s *Store) Credit(account chainutil.Address, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("cannot credit negative amount %d", amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(view *pendingView) error {
		balance, err := view.balance(account)
		if err != nil {
			return err
		}
		view.setBalance(account, balance+amount)
		return nil
	})
}

// PersistBlock applies the block: each transaction's sender is debited its
// system and network fee and the ledger height becomes the block's index.
// Nothing is written when any sender cannot pay.
func (s *Store) PersistBlock(block *chainutil.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.update(func(view *pendingView) error {
		for _, tx := range block.Transactions() {
			sender := tx.Sender()
			balance, err := view.balance(sender)
			if err != nil {
				return err
			}
			if balance < tx.TotalFee() {
				return fmt.Errorf("%w: sender %v of transaction %v "+
					"has %v, needs %v", ErrInsufficientBalance,
					sender, tx.Hash(), chainutil.Amount(balance),
					chainutil.Amount(tx.TotalFee()))
			}
			view.setBalance(sender, balance-tx.TotalFee())
		}
		view.height = block.Height()
		view.heightSet = true
		return nil
	})
	if err != nil {
		return err
	}

	log.Debugf("Persisted block %d (%v) with %d transactions",
		block.Height(), block.Hash(), len(block.Transactions()))
	return nil
}

// pendingView overlays uncommitted balance changes on a snapshot.
type pendingView struct {
	snap      *Snapshot
	balances  map[chainutil.Address]int64
	height    uint32
	heightSet bool
}

func (v *pendingView) balance(account chainutil.Address) (int64, error) {
	if b, ok := v.balances[account]; ok {
		return b, nil
	}
	return v.snap.Balance(account)
}

func (v *pendingView) setBalance(account chainutil.Address, balance int64) {
	v.balances[account] = balance
}

// update runs fn against a pending view and commits the resulting changes
// in one transaction.
//
// This function MUST be called with the store lock held.
func (s *Store) update(fn func(*pendingView) error) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	defer snap.Release()

	view := &pendingView{
		snap:     snap,
		balances: make(map[chainutil.Address]int64),
	}
	if err := fn(view); err != nil {
		return err
	}

	tx, err := s.db.Transaction()
	if err != nil {
		return err
	}
	defer tx.Discard()

	for account, balance := range view.balances {
		if err := tx.Put(balanceKey(account), encodeInt64(balance)); err != nil {
			return err
		}
	}
	if view.heightSet {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], view.height)
		if err := tx.Put(heightKey, b[:]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

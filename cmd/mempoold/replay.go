// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/chainutil"
	mlog "github.com/r3e-network/neo-rs-sub003/internal/log"
	"github.com/r3e-network/neo-rs-sub003/ledger"
	"github.com/r3e-network/neo-rs-sub003/mempool"
	"github.com/r3e-network/neo-rs-sub003/mining"
	"github.com/r3e-network/neo-rs-sub003/wire"
)

// maxRecordSize bounds a single replay line.  It leaves room for a hex
// encoded transaction of the maximum size.
const maxRecordSize = 4 * wire.MaxTransactionSize

// defaultScript is the invocation script of transactions built from fields.
var defaultScript = []byte{0x40}

// record is one line of a replay file.  Op selects which of the remaining
// fields are read.
//
//	fund       account, amount
//	tx         raw, or signers, netfee, sysfee, validuntil, nonce, conflicts
//	block      mode (optional)
//	reverify   limit
//	remove     hash
//	invalidate all
type record struct {
	Op         string              `json:"op"`
	Account    chainutil.Address   `json:"account"`
	Amount     int64               `json:"amount"`
	Raw        string              `json:"raw"`
	Signers    []chainutil.Address `json:"signers"`
	NetFee     int64               `json:"netfee"`
	SysFee     int64               `json:"sysfee"`
	ValidUntil uint32              `json:"validuntil"`
	Nonce      uint32              `json:"nonce"`
	Conflicts  []chainhash.Hash    `json:"conflicts"`
	Mode       string              `json:"mode"`
	Limit      int                 `json:"limit"`
	Hash       chainhash.Hash      `json:"hash"`
	All        bool                `json:"all"`
}

// result is written for every replayed record.
type result struct {
	Line       int    `json:"line"`
	Op         string `json:"op"`
	Hash       string `json:"hash,omitempty"`
	Result     string `json:"result,omitempty"`
	Height     uint32 `json:"height,omitempty"`
	Included   int    `json:"included,omitempty"`
	Verified   int    `json:"verified"`
	Unverified int    `json:"unverified"`
}

// replayer applies replay records to a pool backed by a ledger store.
type replayer struct {
	pool      *mempool.TxPool
	store     *ledger.Store
	mode      mempool.SyncMode
	mining    mining.Policy
	prevBlock chainhash.Hash
	now       func() time.Time
}

// newReplayer returns a replayer persisting blocks with the passed default
// sync mode.  Block templates are limited to maxTxPerBlock transactions,
// or the mining default when it is not positive.
func newReplayer(pool *mempool.TxPool, store *ledger.Store,
	mode mempool.SyncMode, maxTxPerBlock int) *replayer {

	policy := mining.DefaultPolicy()
	if maxTxPerBlock > 0 {
		policy.MaxTransactionsPerBlock = maxTxPerBlock
	}
	return &replayer{
		pool:   pool,
		store:  store,
		mode:   mode,
		mining: policy,
		now:    time.Now,
	}
}

// Run reads records from r until EOF and writes one result per record to w.
// It stops at the first malformed record or failed operation.  Transactions
// the pool rejects are reported in their result and are not failures.
func (rp *replayer) Run(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	enc := json.NewEncoder(w)

	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 || data[0] == '#' {
			continue
		}

		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		log.Tracef("Replaying line %d: %v", line, newLogClosure(func() string {
			return spew.Sdump(rec)
		}))

		res, err := rp.apply(&rec)
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", line, rec.Op, err)
		}
		res.Line = line
		res.Op = rec.Op
		res.Verified = rp.pool.VerifiedCount()
		res.Unverified = rp.pool.UnverifiedCount()
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// apply executes a single record.
func (rp *replayer) apply(rec *record) (*result, error) {
	switch rec.Op {
	case "fund":
		if err := rp.store.Credit(rec.Account, rec.Amount); err != nil {
			return nil, err
		}
		return &result{}, nil

	case "tx":
		tx, err := rec.transaction()
		if err != nil {
			return nil, err
		}
		return rp.submit(tx)

	case "block":
		return rp.persistBlock(rec.Mode)

	case "reverify":
		return rp.reverify(rec.Limit)

	case "remove":
		res := &result{Hash: rec.Hash.String(), Result: "NotFound"}
		if rp.pool.Remove(&rec.Hash) {
			res.Result = "Removed"
		}
		return res, nil

	case "invalidate":
		if rec.All {
			rp.pool.InvalidateAll()
		} else {
			rp.pool.InvalidateAllVerified()
		}
		return &result{}, nil

	default:
		return nil, fmt.Errorf("unknown operation %q", rec.Op)
	}
}

// transaction decodes or builds the transaction a tx record describes.
func (rec *record) transaction() (*chainutil.Tx, error) {
	if rec.Raw != "" {
		serialized, err := hex.DecodeString(rec.Raw)
		if err != nil {
			return nil, err
		}
		return chainutil.NewTxFromBytes(serialized)
	}

	if len(rec.Signers) == 0 {
		return nil, fmt.Errorf("transaction needs raw bytes or at " +
			"least one signer")
	}
	msgTx := wire.NewMsgTx(rec.Nonce, rec.ValidUntil)
	msgTx.NetworkFee = rec.NetFee
	msgTx.SystemFee = rec.SysFee
	for i, signer := range rec.Signers {
		for _, prev := range rec.Signers[:i] {
			if prev == signer {
				return nil, fmt.Errorf("duplicate signer %v", signer)
			}
		}
		msgTx.AddSigner(signer, wire.ScopeCalledByEntry)
	}
	for _, hash := range rec.Conflicts {
		msgTx.AddConflict(hash)
	}
	msgTx.Script = defaultScript
	return chainutil.NewTx(msgTx), nil
}

// submit offers the transaction to the pool against the current ledger.
func (rp *replayer) submit(tx *chainutil.Tx) (*result, error) {
	snap, err := rp.store.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	err = rp.pool.TryAdd(tx, snap)
	return &result{
		Hash:   tx.Hash().String(),
		Result: mempool.ResultOf(err).String(),
	}, nil
}

// persistBlock assembles a block from the verified set, applies it to the
// ledger and synchronizes the pool with the result.
func (rp *replayer) persistBlock(modeName string) (*result, error) {
	mode := rp.mode
	if modeName != "" {
		m, ok := syncModes[modeName]
		if !ok {
			return nil, fmt.Errorf("unknown sync mode %q", modeName)
		}
		mode = m
	}

	height, err := rp.store.Height()
	if err != nil {
		return nil, err
	}
	template, err := mining.NewBlockTemplate(&rp.mining, rp.pool,
		&rp.prevBlock, height+1, rp.now())
	if err != nil {
		return nil, err
	}
	block := template.Block
	if err := rp.store.PersistBlock(block); err != nil {
		return nil, err
	}
	rp.prevBlock = *block.Hash()

	snap, err := rp.store.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Release()
	rp.pool.BlockPersisted(block, snap, mode)

	log.Infof("Persisted block %d with %d %s (%v)", block.Height(),
		len(block.Transactions()),
		mlog.PickNoun(uint64(len(block.Transactions())), "transaction",
			"transactions"),
		mode)
	return &result{
		Hash:     block.Hash().String(),
		Height:   block.Height(),
		Included: len(block.Transactions()),
	}, nil
}

// reverify runs one idle reverification round against the current ledger.
func (rp *replayer) reverify(limit int) (*result, error) {
	snap, err := rp.store.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	if limit <= 0 {
		limit = rp.mining.MaxTransactionsPerBlock
	}
	policy := rp.pool.Policy()
	more := rp.pool.ReverifyTopUnverified(limit, snap,
		policy.IdleReverifyBudget())
	res := &result{Result: "Done"}
	if more {
		res.Result = "More"
	}
	return res, nil
}

// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/r3e-network/neo-rs-sub003/chainutil"
	"github.com/r3e-network/neo-rs-sub003/ledger"
	"github.com/r3e-network/neo-rs-sub003/mempool"
	"github.com/r3e-network/neo-rs-sub003/wire"
	"github.com/stretchr/testify/require"
)

var (
	alice = chainutil.Address{0xa1}
	bob   = chainutil.Address{0xb0}
)

// newTestReplayer returns a replayer over a fresh leveldb ledger.
func newTestReplayer(t *testing.T, mode mempool.SyncMode) *replayer {
	t.Helper()

	store, err := ledger.Open("leveldb", t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config{
		MaxTx:                 100,
		MaxTxPerBlock:         10,
		TimePerBlock:          time.Second,
		BlocksTillRebroadcast: 1,
	}
	pool, cleanup, err := newPool(cfg, store)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	rp := newReplayer(pool, store, mode, cfg.MaxTxPerBlock)
	rp.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return rp
}

// txLine returns a tx record built from fields.
func txLine(signer chainutil.Address, netFee int64, nonce, validUntil uint32) string {
	return fmt.Sprintf(`{"op":"tx","signers":["%v"],"netfee":%d,"nonce":%d,"validuntil":%d}`,
		signer, netFee, nonce, validUntil)
}

// decodeResults parses every result line written by a replay.
func decodeResults(t *testing.T, r io.Reader) []result {
	t.Helper()

	var results []result
	dec := json.NewDecoder(r)
	for {
		var res result
		err := dec.Decode(&res)
		if err == io.EOF {
			return results
		}
		require.NoError(t, err)
		results = append(results, res)
	}
}

// TestReplay drives a pool and ledger through funding, admission, block
// persistence and reverification.
func TestReplay(t *testing.T) {
	t.Parallel()

	rp := newTestReplayer(t, mempool.SyncDefer)

	var removed record
	require.NoError(t, json.Unmarshal([]byte(txLine(bob, 100, 6, 100)), &removed))
	removedTx, err := removed.transaction()
	require.NoError(t, err)

	script := strings.Join([]string{
		fmt.Sprintf(`{"op":"fund","account":"%v","amount":1000}`, alice),
		txLine(alice, 200, 1, 100),
		txLine(bob, 100, 2, 100),
		`{"op":"block"}`,
		"",
		"# resubmitting an included transaction",
		txLine(alice, 200, 1, 100),
		txLine(alice, 900, 3, 100),
		txLine(alice, 300, 4, 1),
		txLine(alice, 300, 5, 100),
		fmt.Sprintf(`{"op":"fund","account":"%v","amount":100}`, bob),
		txLine(bob, 100, 6, 100),
		`{"op":"invalidate"}`,
		`{"op":"reverify","limit":10}`,
		fmt.Sprintf(`{"op":"remove","hash":"%v"}`, removedTx.Hash()),
		fmt.Sprintf(`{"op":"remove","hash":"%v"}`, removedTx.Hash()),
		`{"op":"block","mode":"immediate"}`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, rp.Run(strings.NewReader(script), &out))
	results := decodeResults(t, &out)
	require.Len(t, results, 15)

	type want struct {
		line       int
		result     string
		verified   int
		unverified int
	}
	wants := []want{
		{1, "", 0, 0},
		{2, "Succeed", 1, 0},
		{3, "InsufficientFunds", 1, 0},
		{4, "", 0, 0},
		{7, "AlreadyExists", 0, 0},
		{8, "InsufficientFunds", 0, 0},
		{9, "Expired", 0, 0},
		{10, "Succeed", 1, 0},
		{11, "", 1, 0},
		{12, "Succeed", 2, 0},
		{13, "", 0, 2},
		{14, "Done", 2, 0},
		{15, "Removed", 1, 0},
		{16, "NotFound", 1, 0},
		{17, "", 0, 0},
	}
	for i, w := range wants {
		res := results[i]
		require.Equal(t, w.line, res.Line, "result %d", i)
		require.Equal(t, w.result, res.Result, "line %d", w.line)
		require.Equal(t, w.verified, res.Verified, "line %d", w.line)
		require.Equal(t, w.unverified, res.Unverified, "line %d", w.line)
	}

	require.Equal(t, uint32(1), results[3].Height)
	require.Equal(t, 1, results[3].Included)
	require.Equal(t, uint32(2), results[14].Height)
	require.Equal(t, 1, results[14].Included)

	// Both blocks debited alice.
	balance, err := rp.store.BalanceOf(alice, nil)
	require.NoError(t, err)
	require.Equal(t, int64(500), balance)
	balance, err = rp.store.BalanceOf(bob, nil)
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)
}

// TestReplayRawTransaction ensures serialized transactions are decoded.
func TestReplayRawTransaction(t *testing.T) {
	t.Parallel()

	rp := newTestReplayer(t, mempool.SyncImmediateReverify)
	require.NoError(t, rp.store.Credit(alice, 1000))

	msgTx := wire.NewMsgTx(7, 100)
	msgTx.NetworkFee = 150
	msgTx.SystemFee = 50
	msgTx.AddSigner(alice, wire.ScopeCalledByEntry)
	msgTx.Script = []byte{0x40}
	raw, err := msgTx.Bytes()
	require.NoError(t, err)

	var out bytes.Buffer
	line := fmt.Sprintf(`{"op":"tx","raw":"%s"}`, hex.EncodeToString(raw))
	require.NoError(t, rp.Run(strings.NewReader(line), &out))

	results := decodeResults(t, &out)
	require.Len(t, results, 1)
	require.Equal(t, "Succeed", results[0].Result)
	require.Equal(t, msgTx.TxHash().String(), results[0].Hash)
}

// TestReplayErrors ensures malformed records stop the replay and name the
// offending line.
func TestReplayErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
		errMsg string
	}{
		{
			name:   "malformed json",
			script: `{"op":`,
			errMsg: "line 1",
		},
		{
			name:   "unknown operation",
			script: "\n" + `{"op":"mine"}`,
			errMsg: `line 2: mine: unknown operation "mine"`,
		},
		{
			name:   "transaction without signers",
			script: `{"op":"tx","netfee":1}`,
			errMsg: "at least one signer",
		},
		{
			name: "repeated signer",
			script: fmt.Sprintf(`{"op":"tx","signers":["%v","%v"],"netfee":1}`,
				alice, alice),
			errMsg: "line 1: tx: duplicate signer",
		},
		{
			name:   "bad raw transaction",
			script: `{"op":"tx","raw":"zz"}`,
			errMsg: "line 1: tx",
		},
		{
			name:   "unknown sync mode",
			script: `{"op":"block","mode":"later"}`,
			errMsg: `unknown sync mode "later"`,
		},
		{
			name:   "negative credit",
			script: fmt.Sprintf(`{"op":"fund","account":"%v","amount":-1}`, alice),
			errMsg: "negative amount",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			rp := newTestReplayer(t, mempool.SyncDefer)
			err := rp.Run(strings.NewReader(test.script), io.Discard)
			require.ErrorContains(t, err, test.errMsg)
		})
	}
}

// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil_test

import (
	"bytes"
	"testing"

	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/chainutil"
	"github.com/r3e-network/neo-rs-sub003/wire"
	"github.com/stretchr/testify/require"
)

func newMsgTx(netFee int64, signers ...byte) *wire.MsgTx {
	msgTx := wire.NewMsgTx(1, 100)
	msgTx.NetworkFee = netFee
	msgTx.SystemFee = 10
	for _, s := range signers {
		msgTx.AddSigner([wire.AccountSize]byte{s}, wire.ScopeCalledByEntry)
	}
	msgTx.Script = []byte{0x40}
	return msgTx
}

// TestTx tests the API for Tx.
func TestTx(t *testing.T) {
	t.Parallel()

	msgTx := newMsgTx(10_000, 0x01, 0x02)
	msgTx.AddConflict(chainhash.Hash{0x77})
	tx := chainutil.NewTx(msgTx)

	require.Equal(t, msgTx, tx.MsgTx())
	require.Equal(t, msgTx.TxHash(), *tx.Hash())
	require.Equal(t, msgTx.SerializeSize(), tx.Size())
	require.Equal(t, int64(10_000)/int64(tx.Size()), tx.FeePerByte())
	require.Equal(t, int64(10_010), tx.TotalFee())
	require.Equal(t, uint32(100), tx.ValidUntilBlock())
	require.Equal(t, []chainhash.Hash{{0x77}}, tx.Conflicts())

	require.Equal(t, chainutil.Address{0x01}, tx.Sender())
	require.True(t, tx.HasSigner(chainutil.Address{0x02}))
	require.False(t, tx.HasSigner(chainutil.Address{0x03}))

	other := chainutil.NewTx(newMsgTx(1, 0x03, 0x02))
	require.True(t, tx.SharesSigner(other))
	require.True(t, other.SharesSigner(tx))

	stranger := chainutil.NewTx(newMsgTx(1, 0x04))
	require.False(t, tx.SharesSigner(stranger))
}

// TestTxDuplicateSigners ensures an account listed twice is reported once
// at its first position.
func TestTxDuplicateSigners(t *testing.T) {
	t.Parallel()

	msgTx := newMsgTx(100, 0x01, 0x02, 0x01)
	tx := chainutil.NewTx(msgTx)

	require.Len(t, msgTx.Signers, 3)
	require.Equal(t, []chainutil.Address{{0x01}, {0x02}}, tx.Signers())
	require.Equal(t, chainutil.Address{0x01}, tx.Sender())
	require.Equal(t, msgTx.SerializeSize(), tx.Size())
}

// TestNewTxFromBytes tests decoding a Tx from its serialized form.
func TestNewTxFromBytes(t *testing.T) {
	t.Parallel()

	msgTx := newMsgTx(500, 0x01)
	raw, err := msgTx.Bytes()
	require.NoError(t, err)

	tx, err := chainutil.NewTxFromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, msgTx.TxHash(), *tx.Hash())
	require.Equal(t, len(raw), tx.Size())

	_, err = chainutil.NewTxFromBytes(append(raw, 0x00))
	require.Error(t, err, "trailing bytes must be rejected")

	_, err = chainutil.NewTxFromBytes(make([]byte, wire.MaxTransactionSize+1))
	require.Error(t, err)
}

// TestBlock tests wrapping a block and its transactions.
func TestBlock(t *testing.T) {
	t.Parallel()

	txs := []*chainutil.Tx{
		chainutil.NewTx(newMsgTx(1, 0x01)),
		chainutil.NewTx(newMsgTx(2, 0x02)),
	}
	block := chainutil.NewBlockFromTxs(&wire.BlockHeader{Index: 12}, txs)
	require.Equal(t, uint32(12), block.Height())
	require.Len(t, block.Transactions(), 2)

	var buf bytes.Buffer
	require.NoError(t, block.MsgBlock().Serialize(&buf))

	decoded, err := chainutil.NewBlockFromBytes(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, *block.Hash(), *decoded.Hash())
	for i, tx := range decoded.Transactions() {
		require.Equal(t, *txs[i].Hash(), *tx.Hash())
	}
}

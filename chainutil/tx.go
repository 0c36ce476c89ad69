// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"bytes"
	"fmt"

	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/wire"
)

// Tx defines a transaction that provides easier and more efficient
// manipulation of raw transactions.  The hash, serialized size, fee-per-byte,
// signer accounts and conflict hashes are computed once when the Tx is
// created.  The underlying MsgTx must not be modified afterwards.
type Tx struct {
	msgTx      *wire.MsgTx      // Underlying MsgTx
	txHash     chainhash.Hash   // Cached transaction hash
	size       int              // Serialized size
	feePerByte int64            // Network fee divided by size
	signers    []Address        // Signer accounts in declaration order
	conflicts  []chainhash.Hash // Hashes named by Conflicts attributes
}

// NewTx returns a new instance of a transaction given an underlying
// wire.MsgTx.  See Tx.
func NewTx(msgTx *wire.MsgTx) *Tx {
	t := &Tx{
		msgTx:     msgTx,
		txHash:    msgTx.TxHash(),
		size:      msgTx.SerializeSize(),
		signers:   make([]Address, 0, len(msgTx.Signers)),
		conflicts: msgTx.Conflicts(),
	}
	if t.size > 0 {
		t.feePerByte = msgTx.NetworkFee / int64(t.size)
	}
	// An account listed more than once is kept at its first position so
	// that fees are charged to it once.
	for i := range msgTx.Signers {
		account := Address(msgTx.Signers[i].Account)
		if !t.HasSigner(account) {
			t.signers = append(t.signers, account)
		}
	}
	return t
}

// NewTxFromBytes returns a new instance of a transaction given the
// serialized bytes.  See Tx.
func NewTxFromBytes(serializedTx []byte) (*Tx, error) {
	if len(serializedTx) > wire.MaxTransactionSize {
		return nil, fmt.Errorf("transaction of %d bytes exceeds max "+
			"size %d", len(serializedTx), wire.MaxTransactionSize)
	}

	br := bytes.NewReader(serializedTx)
	var msgTx wire.MsgTx
	if err := msgTx.Deserialize(br); err != nil {
		return nil, err
	}
	if br.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after transaction",
			br.Len())
	}
	return NewTx(&msgTx), nil
}

// MsgTx returns the underlying wire.MsgTx for the transaction.
func (t *Tx) MsgTx() *wire.MsgTx {
	return t.msgTx
}

// Hash returns the hash of the transaction.
func (t *Tx) Hash() *chainhash.Hash {
	return &t.txHash
}

// Size returns the serialized size of the transaction in bytes.
func (t *Tx) Size() int {
	return t.size
}

// NetworkFee returns the fee paid to validators.
func (t *Tx) NetworkFee() int64 {
	return t.msgTx.NetworkFee
}

// SystemFee returns the fee paid for execution.
func (t *Tx) SystemFee() int64 {
	return t.msgTx.SystemFee
}

// TotalFee returns the sum of the network and system fee.
func (t *Tx) TotalFee() int64 {
	return t.msgTx.NetworkFee + t.msgTx.SystemFee
}

// FeePerByte returns the network fee divided by the serialized size.
func (t *Tx) FeePerByte() int64 {
	return t.feePerByte
}

// ValidUntilBlock returns the last height at which the transaction may be
// included.
func (t *Tx) ValidUntilBlock() uint32 {
	return t.msgTx.ValidUntilBlock
}

// Signers returns the signer accounts of the transaction.  The returned slice
// must not be modified.
func (t *Tx) Signers() []Address {
	return t.signers
}

// Sender returns the first signer, the account charged for the fees.
func (t *Tx) Sender() Address {
	if len(t.signers) == 0 {
		return Address{}
	}
	return t.signers[0]
}

// HasSigner reports whether the passed account signs the transaction.
func (t *Tx) HasSigner(account Address) bool {
	for _, s := range t.signers {
		if s == account {
			return true
		}
	}
	return false
}

// SharesSigner reports whether the two transactions have at least one signer
// in common.
func (t *Tx) SharesSigner(other *Tx) bool {
	for _, s := range other.signers {
		if t.HasSigner(s) {
			return true
		}
	}
	return false
}

// Conflicts returns the hashes this transaction declares it supersedes.  The
// returned slice must not be modified.
func (t *Tx) Conflicts() []chainhash.Hash {
	return t.conflicts
}

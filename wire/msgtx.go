// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/r3e-network/neo-rs-sub003/chainhash"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion uint8 = 0

	// MaxTransactionSize is the maximum serialized size of a transaction.
	MaxTransactionSize = 102400

	// MaxTransactionAttributes is the maximum combined number of signers
	// and attributes a transaction may carry.
	MaxTransactionAttributes = 16

	// MaxScriptLength is the maximum length of the invocation script.
	MaxScriptLength = 65535

	// MaxWitnessScriptLength bounds each witness script.
	MaxWitnessScriptLength = 1024

	// AccountSize is the size of a signer account (a script hash).
	AccountSize = chainhash.Hash160Size
)

// WitnessScope restricts where a signer's witness is valid.
type WitnessScope uint8

// These constants mirror the scopes understood by the execution layer.  The
// pool treats them as opaque data.
const (
	ScopeNone          WitnessScope = 0x00
	ScopeCalledByEntry WitnessScope = 0x01
	ScopeGlobal        WitnessScope = 0x80
)

// Signer is an account whose witness is required by a transaction.
type Signer struct {
	Account [AccountSize]byte
	Scopes  WitnessScope
}

// signerSerializeSize is the encoded size of a Signer.
const signerSerializeSize = AccountSize + 1

// TxAttrType identifies a transaction attribute.
type TxAttrType uint8

const (
	// AttrHighPriority marks a committee transaction.  It has no payload.
	AttrHighPriority TxAttrType = 0x01

	// AttrConflicts names the hash of a transaction this one supersedes.
	AttrConflicts TxAttrType = 0x21
)

// String returns the TxAttrType in human-readable form.
func (t TxAttrType) String() string {
	switch t {
	case AttrHighPriority:
		return "HighPriority"
	case AttrConflicts:
		return "Conflicts"
	}
	return fmt.Sprintf("Unknown TxAttrType (%d)", uint8(t))
}

// TxAttribute is a typed transaction attribute.  Hash is only meaningful for
// AttrConflicts.
type TxAttribute struct {
	Type TxAttrType
	Hash chainhash.Hash
}

// SerializeSize returns the number of bytes it would take to serialize the
// attribute.
func (a *TxAttribute) SerializeSize() int {
	if a.Type == AttrConflicts {
		return 1 + chainhash.HashSize
	}
	return 1
}

// Witness carries the invocation and verification scripts proving a signer's
// authorization.
type Witness struct {
	InvocationScript   []byte
	VerificationScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// witness.
func (w *Witness) SerializeSize() int {
	return varBytesSerializeSize(w.InvocationScript) +
		varBytesSerializeSize(w.VerificationScript)
}

// MsgTx is a transaction as relayed between nodes and stored in blocks.
//
// Use the AddSigner and AddConflict functions to build up the lists of
// signers and attributes.
type MsgTx struct {
	Version         uint8
	Nonce           uint32
	SystemFee       int64
	NetworkFee      int64
	ValidUntilBlock uint32
	Signers         []Signer
	Attributes      []TxAttribute
	Script          []byte
	Witnesses       []Witness
}

// AddSigner adds a signer to the transaction.
func (msg *MsgTx) AddSigner(account [AccountSize]byte, scopes WitnessScope) {
	msg.Signers = append(msg.Signers, Signer{Account: account, Scopes: scopes})
}

// AddConflict adds a Conflicts attribute naming the passed hash.
func (msg *MsgTx) AddConflict(hash chainhash.Hash) {
	msg.Attributes = append(msg.Attributes, TxAttribute{
		Type: AttrConflicts,
		Hash: hash,
	})
}

// Conflicts returns the hashes named by the Conflicts attributes of the
// transaction in declaration order.
func (msg *MsgTx) Conflicts() []chainhash.Hash {
	var hashes []chainhash.Hash
	for i := range msg.Attributes {
		if msg.Attributes[i].Type == AttrConflicts {
			hashes = append(hashes, msg.Attributes[i].Hash)
		}
	}
	return hashes
}

// TxHash generates the hash for the transaction.  Witnesses are not covered.
func (msg *MsgTx) TxHash() chainhash.Hash {
	return chainhash.HashRaw(msg.SerializeUnsigned)
}

// Copy creates a deep copy of a transaction so that the original does not get
// modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := *msg
	newTx.Signers = append([]Signer(nil), msg.Signers...)
	newTx.Attributes = append([]TxAttribute(nil), msg.Attributes...)
	newTx.Script = append([]byte(nil), msg.Script...)
	newTx.Witnesses = make([]Witness, 0, len(msg.Witnesses))
	for _, w := range msg.Witnesses {
		newTx.Witnesses = append(newTx.Witnesses, Witness{
			InvocationScript:   append([]byte(nil), w.InvocationScript...),
			VerificationScript: append([]byte(nil), w.VerificationScript...),
		})
	}
	return &newTx
}

// SerializeUnsigned encodes every field of the transaction except the
// witnesses.  It is the preimage of the transaction hash.
func (msg *MsgTx) SerializeUnsigned(w io.Writer) error {
	if err := writeUint8(w, msg.Version); err != nil {
		return err
	}
	if err := writeUint32(w, msg.Nonce); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(msg.SystemFee)); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(msg.NetworkFee)); err != nil {
		return err
	}
	if err := writeUint32(w, msg.ValidUntilBlock); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.Signers))); err != nil {
		return err
	}
	for i := range msg.Signers {
		if _, err := w.Write(msg.Signers[i].Account[:]); err != nil {
			return err
		}
		if err := writeUint8(w, uint8(msg.Signers[i].Scopes)); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.Attributes))); err != nil {
		return err
	}
	for i := range msg.Attributes {
		attr := &msg.Attributes[i]
		if err := writeUint8(w, uint8(attr.Type)); err != nil {
			return err
		}
		if attr.Type == AttrConflicts {
			if _, err := w.Write(attr.Hash[:]); err != nil {
				return err
			}
		}
	}

	return WriteVarBytes(w, msg.Script)
}

// Serialize encodes the transaction to w including its witnesses.
func (msg *MsgTx) Serialize(w io.Writer) error {
	if err := msg.SerializeUnsigned(w); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(msg.Witnesses))); err != nil {
		return err
	}
	for i := range msg.Witnesses {
		if err := WriteVarBytes(w, msg.Witnesses[i].InvocationScript); err != nil {
			return err
		}
		if err := WriteVarBytes(w, msg.Witnesses[i].VerificationScript); err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the serialized transaction.
func (msg *MsgTx) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())
	if err := msg.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction.
func (msg *MsgTx) SerializeSize() int {
	// Version 1 byte + Nonce 4 bytes + SystemFee 8 bytes + NetworkFee
	// 8 bytes + ValidUntilBlock 4 bytes.
	n := 25

	n += VarIntSerializeSize(uint64(len(msg.Signers))) +
		len(msg.Signers)*signerSerializeSize

	n += VarIntSerializeSize(uint64(len(msg.Attributes)))
	for i := range msg.Attributes {
		n += msg.Attributes[i].SerializeSize()
	}

	n += varBytesSerializeSize(msg.Script)

	n += VarIntSerializeSize(uint64(len(msg.Witnesses)))
	for i := range msg.Witnesses {
		n += msg.Witnesses[i].SerializeSize()
	}
	return n
}

// Deserialize decodes a transaction from r into the receiver.  Structural
// rules that do not depend on chain state are enforced here: at least one
// signer, no duplicate signers, bounded attribute count, known attribute
// types, and at most one HighPriority attribute.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	var err error
	if msg.Version, err = readUint8(r); err != nil {
		return err
	}
	if msg.Version > TxVersion {
		str := fmt.Sprintf("unsupported transaction version %d", msg.Version)
		return messageError("MsgTx.Deserialize", str)
	}
	if msg.Nonce, err = readUint32(r); err != nil {
		return err
	}
	sysFee, err := readUint64(r)
	if err != nil {
		return err
	}
	netFee, err := readUint64(r)
	if err != nil {
		return err
	}
	msg.SystemFee, msg.NetworkFee = int64(sysFee), int64(netFee)
	if msg.SystemFee < 0 || msg.NetworkFee < 0 {
		return messageError("MsgTx.Deserialize", "negative fee")
	}
	if msg.ValidUntilBlock, err = readUint32(r); err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count == 0 {
		return messageError("MsgTx.Deserialize", "transaction has no signers")
	}
	if count > MaxTransactionAttributes {
		str := fmt.Sprintf("too many signers [count %d, max %d]", count,
			MaxTransactionAttributes)
		return messageError("MsgTx.Deserialize", str)
	}
	msg.Signers = make([]Signer, count)
	seen := make(map[[AccountSize]byte]struct{}, count)
	for i := range msg.Signers {
		s := &msg.Signers[i]
		if _, err := io.ReadFull(r, s.Account[:]); err != nil {
			return err
		}
		scopes, err := readUint8(r)
		if err != nil {
			return err
		}
		s.Scopes = WitnessScope(scopes)
		if _, ok := seen[s.Account]; ok {
			return messageError("MsgTx.Deserialize", "duplicate signer")
		}
		seen[s.Account] = struct{}{}
	}

	count, err = ReadVarInt(r)
	if err != nil {
		return err
	}
	if count+uint64(len(msg.Signers)) > MaxTransactionAttributes {
		str := fmt.Sprintf("too many attributes [count %d, max %d]",
			count, MaxTransactionAttributes-len(msg.Signers))
		return messageError("MsgTx.Deserialize", str)
	}
	msg.Attributes = make([]TxAttribute, count)
	var highPriority bool
	for i := range msg.Attributes {
		attr := &msg.Attributes[i]
		typ, err := readUint8(r)
		if err != nil {
			return err
		}
		attr.Type = TxAttrType(typ)
		switch attr.Type {
		case AttrHighPriority:
			if highPriority {
				return messageError("MsgTx.Deserialize",
					"duplicate HighPriority attribute")
			}
			highPriority = true
		case AttrConflicts:
			if err := readHash(r, &attr.Hash); err != nil {
				return err
			}
		default:
			str := fmt.Sprintf("unknown attribute type %#x", typ)
			return messageError("MsgTx.Deserialize", str)
		}
	}

	if msg.Script, err = ReadVarBytes(r, MaxScriptLength, "script"); err != nil {
		return err
	}

	count, err = ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxTransactionAttributes {
		str := fmt.Sprintf("too many witnesses [count %d, max %d]", count,
			MaxTransactionAttributes)
		return messageError("MsgTx.Deserialize", str)
	}
	msg.Witnesses = make([]Witness, count)
	for i := range msg.Witnesses {
		wit := &msg.Witnesses[i]
		wit.InvocationScript, err = ReadVarBytes(r,
			MaxWitnessScriptLength, "invocation script")
		if err != nil {
			return err
		}
		wit.VerificationScript, err = ReadVarBytes(r,
			MaxWitnessScriptLength, "verification script")
		if err != nil {
			return err
		}
	}
	return nil
}

// NewMsgTx returns a new transaction with the current version and a
// ValidUntilBlock bound.  The return instance has no signers, attributes or
// witnesses.
func NewMsgTx(nonce uint32, validUntilBlock uint32) *MsgTx {
	return &MsgTx{
		Version:         TxVersion,
		Nonce:           nonce,
		ValidUntilBlock: validUntilBlock,
	}
}

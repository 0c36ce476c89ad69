// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/wire"
)

const (
	opPushData1 = 0x0c
	opSyscall   = 0x41

	// checkSigSyscall is the interop id of System.Crypto.CheckSig, the first
	// four bytes of sha256 over its name in little-endian order.
	checkSigSyscall = 0x27b3e756
)

// ErrAddressLength is returned when decoding an address of the wrong size.
var ErrAddressLength = errors.New("address must be 20 bytes")

// Address is the script hash of an account.  Signers of a transaction are
// identified by their Address.
type Address [wire.AccountSize]byte

// String returns the address as byte-reversed hex with a 0x prefix, the form
// the node uses when printing script hashes.
func (a Address) String() string {
	for i := 0; i < len(a)/2; i++ {
		a[i], a[len(a)-1-i] = a[len(a)-1-i], a[i]
	}
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	decoded, err := DecodeAddress(string(text))
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// DecodeAddress parses the String form of an address.
func DecodeAddress(s string) (Address, error) {
	var a Address
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return a, err
	}
	if len(b) != len(a) {
		return a, ErrAddressLength
	}
	for i := range b {
		a[len(a)-1-i] = b[i]
	}
	return a, nil
}

// NewAddressScriptHash returns the address of the passed verification
// script.
func NewAddressScriptHash(script []byte) Address {
	var a Address
	copy(a[:], chainhash.Hash160(script))
	return a
}

// VerificationScriptPubKey returns the standard single-signature
// verification script for the passed public key.
func VerificationScriptPubKey(pubKey *btcec.PublicKey) []byte {
	compressed := pubKey.SerializeCompressed()
	script := make([]byte, 0, 2+len(compressed)+5)
	script = append(script, opPushData1, byte(len(compressed)))
	script = append(script, compressed...)
	script = append(script, opSyscall)
	script = binary.LittleEndian.AppendUint32(script, checkSigSyscall)
	return script
}

// NewAddressPubKey returns the address of the standard single-signature
// account controlled by the passed public key.
func NewAddressPubKey(pubKey *btcec.PublicKey) Address {
	return NewAddressScriptHash(VerificationScriptPubKey(pubKey))
}

// NewAddressPubKeyBytes parses a serialized secp256k1 public key and returns
// the address of its single-signature account.
func NewAddressPubKeyBytes(serializedPubKey []byte) (Address, error) {
	pubKey, err := btcec.ParsePubKey(serializedPubKey)
	if err != nil {
		return Address{}, err
	}
	return NewAddressPubKey(pubKey), nil
}

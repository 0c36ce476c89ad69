// Copyright (c) 2015 The Decred developers
// Copyright (c) 2016-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/ripemd160"
)

// Hash160Size is the size of a RIPEMD160(SHA256(b)) digest.
const Hash160Size = 20

// HashB calculates hash(b) and returns the resulting bytes.
func HashB(b []byte) []byte {
	hash := sha256.Sum256(b)
	return hash[:]
}

// HashH calculates hash(b) and returns the resulting bytes as a Hash.
func HashH(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// HashRaw calculates hash(w) where w is the resulting bytes from the given
// serialize function and returns the resulting bytes as a Hash.
func HashRaw(serialize func(w io.Writer) error) Hash {
	// Encode the data into the hash.  Ignore the error returns since the
	// only way the encode could fail is being out of memory or due to nil
	// pointers, both of which would cause a run-time panic.
	h := sha256.New()
	_ = serialize(h)

	var res Hash
	h.Sum(res[:0])
	return res
}

// DoubleHashH calculates hash(hash(b)) and returns the resulting bytes as a
// Hash.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}

// Hash160 calculates ripemd160(sha256(b)).  This is the script hash used to
// derive account addresses.
func Hash160(b []byte) []byte {
	h := ripemd160.New()
	h.Write(HashB(b))
	return h.Sum(nil)
}

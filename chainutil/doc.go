// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package chainutil provides convenience wrappers around the raw wire types.

Tx and Block wrap their wire counterparts and compute the derived values the
memory pool and block assembly rely on (hash, serialized size, fee-per-byte,
signer accounts and declared conflicts) exactly once at construction, so a
wrapper is immutable and safe to share between goroutines.

Address is the 160-bit script hash identifying an account, and Amount is a
quantity of GAS expressed in its smallest indivisible unit.
*/
package chainutil

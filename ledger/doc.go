// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package ledger provides a minimal persisted account ledger used to fund
mempool admission.

It keeps one fee balance per account and the height of the last persisted
block in a key/value engine (leveldb or pebble).  Read snapshots are
consistent views of the ledger and implement the height reporting the
mempool uses for ValidUntilBlock expiry, so a Store doubles as the
mempool's BalanceProvider.

Persisting a block debits each transaction's sender by its system and
network fee and advances the height in one atomic batch.  Script execution
and token transfers are out of scope.
*/
package ledger

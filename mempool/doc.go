// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mempool provides a policy-enforced pool of unconfirmed transactions.

The pool keeps admitted transactions in two sets ordered by priority: higher
fee-per-byte first, and the smaller hash first among equal fee-per-byte.
The verified
set holds transactions known to be valid against the latest ledger snapshot
and is what block templates are drawn from.  The unverified set holds
transactions that were valid before a block was persisted and await
reverification.

# Admission

TryAdd runs the following checks in order and reports the first failure as a
RuleError:

  - The optional AdmissionHook may veto the transaction
  - The hash must not already be pooled or included in a recent block
  - The transaction must not have expired at the snapshot height
  - Conflicts attributes are resolved in both directions; the transaction
    must outbid every pooled entry it displaces
  - Every signer must be able to cover the fees of all of its pooled
    transactions plus this one
  - A full pool evicts its lowest priority entry, which may be the new
    transaction itself

# Block Synchronization

BlockPersisted removes the included transactions, sweeps the entries the
block conflicts with, and then handles the survivors according to a
SyncMode.  ReverifyTopUnverified promotes unverified entries in priority
order within a time budget and hands transactions that are due for a
rebroadcast to the Relayer.

# Events

Added and removed events are delivered to the configured Notifier after the
pool lock has been released.
*/
package mempool

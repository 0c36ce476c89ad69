// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/r3e-network/neo-rs-sub003/chainutil"
)

// verificationContext tracks, per signer, the fees committed by verified
// pool entries.  Each signer of an entry is charged the entry's full system
// and network fee.
type verificationContext struct {
	senderFees map[chainutil.Address]int64
}

// newVerificationContext returns an empty context.
func newVerificationContext() *verificationContext {
	return &verificationContext{
		senderFees: make(map[chainutil.Address]int64),
	}
}

// addTransaction charges the transaction's fees to each of its signers.
func (vc *verificationContext) addTransaction(tx *chainutil.Tx) {
	fee := tx.TotalFee()
	for _, signer := range tx.Signers() {
		vc.senderFees[signer] += fee
	}
}

// removeTransaction releases the transaction's fees from its signers.
func (vc *verificationContext) removeTransaction(tx *chainutil.Tx) {
	fee := tx.TotalFee()
	for _, signer := range tx.Signers() {
		remaining := vc.senderFees[signer] - fee
		if remaining <= 0 {
			delete(vc.senderFees, signer)
			continue
		}
		vc.senderFees[signer] = remaining
	}
}

// committed returns the fees currently charged to the signer.
func (vc *verificationContext) committed(signer chainutil.Address) int64 {
	return vc.senderFees[signer]
}

// reset releases every charge.
func (vc *verificationContext) reset() {
	clear(vc.senderFees)
}

// checkTransaction reports whether every signer of tx can afford the fees of
// its verified entries plus tx.  Verified entries in evicting are about to
// be removed and are not counted.
func (vc *verificationContext) checkTransaction(tx *chainutil.Tx,
	balances BalanceProvider, snapshot LedgerSnapshot,
	evicting []*TxDesc) (bool, error) {

	fee := tx.TotalFee()
	for _, signer := range tx.Signers() {
		balance, err := balances.BalanceOf(signer, snapshot)
		if err != nil {
			return false, err
		}

		pending := vc.committed(signer)
		for _, desc := range evicting {
			if desc.State == StateVerified && desc.Tx.HasSigner(signer) {
				pending -= desc.Tx.TotalFee()
			}
		}
		if pending+fee > balance {
			log.Tracef("Signer %v of transaction %v has balance %d, "+
				"needs %d", signer, tx.Hash(), balance, pending+fee)
			return false, nil
		}
	}
	return true, nil
}

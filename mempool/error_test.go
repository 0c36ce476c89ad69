// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResultOf ensures errors map back to the verify result that caused
// them.
func TestResultOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, Succeed, ResultOf(nil))
	require.Equal(t, HasConflicts,
		ResultOf(ruleError(HasConflicts, "conflict")))

	wrapped := fmt.Errorf("submit: %w", ruleError(Expired, "expired"))
	require.Equal(t, Expired, ResultOf(wrapped))
	require.Equal(t, Unknown, ResultOf(errors.New("disk failure")))

	var rerr RuleError
	require.ErrorAs(t, wrapped, &rerr)
	require.Equal(t, "expired", rerr.Error())
}

// TestVerifyResultStringer tests the stringized output for the VerifyResult
// type.
func TestVerifyResultStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   VerifyResult
		want string
	}{
		{Succeed, "Succeed"},
		{AlreadyInPool, "AlreadyInPool"},
		{AlreadyExists, "AlreadyExists"},
		{HasConflicts, "HasConflicts"},
		{InsufficientFunds, "InsufficientFunds"},
		{Expired, "Expired"},
		{PolicyFail, "PolicyFail"},
		{OutOfMemory, "OutOfMemory"},
		{Unknown, "Unknown"},
		{VerifyResult(0xff), "Unknown VerifyResult (255)"},
	}

	// Detect additional results that don't have the stringer added.
	require.Len(t, verifyResultStrings, len(tests)-1)

	for _, test := range tests {
		require.Equal(t, test.want, test.in.String())
	}
}

// TestNotificationStringer tests the stringized output for notification
// types and removal reasons.
func TestNotificationStringer(t *testing.T) {
	t.Parallel()

	require.Equal(t, "NTTxAdded", NTTxAdded.String())
	require.Equal(t, "NTTxRemoved", NTTxRemoved.String())
	require.Equal(t, "Conflict", RemovalConflict.String())
	require.Equal(t, "CapacityExceeded", RemovalCapacityExceeded.String())
	require.Equal(t, "FailedReverification",
		RemovalFailedReverification.String())
	require.Equal(t, "Unknown RemovalReason (7)", RemovalReason(7).String())

	tx := newTestTx(100, testAddress(1))
	n := Notification{Type: NTTxRemoved, Tx: tx, Reason: RemovalConflict}
	require.Equal(t, fmt.Sprintf("NTTxRemoved %v (Conflict)", tx.Hash()),
		n.String())
}

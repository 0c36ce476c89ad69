// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"errors"
	"fmt"
)

// VerifyResult describes the outcome of an admission attempt.
type VerifyResult int

const (
	// Succeed indicates the transaction was admitted.
	Succeed VerifyResult = iota

	// AlreadyInPool indicates a transaction with the same hash is already
	// pooled, verified or not.
	AlreadyInPool

	// AlreadyExists indicates the transaction was included in a recently
	// persisted block.
	AlreadyExists

	// HasConflicts indicates the conflict resolver rejected the
	// transaction.
	HasConflicts

	// InsufficientFunds indicates admitting the transaction would push a
	// signer's cumulative pooled fees above its balance.
	InsufficientFunds

	// Expired indicates the transaction's ValidUntilBlock is not above the
	// ledger height.
	Expired

	// PolicyFail indicates the admission hook vetoed the transaction.
	PolicyFail

	// OutOfMemory indicates the transaction was itself the lowest priority
	// entry once inserted and was evicted to keep the pool within capacity.
	OutOfMemory

	// Unknown indicates a collaborator failure rather than a rule
	// violation.
	Unknown
)

// Map of VerifyResult values back to their constant names for pretty
// printing.
var verifyResultStrings = map[VerifyResult]string{
	Succeed:           "Succeed",
	AlreadyInPool:     "AlreadyInPool",
	AlreadyExists:     "AlreadyExists",
	HasConflicts:      "HasConflicts",
	InsufficientFunds: "InsufficientFunds",
	Expired:           "Expired",
	PolicyFail:        "PolicyFail",
	OutOfMemory:       "OutOfMemory",
	Unknown:           "Unknown",
}

// String returns the VerifyResult as a human-readable name.
func (r VerifyResult) String() string {
	if s, ok := verifyResultStrings[r]; ok {
		return s
	}
	return fmt.Sprintf("Unknown VerifyResult (%d)", int(r))
}

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a transaction failed due to one of the many validation
// rules.  The caller can use type assertions to determine if a failure was
// specifically due to a rule violation and access the Result field to
// ascertain the specific reason for the rule violation.
type RuleError struct {
	Result      VerifyResult // The verify result for this rule violation
	Description string       // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(result VerifyResult, desc string) RuleError {
	return RuleError{Result: result, Description: desc}
}

// ResultOf maps an error returned by TryAdd back to its VerifyResult.  A nil
// error is Succeed and any error that is not a RuleError is Unknown.
func ResultOf(err error) VerifyResult {
	if err == nil {
		return Succeed
	}
	var rerr RuleError
	if errors.As(err, &rerr) {
		return rerr.Result
	}
	return Unknown
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "errors"

var (
	// Parsing
	ErrInvalidObject    = errors.New("invalid object")
	ErrInvalidActionID  = errors.New("invalid action type")
	ErrInvalidAuthID    = errors.New("invalid auth type")
	ErrNoActions        = errors.New("no actions")
	ErrTooManyActions   = errors.New("too many actions")
	ErrMisalignedTime   = errors.New("misaligned time")
	ErrInvalidKeyValue  = errors.New("invalid key or value")
	ErrTransactionUnset = errors.New("transaction is not signed")

	// Execution
	ErrInvalidChainID    = errors.New("invalid chain id")
	ErrTimestampTooLate  = errors.New("timestamp too late")
	ErrTimestampTooEarly = errors.New("timestamp too early")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrMaxFeeTooLow      = errors.New("max fee too low")
	ErrInsufficientFunds = errors.New("insufficient funds to pay fee")
	ErrActionFailed      = errors.New("action execution failed")
	ErrDepositOverflow   = errors.New("deposit overflows")
)

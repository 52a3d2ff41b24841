// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "errors"

var (
	// ErrAllocation is returned when a record cannot be created, either
	// because the payer cannot fund its deposit or something already lives
	// at the target address.
	ErrAllocation          = errors.New("allocation failed")
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
	ErrArithmeticUnderflow = errors.New("arithmetic underflow")
	// ErrAuthorization is returned when the payer named by close did not
	// sign the transaction.
	ErrAuthorization        = errors.New("payer is not the signer")
	ErrInvalidRecordAddress = errors.New("invalid counter address")
	ErrInvalidOutput        = errors.New("invalid output")
)

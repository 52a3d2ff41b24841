// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import "errors"

var (
	ErrDuplicateTx     = errors.New("duplicate transaction")
	ErrClosed          = errors.New("vm closed")
	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrMissingChainID  = errors.New("missing chain id")
)

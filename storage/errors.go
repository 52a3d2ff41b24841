// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrInvalidBalance = errors.New("invalid balance")
	ErrRecordNotFound = errors.New("counter record not found")
	ErrInvalidRecord  = errors.New("invalid counter record")
	ErrUnknownBackend = errors.New("unknown database backend")
)

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import "errors"

var (
	ErrInputEmpty        = errors.New("input is empty")
	ErrInvalidArgs       = errors.New("invalid args")
	ErrMissingSubcommand = errors.New("must specify a subcommand")
	ErrKeyExists         = errors.New("key file already exists")
	ErrInvalidChoice     = errors.New("invalid choice")
	ErrInvalidPlan       = errors.New("invalid plan")
	ErrInvalidStep       = errors.New("invalid step")
	ErrUnknownKey        = errors.New("unknown key name")
	ErrUnknownRecord     = errors.New("unknown record name")
	ErrRequireFailed     = errors.New("requirement failed")
)

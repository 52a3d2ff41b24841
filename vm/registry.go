// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
)

// NewRegistry returns the action and auth parsers understood by the
// counter chain.
func NewRegistry() (chain.Registry, error) {
	actionParser := codec.NewTypeParser[chain.Action]()
	authParser := codec.NewTypeParser[chain.Auth]()

	errs := &wrappers.Errs{}
	errs.Add(
		actions.Register(actionParser),
		auth.Register(authParser),
	)
	if errs.Errored() {
		return nil, errs.Err
	}
	return chain.NewRegistry(actionParser, authParser), nil
}

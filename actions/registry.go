// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
)

// Register adds every counter action to [parser].
func Register(parser *codec.TypeParser[chain.Action]) error {
	errs := &wrappers.Errs{}
	errs.Add(
		// When registering new actions, ALWAYS make sure to append at the end.
		parser.Register(consts.CreateID, UnmarshalCreate),
		parser.Register(consts.IncrementID, UnmarshalIncrement),
		parser.Register(consts.DecrementID, UnmarshalDecrement),
		parser.Register(consts.SetID, UnmarshalSet),
		parser.Register(consts.CloseID, UnmarshalClose),
	)
	return errs.Err
}

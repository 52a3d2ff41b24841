// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
)

var _ chain.Action = (*Set)(nil)

// Set overwrites the count of [Counter] with [Value].
type Set struct {
	Counter codec.Address `json:"counter"`
	Value   uint8         `json:"value"`
}

func (*Set) GetTypeID() uint8 {
	return consts.SetID
}

func (s *Set) StateKeys(codec.Address) state.Keys {
	return counterKeys(s.Counter)
}

func (s *Set) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	_ int64,
	_ codec.Address,
	_ ids.ID,
) ([]byte, error) {
	// The record must exist and be valid even though its count is discarded
	if _, err := storage.GetCounter(ctx, mu, s.Counter); err != nil {
		return nil, err
	}
	return setCount(ctx, mu, s.Counter, consts.SetID, s.Value)
}

func (*Set) Size() int {
	return codec.AddressLen + consts.Uint8Len
}

func (s *Set) Marshal(p *codec.Packer) {
	p.PackAddress(s.Counter)
	p.PackByte(s.Value)
}

func UnmarshalSet(p *codec.Packer) (chain.Action, error) {
	var set Set
	p.UnpackAddress(&set.Counter)
	set.Value = p.UnpackByte()
	return &set, p.Err()
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

var _ chain.Action = (*Decrement)(nil)

type Decrement struct {
	Counter codec.Address `json:"counter"`
}

func (*Decrement) GetTypeID() uint8 {
	return consts.DecrementID
}

func (d *Decrement) StateKeys(codec.Address) state.Keys {
	return counterKeys(d.Counter)
}

func (d *Decrement) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	_ int64,
	_ codec.Address,
	_ ids.ID,
) ([]byte, error) {
	c, err := storage.GetCounter(ctx, mu, d.Counter)
	if err != nil {
		return nil, err
	}
	count, err := smath.Sub(c.Count, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: count=%d", ErrArithmeticUnderflow, c.Count)
	}
	return setCount(ctx, mu, d.Counter, consts.DecrementID, count)
}

func (*Decrement) Size() int {
	return codec.AddressLen
}

func (d *Decrement) Marshal(p *codec.Packer) {
	p.PackAddress(d.Counter)
}

func UnmarshalDecrement(p *codec.Packer) (chain.Action, error) {
	var decrement Decrement
	p.UnpackAddress(&decrement.Counter)
	return &decrement, p.Err()
}

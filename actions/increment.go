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

var _ chain.Action = (*Increment)(nil)

type Increment struct {
	Counter codec.Address `json:"counter"`
}

func (*Increment) GetTypeID() uint8 {
	return consts.IncrementID
}

func (i *Increment) StateKeys(codec.Address) state.Keys {
	return counterKeys(i.Counter)
}

func (i *Increment) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	_ int64,
	_ codec.Address,
	_ ids.ID,
) ([]byte, error) {
	c, err := storage.GetCounter(ctx, mu, i.Counter)
	if err != nil {
		return nil, err
	}
	count, err := smath.Add(c.Count, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: count=%d", ErrArithmeticOverflow, c.Count)
	}
	return setCount(ctx, mu, i.Counter, consts.IncrementID, count)
}

func (*Increment) Size() int {
	return codec.AddressLen
}

func (i *Increment) Marshal(p *codec.Packer) {
	p.PackAddress(i.Counter)
}

func UnmarshalIncrement(p *codec.Packer) (chain.Action, error) {
	var increment Increment
	p.UnpackAddress(&increment.Counter)
	return &increment, p.Err()
}

// counterKeys is the scope of actions that only rewrite an existing record.
func counterKeys(record codec.Address) state.Keys {
	return state.Keys{
		string(storage.CounterKey(record)): state.Read | state.Write,
	}
}

func setCount(ctx context.Context, mu state.Mutable, record codec.Address, typeID uint8, count uint8) ([]byte, error) {
	if err := storage.SetCounter(ctx, mu, record, &storage.Counter{Count: count}); err != nil {
		return nil, err
	}
	return (&CounterResult{Count: count}).Bytes(typeID), nil
}

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
)

var _ chain.Action = (*Create)(nil)

// Create allocates a counter record at [Counter] with a count of zero. The
// signer pays the deposit that keeps the record in state.
type Create struct {
	Counter codec.Address `json:"counter"`
}

func (*Create) GetTypeID() uint8 {
	return consts.CreateID
}

func (c *Create) StateKeys(actor codec.Address) state.Keys {
	return state.Keys{
		string(storage.CounterKey(c.Counter)): state.Allocate | state.Write,
		string(storage.DepositKey(c.Counter)): state.Allocate | state.Write,
		string(storage.BalanceKey(actor)):     state.Read | state.Write,
	}
}

func (c *Create) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	if c.Counter.TypeID() != consts.CounterAddressID {
		return nil, ErrInvalidRecordAddress
	}
	exists, err := storage.CounterExists(ctx, mu, c.Counter)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s already exists", ErrAllocation, c.Counter)
	}
	deposit, err := r.GetMinimumBalance(storage.CounterRecordLen)
	if err != nil {
		return nil, err
	}
	if _, err := storage.SubBalance(ctx, mu, actor, deposit); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	if err := storage.SetCounter(ctx, mu, c.Counter, &storage.Counter{}); err != nil {
		return nil, err
	}
	if err := storage.SetDeposit(ctx, mu, c.Counter, deposit); err != nil {
		return nil, err
	}
	return (&CreateResult{Deposit: deposit}).Bytes(), nil
}

func (*Create) Size() int {
	return codec.AddressLen
}

func (c *Create) Marshal(p *codec.Packer) {
	p.PackAddress(c.Counter)
}

func UnmarshalCreate(p *codec.Packer) (chain.Action, error) {
	var create Create
	p.UnpackAddress(&create.Counter)
	return &create, p.Err()
}

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

var _ chain.Action = (*Close)(nil)

// Close removes [Counter] from state and refunds its deposit to [Payer].
// [Payer] must be the signer of the transaction.
type Close struct {
	Counter codec.Address `json:"counter"`
	Payer   codec.Address `json:"payer"`
}

func (*Close) GetTypeID() uint8 {
	return consts.CloseID
}

func (c *Close) StateKeys(codec.Address) state.Keys {
	return state.Keys{
		string(storage.CounterKey(c.Counter)): state.Read | state.Write,
		string(storage.DepositKey(c.Counter)): state.Read | state.Write,
		string(storage.BalanceKey(c.Payer)):   state.All,
	}
}

func (c *Close) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	if c.Payer != actor {
		return nil, fmt.Errorf("%w: payer=%s signer=%s", ErrAuthorization, c.Payer, actor)
	}
	if _, err := storage.GetCounter(ctx, mu, c.Counter); err != nil {
		return nil, err
	}
	refund, err := storage.DeleteCounter(ctx, mu, c.Counter)
	if err != nil {
		return nil, err
	}
	balance, err := storage.AddBalance(ctx, mu, c.Payer, refund)
	if err != nil {
		return nil, err
	}
	return (&CloseResult{Refund: refund, PayerBalance: balance}).Bytes(), nil
}

func (*Close) Size() int {
	return codec.AddressLen * 2
}

func (c *Close) Marshal(p *codec.Packer) {
	p.PackAddress(c.Counter)
	p.PackAddress(c.Payer)
}

func UnmarshalClose(p *codec.Packer) (chain.Action, error) {
	var c Close
	p.UnpackAddress(&c.Counter)
	p.UnpackAddress(&c.Payer)
	return &c, p.Err()
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"fmt"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
)

// Every output starts with the type id of the action that produced it.

type CreateResult struct {
	Count   uint8  `json:"count"`
	Deposit uint64 `json:"deposit"`
}

func (r *CreateResult) Bytes() []byte {
	p := codec.NewWriter(consts.ByteLen*2+consts.Uint64Len, consts.NetworkSizeLimit)
	p.PackByte(consts.CreateID)
	p.PackByte(r.Count)
	p.PackUint64(r.Deposit)
	return p.Bytes()
}

// CounterResult is returned by increment, decrement and set.
type CounterResult struct {
	Count uint8 `json:"count"`
}

func (r *CounterResult) Bytes(typeID uint8) []byte {
	return []byte{typeID, r.Count}
}

type CloseResult struct {
	Refund       uint64 `json:"refund"`
	PayerBalance uint64 `json:"payerBalance"`
}

func (r *CloseResult) Bytes() []byte {
	p := codec.NewWriter(consts.ByteLen+consts.Uint64Len*2, consts.NetworkSizeLimit)
	p.PackByte(consts.CloseID)
	p.PackUint64(r.Refund)
	p.PackUint64(r.PayerBalance)
	return p.Bytes()
}

// UnmarshalOutput decodes an action output into one of the result types.
func UnmarshalOutput(b []byte) (uint8, any, error) {
	p := codec.NewReader(b, consts.NetworkSizeLimit)
	typeID := p.UnpackByte()
	var out any
	switch typeID {
	case consts.CreateID:
		out = &CreateResult{
			Count:   p.UnpackByte(),
			Deposit: p.UnpackUint64(false),
		}
	case consts.IncrementID, consts.DecrementID, consts.SetID:
		out = &CounterResult{Count: p.UnpackByte()}
	case consts.CloseID:
		out = &CloseResult{
			Refund:       p.UnpackUint64(false),
			PayerBalance: p.UnpackUint64(false),
		}
	default:
		return 0, nil, fmt.Errorf("%w: unknown type %d", ErrInvalidOutput, typeID)
	}
	if err := p.Err(); err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}
	if !p.Empty() {
		return 0, nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidOutput, len(b)-p.Offset())
	}
	return typeID, out, nil
}

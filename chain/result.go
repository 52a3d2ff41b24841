// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
)

// Result of a transaction that was executed and committed. Failed
// transactions leave no state behind and produce no [Result].
type Result struct {
	TxID ids.ID `json:"txId"`

	// Outputs holds one entry per action, in order.
	Outputs [][]byte `json:"outputs"`

	Fee uint64 `json:"fee"`
}

func (r *Result) Size() int {
	outputSize := consts.Uint8Len // actions
	for _, output := range r.Outputs {
		outputSize += codec.BytesLen(output)
	}
	return consts.IDLen + outputSize + consts.Uint64Len
}

func (r *Result) Marshal(p *codec.Packer) {
	p.PackID(r.TxID)
	p.PackByte(uint8(len(r.Outputs)))
	for _, output := range r.Outputs {
		p.PackBytes(output)
	}
	p.PackUint64(r.Fee)
}

func (r *Result) Bytes() ([]byte, error) {
	p := codec.NewWriter(r.Size(), consts.NetworkSizeLimit)
	r.Marshal(p)
	return p.Bytes(), p.Err()
}

func UnmarshalResult(p *codec.Packer) (*Result, error) {
	result := &Result{}
	p.UnpackID(true, &result.TxID)
	numOutputs := p.UnpackByte()
	outputs := make([][]byte, 0, numOutputs)
	for i := uint8(0); i < numOutputs; i++ {
		var output []byte
		p.UnpackBytes(consts.NetworkSizeLimit, false, &output)
		outputs = append(outputs, output)
	}
	result.Outputs = outputs
	result.Fee = p.UnpackUint64(false)
	return result, p.Err()
}

func ParseResult(b []byte) (*Result, error) {
	p := codec.NewReader(b, consts.NetworkSizeLimit)
	result, err := UnmarshalResult(p)
	if err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, ErrInvalidObject
	}
	return result, nil
}

// Accepted is a committed [Result] together with the height and time it was
// committed at.
type Accepted struct {
	Height    uint64  `json:"height"`
	Timestamp int64   `json:"timestamp"`
	Result    *Result `json:"result"`
}

func (a *Accepted) Bytes() ([]byte, error) {
	p := codec.NewWriter(consts.Uint64Len+consts.Int64Len+a.Result.Size(), consts.NetworkSizeLimit)
	p.PackUint64(a.Height)
	p.PackInt64(a.Timestamp)
	a.Result.Marshal(p)
	return p.Bytes(), p.Err()
}

func ParseAccepted(b []byte) (*Accepted, error) {
	p := codec.NewReader(b, consts.NetworkSizeLimit)
	a := &Accepted{
		Height:    p.UnpackUint64(true),
		Timestamp: p.UnpackInt64(false),
	}
	result, err := UnmarshalResult(p)
	if err != nil {
		return nil, err
	}
	a.Result = result
	if !p.Empty() {
		return nil, ErrInvalidObject
	}
	return a, nil
}

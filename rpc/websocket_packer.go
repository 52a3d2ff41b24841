// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"errors"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
)

// Every websocket message starts with its mode.
const (
	AcceptedMode byte = 0
	TxMode       byte = 1
)

func PackAcceptedMessage(a *chain.Accepted) ([]byte, error) {
	b, err := a.Bytes()
	if err != nil {
		return nil, err
	}
	return append([]byte{AcceptedMode}, b...), nil
}

func UnpackAcceptedMessage(msg []byte) (*chain.Accepted, error) {
	return chain.ParseAccepted(msg)
}

// PackTxMessage reports the outcome of a transaction submitted over the
// websocket. Exactly one of [a] and [txErr] is set.
func PackTxMessage(txID ids.ID, a *chain.Accepted, txErr error) ([]byte, error) {
	var body []byte
	if txErr != nil {
		body = []byte(txErr.Error())
	} else {
		b, err := a.Bytes()
		if err != nil {
			return nil, err
		}
		body = b
	}
	p := codec.NewWriter(consts.ByteLen*2+consts.IDLen+codec.BytesLen(body), consts.NetworkSizeLimit)
	p.PackByte(TxMode)
	p.PackID(txID)
	p.PackBool(txErr == nil)
	p.PackBytes(body)
	return p.Bytes(), p.Err()
}

// UnpackTxMessage returns the transaction id and either its accepted result
// or the error it failed with.
func UnpackTxMessage(msg []byte) (ids.ID, *chain.Accepted, error, error) {
	p := codec.NewReader(msg, consts.NetworkSizeLimit)
	var txID ids.ID
	p.UnpackID(true, &txID)
	success := p.UnpackBool()
	var body []byte
	p.UnpackBytes(-1, true, &body)
	if err := p.Err(); err != nil {
		return ids.Empty, nil, nil, err
	}
	if !p.Empty() {
		return ids.Empty, nil, nil, chain.ErrInvalidObject
	}
	if !success {
		return txID, nil, errors.New(string(body)), nil
	}
	a, err := chain.ParseAccepted(body)
	if err != nil {
		return ids.Empty, nil, nil, err
	}
	return txID, a, nil, nil
}

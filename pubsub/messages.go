// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
)

// batchOverhead bounds the bytes a batch adds per message.
const batchOverhead = consts.IntLen * 2

// CreateBatchMessage packs [msgs] into a single websocket frame.
func CreateBatchMessage(maxSize int, msgs [][]byte) ([]byte, error) {
	size := consts.IntLen
	for _, msg := range msgs {
		size += codec.BytesLen(msg)
	}
	p := codec.NewWriter(size, maxSize)
	p.PackInt(uint32(len(msgs)))
	for _, msg := range msgs {
		p.PackBytes(msg)
	}
	return p.Bytes(), p.Err()
}

func ParseBatchMessage(maxSize int, msg []byte) ([][]byte, error) {
	p := codec.NewReader(msg, maxSize)
	msgLen := p.UnpackInt(true)
	msgs := [][]byte{}
	for i := uint32(0); i < msgLen && p.Err() == nil; i++ {
		var nextMsg []byte
		p.UnpackBytes(-1, true, &nextMsg)
		msgs = append(msgs, nextMsg)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, ErrInvalidBatch
	}
	return msgs, nil
}

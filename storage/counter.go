// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/near/borsh-go"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/state"
)

const HeaderLen = 8

// CounterHeader prefixes every counter record and identifies its type.
var CounterHeader = func() [HeaderLen]byte {
	h := sha256.Sum256([]byte("account:Counter"))
	var header [HeaderLen]byte
	copy(header[:], h[:HeaderLen])
	return header
}()

// Counter is the body of a counter record.
type Counter struct {
	Count uint8
}

// CounterRecordLen is the persisted size of a record: header plus body.
const CounterRecordLen = HeaderLen + 1

func CounterKey(record codec.Address) []byte {
	return addressKey(counterPrefix, record, CounterChunks)
}

// DepositKey holds the funds reserved when [record] was created.
func DepositKey(record codec.Address) []byte {
	return addressKey(depositPrefix, record, DepositChunks)
}

func EncodeCounter(c *Counter) ([]byte, error) {
	body, err := borsh.Serialize(*c)
	if err != nil {
		return nil, err
	}
	v := make([]byte, 0, HeaderLen+len(body))
	v = append(v, CounterHeader[:]...)
	return append(v, body...), nil
}

func DecodeCounter(v []byte) (*Counter, error) {
	if len(v) != CounterRecordLen {
		return nil, fmt.Errorf("%w: record is %d bytes", ErrInvalidRecord, len(v))
	}
	if !bytes.Equal(v[:HeaderLen], CounterHeader[:]) {
		return nil, fmt.Errorf("%w: header mismatch", ErrInvalidRecord)
	}
	var c Counter
	if err := borsh.Deserialize(&c, v[HeaderLen:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return &c, nil
}

// GetCounter returns the record at [record]. ErrRecordNotFound is returned
// if it was never created or was closed.
func GetCounter(ctx context.Context, im state.Immutable, record codec.Address) (*Counter, error) {
	v, err := im.GetValue(ctx, CounterKey(record))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return DecodeCounter(v)
}

// CounterExists reports whether anything is stored at [record].
func CounterExists(ctx context.Context, im state.Immutable, record codec.Address) (bool, error) {
	_, err := im.GetValue(ctx, CounterKey(record))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func SetCounter(ctx context.Context, mu state.Mutable, record codec.Address, c *Counter) error {
	v, err := EncodeCounter(c)
	if err != nil {
		return err
	}
	return mu.Insert(ctx, CounterKey(record), v)
}

// DeleteCounter removes the record and its deposit entry and returns the
// deposit that was held.
func DeleteCounter(ctx context.Context, mu state.Mutable, record codec.Address) (uint64, error) {
	deposit, err := GetDeposit(ctx, mu, record)
	if err != nil {
		return 0, err
	}
	if err := mu.Remove(ctx, CounterKey(record)); err != nil {
		return 0, err
	}
	return deposit, mu.Remove(ctx, DepositKey(record))
}

func GetDeposit(ctx context.Context, im state.Immutable, record codec.Address) (uint64, error) {
	d, _, err := innerGetUint64(im.GetValue(ctx, DepositKey(record)))
	return d, err
}

func SetDeposit(ctx context.Context, mu state.Mutable, record codec.Address, amount uint64) error {
	return setUint64(ctx, mu, DepositKey(record), amount)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/keys"
	"github.com/ava-labs/countervm/state"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// State
// 0x0/ (height)
// 0x1/ (balance)
//   -> [owner] => balance
// 0x2/ (counter)
//   -> [record] => header || count
// 0x3/ (deposit)
//   -> [record] => reserved funds
// 0x4/ (genesis)

const (
	heightPrefix byte = iota
	balancePrefix
	counterPrefix
	depositPrefix
	genesisPrefix
)

const (
	HeightChunks  uint16 = 1
	BalanceChunks uint16 = 1
	CounterChunks uint16 = 1
	DepositChunks uint16 = 1
)

func HeightKey() []byte {
	return keys.EncodeChunks([]byte{heightPrefix}, HeightChunks)
}

// GenesisKey marks that genesis allocations were written.
func GenesisKey() []byte {
	return keys.EncodeChunks([]byte{genesisPrefix}, 1)
}

func addressKey(prefix byte, addr codec.Address, chunks uint16) []byte {
	k := make([]byte, 0, consts.ByteLen+codec.AddressLen+consts.Uint16Len)
	k = append(k, prefix)
	k = append(k, addr[:]...)
	return keys.EncodeChunks(k, chunks)
}

// [balancePrefix] + [address]
func BalanceKey(addr codec.Address) []byte {
	return addressKey(balancePrefix, addr, BalanceChunks)
}

// If the balance is 0, then the account does not exist
func GetBalance(
	ctx context.Context,
	im state.Immutable,
	addr codec.Address,
) (uint64, error) {
	_, bal, _, err := getBalance(ctx, im, addr)
	return bal, err
}

func getBalance(
	ctx context.Context,
	im state.Immutable,
	addr codec.Address,
) ([]byte, uint64, bool, error) {
	k := BalanceKey(addr)
	bal, exists, err := innerGetUint64(im.GetValue(ctx, k))
	return k, bal, exists, err
}

func innerGetUint64(
	v []byte,
	err error,
) (uint64, bool, error) {
	if errors.Is(err, database.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	val, err := database.ParseUInt64(v)
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

func SetBalance(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	balance uint64,
) error {
	return setUint64(ctx, mu, BalanceKey(addr), balance)
}

func setUint64(
	ctx context.Context,
	mu state.Mutable,
	key []byte,
	v uint64,
) error {
	return mu.Insert(ctx, key, binary.BigEndian.AppendUint64(nil, v))
}

func AddBalance(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	amount uint64,
) (uint64, error) {
	key, bal, _, err := getBalance(ctx, mu, addr)
	if err != nil {
		return 0, err
	}
	nbal, err := smath.Add(bal, amount)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: could not add balance (bal=%d, addr=%v, amount=%d)",
			ErrInvalidBalance,
			bal,
			addr,
			amount,
		)
	}
	return nbal, setUint64(ctx, mu, key, nbal)
}

func SubBalance(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	amount uint64,
) (uint64, error) {
	key, bal, ok, err := getBalance(ctx, mu, addr)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s has no balance", ErrInvalidBalance, addr)
	}
	nbal, err := smath.Sub(bal, amount)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: could not subtract balance (bal=%d, addr=%v, amount=%d)",
			ErrInvalidBalance,
			bal,
			addr,
			amount,
		)
	}
	if nbal == 0 {
		// If there is no balance left, we should delete the record instead of
		// setting it to 0.
		return 0, mu.Remove(ctx, key)
	}
	return nbal, setUint64(ctx, mu, key, nbal)
}

// GetHeight returns the number of accepted transactions. A missing key means
// nothing was accepted yet.
func GetHeight(ctx context.Context, im state.Immutable) (uint64, error) {
	h, _, err := innerGetUint64(im.GetValue(ctx, HeightKey()))
	return h, err
}

func HeightValue(height uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, height)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain_test

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/chain/chaintest"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/genesis"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
)

func TestTransactionSignAndParse(t *testing.T) {
	require := require.New(t)

	rules := chaintest.NewRules()
	factory, actor := newFactory(t)
	record := newRecord()
	tx := signTx(t, factory, newBase(rules),
		&actions.Create{Counter: record},
		&actions.Set{Counter: record, Value: 10},
		&actions.Close{Counter: record, Payer: actor},
	)
	require.NotEqual(ids.Empty, tx.ID())
	require.Equal(len(tx.Bytes()), tx.Size())
	require.Equal(actor, tx.Sponsor())

	parsed, err := chain.ParseTx(tx.Bytes(), newRegistry(t))
	require.NoError(err)
	require.Equal(tx.ID(), parsed.ID())
	require.Equal(tx.Base, parsed.Base)
	require.Equal(tx.Actions, parsed.Actions)
	require.Equal(actor, parsed.Auth.Actor())

	digest, err := parsed.Digest()
	require.NoError(err)
	expected, err := chain.NewTx(tx.Base, tx.Actions).Digest()
	require.NoError(err)
	require.Equal(expected, digest)

	_, err = chain.ParseTx(append(tx.Bytes(), 0), newRegistry(t))
	require.ErrorIs(err, chain.ErrInvalidObject)
}

func TestSignWithDefaultRules(t *testing.T) {
	require := require.New(t)

	rules := genesis.NewDefaultRules()
	factory, _ := newFactory(t)
	tx := signTx(t, factory, newBase(rules), &actions.Create{Counter: newRecord()})
	parsed, err := chain.ParseTx(tx.Bytes(), newRegistry(t))
	require.NoError(err)
	require.Equal(genesis.DefaultChainID, parsed.Base.ChainID)
	require.Equal(rules.GetBaseFee(), parsed.Base.MaxFee)

	// Neither the chain id nor the max fee may be left unset
	base := newBase(rules)
	base.ChainID = ids.Empty
	_, err = chain.NewTx(base, []chain.Action{&actions.Create{Counter: newRecord()}}).Sign(factory, newRegistry(t))
	require.ErrorIs(err, codec.ErrFieldNotPopulated)
	base = newBase(rules)
	base.MaxFee = 0
	_, err = chain.NewTx(base, []chain.Action{&actions.Create{Counter: newRecord()}}).Sign(factory, newRegistry(t))
	require.ErrorIs(err, codec.ErrFieldNotPopulated)
}

func TestTransactionIDIsDeterministic(t *testing.T) {
	require := require.New(t)

	rules := chaintest.NewRules()
	factory, _ := newFactory(t)
	record := newRecord()
	a := signTx(t, factory, newBase(rules), &actions.Increment{Counter: record})
	b := signTx(t, factory, newBase(rules), &actions.Increment{Counter: record})
	require.Equal(a.ID(), b.ID())

	base := newBase(rules)
	base.Timestamp -= consts.MillisecondsPerSecond
	c := signTx(t, factory, base, &actions.Increment{Counter: record})
	require.NotEqual(a.ID(), c.ID())
}

func TestParseTxErrors(t *testing.T) {
	rules := chaintest.NewRules()

	pack := func(timestamp int64, typeID uint8) []byte {
		p := codec.NewWriter(0, consts.NetworkSizeLimit)
		base := newBase(rules)
		base.Timestamp = timestamp
		base.Marshal(p)
		p.PackByte(1)
		p.PackByte(typeID)
		p.PackAddress(newRecord())
		return p.Bytes()
	}
	noActions := func() []byte {
		p := codec.NewWriter(0, consts.NetworkSizeLimit)
		newBase(rules).Marshal(p)
		p.PackByte(0)
		return p.Bytes()
	}

	tests := []struct {
		name string
		b    []byte
		err  error
	}{
		{
			name: "misaligned timestamp",
			b:    pack(now+1, consts.IncrementID),
			err:  chain.ErrMisalignedTime,
		},
		{
			name: "unknown action",
			b:    pack(now, 0xFF),
			err:  chain.ErrInvalidActionID,
		},
		{
			name: "no actions",
			b:    noActions(),
			err:  chain.ErrNoActions,
		},
		{
			name: "unknown auth",
			b:    append(pack(now, consts.IncrementID), 0xFF),
			err:  chain.ErrInvalidAuthID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chain.ParseTx(tt.b, newRegistry(t))
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestTransactionStateKeys(t *testing.T) {
	require := require.New(t)

	rules := chaintest.NewRules()
	factory, actor := newFactory(t)
	record := newRecord()
	tx := signTx(t, factory, newBase(rules),
		&actions.Create{Counter: record},
		&actions.Increment{Counter: record},
	)

	stateKeys, err := tx.StateKeys(&storage.BalanceHandler{})
	require.NoError(err)
	require.Len(stateKeys, 3)
	require.True(stateKeys[string(storage.CounterKey(record))].Has(state.Allocate | state.Write))
	require.True(stateKeys[string(storage.DepositKey(record))].Has(state.Allocate | state.Write))
	require.True(stateKeys[string(storage.BalanceKey(actor))].Has(state.Read | state.Write))
	require.False(stateKeys[string(storage.BalanceKey(actor))].Has(state.Allocate))
}

func TestTransactionActionID(t *testing.T) {
	require := require.New(t)

	rules := chaintest.NewRules()
	factory, _ := newFactory(t)
	record := newRecord()
	tx := signTx(t, factory, newBase(rules),
		&actions.Increment{Counter: record},
		&actions.Increment{Counter: record},
	)
	require.Equal(tx.ActionID(0), tx.ActionID(0))
	require.NotEqual(tx.ActionID(0), tx.ActionID(1))
	require.NotEqual(tx.ID(), tx.ActionID(0))
}

func TestBaseExecute(t *testing.T) {
	rules := chaintest.NewRules()

	tests := []struct {
		name string
		base *chain.Base
		err  error
	}{
		{
			name: "valid at expiry",
			base: &chain.Base{Timestamp: now, ChainID: rules.ChainID},
		},
		{
			name: "valid at end of window",
			base: &chain.Base{Timestamp: now + rules.ValidityWindow, ChainID: rules.ChainID},
		},
		{
			name: "misaligned",
			base: &chain.Base{Timestamp: now + 1, ChainID: rules.ChainID},
			err:  chain.ErrMisalignedTime,
		},
		{
			name: "expired",
			base: &chain.Base{Timestamp: now - consts.MillisecondsPerSecond, ChainID: rules.ChainID},
			err:  chain.ErrTimestampTooLate,
		},
		{
			name: "too far ahead",
			base: &chain.Base{Timestamp: now + rules.ValidityWindow + consts.MillisecondsPerSecond, ChainID: rules.ChainID},
			err:  chain.ErrTimestampTooEarly,
		},
		{
			name: "other chain",
			base: &chain.Base{Timestamp: now, ChainID: ids.Empty},
			err:  chain.ErrInvalidChainID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.base.Execute(rules.ChainID, rules, now), tt.err)
		})
	}
}

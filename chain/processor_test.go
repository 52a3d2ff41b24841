// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/auth/authtest"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/chain/chaintest"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/crypto/ed25519"
	"github.com/ava-labs/countervm/storage"
	"github.com/ava-labs/countervm/trace"
)

const (
	now             = int64(1_700_000_000_000)
	startingBalance = uint64(10_000_000)
)

func newRegistry(t *testing.T) chain.Registry {
	actionParser := codec.NewTypeParser[chain.Action]()
	authParser := codec.NewTypeParser[chain.Auth]()
	require.NoError(t, actions.Register(actionParser))
	require.NoError(t, auth.Register(authParser))
	return chain.NewRegistry(actionParser, authParser)
}

func newFactory(t *testing.T) (chain.AuthFactory, codec.Address) {
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(t, err)
	factory := auth.NewED25519Factory(priv)
	return factory, factory.Address()
}

func newRecord() codec.Address {
	return codec.CreateAddress(consts.CounterAddressID, ids.GenerateTestID())
}

func newBase(r chain.Rules) *chain.Base {
	return &chain.Base{
		Timestamp: now + r.GetValidityWindow(),
		ChainID:   r.GetChainID(),
		MaxFee:    r.GetBaseFee(),
	}
}

func signTx(t *testing.T, factory chain.AuthFactory, base *chain.Base, acts ...chain.Action) *chain.Transaction {
	tx, err := chain.NewTx(base, acts).Sign(factory, newRegistry(t))
	require.NoError(t, err)
	return tx
}

func newProcessor(t *testing.T) *chain.Processor {
	p, err := chain.NewProcessor(trace.Noop(), &storage.BalanceHandler{}, prometheus.NewRegistry())
	require.NoError(t, err)
	return p
}

func fund(t *testing.T, addr codec.Address, balance uint64) *chaintest.InMemoryStore {
	store := chaintest.NewInMemoryStore()
	require.NoError(t, storage.SetBalance(context.Background(), store, addr, balance))
	return store
}

func TestProcessorExecute(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rules := chaintest.NewRules()
	factory, payer := newFactory(t)
	store := fund(t, payer, startingBalance)
	record := newRecord()
	tx := signTx(t, factory, newBase(rules),
		&actions.Create{Counter: record},
		&actions.Increment{Counter: record},
	)

	result, changes, err := newProcessor(t).Execute(ctx, store, rules, tx, now)
	require.NoError(err)
	require.Equal(tx.ID(), result.TxID)
	require.Equal(rules.GetBaseFee(), result.Fee)
	deposit, err := rules.GetMinimumBalance(storage.CounterRecordLen)
	require.NoError(err)
	require.Equal([][]byte{
		(&actions.CreateResult{Deposit: deposit}).Bytes(),
		(&actions.CounterResult{Count: 1}).Bytes(consts.IncrementID),
	}, result.Outputs)

	// Balance, record and deposit
	require.Len(changes, 3)
	for _, v := range changes {
		require.True(v.HasValue())
	}
	store.Apply(changes)
	c, err := storage.GetCounter(ctx, store, record)
	require.NoError(err)
	require.Equal(uint8(1), c.Count)
	balance, err := storage.GetBalance(ctx, store, payer)
	require.NoError(err)
	require.Equal(startingBalance-rules.GetBaseFee()-deposit, balance)
}

func TestProcessorRollback(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rules := chaintest.NewRules()
	factory, payer := newFactory(t)
	store := fund(t, payer, startingBalance)
	record := newRecord()
	tx := signTx(t, factory, newBase(rules),
		&actions.Create{Counter: record},
		&actions.Increment{Counter: record},
		&actions.Decrement{Counter: record},
		&actions.Decrement{Counter: record},
	)

	result, changes, err := newProcessor(t).Execute(ctx, store, rules, tx, now)
	require.ErrorIs(err, chain.ErrActionFailed)
	require.ErrorIs(err, actions.ErrArithmeticUnderflow)
	require.ErrorContains(err, "action 3")
	require.Nil(result)
	require.Nil(changes)

	// Nothing was written, not even the fee.
	_, err = store.GetValue(ctx, storage.CounterKey(record))
	require.ErrorIs(err, database.ErrNotFound)
	balance, err := storage.GetBalance(ctx, store, payer)
	require.NoError(err)
	require.Equal(startingBalance, balance)
}

func TestProcessorRejects(t *testing.T) {
	factory, payer := newFactory(t)
	_, stranger := newFactory(t)
	record := newRecord()

	tests := []struct {
		name   string
		rules  func(*chaintest.Rules)
		base   func(*chain.Base)
		tx     func(*testing.T, *chain.Base) *chain.Transaction
		funded codec.Address
		err    error
	}{
		{
			name: "expired",
			base: func(b *chain.Base) {
				b.Timestamp = now - consts.MillisecondsPerSecond
			},
			err: chain.ErrTimestampTooLate,
		},
		{
			name: "beyond validity window",
			base: func(b *chain.Base) {
				b.Timestamp += consts.MillisecondsPerSecond
			},
			err: chain.ErrTimestampTooEarly,
		},
		{
			name: "wrong chain",
			base: func(b *chain.Base) {
				b.ChainID = ids.GenerateTestID()
			},
			err: chain.ErrInvalidChainID,
		},
		{
			name: "max fee too low",
			base: func(b *chain.Base) {
				b.MaxFee--
			},
			err: chain.ErrMaxFeeTooLow,
		},
		{
			name:   "unfunded sponsor",
			funded: stranger,
			err:    chain.ErrInsufficientFunds,
		},
		{
			name: "too many actions",
			rules: func(r *chaintest.Rules) {
				r.MaxActionsPerTx = 1
			},
			tx: func(t *testing.T, b *chain.Base) *chain.Transaction {
				return signTx(t, factory, b,
					&actions.Create{Counter: record},
					&actions.Increment{Counter: record},
				)
			},
			err: chain.ErrTooManyActions,
		},
		{
			name: "deposit overflows",
			rules: func(r *chaintest.Rules) {
				r.LamportsPerByteYear = math.MaxUint64
			},
			err: chain.ErrDepositOverflow,
		},
		{
			name: "no actions",
			tx: func(_ *testing.T, b *chain.Base) *chain.Transaction {
				return chain.NewTx(b, nil)
			},
			err: chain.ErrNoActions,
		},
		{
			name: "signature over other actions",
			tx: func(t *testing.T, b *chain.Base) *chain.Transaction {
				signed := signTx(t, factory, b, &actions.Create{Counter: record})
				forged := chain.NewTx(b, []chain.Action{&actions.Create{Counter: newRecord()}})
				forged.Auth = signed.Auth
				return forged
			},
			err: chain.ErrInvalidSignature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			rules := chaintest.NewRules()
			if tt.rules != nil {
				tt.rules(rules)
			}
			base := newBase(rules)
			if tt.base != nil {
				tt.base(base)
			}
			var tx *chain.Transaction
			if tt.tx != nil {
				tx = tt.tx(t, base)
			} else {
				tx = signTx(t, factory, base, &actions.Create{Counter: record})
			}
			funded := payer
			if tt.funded != codec.EmptyAddress {
				funded = tt.funded
			}
			store := fund(t, funded, startingBalance)

			result, changes, err := newProcessor(t).Execute(context.Background(), store, rules, tx, now)
			require.ErrorIs(err, tt.err)
			require.Nil(result)
			require.Nil(changes)
		})
	}
}

func TestProcessorCloseToOtherPayer(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rules := chaintest.NewRules()
	factory, payer := newFactory(t)
	_, other := newFactory(t)
	record := newRecord()
	store := fund(t, payer, startingBalance)
	deposit, err := rules.GetMinimumBalance(storage.CounterRecordLen)
	require.NoError(err)
	require.NoError(storage.SetCounter(ctx, store, record, &storage.Counter{Count: 4}))
	require.NoError(storage.SetDeposit(ctx, store, record, deposit))

	// Closing into another account is refused before any state moves.
	tx := signTx(t, factory, newBase(rules), &actions.Close{Counter: record, Payer: other})
	_, _, err = newProcessor(t).Execute(ctx, store, rules, tx, now)
	require.ErrorIs(err, actions.ErrAuthorization)
	c, err := storage.GetCounter(ctx, store, record)
	require.NoError(err)
	require.Equal(uint8(4), c.Count)
}

func TestProcessorCloseRemovesRecord(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rules := chaintest.NewRules()
	factory, payer := newFactory(t)
	record := newRecord()
	store := fund(t, payer, startingBalance)
	require.NoError(storage.SetCounter(ctx, store, record, &storage.Counter{Count: 9}))
	require.NoError(storage.SetDeposit(ctx, store, record, 1_000))
	before := store.Clone()

	tx := signTx(t, factory, newBase(rules), &actions.Close{Counter: record, Payer: payer})
	_, changes, err := newProcessor(t).Execute(ctx, store, rules, tx, now)
	require.NoError(err)
	store.Apply(changes)

	_, err = store.GetValue(ctx, storage.CounterKey(record))
	require.ErrorIs(err, database.ErrNotFound)
	_, err = store.GetValue(ctx, storage.DepositKey(record))
	require.ErrorIs(err, database.ErrNotFound)
	balance, err := storage.GetBalance(ctx, store, payer)
	require.NoError(err)
	require.Equal(startingBalance+1_000-rules.GetBaseFee(), balance)

	// The clone still holds the record
	c, err := storage.GetCounter(ctx, before, record)
	require.NoError(err)
	require.Equal(uint8(9), c.Count)
}

func TestProcessorSponsorPaysFee(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rules := chaintest.NewRules()
	_, actor := newFactory(t)
	_, sponsor := newFactory(t)
	store := fund(t, sponsor, startingBalance)
	require.NoError(storage.SetBalance(ctx, store, actor, startingBalance))
	record := newRecord()

	tx := chain.NewTx(newBase(rules), []chain.Action{&actions.Create{Counter: record}})
	tx.Auth = &authtest.MockAuth{ActorAddr: actor, SponsorAddr: sponsor}
	_, changes, err := newProcessor(t).Execute(ctx, store, rules, tx, now)
	require.NoError(err)
	store.Apply(changes)

	deposit, err := rules.GetMinimumBalance(storage.CounterRecordLen)
	require.NoError(err)
	balance, err := storage.GetBalance(ctx, store, actor)
	require.NoError(err)
	require.Equal(startingBalance-deposit, balance)
	balance, err = storage.GetBalance(ctx, store, sponsor)
	require.NoError(err)
	require.Equal(startingBalance-rules.GetBaseFee(), balance)

	errBadSig := errors.New("bad signature")
	tx = chain.NewTx(newBase(rules), []chain.Action{&actions.Increment{Counter: record}})
	tx.Auth = &authtest.MockAuth{ActorAddr: actor, SponsorAddr: sponsor, VerifyError: errBadSig}
	_, _, err = newProcessor(t).Execute(ctx, store, rules, tx, now)
	require.ErrorIs(err, chain.ErrInvalidSignature)
	require.ErrorIs(err, errBadSig)
}

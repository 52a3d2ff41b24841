// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/genesis"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
	"github.com/ava-labs/countervm/trace"
)

const (
	startingBalance = 100_000_000
	startTime       = int64(1_700_000_000_000)
)

type testEnv struct {
	vm      *VM
	db      state.Database
	genesis *genesis.Genesis
	factory chain.AuthFactory
	payer   codec.Address
}

func newTestGenesis(payer codec.Address) *genesis.Genesis {
	g := genesis.NewDefaultGenesis([]*genesis.CustomAllocation{
		{
			Address: codec.MustAddressBech32(consts.HRP, payer),
			Balance: startingBalance,
		},
	})
	g.Rules.NetworkID = 1337
	g.Rules.ChainID = ids.Empty.Prefix(7)
	return g
}

func newTestEnv(t *testing.T) *testEnv {
	require := require.New(t)

	key, err := auth.NewED25519PrivateKeyFactory().GeneratePrivateKey()
	require.NoError(err)
	factory, err := auth.GetFactory(key)
	require.NoError(err)

	db := state.NewDatabase(memdb.New())
	g := newTestGenesis(key.Address)
	vm, err := New(context.Background(), logging.NoLog{}, trace.Noop(), db, g, NewDefaultConfig(), prometheus.NewRegistry())
	require.NoError(err)
	vm.Clock().Set(time.UnixMilli(startTime))
	return &testEnv{
		vm:      vm,
		db:      db,
		genesis: g,
		factory: factory,
		payer:   key.Address,
	}
}

func (e *testEnv) sign(t *testing.T, timestamp int64, acts ...chain.Action) *chain.Transaction {
	tx := chain.NewTx(&chain.Base{
		Timestamp: timestamp,
		ChainID:   e.vm.Rules().GetChainID(),
		MaxFee:    e.vm.Rules().GetBaseFee(),
	}, acts)
	signed, err := tx.Sign(e.factory, e.vm.Registry())
	require.NoError(t, err)
	return signed
}

func (e *testEnv) submit(t *testing.T, acts ...chain.Action) (*chain.Accepted, error) {
	return e.vm.Submit(context.Background(), e.sign(t, startTime+10_000, acts...))
}

func (e *testEnv) count(t *testing.T, record codec.Address) uint8 {
	c, err := e.vm.GetCounter(context.Background(), record)
	require.NoError(t, err)
	return c.Count
}

func newRecord() codec.Address {
	return codec.CreateAddress(consts.CounterAddressID, ids.GenerateTestID())
}

func TestGenesisApplied(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t)

	bal, err := env.vm.GetBalance(ctx, env.payer)
	require.NoError(err)
	require.Equal(uint64(startingBalance), bal)
	require.Zero(env.vm.Height())

	// Reopening the same database does not reapply allocations.
	vm, err := New(ctx, logging.NoLog{}, trace.Noop(), env.db, env.genesis, NewDefaultConfig(), prometheus.NewRegistry())
	require.NoError(err)
	bal, err = vm.GetBalance(ctx, env.payer)
	require.NoError(err)
	require.Equal(uint64(startingBalance), bal)

	other := newTestGenesis(codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID()))
	_, err = New(ctx, logging.NoLog{}, trace.Noop(), env.db, other, NewDefaultConfig(), prometheus.NewRegistry())
	require.ErrorIs(err, ErrGenesisMismatch)
}

func TestCounterScenario(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t)
	record := newRecord()
	fee := env.vm.Rules().GetBaseFee()
	deposit, err := env.vm.Rules().GetMinimumBalance(storage.CounterRecordLen)
	require.NoError(err)

	accepted, err := env.submit(t, &actions.Create{Counter: record})
	require.NoError(err)
	require.Equal(uint64(1), accepted.Height)
	require.Equal([][]byte{(&actions.CreateResult{Deposit: deposit}).Bytes()}, accepted.Result.Outputs)
	require.Equal(fee, accepted.Result.Fee)
	require.Zero(env.count(t, record))
	c, held, err := env.vm.GetRecord(ctx, record)
	require.NoError(err)
	require.Zero(c.Count)
	require.Equal(deposit, held)

	bal, err := env.vm.GetBalance(ctx, env.payer)
	require.NoError(err)
	require.Equal(startingBalance-fee-deposit, bal)

	steps := []struct {
		action   chain.Action
		typeID   uint8
		expected uint8
	}{
		{&actions.Increment{Counter: record}, consts.IncrementID, 1},
		{&actions.Increment{Counter: record}, consts.IncrementID, 2},
		{&actions.Increment{Counter: record}, consts.IncrementID, 3},
		{&actions.Set{Counter: record, Value: 10}, consts.SetID, 10},
		{&actions.Decrement{Counter: record}, consts.DecrementID, 9},
		{&actions.Decrement{Counter: record}, consts.DecrementID, 8},
	}
	for _, step := range steps {
		// Each step needs a distinct tx id.
		env.vm.Clock().Set(env.vm.Clock().Time().Add(time.Second))
		tx := env.sign(t, env.vm.Clock().Time().UnixMilli()+10_000, step.action)
		accepted, err := env.vm.Submit(ctx, tx)
		require.NoError(err)
		require.Equal([][]byte{(&actions.CounterResult{Count: step.expected}).Bytes(step.typeID)}, accepted.Result.Outputs)
		require.Equal(step.expected, env.count(t, record))
	}
	require.Equal(uint64(7), env.vm.Height())

	accepted, err = env.submit(t, &actions.Close{Counter: record, Payer: env.payer})
	require.NoError(err)
	expectedBalance := startingBalance - 8*fee
	require.Equal([][]byte{(&actions.CloseResult{Refund: deposit, PayerBalance: expectedBalance}).Bytes()}, accepted.Result.Outputs)

	_, err = env.vm.GetCounter(ctx, record)
	require.ErrorIs(err, storage.ErrRecordNotFound)
	_, _, err = env.vm.GetRecord(ctx, record)
	require.ErrorIs(err, storage.ErrRecordNotFound)
	d, err := env.vm.GetDeposit(ctx, record)
	require.NoError(err)
	require.Zero(d)
	bal, err = env.vm.GetBalance(ctx, env.payer)
	require.NoError(err)
	require.Equal(expectedBalance, bal)

	height, err := storage.GetHeight(ctx, env.db)
	require.NoError(err)
	require.Equal(uint64(8), height)
	require.Len(env.vm.Accepted(), 8)
	lastHeight, last, ok := env.vm.LastAccepted()
	require.True(ok)
	require.Equal(uint64(8), lastHeight)
	require.Equal(accepted, last)
}

func TestReadsAreConsistent(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t)
	record := newRecord()
	deposit, err := env.vm.Rules().GetMinimumBalance(storage.CounterRecordLen)
	require.NoError(err)

	// Signed up front, failing a test from another goroutine is not allowed
	txs := make([]*chain.Transaction, 0, 40)
	for i := 0; i < 20; i++ {
		ts := startTime + int64(i+1)*consts.MillisecondsPerSecond
		txs = append(txs,
			env.sign(t, ts, &actions.Create{Counter: record}),
			env.sign(t, ts, &actions.Close{Counter: record, Payer: env.payer}),
		)
	}

	var done atomic.Bool
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer done.Store(true)
		for _, tx := range txs {
			if _, err := env.vm.Submit(egCtx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	eg.Go(func() error {
		for !done.Load() {
			c, d, err := env.vm.GetRecord(egCtx, record)
			switch {
			case errors.Is(err, storage.ErrRecordNotFound):
			case err != nil:
				return err
			case d != deposit:
				return fmt.Errorf("count %d read with deposit %d", c.Count, d)
			}
			height, last, ok := env.vm.LastAccepted()
			if ok && last.Height != height {
				return fmt.Errorf("height %d read with result at %d", height, last.Height)
			}
		}
		return nil
	})
	require.NoError(eg.Wait())
	require.Equal(uint64(len(txs)), env.vm.Height())
}

func TestFailedTxChangesNothing(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t)
	record := newRecord()

	_, err := env.submit(t, &actions.Create{Counter: record}, &actions.Set{Counter: record, Value: 255})
	require.NoError(err)
	balanceBefore, err := env.vm.GetBalance(ctx, env.payer)
	require.NoError(err)

	// The first increment would succeed on its own but the second overflows.
	_, err = env.submit(t, &actions.Decrement{Counter: record}, &actions.Increment{Counter: record}, &actions.Increment{Counter: record})
	require.ErrorIs(err, chain.ErrActionFailed)
	require.ErrorIs(err, actions.ErrArithmeticOverflow)

	require.Equal(uint8(255), env.count(t, record))
	balanceAfter, err := env.vm.GetBalance(ctx, env.payer)
	require.NoError(err)
	require.Equal(balanceBefore, balanceAfter)
	require.Equal(uint64(1), env.vm.Height())
}

func TestCreateTwiceFails(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)
	record := newRecord()

	_, err := env.submit(t, &actions.Create{Counter: record})
	require.NoError(err)
	env.vm.Clock().Set(env.vm.Clock().Time().Add(time.Second))
	_, err = env.vm.Submit(context.Background(), env.sign(t, startTime+11_000, &actions.Create{Counter: record}))
	require.ErrorIs(err, actions.ErrAllocation)
}

func TestCloseRequiresSigner(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)
	record := newRecord()

	_, err := env.submit(t, &actions.Create{Counter: record})
	require.NoError(err)

	other := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())
	_, err = env.vm.Submit(context.Background(), env.sign(t, startTime+11_000, &actions.Close{Counter: record, Payer: other}))
	require.ErrorIs(err, actions.ErrAuthorization)
	require.Zero(env.count(t, record))
}

func TestSubmitRejections(t *testing.T) {
	env := newTestEnv(t)
	record := newRecord()
	_, err := env.submit(t, &actions.Create{Counter: record})
	require.NoError(t, err)

	tests := []struct {
		name        string
		tx          func(t *testing.T) *chain.Transaction
		expectedErr error
	}{
		{
			name: "duplicate",
			tx: func(t *testing.T) *chain.Transaction {
				return env.sign(t, startTime+10_000, &actions.Create{Counter: record})
			},
			expectedErr: ErrDuplicateTx,
		},
		{
			name: "expired",
			tx: func(t *testing.T) *chain.Transaction {
				return env.sign(t, startTime-1_000, &actions.Increment{Counter: record})
			},
			expectedErr: chain.ErrTimestampTooLate,
		},
		{
			name: "too far in the future",
			tx: func(t *testing.T) *chain.Transaction {
				return env.sign(t, startTime+env.vm.Rules().GetValidityWindow()+1_000, &actions.Increment{Counter: record})
			},
			expectedErr: chain.ErrTimestampTooEarly,
		},
		{
			name: "wrong chain",
			tx: func(t *testing.T) *chain.Transaction {
				tx := chain.NewTx(&chain.Base{
					Timestamp: startTime + 20_000,
					ChainID:   ids.GenerateTestID(),
					MaxFee:    env.vm.Rules().GetBaseFee(),
				}, []chain.Action{&actions.Increment{Counter: record}})
				signed, err := tx.Sign(env.factory, env.vm.Registry())
				require.NoError(t, err)
				return signed
			},
			expectedErr: chain.ErrInvalidChainID,
		},
		{
			name: "fee too low",
			tx: func(t *testing.T) *chain.Transaction {
				tx := chain.NewTx(&chain.Base{
					Timestamp: startTime + 20_000,
					ChainID:   env.vm.Rules().GetChainID(),
					MaxFee:    env.vm.Rules().GetBaseFee() - 1,
				}, []chain.Action{&actions.Increment{Counter: record}})
				signed, err := tx.Sign(env.factory, env.vm.Registry())
				require.NoError(t, err)
				return signed
			},
			expectedErr: chain.ErrMaxFeeTooLow,
		},
		{
			name: "unfunded signer",
			tx: func(t *testing.T) *chain.Transaction {
				key, err := auth.NewED25519PrivateKeyFactory().GeneratePrivateKey()
				require.NoError(t, err)
				factory, err := auth.GetFactory(key)
				require.NoError(t, err)
				tx := chain.NewTx(&chain.Base{
					Timestamp: startTime + 20_000,
					ChainID:   env.vm.Rules().GetChainID(),
					MaxFee:    env.vm.Rules().GetBaseFee(),
				}, []chain.Action{&actions.Increment{Counter: record}})
				signed, err := tx.Sign(factory, env.vm.Registry())
				require.NoError(t, err)
				return signed
			},
			expectedErr: chain.ErrInsufficientFunds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.vm.Submit(context.Background(), tt.tx(t))
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
	require.Equal(t, uint64(1), env.vm.Height())
	require.Zero(t, env.count(t, record))
}

func TestSeenTxsExpire(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)
	record := newRecord()

	tx := env.sign(t, startTime+1_000, &actions.Create{Counter: record})
	_, err := env.vm.Submit(context.Background(), tx)
	require.NoError(err)
	require.Equal(1, env.vm.seen.Len())

	// Once expired the id is forgotten and the tx fails on its timestamp.
	env.vm.Clock().Set(time.UnixMilli(startTime + 2_000))
	_, err = env.vm.Submit(context.Background(), tx)
	require.ErrorIs(err, chain.ErrTimestampTooLate)
	require.Zero(env.vm.seen.Len())
}

func TestSubscribe(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)

	id, ch := env.vm.Subscribe()
	accepted, err := env.submit(t, &actions.Create{Counter: newRecord()})
	require.NoError(err)
	require.Equal(accepted, <-ch)

	env.vm.Unsubscribe(id)
	_, ok := <-ch
	require.False(ok)

	_, ch = env.vm.Subscribe()
	require.NoError(env.vm.Close())
	_, ok = <-ch
	require.False(ok)

	require.ErrorIs(env.vm.Close(), ErrClosed)
	_, err = env.submit(t, &actions.Create{Counter: newRecord()})
	require.ErrorIs(err, ErrClosed)
}

func TestNewInvalidConfig(t *testing.T) {
	require := require.New(t)

	db := state.NewDatabase(memdb.New())
	g := newTestGenesis(codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID()))
	_, err := New(context.Background(), logging.NoLog{}, trace.Noop(), db, g, Config{ListenerBuffer: 1}, prometheus.NewRegistry())
	require.ErrorIs(err, ErrInvalidCapacity)
}

func TestNewMissingChainID(t *testing.T) {
	require := require.New(t)

	db := state.NewDatabase(memdb.New())
	g := newTestGenesis(codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID()))
	g.Rules.ChainID = ids.Empty
	_, err := New(context.Background(), logging.NoLog{}, trace.Noop(), db, g, NewDefaultConfig(), prometheus.NewRegistry())
	require.ErrorIs(err, ErrMissingChainID)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/chain/chaintest"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/genesis"
	"github.com/ava-labs/countervm/pubsub"
	"github.com/ava-labs/countervm/server"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
	"github.com/ava-labs/countervm/trace"
	"github.com/ava-labs/countervm/utils"
	"github.com/ava-labs/countervm/vm"
)

const startingBalance = 50_000_000

func newRegistry(t *testing.T) chain.Registry {
	registry, err := vm.NewRegistry()
	require.NoError(t, err)
	return registry
}

func newFactory(t *testing.T) (chain.AuthFactory, codec.Address) {
	key, err := auth.NewED25519PrivateKeyFactory().GeneratePrivateKey()
	require.NoError(t, err)
	factory, err := auth.GetFactory(key)
	require.NoError(t, err)
	return factory, key.Address
}

func newSignedTx(t *testing.T, registry chain.Registry) *chain.Transaction {
	factory, _ := newFactory(t)
	record := codec.CreateAddress(consts.CounterAddressID, ids.GenerateTestID())
	rules := chaintest.NewRules()
	tx := chain.NewTx(&chain.Base{
		Timestamp: utils.UnixRMilli(-1, rules.ValidityWindow),
		ChainID:   rules.ChainID,
		MaxFee:    rules.BaseFee,
	}, []chain.Action{&actions.Increment{Counter: record}})
	signed, err := tx.Sign(factory, registry)
	require.NoError(t, err)
	return signed
}

type node struct {
	vm       *vm.VM
	uri      string
	factory  chain.AuthFactory
	payer    codec.Address
	registry chain.Registry
}

// startNode serves a memdb backed vm with the JSON-RPC and websocket
// endpoints.
func startNode(t *testing.T) *node {
	require := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())

	factory, payer := newFactory(t)
	g := genesis.NewDefaultGenesis([]*genesis.CustomAllocation{
		{Address: codec.MustAddressBech32(consts.HRP, payer), Balance: startingBalance},
	})
	g.Rules.NetworkID = 5
	g.Rules.ChainID = ids.GenerateTestID()
	v, err := vm.New(ctx, logging.NoLog{}, trace.Noop(), state.NewDatabase(memdb.New()), g, vm.NewDefaultConfig(), prometheus.NewRegistry())
	require.NoError(err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	s := server.New(logging.NoLog{}, listener, server.NewDefaultHTTPConfig(), []string{"*"}, time.Second)
	handler, err := server.NewHandler(NewJSONRPCServer(v), Name)
	require.NoError(err)
	s.AddRoute(handler, JSONRPCEndpoint)
	ws, pubsubServer := NewWebSocketServer(v, pubsub.NewDefaultServerConfig())
	s.AddStreamRoute(pubsubServer, WebSocketEndpoint)

	go func() { _ = ws.Run(ctx) }()
	go func() { _ = s.Dispatch() }()
	t.Cleanup(func() {
		cancel()
		pubsubServer.Close()
		require.NoError(s.Shutdown())
		require.NoError(v.Close())
	})
	return &node{
		vm:       v,
		uri:      fmt.Sprintf("http://%s", s.Addr()),
		factory:  factory,
		payer:    payer,
		registry: v.Registry(),
	}
}

func TestJSONRPCClient(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := startNode(t)
	cli := NewJSONRPCClient(n.uri)

	ok, err := cli.Ping(ctx)
	require.NoError(err)
	require.True(ok)

	network, err := cli.Network(ctx)
	require.NoError(err)
	require.Equal(uint32(5), network.NetworkID)
	require.Equal(n.vm.Rules().GetChainID(), network.ChainID)
	deposit := network.RecordDeposit

	record := codec.CreateAddress(consts.CounterAddressID, ids.GenerateTestID())
	reply, err := cli.GenerateAndSubmit(ctx, n.registry, n.factory, &actions.Create{Counter: record})
	require.NoError(err)
	require.Equal(uint64(1), reply.Height)
	require.Equal([][]byte{(&actions.CreateResult{Deposit: deposit}).Bytes()}, reply.Outputs)

	count, d, err := cli.GetCounter(ctx, record)
	require.NoError(err)
	require.Zero(count)
	require.Equal(deposit, d)

	// Transactions built in the same second differ by their actions.
	_, err = cli.GenerateAndSubmit(ctx, n.registry, n.factory,
		&actions.Increment{Counter: record},
		&actions.Increment{Counter: record},
		&actions.Increment{Counter: record},
	)
	require.NoError(err)
	_, err = cli.GenerateAndSubmit(ctx, n.registry, n.factory, &actions.Set{Counter: record, Value: 10})
	require.NoError(err)
	_, err = cli.GenerateAndSubmit(ctx, n.registry, n.factory,
		&actions.Decrement{Counter: record},
		&actions.Decrement{Counter: record},
	)
	require.NoError(err)
	count, _, err = cli.GetCounter(ctx, record)
	require.NoError(err)
	require.Equal(uint8(8), count)

	// Errors cross the API as strings.
	_, err = cli.GenerateAndSubmit(ctx, n.registry, n.factory,
		&actions.Create{Counter: record},
		&actions.Increment{Counter: record},
	)
	require.ErrorContains(err, actions.ErrAllocation.Error())

	_, err = cli.GenerateAndSubmit(ctx, n.registry, n.factory, &actions.Close{Counter: record, Payer: n.payer})
	require.NoError(err)
	_, _, err = cli.GetCounter(ctx, record)
	require.ErrorContains(err, storage.ErrRecordNotFound.Error())

	balance, err := cli.GetBalance(ctx, n.payer)
	require.NoError(err)
	require.Equal(startingBalance-5*network.BaseFee, balance)

	height, err := cli.Height(ctx)
	require.NoError(err)
	require.Equal(uint64(5), height)
	lastHeight, _, txID, err := cli.LastAccepted(ctx)
	require.NoError(err)
	require.Equal(uint64(5), lastHeight)
	require.NotEqual(ids.Empty, txID)
}

func TestWebSocketClient(t *testing.T) {
	require := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	n := startNode(t)
	cli := NewJSONRPCClient(n.uri)

	ws, err := NewWebSocketClient(n.uri, 5*time.Second, 128, 2*units.MiB)
	require.NoError(err)
	defer ws.Close()

	// Both messages are handled in order on the same connection, so the
	// listener is registered before the tx executes.
	require.NoError(ws.RegisterAccepted())
	record := codec.CreateAddress(consts.CounterAddressID, ids.GenerateTestID())
	tx, err := cli.GenerateTransaction(ctx, n.registry, n.factory, &actions.Create{Counter: record})
	require.NoError(err)
	require.NoError(ws.SubmitTx(tx))

	txID, accepted, txErr, err := ws.ListenTx(ctx)
	require.NoError(err)
	require.NoError(txErr)
	require.Equal(tx.ID(), txID)
	require.Equal(uint64(1), accepted.Height)

	streamed, err := ws.ListenAccepted(ctx)
	require.NoError(err)
	require.Equal(accepted, streamed)

	// A failing tx is reported with its error.
	require.NoError(ws.SubmitTx(tx))
	txID, accepted, txErr, err = ws.ListenTx(ctx)
	require.NoError(err)
	require.Equal(tx.ID(), txID)
	require.Nil(accepted)
	require.ErrorContains(txErr, vm.ErrDuplicateTx.Error())

	// Results accepted over JSON-RPC are streamed too.
	reply, err := cli.GenerateAndSubmit(ctx, n.registry, n.factory, &actions.Increment{Counter: record})
	require.NoError(err)
	streamed, err = ws.ListenAccepted(ctx)
	require.NoError(err)
	require.Equal(reply.TxID, streamed.Result.TxID)
	require.Equal(uint64(2), streamed.Height)

	require.NoError(ws.Close())
	_, err = ws.ListenAccepted(ctx)
	require.ErrorIs(err, ErrClosed)
}

func TestWebSocketPacker(t *testing.T) {
	require := require.New(t)

	a := &chain.Accepted{
		Height:    9,
		Timestamp: 1_000,
		Result: &chain.Result{
			TxID:    ids.GenerateTestID(),
			Outputs: [][]byte{{consts.SetID, 10}},
			Fee:     5_000,
		},
	}
	msg, err := PackAcceptedMessage(a)
	require.NoError(err)
	require.Equal(AcceptedMode, msg[0])
	parsed, err := UnpackAcceptedMessage(msg[1:])
	require.NoError(err)
	require.Equal(a, parsed)

	msg, err = PackTxMessage(a.Result.TxID, a, nil)
	require.NoError(err)
	require.Equal(TxMode, msg[0])
	txID, parsed, txErr, err := UnpackTxMessage(msg[1:])
	require.NoError(err)
	require.NoError(txErr)
	require.Equal(a.Result.TxID, txID)
	require.Equal(a, parsed)

	msg, err = PackTxMessage(a.Result.TxID, nil, actions.ErrArithmeticOverflow)
	require.NoError(err)
	txID, parsed, txErr, err = UnpackTxMessage(msg[1:])
	require.NoError(err)
	require.Equal(a.Result.TxID, txID)
	require.Nil(parsed)
	require.EqualError(txErr, actions.ErrArithmeticOverflow.Error())
}

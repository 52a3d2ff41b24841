// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"strings"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/utils"
)

type JSONRPCClient struct {
	requester *EndpointRequester

	// network is cached after the first successful call
	network *NetworkReply
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	return &JSONRPCClient{requester: NewEndpointRequester(uri, Name)}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) Network(ctx context.Context) (*NetworkReply, error) {
	if cli.network != nil {
		return cli.network, nil
	}

	resp := new(NetworkReply)
	if err := cli.requester.SendRequest(
		ctx,
		"network",
		nil,
		resp,
	); err != nil {
		return nil, err
	}
	cli.network = resp
	return resp, nil
}

func (cli *JSONRPCClient) SubmitTx(ctx context.Context, tx []byte) (*SubmitTxReply, error) {
	resp := new(SubmitTxReply)
	err := cli.requester.SendRequest(
		ctx,
		"submitTx",
		&SubmitTxArgs{Tx: tx},
		resp,
	)
	return resp, err
}

func (cli *JSONRPCClient) GetCounter(ctx context.Context, record codec.Address) (uint8, uint64, error) {
	resp := new(CounterReply)
	err := cli.requester.SendRequest(
		ctx,
		"getCounter",
		&RecordArgs{Record: codec.MustAddressBech32(consts.HRP, record)},
		resp,
	)
	return resp.Count, resp.Deposit, err
}

func (cli *JSONRPCClient) GetBalance(ctx context.Context, addr codec.Address) (uint64, error) {
	resp := new(BalanceReply)
	err := cli.requester.SendRequest(
		ctx,
		"getBalance",
		&BalanceArgs{Address: codec.MustAddressBech32(consts.HRP, addr)},
		resp,
	)
	return resp.Amount, err
}

func (cli *JSONRPCClient) Height(ctx context.Context) (uint64, error) {
	resp := new(HeightReply)
	err := cli.requester.SendRequest(
		ctx,
		"height",
		nil,
		resp,
	)
	return resp.Height, err
}

func (cli *JSONRPCClient) LastAccepted(ctx context.Context) (uint64, int64, ids.ID, error) {
	resp := new(LastAcceptedReply)
	err := cli.requester.SendRequest(
		ctx,
		"lastAccepted",
		nil,
		resp,
	)
	return resp.Height, resp.Timestamp, resp.TxID, err
}

// GenerateTransaction signs [actions] with [factory]. The transaction expires
// at the end of the validity window and pays at most the base fee.
func (cli *JSONRPCClient) GenerateTransaction(
	ctx context.Context,
	registry chain.Registry,
	factory chain.AuthFactory,
	actions ...chain.Action,
) (*chain.Transaction, error) {
	network, err := cli.Network(ctx)
	if err != nil {
		return nil, err
	}
	tx := chain.NewTx(&chain.Base{
		Timestamp: utils.UnixRMilli(-1, network.ValidityWindow),
		ChainID:   network.ChainID,
		MaxFee:    network.BaseFee,
	}, actions)
	return tx.Sign(factory, registry)
}

// GenerateAndSubmit signs [actions] and submits them in one transaction.
func (cli *JSONRPCClient) GenerateAndSubmit(
	ctx context.Context,
	registry chain.Registry,
	factory chain.AuthFactory,
	actions ...chain.Action,
) (*SubmitTxReply, error) {
	tx, err := cli.GenerateTransaction(ctx, registry, factory, actions...)
	if err != nil {
		return nil, err
	}
	return cli.SubmitTx(ctx, tx.Bytes())
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/storage"
)

type JSONRPCServer struct {
	vm VM
}

func NewJSONRPCServer(vm VM) *JSONRPCServer {
	return &JSONRPCServer{vm}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) error {
	j.vm.Logger().Info("ping")
	reply.Success = true
	return nil
}

type NetworkReply struct {
	NetworkID       uint32 `json:"networkId"`
	ChainID         ids.ID `json:"chainId"`
	BaseFee         uint64 `json:"baseFee"`
	ValidityWindow  int64  `json:"validityWindow"`
	MaxActionsPerTx uint8  `json:"maxActionsPerTx"`
	RecordDeposit   uint64 `json:"recordDeposit"`
}

func (j *JSONRPCServer) Network(_ *http.Request, _ *struct{}, reply *NetworkReply) error {
	r := j.vm.Rules()
	reply.NetworkID = r.GetNetworkID()
	reply.ChainID = r.GetChainID()
	reply.BaseFee = r.GetBaseFee()
	reply.ValidityWindow = r.GetValidityWindow()
	reply.MaxActionsPerTx = r.GetMaxActionsPerTx()
	deposit, err := r.GetMinimumBalance(storage.CounterRecordLen)
	if err != nil {
		return err
	}
	reply.RecordDeposit = deposit
	return nil
}

type SubmitTxArgs struct {
	Tx []byte `json:"tx"`
}

type SubmitTxReply struct {
	TxID      ids.ID   `json:"txId"`
	Height    uint64   `json:"height"`
	Timestamp int64    `json:"timestamp"`
	Outputs   [][]byte `json:"outputs"`
	Fee       uint64   `json:"fee"`
}

// SubmitTx executes a signed transaction and returns its result once it is
// committed.
func (j *JSONRPCServer) SubmitTx(req *http.Request, args *SubmitTxArgs, reply *SubmitTxReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.SubmitTx")
	defer span.End()

	tx, err := chain.ParseTx(args.Tx, j.vm.Registry())
	if err != nil {
		return fmt.Errorf("%w: unable to unmarshal on public service", err)
	}
	reply.TxID = tx.ID()
	accepted, err := j.vm.Submit(ctx, tx)
	if err != nil {
		j.vm.Logger().Debug("failed to submit tx",
			zap.Stringer("txID", tx.ID()),
			zap.Error(err),
		)
		return err
	}
	reply.Height = accepted.Height
	reply.Timestamp = accepted.Timestamp
	reply.Outputs = accepted.Result.Outputs
	reply.Fee = accepted.Result.Fee
	return nil
}

type RecordArgs struct {
	Record string `json:"record"`
}

type CounterReply struct {
	Count   uint8  `json:"count"`
	Deposit uint64 `json:"deposit"`
}

func (j *JSONRPCServer) GetCounter(req *http.Request, args *RecordArgs, reply *CounterReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.GetCounter")
	defer span.End()

	record, err := codec.ParseAddressBech32(consts.HRP, args.Record)
	if err != nil {
		return err
	}
	counter, deposit, err := j.vm.GetRecord(ctx, record)
	if err != nil {
		return err
	}
	reply.Count = counter.Count
	reply.Deposit = deposit
	return nil
}

type BalanceArgs struct {
	Address string `json:"address"`
}

type BalanceReply struct {
	Amount uint64 `json:"amount"`
}

func (j *JSONRPCServer) GetBalance(req *http.Request, args *BalanceArgs, reply *BalanceReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.GetBalance")
	defer span.End()

	addr, err := codec.ParseAddressBech32(consts.HRP, args.Address)
	if err != nil {
		return err
	}
	balance, err := j.vm.GetBalance(ctx, addr)
	if err != nil {
		return err
	}
	reply.Amount = balance
	return nil
}

type HeightReply struct {
	Height uint64 `json:"height"`
}

func (j *JSONRPCServer) Height(_ *http.Request, _ *struct{}, reply *HeightReply) error {
	reply.Height = j.vm.Height()
	return nil
}

type LastAcceptedReply struct {
	Height    uint64 `json:"height"`
	Timestamp int64  `json:"timestamp"`
	TxID      ids.ID `json:"txId"`
}

// LastAccepted returns the most recently committed transaction. Height is
// zero and TxID empty if nothing has been accepted since the node started.
func (j *JSONRPCServer) LastAccepted(_ *http.Request, _ *struct{}, reply *LastAcceptedReply) error {
	height, accepted, ok := j.vm.LastAccepted()
	reply.Height = height
	if !ok {
		return nil
	}
	reply.Timestamp = accepted.Timestamp
	reply.TxID = accepted.Result.TxID
	return nil
}

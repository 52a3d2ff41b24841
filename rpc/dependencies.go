// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

//go:generate go run go.uber.org/mock/mockgen -package=rpc -destination=mock_vm.go . VM

import (
	"context"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/storage"
)

// VM is the node surface exposed over the API.
type VM interface {
	Rules() chain.Rules
	Registry() chain.Registry
	Tracer() trace.Tracer
	Logger() logging.Logger

	Height() uint64
	LastAccepted() (uint64, *chain.Accepted, bool)
	Submit(ctx context.Context, tx *chain.Transaction) (*chain.Accepted, error)

	GetRecord(ctx context.Context, record codec.Address) (*storage.Counter, uint64, error)
	GetBalance(ctx context.Context, addr codec.Address) (uint64, error)

	Subscribe() (uint64, <-chan *chain.Accepted)
	Unsubscribe(id uint64)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"

	"go.uber.org/zap"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/pubsub"
)

// WebSocketServer streams accepted results to subscribers and accepts
// transactions over the same connection.
type WebSocketServer struct {
	vm VM
	s  *pubsub.Server

	acceptedListeners *pubsub.Connections

	subscription uint64
	accepted     <-chan *chain.Accepted
}

// NewWebSocketServer subscribes to [vm] immediately, so no result accepted
// after it returns is missed once Run starts.
func NewWebSocketServer(vm VM, config *pubsub.ServerConfig) (*WebSocketServer, *pubsub.Server) {
	w := &WebSocketServer{
		vm:                vm,
		acceptedListeners: pubsub.NewConnections(),
	}
	w.subscription, w.accepted = vm.Subscribe()
	w.s = pubsub.New(vm.Logger(), config, w.MessageCallback())
	return w, w.s
}

// Run forwards every accepted result to subscribers until [ctx] is done or
// the vm closes its listeners.
func (w *WebSocketServer) Run(ctx context.Context) error {
	defer w.vm.Unsubscribe(w.subscription)

	for {
		select {
		case a, ok := <-w.accepted:
			if !ok {
				return nil
			}
			if err := w.AcceptResult(a); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *WebSocketServer) AcceptResult(a *chain.Accepted) error {
	if w.acceptedListeners.Len() == 0 {
		return nil
	}
	msg, err := PackAcceptedMessage(a)
	if err != nil {
		return err
	}
	inactiveConnections := w.s.Publish(msg, w.acceptedListeners)
	for _, conn := range inactiveConnections {
		w.acceptedListeners.Remove(conn)
	}
	return nil
}

func (w *WebSocketServer) MessageCallback() pubsub.Callback {
	var (
		tracer = w.vm.Tracer()
		log    = w.vm.Logger()
	)

	return func(msgBytes []byte, c *pubsub.Connection) {
		ctx, span := tracer.Start(context.Background(), "WebSocketServer.Callback")
		defer span.End()

		if len(msgBytes) == 0 {
			log.Debug("dropping empty message")
			return
		}

		switch msgBytes[0] {
		case AcceptedMode:
			w.acceptedListeners.Add(c)
			log.Debug("added accepted listener")
		case TxMode:
			tx, err := chain.ParseTx(msgBytes[1:], w.vm.Registry())
			if err != nil {
				log.Debug("failed to unmarshal tx",
					zap.Int("len", len(msgBytes)-1),
					zap.Error(err),
				)
				return
			}
			accepted, txErr := w.vm.Submit(ctx, tx)
			msg, err := PackTxMessage(tx.ID(), accepted, txErr)
			if err != nil {
				log.Error("failed to pack tx message",
					zap.Stringer("txID", tx.ID()),
					zap.Error(err),
				)
				return
			}
			if !c.Send(msg) {
				log.Debug("unable to reply to tx submitter",
					zap.Stringer("txID", tx.ID()),
				)
			}
		default:
			log.Debug("unexpected message type",
				zap.Int("len", len(msgBytes)),
				zap.Uint8("mode", msgBytes[0]),
			)
		}
	}
}

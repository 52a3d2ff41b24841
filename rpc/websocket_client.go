// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/pubsub"
)

type WebSocketClient struct {
	conn *websocket.Conn
	mb   *pubsub.MessageBuffer

	maxSize int

	done         chan struct{}
	readStopped  chan struct{}
	writeStopped chan struct{}

	pendingAccepted chan []byte
	pendingTxs      chan []byte

	closeOnce sync.Once
	errLock   sync.Mutex
	err       error
}

// NewWebSocketClient dials the websocket endpoint of the node at [uri].
// [pending] bounds the number of unread messages of each kind and
// [maxSize] the size of a single batch.
func NewWebSocketClient(uri string, handshakeTimeout time.Duration, pending int, maxSize int) (*WebSocketClient, error) {
	uri = strings.Replace(uri, "http://", "ws://", 1)
	uri = strings.Replace(uri, "https://", "wss://", 1)
	uri = strings.TrimSuffix(uri, "/")
	uri += WebSocketEndpoint

	dialer := &websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		ReadBufferSize:   maxSize,
		WriteBufferSize:  maxSize,
	}
	conn, resp, err := dialer.Dial(uri, nil)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()

	c := &WebSocketClient{
		conn:            conn,
		mb:              pubsub.NewMessageBuffer(logging.NoLog{}, pending, maxSize, 10*time.Millisecond),
		maxSize:         maxSize,
		done:            make(chan struct{}),
		readStopped:     make(chan struct{}),
		writeStopped:    make(chan struct{}),
		pendingAccepted: make(chan []byte, pending),
		pendingTxs:      make(chan []byte, pending),
	}
	go c.readLoop()
	go c.writeLoop()
	return c, nil
}

func (c *WebSocketClient) readLoop() {
	defer close(c.readStopped)

	for {
		_, batch, err := c.conn.ReadMessage()
		if err != nil {
			c.setErr(err)
			return
		}
		msgs, err := pubsub.ParseBatchMessage(c.maxSize, batch)
		if err != nil {
			c.setErr(err)
			return
		}
		for _, msg := range msgs {
			if len(msg) == 0 {
				continue
			}
			var pending chan []byte
			switch msg[0] {
			case AcceptedMode:
				pending = c.pendingAccepted
			case TxMode:
				pending = c.pendingTxs
			default:
				c.setErr(ErrUnexpectedMode)
				return
			}
			select {
			case pending <- msg[1:]:
			case <-c.done:
				return
			}
		}
	}
}

func (c *WebSocketClient) writeLoop() {
	defer close(c.writeStopped)

	for msg := range c.mb.Queue {
		if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			c.setErr(err)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *WebSocketClient) setErr(err error) {
	c.errLock.Lock()
	defer c.errLock.Unlock()

	if c.err == nil {
		c.err = err
	}
}

func (c *WebSocketClient) Err() error {
	c.errLock.Lock()
	defer c.errLock.Unlock()

	return c.err
}

// RegisterAccepted subscribes to every result accepted from now on.
func (c *WebSocketClient) RegisterAccepted() error {
	return c.mb.Send([]byte{AcceptedMode})
}

func (c *WebSocketClient) ListenAccepted(ctx context.Context) (*chain.Accepted, error) {
	select {
	case msg := <-c.pendingAccepted:
		return UnpackAcceptedMessage(msg)
	case <-c.readStopped:
		return nil, c.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SubmitTx sends [tx] to the node. The outcome is delivered to ListenTx.
func (c *WebSocketClient) SubmitTx(tx *chain.Transaction) error {
	return c.mb.Send(append([]byte{TxMode}, tx.Bytes()...))
}

// ListenTx returns the id of a submitted transaction with either its
// accepted result or the error it failed with.
func (c *WebSocketClient) ListenTx(ctx context.Context) (ids.ID, *chain.Accepted, error, error) {
	select {
	case msg := <-c.pendingTxs:
		return UnpackTxMessage(msg)
	case <-c.readStopped:
		return ids.Empty, nil, nil, c.Err()
	case <-ctx.Done():
		return ids.Empty, nil, nil, ctx.Err()
	}
}

// Close flushes pending messages and closes the connection.
func (c *WebSocketClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.setErr(ErrClosed)
		close(c.done)
		_ = c.mb.Close()
		<-c.writeStopped
		err = c.conn.Close()
	})
	return err
}

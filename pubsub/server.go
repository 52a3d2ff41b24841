// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type ServerConfig struct {
	// Size of the ws read buffer
	ReadBufferSize int `yaml:"readBufferSize"`
	// Size of the ws write buffer
	WriteBufferSize int `yaml:"writeBufferSize"`
	// Time allowed to write a message to the peer.
	WriteWait time.Duration `yaml:"writeWait"`
	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration `yaml:"pongWait"`
	// Send pings to peer with this period. Must be less than pongWait.
	PingPeriod time.Duration `yaml:"pingPeriod"`
	// Maximum message size in bytes allowed from peer.
	MaxReadMessageSize int `yaml:"maxReadMessageSize" validate:"gt=0"`
	// Maximum size of a batch of messages sent to a peer.
	MaxWriteMessageSize int `yaml:"maxWriteMessageSize" validate:"gt=0"`
	// Maximum number of pending batches to send to a peer.
	MaxPendingMessages int `yaml:"maxPendingMessages" validate:"gt=0"`
	// Longest time a message waits to be batched.
	MessageBufferTimeout time.Duration `yaml:"messageBufferTimeout"`
}

func NewDefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ReadBufferSize:       readBufferSize,
		WriteBufferSize:      writeBufferSize,
		WriteWait:            writeWait,
		PongWait:             pongWait,
		PingPeriod:           pingPeriod,
		MaxReadMessageSize:   maxReadMessageSize,
		MaxWriteMessageSize:  maxWriteMessageSize,
		MaxPendingMessages:   maxPendingMessages,
		MessageBufferTimeout: messageBufferTimeout,
	}
}

// Server maintains the set of active websocket clients and sends messages
// to them. It is an [http.Handler] and is mounted on the API router.
type Server struct {
	log      logging.Logger
	config   *ServerConfig
	callback Callback
	upgrader *websocket.Upgrader

	// conns a set of all our connections
	conns *Connections
}

// New returns a new Server instance. The callback function [f] is called
// by the server in response to messages if not nil.
func New(log logging.Logger, config *ServerConfig, f Callback) *Server {
	return &Server{
		log:      log,
		config:   config,
		callback: f,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		conns: NewConnections(),
	}
}

// ServeHTTP adds a connection to the server, and starts go routines for
// reading and writing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	conn := &Connection{
		s:    s,
		conn: wsConn,
		mb: NewMessageBuffer(
			s.log,
			s.config.MaxPendingMessages,
			s.config.MaxWriteMessageSize,
			s.config.MessageBufferTimeout,
		),
	}
	conn.active.Store(true)
	s.conns.Add(conn)

	go conn.writePump()
	go conn.readPump()
}

// Publish sends [msg] to every connection in [toConns] and returns the
// connections that are no longer active so callers can forget them.
func (s *Server) Publish(msg []byte, toConns *Connections) []*Connection {
	inactiveConnections := []*Connection{}
	for _, conn := range toConns.Conns() {
		if !s.conns.Has(conn) {
			inactiveConnections = append(inactiveConnections, conn)
			continue
		}
		if !conn.Send(msg) {
			s.log.Verbo(
				"dropping message to subscribed connection due to too many pending messages",
			)
		}
	}
	return inactiveConnections
}

// Connections returns the number of open connections.
func (s *Server) Connections() int {
	return s.conns.Len()
}

// Close closes every open connection.
func (s *Server) Close() {
	for _, conn := range s.conns.Conns() {
		s.removeConnection(conn)
		conn.deactivate()
	}
}

func (s *Server) removeConnection(conn *Connection) {
	s.conns.Remove(conn)
}

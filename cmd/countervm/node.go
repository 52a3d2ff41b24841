// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/ulimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/countervm/config"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/genesis"
	"github.com/ava-labs/countervm/rpc"
	"github.com/ava-labs/countervm/server"
	"github.com/ava-labs/countervm/storage"
	"github.com/ava-labs/countervm/trace"
	"github.com/ava-labs/countervm/vm"
)

const (
	logMaxSize  = 8 // megabytes
	logMaxFiles = 5
	logMaxAge   = 7 // days
)

func runFunc(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logLevel, err := c.GetLogLevel()
	if err != nil {
		return err
	}
	displayLevel, err := c.GetLogDisplayLevel()
	if err != nil {
		return err
	}
	logFactory := newLogFactory(logging.Config{
		RotatingWriterConfig: logging.RotatingWriterConfig{
			MaxSize:   logMaxSize,
			MaxFiles:  logMaxFiles,
			MaxAge:    logMaxAge,
			Directory: c.LogDir,
		},
		LogLevel:     logLevel,
		DisplayLevel: displayLevel,
		LogFormat:    logging.JSON,
	})
	defer logFactory.Close()
	log, err := logFactory.Make(consts.Name)
	if err != nil {
		return err
	}

	if err := ulimit.Set(ulimit.DefaultFDLimit, log); err != nil {
		return fmt.Errorf("%w: failed to set fd limit correctly", err)
	}

	tracer, err := trace.New(c.GetTraceConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := tracer.Close(); err != nil {
			log.Warn("failed to close tracer", zap.Error(err))
		}
	}()

	db, dbGatherer, err := storage.New(c.DatabaseBackend, c.Pebble, c.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
	}()

	genesisBytes, err := os.ReadFile(c.GenesisFile)
	if err != nil {
		return fmt.Errorf("failed to read genesis: %w", err)
	}
	chainID, err := c.GetChainID()
	if err != nil {
		return err
	}
	g, err := genesis.Load(genesisBytes, c.NetworkID, chainID)
	if err != nil {
		return fmt.Errorf("failed to load genesis: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	v, err := vm.New(ctx, log, tracer, db, g, c.VM, registry)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort))
	if err != nil {
		return errors.Join(err, v.Close())
	}
	srv := server.New(log, listener, c.HTTP, c.AllowedOrigins, c.ShutdownTimeout)
	handler, err := server.NewHandler(rpc.NewJSONRPCServer(v), rpc.Name)
	if err != nil {
		return errors.Join(err, listener.Close(), v.Close())
	}
	srv.AddRoute(handler, rpc.JSONRPCEndpoint)
	ws, pubsubServer := rpc.NewWebSocketServer(v, &c.WebSocket)
	srv.AddStreamRoute(pubsubServer, rpc.WebSocketEndpoint)
	srv.AddRoute(server.NewMetricsHandler(prometheus.Gatherers{registry, dbGatherer}), server.MetricsEndpoint)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := srv.Dispatch(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		if err := ws.Run(egCtx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		log.Info("shutting down", zap.Uint64("height", v.Height()))
		pubsubServer.Close()
		return srv.Shutdown()
	})
	log.Info("node started",
		zap.Stringer("addr", srv.Addr()),
		zap.String("version", consts.Version),
	)

	err = eg.Wait()
	return errors.Join(err, v.Close())
}

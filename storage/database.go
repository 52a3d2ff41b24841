// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/countervm/pebble"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/utils"
)

const (
	PebbleBackend = "pebble"
	MemoryBackend = "memdb"

	stateNamespace = "statedb"
)

// New opens the committed state store. For the pebble backend the database
// lives in a subdirectory of [chainDataDir] and its metrics are returned as
// a gatherer.
func New(backend string, cfg pebble.Config, chainDataDir string) (state.Database, prometheus.Gatherer, error) {
	switch backend {
	case MemoryBackend:
		return state.NewDatabase(memdb.New()), prometheus.NewRegistry(), nil
	case PebbleBackend:
		path, err := utils.InitSubDirectory(chainDataDir, stateNamespace)
		if err != nil {
			return nil, nil, err
		}
		db, registry, err := pebble.New(path, cfg)
		if err != nil {
			return nil, nil, err
		}
		return db, registry, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}

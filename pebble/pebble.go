// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/countervm/state"
)

var (
	_ state.Database = (*Database)(nil)

	ErrClosed = errors.New("database closed")
)

type Config struct {
	CacheSize    int  `yaml:"cacheSize"`
	BytesPerSync int  `yaml:"bytesPerSync"`
	MaxOpenFiles int  `yaml:"maxOpenFiles"`
	Sync         bool `yaml:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:    512 * units.MiB,
		BytesPerSync: 1 * units.MiB,
		MaxOpenFiles: 4_096,
		Sync:         true,
	}
}

// Database is the pebble-backed store of committed state.
type Database struct {
	lock    sync.RWMutex
	db      *pebble.DB
	closed  bool
	closing chan struct{}
	wg      sync.WaitGroup

	writeOptions *pebble.WriteOptions

	metrics *metrics
}

func New(file string, cfg Config) (*Database, *prometheus.Registry, error) {
	// These default settings are based on https://github.com/ethereum/go-ethereum/blob/master/ethdb/pebble/pebble.go
	d := &Database{closing: make(chan struct{})}
	opts := &pebble.Options{
		Cache:        pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync: cfg.BytesPerSync,
		MaxOpenFiles: cfg.MaxOpenFiles,
		EventListener: &pebble.EventListener{
			CompactionBegin: d.onCompactionBegin,
			CompactionEnd:   d.onCompactionEnd,
			WriteStallBegin: d.onWriteStallBegin,
			WriteStallEnd:   d.onWriteStallEnd,
		},
	}
	defer opts.Cache.Unref()
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	d.metrics = metrics
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	d.db = db
	if cfg.Sync {
		d.writeOptions = pebble.Sync
	} else {
		d.writeOptions = pebble.NoSync
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.collectMetrics()
	}()
	return d, registry, nil
}

func (db *Database) GetValue(_ context.Context, key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return nil, ErrClosed
	}
	start := time.Now()
	data, closer, err := db.db.Get(key)
	db.metrics.getLatency.Observe(float64(time.Since(start)))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	value := make([]byte, len(data))
	copy(value, data)
	return value, closer.Close()
}

func (db *Database) Commit(_ context.Context, changes map[string]maybe.Maybe[[]byte]) error {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return ErrClosed
	}
	batch := db.db.NewBatch()
	defer batch.Close()
	for k, v := range changes {
		var err error
		if v.IsNothing() {
			err = batch.Delete([]byte(k), nil)
		} else {
			err = batch.Set([]byte(k), v.Value(), nil)
		}
		if err != nil {
			return err
		}
	}
	if err := batch.Commit(db.writeOptions); err != nil {
		return err
	}
	db.metrics.commits.Inc()
	db.metrics.keysWritten.Add(float64(len(changes)))
	return nil
}

func (db *Database) Close() error {
	db.lock.Lock()
	if db.closed {
		db.lock.Unlock()
		return ErrClosed
	}
	db.closed = true
	close(db.closing)
	db.lock.Unlock()

	db.wg.Wait()
	return db.db.Close()
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/emap"
	"github.com/ava-labs/countervm/genesis"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
	"github.com/ava-labs/countervm/utils"
)

var ErrGenesisMismatch = errors.New("database was initialized with a different genesis")

type Config struct {
	// AcceptedResultsCache is the number of recently accepted results kept
	// in memory.
	AcceptedResultsCache int `yaml:"acceptedResultsCache" validate:"gt=0"`
	// ListenerBuffer is the channel capacity given to each subscriber.
	ListenerBuffer int `yaml:"listenerBuffer" validate:"gt=0"`
}

func NewDefaultConfig() Config {
	return Config{
		AcceptedResultsCache: 1_024,
		ListenerBuffer:       256,
	}
}

// VM applies signed transactions to the counter state one at a time. Every
// accepted transaction is committed to the database together with the new
// height, so a transaction either lands completely or not at all.
type VM struct {
	log    logging.Logger
	tracer trace.Tracer
	config Config
	clock  mockable.Clock

	genesis        *genesis.Genesis
	rules          chain.Rules
	registry       chain.Registry
	balanceHandler chain.BalanceHandler
	processor      *chain.Processor
	db             state.Database
	metrics        *Metrics

	// submitLock serializes execution and commit, so no two transactions
	// touch the same record concurrently.
	submitLock sync.Mutex
	height     atomic.Uint64
	seen       *emap.EMap[*chain.Transaction]
	closed     atomic.Bool

	// stateLock is held for writing while a commit, the new height and its
	// accepted result are published. Readers hold it to see all or none.
	stateLock sync.RWMutex
	accepted  utils.BoundedBuffer[*chain.Accepted]

	listenerLock sync.Mutex
	listeners    map[uint64]chan *chain.Accepted
	nextListener uint64
}

func New(
	ctx context.Context,
	log logging.Logger,
	tracer trace.Tracer,
	db state.Database,
	g *genesis.Genesis,
	config Config,
	registerer prometheus.Registerer,
) (*VM, error) {
	if config.ListenerBuffer < 1 {
		return nil, fmt.Errorf("%w: listener buffer %d", ErrInvalidCapacity, config.ListenerBuffer)
	}
	// Transactions can never be signed for the empty chain id.
	if g.Rules.GetChainID() == ids.Empty {
		return nil, ErrMissingChainID
	}
	accepted, err := utils.NewBoundedBuffer[*chain.Accepted](config.AcceptedResultsCache, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: accepted results cache %d", ErrInvalidCapacity, config.AcceptedResultsCache)
	}
	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	metrics, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	balanceHandler := &storage.BalanceHandler{}
	processor, err := chain.NewProcessor(tracer, balanceHandler, registerer)
	if err != nil {
		return nil, err
	}

	vm := &VM{
		log:            log,
		tracer:         tracer,
		config:         config,
		genesis:        g,
		rules:          g.Rules,
		registry:       registry,
		balanceHandler: balanceHandler,
		processor:      processor,
		db:             db,
		metrics:        metrics,
		seen:           emap.NewEMap[*chain.Transaction](),
		accepted:       accepted,
		listeners:      make(map[uint64]chan *chain.Accepted),
	}
	if err := vm.initializeState(ctx); err != nil {
		return nil, err
	}
	height, err := storage.GetHeight(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to load height: %w", err)
	}
	vm.height.Store(height)
	vm.metrics.height.Set(float64(height))
	vm.log.Info("initialized vm",
		zap.Uint32("networkID", g.Rules.GetNetworkID()),
		zap.Stringer("chainID", g.Rules.GetChainID()),
		zap.Uint64("height", height),
	)
	return vm, nil
}

// initializeState writes the genesis allocations the first time [db] is
// used. Later starts only check that the stored genesis matches.
func (vm *VM) initializeState(ctx context.Context) error {
	ctx, span := vm.tracer.Start(ctx, "VM.initializeState")
	defer span.End()

	genesisBytes, err := vm.genesis.Bytes()
	if err != nil {
		return err
	}
	genesisID := utils.ToID(genesisBytes)
	stored, err := vm.db.GetValue(ctx, storage.GenesisKey())
	switch {
	case err == nil:
		if !bytes.Equal(stored, genesisID[:]) {
			return fmt.Errorf("%w: expected %s", ErrGenesisMismatch, genesisID)
		}
		return nil
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	mu := state.NewSimpleMutable(vm.db)
	supply, err := vm.genesis.InitializeState(ctx, vm.tracer, mu)
	if err != nil {
		return fmt.Errorf("failed to apply genesis: %w", err)
	}
	if err := mu.Insert(ctx, storage.GenesisKey(), genesisID[:]); err != nil {
		return err
	}
	if err := mu.Insert(ctx, storage.HeightKey(), storage.HeightValue(0)); err != nil {
		return err
	}
	if err := mu.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit genesis: %w", err)
	}
	vm.log.Info("applied genesis",
		zap.Stringer("genesisID", genesisID),
		zap.Int("allocations", len(vm.genesis.CustomAllocation)),
		zap.Uint64("supply", supply),
	)
	return nil
}

// Submit executes [tx] at the current time and commits its changes. A failed
// transaction changes nothing and is not charged a fee.
func (vm *VM) Submit(ctx context.Context, tx *chain.Transaction) (*chain.Accepted, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.Submit")
	defer span.End()

	vm.metrics.txsSubmitted.Inc()

	vm.submitLock.Lock()
	defer vm.submitLock.Unlock()

	if vm.closed.Load() {
		return nil, ErrClosed
	}

	now := vm.clock.Time().UnixMilli()
	vm.seen.SetMin(now)
	vm.metrics.seenTxs.Set(float64(vm.seen.Len()))
	if vm.seen.Any([]*chain.Transaction{tx}) {
		vm.metrics.duplicateTxs.Inc()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTx, tx.ID())
	}

	result, changes, err := vm.processor.Execute(ctx, vm.db, vm.rules, tx, now)
	if err != nil {
		vm.metrics.txsRejected.Inc()
		vm.log.Debug("rejected tx",
			zap.Stringer("txID", tx.ID()),
			zap.Error(err),
		)
		return nil, err
	}

	height := vm.height.Load() + 1
	if changes == nil {
		changes = make(map[string]maybe.Maybe[[]byte], 1)
	}
	changes[string(storage.HeightKey())] = maybe.Some(storage.HeightValue(height))
	accepted := &chain.Accepted{
		Height:    height,
		Timestamp: now,
		Result:    result,
	}
	start := time.Now()
	if err := vm.commit(ctx, changes, accepted); err != nil {
		vm.log.Error("failed to commit tx",
			zap.Stringer("txID", tx.ID()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	vm.metrics.txCommit.Observe(float64(time.Since(start)))
	vm.seen.Add([]*chain.Transaction{tx})

	vm.metrics.txsAccepted.Inc()
	vm.metrics.height.Set(float64(height))
	vm.log.Debug("accepted tx",
		zap.Stringer("txID", tx.ID()),
		zap.Uint64("height", height),
		zap.Int("changes", len(changes)),
	)
	vm.notify(accepted)
	return accepted, nil
}

func (vm *VM) commit(ctx context.Context, changes map[string]maybe.Maybe[[]byte], accepted *chain.Accepted) error {
	vm.stateLock.Lock()
	defer vm.stateLock.Unlock()

	if err := vm.db.Commit(ctx, changes); err != nil {
		return err
	}
	vm.height.Store(accepted.Height)
	vm.accepted.Insert(accepted)
	return nil
}

// Subscribe returns a channel that receives every result accepted after the
// call. A listener that falls behind by more than the configured buffer
// misses results.
func (vm *VM) Subscribe() (uint64, <-chan *chain.Accepted) {
	vm.listenerLock.Lock()
	defer vm.listenerLock.Unlock()

	id := vm.nextListener
	vm.nextListener++
	ch := make(chan *chain.Accepted, vm.config.ListenerBuffer)
	if vm.closed.Load() {
		close(ch)
		return id, ch
	}
	vm.listeners[id] = ch
	vm.metrics.listeners.Set(float64(len(vm.listeners)))
	return id, ch
}

func (vm *VM) Unsubscribe(id uint64) {
	vm.listenerLock.Lock()
	defer vm.listenerLock.Unlock()

	ch, ok := vm.listeners[id]
	if !ok {
		return
	}
	delete(vm.listeners, id)
	close(ch)
	vm.metrics.listeners.Set(float64(len(vm.listeners)))
}

func (vm *VM) notify(accepted *chain.Accepted) {
	vm.listenerLock.Lock()
	defer vm.listenerLock.Unlock()

	for id, ch := range vm.listeners {
		select {
		case ch <- accepted:
		default:
			vm.metrics.droppedEvents.Inc()
			vm.log.Warn("dropping accepted result for slow listener",
				zap.Uint64("listener", id),
				zap.Uint64("height", accepted.Height),
			)
		}
	}
}

// Close stops accepting transactions and closes every listener. The
// database is owned by the caller.
func (vm *VM) Close() error {
	vm.submitLock.Lock()
	defer vm.submitLock.Unlock()

	if !vm.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	vm.listenerLock.Lock()
	defer vm.listenerLock.Unlock()
	for id, ch := range vm.listeners {
		close(ch)
		delete(vm.listeners, id)
	}
	vm.metrics.listeners.Set(0)
	vm.log.Info("closed vm", zap.Uint64("height", vm.height.Load()))
	return nil
}

func (vm *VM) GetCounter(ctx context.Context, record codec.Address) (*storage.Counter, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.GetCounter")
	defer span.End()

	vm.stateLock.RLock()
	defer vm.stateLock.RUnlock()

	return storage.GetCounter(ctx, vm.db, record)
}

func (vm *VM) GetDeposit(ctx context.Context, record codec.Address) (uint64, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.GetDeposit")
	defer span.End()

	vm.stateLock.RLock()
	defer vm.stateLock.RUnlock()

	return storage.GetDeposit(ctx, vm.db, record)
}

// GetRecord returns the counter at [record] and the deposit it holds, both
// read at the same height.
func (vm *VM) GetRecord(ctx context.Context, record codec.Address) (*storage.Counter, uint64, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.GetRecord")
	defer span.End()

	vm.stateLock.RLock()
	defer vm.stateLock.RUnlock()

	c, err := storage.GetCounter(ctx, vm.db, record)
	if err != nil {
		return nil, 0, err
	}
	deposit, err := storage.GetDeposit(ctx, vm.db, record)
	if err != nil {
		return nil, 0, err
	}
	return c, deposit, nil
}

func (vm *VM) GetBalance(ctx context.Context, addr codec.Address) (uint64, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.GetBalance")
	defer span.End()

	vm.stateLock.RLock()
	defer vm.stateLock.RUnlock()

	return vm.balanceHandler.GetBalance(ctx, addr, vm.db)
}

// Accepted returns the most recently accepted results, oldest first.
func (vm *VM) Accepted() []*chain.Accepted {
	vm.stateLock.RLock()
	defer vm.stateLock.RUnlock()

	return vm.accepted.Items()
}

// LastAccepted returns the current height and the result accepted at it.
// The result is missing if nothing was accepted since the vm started.
func (vm *VM) LastAccepted() (uint64, *chain.Accepted, bool) {
	vm.stateLock.RLock()
	defer vm.stateLock.RUnlock()

	accepted, ok := vm.accepted.Last()
	return vm.height.Load(), accepted, ok
}

func (vm *VM) Height() uint64 { return vm.height.Load() }

func (vm *VM) Rules() chain.Rules { return vm.rules }

func (vm *VM) Genesis() *genesis.Genesis { return vm.genesis }

func (vm *VM) Registry() chain.Registry { return vm.registry }

func (vm *VM) Logger() logging.Logger { return vm.log }

func (vm *VM) Tracer() trace.Tracer { return vm.tracer }

// Clock is the source of transaction execution time. Tests and simulations
// may set it.
func (vm *VM) Clock() *mockable.Clock { return &vm.clock }

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/tstate"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// Processor executes a single transaction against committed state. All
// changes made by the transaction, including the fee, are returned together
// or not at all.
type Processor struct {
	tracer         trace.Tracer
	balanceHandler BalanceHandler
	metrics        *chainMetrics
}

func NewProcessor(
	tracer trace.Tracer,
	balanceHandler BalanceHandler,
	registerer prometheus.Registerer,
) (*Processor, error) {
	metrics, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Processor{
		tracer:         tracer,
		balanceHandler: balanceHandler,
		metrics:        metrics,
	}, nil
}

// Execute runs [tx] at [timestamp]. On success it returns the [Result] and
// the set of changed keys to commit.
func (p *Processor) Execute(
	ctx context.Context,
	im state.Immutable,
	r Rules,
	tx *Transaction,
	timestamp int64,
) (*Result, map[string]maybe.Maybe[[]byte], error) {
	ctx, span := p.tracer.Start(ctx, "chain.Processor.Execute",
		oteltrace.WithAttributes(
			attribute.Int("actions", len(tx.Actions)),
			attribute.Int("size", tx.Size()),
		),
	)
	defer span.End()

	start := time.Now()
	result, changes, err := p.execute(ctx, im, r, tx, timestamp)
	p.metrics.executeLatency.Observe(float64(time.Since(start)))
	if err != nil {
		p.metrics.txsFailed.Inc()
		return nil, nil, err
	}
	p.metrics.txsExecuted.Inc()
	p.metrics.stateChanges.Add(float64(len(changes)))
	return result, changes, nil
}

func (p *Processor) execute(
	ctx context.Context,
	im state.Immutable,
	r Rules,
	tx *Transaction,
	timestamp int64,
) (*Result, map[string]maybe.Maybe[[]byte], error) {
	switch {
	case len(tx.Actions) == 0:
		return nil, nil, ErrNoActions
	case len(tx.Actions) > int(r.GetMaxActionsPerTx()):
		return nil, nil, ErrTooManyActions
	}
	if err := tx.Base.Execute(r.GetChainID(), r, timestamp); err != nil {
		return nil, nil, err
	}

	// Verify signature before touching state
	digest, err := tx.Digest()
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Auth.Verify(ctx, digest); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	// Ensure the sponsor can pay
	fee := r.GetBaseFee()
	if tx.MaxFee() < fee {
		return nil, nil, fmt.Errorf("%w: required=%d, max=%d", ErrMaxFeeTooLow, fee, tx.MaxFee())
	}
	sponsor := tx.Sponsor()
	if err := p.balanceHandler.CanDeduct(ctx, sponsor, im, fee); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	}

	// Fetch everything the transaction may touch
	stateKeys, err := tx.StateKeys(p.balanceHandler)
	if err != nil {
		return nil, nil, err
	}
	storage := make(map[string][]byte, len(stateKeys))
	for k := range stateKeys {
		v, err := im.GetValue(ctx, []byte(k))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		storage[k] = v
	}

	ts := tstate.New(len(stateKeys))
	tsv := ts.NewView(stateKeys, storage)
	if err := p.balanceHandler.Deduct(ctx, sponsor, tsv, fee); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	}
	actor := tx.Auth.Actor()
	outputs := make([][]byte, 0, len(tx.Actions))
	for i, action := range tx.Actions {
		output, err := action.Execute(ctx, r, tsv, timestamp, actor, tx.ActionID(i))
		if err != nil {
			tsv.Rollback(ctx, 0)
			return nil, nil, fmt.Errorf("%w: action %d: %w", ErrActionFailed, i, err)
		}
		outputs = append(outputs, output)
	}
	p.metrics.stateOperations.Add(float64(tsv.OpIndex()))
	tsv.Commit()

	return &Result{
		TxID:    tx.ID(),
		Outputs: outputs,
		Fee:     fee,
	}, ts.ChangedKeys(), nil
}

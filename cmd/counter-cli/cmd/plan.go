// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/genesis"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
	"github.com/ava-labs/countervm/trace"
	"github.com/ava-labs/countervm/utils"
	"github.com/ava-labs/countervm/vm"
)

const (
	CreateStep    = "create"
	IncrementStep = "increment"
	DecrementStep = "decrement"
	SetStep       = "set"
	CloseStep     = "close"

	defaultPlanBalance = 10_000_000_000
)

type Plan struct {
	// The name of the plan.
	Name string `yaml:"name"`
	// A description of the plan.
	Description string `yaml:"description"`
	// Named keys funded at genesis. The first key is the default actor.
	Keys []string `yaml:"keys"`
	// Genesis balance of every key.
	Balance uint64 `yaml:"balance"`
	// Steps performed in order during simulation.
	Steps []Step `yaml:"steps"`
}

type Step struct {
	Description string `yaml:"description"`
	// Key signing the transaction.
	Actor string `yaml:"actor"`
	// One of create, increment, decrement, set or close. (required)
	Action string `yaml:"action"`
	// Name of the record. Create assigns a fresh address to new names.
	// (required)
	Record string `yaml:"record"`
	// Value written by set.
	Value *uint8 `yaml:"value"`
	// Key refunded by close, the actor when empty.
	Payer string `yaml:"payer"`
	// Assertions checked after the step.
	Require *Require `yaml:"require"`
}

// Require lists what must hold after a step. A step without an expected
// error must succeed.
type Require struct {
	Count  *uint8 `yaml:"count"`
	Closed bool   `yaml:"closed"`
	// Substring of the expected failure.
	Error string `yaml:"error"`
}

type Response struct {
	// The index of the step that generated this response.
	ID          int    `json:"id"`
	Description string `json:"description,omitempty"`
	TxID        string `json:"txId,omitempty"`
	Height      uint64 `json:"height,omitempty"`
	Count       *uint8 `json:"count,omitempty"`
	Balance     uint64 `json:"balance"`
	Error       string `json:"error,omitempty"`
}

func unmarshalPlan(b []byte) (*Plan, error) {
	p := &Plan{}
	if err := yaml.UnmarshalStrict(b, p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return p, p.Verify()
}

func (p *Plan) Verify() error {
	if len(p.Keys) == 0 {
		return fmt.Errorf("%w: no keys", ErrInvalidPlan)
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidPlan)
	}
	keys := make(map[string]struct{}, len(p.Keys))
	for _, k := range p.Keys {
		keys[k] = struct{}{}
	}
	for i, step := range p.Steps {
		switch step.Action {
		case CreateStep, IncrementStep, DecrementStep, CloseStep:
		case SetStep:
			if step.Value == nil {
				return fmt.Errorf("%w %d: set requires a value", ErrInvalidStep, i)
			}
		default:
			return fmt.Errorf("%w %d: unknown action %q", ErrInvalidStep, i, step.Action)
		}
		if len(step.Record) == 0 {
			return fmt.Errorf("%w %d: missing record", ErrInvalidStep, i)
		}
		for _, name := range []string{step.Actor, step.Payer} {
			if len(name) == 0 {
				continue
			}
			if _, ok := keys[name]; !ok {
				return fmt.Errorf("%w %d: %w %q", ErrInvalidStep, i, ErrUnknownKey, name)
			}
		}
	}
	return nil
}

type simKey struct {
	factory chain.AuthFactory
	address codec.Address
}

// simulator runs a plan against an in-memory vm. The vm clock advances one
// second per step, so identical steps never collide as duplicates.
type simulator struct {
	log     logging.Logger
	db      state.Database
	vm      *vm.VM
	now     time.Time
	keys    map[string]*simKey
	records map[string]codec.Address

	// Signs steps that name no actor.
	defaultActor string
}

func newSimulator(ctx context.Context, log logging.Logger, plan *Plan) (*simulator, error) {
	balance := plan.Balance
	if balance == 0 {
		balance = defaultPlanBalance
	}
	keys := make(map[string]*simKey, len(plan.Keys))
	allocs := make([]*genesis.CustomAllocation, 0, len(plan.Keys))
	for _, name := range plan.Keys {
		key, err := auth.NewED25519PrivateKeyFactory().GeneratePrivateKey()
		if err != nil {
			return nil, err
		}
		factory, err := auth.GetFactory(key)
		if err != nil {
			return nil, err
		}
		keys[name] = &simKey{factory: factory, address: key.Address}
		allocs = append(allocs, &genesis.CustomAllocation{
			Address: codec.MustAddressBech32(consts.HRP, key.Address),
			Balance: balance,
		})
	}

	db := state.NewDatabase(memdb.New())
	v, err := vm.New(ctx, log, trace.Noop(), db, genesis.NewDefaultGenesis(allocs), vm.NewDefaultConfig(), prometheus.NewRegistry())
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	now := time.Now().Truncate(time.Second)
	v.Clock().Set(now)
	return &simulator{
		log:     log,
		db:      db,
		vm:      v,
		now:     now,
		keys:    keys,
		records: make(map[string]codec.Address),

		defaultActor: plan.Keys[0],
	}, nil
}

func (s *simulator) Close() error {
	return errors.Join(s.vm.Close(), s.db.Close())
}

func (s *simulator) record(step *Step) (codec.Address, error) {
	if record, ok := s.records[step.Record]; ok {
		return record, nil
	}
	if step.Action != CreateStep {
		return codec.EmptyAddress, fmt.Errorf("%w: %s", ErrUnknownRecord, step.Record)
	}
	record, err := newRecordAddress()
	if err != nil {
		return codec.EmptyAddress, err
	}
	s.records[step.Record] = record
	return record, nil
}

func (s *simulator) action(step *Step, actor *simKey) (chain.Action, codec.Address, error) {
	record, err := s.record(step)
	if err != nil {
		return nil, codec.EmptyAddress, err
	}
	switch step.Action {
	case CreateStep:
		return &actions.Create{Counter: record}, record, nil
	case IncrementStep:
		return &actions.Increment{Counter: record}, record, nil
	case DecrementStep:
		return &actions.Decrement{Counter: record}, record, nil
	case SetStep:
		return &actions.Set{Counter: record, Value: *step.Value}, record, nil
	default:
		payer := actor.address
		if len(step.Payer) > 0 {
			payer = s.keys[step.Payer].address
		}
		return &actions.Close{Counter: record, Payer: payer}, record, nil
	}
}

func (s *simulator) Run(ctx context.Context, plan *Plan, w io.Writer) ([]*Response, error) {
	s.log.Info("simulation",
		zap.String("plan", plan.Name),
		zap.String("description", plan.Description),
	)
	responses := make([]*Response, 0, len(plan.Steps))
	for i := range plan.Steps {
		step := &plan.Steps[i]
		resp, stepErr := s.runStep(ctx, i, step)
		if resp != nil {
			responses = append(responses, resp)
			b, err := json.Marshal(resp)
			if err != nil {
				return responses, err
			}
			if _, err := fmt.Fprintln(w, string(b)); err != nil {
				return responses, err
			}
		}
		if stepErr != nil {
			return responses, stepErr
		}
	}
	return responses, nil
}

func (s *simulator) runStep(ctx context.Context, i int, step *Step) (*Response, error) {
	actorName := step.Actor
	if len(actorName) == 0 {
		actorName = s.defaultActor
	}
	actor := s.keys[actorName]
	s.log.Info("simulation",
		zap.Int("step", i),
		zap.String("description", step.Description),
		zap.String("actor", actorName),
		zap.String("action", step.Action),
		zap.String("record", step.Record),
	)

	s.now = s.now.Add(time.Second)
	s.vm.Clock().Set(s.now)
	action, record, err := s.action(step, actor)
	if err != nil {
		return nil, err
	}
	rules := s.vm.Rules()
	tx, err := chain.NewTx(&chain.Base{
		Timestamp: utils.UnixRMilli(s.now.UnixMilli(), rules.GetValidityWindow()),
		ChainID:   rules.GetChainID(),
		MaxFee:    rules.GetBaseFee(),
	}, []chain.Action{action}).Sign(actor.factory, s.vm.Registry())
	if err != nil {
		return nil, err
	}

	resp := &Response{ID: i, Description: step.Description}
	accepted, txErr := s.vm.Submit(ctx, tx)
	if txErr != nil {
		resp.Error = txErr.Error()
	} else {
		resp.TxID = accepted.Result.TxID.String()
		resp.Height = accepted.Height
	}
	counter, err := s.vm.GetCounter(ctx, record)
	switch {
	case err == nil:
		resp.Count = &counter.Count
	case !errors.Is(err, storage.ErrRecordNotFound):
		return nil, err
	}
	resp.Balance, err = s.vm.GetBalance(ctx, actor.address)
	if err != nil {
		return nil, err
	}
	return resp, checkRequire(i, step.Require, resp)
}

func checkRequire(i int, r *Require, resp *Response) error {
	if r == nil {
		r = &Require{}
	}
	switch {
	case len(r.Error) == 0 && len(resp.Error) > 0:
		return fmt.Errorf("%w: step %d failed: %s", ErrRequireFailed, i, resp.Error)
	case len(r.Error) > 0 && !strings.Contains(resp.Error, r.Error):
		return fmt.Errorf("%w: step %d expected error %q, got %q", ErrRequireFailed, i, r.Error, resp.Error)
	case r.Closed && resp.Count != nil:
		return fmt.Errorf("%w: step %d expected a closed record, count is %d", ErrRequireFailed, i, *resp.Count)
	case r.Count != nil && resp.Count == nil:
		return fmt.Errorf("%w: step %d expected count %d, record is closed", ErrRequireFailed, i, *r.Count)
	case r.Count != nil && *r.Count != *resp.Count:
		return fmt.Errorf("%w: step %d expected count %d, got %d", ErrRequireFailed, i, *r.Count, *resp.Count)
	}
	return nil
}

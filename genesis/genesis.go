// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/go-playground/validator/v10"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
	"github.com/ava-labs/countervm/utils"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

var ErrMissingRules = errors.New("missing initial rules")

// DefaultChainID is used by [NewDefaultRules] so locally generated
// transactions can be signed before a chain is deployed.
var DefaultChainID = utils.ToID([]byte(consts.Name))

type CustomAllocation struct {
	Address string `json:"address" validate:"required"` // bech32 address
	Balance uint64 `json:"balance" validate:"gt=0"`
}

type Genesis struct {
	CustomAllocation []*CustomAllocation `json:"customAllocation" validate:"dive"`
	Rules            *Rules              `json:"initialRules"`
}

func NewDefaultGenesis(customAllocations []*CustomAllocation) *Genesis {
	return &Genesis{
		CustomAllocation: customAllocations,
		Rules:            NewDefaultRules(),
	}
}

// Load parses [genesisBytes] and pins the rules to [networkID]. A non-empty
// [chainID] overrides the chain id in the file. If neither is set, the chain
// id is the hash of [genesisBytes].
func Load(genesisBytes []byte, networkID uint32, chainID ids.ID) (*Genesis, error) {
	g := &Genesis{}
	if err := json.Unmarshal(genesisBytes, g); err != nil {
		return nil, err
	}
	if g.Rules == nil {
		return nil, ErrMissingRules
	}
	g.Rules.NetworkID = networkID
	if chainID != ids.Empty {
		g.Rules.ChainID = chainID
	}
	if g.Rules.ChainID == ids.Empty {
		g.Rules.ChainID = utils.ToID(genesisBytes)
	}
	if err := g.Verify(); err != nil {
		return nil, err
	}
	return g, nil
}

// Verify checks the field constraints and that a record deposit can be
// computed without overflow.
func (g *Genesis) Verify() error {
	if g.Rules == nil {
		return ErrMissingRules
	}
	if err := validator.New().Struct(g); err != nil {
		return err
	}
	if _, err := g.Rules.GetMinimumBalance(storage.CounterRecordLen); err != nil {
		return err
	}
	return nil
}

func (g *Genesis) Bytes() ([]byte, error) {
	return json.Marshal(g)
}

// InitializeState credits every allocation and returns the total supply.
func (g *Genesis) InitializeState(ctx context.Context, tracer trace.Tracer, mu state.Mutable) (uint64, error) {
	ctx, span := tracer.Start(ctx, "Genesis.InitializeState")
	defer span.End()

	supply := uint64(0)
	for _, alloc := range g.CustomAllocation {
		addr, err := codec.ParseAddressBech32(consts.HRP, alloc.Address)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", err, alloc.Address)
		}
		supply, err = safemath.Add(supply, alloc.Balance)
		if err != nil {
			return 0, err
		}
		if _, err := storage.AddBalance(ctx, mu, addr, alloc.Balance); err != nil {
			return 0, fmt.Errorf("%w: addr=%s, bal=%d", err, alloc.Address, alloc.Balance)
		}
	}
	return supply, nil
}

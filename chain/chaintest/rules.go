// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/chain"
)

var _ chain.Rules = (*Rules)(nil)

// Rules is a fixed [chain.Rules] for tests.
type Rules struct {
	NetworkID       uint32
	ChainID         ids.ID
	ValidityWindow  int64
	MaxActionsPerTx uint8
	BaseFee         uint64

	StorageOverhead     uint64
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64
}

func NewRules() *Rules {
	return &Rules{
		NetworkID:           1,
		ChainID:             ids.Empty.Prefix(1),
		ValidityWindow:      60_000,
		MaxActionsPerTx:     16,
		BaseFee:             5_000,
		StorageOverhead:     128,
		LamportsPerByteYear: 3_480,
		ExemptionThreshold:  2,
	}
}

func (r *Rules) GetNetworkID() uint32 { return r.NetworkID }

func (r *Rules) GetChainID() ids.ID { return r.ChainID }

func (r *Rules) GetValidityWindow() int64 { return r.ValidityWindow }

func (r *Rules) GetMaxActionsPerTx() uint8 { return r.MaxActionsPerTx }

func (r *Rules) GetBaseFee() uint64 { return r.BaseFee }

func (r *Rules) GetMinimumBalance(dataLen uint64) (uint64, error) {
	return chain.MinimumBalance(r.StorageOverhead, dataLen, r.LamportsPerByteYear, r.ExemptionThreshold)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/chain"
)

var _ chain.Rules = (*Rules)(nil)

type Rules struct {
	// Should almost always be constant (unless there is a fork of
	// a live network)
	NetworkID uint32 `json:"networkID"`
	ChainID   ids.ID `json:"chainID"`

	ValidityWindow  int64  `json:"validityWindow" validate:"gt=0"` // ms
	MaxActionsPerTx uint8  `json:"maxActionsPerTx" validate:"gt=0"`
	BaseFee         uint64 `json:"baseFee" validate:"gt=0"`

	// Record deposits are (StorageOverhead + dataLen) * LamportsPerByteYear *
	// ExemptionThreshold.
	StorageOverhead     uint64 `json:"storageOverhead"`
	LamportsPerByteYear uint64 `json:"lamportsPerByteYear" validate:"gt=0"`
	ExemptionThreshold  uint64 `json:"exemptionThreshold" validate:"gt=0"`
}

func NewDefaultRules() *Rules {
	return &Rules{
		ChainID:             DefaultChainID,
		ValidityWindow:      60 * 1000, // 60 seconds
		MaxActionsPerTx:     16,
		BaseFee:             5_000,
		StorageOverhead:     128,
		LamportsPerByteYear: 3_480,
		ExemptionThreshold:  2,
	}
}

func (r *Rules) GetNetworkID() uint32 {
	return r.NetworkID
}

func (r *Rules) GetChainID() ids.ID {
	return r.ChainID
}

func (r *Rules) GetValidityWindow() int64 {
	return r.ValidityWindow
}

func (r *Rules) GetMaxActionsPerTx() uint8 {
	return r.MaxActionsPerTx
}

func (r *Rules) GetBaseFee() uint64 {
	return r.BaseFee
}

func (r *Rules) GetMinimumBalance(dataLen uint64) (uint64, error) {
	return chain.MinimumBalance(r.StorageOverhead, dataLen, r.LamportsPerByteYear, r.ExemptionThreshold)
}

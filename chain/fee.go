// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

// MinimumBalance returns (storageOverhead + dataLen) * lamportsPerByteYear *
// exemptionThreshold, or [ErrDepositOverflow] if it does not fit in a uint64.
func MinimumBalance(storageOverhead, dataLen, lamportsPerByteYear, exemptionThreshold uint64) (uint64, error) {
	size, err := safemath.Add(storageOverhead, dataLen)
	if err != nil {
		return 0, fmt.Errorf("%w: size: %w", ErrDepositOverflow, err)
	}
	perYear, err := safemath.Mul(size, lamportsPerByteYear)
	if err != nil {
		return 0, fmt.Errorf("%w: rent: %w", ErrDepositOverflow, err)
	}
	deposit, err := safemath.Mul(perYear, exemptionThreshold)
	if err != nil {
		return 0, fmt.Errorf("%w: exemption: %w", ErrDepositOverflow, err)
	}
	return deposit, nil
}

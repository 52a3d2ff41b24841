// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
)

const (
	readBufferSize       = units.KiB
	writeBufferSize      = units.KiB
	writeWait            = 10 * time.Second
	pongWait             = 60 * time.Second
	pingPeriod           = (pongWait * 9) / 10
	maxReadMessageSize   = 256 * units.KiB
	maxWriteMessageSize  = 2 * units.MiB
	maxPendingMessages   = 1_024
	messageBufferTimeout = 10 * time.Millisecond
)

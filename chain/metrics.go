// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type chainMetrics struct {
	txsExecuted prometheus.Counter
	txsFailed   prometheus.Counter

	stateChanges    prometheus.Counter
	stateOperations prometheus.Counter

	executeLatency metric.Averager
}

func newMetrics(r prometheus.Registerer) (*chainMetrics, error) {
	executeLatency, err := metric.NewAverager(
		"chain_execute",
		"time spent executing a transaction",
		r,
	)
	if err != nil {
		return nil, err
	}

	m := &chainMetrics{
		txsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_executed",
			Help:      "number of transactions executed and committed",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_failed",
			Help:      "number of transactions rolled back",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "state_changes",
			Help:      "number of state changes",
		}),
		stateOperations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "state_operations",
			Help:      "number of state operations",
		}),
		executeLatency: executeLatency,
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsExecuted),
		r.Register(m.txsFailed),
		r.Register(m.stateChanges),
		r.Register(m.stateOperations),
	)
	return m, errs.Err
}

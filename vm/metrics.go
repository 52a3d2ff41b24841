// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	txsSubmitted  prometheus.Counter
	txsAccepted   prometheus.Counter
	txsRejected   prometheus.Counter
	duplicateTxs  prometheus.Counter
	droppedEvents prometheus.Counter
	height        prometheus.Gauge
	seenTxs       prometheus.Gauge
	listeners     prometheus.Gauge
	txCommit      metric.Averager
}

func newMetrics(r prometheus.Registerer) (*Metrics, error) {
	txCommit, err := metric.NewAverager(
		"vm_tx_commit",
		"time spent committing transaction changes",
		r,
	)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		txsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_submitted",
			Help:      "number of txs submitted to vm",
		}),
		txsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_accepted",
			Help:      "number of txs accepted by vm",
		}),
		txsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_rejected",
			Help:      "number of txs rejected by vm",
		}),
		duplicateTxs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "duplicate_txs",
			Help:      "number of txs submitted that were already accepted",
		}),
		droppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "dropped_events",
			Help:      "number of accepted results dropped by slow listeners",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vm",
			Name:      "height",
			Help:      "number of committed txs",
		}),
		seenTxs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vm",
			Name:      "seen_txs",
			Help:      "number of tx ids tracked for replay protection",
		}),
		listeners: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vm",
			Name:      "listeners",
			Help:      "number of active result listeners",
		}),
		txCommit: txCommit,
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsSubmitted),
		r.Register(m.txsAccepted),
		r.Register(m.txsRejected),
		r.Register(m.duplicateTxs),
		r.Register(m.droppedEvents),
		r.Register(m.height),
		r.Register(m.seenTxs),
		r.Register(m.listeners),
	)
	return m, errs.Err
}

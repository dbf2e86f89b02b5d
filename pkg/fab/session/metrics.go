/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package session

import "github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics"

var (
	opensOpts = metrics.CounterOpts{
		Namespace:  "coordinator",
		Subsystem:  "session",
		Name:       "opens",
		Help:       "The number of channel sessions established.",
		LabelNames: []string{"channel"},
	}
	restartsOpts = metrics.CounterOpts{
		Namespace:  "coordinator",
		Subsystem:  "session",
		Name:       "restarts",
		Help:       "The number of channel session restarts.",
		LabelNames: []string{"channel"},
	}
	failuresOpts = metrics.CounterOpts{
		Namespace:  "coordinator",
		Subsystem:  "session",
		Name:       "failures",
		Help:       "The number of failed attempts to establish a channel session.",
		LabelNames: []string{"channel", "operation"},
	}
	blockLagOpts = metrics.GaugeOpts{
		Namespace:  "coordinator",
		Subsystem:  "session",
		Name:       "block_lag",
		Help:       "The number of committed blocks not yet processed.",
		LabelNames: []string{"channel"},
	}
)

// Metrics are the session manager instruments.
type Metrics struct {
	Opens    metrics.Counter
	Restarts metrics.Counter
	Failures metrics.Counter
	BlockLag metrics.Gauge
}

// NewMetrics creates the session manager instruments.
func NewMetrics(p metrics.Provider) *Metrics {
	return &Metrics{
		Opens:    p.NewCounter(opensOpts),
		Restarts: p.NewCounter(restartsOpts),
		Failures: p.NewCounter(failuresOpts),
		BlockLag: p.NewGauge(blockLagOpts),
	}
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package disabled

import (
	"testing"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics"
	"github.com/stretchr/testify/assert"
)

func TestDisabledProvider(t *testing.T) {
	var p metrics.Provider = &Provider{}

	assert.NotPanics(t, func() {
		p.NewCounter(metrics.CounterOpts{}).With("channel", "a").Add(1)
		g := p.NewGauge(metrics.GaugeOpts{}).With("channel", "a")
		g.Set(10)
		g.Add(1)
		p.NewHistogram(metrics.HistogramOpts{}).With("channel", "a").Observe(0.5)
	})
}

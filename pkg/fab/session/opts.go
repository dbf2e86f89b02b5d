/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package session

import (
	"time"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/options"
)

const defaultDiscoveryTimeout = 15 * time.Second

type params struct {
	discoveryTimeout time.Duration
	metricsProvider  metrics.Provider
}

func defaultParams() *params {
	return &params{
		discoveryTimeout: defaultDiscoveryTimeout,
	}
}

// WithDiscoveryTimeout sets the time allowed for a single discovery request.
func WithDiscoveryTimeout(value time.Duration) options.Opt {
	return func(p options.Params) {
		if setter, ok := p.(discoveryTimeoutSetter); ok {
			setter.SetDiscoveryTimeout(value)
		}
	}
}

// WithMetricsProvider sets the provider used to create the session instruments.
func WithMetricsProvider(value metrics.Provider) options.Opt {
	return func(p options.Params) {
		if setter, ok := p.(metricsProviderSetter); ok {
			setter.SetMetricsProvider(value)
		}
	}
}

func (p *params) SetDiscoveryTimeout(value time.Duration) {
	if value > 0 {
		logger.Debugf("DiscoveryTimeout: %s", value)
		p.discoveryTimeout = value
	}
}

func (p *params) SetMetricsProvider(value metrics.Provider) {
	p.metricsProvider = value
}

type discoveryTimeoutSetter interface {
	SetDiscoveryTimeout(value time.Duration)
}

type metricsProviderSetter interface {
	SetMetricsProvider(value metrics.Provider)
}

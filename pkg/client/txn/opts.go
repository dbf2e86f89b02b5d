/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import (
	"context"
	"time"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/retry"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/options"
)

const (
	defaultProposalTimeout = 30 * time.Second
	defaultOrderTimeout    = 30 * time.Second
	defaultQueryTimeout    = 15 * time.Second
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

type params struct {
	proposalTimeout time.Duration
	orderTimeout    time.Duration
	queryTimeout    time.Duration
	retryOpts       retry.Opts
	sleep           SleepFunc
	metricsProvider metrics.Provider
}

func defaultParams() *params {
	return &params{
		proposalTimeout: defaultProposalTimeout,
		orderTimeout:    defaultOrderTimeout,
		queryTimeout:    defaultQueryTimeout,
		retryOpts:       retry.DefaultOpts,
		sleep:           sleep,
	}
}

// WithProposalTimeout sets the time allowed for one proposal attempt
func WithProposalTimeout(value time.Duration) options.Opt {
	return func(p options.Params) {
		if setter, ok := p.(proposalTimeoutSetter); ok {
			setter.SetProposalTimeout(value)
		}
	}
}

// WithOrderTimeout sets the time allowed for handing a transaction to the orderers
func WithOrderTimeout(value time.Duration) options.Opt {
	return func(p options.Params) {
		if setter, ok := p.(orderTimeoutSetter); ok {
			setter.SetOrderTimeout(value)
		}
	}
}

// WithQueryTimeout sets the time allowed for querying a single peer
func WithQueryTimeout(value time.Duration) options.Opt {
	return func(p options.Params) {
		if setter, ok := p.(queryTimeoutSetter); ok {
			setter.SetQueryTimeout(value)
		}
	}
}

// WithRetryOpts sets the proposal retry policy
func WithRetryOpts(value retry.Opts) options.Opt {
	return func(p options.Params) {
		if setter, ok := p.(retryOptsSetter); ok {
			setter.SetRetryOpts(value)
		}
	}
}

// WithSleep replaces the function used to wait out retry backoffs
func WithSleep(value SleepFunc) options.Opt {
	return func(p options.Params) {
		if setter, ok := p.(sleepSetter); ok {
			setter.SetSleep(value)
		}
	}
}

// WithMetricsProvider sets the provider used to create the client instruments
func WithMetricsProvider(value metrics.Provider) options.Opt {
	return func(p options.Params) {
		if setter, ok := p.(metricsProviderSetter); ok {
			setter.SetMetricsProvider(value)
		}
	}
}

func (p *params) SetProposalTimeout(value time.Duration) {
	if value > 0 {
		logger.Debugf("ProposalTimeout: %s", value)
		p.proposalTimeout = value
	}
}

func (p *params) SetOrderTimeout(value time.Duration) {
	if value > 0 {
		logger.Debugf("OrderTimeout: %s", value)
		p.orderTimeout = value
	}
}

func (p *params) SetQueryTimeout(value time.Duration) {
	if value > 0 {
		logger.Debugf("QueryTimeout: %s", value)
		p.queryTimeout = value
	}
}

func (p *params) SetRetryOpts(value retry.Opts) {
	logger.Debugf("RetryOpts: %#v", value)
	p.retryOpts = value
}

func (p *params) SetSleep(value SleepFunc) {
	if value != nil {
		p.sleep = value
	}
}

func (p *params) SetMetricsProvider(value metrics.Provider) {
	p.metricsProvider = value
}

type proposalTimeoutSetter interface {
	SetProposalTimeout(value time.Duration)
}

type orderTimeoutSetter interface {
	SetOrderTimeout(value time.Duration)
}

type queryTimeoutSetter interface {
	SetQueryTimeout(value time.Duration)
}

type retryOptsSetter interface {
	SetRetryOpts(value retry.Opts)
}

type sleepSetter interface {
	SetSleep(value SleepFunc)
}

type metricsProviderSetter interface {
	SetMetricsProvider(value metrics.Provider)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

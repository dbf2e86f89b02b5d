/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package prometheus

import (
	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/prometheus"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Provider creates meters backed by Prometheus collectors registered with
// Registerer. A collector that is already registered is reused, so several
// coordinators in one process share their series.
type Provider struct {
	Registerer prom.Registerer
}

// NewProvider returns a provider registering with the given registerer,
// or the default Prometheus registerer when r is nil.
func NewProvider(r prom.Registerer) *Provider {
	if r == nil {
		r = prom.DefaultRegisterer
	}
	return &Provider{Registerer: r}
}

func (p *Provider) NewCounter(o metrics.CounterOpts) metrics.Counter {
	cv := prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: o.Namespace,
			Subsystem: o.Subsystem,
			Name:      o.Name,
			Help:      o.Help,
		},
		o.LabelNames,
	)
	if existing := p.register(cv); existing != nil {
		cv = existing.(*prom.CounterVec)
	}
	return &Counter{Counter: prometheus.NewCounter(cv)}
}

func (p *Provider) NewGauge(o metrics.GaugeOpts) metrics.Gauge {
	gv := prom.NewGaugeVec(
		prom.GaugeOpts{
			Namespace: o.Namespace,
			Subsystem: o.Subsystem,
			Name:      o.Name,
			Help:      o.Help,
		},
		o.LabelNames,
	)
	if existing := p.register(gv); existing != nil {
		gv = existing.(*prom.GaugeVec)
	}
	return &Gauge{Gauge: prometheus.NewGauge(gv)}
}

func (p *Provider) NewHistogram(o metrics.HistogramOpts) metrics.Histogram {
	hv := prom.NewHistogramVec(
		prom.HistogramOpts{
			Namespace: o.Namespace,
			Subsystem: o.Subsystem,
			Name:      o.Name,
			Help:      o.Help,
			Buckets:   o.Buckets,
		},
		o.LabelNames,
	)
	if existing := p.register(hv); existing != nil {
		hv = existing.(*prom.HistogramVec)
	}
	return &Histogram{Histogram: prometheus.NewHistogram(hv)}
}

// register returns the previously registered collector when c is a duplicate.
func (p *Provider) register(c prom.Collector) prom.Collector {
	if err := p.Registerer.Register(c); err != nil {
		if are, ok := err.(prom.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return nil
}

type Counter struct{ kitmetrics.Counter }

func (c *Counter) With(labelValues ...string) metrics.Counter {
	return &Counter{Counter: c.Counter.With(labelValues...)}
}

type Gauge struct{ kitmetrics.Gauge }

func (g *Gauge) With(labelValues ...string) metrics.Gauge {
	return &Gauge{Gauge: g.Gauge.With(labelValues...)}
}

type Histogram struct{ kitmetrics.Histogram }

func (h *Histogram) With(labelValues ...string) metrics.Histogram {
	return &Histogram{Histogram: h.Histogram.With(labelValues...)}
}

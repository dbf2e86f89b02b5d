/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package coordinator assembles the transaction coordinator from its
// configuration: the block sequence store and its sink, the block event
// processor, the channel session manager and the transaction client. The
// Coordinator owns all of them and releases them on Close.
package coordinator

import (
	"context"
	"io"
	"sync"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/client/policy"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/client/txn"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/multi"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/logging"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics/disabled"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics/prometheus"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/core/config"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/fab/events/blockproc"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/fab/seqstore"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/fab/session"
	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
)

var logger = logging.NewLogger("coordinator")

type options struct {
	registry   *policy.Registry
	registerer prom.Registerer
	sink       fab.SequenceSink
}

// Option configures the assembly of a Coordinator.
type Option func(opts *options)

// WithPolicyRegistry supplies the registry used to resolve chaincode
// policies, so that custom policies can be registered before assembly.
func WithPolicyRegistry(r *policy.Registry) Option {
	return func(opts *options) {
		opts.registry = r
	}
}

// WithRegisterer sets the Prometheus registerer used when the prometheus
// metrics provider is configured. The default registerer is used otherwise.
func WithRegisterer(r prom.Registerer) Option {
	return func(opts *options) {
		opts.registerer = r
	}
}

// WithSequenceSink overrides the configured block sequence sink.
func WithSequenceSink(sink fab.SequenceSink) Option {
	return func(opts *options) {
		opts.sink = sink
	}
}

// Coordinator is the assembled transaction coordinator.
type Coordinator struct {
	config    *config.Coordinator
	store     *seqstore.Store
	processor *blockproc.Processor
	sessions  *session.Manager
	client    *txn.Client

	closeOnce sync.Once
	closeErr  error
}

// New assembles a coordinator. Decoded blocks are handed to consumer, which
// may be nil. A custom zap backend must be installed with logging.Initialize
// before New is called.
func New(cfg *config.Coordinator, gateway fab.Gateway, feed fab.BlockEventFeed, consumer fab.DownstreamConsumer, opts ...Option) (*Coordinator, error) {
	if cfg == nil {
		return nil, status.Errorf(status.ClientStatus, status.InvalidArgument, "configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = policy.NewRegistry()
	}

	resolver, err := policy.NewResolver(o.registry, bindings(cfg))
	if err != nil {
		return nil, status.Wrap(err, status.ClientStatus, status.ValidationFailed, "invalid endorsement policy configuration")
	}

	provider := metricsProvider(cfg.Metrics, o.registerer)

	sink := o.sink
	if sink == nil {
		sink, err = NewSink(cfg.BlockSequence)
		if err != nil {
			return nil, err
		}
	}

	store, err := seqstore.New(sink)
	if err != nil {
		closeSink(sink)
		return nil, err
	}

	processor := blockproc.New(store, consumer, blockproc.WithMetrics(blockproc.NewMetrics(provider)))

	sessions, err := session.New(gateway, feed, store, processor.Handler(), cfg.DiscoveryPeers,
		session.WithDiscoveryTimeout(cfg.Timeouts.Discovery),
		session.WithMetricsProvider(provider),
	)
	if err != nil {
		closeSink(sink)
		return nil, err
	}

	users := make([]fab.UserRef, 0, len(cfg.Users))
	for _, u := range cfg.Users {
		user, _ := cfg.User(u.Name)
		users = append(users, user)
	}

	client, err := txn.New(gateway, sessions, resolver, cfg.Channels, users,
		txn.WithProposalTimeout(cfg.Timeouts.Proposal),
		txn.WithOrderTimeout(cfg.Timeouts.Order),
		txn.WithQueryTimeout(cfg.Timeouts.Query),
		txn.WithRetryOpts(cfg.Retry),
		txn.WithMetricsProvider(provider),
	)
	if err != nil {
		closeSink(sink)
		return nil, err
	}

	logger.Infof("coordinator assembled for %d channels with %s block sequence store", len(cfg.Channels), cfg.BlockSequence.Store)

	return &Coordinator{
		config:    cfg,
		store:     store,
		processor: processor,
		sessions:  sessions,
		client:    client,
	}, nil
}

// Start opens the sessions of all configured channels. Channels that fail to
// open are reported and opened again on their next submission.
func (c *Coordinator) Start(ctx context.Context) error {
	var errs error
	for _, ch := range c.config.Channels {
		if _, err := c.sessions.Open(ctx, ch); err != nil {
			logger.Warnf("channel [%s] could not be opened: %s", ch, err)
			errs = multi.Append(errs, errors.WithMessagef(err, "channel [%s]", ch))
		}
	}
	return errs
}

// Submit submits a transaction, see txn.Client.Submit.
func (c *Coordinator) Submit(ctx context.Context, request txn.Request, opts ...txn.RequestOption) (txn.Response, error) {
	return c.client.Submit(ctx, request, opts...)
}

// Query evaluates a transaction without ordering it, see txn.Client.Query.
func (c *Coordinator) Query(ctx context.Context, request txn.Request, opts ...txn.RequestOption) (txn.Response, error) {
	return c.client.Query(ctx, request, opts...)
}

// BlockHeights returns the ledger height of every channel with a session and
// updates the block lag gauges.
func (c *Coordinator) BlockHeights(ctx context.Context) (map[string]uint64, error) {
	heights := make(map[string]uint64)
	var errs error
	for _, ch := range c.sessions.Channels() {
		height, err := c.sessions.BlockHeight(ctx, ch)
		if err != nil {
			errs = multi.Append(errs, errors.WithMessagef(err, "channel [%s]", ch))
			continue
		}
		heights[ch] = height
	}
	return heights, errs
}

// Client returns the transaction client.
func (c *Coordinator) Client() *txn.Client {
	return c.client
}

// Sessions returns the channel session manager.
func (c *Coordinator) Sessions() *session.Manager {
	return c.sessions
}

// SequenceStore returns the block sequence store.
func (c *Coordinator) SequenceStore() *seqstore.Store {
	return c.store
}

// Close stops all event subscriptions, releases the sessions and closes the
// block sequence store.
func (c *Coordinator) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = multi.New(c.sessions.CloseAll(), c.store.Close())
		logger.Info("coordinator closed")
	})
	return c.closeErr
}

func bindings(cfg *config.Coordinator) []policy.Binding {
	b := make([]policy.Binding, len(cfg.Chaincodes))
	for i, cc := range cfg.Chaincodes {
		b[i] = policy.Binding{ChaincodeID: cc.Name, Policy: cc.Policy, Params: cc.Params}
	}
	return b
}

func metricsProvider(name string, registerer prom.Registerer) metrics.Provider {
	if name == config.MetricsPrometheus {
		return prometheus.NewProvider(registerer)
	}
	return &disabled.Provider{}
}

// NewSink opens the configured block sequence sink.
func NewSink(cfg config.SequenceStoreConfig) (fab.SequenceSink, error) {
	switch cfg.Store {
	case config.SequenceStoreMemory:
		return seqstore.NewMemorySink(nil), nil
	case config.SequenceStoreLevelDB:
		sink, err := seqstore.NewLevelDBSink(cfg.Path)
		if err != nil {
			return nil, status.Wrap(err, status.StoreStatus, status.StoreIOFailed, "opening leveldb block sequence store failed")
		}
		return sink, nil
	case config.SequenceStoreFile:
		sink, err := seqstore.NewFileSink(cfg.Path)
		if err != nil {
			return nil, status.Wrap(err, status.StoreStatus, status.StoreIOFailed, "opening file block sequence store failed")
		}
		return sink, nil
	default:
		return nil, status.Errorf(status.ClientStatus, status.ValidationFailed, "unknown block sequence store [%s]", cfg.Store)
	}
}

func closeSink(sink fab.SequenceSink) {
	if c, ok := sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warnf("error closing block sequence sink: %s", err)
		}
	}
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package session maintains one validated ChannelSession per channel. A
// session is built by asking the configured discovery peers, in order, for
// the channel's endorsers, orderers and chaincodes; the channel's block
// event subscription is tied to the session's lifetime.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/multi"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/logging"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics/disabled"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/options"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
	"github.com/pkg/errors"
)

var logger = logging.NewLogger("coordinator/session")

// SequenceStore supplies the last processed block of a channel, from which
// the event subscription is resumed.
type SequenceStore interface {
	GetCurrent(channelID string) (int64, error)
}

// Manager owns the channel sessions.
//
// Readers always get a consistent snapshot: a session becomes visible only
// after it has been validated and its subscription is active, and it is
// never modified once visible. Open, Restart, Refresh and Close are
// serialized per channel.
type Manager struct {
	params
	gateway fab.Gateway
	feed    fab.BlockEventFeed
	store   SequenceStore
	handler fab.BlockHandler
	peers   []fab.PeerRef
	metrics *Metrics

	generation uint64

	mutex    sync.RWMutex
	channels map[string]*channelState
}

type channelState struct {
	// opMutex serializes session changes for the channel
	opMutex      sync.Mutex
	subscription fab.Subscription

	// session is guarded by Manager.mutex
	session *fab.ChannelSession
}

// New returns a session manager that discovers channels through the given
// peers. Every session subscribes handler to the channel's block events.
func New(gateway fab.Gateway, feed fab.BlockEventFeed, store SequenceStore, handler fab.BlockHandler, peers []fab.PeerRef, opts ...options.Opt) (*Manager, error) {
	if gateway == nil || feed == nil || store == nil || handler == nil {
		return nil, status.Errorf(status.ClientStatus, status.InvalidArgument, "gateway, event feed, sequence store and block handler are required")
	}
	if len(peers) == 0 {
		return nil, status.Errorf(status.ClientStatus, status.InvalidArgument, "at least one discovery peer is required")
	}

	params := defaultParams()
	options.Apply(params, opts)
	if params.metricsProvider == nil {
		params.metricsProvider = &disabled.Provider{}
	}

	return &Manager{
		params:   *params,
		gateway:  gateway,
		feed:     feed,
		store:    store,
		handler:  handler,
		peers:    append([]fab.PeerRef(nil), peers...),
		metrics:  NewMetrics(params.metricsProvider),
		channels: make(map[string]*channelState),
	}, nil
}

// Open establishes the channel's session, or returns the current one if the
// channel is already open. It fails with DiscoveryFailed if none of the
// discovery peers yields a usable session.
func (m *Manager) Open(ctx context.Context, channelID string) (*fab.ChannelSession, error) {
	if channelID == "" {
		return nil, status.Errorf(status.ClientStatus, status.ValidationFailed, "channel ID is required")
	}

	cs := m.channel(channelID)
	cs.opMutex.Lock()
	defer cs.opMutex.Unlock()

	if session := m.current(cs); session != nil {
		return session.Clone(), nil
	}

	session, err := m.establish(ctx, cs, channelID)
	if err != nil {
		m.metrics.Failures.With("channel", channelID, "operation", "open").Add(1)
		return nil, status.Wrap(err, status.DiscoveryStatus, status.DiscoveryFailed, fmt.Sprintf("opening session for channel [%s] failed", channelID))
	}

	m.metrics.Opens.With("channel", channelID).Add(1)
	logger.Infof("opened session %d for channel [%s] from peer [%s]", session.Generation, channelID, session.DiscoveredFrom)

	return session.Clone(), nil
}

// Restart tears down the channel's session and establishes a new one. The
// previous session stays visible to readers until it is replaced. If no
// discovery peer yields a usable session, Restart fails with
// InfrastructureFailed and the channel is left without a session.
func (m *Manager) Restart(ctx context.Context, channelID string) (*fab.ChannelSession, error) {
	if channelID == "" {
		return nil, status.Errorf(status.ClientStatus, status.ValidationFailed, "channel ID is required")
	}

	cs := m.channel(channelID)
	cs.opMutex.Lock()
	defer cs.opMutex.Unlock()

	return m.restart(ctx, cs, channelID)
}

// Refresh restarts the session that stale was taken from. If the channel's
// session has been replaced since, the current one is returned instead, so
// that concurrent callers holding the same failed snapshot cause a single
// restart. A channel left without a session is opened again.
func (m *Manager) Refresh(ctx context.Context, stale *fab.ChannelSession) (*fab.ChannelSession, error) {
	if stale == nil || stale.ChannelID == "" {
		return nil, status.Errorf(status.ClientStatus, status.ValidationFailed, "session to refresh is required")
	}

	cs := m.channel(stale.ChannelID)
	cs.opMutex.Lock()
	defer cs.opMutex.Unlock()

	if current := m.current(cs); current != nil && current.Generation != stale.Generation {
		logger.Debugf("session %d for channel [%s] already replaced by %d", stale.Generation, stale.ChannelID, current.Generation)
		return current.Clone(), nil
	}

	return m.restart(ctx, cs, stale.ChannelID)
}

// Session returns a snapshot of the channel's current session.
func (m *Manager) Session(channelID string) (*fab.ChannelSession, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	cs, ok := m.channels[channelID]
	if !ok || cs.session == nil {
		return nil, false
	}
	return cs.session.Clone(), true
}

// Channels returns the IDs of the channels that currently have a session.
func (m *Manager) Channels() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var ids []string
	for id, cs := range m.channels {
		if cs.session != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Close stops the channel's event subscription and releases its session.
func (m *Manager) Close(channelID string) error {
	m.mutex.RLock()
	cs, ok := m.channels[channelID]
	m.mutex.RUnlock()
	if !ok {
		return nil
	}

	cs.opMutex.Lock()
	defer cs.opMutex.Unlock()

	err := m.teardown(cs)
	m.install(cs, nil)
	return err
}

// CloseAll closes every channel.
func (m *Manager) CloseAll() error {
	m.mutex.RLock()
	ids := make([]string, 0, len(m.channels))
	for id := range m.channels {
		ids = append(ids, id)
	}
	m.mutex.RUnlock()

	var errs error
	for _, id := range ids {
		if err := m.Close(id); err != nil {
			errs = multi.Append(errs, errors.WithMessagef(err, "closing channel [%s]", id))
		}
	}
	return errs
}

// BlockHeight returns the channel's ledger height and updates the block lag
// gauge from it.
func (m *Manager) BlockHeight(ctx context.Context, channelID string) (uint64, error) {
	session, ok := m.Session(channelID)
	if !ok {
		return 0, status.Errorf(status.DiscoveryStatus, status.DiscoveryFailed, "no session for channel [%s]", channelID)
	}

	height, err := m.gateway.BlockHeight(ctx, session)
	if err != nil {
		return 0, status.Wrap(err, status.DiscoveryStatus, status.QueryFailed, fmt.Sprintf("querying block height of channel [%s] failed", channelID))
	}

	last, err := m.store.GetCurrent(channelID)
	if err != nil {
		return 0, err
	}

	var lag int64
	if height > 0 {
		lag = int64(height) - 1 - last
	}
	if lag < 0 {
		lag = 0
	}
	m.metrics.BlockLag.With("channel", channelID).Set(float64(lag))

	return height, nil
}

func (m *Manager) restart(ctx context.Context, cs *channelState, channelID string) (*fab.ChannelSession, error) {
	m.metrics.Restarts.With("channel", channelID).Add(1)

	if err := m.teardown(cs); err != nil {
		logger.Warnf("error tearing down session for channel [%s]: %s", channelID, err)
	}

	session, err := m.establish(ctx, cs, channelID)
	if err != nil {
		m.install(cs, nil)
		m.metrics.Failures.With("channel", channelID, "operation", "restart").Add(1)
		logger.Errorf("restart of channel [%s] failed, channel has no session: %s", channelID, err)
		return nil, status.Wrap(err, status.DiscoveryStatus, status.InfrastructureFailed, fmt.Sprintf("restarting session for channel [%s] failed", channelID))
	}

	logger.Infof("restarted channel [%s] with session %d from peer [%s]", channelID, session.Generation, session.DiscoveredFrom)

	return session.Clone(), nil
}

// establish tries the discovery peers in order and installs the first
// usable session.
func (m *Manager) establish(ctx context.Context, cs *channelState, channelID string) (*fab.ChannelSession, error) {
	var errs error
	for _, peer := range m.peers {
		if err := ctx.Err(); err != nil {
			return nil, multi.Append(errs, errors.Wrap(err, "discovery aborted"))
		}

		session, err := m.discover(ctx, peer, channelID)
		if err != nil {
			logger.Warnf("discovery of channel [%s] from peer [%s] failed: %s", channelID, peer, err)
			errs = multi.Append(errs, errors.WithMessagef(err, "peer [%s]", peer))
			continue
		}

		last, err := m.store.GetCurrent(channelID)
		if err != nil {
			m.release(session)
			return nil, err
		}
		session.StartBlock = uint64(last) + 1
		session.Generation = atomic.AddUint64(&m.generation, 1)

		// the subscription outlives the caller's request
		sub, err := m.feed.Subscribe(context.WithoutCancel(ctx), channelID, session.StartBlock, m.handler)
		if err != nil {
			logger.Warnf("subscribing to channel [%s] from block %d failed: %s", channelID, session.StartBlock, err)
			m.release(session)
			errs = multi.Append(errs, errors.WithMessagef(err, "subscribing via peer [%s]", peer))
			continue
		}

		cs.subscription = sub
		m.install(cs, session)
		return session, nil
	}

	return nil, errs
}

func (m *Manager) discover(ctx context.Context, peer fab.PeerRef, channelID string) (*fab.ChannelSession, error) {
	reqCtx, cancel := context.WithTimeout(ctx, m.discoveryTimeout)
	defer cancel()

	session, err := m.gateway.Discover(reqCtx, peer, channelID)
	if err != nil {
		return nil, err
	}
	if err := validate(session, channelID); err != nil {
		m.release(session)
		return nil, err
	}

	session = session.Clone()
	if session.DiscoveredFrom.ID == "" && session.DiscoveredFrom.URL == "" {
		session.DiscoveredFrom = peer
	}
	return session, nil
}

func validate(session *fab.ChannelSession, channelID string) error {
	if session == nil {
		return errors.New("no session returned")
	}
	if session.ChannelID != channelID {
		return errors.Errorf("session is for channel [%s]", session.ChannelID)
	}
	if len(session.EndorsingPeers) == 0 {
		return errors.New("no endorsing peers discovered")
	}
	if len(session.Orderers) == 0 {
		return errors.New("no orderers discovered")
	}
	if len(session.ChaincodeIDs) == 0 {
		return errors.New("no chaincodes discovered")
	}
	return nil
}

func (m *Manager) teardown(cs *channelState) error {
	var errs error
	if cs.subscription != nil {
		if err := cs.subscription.Close(); err != nil {
			errs = multi.Append(errs, errors.WithMessage(err, "closing block event subscription"))
		}
		cs.subscription = nil
	}

	if session := m.current(cs); session != nil {
		if err := m.gateway.Release(session); err != nil {
			errs = multi.Append(errs, errors.WithMessage(err, "releasing session"))
		}
	}
	return errs
}

func (m *Manager) release(session *fab.ChannelSession) {
	if session == nil {
		return
	}
	if err := m.gateway.Release(session); err != nil {
		logger.Warnf("error releasing discarded session for channel [%s]: %s", session.ChannelID, err)
	}
}

func (m *Manager) channel(channelID string) *channelState {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	cs, ok := m.channels[channelID]
	if !ok {
		cs = &channelState{}
		m.channels[channelID] = cs
	}
	return cs
}

func (m *Manager) current(cs *channelState) *fab.ChannelSession {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return cs.session
}

func (m *Manager) install(cs *channelState, session *fab.ChannelSession) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	cs.session = session
}

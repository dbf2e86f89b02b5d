/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the coordinator configuration from YAML or JSON with
// environment overrides (prefix COORD_, "." replaced by "_").
package config

import (
	"time"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/multi"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/retry"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/core"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/core/config/lookup"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/core/config/urlutil"
)

// Default values used when the corresponding setting is absent or zero.
const (
	DefaultProposalTimeout  = 30 * time.Second
	DefaultOrderTimeout     = 30 * time.Second
	DefaultDiscoveryTimeout = 15 * time.Second
	DefaultQueryTimeout     = 15 * time.Second

	// DefaultProposalAttempts is the total number of proposal attempts,
	// the first one included.
	DefaultProposalAttempts = 3

	DefaultSequenceStore = SequenceStoreFile
	DefaultSequencePath  = "blocksequence"
	DefaultMetrics       = MetricsDisabled
)

// Block sequence store types
const (
	SequenceStoreFile    = "file"
	SequenceStoreLevelDB = "leveldb"
	SequenceStoreMemory  = "memory"
)

// Metrics provider types
const (
	MetricsDisabled   = "disabled"
	MetricsPrometheus = "prometheus"
)

// Timeouts bounds each kind of network call.
type Timeouts struct {
	Proposal  time.Duration
	Order     time.Duration
	Discovery time.Duration
	Query     time.Duration
}

// ChaincodeConfig binds a chaincode to an endorsement policy.
type ChaincodeConfig struct {
	Name   string
	Policy string
	Params map[string]interface{}
}

// SequenceStoreConfig selects the durable block sequence sink.
type SequenceStoreConfig struct {
	Store string
	Path  string
}

// Coordinator is the typed coordinator configuration.
type Coordinator struct {
	Organization string
	MSPID        string
	Timeouts     Timeouts
	// ProposalAttempts is the total number of proposal attempts per submission
	ProposalAttempts int
	Retry            retry.Opts

	DiscoveryPeers []fab.PeerRef
	Channels       []string
	Users          []fab.UserRef
	Chaincodes     []ChaincodeConfig

	BlockSequence SequenceStoreConfig
	Metrics       string
	LoggingLevel  string
}

// FromProvider loads the backends of the provider and decodes them.
func FromProvider(provider core.ConfigProvider) (*Coordinator, error) {
	backends, err := provider()
	if err != nil {
		return nil, status.Wrap(err, status.ClientStatus, status.ValidationFailed, "loading configuration failed")
	}
	return FromBackend(backends...)
}

// FromBackend decodes and validates the coordinator configuration. Values
// from earlier backends take precedence.
func FromBackend(backends ...core.ConfigBackend) (*Coordinator, error) {
	l := lookup.New(backends...)

	c := &Coordinator{
		Organization: l.GetString("client.organization"),
		MSPID:        l.GetString("client.mspID"),
		Timeouts: Timeouts{
			Proposal:  durationOrDefault(l, "client.timeouts.proposal", DefaultProposalTimeout),
			Order:     durationOrDefault(l, "client.timeouts.order", DefaultOrderTimeout),
			Discovery: durationOrDefault(l, "client.timeouts.discovery", DefaultDiscoveryTimeout),
			Query:     durationOrDefault(l, "client.timeouts.query", DefaultQueryTimeout),
		},
		ProposalAttempts: DefaultProposalAttempts,
		Retry:            retry.DefaultOpts,
		Channels:         l.GetStringSlice("channels"),
		BlockSequence: SequenceStoreConfig{
			Store: l.GetLowerString("blockSequence.store"),
			Path:  l.GetString("blockSequence.path"),
		},
		Metrics:      l.GetLowerString("metrics.provider"),
		LoggingLevel: l.GetString("logging.level"),
	}

	if _, ok := l.Lookup("client.retry.attempts"); ok {
		c.ProposalAttempts = l.GetInt("client.retry.attempts")
	}
	c.Retry.Attempts = c.ProposalAttempts - 1
	if d := l.GetDuration("client.retry.initialBackoff"); d > 0 {
		c.Retry.InitialBackoff = d
	}
	if d := l.GetDuration("client.retry.maxBackoff"); d > 0 {
		c.Retry.MaxBackoff = d
	}
	if f := l.GetFloat64("client.retry.backoffFactor"); f > 0 {
		c.Retry.BackoffFactor = f
	}

	if c.BlockSequence.Store == "" {
		c.BlockSequence.Store = DefaultSequenceStore
	}
	if c.BlockSequence.Path == "" {
		c.BlockSequence.Path = DefaultSequencePath
	}
	if c.Metrics == "" {
		c.Metrics = DefaultMetrics
	}

	var errs error
	for _, key := range []struct {
		name string
		val  interface{}
	}{
		{"discoveryPeers", &c.DiscoveryPeers},
		{"users", &c.Users},
		{"chaincodes", &c.Chaincodes},
	} {
		if err := l.UnmarshalKey(key.name, key.val); err != nil {
			errs = multi.Append(errs, status.Wrap(err, status.ClientStatus, status.ValidationFailed, "invalid "+key.name))
		}
	}
	if errs != nil {
		return nil, errs
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the structural consistency of the configuration. Policy
// names are checked when the policy resolver is built.
func (c *Coordinator) Validate() error {
	var errs error
	invalid := func(format string, args ...interface{}) {
		errs = multi.Append(errs, status.Errorf(status.ClientStatus, status.ValidationFailed, format, args...))
	}

	if len(c.DiscoveryPeers) == 0 {
		invalid("at least one discovery peer is required")
	}
	peerIDs := make(map[string]bool)
	for i, p := range c.DiscoveryPeers {
		if p.ID == "" {
			invalid("discovery peer %d has no id", i)
		} else if peerIDs[p.ID] {
			invalid("duplicate discovery peer [%s]", p.ID)
		}
		peerIDs[p.ID] = true
		if err := urlutil.ValidatePeerURL(p.URL); err != nil {
			invalid("discovery peer [%s]: %s", p.ID, err)
		}
	}

	if len(c.Channels) == 0 {
		invalid("at least one channel is required")
	}
	checkUnique(c.Channels, "channel", invalid)

	if len(c.Users) == 0 {
		invalid("at least one user is required")
	}
	userNames := make([]string, len(c.Users))
	for i, u := range c.Users {
		userNames[i] = u.Name
	}
	checkUnique(userNames, "user", invalid)

	if len(c.Chaincodes) == 0 {
		invalid("at least one chaincode is required")
	}
	ccNames := make([]string, len(c.Chaincodes))
	for i, cc := range c.Chaincodes {
		ccNames[i] = cc.Name
		if cc.Policy == "" {
			invalid("chaincode [%s] has no endorsement policy", cc.Name)
		}
	}
	checkUnique(ccNames, "chaincode", invalid)

	if c.ProposalAttempts < 1 {
		invalid("client.retry.attempts must be at least 1, got %d", c.ProposalAttempts)
	}

	switch c.BlockSequence.Store {
	case SequenceStoreFile, SequenceStoreLevelDB, SequenceStoreMemory:
	default:
		invalid("unknown blockSequence.store [%s]", c.BlockSequence.Store)
	}

	switch c.Metrics {
	case MetricsDisabled, MetricsPrometheus:
	default:
		invalid("unknown metrics.provider [%s]", c.Metrics)
	}

	return errs
}

// HasChannel returns true if the channel is configured.
func (c *Coordinator) HasChannel(channelID string) bool {
	for _, ch := range c.Channels {
		if ch == channelID {
			return true
		}
	}
	return false
}

// User returns the configured user with the given name.
func (c *Coordinator) User(name string) (fab.UserRef, bool) {
	for _, u := range c.Users {
		if u.Name == name {
			if u.MSPID == "" {
				u.MSPID = c.MSPID
			}
			return u, true
		}
	}
	return fab.UserRef{}, false
}

func checkUnique(values []string, kind string, invalid func(string, ...interface{})) {
	seen := make(map[string]bool, len(values))
	for i, v := range values {
		if v == "" {
			invalid("%s %d has no name", kind, i)
			continue
		}
		if seen[v] {
			invalid("duplicate %s [%s]", kind, v)
		}
		seen[v] = true
	}
}

func durationOrDefault(l *lookup.ConfigLookup, key string, def time.Duration) time.Duration {
	if d := l.GetDuration(key); d > 0 {
		return d
	}
	return def
}

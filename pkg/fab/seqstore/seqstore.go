/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package seqstore tracks, per channel, the number of the last block that was
// fully processed. Block numbers only move forward and every update is
// persisted before it becomes visible.
package seqstore

import (
	"io"
	"sort"
	"sync"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/logging"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
)

var logger = logging.NewLogger("coordinator/seqstore")

// Store is the per-channel block sequence tracker.
//
// Calls for the same channel are serialized. Calls for different channels
// only contend while a snapshot is written, and not at all when the sink
// implements fab.RecordSink.
type Store struct {
	sink       fab.SequenceSink
	recordSink fab.RecordSink

	mutex   sync.Mutex
	entries map[string]*entry

	// persistMutex serializes snapshot writes; committed is the last
	// snapshot that was saved successfully.
	persistMutex sync.Mutex
	committed    map[string]int64
}

type entry struct {
	mutex     sync.Mutex
	seq       int64
	persisted bool
}

// New loads the sink's records and returns a store backed by it.
func New(sink fab.SequenceSink) (*Store, error) {
	if sink == nil {
		return nil, status.Errorf(status.StoreStatus, status.InvalidArgument, "sequence sink is nil")
	}

	records, err := sink.Load()
	if err != nil {
		return nil, status.Wrap(err, status.StoreStatus, status.StoreIOFailed, "loading block sequence records failed")
	}

	s := &Store{
		sink:      sink,
		entries:   make(map[string]*entry, len(records)),
		committed: make(map[string]int64, len(records)),
	}
	if rs, ok := sink.(fab.RecordSink); ok {
		s.recordSink = rs
	}

	for channelID, seq := range records {
		if seq < 0 {
			return nil, status.Errorf(status.StoreStatus, status.StoreIOFailed, "stored block sequence for channel [%s] is negative: %d", channelID, seq)
		}
		s.entries[channelID] = &entry{seq: seq, persisted: true}
		s.committed[channelID] = seq
	}
	logger.Debugf("loaded block sequence records for %d channels", len(records))

	return s, nil
}

// GetCurrent returns the last processed block number of the channel. An
// unseen channel gets a zero record, which is persisted before returning.
func (s *Store) GetCurrent(channelID string) (int64, error) {
	if channelID == "" {
		return 0, status.Errorf(status.StoreStatus, status.InvalidArgument, "channel ID is empty")
	}

	e := s.entry(channelID)
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.persisted {
		if err := s.persist(channelID, e.seq); err != nil {
			return 0, err
		}
		e.persisted = true
		logger.Debugf("created block sequence record for channel [%s]", channelID)
	}
	return e.seq, nil
}

// Advance records candidate as the channel's last processed block if it is
// greater than the current value, returning true if it was. Older or equal
// candidates are ignored, so replays are harmless.
func (s *Store) Advance(channelID string, candidate int64) (bool, error) {
	if channelID == "" {
		return false, status.Errorf(status.StoreStatus, status.InvalidArgument, "channel ID is empty")
	}
	if candidate < 0 {
		return false, status.Errorf(status.StoreStatus, status.InvalidArgument, "block sequence must not be negative: %d", candidate)
	}

	e := s.entry(channelID)
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if candidate <= e.seq {
		logger.Debugf("ignoring block sequence %d for channel [%s], current is %d", candidate, channelID, e.seq)
		return false, nil
	}

	if err := s.persist(channelID, candidate); err != nil {
		return false, err
	}
	e.seq = candidate
	e.persisted = true

	return true, nil
}

// Snapshot returns a copy of all records.
func (s *Store) Snapshot() map[string]int64 {
	s.mutex.Lock()
	entries := make(map[string]*entry, len(s.entries))
	for channelID, e := range s.entries {
		entries[channelID] = e
	}
	s.mutex.Unlock()

	snapshot := make(map[string]int64, len(entries))
	for channelID, e := range entries {
		e.mutex.Lock()
		if e.persisted {
			snapshot[channelID] = e.seq
		}
		e.mutex.Unlock()
	}
	return snapshot
}

// Channels returns the IDs of all channels with a record, sorted.
func (s *Store) Channels() []string {
	snapshot := s.Snapshot()
	ids := make([]string, 0, len(snapshot))
	for channelID := range snapshot {
		ids = append(ids, channelID)
	}
	sort.Strings(ids)
	return ids
}

// Close closes the sink if it holds resources.
func (s *Store) Close() error {
	if c, ok := s.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) entry(channelID string) *entry {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, ok := s.entries[channelID]
	if !ok {
		e = &entry{}
		s.entries[channelID] = e
	}
	return e
}

// persist durably writes seq for the channel. Must be called with the
// channel's entry locked.
func (s *Store) persist(channelID string, seq int64) error {
	if s.recordSink != nil {
		if err := s.recordSink.SaveRecord(channelID, seq); err != nil {
			return status.Wrap(err, status.StoreStatus, status.StoreIOFailed, "saving block sequence record failed")
		}
		return nil
	}

	s.persistMutex.Lock()
	defer s.persistMutex.Unlock()

	snapshot := make(map[string]int64, len(s.committed)+1)
	for k, v := range s.committed {
		snapshot[k] = v
	}
	snapshot[channelID] = seq

	if err := s.sink.Save(snapshot); err != nil {
		return status.Wrap(err, status.StoreStatus, status.StoreIOFailed, "saving block sequence snapshot failed")
	}
	s.committed = snapshot
	return nil
}

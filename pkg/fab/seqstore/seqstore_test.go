/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package seqstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/test/mockfab"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const channelID = "mychannel"

func newMemoryStore(t *testing.T) (*Store, *MemorySink) {
	sink := NewMemorySink(nil)
	s, err := New(sink)
	require.NoError(t, err)
	return s, sink
}

func TestAdvanceIgnoresOlder(t *testing.T) {
	s, _ := newMemoryStore(t)

	updated, err := s.Advance(channelID, 5)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = s.Advance(channelID, 3)
	require.NoError(t, err)
	assert.False(t, updated)

	current, err := s.GetCurrent(channelID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, current)
}

func TestAdvanceReplay(t *testing.T) {
	s, sink := newMemoryStore(t)

	_, err := s.Advance(channelID, 5)
	require.NoError(t, err)
	saves := sink.Saves()

	updated, err := s.Advance(channelID, 5)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, saves, sink.Saves(), "a replay must not persist")

	current, err := s.GetCurrent(channelID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, current)
}

func TestAdvanceNegative(t *testing.T) {
	s, _ := newMemoryStore(t)

	_, err := s.Advance(channelID, -1)
	require.Error(t, err)
	assert.True(t, status.IsCode(err, status.InvalidArgument))

	_, err = s.Advance("", 1)
	assert.True(t, status.IsCode(err, status.InvalidArgument))
	_, err = s.GetCurrent("")
	assert.True(t, status.IsCode(err, status.InvalidArgument))
}

func TestGetCurrentCreatesRecord(t *testing.T) {
	s, sink := newMemoryStore(t)

	current, err := s.GetCurrent(channelID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, current)

	records, err := sink.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{channelID: 0}, records)

	// a new store over the same sink sees the record
	s2, err := New(sink)
	require.NoError(t, err)
	assert.Equal(t, []string{channelID}, s2.Channels())
	current, err = s2.GetCurrent(channelID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, current)
}

func TestSnapshotKeepsOtherChannels(t *testing.T) {
	s, sink := newMemoryStore(t)

	_, err := s.Advance("a", 3)
	require.NoError(t, err)
	_, err = s.Advance("b", 7)
	require.NoError(t, err)
	_, err = s.Advance("a", 4)
	require.NoError(t, err)

	records, err := sink.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a": 4, "b": 7}, records)
	assert.Equal(t, records, s.Snapshot())
}

func TestSaveFailure(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	sink := mockfab.NewMockSequenceSink(mockCtrl)
	sink.EXPECT().Load().Return(map[string]int64{channelID: 2}, nil)
	s, err := New(sink)
	require.NoError(t, err)

	sink.EXPECT().Save(map[string]int64{channelID: 3}).Return(errors.New("disk full"))
	updated, err := s.Advance(channelID, 3)
	require.Error(t, err)
	assert.False(t, updated)
	assert.True(t, status.IsCode(err, status.StoreIOFailed))
	assert.Contains(t, err.Error(), "disk full")

	// the failed update is not visible
	current, err := s.GetCurrent(channelID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, current)

	sink.EXPECT().Save(map[string]int64{"other": 0, channelID: 2}).Return(errors.New("disk full"))
	_, err = s.GetCurrent("other")
	assert.True(t, status.IsCode(err, status.StoreIOFailed))
}

func TestLoadFailure(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	sink := mockfab.NewMockSequenceSink(mockCtrl)
	sink.EXPECT().Load().Return(nil, errors.New("permission denied"))
	_, err := New(sink)
	assert.True(t, status.IsCode(err, status.StoreIOFailed))

	sink.EXPECT().Load().Return(map[string]int64{channelID: -4}, nil)
	_, err = New(sink)
	assert.True(t, status.IsCode(err, status.StoreIOFailed))

	_, err = New(nil)
	assert.True(t, status.IsCode(err, status.InvalidArgument))
}

func TestConcurrentAdvance(t *testing.T) {
	s, sink := newMemoryStore(t)

	var wg sync.WaitGroup
	for c := 0; c < 4; c++ {
		ch := fmt.Sprintf("channel%d", c)
		for i := 1; i <= 50; i++ {
			wg.Add(1)
			go func(seq int64) {
				defer wg.Done()
				_, err := s.Advance(ch, seq)
				assert.NoError(t, err)
			}(int64(i))
		}
	}
	wg.Wait()

	records, err := sink.Load()
	require.NoError(t, err)
	for c := 0; c < 4; c++ {
		ch := fmt.Sprintf("channel%d", c)
		current, err := s.GetCurrent(ch)
		require.NoError(t, err)
		assert.EqualValues(t, 50, current)
		assert.EqualValues(t, 50, records[ch])
	}
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package blockproc turns raw block events into structured records exactly
// once per block. Redelivered blocks are recognized through the block
// sequence store and skipped; a block is recorded as processed only after it
// has been fully decoded.
package blockproc

import (
	"context"
	"sync"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/logging"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics/disabled"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
)

var logger = logging.NewLogger("coordinator/blockproc")

// SequenceStore is the subset of the block sequence store used by the processor.
type SequenceStore interface {
	GetCurrent(channelID string) (int64, error)
	Advance(channelID string, candidate int64) (bool, error)
}

// ConsumerFunc adapts a function to fab.DownstreamConsumer.
type ConsumerFunc func(ctx context.Context, record *fab.BlockEventRecord) error

// Consume calls f(ctx, record)
func (f ConsumerFunc) Consume(ctx context.Context, record *fab.BlockEventRecord) error {
	return f(ctx, record)
}

// Processor handles block events. Events for one channel are processed one
// at a time in arrival order; different channels proceed in parallel.
type Processor struct {
	store    SequenceStore
	consumer fab.DownstreamConsumer
	metrics  *Metrics

	mutex    sync.Mutex
	channels map[string]*sync.Mutex
}

// Option configures a Processor.
type Option func(p *Processor)

// WithMetrics sets the processor instruments.
func WithMetrics(m *Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// New returns a processor that records progress in store and hands decoded
// blocks to consumer. A nil consumer only records progress.
func New(store SequenceStore, consumer fab.DownstreamConsumer, opts ...Option) *Processor {
	p := &Processor{
		store:    store,
		consumer: consumer,
		channels: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = NewMetrics(&disabled.Provider{})
	}
	return p
}

// Handle processes one block event.
//
// Malformed events fail with MalformedEvent and are not expected to be
// redelivered in a better shape. Decoding failures fail with DecodeFailed
// and leave the sequence untouched so that a redelivery is attempted again.
// A consumer failure is reported with DownstreamFailed; the block is
// already recorded as processed at that point and will not be redelivered
// to the consumer.
func (p *Processor) Handle(ctx context.Context, event *fab.BlockEvent) error {
	channelID, blockNum, err := blockHeader(event)
	if err != nil {
		logger.Warnf("dropping block event: %s", err)
		p.metrics.FailedBlocks.With("channel", "", "reason", "malformed").Add(1)
		return err
	}

	lock := p.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	last, err := p.store.GetCurrent(channelID)
	if err != nil {
		p.metrics.FailedBlocks.With("channel", channelID, "reason", "store").Add(1)
		return err
	}
	if int64(blockNum) <= last {
		logger.Infof("received duplicate block %d on channel [%s], last processed is %d", blockNum, channelID, last)
		p.metrics.DuplicateBlocks.With("channel", channelID).Add(1)
		return nil
	}
	if int64(blockNum) > last+1 {
		logger.Warnf("block %d on channel [%s] skips ahead of last processed block %d", blockNum, channelID, last)
	}

	record, err := decodeBlock(channelID, event.Block)
	if err != nil {
		logger.Errorf("block %d on channel [%s] not processed: %s", blockNum, channelID, err)
		p.metrics.FailedBlocks.With("channel", channelID, "reason", "decode").Add(1)
		return err
	}

	advanced, err := p.store.Advance(channelID, int64(blockNum))
	if err != nil {
		p.metrics.FailedBlocks.With("channel", channelID, "reason", "store").Add(1)
		return err
	}
	if !advanced {
		// only possible if the store was advanced outside of this processor
		logger.Infof("block %d on channel [%s] was already recorded", blockNum, channelID)
		p.metrics.DuplicateBlocks.With("channel", channelID).Add(1)
		return nil
	}

	p.metrics.BlocksProcessed.With("channel", channelID).Add(1)
	p.metrics.LastBlock.With("channel", channelID).Set(float64(blockNum))
	logger.Debugf("processed block %d on channel [%s] with %d transactions", blockNum, channelID, len(record.Transactions))

	if p.consumer == nil {
		return nil
	}
	if err := p.consumer.Consume(ctx, record); err != nil {
		logger.Errorf("consumer failed for block %d on channel [%s]: %s", blockNum, channelID, err)
		p.metrics.FailedBlocks.With("channel", channelID, "reason", "downstream").Add(1)
		return status.Wrap(err, status.EventClientStatus, status.DownstreamFailed, "block consumer failed")
	}
	return nil
}

// Handler returns a fab.BlockHandler bound to this processor.
func (p *Processor) Handler() fab.BlockHandler {
	return p.Handle
}

func (p *Processor) channelLock(channelID string) *sync.Mutex {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	lock, ok := p.channels[channelID]
	if !ok {
		lock = &sync.Mutex{}
		p.channels[channelID] = lock
	}
	return lock
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package blockproc

import "github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics"

var (
	blocksProcessedOpts = metrics.CounterOpts{
		Namespace:  "coordinator",
		Subsystem:  "blockproc",
		Name:       "blocks_processed",
		Help:       "The number of blocks decoded and recorded as processed.",
		LabelNames: []string{"channel"},
	}
	duplicateBlocksOpts = metrics.CounterOpts{
		Namespace:  "coordinator",
		Subsystem:  "blockproc",
		Name:       "duplicate_blocks",
		Help:       "The number of redelivered blocks that were skipped.",
		LabelNames: []string{"channel"},
	}
	failedBlocksOpts = metrics.CounterOpts{
		Namespace:  "coordinator",
		Subsystem:  "blockproc",
		Name:       "failed_blocks",
		Help:       "The number of blocks that could not be processed.",
		LabelNames: []string{"channel", "reason"},
	}
	lastBlockOpts = metrics.GaugeOpts{
		Namespace:  "coordinator",
		Subsystem:  "blockproc",
		Name:       "last_processed_block",
		Help:       "The number of the last processed block.",
		LabelNames: []string{"channel"},
	}
)

// Metrics are the block processor instruments.
type Metrics struct {
	BlocksProcessed metrics.Counter
	DuplicateBlocks metrics.Counter
	FailedBlocks    metrics.Counter
	LastBlock       metrics.Gauge
}

// NewMetrics creates the block processor instruments.
func NewMetrics(p metrics.Provider) *Metrics {
	return &Metrics{
		BlocksProcessed: p.NewCounter(blocksProcessedOpts),
		DuplicateBlocks: p.NewCounter(duplicateBlocksOpts),
		FailedBlocks:    p.NewCounter(failedBlocksOpts),
		LastBlock:       p.NewGauge(lastBlockOpts),
	}
}

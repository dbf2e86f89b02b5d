/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import "github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics"

var (
	submissionsOpts = metrics.CounterOpts{
		Namespace:  "coordinator",
		Subsystem:  "txn",
		Name:       "submissions",
		Help:       "The number of transaction submissions received.",
		LabelNames: []string{"channel"},
	}
	failedSubmissionsOpts = metrics.CounterOpts{
		Namespace:  "coordinator",
		Subsystem:  "txn",
		Name:       "failed_submissions",
		Help:       "The number of transaction submissions that failed.",
		LabelNames: []string{"channel", "reason"},
	}
	proposalRetriesOpts = metrics.CounterOpts{
		Namespace:  "coordinator",
		Subsystem:  "txn",
		Name:       "proposal_retries",
		Help:       "The number of proposals retried after a session restart.",
		LabelNames: []string{"channel"},
	}
	submissionDurationOpts = metrics.HistogramOpts{
		Namespace:  "coordinator",
		Subsystem:  "txn",
		Name:       "submission_duration",
		Help:       "The time taken to endorse and order a transaction in seconds.",
		LabelNames: []string{"channel"},
		Buckets:    []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}
	queriesOpts = metrics.CounterOpts{
		Namespace:  "coordinator",
		Subsystem:  "txn",
		Name:       "queries",
		Help:       "The number of chaincode queries.",
		LabelNames: []string{"channel", "result"},
	}
)

// Metrics are the transaction client instruments.
type Metrics struct {
	Submissions        metrics.Counter
	FailedSubmissions  metrics.Counter
	ProposalRetries    metrics.Counter
	SubmissionDuration metrics.Histogram
	Queries            metrics.Counter
}

// NewMetrics creates the transaction client instruments.
func NewMetrics(p metrics.Provider) *Metrics {
	return &Metrics{
		Submissions:        p.NewCounter(submissionsOpts),
		FailedSubmissions:  p.NewCounter(failedSubmissionsOpts),
		ProposalRetries:    p.NewCounter(proposalRetriesOpts),
		SubmissionDuration: p.NewHistogram(submissionDurationOpts),
		Queries:            p.NewCounter(queriesOpts),
	}
}

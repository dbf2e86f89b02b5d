/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package retry

import (
	"time"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger/fabric-protos-go/common"
	grpcCodes "google.golang.org/grpc/codes"
)

const (
	// DefaultAttempts number of retries made after the first proposal attempt,
	// giving three proposal attempts in total
	DefaultAttempts = 2
	// DefaultInitialBackoff default initial backoff
	DefaultInitialBackoff = 500 * time.Millisecond
	// DefaultMaxBackoff default maximum backoff
	DefaultMaxBackoff = 10 * time.Second
	// DefaultBackoffFactor default backoff factor
	DefaultBackoffFactor = 2.0
)

// DefaultOpts default retry options for proposal collection
var DefaultOpts = Opts{
	Attempts:          DefaultAttempts,
	InitialBackoff:    DefaultInitialBackoff,
	MaxBackoff:        DefaultMaxBackoff,
	BackoffFactor:     DefaultBackoffFactor,
	RetryableCodes:    DefaultRetryableCodes,
	RetryUnclassified: true,
}

// DefaultRetryableCodes these are the error codes, grouped by source of error,
// that are considered to be transient error conditions by default.
// Transport failures and invalid-argument rejections raised while sending a
// proposal are recovered by restarting the channel session.
var DefaultRetryableCodes = map[status.Group][]status.Code{
	status.EndorserClientStatus: {
		status.TransportFailed,
		status.InvalidArgument,
		status.Timeout,
	},
	status.EndorserServerStatus: {
		status.Code(common.Status_SERVICE_UNAVAILABLE),
		status.Code(common.Status_INTERNAL_SERVER_ERROR),
	},
	status.ClientStatus: {
		status.Timeout,
		status.TransportFailed,
	},
	status.GRPCTransportStatus: {
		status.Code(grpcCodes.Unavailable),
		status.Code(grpcCodes.DeadlineExceeded),
		status.Code(grpcCodes.InvalidArgument),
		status.Code(grpcCodes.ResourceExhausted),
	},
}

// TestRetryableCodes are used by tests to determine error situations that can be retried.
var TestRetryableCodes = map[status.Group][]status.Code{
	status.TestStatus: {
		status.GenericTransient,
	},
}

// TestRetryOpts are used by tests to determine retry parameters.
var TestRetryOpts = Opts{
	Attempts:       DefaultAttempts,
	InitialBackoff: time.Millisecond,
	MaxBackoff:     5 * time.Millisecond,
	BackoffFactor:  2,
	RetryableCodes: TestRetryableCodes,
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import (
	"time"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/retry"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
	"github.com/pkg/errors"
)

// Request contains the parameters of a transaction submission or query
type Request struct {
	ChannelID string
	User      string
	// ChaincodeID defaults to the first chaincode discovered on the channel
	ChaincodeID  string
	Fcn          string
	Args         [][]byte
	TransientMap map[string][]byte
}

// Response contains the result of a successful submission or query
type Response struct {
	ChannelID   string
	ChaincodeID string
	// Payload is the chaincode response payload of the first successful endorsement
	Payload []byte
	// Responses are the endorsements that were sent to the orderers
	Responses []*fab.EndorsementResponse
	// Attempts is the number of proposal attempts made
	Attempts          int
	SessionGeneration uint64
}

// opts allows the user to specify more advanced options
type requestOptions struct {
	Timeout time.Duration
	Retry   *retry.Opts
}

// RequestOption func for each Opts argument
type RequestOption func(opts *requestOptions) error

// WithTimeout overrides the proposal (or query) timeout of a single request
func WithTimeout(timeout time.Duration) RequestOption {
	return func(o *requestOptions) error {
		if timeout <= 0 {
			return errors.New("timeout must be positive")
		}
		o.Timeout = timeout
		return nil
	}
}

// WithRetry overrides the proposal retry options of a single request.
// RetryUnclassified is inherited from the client when the client enables it,
// so errors without a status stay retryable for the request.
func WithRetry(opts retry.Opts) RequestOption {
	return func(o *requestOptions) error {
		if opts.Attempts < 0 {
			return errors.New("retry attempts must not be negative")
		}
		o.Retry = &opts
		return nil
	}
}

// Disposition tells the caller how far a submission got
type Disposition int

const (
	// NotSent the transaction was never proposed successfully (validation,
	// discovery or transport failure)
	NotSent Disposition = iota
	// Rejected the endorsers did not satisfy the endorsement policy
	Rejected
	// OrderingFailed the endorsed transaction could not be handed to the orderers
	OrderingFailed
	// Ordered the transaction was accepted by the orderers; commitment is
	// observed through block events
	Ordered
)

var dispositionName = map[Disposition]string{
	NotSent:        "NOT_SENT",
	Rejected:       "REJECTED",
	OrderingFailed: "ORDERING_FAILED",
	Ordered:        "ORDERED",
}

func (d Disposition) String() string {
	if s, ok := dispositionName[d]; ok {
		return s
	}
	return "UNKNOWN"
}

// DispositionOf classifies the error returned by Submit
func DispositionOf(err error) Disposition {
	if err == nil {
		return Ordered
	}
	s, ok := status.FromError(err)
	if !ok || s.Group == status.GRPCTransportStatus {
		return NotSent
	}
	switch status.Code(s.Code) {
	case status.EndorsementFailed, status.InsufficientEndorsements:
		return Rejected
	case status.OrderSubmissionFailed:
		return OrderingFailed
	default:
		return NotSent
	}
}

// FailedResponses returns the endorsement responses that caused an
// EndorsementFailed error
func FailedResponses(err error) []*fab.EndorsementResponse {
	s, ok := status.FromError(err)
	if !ok || status.Code(s.Code) != status.EndorsementFailed {
		return nil
	}
	var responses []*fab.EndorsementResponse
	for _, d := range s.Details {
		if r, ok := d.(*fab.EndorsementResponse); ok {
			responses = append(responses, r)
		}
	}
	return responses
}

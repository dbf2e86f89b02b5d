/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package policy decides whether a set of endorsement responses satisfies a
// chaincode's endorsement policy.
//
// Every Policy classifies each response by its status code: [200,400) is
// successful, [400,∞) is failed and anything below 200 is ignored, i.e. it is
// counted in the total but placed in neither set. Policies are stateless and
// may be shared by concurrent transactions.
package policy

import (
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
)

const (
	minSuccessStatus = 200
	minFailureStatus = 400
)

// Policy evaluates endorsement responses for a single proposal.
type Policy interface {
	// Evaluate classifies the responses and decides whether the policy is met.
	// An empty response set is rejected with an InvalidArgument status.
	Evaluate(responses []*fab.EndorsementResponse) (*Outcome, error)
}

// Outcome is the result of a single evaluation.
type Outcome struct {
	Met        bool
	Successful []*fab.EndorsementResponse
	Failed     []*fab.EndorsementResponse
	// Ignored holds responses with a status below 200
	Ignored []*fab.EndorsementResponse
}

// Total returns the number of evaluated responses.
func (o *Outcome) Total() int {
	return len(o.Successful) + len(o.Failed) + len(o.Ignored)
}

// Quorum returns floor(n/2)+1.
func Quorum(n int) int {
	return n/2 + 1
}

// classify splits responses into an Outcome with Met unset.
func classify(responses []*fab.EndorsementResponse) (*Outcome, error) {
	if len(responses) == 0 {
		return nil, status.Errorf(status.EndorserClientStatus, status.InvalidArgument, "no endorsement responses to evaluate")
	}

	outcome := &Outcome{}
	for _, r := range responses {
		if r == nil {
			return nil, status.Errorf(status.EndorserClientStatus, status.InvalidArgument, "nil endorsement response")
		}
		switch {
		case r.StatusCode >= minFailureStatus:
			outcome.Failed = append(outcome.Failed, r)
		case r.StatusCode >= minSuccessStatus:
			outcome.Successful = append(outcome.Successful, r)
		default:
			outcome.Ignored = append(outcome.Ignored, r)
		}
	}
	return outcome, nil
}

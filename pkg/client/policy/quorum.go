/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import "github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"

const (
	// QuorumPolicy is met by a simple majority of all responses
	QuorumPolicy = "quorum"
	// AllPolicy is met only when every response is successful
	AllPolicy = "all"
)

type quorum struct{}

// NewQuorum returns the majority policy: met when the number of successful
// responses is at least floor(total/2)+1. Ignored responses count toward
// the total.
func NewQuorum() Policy {
	return &quorum{}
}

func (p *quorum) Evaluate(responses []*fab.EndorsementResponse) (*Outcome, error) {
	outcome, err := classify(responses)
	if err != nil {
		return nil, err
	}
	outcome.Met = len(outcome.Successful) >= Quorum(len(responses))
	return outcome, nil
}

type unanimous struct{}

// NewUnanimous returns a policy that is met only if every response is successful.
func NewUnanimous() Policy {
	return &unanimous{}
}

func (p *unanimous) Evaluate(responses []*fab.EndorsementResponse) (*Outcome, error) {
	outcome, err := classify(responses)
	if err != nil {
		return nil, err
	}
	outcome.Met = len(outcome.Successful) == len(responses)
	return outcome, nil
}

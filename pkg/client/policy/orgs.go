/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
)

// OrgsPolicy requires a successful endorsement from each named organization
const OrgsPolicy = "orgs"

type orgs struct {
	mspIDs []string
}

// NewOrgs returns a policy that is met when every given MSP has at least one
// successful response.
func NewOrgs(mspIDs ...string) (Policy, error) {
	if len(mspIDs) == 0 {
		return nil, status.Errorf(status.ClientStatus, status.ValidationFailed, "policy %s requires at least one MSP ID", OrgsPolicy)
	}
	return &orgs{mspIDs: append([]string(nil), mspIDs...)}, nil
}

func (p *orgs) Evaluate(responses []*fab.EndorsementResponse) (*Outcome, error) {
	outcome, err := classify(responses)
	if err != nil {
		return nil, err
	}

	endorsed := make(map[string]bool)
	for _, r := range outcome.Successful {
		endorsed[r.MSPID] = true
	}

	outcome.Met = true
	for _, mspID := range p.mspIDs {
		if !endorsed[mspID] {
			logger.Debugf("no successful endorsement from %s", mspID)
			outcome.Met = false
		}
	}
	return outcome, nil
}

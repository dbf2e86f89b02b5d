/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"testing"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/multi"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/test/mockfab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{AllPolicy, ExpressionPolicy, OrgsPolicy, QuorumPolicy}, r.Names())

	p, err := r.New(QuorumPolicy, nil)
	require.NoError(t, err)
	assert.IsType(t, &quorum{}, p)

	p, err = r.New(OrgsPolicy, Params{"mspIDs": []interface{}{"Org1MSP", "Org2MSP"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Org1MSP", "Org2MSP"}, p.(*orgs).mspIDs)

	_, err = r.New(ExpressionPolicy, Params{"expression": "total > 0"})
	require.NoError(t, err)

	_, err = r.New("majority-of-orgs", nil)
	assert.True(t, status.IsCode(err, status.UnknownPolicy))
}

type fixedPolicy bool

func (f fixedPolicy) Evaluate(responses []*fab.EndorsementResponse) (*Outcome, error) {
	outcome, err := classify(responses)
	if err != nil {
		return nil, err
	}
	outcome.Met = bool(f)
	return outcome, nil
}

func TestRegistryCustom(t *testing.T) {
	r := NewRegistry()
	r.Register("never", func(Params) (Policy, error) { return fixedPolicy(false), nil })

	p, err := r.New("never", nil)
	require.NoError(t, err)
	outcome, err := p.Evaluate(mockfab.NewResponses(200, 200))
	require.NoError(t, err)
	assert.False(t, outcome.Met)
}

func TestResolver(t *testing.T) {
	resolver, err := NewResolver(NewRegistry(), []Binding{
		{ChaincodeID: "marbles", Policy: QuorumPolicy},
		{ChaincodeID: "assets", Policy: AllPolicy},
	})
	require.NoError(t, err)

	p, ok := resolver.Resolve("marbles")
	require.True(t, ok)
	assert.IsType(t, &quorum{}, p)

	_, ok = resolver.Resolve("unknown")
	assert.False(t, ok)
}

func TestResolverReportsAllFailures(t *testing.T) {
	_, err := NewResolver(NewRegistry(), []Binding{
		{ChaincodeID: "a", Policy: "bogus"},
		{ChaincodeID: "b", Policy: QuorumPolicy},
		{ChaincodeID: "c", Policy: OrgsPolicy},
	})
	require.Error(t, err)

	errs, ok := err.(multi.Errors)
	require.True(t, ok)
	assert.Len(t, errs, 2)
	assert.Contains(t, err.Error(), "chaincode a")
	assert.Contains(t, err.Error(), "chaincode c")
}

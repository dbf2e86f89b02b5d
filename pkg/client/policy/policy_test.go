/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"testing"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/test/mockfab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuorumMet(t *testing.T) {
	responses := mockfab.NewResponses(200, 200, 200, 404)

	outcome, err := NewQuorum().Evaluate(responses)
	require.NoError(t, err)
	assert.True(t, outcome.Met)
	assert.Len(t, outcome.Successful, 3)
	assert.Equal(t, []*fab.EndorsementResponse{responses[3]}, outcome.Failed)
}

func TestQuorumNotMet(t *testing.T) {
	responses := mockfab.NewResponses(200, 404, 404, 404)

	outcome, err := NewQuorum().Evaluate(responses)
	require.NoError(t, err)
	assert.False(t, outcome.Met)
	assert.Equal(t, []*fab.EndorsementResponse{responses[0]}, outcome.Successful)
	assert.Equal(t, responses[1:], outcome.Failed)
}

func TestLowStatusIgnored(t *testing.T) {
	responses := mockfab.NewResponses(150, 200, 200)

	outcome, err := NewQuorum().Evaluate(responses)
	require.NoError(t, err)
	assert.True(t, outcome.Met, "2 successful responses meet a quorum of 2 out of 3")
	assert.NotContains(t, outcome.Successful, responses[0])
	assert.NotContains(t, outcome.Failed, responses[0])
	assert.Equal(t, []*fab.EndorsementResponse{responses[0]}, outcome.Ignored)
	assert.Equal(t, 3, outcome.Total())

	// ignored responses still count toward the total
	outcome, err = NewQuorum().Evaluate(mockfab.NewResponses(100, 100, 200))
	require.NoError(t, err)
	assert.False(t, outcome.Met)
	assert.Empty(t, outcome.Failed)
}

func TestClassificationBoundaries(t *testing.T) {
	responses := mockfab.NewResponses(199, 200, 399, 400, 500)

	outcome, err := NewQuorum().Evaluate(responses)
	require.NoError(t, err)
	assert.Equal(t, []*fab.EndorsementResponse{responses[1], responses[2]}, outcome.Successful)
	assert.Equal(t, []*fab.EndorsementResponse{responses[3], responses[4]}, outcome.Failed)
	assert.Equal(t, []*fab.EndorsementResponse{responses[0]}, outcome.Ignored)
}

func TestNeverInBothSets(t *testing.T) {
	statuses := []int32{0, 100, 150, 199, 200, 201, 302, 399, 400, 404, 500, 503}
	policies := []Policy{NewQuorum(), NewUnanimous()}
	for _, p := range policies {
		outcome, err := p.Evaluate(mockfab.NewResponses(statuses...))
		require.NoError(t, err)
		for _, s := range outcome.Successful {
			assert.NotContains(t, outcome.Failed, s)
		}
		assert.Equal(t, len(statuses), outcome.Total())
	}
}

func TestEmptyResponses(t *testing.T) {
	_, err := NewQuorum().Evaluate(nil)
	require.Error(t, err)
	assert.True(t, status.IsCode(err, status.InvalidArgument))

	_, err = NewUnanimous().Evaluate([]*fab.EndorsementResponse{})
	assert.True(t, status.IsCode(err, status.InvalidArgument))

	_, err = NewQuorum().Evaluate([]*fab.EndorsementResponse{nil})
	assert.True(t, status.IsCode(err, status.InvalidArgument))
}

func TestEvaluateIsStateless(t *testing.T) {
	p := NewQuorum()

	first, err := p.Evaluate(mockfab.NewResponses(404, 404, 404))
	require.NoError(t, err)
	second, err := p.Evaluate(mockfab.NewResponses(200))
	require.NoError(t, err)

	assert.False(t, first.Met)
	assert.True(t, second.Met)
	assert.Empty(t, second.Failed)
}

func TestUnanimous(t *testing.T) {
	outcome, err := NewUnanimous().Evaluate(mockfab.NewResponses(200, 201, 200))
	require.NoError(t, err)
	assert.True(t, outcome.Met)

	outcome, err = NewUnanimous().Evaluate(mockfab.NewResponses(200, 200, 150))
	require.NoError(t, err)
	assert.False(t, outcome.Met)
	assert.Empty(t, outcome.Failed)
}

func TestOrgs(t *testing.T) {
	responses := mockfab.NewResponses(200, 500, 200)

	p, err := NewOrgs("Org1MSP", "Org3MSP")
	require.NoError(t, err)
	outcome, err := p.Evaluate(responses)
	require.NoError(t, err)
	assert.True(t, outcome.Met)

	p, err = NewOrgs("Org1MSP", "Org2MSP")
	require.NoError(t, err)
	outcome, err = p.Evaluate(responses)
	require.NoError(t, err)
	assert.False(t, outcome.Met)
	assert.Equal(t, []*fab.EndorsementResponse{responses[1]}, outcome.Failed)

	_, err = NewOrgs()
	assert.True(t, status.IsCode(err, status.ValidationFailed))
}

func TestExpression(t *testing.T) {
	p, err := NewExpression("successful >= 2 && failed == 0")
	require.NoError(t, err)

	outcome, err := p.Evaluate(mockfab.NewResponses(200, 200, 150))
	require.NoError(t, err)
	assert.True(t, outcome.Met)

	outcome, err = p.Evaluate(mockfab.NewResponses(200, 200, 200, 404))
	require.NoError(t, err)
	assert.False(t, outcome.Met)

	p, err = NewExpression("successful >= quorum")
	require.NoError(t, err)
	outcome, err = p.Evaluate(mockfab.NewResponses(200, 200, 200, 404))
	require.NoError(t, err)
	assert.True(t, outcome.Met)
}

func TestExpressionValidation(t *testing.T) {
	_, err := NewExpression("successful >=")
	assert.True(t, status.IsCode(err, status.ValidationFailed))

	_, err = NewExpression("endorsers > 1")
	assert.True(t, status.IsCode(err, status.ValidationFailed))

	p, err := NewExpression("successful + 1")
	require.NoError(t, err)
	_, err = p.Evaluate(mockfab.NewResponses(200))
	assert.True(t, status.IsCode(err, status.InvalidArgument))
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"github.com/Knetic/govaluate"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
)

// ExpressionPolicy evaluates a boolean expression over the response counts
const ExpressionPolicy = "expression"

// Variables available to an expression.
const (
	varSuccessful = "successful"
	varFailed     = "failed"
	varIgnored    = "ignored"
	varTotal      = "total"
	varQuorum     = "quorum"
)

type expression struct {
	source string
	expr   *govaluate.EvaluableExpression
}

// NewExpression compiles a boolean expression such as
// "successful >= 2 && failed == 0". The expression may reference
// successful, failed, ignored, total and quorum.
func NewExpression(source string) (Policy, error) {
	expr, err := govaluate.NewEvaluableExpression(source)
	if err != nil {
		return nil, status.Wrap(err, status.ClientStatus, status.ValidationFailed, "invalid policy expression")
	}
	for _, v := range expr.Vars() {
		switch v {
		case varSuccessful, varFailed, varIgnored, varTotal, varQuorum:
		default:
			return nil, status.Errorf(status.ClientStatus, status.ValidationFailed, "unknown variable %q in policy expression %q", v, source)
		}
	}
	return &expression{source: source, expr: expr}, nil
}

func (p *expression) Evaluate(responses []*fab.EndorsementResponse) (*Outcome, error) {
	outcome, err := classify(responses)
	if err != nil {
		return nil, err
	}

	result, err := p.expr.Evaluate(map[string]interface{}{
		varSuccessful: float64(len(outcome.Successful)),
		varFailed:     float64(len(outcome.Failed)),
		varIgnored:    float64(len(outcome.Ignored)),
		varTotal:      float64(len(responses)),
		varQuorum:     float64(Quorum(len(responses))),
	})
	if err != nil {
		return nil, status.Wrap(err, status.EndorserClientStatus, status.InvalidArgument, "policy expression evaluation failed")
	}

	met, ok := result.(bool)
	if !ok {
		return nil, status.Errorf(status.EndorserClientStatus, status.InvalidArgument, "policy expression %q returned %T, expected bool", p.source, result)
	}
	outcome.Met = met
	return outcome, nil
}

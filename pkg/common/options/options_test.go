/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutParams struct {
	timeout int
}

func (p *timeoutParams) SetTimeout(value int) {
	p.timeout = value
}

type otherParams struct{}

type timeoutSetter interface {
	SetTimeout(value int)
}

func withTimeout(value int) Opt {
	return func(p Params) {
		if setter, ok := p.(timeoutSetter); ok {
			setter.SetTimeout(value)
		}
	}
}

func TestApply(t *testing.T) {
	p := &timeoutParams{}
	Apply(p, []Opt{withTimeout(1), nil, withTimeout(5)})
	assert.Equal(t, 5, p.timeout)

	// options for other parameter sets are ignored
	assert.NotPanics(t, func() { Apply(&otherParams{}, []Opt{withTimeout(1)}) })
}

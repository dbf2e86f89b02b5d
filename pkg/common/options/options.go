/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package options implements functional options that are shared between
// components. An option only takes effect on parameter sets that implement
// the setter it looks for, so one option list can be handed to several
// components (e.g. the session manager and the transaction client) and each
// picks out what applies to it.
package options

// Params is the parameter set an Opt is applied to
type Params interface{}

// Opt is an option that is applied to Params
type Opt func(opts Params)

// Apply applies opts to params in order; later options win
func Apply(params Params, opts []Opt) {
	for _, opt := range opts {
		if opt != nil {
			opt(params)
		}
	}
}

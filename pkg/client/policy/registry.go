/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"sort"
	"sync"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/multi"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/logging"
	"github.com/spf13/cast"
)

var logger = logging.NewLogger("coordinator/policy")

// Params are the policy parameters configured for a chaincode.
type Params map[string]interface{}

// Constructor creates a policy from its parameters.
type Constructor func(params Params) (Policy, error)

// Registry maps policy names to constructors.
type Registry struct {
	mutex        sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns a registry holding the built-in policies:
// quorum, all, orgs (param "mspIDs") and expression (param "expression").
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.Register(QuorumPolicy, func(Params) (Policy, error) { return NewQuorum(), nil })
	r.Register(AllPolicy, func(Params) (Policy, error) { return NewUnanimous(), nil })
	r.Register(OrgsPolicy, func(params Params) (Policy, error) {
		mspIDs, err := cast.ToStringSliceE(params["mspIDs"])
		if err != nil {
			return nil, status.Wrap(err, status.ClientStatus, status.ValidationFailed, "invalid mspIDs parameter")
		}
		return NewOrgs(mspIDs...)
	})
	r.Register(ExpressionPolicy, func(params Params) (Policy, error) {
		return NewExpression(cast.ToString(params["expression"]))
	})
	return r
}

// Register adds or replaces the constructor for name.
func (r *Registry) Register(name string, c Constructor) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.constructors[name] = c
}

// Names returns the registered policy names, sorted.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the named policy. Unknown names fail with UnknownPolicy.
func (r *Registry) New(name string, params Params) (Policy, error) {
	r.mutex.RLock()
	c, ok := r.constructors[name]
	r.mutex.RUnlock()

	if !ok {
		return nil, status.Errorf(status.ClientStatus, status.UnknownPolicy, "unknown endorsement policy %q (registered: %v)", name, r.Names())
	}
	return c(params)
}

// Binding associates a chaincode with a configured policy.
type Binding struct {
	ChaincodeID string
	Policy      string
	Params      Params
}

// Resolver returns the policy bound to a chaincode. It is built once, when
// configuration is loaded, so that misconfigured policies fail early.
type Resolver struct {
	policies map[string]Policy
}

// NewResolver instantiates the policy of every binding. All failures are
// reported together.
func NewResolver(r *Registry, bindings []Binding) (*Resolver, error) {
	resolver := &Resolver{policies: make(map[string]Policy, len(bindings))}

	var errs error
	for _, b := range bindings {
		p, err := r.New(b.Policy, b.Params)
		if err != nil {
			errs = multi.Append(errs, status.Wrap(err, status.ClientStatus, status.ValidationFailed, "chaincode "+b.ChaincodeID))
			continue
		}
		logger.Debugf("chaincode %s uses endorsement policy %s", b.ChaincodeID, b.Policy)
		resolver.policies[b.ChaincodeID] = p
	}
	if errs != nil {
		return nil, errs
	}
	return resolver, nil
}

// Resolve returns the policy for the chaincode, or false if none is configured.
func (r *Resolver) Resolve(ccID string) (Policy, bool) {
	p, ok := r.policies[ccID]
	return p, ok
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package status defines metadata for errors returned by the coordinator.
// Callers use the group and code to tell apart a request that was never sent,
// one that was rejected by endorsers and one that failed at the ordering service.
package status

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/multi"
	grpcstatus "google.golang.org/grpc/status"
)

// Status provides additional information about an unsuccessful operation.
type Status struct {
	// Group status group
	Group Group
	// Code status code
	Code int32
	// Message status message
	Message string
	// Details any additional status details
	Details []interface{}
}

// Group of status to help users infer status codes from various components
type Group int32

const (
	// UnknownStatus unknown status group
	UnknownStatus Group = iota

	// GRPCTransportStatus is the status associated with requests made over
	// gRPC connections
	GRPCTransportStatus

	// EndorserServerStatus status returned by an endorsing peer
	EndorserServerStatus

	// EndorserClientStatus status inferred while collecting and evaluating endorsements
	EndorserClientStatus

	// OrdererClientStatus status inferred while submitting to the ordering service
	OrdererClientStatus

	// DiscoveryStatus status inferred while establishing channel sessions
	DiscoveryStatus

	// EventClientStatus status inferred while processing block events
	EventClientStatus

	// StoreStatus status returned by the block sequence store
	StoreStatus

	// ClientStatus is a generic client status
	ClientStatus

	// TestStatus is used by tests to create retry codes.
	TestStatus
)

// GroupName maps the groups in this packages to human-readable strings
var GroupName = map[int32]string{
	0: "Unknown",
	1: "gRPC Transport Status",
	2: "Endorser Server Status",
	3: "Endorser Client Status",
	4: "Orderer Client Status",
	5: "Discovery Status",
	6: "Event Client Status",
	7: "Store Status",
	8: "Client Status",
	9: "Test status",
}

func (g Group) String() string {
	if s, ok := GroupName[int32(g)]; ok {
		return s
	}
	return UnknownStatus.String()
}

// FromError returns a Status representing err if available,
// otherwise it returns nil, false.
func FromError(err error) (s *Status, ok bool) {
	if err == nil {
		return &Status{Code: int32(OK)}, true
	}
	if s, ok := err.(*Status); ok {
		return s, true
	}
	unwrappedErr := errors.Cause(err)
	if s, ok := unwrappedErr.(*Status); ok {
		return s, true
	}
	if unwrappedErr == context.DeadlineExceeded {
		return New(ClientStatus, Timeout.ToInt32(), err.Error(), nil), true
	}
	if unwrappedErr == context.Canceled {
		return New(ClientStatus, Cancelled.ToInt32(), err.Error(), nil), true
	}
	if gs, ok := grpcstatus.FromError(unwrappedErr); ok {
		return NewFromGRPCStatus(gs), true
	}
	if m, ok := unwrappedErr.(multi.Errors); ok {
		// Return all of the errors in the details
		var errs []interface{}
		for _, err := range m {
			errs = append(errs, err)
		}
		return New(ClientStatus, MultipleErrors.ToInt32(), m.Error(), errs), true
	}

	return nil, false
}

// IsCode returns true if err carries a status with the given code,
// regardless of the group.
func IsCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	s, ok := FromError(err)
	return ok && s.Code == code.ToInt32() && s.Group != GRPCTransportStatus
}

func (s *Status) Error() string {
	return fmt.Sprintf("%s Code: (%d) %s. Description: %s", s.Group.String(), s.Code, s.codeString(), s.Message)
}

func (s *Status) codeString() string {
	switch s.Group {
	case GRPCTransportStatus:
		return ToGRPCStatusCode(s.Code).String()
	case EndorserServerStatus:
		return ToFabricCommonStatusCode(s.Code).String()
	case EndorserClientStatus, OrdererClientStatus, DiscoveryStatus, EventClientStatus, StoreStatus, ClientStatus, TestStatus:
		return ToSDKStatusCode(s.Code).String()
	default:
		return Unknown.String()
	}
}

// New returns a Status with the given parameters
func New(group Group, code int32, msg string, details []interface{}) *Status {
	return &Status{Group: group, Code: code, Message: msg, Details: details}
}

// Errorf returns a Status whose message is built from format and args
func Errorf(group Group, code Code, format string, args ...interface{}) *Status {
	return New(group, code.ToInt32(), fmt.Sprintf(format, args...), nil)
}

// Wrap returns a Status carrying err as its only detail.
func Wrap(err error, group Group, code Code, msg string) *Status {
	if err == nil {
		return New(group, code.ToInt32(), msg, nil)
	}
	return New(group, code.ToInt32(), fmt.Sprintf("%s: %s", msg, err), []interface{}{err})
}

// NewFromGRPCStatus new Status from gRPC status response
func NewFromGRPCStatus(s *grpcstatus.Status) *Status {
	if s == nil {
		return nil
	}
	details := make([]interface{}, len(s.Proto().Details))
	for i, detail := range s.Proto().Details {
		details[i] = detail
	}

	return &Status{Group: GRPCTransportStatus, Code: s.Proto().Code,
		Message: s.Message(), Details: details}
}

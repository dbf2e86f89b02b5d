/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package status

import (
	"strconv"

	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	grpcCodes "google.golang.org/grpc/codes"
)

// Code represents a status code
type Code uint32

const (
	// OK is returned on success.
	OK Code = 0

	// Unknown represents status codes that are uncategorized or unknown
	Unknown Code = 1

	// ValidationFailed is returned when caller input is missing or cannot be resolved
	// (unknown channel, unknown user, unknown chaincode). Never retried.
	ValidationFailed Code = 2

	// InvalidArgument is returned when an argument is out of range (e.g. a negative sequence number)
	InvalidArgument Code = 3

	// DiscoveryFailed is returned when no discovery peer yields a usable channel session
	DiscoveryFailed Code = 4

	// InfrastructureFailed is returned when a channel session could not be re-established
	InfrastructureFailed Code = 5

	// EndorsementFailed is returned when endorsers rejected the proposal (failed responses available)
	EndorsementFailed Code = 6

	// InsufficientEndorsements is returned when too few responses were received to satisfy the policy
	InsufficientEndorsements Code = 7

	// MaxRetriesExceeded is returned when proposal attempts are exhausted
	MaxRetriesExceeded Code = 8

	// OrderSubmissionFailed is returned when the ordering service did not accept the transaction
	OrderSubmissionFailed Code = 9

	// MalformedEvent is returned when a block event cannot be framed (channel id or number missing)
	MalformedEvent Code = 10

	// DecodeFailed is returned when a block could not be fully decoded
	DecodeFailed Code = 11

	// StoreIOFailed is returned when durable storage could not be read or written
	StoreIOFailed Code = 12

	// TransportFailed is returned by the network gateway for connection level failures
	TransportFailed Code = 13

	// Timeout operation timed out
	Timeout Code = 14

	// Cancelled operation was cancelled by the caller
	Cancelled Code = 15

	// QueryFailed is returned when no peer produced a valid query response
	QueryFailed Code = 16

	// DownstreamFailed is returned when the downstream consumer rejected a block record
	DownstreamFailed Code = 17

	// UnknownPolicy is returned when an endorsement policy name is not registered
	UnknownPolicy Code = 18

	// MultipleErrors multiple errors occurred
	MultipleErrors Code = 19

	// GenericTransient is generally used by tests to indicate that a retry is possible
	GenericTransient Code = 20
)

// CodeName maps the codes in this packages to human-readable strings
var CodeName = map[int32]string{
	0:  "OK",
	1:  "UNKNOWN",
	2:  "VALIDATION_FAILED",
	3:  "INVALID_ARGUMENT",
	4:  "DISCOVERY_FAILED",
	5:  "INFRASTRUCTURE_FAILED",
	6:  "ENDORSEMENT_FAILED",
	7:  "INSUFFICIENT_ENDORSEMENTS",
	8:  "MAX_RETRIES_EXCEEDED",
	9:  "ORDER_SUBMISSION_FAILED",
	10: "MALFORMED_EVENT",
	11: "DECODE_FAILED",
	12: "STORE_IO_FAILED",
	13: "TRANSPORT_FAILED",
	14: "TIMEOUT",
	15: "CANCELLED",
	16: "QUERY_FAILED",
	17: "DOWNSTREAM_FAILED",
	18: "UNKNOWN_POLICY",
	19: "MULTIPLE_ERRORS",
	20: "GENERIC_TRANSIENT",
}

// ToInt32 cast to int32
func (c Code) ToInt32() int32 {
	return int32(c)
}

// String representation of the code
func (c Code) String() string {
	if s, ok := CodeName[c.ToInt32()]; ok {
		return s
	}
	return strconv.Itoa(int(c))
}

// ToSDKStatusCode cast to status code
func ToSDKStatusCode(c int32) Code {
	return Code(c)
}

// ToGRPCStatusCode cast to gRPC status code
func ToGRPCStatusCode(c int32) grpcCodes.Code {
	return grpcCodes.Code(c)
}

// ToFabricCommonStatusCode cast to common.Status
func ToFabricCommonStatusCode(c int32) common.Status {
	return common.Status(c)
}

// ToTransactionValidationCode cast to transaction validation status code
func ToTransactionValidationCode(c int32) pb.TxValidationCode {
	return pb.TxValidationCode(c)
}

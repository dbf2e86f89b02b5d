/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fab

// PeerRef identifies an endorsing or discovery peer.
type PeerRef struct {
	ID    string `mapstructure:"id"`
	URL   string `mapstructure:"url"`
	MSPID string `mapstructure:"mspID"`
}

// String returns the peer ID, or its URL if no ID is set
func (p PeerRef) String() string {
	if p.ID != "" {
		return p.ID
	}
	return p.URL
}

// EndorsementResponse is a single peer's answer to a transaction proposal.
// It is produced by the Gateway and treated as immutable afterwards.
type EndorsementResponse struct {
	// ResponderID identifies the peer that produced the response
	ResponderID string
	// MSPID is the organization of the responding peer
	MSPID string
	// StatusCode is the chaincode response status (200 for success)
	StatusCode int32
	// Payload is the chaincode response payload
	Payload []byte
	// Verified reports whether the endorsement signature was verified
	Verified bool
}

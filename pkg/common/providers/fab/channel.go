/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fab

import "sort"

// ChannelSession holds what was discovered about a channel: who can endorse,
// who orders, and which chaincodes and private collections are visible.
// Sessions are replaced wholesale on restart, never patched.
type ChannelSession struct {
	ChannelID      string
	EndorsingPeers []PeerRef
	Orderers       []OrdererRef
	// ChaincodeIDs lists the discovered chaincodes
	ChaincodeIDs []string
	// PrivateCollections maps a chaincode ID to its collection names
	PrivateCollections map[string][]string

	// DiscoveredFrom is the discovery peer that produced the session
	DiscoveredFrom PeerRef
	// StartBlock is the block number the event subscription starts from
	StartBlock uint64
	// Generation is incremented every time the channel's session is replaced
	Generation uint64
}

// Clone returns a deep copy of the session.
func (s *ChannelSession) Clone() *ChannelSession {
	if s == nil {
		return nil
	}
	c := *s
	c.EndorsingPeers = append([]PeerRef(nil), s.EndorsingPeers...)
	c.Orderers = append([]OrdererRef(nil), s.Orderers...)
	c.ChaincodeIDs = append([]string(nil), s.ChaincodeIDs...)
	if s.PrivateCollections != nil {
		c.PrivateCollections = make(map[string][]string, len(s.PrivateCollections))
		for cc, colls := range s.PrivateCollections {
			c.PrivateCollections[cc] = append([]string(nil), colls...)
		}
	}
	return &c
}

// HasChaincode returns true if the chaincode was discovered on the channel.
func (s *ChannelSession) HasChaincode(ccID string) bool {
	for _, id := range s.ChaincodeIDs {
		if id == ccID {
			return true
		}
	}
	return false
}

// DefaultChaincode returns the first discovered chaincode in lexical order,
// or "" if none was discovered.
func (s *ChannelSession) DefaultChaincode() string {
	if len(s.ChaincodeIDs) == 0 {
		return ""
	}
	ids := append([]string(nil), s.ChaincodeIDs...)
	sort.Strings(ids)
	return ids[0]
}

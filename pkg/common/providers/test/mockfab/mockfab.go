/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mockfab

import (
	"fmt"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
)

//go:generate mockgen -package mockfab -destination mockfab.gen.go github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab Gateway,BlockEventFeed,Subscription,DownstreamConsumer,SequenceSink

// ErrorMessage is a mock error message
const ErrorMessage = "default error message"

// NewSession returns a usable session for the channel with the given number of
// endorsing peers, one orderer and a single chaincode.
func NewSession(channelID string, numPeers int, ccIDs ...string) *fab.ChannelSession {
	if len(ccIDs) == 0 {
		ccIDs = []string{"examplecc"}
	}
	s := &fab.ChannelSession{
		ChannelID:    channelID,
		Orderers:     []fab.OrdererRef{{ID: "orderer.example.com", URL: "grpcs://orderer.example.com:7050"}},
		ChaincodeIDs: ccIDs,
	}
	for i := 0; i < numPeers; i++ {
		s.EndorsingPeers = append(s.EndorsingPeers, fab.PeerRef{
			ID:    fmt.Sprintf("peer%d.org%d.example.com", i, i+1),
			URL:   fmt.Sprintf("grpcs://peer%d.org%d.example.com:7051", i, i+1),
			MSPID: fmt.Sprintf("Org%dMSP", i+1),
		})
	}
	return s
}

// NewResponses returns one verified response per status code.
func NewResponses(statuses ...int32) []*fab.EndorsementResponse {
	responses := make([]*fab.EndorsementResponse, len(statuses))
	for i, s := range statuses {
		responses[i] = &fab.EndorsementResponse{
			ResponderID: fmt.Sprintf("peer%d", i),
			MSPID:       fmt.Sprintf("Org%dMSP", i+1),
			StatusCode:  s,
			Payload:     []byte(fmt.Sprintf("payload%d", i)),
			Verified:    true,
		}
	}
	return responses
}

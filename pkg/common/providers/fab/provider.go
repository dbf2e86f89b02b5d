/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package fab defines the capabilities the coordinator consumes from the
// peer network, the event feed and durable storage, together with the data
// types exchanged with them. Implementations live outside this module.
package fab

import "context"

// Gateway provides access to the peers and orderers of a channel. All calls
// must honour the deadline of ctx.
type Gateway interface {
	// Discover asks the given peer for the channel's endorsers, orderers,
	// chaincodes and collections.
	Discover(ctx context.Context, peer PeerRef, channelID string) (*ChannelSession, error)

	// SendProposal sends a proposal to the session's endorsing peers and
	// returns their responses.
	SendProposal(ctx context.Context, session *ChannelSession, request *ProposalRequest) ([]*EndorsementResponse, error)

	// SendToOrderers submits the endorsed transaction to the session's orderers.
	SendToOrderers(ctx context.Context, session *ChannelSession, request *ProposalRequest, endorsements []*EndorsementResponse) error

	// Evaluate sends an evaluate-only proposal to a single peer.
	Evaluate(ctx context.Context, peer PeerRef, request *ProposalRequest) (*EndorsementResponse, error)

	// BlockHeight returns the channel's ledger height as seen by the session.
	BlockHeight(ctx context.Context, session *ChannelSession) (uint64, error)

	// Release frees the network resources held for the session.
	Release(session *ChannelSession) error
}

// SequenceSink durably stores the last processed block number of every
// channel as one snapshot.
type SequenceSink interface {
	Load() (map[string]int64, error)
	// Save atomically replaces the stored snapshot.
	Save(snapshot map[string]int64) error
}

// RecordSink is implemented by sinks that can persist a single channel's
// record atomically without rewriting the whole snapshot.
type RecordSink interface {
	SequenceSink
	SaveRecord(channelID string, seq int64) error
}

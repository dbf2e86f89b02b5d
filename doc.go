/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package fabriccoordinator is the client-side core of a transaction
// coordinator for a permissioned, channel-partitioned ledger.
//
// Packages for end developer usage
//
// pkg/coordinator: Assembles all components from configuration and owns
// their lifetime.
//
// pkg/client/txn: Submits transactions (endorse, check policy, order) and
// runs queries.
//
// pkg/client/policy: Endorsement policies and the registry that resolves
// them by name.
//
// pkg/fab/session: Discovers and maintains one session per channel.
//
// pkg/fab/events/blockproc: Turns raw block events into records exactly once
// per block.
//
// pkg/fab/seqstore: Durable per-channel record of the last processed block.
//
// pkg/common/providers/fab: The capabilities consumed from the peer network,
// the event feed and storage.
//
// Basic workflow
//
//	1) Load the configuration with config.FromFile and config.FromProvider
//	2) Create the coordinator with coordinator.New, supplying the gateway,
//	   the block event feed and a downstream consumer
//	3) Call Start to open the configured channels
//	4) Submit transactions; commitment is reported through the consumer
//	5) Call Close to stop the subscriptions and release the store
package fabriccoordinator

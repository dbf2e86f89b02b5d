/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fab

import (
	"context"
	"time"

	cb "github.com/hyperledger/fabric-protos-go/common"
)

// BlockEvent contains the data for the block event
type BlockEvent struct {
	// Block is the block that was committed
	Block *cb.Block
	// SourceURL specifies the URL of the peer that produced the event
	SourceURL string
}

// BlockHandler is invoked by a BlockEventFeed for every block delivered on a
// subscription, in delivery order.
type BlockHandler func(ctx context.Context, event *BlockEvent) error

// BlockEventFeed is a push-based source of raw block events. Blocks may be
// redelivered after a reconnect.
type BlockEventFeed interface {
	// Subscribe delivers the channel's blocks to handler starting at startBlock.
	// Events are delivered until the returned Subscription is closed.
	Subscribe(ctx context.Context, channelID string, startBlock uint64, handler BlockHandler) (Subscription, error)
}

// Subscription is the handle to an active block event subscription.
type Subscription interface {
	Close() error
}

// BlockEventRecord is the structured form of a decoded block. It is handed to
// the DownstreamConsumer and then discarded.
type BlockEventRecord struct {
	ChannelID    string
	BlockNumber  uint64
	DataHash     []byte
	PreviousHash []byte
	Transactions []*TransactionRecord
}

// TransactionRecord describes one transaction envelope of a block.
type TransactionRecord struct {
	BlockNumber    uint64
	TxID           string
	Type           string
	Epoch          uint64
	Timestamp      time.Time
	Valid          bool
	ValidationCode string
	Actions        []*TransactionActionRecord
}

// TransactionActionRecord describes one chaincode action of a transaction.
type TransactionActionRecord struct {
	ChaincodeID     string
	RequestPayload  []byte
	Endorsements    []*EndorsementRecord
	ResponseStatus  int32
	ResponsePayload []byte
	Description     string
	// ProposalResponseStatus and ProposalResponsePayload are the endorsed
	// response as carried in the proposal response payload; the payload is
	// rendered as UTF-8 text.
	ProposalResponseStatus  int32
	ProposalResponsePayload string
}

// EndorsementRecord holds the base64 encoded endorser identity and signature.
type EndorsementRecord struct {
	Endorser  string
	Signature string
}

// DownstreamConsumer receives successfully decoded blocks.
type DownstreamConsumer interface {
	Consume(ctx context.Context, record *BlockEventRecord) error
}

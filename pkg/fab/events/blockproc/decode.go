/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package blockproc

import (
	"encoding/base64"
	"fmt"
	"math"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
	cb "github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

// blockHeader extracts the channel ID and block number. The channel ID is
// taken from the channel header of the first envelope.
func blockHeader(event *fab.BlockEvent) (string, uint64, error) {
	if event == nil || event.Block == nil {
		return "", 0, malformed(errors.New("block event has no block"))
	}
	block := event.Block
	if block.Header == nil {
		return "", 0, malformed(errors.New("block has no header"))
	}
	if block.Header.Number > math.MaxInt64 {
		return "", 0, malformed(errors.Errorf("block number %d out of range", block.Header.Number))
	}
	if block.Data == nil || len(block.Data.Data) == 0 {
		return "", 0, malformed(errors.Errorf("block %d has no data", block.Header.Number))
	}

	_, chdr, err := envelopeHeaders(block.Data.Data[0])
	if err != nil {
		return "", 0, malformed(errors.WithMessagef(err, "block %d", block.Header.Number))
	}
	if chdr.ChannelId == "" {
		return "", 0, malformed(errors.Errorf("block %d has no channel ID", block.Header.Number))
	}
	return chdr.ChannelId, block.Header.Number, nil
}

// decodeBlock deconstructs every transaction of the block. Any failure
// aborts decoding of the whole block.
func decodeBlock(channelID string, block *cb.Block) (*fab.BlockEventRecord, error) {
	record := &fab.BlockEventRecord{
		ChannelID:    channelID,
		BlockNumber:  block.Header.Number,
		DataHash:     block.Header.DataHash,
		PreviousHash: block.Header.PreviousHash,
	}

	var txFilter []byte
	if block.Metadata != nil && len(block.Metadata.Metadata) > int(cb.BlockMetadataIndex_TRANSACTIONS_FILTER) {
		txFilter = block.Metadata.Metadata[cb.BlockMetadataIndex_TRANSACTIONS_FILTER]
	}

	for i, data := range block.Data.Data {
		code := pb.TxValidationCode_NOT_VALIDATED
		if i < len(txFilter) {
			code = pb.TxValidationCode(txFilter[i])
		}

		tx, err := decodeTransaction(block.Header.Number, data, code)
		if err != nil {
			return nil, status.Wrap(err, status.EventClientStatus, status.DecodeFailed,
				fmt.Sprintf("decoding transaction %d of block %d failed", i, block.Header.Number))
		}
		record.Transactions = append(record.Transactions, tx)
	}

	return record, nil
}

func decodeTransaction(blockNum uint64, data []byte, code pb.TxValidationCode) (*fab.TransactionRecord, error) {
	payload, chdr, err := envelopeHeaders(data)
	if err != nil {
		return nil, err
	}

	tx := &fab.TransactionRecord{
		BlockNumber:    blockNum,
		TxID:           chdr.TxId,
		Type:           cb.HeaderType(chdr.Type).String(),
		Epoch:          chdr.Epoch,
		Valid:          code == pb.TxValidationCode_VALID,
		ValidationCode: code.String(),
	}
	if chdr.Timestamp != nil {
		tx.Timestamp = chdr.Timestamp.AsTime().UTC()
	}

	if cb.HeaderType(chdr.Type) != cb.HeaderType_ENDORSER_TRANSACTION {
		return tx, nil
	}

	transaction := &pb.Transaction{}
	if err := proto.Unmarshal(payload.Data, transaction); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling transaction payload")
	}
	for j, action := range transaction.Actions {
		a, err := decodeAction(action)
		if err != nil {
			return nil, errors.WithMessagef(err, "action %d of tx %s", j, chdr.TxId)
		}
		tx.Actions = append(tx.Actions, a)
	}
	return tx, nil
}

func decodeAction(action *pb.TransactionAction) (*fab.TransactionActionRecord, error) {
	ccActionPayload := &pb.ChaincodeActionPayload{}
	if err := proto.Unmarshal(action.Payload, ccActionPayload); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling chaincode action payload")
	}
	if ccActionPayload.Action == nil {
		return nil, errors.New("chaincode action payload has no endorsed action")
	}

	record := &fab.TransactionActionRecord{}

	proposalPayload := &pb.ChaincodeProposalPayload{}
	if err := proto.Unmarshal(ccActionPayload.ChaincodeProposalPayload, proposalPayload); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling chaincode proposal payload")
	}
	invocationSpec := &pb.ChaincodeInvocationSpec{}
	if err := proto.Unmarshal(proposalPayload.Input, invocationSpec); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling chaincode invocation spec")
	}
	if spec := invocationSpec.ChaincodeSpec; spec != nil {
		if spec.Input != nil && len(spec.Input.Args) > 0 {
			record.RequestPayload = spec.Input.Args[0]
		}
		if spec.ChaincodeId != nil {
			record.ChaincodeID = spec.ChaincodeId.Name
		}
	}

	for _, e := range ccActionPayload.Action.Endorsements {
		record.Endorsements = append(record.Endorsements, &fab.EndorsementRecord{
			Endorser:  base64.StdEncoding.EncodeToString(e.Endorser),
			Signature: base64.StdEncoding.EncodeToString(e.Signature),
		})
	}

	prp := &pb.ProposalResponsePayload{}
	if err := proto.Unmarshal(ccActionPayload.Action.ProposalResponsePayload, prp); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling proposal response payload")
	}
	ccAction := &pb.ChaincodeAction{}
	if err := proto.Unmarshal(prp.Extension, ccAction); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling chaincode action")
	}
	if ccAction.ChaincodeId != nil && ccAction.ChaincodeId.Name != "" {
		record.ChaincodeID = ccAction.ChaincodeId.Name
	}
	if resp := ccAction.Response; resp != nil {
		record.ResponseStatus = resp.Status
		record.ResponsePayload = resp.Payload
		record.Description = resp.Message
		record.ProposalResponseStatus = resp.Status
		record.ProposalResponsePayload = string(resp.Payload)
	}

	return record, nil
}

func envelopeHeaders(data []byte) (*cb.Payload, *cb.ChannelHeader, error) {
	env := &cb.Envelope{}
	if err := proto.Unmarshal(data, env); err != nil {
		return nil, nil, errors.Wrap(err, "error extracting Envelope from block")
	}
	payload := &cb.Payload{}
	if err := proto.Unmarshal(env.Payload, payload); err != nil {
		return nil, nil, errors.Wrap(err, "error extracting Payload from envelope")
	}
	if payload.Header == nil {
		return nil, nil, errors.New("payload has no header")
	}
	chdr := &cb.ChannelHeader{}
	if err := proto.Unmarshal(payload.Header.ChannelHeader, chdr); err != nil {
		return nil, nil, errors.Wrap(err, "error extracting ChannelHeader from payload")
	}
	return payload, chdr, nil
}

func malformed(err error) error {
	return status.Wrap(err, status.EventClientStatus, status.MalformedEvent, "malformed block event")
}

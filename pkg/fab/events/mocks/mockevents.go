/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"time"

	"github.com/golang/protobuf/proto"
	cb "github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// NewBlock returns a new mock block with the given number, initialized with the given channel
func NewBlock(channelID string, number uint64, transactions ...*TxInfo) *cb.Block {
	var data [][]byte
	txValidationFlags := make([]uint8, len(transactions))
	for i, txInfo := range transactions {
		envBytes, err := proto.Marshal(newEnvelope(channelID, txInfo))
		if err != nil {
			panic(err)
		}
		data = append(data, envBytes)
		txValidationFlags[i] = uint8(txInfo.TxValidationCode)
	}

	blockMetaData := make([][]byte, 5)
	blockMetaData[cb.BlockMetadataIndex_TRANSACTIONS_FILTER] = txValidationFlags

	return &cb.Block{
		Header: &cb.BlockHeader{
			Number:       number,
			DataHash:     []byte{byte(number), 0xda},
			PreviousHash: []byte{byte(number - 1), 0xfe},
		},
		Metadata: &cb.BlockMetadata{Metadata: blockMetaData},
		Data:     &cb.BlockData{Data: data},
	}
}

// TxInfo contains the data necessary to
// construct a mock transaction
type TxInfo struct {
	TxID             string
	TxValidationCode pb.TxValidationCode
	HeaderType       cb.HeaderType
	Epoch            uint64
	Timestamp        time.Time
	ChaincodeID      string
	Args             [][]byte
	ResponseStatus   int32
	ResponsePayload  []byte
	ResponseMessage  string
	Endorsements     []*pb.Endorsement
}

// NewTransaction creates a new transaction
func NewTransaction(txID string, txValidationCode pb.TxValidationCode, headerType cb.HeaderType) *TxInfo {
	return &TxInfo{
		TxID:             txID,
		TxValidationCode: txValidationCode,
		HeaderType:       headerType,
		Timestamp:        time.Unix(1600000000, 0).UTC(),
	}
}

// NewEndorserTransaction creates a valid endorser transaction invoking the
// chaincode with the given args, endorsed by two peers
func NewEndorserTransaction(txID string, ccID string, args ...string) *TxInfo {
	tx := NewTransaction(txID, pb.TxValidationCode_VALID, cb.HeaderType_ENDORSER_TRANSACTION)
	tx.ChaincodeID = ccID
	for _, a := range args {
		tx.Args = append(tx.Args, []byte(a))
	}
	tx.ResponseStatus = 200
	tx.ResponsePayload = []byte("ok:" + txID)
	tx.ResponseMessage = "invoked " + ccID
	tx.Endorsements = []*pb.Endorsement{
		{Endorser: []byte("peer0-cert"), Signature: []byte("peer0-sig")},
		{Endorser: []byte("peer1-cert"), Signature: []byte("peer1-sig")},
	}
	return tx
}

func newEnvelope(channelID string, txInfo *TxInfo) *cb.Envelope {
	var data []byte
	if txInfo.HeaderType == cb.HeaderType_ENDORSER_TRANSACTION {
		tx := &pb.Transaction{
			Actions: []*pb.TransactionAction{newTxAction(txInfo)},
		}
		data = marshal(tx)
	}

	channelHeader := &cb.ChannelHeader{
		ChannelId: channelID,
		TxId:      txInfo.TxID,
		Type:      int32(txInfo.HeaderType),
		Epoch:     txInfo.Epoch,
	}
	if !txInfo.Timestamp.IsZero() {
		channelHeader.Timestamp = timestamppb.New(txInfo.Timestamp)
	}

	payload := &cb.Payload{
		Header: &cb.Header{
			ChannelHeader: marshal(channelHeader),
		},
		Data: data,
	}

	return &cb.Envelope{
		Payload: marshal(payload),
	}
}

func newTxAction(txInfo *TxInfo) *pb.TransactionAction {
	ccID := &pb.ChaincodeID{Name: txInfo.ChaincodeID}

	ccAction := &pb.ChaincodeAction{
		ChaincodeId: ccID,
		Response: &pb.Response{
			Status:  txInfo.ResponseStatus,
			Payload: txInfo.ResponsePayload,
			Message: txInfo.ResponseMessage,
		},
	}
	prp := &pb.ProposalResponsePayload{
		Extension: marshal(ccAction),
	}

	invocationSpec := &pb.ChaincodeInvocationSpec{
		ChaincodeSpec: &pb.ChaincodeSpec{
			ChaincodeId: ccID,
			Input:       &pb.ChaincodeInput{Args: txInfo.Args},
		},
	}
	proposalPayload := &pb.ChaincodeProposalPayload{
		Input: marshal(invocationSpec),
	}

	ccActionPayload := &pb.ChaincodeActionPayload{
		ChaincodeProposalPayload: marshal(proposalPayload),
		Action: &pb.ChaincodeEndorsedAction{
			ProposalResponsePayload: marshal(prp),
			Endorsements:            txInfo.Endorsements,
		},
	}

	return &pb.TransactionAction{
		Payload: marshal(ccActionPayload),
	}
}

func marshal(msg proto.Message) []byte {
	b, err := proto.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return b
}

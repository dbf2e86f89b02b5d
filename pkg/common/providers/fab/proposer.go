/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fab

// UserRef identifies the user on whose behalf a proposal is signed.
type UserRef struct {
	Name  string `mapstructure:"name"`
	MSPID string `mapstructure:"mspID"`
}

// ProposalRequest contains the parameters for sending a transaction proposal.
type ProposalRequest struct {
	ChannelID    string
	ChaincodeID  string
	Fcn          string
	Args         [][]byte
	TransientMap map[string][]byte
	User         UserRef
}

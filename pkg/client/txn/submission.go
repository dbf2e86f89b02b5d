/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/client/policy"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/retry"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
)

// State is a state of the submission state machine
type State int

const (
	// Proposing the proposal is sent to the endorsing peers of the current session
	Proposing State = iota
	// Evaluating the endorsement responses are checked against the policy
	Evaluating
	// Retrying the session is refreshed before proposing again
	Retrying
	// Committing the successful endorsements are sent to the orderers
	Committing
	// Committed the orderers accepted the transaction
	Committed
	// Failed the submission ended with an error
	Failed
)

var stateName = map[State]string{
	Proposing:  "PROPOSING",
	Evaluating: "EVALUATING",
	Retrying:   "RETRYING",
	Committing: "COMMITTING",
	Committed:  "COMMITTED",
	Failed:     "FAILED",
}

func (s State) String() string {
	if n, ok := stateName[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// submission runs one transaction through the state machine. It is owned by
// a single goroutine.
type submission struct {
	ctx       context.Context
	client    *Client
	request   *fab.ProposalRequest
	policy    policy.Policy
	session   *fab.ChannelSession
	timeout   time.Duration
	retryOpts retry.Opts
	retry     retry.Handler

	state     State
	attempts  int
	responses []*fab.EndorsementResponse
	outcome   *policy.Outcome
	lastErr   error
	err       error
}

func newSubmission(ctx context.Context, c *Client, req *fab.ProposalRequest, pol policy.Policy, session *fab.ChannelSession, timeout time.Duration, retryOpts retry.Opts) *submission {
	return &submission{
		ctx:       ctx,
		client:    c,
		request:   req,
		policy:    pol,
		session:   session,
		timeout:   timeout,
		retryOpts: retryOpts,
		retry:     retry.New(retryOpts),
		state:     Proposing,
	}
}

func (s *submission) run() (Response, error) {
	for {
		logger.Debugf("submission of [%s] on channel [%s]: %s", s.request.Fcn, s.request.ChannelID, s.state)

		switch s.state {
		case Proposing:
			s.propose()
		case Evaluating:
			s.evaluate()
		case Retrying:
			s.refresh()
		case Committing:
			s.commit()
		case Committed:
			return s.response(), nil
		case Failed:
			return Response{}, s.err
		default:
			s.fail(status.Errorf(status.ClientStatus, status.Unknown, "invalid submission state %d", s.state))
		}
	}
}

func (s *submission) propose() {
	if s.cancelled() {
		return
	}

	s.attempts++
	reqCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	responses, err := s.client.gateway.SendProposal(reqCtx, s.session, s.request)
	cancel()

	if err == nil {
		s.responses = responses
		s.state = Evaluating
		return
	}

	if s.cancelled() {
		return
	}

	logger.Warnf("proposal attempt %d for [%s] on channel [%s] failed: %s", s.attempts, s.request.Fcn, s.request.ChannelID, err)

	if s.retry.Required(err) {
		s.lastErr = err
		s.state = Retrying
		return
	}

	if retry.Retryable(s.retryOpts, err) {
		s.fail(status.Wrap(err, status.ClientStatus, status.MaxRetriesExceeded, fmt.Sprintf("proposal failed after %d attempts", s.attempts)))
		return
	}

	s.fail(status.Wrap(err, status.EndorserClientStatus, status.TransportFailed, "sending proposal failed"))
}

func (s *submission) refresh() {
	s.client.metrics.ProposalRetries.With("channel", s.request.ChannelID).Add(1)

	if err := s.client.sleep(s.ctx, s.retry.Backoff()); err != nil {
		if !s.cancelled() {
			s.fail(status.Wrap(err, status.ClientStatus, status.Cancelled, "retry backoff interrupted"))
		}
		return
	}

	session, err := s.client.sessions.Refresh(s.ctx, s.session)
	if err != nil {
		if s.cancelled() {
			return
		}
		logger.Errorf("restart of channel [%s] after proposal error [%s] failed: %s", s.request.ChannelID, s.lastErr, err)
		s.fail(err)
		return
	}

	logger.Infof("retrying proposal for [%s] on channel [%s] with session %d (retry %d)", s.request.Fcn, s.request.ChannelID, session.Generation, s.retry.Retries())
	s.session = session
	s.state = Proposing
}

func (s *submission) evaluate() {
	if len(s.responses) == 0 {
		s.fail(status.Errorf(status.EndorserClientStatus, status.InsufficientEndorsements, "no endorsement responses received from %d peers", len(s.session.EndorsingPeers)))
		return
	}

	outcome, err := s.policy.Evaluate(s.responses)
	if err != nil {
		s.fail(status.Wrap(err, status.EndorserClientStatus, status.InsufficientEndorsements, "endorsement responses could not be evaluated"))
		return
	}

	if !outcome.Met {
		if len(outcome.Failed) == 0 {
			s.fail(status.Errorf(status.EndorserClientStatus, status.InsufficientEndorsements,
				"endorsement policy not satisfied: %d successful of %d responses", len(outcome.Successful), outcome.Total()))
			return
		}
		details := make([]interface{}, len(outcome.Failed))
		for i, r := range outcome.Failed {
			details[i] = r
		}
		s.fail(status.New(status.EndorserClientStatus, status.EndorsementFailed.ToInt32(),
			fmt.Sprintf("endorsement policy not satisfied: %d successful, %d failed of %d responses", len(outcome.Successful), len(outcome.Failed), outcome.Total()),
			details))
		return
	}

	// last point at which the submission may be abandoned
	if s.cancelled() {
		return
	}

	s.outcome = outcome
	s.state = Committing
}

func (s *submission) commit() {
	// once ordering starts the transaction must not be abandoned silently
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), s.client.orderTimeout)
	defer cancel()

	if err := s.client.gateway.SendToOrderers(ctx, s.session, s.request, s.outcome.Successful); err != nil {
		logger.Errorf("sending transaction [%s] on channel [%s] to orderers failed: %s", s.request.Fcn, s.request.ChannelID, err)
		s.fail(status.Wrap(err, status.OrdererClientStatus, status.OrderSubmissionFailed, "sending transaction to orderers failed"))
		return
	}

	s.state = Committed
}

// cancelled fails the submission if its context is done.
func (s *submission) cancelled() bool {
	err := s.ctx.Err()
	if err == nil {
		return false
	}
	code := status.Cancelled
	if err == context.DeadlineExceeded {
		code = status.Timeout
	}
	s.fail(status.Wrap(err, status.ClientStatus, code, fmt.Sprintf("submission abandoned in state %s", s.state)))
	return true
}

func (s *submission) fail(err error) {
	s.err = err
	s.state = Failed
}

func (s *submission) response() Response {
	resp := Response{
		ChannelID:         s.request.ChannelID,
		ChaincodeID:       s.request.ChaincodeID,
		Responses:         s.outcome.Successful,
		Attempts:          s.attempts,
		SessionGeneration: s.session.Generation,
	}
	if len(s.outcome.Successful) > 0 {
		resp.Payload = s.outcome.Successful[0].Payload
	}
	return resp
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package txn submits chaincode transactions on a channel: it collects
// endorsements from the channel's endorsing peers, checks them against the
// chaincode's endorsement policy and hands the endorsed transaction to the
// ordering service. Commitment is observed asynchronously through block
// events.
package txn

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/client/policy"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/multi"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/logging"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/metrics/disabled"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/options"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
	"github.com/pkg/errors"
)

var logger = logging.NewLogger("coordinator/txn")

const successStatus = 200

// SessionManager provides the channel sessions used by the client.
type SessionManager interface {
	Session(channelID string) (*fab.ChannelSession, bool)
	Open(ctx context.Context, channelID string) (*fab.ChannelSession, error)
	Refresh(ctx context.Context, stale *fab.ChannelSession) (*fab.ChannelSession, error)
}

// PolicyResolver returns the endorsement policy bound to a chaincode.
type PolicyResolver interface {
	Resolve(ccID string) (policy.Policy, bool)
}

// Client submits transactions and queries. It is safe for concurrent use.
type Client struct {
	params
	gateway  fab.Gateway
	sessions SessionManager
	policies PolicyResolver
	channels map[string]struct{}
	users    map[string]fab.UserRef
	metrics  *Metrics
}

// New returns a client for the given channels and users.
func New(gateway fab.Gateway, sessions SessionManager, policies PolicyResolver, channels []string, users []fab.UserRef, opts ...options.Opt) (*Client, error) {
	if gateway == nil || sessions == nil || policies == nil {
		return nil, status.Errorf(status.ClientStatus, status.InvalidArgument, "gateway, session manager and policy resolver are required")
	}

	params := defaultParams()
	options.Apply(params, opts)
	if params.metricsProvider == nil {
		params.metricsProvider = &disabled.Provider{}
	}

	c := &Client{
		params:   *params,
		gateway:  gateway,
		sessions: sessions,
		policies: policies,
		channels: make(map[string]struct{}, len(channels)),
		users:    make(map[string]fab.UserRef, len(users)),
		metrics:  NewMetrics(params.metricsProvider),
	}
	for _, ch := range channels {
		c.channels[ch] = struct{}{}
	}
	for _, u := range users {
		c.users[u.Name] = u
	}
	return c, nil
}

// Submit endorses the request and sends it to the orderers.
//
// Transport failures while collecting endorsements restart the channel
// session and retry, up to the configured number of attempts. Once the
// endorsed transaction is being sent to the orderers, cancellation of ctx is
// no longer honoured and a failure is not retried. DispositionOf tells how
// far a failed submission got.
func (c *Client) Submit(ctx context.Context, request Request, options ...RequestOption) (Response, error) {
	start := time.Now()
	c.metrics.Submissions.With("channel", request.ChannelID).Add(1)

	resp, err := c.submit(ctx, request, options)

	c.metrics.SubmissionDuration.With("channel", request.ChannelID).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FailedSubmissions.With("channel", request.ChannelID, "reason", reason(err)).Add(1)
		logger.Debugf("submission of [%s] on channel [%s] failed (%s): %s", request.Fcn, request.ChannelID, DispositionOf(err), err)
	}
	return resp, err
}

func (c *Client) submit(ctx context.Context, request Request, options []RequestOption) (Response, error) {
	o, err := c.prepareOptsFromOptions(options...)
	if err != nil {
		return Response{}, err
	}

	req, err := c.prepareRequest(request)
	if err != nil {
		return Response{}, err
	}

	session, err := c.session(ctx, req.ChannelID)
	if err != nil {
		return Response{}, err
	}

	req.ChaincodeID, err = resolveChaincode(session, req.ChaincodeID)
	if err != nil {
		return Response{}, err
	}

	pol, ok := c.policies.Resolve(req.ChaincodeID)
	if !ok {
		return Response{}, status.Errorf(status.ClientStatus, status.ValidationFailed, "no endorsement policy configured for chaincode [%s]", req.ChaincodeID)
	}

	timeout := c.proposalTimeout
	if o.Timeout > 0 {
		timeout = o.Timeout
	}
	retryOpts := c.retryOpts
	if o.Retry != nil {
		retryOpts = *o.Retry
		retryOpts.RetryUnclassified = retryOpts.RetryUnclassified || c.retryOpts.RetryUnclassified
	}

	return newSubmission(ctx, c, req, pol, session, timeout, retryOpts).run()
}

// Query evaluates the request on the channel's endorsing peers, one at a
// time, and returns the first verified successful response. Nothing is sent
// to the orderers.
func (c *Client) Query(ctx context.Context, request Request, options ...RequestOption) (Response, error) {
	o, err := c.prepareOptsFromOptions(options...)
	if err != nil {
		return Response{}, err
	}

	req, err := c.prepareRequest(request)
	if err != nil {
		return Response{}, err
	}

	session, err := c.session(ctx, req.ChannelID)
	if err != nil {
		return Response{}, err
	}

	req.ChaincodeID, err = resolveChaincode(session, req.ChaincodeID)
	if err != nil {
		return Response{}, err
	}

	timeout := c.queryTimeout
	if o.Timeout > 0 {
		timeout = o.Timeout
	}

	var errs error
	for _, peer := range session.EndorsingPeers {
		if ctx.Err() != nil {
			return Response{}, status.Wrap(ctx.Err(), status.ClientStatus, status.Cancelled, "query cancelled")
		}

		resp, err := c.evaluate(ctx, peer, req, timeout)
		if err != nil {
			logger.Warnf("query of [%s] on peer [%s] failed: %s", req.Fcn, peer, err)
			errs = multi.Append(errs, errors.WithMessagef(err, "peer [%s]", peer))
			continue
		}

		c.metrics.Queries.With("channel", req.ChannelID, "result", "success").Add(1)
		return Response{
			ChannelID:         req.ChannelID,
			ChaincodeID:       req.ChaincodeID,
			Payload:           resp.Payload,
			Responses:         []*fab.EndorsementResponse{resp},
			Attempts:          1,
			SessionGeneration: session.Generation,
		}, nil
	}

	c.metrics.Queries.With("channel", req.ChannelID, "result", "failure").Add(1)
	return Response{}, status.Wrap(errs, status.EndorserClientStatus, status.QueryFailed, fmt.Sprintf("query of [%s] failed on all peers of channel [%s]", req.Fcn, req.ChannelID))
}

func (c *Client) evaluate(ctx context.Context, peer fab.PeerRef, req *fab.ProposalRequest, timeout time.Duration) (*fab.EndorsementResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.gateway.Evaluate(reqCtx, peer, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("no response")
	}
	if !resp.Verified {
		return nil, errors.New("response signature could not be verified")
	}
	if resp.StatusCode != successStatus {
		return nil, errors.Errorf("response status %d", resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) prepareOptsFromOptions(options ...RequestOption) (requestOptions, error) {
	o := requestOptions{}
	for _, option := range options {
		if err := option(&o); err != nil {
			return o, status.Wrap(err, status.ClientStatus, status.ValidationFailed, "failed to read request option")
		}
	}
	return o, nil
}

func (c *Client) prepareRequest(request Request) (*fab.ProposalRequest, error) {
	if request.ChannelID == "" {
		return nil, status.Errorf(status.ClientStatus, status.ValidationFailed, "channel ID is required")
	}
	if _, ok := c.channels[request.ChannelID]; !ok {
		return nil, status.Errorf(status.ClientStatus, status.ValidationFailed, "unknown channel [%s]", request.ChannelID)
	}
	if request.User == "" {
		return nil, status.Errorf(status.ClientStatus, status.ValidationFailed, "user is required")
	}
	user, ok := c.users[request.User]
	if !ok {
		return nil, status.Errorf(status.ClientStatus, status.ValidationFailed, "unknown user [%s]", request.User)
	}
	if request.Fcn == "" {
		return nil, status.Errorf(status.ClientStatus, status.ValidationFailed, "function name is required")
	}

	return &fab.ProposalRequest{
		ChannelID:    request.ChannelID,
		ChaincodeID:  request.ChaincodeID,
		Fcn:          request.Fcn,
		Args:         request.Args,
		TransientMap: request.TransientMap,
		User:         user,
	}, nil
}

// session returns the channel's current session, opening the channel if it
// has none.
func (c *Client) session(ctx context.Context, channelID string) (*fab.ChannelSession, error) {
	if session, ok := c.sessions.Session(channelID); ok {
		return session, nil
	}
	logger.Infof("channel [%s] has no session, opening", channelID)
	return c.sessions.Open(ctx, channelID)
}

func resolveChaincode(session *fab.ChannelSession, ccID string) (string, error) {
	if ccID == "" {
		ccID = session.DefaultChaincode()
		if ccID == "" {
			return "", status.Errorf(status.ClientStatus, status.ValidationFailed, "no chaincode discovered on channel [%s]", session.ChannelID)
		}
		return ccID, nil
	}
	if !session.HasChaincode(ccID) {
		return "", status.Errorf(status.ClientStatus, status.ValidationFailed, "chaincode [%s] not found on channel [%s]", ccID, session.ChannelID)
	}
	return ccID, nil
}

func reason(err error) string {
	s, ok := status.FromError(err)
	if !ok {
		return "unknown"
	}
	if s.Group == status.GRPCTransportStatus {
		return "transport"
	}
	return status.Code(s.Code).String()
}

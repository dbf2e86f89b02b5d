/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/client/policy"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/retry"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/fab"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/test/mockfab"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpccodes "google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

const (
	channelID = "mychannel"
	ccID      = "examplecc"
	userName  = "user1"
)

var testRetryOpts = retry.Opts{
	Attempts:          2,
	InitialBackoff:    10 * time.Millisecond,
	MaxBackoff:        time.Second,
	BackoffFactor:     2,
	RetryUnclassified: true,
}

var transportErr = status.Errorf(status.EndorserClientStatus, status.TransportFailed, "connection reset by peer")

type fakeSessions struct {
	mutex      sync.Mutex
	current    *fab.ChannelSession
	opens      int
	refreshes  int
	openErr    error
	refreshErr error
}

func newFakeSessions(ccIDs ...string) *fakeSessions {
	s := mockfab.NewSession(channelID, 4, ccIDs...)
	s.Generation = 1
	return &fakeSessions{current: s}
}

func (f *fakeSessions) Session(ch string) (*fab.ChannelSession, bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.current == nil || f.current.ChannelID != ch {
		return nil, false
	}
	return f.current.Clone(), true
}

func (f *fakeSessions) Open(ctx context.Context, ch string) (*fab.ChannelSession, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.opens++
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.current = mockfab.NewSession(ch, 4)
	f.current.Generation = 1
	return f.current.Clone(), nil
}

func (f *fakeSessions) Refresh(ctx context.Context, stale *fab.ChannelSession) (*fab.ChannelSession, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		f.current = nil
		return nil, f.refreshErr
	}
	next := stale.Clone()
	next.Generation = stale.Generation + 1
	f.current = next
	return next.Clone(), nil
}

type sleepRecorder struct {
	backoffs []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.backoffs = append(r.backoffs, d)
	return ctx.Err()
}

func newResolver(t *testing.T, policyName string) *policy.Resolver {
	resolver, err := policy.NewResolver(policy.NewRegistry(), []policy.Binding{{ChaincodeID: ccID, Policy: policyName}})
	require.NoError(t, err)
	return resolver
}

func newClient(t *testing.T, gateway fab.Gateway, sessions SessionManager, sleeper *sleepRecorder) *Client {
	c, err := New(gateway, sessions, newResolver(t, policy.QuorumPolicy),
		[]string{channelID}, []fab.UserRef{{Name: userName, MSPID: "Org1MSP"}},
		WithRetryOpts(testRetryOpts), WithSleep(sleeper.sleep), WithProposalTimeout(time.Second))
	require.NoError(t, err)
	return c
}

func newRequest() Request {
	return Request{
		ChannelID: channelID,
		User:      userName,
		Fcn:       "transfer",
		Args:      [][]byte{[]byte("marble1"), []byte("bob")},
	}
}

func TestSubmit(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	c := newClient(t, gateway, newFakeSessions(), &sleepRecorder{})

	gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, session *fab.ChannelSession, req *fab.ProposalRequest) ([]*fab.EndorsementResponse, error) {
			assert.Equal(t, ccID, req.ChaincodeID, "chaincode defaults to the discovered one")
			assert.Equal(t, fab.UserRef{Name: userName, MSPID: "Org1MSP"}, req.User)
			assert.Equal(t, "transfer", req.Fcn)
			_, ok := ctx.Deadline()
			assert.True(t, ok, "proposal must be sent with a deadline")
			return mockfab.NewResponses(200, 200, 200, 404), nil
		})
	gateway.EXPECT().SendToOrderers(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, session *fab.ChannelSession, req *fab.ProposalRequest, endorsements []*fab.EndorsementResponse) error {
			require.Len(t, endorsements, 3)
			for _, e := range endorsements {
				assert.EqualValues(t, 200, e.StatusCode)
			}
			return nil
		})

	resp, err := c.Submit(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, []byte("payload0"), resp.Payload)
	assert.Equal(t, 1, resp.Attempts)
	assert.Equal(t, ccID, resp.ChaincodeID)
	assert.Len(t, resp.Responses, 3)
	assert.Equal(t, Ordered, DispositionOf(err))
}

func TestSubmitMaxRetriesExceeded(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	sessions := newFakeSessions()
	sleeper := &sleepRecorder{}
	c := newClient(t, gateway, sessions, sleeper)

	var generations []uint64
	gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, session *fab.ChannelSession, req *fab.ProposalRequest) ([]*fab.EndorsementResponse, error) {
			generations = append(generations, session.Generation)
			return nil, transportErr
		}).Times(3)

	_, err := c.Submit(context.Background(), newRequest())
	require.Error(t, err)
	assert.True(t, status.IsCode(err, status.MaxRetriesExceeded), err.Error())
	assert.Equal(t, NotSent, DispositionOf(err))
	assert.Equal(t, 2, sessions.refreshes)
	assert.Equal(t, []uint64{1, 2, 3}, generations, "each attempt uses the refreshed session")
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, sleeper.backoffs)
}

func TestSubmitRetrySucceeds(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	sessions := newFakeSessions()
	c := newClient(t, gateway, sessions, &sleepRecorder{})

	gomock.InOrder(
		gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, grpcstatus.Error(grpccodes.Unavailable, "peer down")),
		gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockfab.NewResponses(200, 200, 200, 200), nil),
		gateway.EXPECT().SendToOrderers(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
	)

	resp, err := c.Submit(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Attempts)
	assert.EqualValues(t, 2, resp.SessionGeneration)
	assert.Equal(t, 1, sessions.refreshes)
}

func TestSubmitProposalTimeoutRetried(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	sessions := newFakeSessions()
	sleeper := &sleepRecorder{}

	for _, opts := range []retry.Opts{testRetryOpts, {Attempts: 2}} {
		sessions.refreshes = 0
		c, err := New(gateway, sessions, newResolver(t, policy.QuorumPolicy),
			[]string{channelID}, []fab.UserRef{{Name: userName, MSPID: "Org1MSP"}},
			WithRetryOpts(opts), WithSleep(sleeper.sleep), WithProposalTimeout(20*time.Millisecond))
		require.NoError(t, err)

		stale, ok := sessions.Session(channelID)
		require.True(t, ok)

		gomock.InOrder(
			gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
				func(ctx context.Context, session *fab.ChannelSession, req *fab.ProposalRequest) ([]*fab.EndorsementResponse, error) {
					<-ctx.Done()
					return nil, errors.Wrap(ctx.Err(), "waiting for endorsements")
				}),
			gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
				func(ctx context.Context, session *fab.ChannelSession, req *fab.ProposalRequest) ([]*fab.EndorsementResponse, error) {
					assert.Equal(t, stale.Generation+1, session.Generation, "second attempt uses the refreshed session")
					return mockfab.NewResponses(200, 200, 200), nil
				}),
			gateway.EXPECT().SendToOrderers(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		)

		resp, err := c.Submit(context.Background(), newRequest())
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Attempts)
		assert.Equal(t, stale.Generation+1, resp.SessionGeneration)
		assert.Equal(t, 1, sessions.refreshes)
		assert.Equal(t, Ordered, DispositionOf(err))
	}
}

func TestSubmitRequestRetryInheritsUnclassified(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	sessions := newFakeSessions()
	c := newClient(t, gateway, sessions, &sleepRecorder{})

	gomock.InOrder(
		gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("stream closed")),
		gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockfab.NewResponses(200, 200, 200), nil),
		gateway.EXPECT().SendToOrderers(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
	)

	resp, err := c.Submit(context.Background(), newRequest(), WithRetry(retry.Opts{Attempts: 1}))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Attempts)
	assert.Equal(t, 1, sessions.refreshes)
}

func TestSubmitNonTransientProposalError(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	sessions := newFakeSessions()
	c := newClient(t, gateway, sessions, &sleepRecorder{})

	gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, grpcstatus.Error(grpccodes.PermissionDenied, "access denied"))

	_, err := c.Submit(context.Background(), newRequest())
	require.Error(t, err)
	assert.True(t, status.IsCode(err, status.TransportFailed))
	assert.Equal(t, 0, sessions.refreshes)
}

func TestSubmitEndorsementFailed(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	c := newClient(t, gateway, newFakeSessions(), &sleepRecorder{})

	gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockfab.NewResponses(200, 404, 404, 404), nil)

	_, err := c.Submit(context.Background(), newRequest())
	require.Error(t, err)
	assert.True(t, status.IsCode(err, status.EndorsementFailed))
	assert.Equal(t, Rejected, DispositionOf(err))

	failed := FailedResponses(err)
	require.Len(t, failed, 3)
	for _, r := range failed {
		assert.EqualValues(t, 404, r.StatusCode)
	}
}

func TestSubmitInsufficientEndorsements(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	c := newClient(t, gateway, newFakeSessions(), &sleepRecorder{})

	gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockfab.NewResponses(200, 150, 150), nil)
	_, err := c.Submit(context.Background(), newRequest())
	require.Error(t, err)
	assert.True(t, status.IsCode(err, status.InsufficientEndorsements), err.Error())
	assert.Equal(t, Rejected, DispositionOf(err))
	assert.Empty(t, FailedResponses(err))

	gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	_, err = c.Submit(context.Background(), newRequest())
	assert.True(t, status.IsCode(err, status.InsufficientEndorsements))
}

func TestSubmitOrderSubmissionFailed(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	sessions := newFakeSessions()
	c := newClient(t, gateway, sessions, &sleepRecorder{})

	gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockfab.NewResponses(200, 200, 200), nil).Times(1)
	gateway.EXPECT().SendToOrderers(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(transportErr).Times(1)

	_, err := c.Submit(context.Background(), newRequest())
	require.Error(t, err)
	assert.True(t, status.IsCode(err, status.OrderSubmissionFailed))
	assert.Equal(t, OrderingFailed, DispositionOf(err))
	assert.Equal(t, 0, sessions.refreshes)
}

func TestSubmitValidation(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	c := newClient(t, gateway, newFakeSessions(ccID, "unboundcc"), &sleepRecorder{})

	tests := map[string]func(r *Request){
		"no channel":        func(r *Request) { r.ChannelID = "" },
		"unknown channel":   func(r *Request) { r.ChannelID = "otherchannel" },
		"no user":           func(r *Request) { r.User = "" },
		"unknown user":      func(r *Request) { r.User = "mallory" },
		"no function":       func(r *Request) { r.Fcn = "" },
		"unknown chaincode": func(r *Request) { r.ChaincodeID = "missingcc" },
		"no policy":         func(r *Request) { r.ChaincodeID = "unboundcc" },
	}
	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			request := newRequest()
			modify(&request)
			_, err := c.Submit(context.Background(), request)
			require.Error(t, err)
			assert.True(t, status.IsCode(err, status.ValidationFailed), err.Error())
			assert.Equal(t, NotSent, DispositionOf(err))
		})
	}

	_, err := c.Submit(context.Background(), newRequest(), WithTimeout(0))
	assert.True(t, status.IsCode(err, status.ValidationFailed))
}

func TestSubmitCancelled(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	sessions := newFakeSessions()
	c := newClient(t, gateway, sessions, &sleepRecorder{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Submit(ctx, newRequest())
	require.Error(t, err)
	assert.True(t, status.IsCode(err, status.Cancelled))

	// cancelled while backing off
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	c.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}
	gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, transportErr)

	_, err = c.Submit(ctx, newRequest())
	require.Error(t, err)
	assert.True(t, status.IsCode(err, status.Cancelled))
	assert.Equal(t, 0, sessions.refreshes)
}

func TestSubmitCommitIgnoresCancellation(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	c := newClient(t, gateway, newFakeSessions(), &sleepRecorder{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockfab.NewResponses(200, 200, 200), nil)
	gateway.EXPECT().SendToOrderers(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, session *fab.ChannelSession, req *fab.ProposalRequest, endorsements []*fab.EndorsementResponse) error {
			cancel()
			assert.NoError(t, ctx.Err(), "ordering must not observe the caller's cancellation")
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return nil
		})

	_, err := c.Submit(ctx, newRequest())
	require.NoError(t, err)
}

func TestSubmitRestartFailed(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	sessions := newFakeSessions()
	sessions.refreshErr = status.Errorf(status.DiscoveryStatus, status.InfrastructureFailed, "no discovery peer available")
	c := newClient(t, gateway, sessions, &sleepRecorder{})

	gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, transportErr)

	_, err := c.Submit(context.Background(), newRequest())
	require.Error(t, err)
	assert.True(t, status.IsCode(err, status.InfrastructureFailed))
	assert.Equal(t, NotSent, DispositionOf(err))

	// the next submission opens the channel again
	gateway.EXPECT().SendProposal(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockfab.NewResponses(200, 200), nil)
	gateway.EXPECT().SendToOrderers(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err = c.Submit(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, sessions.opens)
}

func TestQuery(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	gateway := mockfab.NewMockGateway(mockCtrl)
	sessions := newFakeSessions()
	c := newClient(t, gateway, sessions, &sleepRecorder{})
	peers := sessions.current.EndorsingPeers

	unverified := mockfab.NewResponses(200)[0]
	unverified.Verified = false
	gomock.InOrder(
		gateway.EXPECT().Evaluate(gomock.Any(), peers[0], gomock.Any()).Return(nil, errors.New("unavailable")),
		gateway.EXPECT().Evaluate(gomock.Any(), peers[1], gomock.Any()).Return(mockfab.NewResponses(500)[0], nil),
		gateway.EXPECT().Evaluate(gomock.Any(), peers[2], gomock.Any()).Return(unverified, nil),
		gateway.EXPECT().Evaluate(gomock.Any(), peers[3], gomock.Any()).Return(&fab.EndorsementResponse{StatusCode: 200, Payload: []byte("marble1"), Verified: true}, nil),
	)

	resp, err := c.Query(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, []byte("marble1"), resp.Payload)

	gateway.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("unavailable")).Times(4)
	_, err = c.Query(context.Background(), newRequest())
	require.Error(t, err)
	assert.True(t, status.IsCode(err, status.QueryFailed))
}

func TestDispositionOf(t *testing.T) {
	assert.Equal(t, Ordered, DispositionOf(nil))
	assert.Equal(t, NotSent, DispositionOf(errors.New("raw")))
	assert.Equal(t, NotSent, DispositionOf(status.Errorf(status.DiscoveryStatus, status.DiscoveryFailed, "x")))
	assert.Equal(t, Rejected, DispositionOf(errors.Wrap(status.Errorf(status.EndorserClientStatus, status.EndorsementFailed, "x"), "wrapped")))
	assert.Equal(t, OrderingFailed, DispositionOf(status.Errorf(status.OrdererClientStatus, status.OrderSubmissionFailed, "x")))
	assert.Equal(t, "ORDERING_FAILED", OrderingFailed.String())
	assert.Equal(t, "COMMITTING", Committing.String())
}

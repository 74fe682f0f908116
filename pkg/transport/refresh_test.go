package transport

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quatton/aquakeys/pkg/api"
	"github.com/quatton/aquakeys/pkg/aqerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coordinatorHarness struct {
	*coordinator

	calls      atomic.Int32
	failures   atomic.Int32
	expiries   atomic.Int32
	token      atomic.Value
	ctxErrs    errSlot
	release    chan struct{}
	refreshErr error
}

func newHarness(refreshErr error) *coordinatorHarness {
	h := &coordinatorHarness{release: make(chan struct{}), refreshErr: refreshErr}
	h.token.Store("at-1")
	h.coordinator = &coordinator{
		refresh: func(ctx context.Context) (*api.TokenGrant, error) {
			h.calls.Add(1)
			<-h.release
			h.ctxErrs.Store(ctx.Err())
			if h.refreshErr != nil {
				return nil, h.refreshErr
			}
			h.token.Store("at-2")
			return &api.TokenGrant{AccessToken: "at-2", RefreshToken: "rt-2"}, nil
		},
		current: func() string { return h.token.Load().(string) },
		fail: func(ctx context.Context) {
			h.failures.Add(1)
			h.ctxErrs.Store(ctx.Err())
			h.token.Store("")
		},
		expired: func(ctx context.Context, _ error) {
			h.expiries.Add(1)
			h.ctxErrs.Store(ctx.Err())
		},
		logger:  discardLogger(),
	}
	return h
}

// errSlot keeps the first non-nil context error seen by the refresh cycle.
type errSlot struct {
	mu  sync.Mutex
	err error
}

func (s *errSlot) Store(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *errSlot) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (h *coordinatorHarness) queued() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

// runConcurrent starts n renewals with the rejected token "at-1" and releases
// the leader's refresh once the other n-1 are parked in the queue.
func (h *coordinatorHarness) runConcurrent(t *testing.T, n int) ([]string, []error) {
	t.Helper()
	tokens := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = h.renew(context.Background(), "at-1")
		}()
	}

	require.Eventually(t, func() bool { return h.queued() == n-1 }, time.Second, time.Millisecond)
	close(h.release)
	wg.Wait()
	return tokens, errs
}

func TestCoordinatorSingleFlightSuccess(t *testing.T) {
	h := newHarness(nil)

	tokens, errs := h.runConcurrent(t, 5)

	assert.Equal(t, int32(1), h.calls.Load(), "exactly one refresh for concurrent 401s")
	for i := range tokens {
		assert.NoError(t, errs[i])
		assert.Equal(t, "at-2", tokens[i])
	}
	assert.Zero(t, h.queued())
	assert.False(t, h.refreshing)
	assert.Zero(t, h.expiries.Load())
}

func TestCoordinatorFailureDrainsEveryWaiter(t *testing.T) {
	refreshErr := aqerr.New(aqerr.CodeRefreshFailed, errors.New("invalid token"))
	h := newHarness(refreshErr)

	_, errs := h.runConcurrent(t, 4)

	assert.Equal(t, int32(1), h.calls.Load())
	for _, err := range errs {
		assert.ErrorIs(t, err, refreshErr)
	}
	assert.Equal(t, int32(1), h.failures.Load(), "credentials cleared once")
	assert.Equal(t, int32(1), h.expiries.Load(), "session expiry notified once")
	assert.Zero(t, h.queued())
	assert.False(t, h.refreshing)
}

func TestCoordinatorStaleTokenSkipsRefresh(t *testing.T) {
	h := newHarness(nil)
	h.token.Store("at-2")

	token, err := h.renew(context.Background(), "at-1")

	require.NoError(t, err)
	assert.Equal(t, "at-2", token)
	assert.Zero(t, h.calls.Load())
}

func TestCoordinatorSequentialCyclesEachRefresh(t *testing.T) {
	h := newHarness(nil)
	close(h.release)

	token, err := h.renew(context.Background(), "at-1")
	require.NoError(t, err)
	assert.Equal(t, "at-2", token)

	// the new token is rejected too: a second, separate cycle
	token, err = h.renew(context.Background(), "at-2")
	require.NoError(t, err)
	assert.Equal(t, "at-2", token)
	assert.Equal(t, int32(2), h.calls.Load())
}

func TestCoordinatorPanicStillSettles(t *testing.T) {
	h := newHarness(nil)
	h.refresh = func(context.Context) (*api.TokenGrant, error) {
		h.calls.Add(1)
		<-h.release
		panic("boom")
	}

	followerErr := make(chan error, 1)
	leaderDone := make(chan any, 1)

	go func() {
		defer func() { leaderDone <- recover() }()
		_, _ = h.renew(context.Background(), "at-1")
	}()
	require.Eventually(t, func() bool { return h.calls.Load() == 1 }, time.Second, time.Millisecond)

	go func() {
		_, err := h.renew(context.Background(), "at-1")
		followerErr <- err
	}()
	require.Eventually(t, func() bool { return h.queued() == 1 }, time.Second, time.Millisecond)

	close(h.release)

	assert.Equal(t, "boom", <-leaderDone, "the leader's panic is re-raised")
	err := <-followerErr
	assert.True(t, aqerr.IsCode(err, aqerr.CodeRefreshFailed))

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.False(t, h.refreshing, "flag reset even when the refresh panics")
}

func TestCoordinatorFollowerHonoursContext(t *testing.T) {
	h := newHarness(nil)

	go func() { _, _ = h.renew(context.Background(), "at-1") }()
	require.Eventually(t, func() bool { return h.calls.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := h.renew(ctx, "at-1")
		done <- err
	}()
	require.Eventually(t, func() bool { return h.queued() == 1 }, time.Second, time.Millisecond)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	// the abandoned continuation is still drained without blocking
	close(h.release)
	require.Eventually(t, func() bool { return h.queued() == 0 && !h.isRefreshing() }, time.Second, time.Millisecond)
}

func (h *coordinatorHarness) isRefreshing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refreshing
}

func TestCoordinatorLeaderCancelDoesNotFailCycle(t *testing.T) {
	h := newHarness(nil)
	ctx, cancel := context.WithCancel(context.Background())

	leader := make(chan error, 1)
	go func() {
		_, err := h.renew(ctx, "at-1")
		leader <- err
	}()
	require.Eventually(t, func() bool { return h.calls.Load() == 1 }, time.Second, time.Millisecond)

	follower := make(chan string, 1)
	go func() {
		token, _ := h.renew(context.Background(), "at-1")
		follower <- token
	}()
	require.Eventually(t, func() bool { return h.queued() == 1 }, time.Second, time.Millisecond)

	cancel()
	close(h.release)

	require.NoError(t, <-leader)
	assert.Equal(t, "at-2", <-follower, "a follower is not failed by the leader's cancel")
	assert.NoError(t, h.ctxErrs.Load(), "the refresh saw a live context")
	assert.Zero(t, h.expiries.Load())
}

func TestCoordinatorFailureRunsOnDetachedContext(t *testing.T) {
	refreshErr := aqerr.New(aqerr.CodeRefreshFailed, errors.New("invalid token"))
	h := newHarness(refreshErr)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	close(h.release)

	_, err := h.renew(ctx, "at-1")

	assert.ErrorIs(t, err, refreshErr)
	assert.Equal(t, int32(1), h.failures.Load())
	assert.Equal(t, int32(1), h.expiries.Load())
	assert.NoError(t, h.ctxErrs.Load(), "clear and expiry run on a live context")
}

func TestCoordinatorJoinSharesInFlightRefresh(t *testing.T) {
	h := newHarness(nil)

	go func() { _, _ = h.renew(context.Background(), "at-1") }()
	require.Eventually(t, func() bool { return h.calls.Load() == 1 }, time.Second, time.Millisecond)

	joined := make(chan *api.TokenGrant, 1)
	go func() {
		grant, _ := h.join(context.Background())
		joined <- grant
	}()
	require.Eventually(t, func() bool { return h.queued() == 1 }, time.Second, time.Millisecond)
	close(h.release)

	grant := <-joined
	require.NotNil(t, grant)
	assert.Equal(t, "rt-2", grant.RefreshToken)
	assert.Equal(t, int32(1), h.calls.Load(), "one refresh on the wire")
}

func TestCoordinatorJoinLeadsWhenIdle(t *testing.T) {
	h := newHarness(nil)
	h.token.Store("at-2")
	close(h.release)

	grant, err := h.join(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "at-2", grant.AccessToken)
	assert.Equal(t, int32(1), h.calls.Load(), "join never takes the stale-token shortcut")
	assert.False(t, h.isRefreshing())
}

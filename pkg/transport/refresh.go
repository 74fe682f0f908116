package transport

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/quatton/aquakeys/pkg/api"
	"github.com/quatton/aquakeys/pkg/aqerr"
)

// ErrNoRefreshToken is the refresh error when no refresh token is stored.
// No network call is made in that case.
var ErrNoRefreshToken = aqerr.New(aqerr.CodeUnauthorized, errors.New("missing refresh token"))

// pendingRequest is a caller parked behind an in-flight refresh. Exactly one
// of resolve or reject is called, once.
type pendingRequest struct {
	resolve func(grant *api.TokenGrant)
	reject  func(err error)
}

type outcome struct {
	grant *api.TokenGrant
	err   error
}

// coordinator is the single-flight refresh state machine: Idle while
// refreshing is false, Refreshing while it is true. The first caller to see
// a 401 in Idle becomes the leader and performs the refresh; callers that
// arrive while Refreshing are queued and settled with the leader's result.
type coordinator struct {
	refresh func(ctx context.Context) (*api.TokenGrant, error)
	current func() string
	fail    func(ctx context.Context)
	expired func(ctx context.Context, cause error)
	metrics *Metrics
	logger  *slog.Logger

	mu         sync.Mutex
	refreshing bool
	queue      []pendingRequest
}

// renew returns an access token to replay a request with. rejected is the
// token the request was sent with.
func (c *coordinator) renew(ctx context.Context, rejected string) (string, error) {
	c.mu.Lock()
	if c.refreshing {
		ch := c.enqueue()
		c.mu.Unlock()
		grant, err := c.wait(ctx, ch)
		if err != nil {
			return "", err
		}
		return grant.AccessToken, nil
	}

	// a refresh finished after this request was sent
	if cur := c.current(); cur != "" && cur != rejected {
		c.mu.Unlock()
		return cur, nil
	}

	c.refreshing = true
	c.mu.Unlock()

	grant, err := c.lead(ctx)
	if err != nil {
		return "", err
	}
	return grant.AccessToken, nil
}

// join runs a refresh that was not triggered by a 401, or waits for the one
// already in flight.
func (c *coordinator) join(ctx context.Context) (*api.TokenGrant, error) {
	c.mu.Lock()
	if c.refreshing {
		ch := c.enqueue()
		c.mu.Unlock()
		return c.wait(ctx, ch)
	}
	c.refreshing = true
	c.mu.Unlock()

	return c.lead(ctx)
}

// enqueue must be called with mu held.
func (c *coordinator) enqueue() <-chan outcome {
	ch := make(chan outcome, 1)
	c.queue = append(c.queue, pendingRequest{
		resolve: func(grant *api.TokenGrant) { ch <- outcome{grant: grant} },
		reject:  func(err error) { ch <- outcome{err: err} },
	})
	return ch
}

func (c *coordinator) wait(ctx context.Context, ch <-chan outcome) (*api.TokenGrant, error) {
	c.metrics.waited()
	select {
	case o := <-ch:
		return o.grant, o.err
	case <-ctx.Done():
		return nil, aqerr.New(aqerr.CodeTransport, ctx.Err())
	}
}

// lead performs one refresh cycle. The cycle, including reading, saving or
// clearing the stored tokens and notifying expiry, runs to completion even
// if the leader's own context is cancelled.
func (c *coordinator) lead(ctx context.Context) (grant *api.TokenGrant, err error) {
	ctx = context.WithoutCancel(ctx)

	settled := false
	defer func() {
		if settled {
			return
		}
		if r := recover(); r != nil {
			c.settle(nil, aqerr.Newf(aqerr.CodeRefreshFailed, "token refresh panicked: %v", r))
			panic(r)
		}
	}()

	c.logger.Debug("refreshing access token")
	grant, err = c.refresh(ctx)

	if err != nil {
		c.logger.Warn("token refresh failed, clearing session", "error", err)
		c.metrics.refreshed(refreshOutcome(err))
		c.fail(ctx)
		c.settle(nil, err)
		settled = true
		c.expired(ctx, err)
		return nil, err
	}

	c.metrics.refreshed("success")
	c.settle(grant, nil)
	settled = true
	return grant, nil
}

// settle returns the coordinator to Idle and drains the whole queue with
// one outcome.
func (c *coordinator) settle(grant *api.TokenGrant, err error) {
	c.mu.Lock()
	pending := c.queue
	c.queue = nil
	c.refreshing = false
	c.mu.Unlock()

	for _, p := range pending {
		if err != nil {
			p.reject(err)
		} else {
			p.resolve(grant)
		}
	}
}

func refreshOutcome(err error) string {
	if errors.Is(err, ErrNoRefreshToken) {
		return "missing_token"
	}
	return "failure"
}

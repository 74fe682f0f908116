// Package session owns the lifecycle of the signed-in session: restoring it
// from a persisted refresh token at startup, storing the tokens issued by a
// sign-in, and tearing everything down on logout or when a token refresh
// fails for good.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/quatton/aquakeys/pkg/api"
	"github.com/quatton/aquakeys/pkg/aqlog"
)

// Credentials is the token store the controller manages.
type Credentials interface {
	AccessToken() string
	RefreshToken(ctx context.Context) (string, error)
	Save(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
}

// Refresher exchanges the stored refresh token for a new grant without
// racing any other refresh. *transport.Client implements it.
type Refresher interface {
	Resume(ctx context.Context) (*api.TokenGrant, error)
}

// ExpiredFunc is told that the session ended without the user asking, so
// the front end can send them back to sign-in.
type ExpiredFunc func(ctx context.Context, cause error)

var ErrIncompleteGrant = errors.New("session: grant is missing a token")

type Controller struct {
	creds     Credentials
	refresher Refresher
	logger    *slog.Logger

	mu        sync.RWMutex
	user      *api.User
	onExpired []ExpiredFunc
}

func NewController(creds Credentials, refresher Refresher, logger *slog.Logger) *Controller {
	return &Controller{
		creds:     creds,
		refresher: refresher,
		logger:    aqlog.OrDiscard(logger),
	}
}

// Restore brings back the session persisted by a previous run. Without a
// stored refresh token it returns at once and makes no network call. If the
// exchange fails for any reason the stored credentials are removed. Only
// failures of the local store are returned as errors. It may run while
// requests are in flight: the exchange shares the client's single refresh.
func (c *Controller) Restore(ctx context.Context) error {
	rt, err := c.creds.RefreshToken(ctx)
	if err != nil {
		return err
	}
	if rt == "" {
		c.logger.Debug("no stored session")
		return nil
	}

	grant, err := c.refresher.Resume(ctx)
	if err != nil {
		c.logger.Info("stored session could not be restored", "error", err)
		return c.Logout(ctx)
	}
	if err := c.Login(ctx, *grant); err != nil {
		_ = c.Logout(ctx)
		return err
	}
	c.logger.Debug("session restored")
	return nil
}

// Login stores the tokens and user of a successful sign-in.
func (c *Controller) Login(ctx context.Context, grant api.TokenGrant) error {
	if grant.AccessToken == "" || grant.RefreshToken == "" {
		return ErrIncompleteGrant
	}
	if err := c.creds.Save(ctx, grant.AccessToken, grant.RefreshToken); err != nil {
		return err
	}

	c.mu.Lock()
	c.user = grant.User
	c.mu.Unlock()
	return nil
}

// Logout forgets the access token, the persisted refresh token and the
// current user. Calling it when already logged out is a no-op.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()

	return c.creds.Clear(ctx)
}

// Expire is the forced-logout path taken when a token refresh fails. It logs
// out and then notifies the OnExpired handlers.
func (c *Controller) Expire(ctx context.Context, cause error) {
	if err := c.Logout(ctx); err != nil {
		c.logger.Warn("logout after expired session failed", "error", err)
	}

	c.mu.RLock()
	handlers := append([]ExpiredFunc(nil), c.onExpired...)
	c.mu.RUnlock()

	for _, fn := range handlers {
		fn(ctx, cause)
	}
}

// OnExpired registers fn to run after a forced logout.
func (c *Controller) OnExpired(fn ExpiredFunc) {
	c.mu.Lock()
	c.onExpired = append(c.onExpired, fn)
	c.mu.Unlock()
}

// Active reports whether an access token is held.
func (c *Controller) Active() bool {
	return c.creds.AccessToken() != ""
}

// User returns the signed-in user, or nil.
func (c *Controller) User() *api.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Package transport is the authenticated request gateway of the SDK. Every
// API call goes through Client.Send, which attaches client, device and bearer
// headers and recovers from an expired access token by refreshing it once
// and replaying the request. Concurrent 401s share a single refresh call.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/quatton/aquakeys/pkg/api"
	"github.com/quatton/aquakeys/pkg/aqerr"
	"github.com/quatton/aquakeys/pkg/aqlog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
)

const (
	// DefaultClientID identifies this application to the API.
	DefaultClientID = "162ebb94-cc91-459e-8108-ca16be52e940"

	HeaderClientID = "X-Client-Id"
	HeaderDeviceID = "X-Device-Id"

	maxResponseBytes = 10 << 20
)

// Credentials is the token state the client reads and, while refreshing,
// writes. *credentials.Store implements it.
type Credentials interface {
	AccessToken() string
	RefreshToken(ctx context.Context) (string, error)
	Save(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
}

// DeviceIdentity supplies the X-Device-Id header. *device.Identity implements it.
type DeviceIdentity interface {
	ID(ctx context.Context) (string, error)
}

// Doer is the subset of *http.Client the transport needs.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// ExpiredFunc is called after a refresh failed and the credentials were
// cleared. cause is the refresh error.
type ExpiredFunc func(ctx context.Context, cause error)

type Config struct {
	BaseURL  string
	ClientID string
	Timeout  time.Duration
}

// Request describes one API call. Body is JSON-encoded once, so a replay
// after a token refresh sends the same bytes.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

type Client struct {
	baseURL  string
	clientID string

	http    Doer
	creds   Credentials
	device  DeviceIdentity
	breaker *gobreaker.CircuitBreaker[*http.Response]
	metrics *Metrics
	logger  *slog.Logger

	coord *coordinator

	mu        sync.RWMutex
	onExpired []ExpiredFunc
}

type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithBreaker guards outgoing calls with a circuit breaker.
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Client) { c.breaker = newBreaker(cfg, c) }
}

// New creates a Client for cfg.BaseURL.
func New(cfg Config, creds Credentials, dev DeviceIdentity, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	if creds == nil || dev == nil {
		return nil, errors.New("transport: credentials and device identity are required")
	}

	c := &Client{
		baseURL:  base.String(),
		clientID: cfg.ClientID,
		creds:    creds,
		device:   dev,
	}
	if c.clientID == "" {
		c.clientID = DefaultClientID
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.http = &http.Client{Timeout: timeout}
	}
	c.logger = aqlog.OrDiscard(c.logger)

	c.coord = &coordinator{
		refresh: c.refreshAccessToken,
		current: creds.AccessToken,
		fail:    c.clearCredentials,
		expired: c.notifyExpired,
		metrics: c.metrics,
		logger:  c.logger,
	}
	return c, nil
}

// OnSessionExpired registers fn to run after a failed refresh has cleared the
// stored credentials.
func (c *Client) OnSessionExpired(fn ExpiredFunc) {
	c.mu.Lock()
	c.onExpired = append(c.onExpired, fn)
	c.mu.Unlock()
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ClientID returns the value sent as X-Client-Id.
func (c *Client) ClientID() string { return c.clientID }

// Send performs req. Any response, including 4xx and 5xx, is returned as is
// with a nil error, except a 401: the access token is refreshed and the
// request replayed once. A 401 on the replay is a terminal CodeUnauthorized
// error. Network failures are CodeTransport errors.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s %s body: %w", req.Method, req.Path, err)
	}

	token := c.creds.AccessToken()
	resp, err := c.roundTrip(ctx, req, body, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isRefreshPath(req.Path) {
		return resp, nil
	}

	c.logger.Debug("access token rejected", "method", req.Method, "path", req.Path)
	fresh, err := c.coord.renew(ctx, token)
	if err != nil {
		return nil, err
	}

	c.metrics.replayed()
	resp, err = c.roundTrip(ctx, req, body, fresh)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, aqerr.Newf(aqerr.CodeUnauthorized, "%s %s: still unauthorized after token refresh", req.Method, req.Path)
	}
	return resp, nil
}

// Refresh exchanges refreshToken for a new token pair. It does not touch the
// stored credentials; the caller decides what to do with the grant.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenGrant, error) {
	resp, err := c.Send(ctx, &Request{
		Method: http.MethodPost,
		Path:   api.RefreshTokenPath,
		Body:   api.RefreshTokenRequest{RefreshToken: refreshToken},
	})
	if err != nil {
		return nil, aqerr.New(aqerr.CodeRefreshFailed, err)
	}

	env, err := api.DecodeEnvelope[*api.TokenGrant](resp.StatusCode, resp.Body)
	if err != nil {
		return nil, aqerr.New(aqerr.CodeRefreshFailed, err)
	}
	if !resp.OK() || !env.Succeeded {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, aqerr.Newf(aqerr.CodeRefreshFailed, "refresh rejected (status %d): %s", resp.StatusCode, msg)
	}
	if env.Data == nil || env.Data.AccessToken == "" || env.Data.RefreshToken == "" {
		return nil, aqerr.Newf(aqerr.CodeRefreshFailed, "refresh response is missing tokens")
	}
	return env.Data, nil
}

// Resume exchanges the stored refresh token for a new grant on the same
// single-flight path a 401 takes, so it never puts a second refresh on the
// wire. If another refresh is in flight its result is shared. A failure
// clears the credentials and runs the OnSessionExpired handlers.
func (c *Client) Resume(ctx context.Context) (*api.TokenGrant, error) {
	return c.coord.join(ctx)
}

// refreshAccessToken is the leader's side of a refresh cycle. ctx is already
// detached from the leader's cancellation.
func (c *Client) refreshAccessToken(ctx context.Context) (*api.TokenGrant, error) {
	rt, err := c.creds.RefreshToken(ctx)
	if err != nil {
		return nil, aqerr.New(aqerr.CodeRefreshFailed, err)
	}
	if rt == "" {
		return nil, ErrNoRefreshToken
	}

	grant, err := c.Refresh(ctx, rt)
	if err != nil {
		return nil, err
	}
	if err := c.creds.Save(ctx, grant.AccessToken, grant.RefreshToken); err != nil {
		return nil, aqerr.New(aqerr.CodeRefreshFailed, err)
	}
	return grant, nil
}

func (c *Client) clearCredentials(ctx context.Context) {
	if err := c.creds.Clear(ctx); err != nil {
		c.logger.Warn("failed to clear credentials", "error", err)
	}
}

func (c *Client) notifyExpired(ctx context.Context, cause error) {
	c.mu.RLock()
	handlers := append([]ExpiredFunc(nil), c.onExpired...)
	c.mu.RUnlock()

	for _, fn := range handlers {
		fn(ctx, cause)
	}
}

func (c *Client) roundTrip(ctx context.Context, req *Request, body []byte, token string) (*Response, error) {
	httpReq, err := c.newHTTPRequest(ctx, req, body, token)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.do(httpReq)
	if err != nil {
		c.metrics.observe(0)
		return nil, aqerr.New(aqerr.CodeTransport, fmt.Errorf("%s %s: %w", req.Method, req.Path, err))
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		c.metrics.observe(0)
		return nil, aqerr.New(aqerr.CodeTransport, fmt.Errorf("%s %s: reading body: %w", req.Method, req.Path, err))
	}

	c.metrics.observe(httpResp.StatusCode)
	c.logger.Debug("api call",
		"method", req.Method,
		"path", req.Path,
		"status", httpResp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       raw,
	}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request, body []byte, token string) (*http.Request, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var rdr io.Reader = http.NoBody
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", req.Method, req.Path, err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	deviceID, err := c.device.ID(ctx)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderClientID, c.clientID)
	httpReq.Header.Set(HeaderDeviceID, deviceID)
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(httpReq)
	}
	return httpReq, nil
}

func encodeBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(v)
	}
}

func isRefreshPath(path string) bool {
	return path == api.RefreshTokenPath
}

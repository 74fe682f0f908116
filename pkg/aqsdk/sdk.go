package aqsdk

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quatton/aquakeys/pkg/api"
	"github.com/quatton/aquakeys/pkg/aqlog"
	"github.com/quatton/aquakeys/pkg/credentials"
	"github.com/quatton/aquakeys/pkg/device"
	"github.com/quatton/aquakeys/pkg/kv"
	"github.com/quatton/aquakeys/pkg/services"
	"github.com/quatton/aquakeys/pkg/session"
	"github.com/quatton/aquakeys/pkg/transport"
)

// Sdk wires the store, credentials, device identity, transport, session
// controller and endpoint services for one API base URL, so commands don't
// need to assemble them themselves.
type Sdk struct {
	Config      *Config
	Store       kv.Store
	Credentials *credentials.Store
	Device      *device.Identity
	Client      *transport.Client
	Session     *session.Controller
	Auth        *services.AuthService
	Profiles    *services.ProfileService
	Metrics     *transport.Metrics
}

type options struct {
	store      kv.Store
	logger     *slog.Logger
	httpClient transport.Doer
	registerer prometheus.Registerer
}

type Option func(*options)

// WithStore uses s instead of the backend named in the config.
func WithStore(s kv.Store) Option {
	return func(o *options) { o.store = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithHTTPClient(d transport.Doer) Option {
	return func(o *options) { o.httpClient = d }
}

// WithRegisterer registers the transport metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// ErrSignInFailed is returned by Login when the server accepted the call but
// did not sign the user in. The envelope carries the server's message.
var ErrSignInFailed = errors.New("sign-in failed")

// New builds an Sdk from cfg. The session is not restored; call
// Session.Restore before issuing authenticated calls.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Sdk, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := aqlog.OrDiscard(o.logger)

	store := o.store
	if store == nil {
		var err error
		store, err = kv.Open(ctx, kv.Options{
			Backend:   cfg.Store,
			Namespace: kv.Namespace(cfg.BaseURL),
			FilePath:  cfg.StorePath,
			Valkey:    cfg.Valkey,
		})
		if err != nil {
			return nil, err
		}
	}

	creds := credentials.NewStore(store)
	dev := device.NewIdentity(store)
	metrics := transport.NewMetrics(o.registerer)

	topts := []transport.Option{
		transport.WithLogger(logger.With("component", "transport")),
		transport.WithMetrics(metrics),
	}
	if o.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(o.httpClient))
	}
	if cfg.Breaker.Enabled {
		bc := transport.DefaultBreakerConfig("aquakeys-api")
		if cfg.Breaker.FailureRatio > 0 {
			bc.FailureRatio = cfg.Breaker.FailureRatio
		}
		if cfg.Breaker.MinRequests > 0 {
			bc.MinRequests = cfg.Breaker.MinRequests
		}
		if cfg.Breaker.Timeout > 0 {
			bc.Timeout = cfg.Breaker.Timeout
		}
		topts = append(topts, transport.WithBreaker(bc))
	}

	client, err := transport.New(transport.Config{
		BaseURL:  cfg.BaseURL,
		ClientID: cfg.ClientID,
		Timeout:  cfg.Timeout,
	}, creds, dev, topts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	sess := session.NewController(creds, client, logger.With("component", "session"))
	client.OnSessionExpired(sess.Expire)

	return &Sdk{
		Config:      cfg,
		Store:       store,
		Credentials: creds,
		Device:      dev,
		Client:      client,
		Session:     sess,
		Auth:        services.NewAuthService(client),
		Profiles:    services.NewProfileService(client),
		Metrics:     metrics,
	}, nil
}

// Login signs in and, when the server accepts, starts the session. A
// rejected sign-in returns the envelope together with ErrSignInFailed.
func (s *Sdk) Login(ctx context.Context, email, password string) (*api.Envelope[*api.TokenGrant], error) {
	env, err := s.Auth.SignIn(ctx, api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if !env.Succeeded || env.Data == nil {
		return env, ErrSignInFailed
	}
	if err := s.Session.Login(ctx, *env.Data); err != nil {
		return env, err
	}
	return env, nil
}

// Logout ends the session locally.
func (s *Sdk) Logout(ctx context.Context) error {
	return s.Session.Logout(ctx)
}

// Close releases the underlying store.
func (s *Sdk) Close() error {
	return s.Store.Close()
}

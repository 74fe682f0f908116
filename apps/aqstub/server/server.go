// Package server assembles the stub API: a chi router with the huma
// operations for authentication and profiles mounted on it.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/quatton/aquakeys/apps/aqstub/config"
	"github.com/quatton/aquakeys/apps/aqstub/routes"
	"github.com/quatton/aquakeys/apps/aqstub/services/accounts"
	"github.com/quatton/aquakeys/apps/aqstub/services/iam"
	"github.com/quatton/aquakeys/apps/aqstub/services/tokens"
	"github.com/quatton/aquakeys/pkg/kv"
)

type Options struct {
	// Now replaces the clock used for token expiry.
	Now func() time.Time
	// Store holds refresh tokens. Defaults to a MemoryStore.
	Store  kv.Store
	Logger *slog.Logger
	// RequestLog enables chi's per-request logging.
	RequestLog bool
}

type Server struct {
	Router   *chi.Mux
	API      huma.API
	Accounts *accounts.Service
	store    kv.Store
}

func New(cfg *config.EnvConfig, opts Options) *Server {
	store := opts.Store
	if store == nil {
		store = kv.NewMemoryStore()
	}

	issuer := tokens.NewIssuer(cfg.JWTSecret, cfg.Issuer, cfg.AccessTTL(), opts.Now)
	svc := accounts.NewService(issuer, store, accounts.Options{
		ClientID:              cfg.ClientID,
		RefreshTTL:            cfg.RefreshTTL(),
		RequireConfirmedEmail: cfg.RequireConfirmedEmail,
		Now:                   opts.Now,
		Logger:                opts.Logger,
	})

	router := chi.NewMux()
	if opts.RequestLog {
		router.Use(middleware.Logger)
	}
	router.Use(middleware.Recoverer)
	router.Use(iam.RequireClientID(cfg.ClientID))

	hcfg := huma.DefaultConfig("aquakeys stub API", "1.0.0")
	hcfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "Access token from sign-in or refresh-token",
		},
	}

	hapi := humachi.New(router, hcfg)
	hapi.UseMiddleware(iam.Middleware(svc))
	routes.RegisterRoutes(hapi, svc)

	return &Server{Router: router, API: hapi, Accounts: svc, store: store}
}

// OpenStore picks the refresh-token store named by the environment.
func OpenStore(ctx context.Context, cfg *config.EnvConfig) (kv.Store, error) {
	if cfg.ValkeyAddr == "" {
		return kv.NewMemoryStore(), nil
	}
	store, err := kv.NewValkeyStore(ctx, kv.ValkeyConfig{
		Addr:     cfg.ValkeyAddr,
		Password: cfg.ValkeyPassword,
		DB:       cfg.ValkeyDB,
	}, "stub")
	if err != nil {
		return nil, fmt.Errorf("connecting to valkey: %w", err)
	}
	return store, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) Close() error {
	return s.store.Close()
}

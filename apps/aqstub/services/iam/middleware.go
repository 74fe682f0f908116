// Package iam resolves who is calling the stub API.
package iam

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/aquakeys/apps/aqstub/schemas"
	"github.com/quatton/aquakeys/pkg/transport"
)

type principalKey struct{}

// Authenticator maps a bearer token to a user id.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// Middleware attaches the caller's user id to the context when the request
// carries a valid bearer token. Handlers decide whether one is required.
func Middleware(auth Authenticator) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if token, ok := strings.CutPrefix(ctx.Header("Authorization"), "Bearer "); ok && token != "" {
			if userID, err := auth.Authenticate(token); err == nil {
				ctx = huma.WithValue(ctx, principalKey{}, userID)
			}
		}
		next(ctx)
	}
}

// UserID returns the authenticated caller, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey{}).(string)
	return id, ok && id != ""
}

// RequireClientID rejects API calls whose X-Client-Id header does not match
// clientID. Paths outside /api/ (docs, health) are not checked.
func RequireClientID(clientID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") && r.Header.Get(transport.HeaderClientID) != clientID {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(schemas.Failed(http.StatusBadRequest, "Invalid client").Body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

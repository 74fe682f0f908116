// Package credentials holds the session's bearer credentials. The access
// token lives in memory for the lifetime of the process; the refresh token is
// written to a durable kv.Store so a session can be restored after restart.
package credentials

import (
	"context"
	"errors"
	"sync"

	"github.com/quatton/aquakeys/pkg/aqerr"
	"github.com/quatton/aquakeys/pkg/kv"
)

// RefreshTokenKey is the durable key the refresh token is stored under.
const RefreshTokenKey = "refreshToken"

// Store is safe for concurrent use.
type Store struct {
	durable kv.Store

	mu     sync.RWMutex
	access string
}

func NewStore(durable kv.Store) *Store {
	return &Store{durable: durable}
}

// AccessToken returns the in-memory access token, or "" when none is held.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// SetAccessToken replaces the in-memory access token only.
func (s *Store) SetAccessToken(token string) {
	s.mu.Lock()
	s.access = token
	s.mu.Unlock()
}

// RefreshToken reads the persisted refresh token. A missing token is not an
// error; it is reported as "".
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	v, err := s.durable.Get(ctx, RefreshTokenKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return "", nil
		}
		return "", aqerr.New(aqerr.CodeStore, err)
	}
	return string(v), nil
}

// Save stores a freshly issued token pair. The refresh token is persisted
// before the access token becomes visible.
func (s *Store) Save(ctx context.Context, access, refresh string) error {
	if refresh != "" {
		if err := s.durable.Set(ctx, RefreshTokenKey, []byte(refresh)); err != nil {
			return aqerr.New(aqerr.CodeStore, err)
		}
	}
	s.SetAccessToken(access)
	return nil
}

// Clear drops the access token and removes the persisted refresh token. It is
// safe to call when nothing is stored. The access token is dropped even when
// the durable delete fails.
func (s *Store) Clear(ctx context.Context) error {
	s.SetAccessToken("")
	if err := s.durable.Delete(ctx, RefreshTokenKey); err != nil {
		return aqerr.New(aqerr.CodeStore, err)
	}
	return nil
}

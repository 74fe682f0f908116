// Package kv provides the durable key-value store the client keeps its
// refresh token and device identifier in. Backends can be swapped (OS
// keyring, YAML file, Valkey/Redis, in-memory) without changing the
// credential or device code.
package kv

import (
	"context"
	"strings"
)

// Store defines a minimal key-value interface keyed by string.
type Store interface {
	// Set stores a value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Get retrieves a value by key. Returns ErrNotFound if key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key. Returns nil if key doesn't exist.
	Delete(ctx context.Context, key string) error

	// SetNX sets a value only if the key doesn't exist.
	// Returns true if the key was set, false if it already existed.
	SetNX(ctx context.Context, key string, value []byte) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}

// Namespace converts a base URL into a stable namespace so tokens issued by
// different servers never collide. Trailing slashes and case are ignored, so
// https://example.com/ and https://Example.com map to the same namespace.
func Namespace(baseURL string) string {
	s := strings.TrimSpace(baseURL)
	s = strings.TrimRight(s, "/")
	s = strings.ToLower(s)
	if s == "" {
		return "default"
	}
	return s
}

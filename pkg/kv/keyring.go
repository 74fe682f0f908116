package kv

import (
	"context"
	"errors"
	"sync"

	"github.com/zalando/go-keyring"
)

const keyringService = "aquakeys"

// KeyringStore stores values in the OS keyring (macOS Keychain, Secret
// Service, Windows Credential Manager). Entries are named
// "<namespace>/<key>" under the "aquakeys" service.
type KeyringStore struct {
	namespace string

	// keyring has no compare-and-set, SetNX is only atomic within a process.
	mu sync.Mutex
}

// NewKeyringStore returns a store whose entries are scoped to namespace,
// usually Namespace(baseURL).
func NewKeyringStore(namespace string) *KeyringStore {
	return &KeyringStore{namespace: namespace}
}

func (s *KeyringStore) user(key string) string {
	return s.namespace + "/" + key
}

func (s *KeyringStore) Set(_ context.Context, key string, value []byte) error {
	return keyring.Set(keyringService, s.user(key), string(value))
}

func (s *KeyringStore) Get(_ context.Context, key string) ([]byte, error) {
	v, err := keyring.Get(keyringService, s.user(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(v), nil
}

func (s *KeyringStore) Delete(_ context.Context, key string) error {
	err := keyring.Delete(keyringService, s.user(key))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func (s *KeyringStore) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.Get(ctx, key); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err := s.Set(ctx, key, value); err != nil {
		return false, err
	}
	return true, nil
}

func (s *KeyringStore) Close() error { return nil }

var _ Store = (*KeyringStore)(nil)

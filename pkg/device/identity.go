// Package device provides the installation's stable device identifier sent
// with every request as X-Device-Id.
package device

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/quatton/aquakeys/pkg/aqerr"
	"github.com/quatton/aquakeys/pkg/kv"
)

// IDKey is the durable key the device identifier is stored under.
const IDKey = "deviceId"

// Identity lazily creates and caches the device identifier. Once a value is
// persisted it is never regenerated.
type Identity struct {
	store kv.Store
	newID func() string

	mu sync.Mutex
	id string
}

func NewIdentity(store kv.Store) *Identity {
	return &Identity{store: store, newID: uuid.NewString}
}

// ID returns the persisted identifier, generating and storing one on first use.
func (i *Identity) ID(ctx context.Context) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.id != "" {
		return i.id, nil
	}

	id, err := i.load(ctx)
	if err != nil {
		return "", aqerr.New(aqerr.CodeStore, err)
	}
	i.id = id
	return id, nil
}

func (i *Identity) load(ctx context.Context) (string, error) {
	v, err := i.store.Get(ctx, IDKey)
	if err == nil && len(v) > 0 {
		return string(v), nil
	}
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return "", fmt.Errorf("reading device id: %w", err)
	}

	candidate := i.newID()
	ok, err := i.store.SetNX(ctx, IDKey, []byte(candidate))
	if err != nil {
		return "", fmt.Errorf("persisting device id: %w", err)
	}
	if ok {
		return candidate, nil
	}

	// another process persisted one first
	v, err = i.store.Get(ctx, IDKey)
	if err != nil {
		return "", fmt.Errorf("reading device id: %w", err)
	}
	return string(v), nil
}

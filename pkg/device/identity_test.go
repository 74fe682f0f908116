package device

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/quatton/aquakeys/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGeneratedOnceAndPersisted(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	id, err := NewIdentity(store).ID(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "device id should be a UUID")

	again, err := NewIdentity(store).ID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, again, "a persisted id must be reused after restart")
}

func TestIDReusesExistingValue(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, IDKey, []byte("existing-device")))

	id, err := NewIdentity(store).ID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "existing-device", id)
}

func TestIDConcurrentInstancesAgree(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	const n = 8
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := NewIdentity(store).ID(ctx)
			assert.NoError(t, err)
			ids[i] = id
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

type racingStore struct {
	*kv.MemoryStore
	winner string
}

func (s *racingStore) SetNX(ctx context.Context, key string, _ []byte) (bool, error) {
	_ = s.MemoryStore.Set(ctx, key, []byte(s.winner))
	return false, nil
}

func TestIDAdoptsRaceWinner(t *testing.T) {
	store := &racingStore{MemoryStore: kv.NewMemoryStore(), winner: "other-process"}

	id, err := NewIdentity(store).ID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "other-process", id)
}

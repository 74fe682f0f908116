package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyStore implements Store using Valkey/Redis as the backend. Keys are
// prefixed with "aquakeys:<namespace>:" so several servers or devices can
// share one database.
type ValkeyStore struct {
	client *redis.Client
	prefix string
}

// ValkeyConfig holds configuration for connecting to Valkey.
type ValkeyConfig struct {
	Addr     string `mapstructure:"addr"`     // host:port
	Password string `mapstructure:"password"` // optional
	DB       int    `mapstructure:"db"`       // database number
}

// NewValkeyStore creates a new ValkeyStore with the given configuration.
func NewValkeyStore(ctx context.Context, cfg ValkeyConfig, namespace string) (*ValkeyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return newValkeyStore(client, namespace), nil
}

func newValkeyStore(client *redis.Client, namespace string) *ValkeyStore {
	return &ValkeyStore{client: client, prefix: "aquakeys:" + namespace + ":"}
}

func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *ValkeyStore) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+key, value, 0).Result()
}

// Close closes the connection to Valkey.
func (s *ValkeyStore) Close() error {
	return s.client.Close()
}

// Ensure ValkeyStore implements Store.
var _ Store = (*ValkeyStore)(nil)

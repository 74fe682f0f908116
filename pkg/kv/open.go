package kv

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendKeyring = "keyring"
	BackendFile    = "file"
	BackendValkey  = "valkey"
	BackendMemory  = "memory"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend   string
	Namespace string
	FilePath  string
	Valkey    ValkeyConfig
}

// Open constructs the backend named in opts.Backend. An empty name selects
// the OS keyring.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendKeyring:
		return NewKeyringStore(opts.Namespace), nil
	case BackendFile:
		if opts.FilePath == "" {
			return nil, fmt.Errorf("kv: file backend requires a path")
		}
		return NewFileStore(opts.FilePath, opts.Namespace), nil
	case BackendValkey:
		return NewValkeyStore(ctx, opts.Valkey, opts.Namespace)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

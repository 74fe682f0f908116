package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore persists values in a single YAML document, one map per
// namespace. It is the fallback for hosts without a usable keyring. The file
// is written with 0600 permissions and replaced atomically on every change.
type FileStore struct {
	path      string
	namespace string

	mu sync.Mutex
}

type fileDocument map[string]map[string]string

// NewFileStore returns a store backed by the file at path. The file and its
// parent directory are created on first write.
func NewFileStore(path, namespace string) *FileStore {
	return &FileStore{path: path, namespace: namespace}
}

func (s *FileStore) load() (fileDocument, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileDocument{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	doc := fileDocument{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *FileStore) save(doc fileDocument) error {
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if doc[s.namespace] == nil {
		doc[s.namespace] = map[string]string{}
	}
	doc[s.namespace][key] = string(value)
	return s.save(doc)
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	v, ok := doc[s.namespace][key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc[s.namespace][key]; !ok {
		return nil
	}
	delete(doc[s.namespace], key)
	if len(doc[s.namespace]) == 0 {
		delete(doc, s.namespace)
	}
	return s.save(doc)
}

func (s *FileStore) SetNX(_ context.Context, key string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return false, err
	}
	if _, ok := doc[s.namespace][key]; ok {
		return false, nil
	}
	if doc[s.namespace] == nil {
		doc[s.namespace] = map[string]string{}
	}
	doc[s.namespace][key] = string(value)
	return true, s.save(doc)
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)

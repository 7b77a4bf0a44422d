package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store is a small persistent key-value store for JSON documents such as the
// OAuth token. Unlike the cache it has no TTL.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	GetJSON(key string, v interface{}) bool
	SetJSON(key string, v interface{}) error
}

// LocalStore is a file-based implementation of Store.
type LocalStore struct {
	dir string
	mu  sync.RWMutex
}

// NewLocal creates a new LocalStore with the specified directory.
func NewLocal(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

// Get retrieves a value by key. Returns the value and true if found,
// or nil and false if not found.
func (s *LocalStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.keyPath(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a value with the given key. Values may hold credentials, so the
// file is only readable by the owner.
func (s *LocalStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return os.WriteFile(s.keyPath(key), value, 0600)
}

// GetJSON retrieves and unmarshals a JSON value.
func (s *LocalStore) GetJSON(key string, v interface{}) bool {
	return getJSON(s, key, v)
}

// SetJSON marshals and stores a value as JSON.
func (s *LocalStore) SetJSON(key string, v interface{}) error {
	return setJSON(s, key, v)
}

func (s *LocalStore) keyPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func getJSON(s Store, key string, v interface{}) bool {
	data, ok := s.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func setJSON(s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, data)
}

package store

import (
	"context"
	"io"
	"sync"
	"time"

	"cloud.google.com/go/storage"
)

const gcsTimeout = 30 * time.Second

// GCSStore is a Cloud Storage-backed implementation of Store. It lets the
// server keep its OAuth token across restarts on ephemeral hosts.
type GCSStore struct {
	client *storage.Client
	bucket string
	mu     sync.RWMutex
}

// NewGCS creates a new GCSStore with the specified bucket.
func NewGCS(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSStore{
		client: client,
		bucket: bucket,
	}, nil
}

// Get retrieves a value by key. Returns the value and true if found,
// or nil and false if not found.
func (s *GCSStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), gcsTimeout)
	defer cancel()

	reader, err := s.client.Bucket(s.bucket).Object(s.keyPath(key)).NewReader(ctx)
	if err != nil {
		return nil, false
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a value with the given key.
func (s *GCSStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), gcsTimeout)
	defer cancel()

	writer := s.client.Bucket(s.bucket).Object(s.keyPath(key)).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(value); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

// GetJSON retrieves and unmarshals a JSON value.
func (s *GCSStore) GetJSON(key string, v interface{}) bool {
	return getJSON(s, key, v)
}

// SetJSON marshals and stores a value as JSON.
func (s *GCSStore) SetJSON(key string, v interface{}) error {
	return setJSON(s, key, v)
}

// Close closes the GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) keyPath(key string) string {
	return key + ".json"
}

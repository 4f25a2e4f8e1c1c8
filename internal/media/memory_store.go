package media

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps uploads in a map. It backs tests and local development
// without an object store.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(ctx context.Context, folder string, body io.Reader, size int64, contentType string) (string, error) {
	if _, err := DetectKind(contentType); err != nil {
		return "", err
	}

	ext, err := Extension(contentType)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("media: read body: %w", err)
	}

	url := fmt.Sprintf("memory://%s/%s%s", folder, uuid.NewString(), ext)

	s.mu.Lock()
	s.objects[url] = data
	s.mu.Unlock()

	return url, nil
}

func (s *MemoryStore) Remove(ctx context.Context, objectURL string) error {
	s.mu.Lock()
	delete(s.objects, objectURL)
	s.mu.Unlock()
	return nil
}

// Object returns the stored bytes for a URL, if present.
func (s *MemoryStore) Object(objectURL string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[objectURL]
	return data, ok
}

// Len reports how many objects are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

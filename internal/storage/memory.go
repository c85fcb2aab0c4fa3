package storage

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// Object is a blob held by MemoryStore.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps objects in process memory. It backs the "memory" storage backend used in development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	urls    urlScheme
}

// NewMemoryStore creates an empty store whose URLs start with baseURL/bucket/.
func NewMemoryStore(baseURL, bucket string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]Object),
		urls:    urlScheme{baseURL: baseURL, bucket: bucket},
	}
}

func (s *MemoryStore) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if path == "" {
		return "", goerr.New("object path is empty")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = Object{Data: buf, ContentType: contentType}
	return s.urls.publicURL(path), nil
}

func (s *MemoryStore) Delete(ctx context.Context, url string) error {
	path, ok := s.urls.objectPath(url)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

// Get returns the object stored at url.
func (s *MemoryStore) Get(url string) (Object, bool) {
	path, ok := s.urls.objectPath(url)
	if !ok {
		return Object{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	return obj, ok
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

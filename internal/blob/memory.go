package blob

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and the memory backend.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	data    []byte
	modTime time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memObject)}
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	k, err := CleanKey(key)
	if err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[k] = memObject{data: buf, modTime: time.Now()}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Object, error) {
	k, err := CleanKey(key)
	if err != nil {
		return Object{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[k]
	if !ok {
		return Object{}, ErrNotFound
	}
	return Object{Key: k, ContentType: ContentType(o.data), Data: o.data}, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	k, err := CleanKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[k]; !ok {
		return ErrNotFound
	}
	delete(s.objects, k)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Info, 0, len(s.objects))
	for k, o := range s.objects {
		out = append(out, Info{Key: k, Size: int64(len(o.data)), ModTime: o.modTime})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Age backdates an object; the orphan sweep tests rely on it.
func (s *MemoryStore) Age(key string, by time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.objects[key]; ok {
		o.modTime = o.modTime.Add(-by)
		s.objects[key] = o
	}
}

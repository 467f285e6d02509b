package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/models"
)

// MemoryStore is a concurrency-safe in-memory implementation of Store.
type MemoryStore struct {
	mu sync.RWMutex

	nextID  int64
	history map[int64]models.HistoryEntry
	notes   map[int64]models.Note
	photos  map[int64]models.Photo

	// now is swappable so tests can control ordering.
	now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		history: make(map[int64]models.HistoryEntry),
		notes:   make(map[int64]models.Note),
		photos:  make(map[int64]models.Photo),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the timestamp source.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) AddHistory(_ context.Context, city, description string) (models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := models.HistoryEntry{ID: s.id(), City: city, Description: description, SearchedAt: s.now()}
	s.history[e.ID] = e
	return e, nil
}

func (s *MemoryStore) ListHistory(_ context.Context) ([]models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HistoryEntry, 0, len(s.history))
	for _, e := range s.history {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].SearchedAt, out[i].ID, out[j].SearchedAt, out[j].ID)
	})
	return out, nil
}

func (s *MemoryStore) DeleteHistory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.history[id]; !ok {
		return ErrNotFound
	}
	delete(s.history, id)
	return nil
}

func (s *MemoryStore) AddNote(_ context.Context, city, text string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := models.Note{ID: s.id(), City: city, Text: text, CreatedAt: s.now()}
	s.notes[n.ID] = n
	return n, nil
}

func (s *MemoryStore) ListNotes(_ context.Context) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *MemoryStore) ListCityNotes(_ context.Context, city string) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := CityKey(city)
	out := make([]models.Note, 0)
	for _, n := range s.notes {
		if CityKey(n.City) == key {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *MemoryStore) UpdateNote(_ context.Context, id int64, text string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return models.Note{}, ErrNotFound
	}
	n.Text = text
	s.notes[id] = n
	return n, nil
}

func (s *MemoryStore) DeleteNote(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

func (s *MemoryStore) AddPhoto(_ context.Context, city, blobKey, imageURL string) (models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.Photo{ID: s.id(), City: city, BlobKey: blobKey, ImageURL: imageURL, UploadedAt: s.now()}
	s.photos[p.ID] = p
	return p, nil
}

func (s *MemoryStore) ListCityPhotos(_ context.Context, city string) ([]models.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := CityKey(city)
	out := make([]models.Photo, 0)
	for _, p := range s.photos {
		if CityKey(p.City) == key {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].UploadedAt, out[i].ID, out[j].UploadedAt, out[j].ID)
	})
	return out, nil
}

func (s *MemoryStore) GetPhoto(_ context.Context, id int64) (models.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.photos[id]
	if !ok {
		return models.Photo{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) DeletePhoto(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.photos[id]; !ok {
		return ErrNotFound
	}
	delete(s.photos, id)
	return nil
}

func (s *MemoryStore) PhotoBlobKeys(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make(map[string]struct{}, len(s.photos))
	for _, p := range s.photos {
		keys[p.BlobKey] = struct{}{}
	}
	return keys, nil
}

func (s *MemoryStore) Close() error { return nil }

// newer orders by timestamp descending, breaking ties by the later id.
func newer(ta time.Time, ida int64, tb time.Time, idb int64) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return ida > idb
}

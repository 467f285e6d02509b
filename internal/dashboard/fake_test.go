package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/models"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// fakeGateway serves the dashboard from a MemoryStore and lets tests stall
// or fail individual calls.
type fakeGateway struct {
	store *store.MemoryStore

	mu      sync.Mutex
	weather map[string]weather.Snapshot
	// gates stall FetchWeather for a city until closed or the context ends.
	gates   map[string]chan struct{}
	lookups []string
	calls   map[string]int

	failUploads       map[string]bool
	failDeleteHistory map[int64]bool
	// stallHistory holds the next History call after it has read the store.
	stallHistory chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		store: store.NewMemoryStore(),
		weather: map[string]weather.Snapshot{
			"Davao City": {Temperature: "+29 °C", Description: "Light rain"},
			"Manila":     {Temperature: "+32 °C", Description: "Sunny"},
			"Cebu":       {Temperature: "+30 °C", Description: "Partly cloudy"},
		},
		gates:             map[string]chan struct{}{},
		calls:             map[string]int{},
		failUploads:       map[string]bool{},
		failDeleteHistory: map[int64]bool{},
	}
}

func (f *fakeGateway) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeGateway) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) lookedUp() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lookups...)
}

func (f *fakeGateway) FetchWeather(ctx context.Context, city string) *weather.Snapshot {
	f.mu.Lock()
	f.lookups = append(f.lookups, city)
	gate := f.gates[city]
	snap, ok := f.weather[city]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil
		}
	}
	if !ok {
		return nil
	}
	return &snap
}

func (f *fakeGateway) History(ctx context.Context) []models.HistoryEntry {
	list, _ := f.store.ListHistory(ctx)
	f.count("History")

	f.mu.Lock()
	gate := f.stallHistory
	f.stallHistory = nil
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return list
}

func (f *fakeGateway) AddHistory(ctx context.Context, city, description string) *models.HistoryEntry {
	f.count("AddHistory")
	e, err := f.store.AddHistory(ctx, city, description)
	if err != nil {
		return nil
	}
	return &e
}

func (f *fakeGateway) DeleteHistory(ctx context.Context, id int64) bool {
	f.mu.Lock()
	fail := f.failDeleteHistory[id]
	f.mu.Unlock()
	if fail {
		return false
	}
	err := f.store.DeleteHistory(ctx, id)
	return err == nil || errors.Is(err, store.ErrNotFound)
}

func (f *fakeGateway) AllNotes(ctx context.Context) []models.Note {
	list, _ := f.store.ListNotes(ctx)
	return list
}

func (f *fakeGateway) CityNotes(ctx context.Context, city string) []models.Note {
	f.count("CityNotes")
	list, _ := f.store.ListCityNotes(ctx, city)
	return list
}

func (f *fakeGateway) AddNote(ctx context.Context, city, text string) *models.Note {
	f.count("AddNote")
	n, err := f.store.AddNote(ctx, city, text)
	if err != nil {
		return nil
	}
	return &n
}

func (f *fakeGateway) UpdateNote(ctx context.Context, id int64, text string) *models.Note {
	n, err := f.store.UpdateNote(ctx, id, text)
	if err != nil {
		return nil
	}
	return &n
}

func (f *fakeGateway) DeleteNote(ctx context.Context, id int64) bool {
	err := f.store.DeleteNote(ctx, id)
	return err == nil || errors.Is(err, store.ErrNotFound)
}

func (f *fakeGateway) CityPhotos(ctx context.Context, city string) []models.Photo {
	f.count("CityPhotos")
	list, _ := f.store.ListCityPhotos(ctx, city)
	return list
}

func (f *fakeGateway) UploadPhoto(ctx context.Context, city string, up models.Upload) *models.Photo {
	f.count("UploadPhoto")
	f.mu.Lock()
	fail := f.failUploads[up.Name]
	f.mu.Unlock()
	if fail {
		return nil
	}
	p, err := f.store.AddPhoto(ctx, city, up.Name, "/api/images/"+up.Name)
	if err != nil {
		return nil
	}
	return &p
}

func (f *fakeGateway) DeletePhoto(ctx context.Context, id int64) bool {
	if _, err := f.store.GetPhoto(ctx, id); err != nil {
		return false
	}
	return f.store.DeletePhoto(ctx, id) == nil
}

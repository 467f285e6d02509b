package store

import (
	"context"
	"errors"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/models"
)

var (
	// ErrNotFound is returned when no row matches the requested identifier.
	ErrNotFound = errors.New("record not found")
)

// Store is the contract shared by the in-memory and SQL backends.
// List operations return newest-first order; city matching is case-insensitive.
type Store interface {
	// History
	AddHistory(ctx context.Context, city, description string) (models.HistoryEntry, error)
	ListHistory(ctx context.Context) ([]models.HistoryEntry, error)
	DeleteHistory(ctx context.Context, id int64) error

	// Notes. ListNotes orders by city, then newest first.
	AddNote(ctx context.Context, city, text string) (models.Note, error)
	ListNotes(ctx context.Context) ([]models.Note, error)
	ListCityNotes(ctx context.Context, city string) ([]models.Note, error)
	UpdateNote(ctx context.Context, id int64, text string) (models.Note, error)
	DeleteNote(ctx context.Context, id int64) error

	// Photos
	AddPhoto(ctx context.Context, city, blobKey, imageURL string) (models.Photo, error)
	ListCityPhotos(ctx context.Context, city string) ([]models.Photo, error)
	GetPhoto(ctx context.Context, id int64) (models.Photo, error)
	DeletePhoto(ctx context.Context, id int64) error
	PhotoBlobKeys(ctx context.Context) (map[string]struct{}, error)

	Close() error
}

// CityKey is the case-folded form used to match city names. Every backend
// matches cities on keys produced here.
func CityKey(city string) string {
	return strings.ToLower(city)
}

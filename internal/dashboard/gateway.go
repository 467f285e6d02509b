package dashboard

import (
	"context"

	"github.com/i474232898/weather-dashboard/internal/models"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Gateway is the dashboard's view of the backend. Implementations never
// return transport errors: failed reads yield nil or empty slices and failed
// writes yield nil or false.
type Gateway interface {
	FetchWeather(ctx context.Context, city string) *weather.Snapshot

	History(ctx context.Context) []models.HistoryEntry
	AddHistory(ctx context.Context, city, description string) *models.HistoryEntry
	DeleteHistory(ctx context.Context, id int64) bool

	AllNotes(ctx context.Context) []models.Note
	CityNotes(ctx context.Context, city string) []models.Note
	AddNote(ctx context.Context, city, text string) *models.Note
	UpdateNote(ctx context.Context, id int64, text string) *models.Note
	DeleteNote(ctx context.Context, id int64) bool

	CityPhotos(ctx context.Context, city string) []models.Photo
	UploadPhoto(ctx context.Context, city string, up models.Upload) *models.Photo
	DeletePhoto(ctx context.Context, id int64) bool
}

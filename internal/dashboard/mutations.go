package dashboard

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/models"
)

// UploadResult reports a photo batch.
type UploadResult struct {
	Uploaded int
	Failed   []string
}

// AddNote attaches text to city, or to the current selection when city is
// empty. Blank text is rejected before the backend is contacted.
func (d *Dashboard) AddNote(ctx context.Context, city, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyNote
	}
	city = strings.TrimSpace(city)
	if city == "" {
		_, city, _ = d.selection()
	}
	if city == "" {
		return ErrNoCity
	}
	return d.mutate(ctx, "add_note", func(ctx context.Context) bool {
		return d.gw.AddNote(ctx, city, text) != nil
	}, listCityNotes, listAllNotes)
}

func (d *Dashboard) UpdateNote(ctx context.Context, id int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyNote
	}
	return d.mutate(ctx, "update_note", func(ctx context.Context) bool {
		return d.gw.UpdateNote(ctx, id, text) != nil
	}, listCityNotes, listAllNotes)
}

func (d *Dashboard) DeleteNote(ctx context.Context, id int64) error {
	return d.mutate(ctx, "delete_note", func(ctx context.Context) bool {
		return d.gw.DeleteNote(ctx, id)
	}, listCityNotes, listAllNotes)
}

// DeleteHistory removes one entry. Deleting an entry that is already gone
// succeeds and leaves the rest of the list untouched.
func (d *Dashboard) DeleteHistory(ctx context.Context, id int64) error {
	return d.mutate(ctx, "delete_history", func(ctx context.Context) bool {
		return d.gw.DeleteHistory(ctx, id)
	}, listHistory)
}

// ClearHistory deletes the listed entries one by one and then re-reads the
// list once. A partial failure leaves whatever remains visible.
func (d *Dashboard) ClearHistory(ctx context.Context) (int, error) {
	d.mu.Lock()
	entries := slices.Clone(d.view.History)
	d.mu.Unlock()

	deleted := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		if !d.gw.DeleteHistory(ctx, e.ID) {
			d.log.Warn().Int64("id", e.ID).Str("city", e.City).Msg("history entry not deleted")
			continue
		}
		deleted++
	}
	d.refresh(ctx, listHistory)

	if deleted < len(entries) {
		return deleted, fmt.Errorf("%w: cleared %d of %d entries", ErrWriteFailed, deleted, len(entries))
	}
	return deleted, nil
}

// UploadPhotos uploads files for the current city one at a time. A failed
// file is logged and skipped; the photo list is re-read once at the end.
func (d *Dashboard) UploadPhotos(ctx context.Context, uploads []models.Upload) (UploadResult, error) {
	tok, city, status := d.selection()
	if city == "" || status != StatusReady {
		return UploadResult{}, ErrNoCity
	}

	var res UploadResult
	for _, up := range uploads {
		photo := d.gw.UploadPhoto(ctx, city, up)
		if photo == nil {
			res.Failed = append(res.Failed, up.Name)
			d.log.Warn().Str("city", city).Str("file", up.Name).Msg("photo upload failed")
			continue
		}
		res.Uploaded++
		d.log.Info().Str("city", city).Str("file", up.Name).Int64("photo_id", photo.ID).Msg("photo uploaded")
	}

	d.refreshFor(ctx, tok, city, listPhotos)
	return res, nil
}

func (d *Dashboard) DeletePhoto(ctx context.Context, id int64) error {
	return d.mutate(ctx, "delete_photo", func(ctx context.Context) bool {
		return d.gw.DeletePhoto(ctx, id)
	}, listPhotos)
}

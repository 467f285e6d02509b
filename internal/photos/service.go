// Package photos keeps city photo blobs and their metadata rows paired.
//
// Ordering rules: on upload the blob is written before the row is inserted;
// on delete the row is read first, the blob removed next and the row last.
// A crash at any point can leave an unreferenced blob (reclaimed by Sweep)
// but never a row pointing at a missing blob.
package photos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"

	"github.com/i474232898/weather-dashboard/internal/blob"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/models"
	"github.com/i474232898/weather-dashboard/internal/store"
)

// ImageRoute is the URL prefix under which blobs are served.
const ImageRoute = "/api/images/"

var (
	ErrNoCity   = errors.New("city required")
	ErrNoFile   = errors.New("no photo file provided")
	ErrNotImage = errors.New("file is not a supported image")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Service coordinates the metadata store and blob storage.
type Service struct {
	store   store.Store
	blobs   blob.Store
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewService(st store.Store, blobs blob.Store, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{store: st, blobs: blobs, metrics: m, log: log}
}

// Upload stores data as a new photo for city.
func (s *Service) Upload(ctx context.Context, city, filename string, data []byte) (models.Photo, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return models.Photo{}, ErrNoCity
	}
	if len(data) == 0 {
		return models.Photo{}, ErrNoFile
	}

	ct := blob.ContentType(data)
	ext, ok := allowedTypes[ct]
	if !ok {
		s.countUpload("rejected")
		return models.Photo{}, fmt.Errorf("%w: %s", ErrNotImage, ct)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		s.countUpload("rejected")
		return models.Photo{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	key := blobKey(filename, ext, time.Now())
	if err := s.blobs.Put(ctx, key, data); err != nil {
		s.countUpload("error")
		return models.Photo{}, fmt.Errorf("store blob: %w", err)
	}

	photo, err := s.store.AddPhoto(ctx, city, key, ImageRoute+key)
	if err != nil {
		if rmErr := s.blobs.Delete(ctx, key); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("key", key).Msg("could not remove blob after failed insert")
		}
		s.countUpload("error")
		return models.Photo{}, fmt.Errorf("insert photo row: %w", err)
	}

	s.countUpload("ok")
	s.log.Info().Int64("photo_id", photo.ID).Str("city", city).Str("key", key).Msg("photo uploaded")
	return photo, nil
}

// Delete removes the blob and then the row. A blob that is already gone is
// logged and tolerated. If the blob cannot be removed the row is kept and the
// error returned. Unknown ids yield store.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	photo, err := s.store.GetPhoto(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, photo.BlobKey); err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			s.countDelete("error")
			return fmt.Errorf("delete blob %s: %w", photo.BlobKey, err)
		}
		s.log.Warn().Int64("photo_id", id).Str("key", photo.BlobKey).Msg("blob already missing; removing row")
	}

	if err := s.store.DeletePhoto(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.countDelete("error")
		return fmt.Errorf("delete photo row: %w", err)
	}

	s.countDelete("ok")
	return nil
}

// Image returns the stored blob for key.
func (s *Service) Image(ctx context.Context, key string) (blob.Object, error) {
	return s.blobs.Get(ctx, key)
}

// Sweep removes blobs older than grace that no photo row references.
// Blobs are listed before rows are read, and the grace period covers the
// window between an upload's blob write and its row insert.
func (s *Service) Sweep(ctx context.Context, grace time.Duration) (int, error) {
	infos, err := s.blobs.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list blobs: %w", err)
	}
	referenced, err := s.store.PhotoBlobKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list photo keys: %w", err)
	}

	cutoff := time.Now().Add(-grace)
	removed := 0
	for _, info := range infos {
		if _, ok := referenced[info.Key]; ok || info.ModTime.After(cutoff) {
			continue
		}
		if err := s.blobs.Delete(ctx, info.Key); err != nil && !errors.Is(err, blob.ErrNotFound) {
			s.log.Warn().Err(err).Str("key", info.Key).Msg("orphan blob removal failed")
			continue
		}
		removed++
		if s.metrics != nil {
			s.metrics.BlobsSwept.Inc()
		}
	}
	return removed, nil
}

func (s *Service) countUpload(result string) {
	if s.metrics != nil {
		s.metrics.PhotoUploads.WithLabelValues(result).Inc()
	}
}

func (s *Service) countDelete(result string) {
	if s.metrics != nil {
		s.metrics.PhotoDeletes.WithLabelValues(result).Inc()
	}
}

// blobKey builds "<unix-ms>-<short uuid>-<sanitized name>" with the
// extension matching the sniffed content type.
func blobKey(filename, ext string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "photo"
	}
	return fmt.Sprintf("%d-%s-%s%s", now.UnixMilli(), uuid.NewString()[:8], name, ext)
}

// Package blob stores uploaded image bytes under flat string keys.
package blob

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrNotFound is returned when no object exists under the key.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidKey is returned for empty keys or keys that escape the bucket.
	ErrInvalidKey = errors.New("invalid blob key")
)

// Object is a stored blob with its sniffed content type.
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// Info describes a stored blob without its contents.
type Info struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Store is implemented by FSStore and MemoryStore.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) (Object, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Info, error)
}

// CleanKey validates a key: it must be a relative slash-separated path that
// stays inside the bucket once cleaned.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// ContentType sniffs the MIME type of data.
func ContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

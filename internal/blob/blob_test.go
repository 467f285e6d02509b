package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Smallest valid PNG header is enough for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestCleanKey(t *testing.T) {
	for _, bad := range []string{"", "/etc/passwd", "../x", "a/../../x", "..", "a\\b"} {
		_, err := CleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", bad)
	}
	k, err := CleanKey("2024/./photo.png")
	require.NoError(t, err)
	assert.Equal(t, "2024/photo.png", k)
}

func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "cebu/beach.png", pngHeader))

	obj, err := s.Get(ctx, "cebu/beach.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, pngHeader, obj.Data)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cebu/beach.png", list[0].Key)

	require.NoError(t, s.Delete(ctx, "cebu/beach.png"))
	assert.ErrorIs(t, s.Delete(ctx, "cebu/beach.png"), ErrNotFound)

	_, err = s.Get(ctx, "cebu/beach.png")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Put(ctx, "../escape", pngHeader), ErrInvalidKey)
}

func TestFSStore(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	testStore(t, s)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

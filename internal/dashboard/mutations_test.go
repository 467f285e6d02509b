package dashboard

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/models"
)

func TestNoteRoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	d := newTestDashboard(gw)
	require.NoError(t, d.Search(ctx, "Manila"))

	require.NoError(t, d.AddNote(ctx, "", "Bring umbrella"))
	v := d.View()
	require.Len(t, v.CityNotes, 1)
	require.Len(t, v.AllNotes, 1)
	note := v.CityNotes[0]
	assert.Equal(t, "Manila", note.City)
	assert.Equal(t, note.ID, v.AllNotes[0].ID)

	require.NoError(t, d.UpdateNote(ctx, note.ID, "  Sunscreen "))
	v = d.View()
	assert.Equal(t, "Sunscreen", v.CityNotes[0].Text)
	assert.Equal(t, "Sunscreen", v.AllNotes[0].Text)

	require.NoError(t, d.DeleteNote(ctx, note.ID))
	v = d.View()
	assert.Empty(t, v.CityNotes)
	assert.Empty(t, v.AllNotes)
}

func TestAddNoteForOtherCityUpdatesGlobalList(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	d := newTestDashboard(gw)
	require.NoError(t, d.Search(ctx, "Manila"))

	require.NoError(t, d.AddNote(ctx, "Cebu", "Ferry"))
	v := d.View()
	assert.Empty(t, v.CityNotes)
	require.Len(t, v.AllNotes, 1)
	assert.Equal(t, "Cebu", v.AllNotes[0].City)
}

func TestBlankNoteNeverReachesGateway(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	d := newTestDashboard(gw)
	require.NoError(t, d.Search(ctx, "Manila"))

	assert.ErrorIs(t, d.AddNote(ctx, "", " \t "), ErrEmptyNote)
	assert.ErrorIs(t, d.UpdateNote(ctx, 1, ""), ErrEmptyNote)
	assert.Zero(t, gw.callCount("AddNote"))
}

func TestAddNoteWithoutCity(t *testing.T) {
	d := newTestDashboard(newFakeGateway())
	assert.ErrorIs(t, d.AddNote(context.Background(), "", "text"), ErrNoCity)
}

func TestUpdateMissingNoteFails(t *testing.T) {
	d := newTestDashboard(newFakeGateway())
	assert.ErrorIs(t, d.UpdateNote(context.Background(), 42, "text"), ErrWriteFailed)
}

func TestDeleteHistoryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	d := newTestDashboard(gw)
	require.NoError(t, d.Search(ctx, "Manila"))
	require.NoError(t, d.Search(ctx, "Cebu"))

	v := d.View()
	require.Len(t, v.History, 2)
	manila := v.History[1]
	require.Equal(t, "Manila", manila.City)

	require.NoError(t, d.DeleteHistory(ctx, manila.ID))
	require.NoError(t, d.DeleteHistory(ctx, manila.ID))

	v = d.View()
	require.Len(t, v.History, 1)
	assert.Equal(t, "Cebu", v.History[0].City)
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	d := newTestDashboard(gw)
	for _, city := range []string{"Manila", "Cebu", "Some"} {
		_, err := gw.store.AddHistory(ctx, city, "Sunny")
		require.NoError(t, err)
	}
	require.NoError(t, d.Load(ctx))
	v := d.View()
	require.Len(t, v.History, 3)
	gw.failDeleteHistory[v.History[1].ID] = true

	n, err := d.ClearHistory(ctx)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, ErrWriteFailed)
	require.Len(t, d.View().History, 1)

	delete(gw.failDeleteHistory, v.History[1].ID)
	n, err = d.ClearHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, d.View().History)
}

func TestUploadBatchContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	gw.failUploads["first.jpg"] = true
	var logs bytes.Buffer
	d := New(gw, Options{WeatherTimeout: time.Second, Log: zerolog.New(&logs)})
	require.NoError(t, d.Search(ctx, "Cebu"))
	photoReads := gw.callCount("CityPhotos")

	res, err := d.UploadPhotos(ctx, []models.Upload{
		{Name: "first.jpg", Data: []byte{1}},
		{Name: "second.jpg", Data: []byte{2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Uploaded)
	assert.Equal(t, []string{"first.jpg"}, res.Failed)
	assert.Equal(t, 2, gw.callCount("UploadPhoto"))
	assert.Equal(t, photoReads+1, gw.callCount("CityPhotos"))

	v := d.View()
	require.Len(t, v.Photos, 1)
	assert.Equal(t, "second.jpg", v.Photos[0].BlobKey)

	assert.Contains(t, logs.String(), "first.jpg")
	assert.Contains(t, logs.String(), "second.jpg")
}

func TestUploadRequiresResolvedCity(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	d := newTestDashboard(gw)

	_, err := d.UploadPhotos(ctx, []models.Upload{{Name: "a.jpg", Data: []byte{1}}})
	assert.ErrorIs(t, err, ErrNoCity)

	assert.ErrorIs(t, d.Search(ctx, "Atlantis"), ErrCityNotFound)
	_, err = d.UploadPhotos(ctx, []models.Upload{{Name: "a.jpg", Data: []byte{1}}})
	assert.ErrorIs(t, err, ErrNoCity)
	assert.Zero(t, gw.callCount("UploadPhoto"))
}

func TestDeletePhoto(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	d := newTestDashboard(gw)
	require.NoError(t, d.Search(ctx, "Cebu"))

	_, err := d.UploadPhotos(ctx, []models.Upload{{Name: "pier.jpg", Data: []byte{1}}})
	require.NoError(t, err)
	photos := d.View().Photos
	require.Len(t, photos, 1)

	require.NoError(t, d.DeletePhoto(ctx, photos[0].ID))
	assert.Empty(t, d.View().Photos)
	assert.ErrorIs(t, d.DeletePhoto(ctx, photos[0].ID), ErrWriteFailed)
}

func TestDeleteOfVanishedPhotoResyncsGallery(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	d := newTestDashboard(gw)
	require.NoError(t, d.Search(ctx, "Cebu"))

	_, err := d.UploadPhotos(ctx, []models.Upload{{Name: "pier.jpg", Data: []byte{1}}})
	require.NoError(t, err)
	photos := d.View().Photos
	require.Len(t, photos, 1)

	require.NoError(t, gw.store.DeletePhoto(ctx, photos[0].ID))
	assert.ErrorIs(t, d.DeletePhoto(ctx, photos[0].ID), ErrWriteFailed)
	assert.Empty(t, d.View().Photos)
}

func TestUpdateOfVanishedNoteResyncsLists(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	d := newTestDashboard(gw)
	require.NoError(t, d.Search(ctx, "Cebu"))
	require.NoError(t, d.AddNote(ctx, "", "Ferry"))

	v := d.View()
	require.Len(t, v.CityNotes, 1)
	require.Len(t, v.AllNotes, 1)

	require.NoError(t, gw.store.DeleteNote(ctx, v.CityNotes[0].ID))
	assert.ErrorIs(t, d.UpdateNote(ctx, v.CityNotes[0].ID, "Ferry at 9"), ErrWriteFailed)

	v = d.View()
	assert.Empty(t, v.CityNotes)
	assert.Empty(t, v.AllNotes)
}

func TestMutationAfterSelectionChangeKeepsNewCity(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	_, err := gw.store.AddNote(ctx, "Cebu", "Ferry")
	require.NoError(t, err)
	d := newTestDashboard(gw)
	require.NoError(t, d.Search(ctx, "Manila"))

	require.NoError(t, d.AddNote(ctx, "Manila", "Traffic"))
	require.NoError(t, d.Search(ctx, "Cebu"))

	v := d.View()
	require.Len(t, v.CityNotes, 1)
	assert.Equal(t, "Ferry", v.CityNotes[0].Text)
	assert.Len(t, v.AllNotes, 2)
}

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/blob"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/photos"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

type cityProvider map[string]weather.Snapshot

func (cityProvider) Name() string { return "fixture" }

func (p cityProvider) Fetch(_ context.Context, city string) (weather.Snapshot, error) {
	if s, ok := p[city]; ok {
		return s, nil
	}
	return weather.Snapshot{}, weather.ErrNotFound
}

type testEnv struct {
	app   *fiber.App
	store *store.MemoryStore
	blobs *blob.MemoryStore
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	st, bl := store.NewMemoryStore(), blob.NewMemoryStore()

	provider := cityProvider{
		"Manila":     {Temperature: "+31 °C", Wind: "9 km/h", Description: "Sunny"},
		"Davao City": {Temperature: "+29 °C", Description: "Light rain"},
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, Services{
		Weather:  weather.NewService([]weather.Provider{provider}, 0, m, zerolog.Nop()),
		Store:    st,
		Photos:   photos.NewService(st, bl, m, zerolog.Nop()),
		Gatherer: reg,
		Log:      zerolog.Nop(),
	})
	return testEnv{app: app, store: st, blobs: bl}
}

func (e testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req)
}

func (e testEnv) send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func uploadRequest(t *testing.T, city, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if data != nil {
		fw, err := w.CreateFormFile("photo", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/cities/"+city+"/photos", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 3))))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestWeatherRoute(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/weather/Davao%20City", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap weather.Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, "+29 °C", snap.Temperature)

	resp, body = env.do(t, http.MethodGet, "/api/weather/Atlantis", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":true,"message":"city not found"}`, string(body))
}

func TestHistoryRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/history", map[string]string{"description": "Sunny"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/history", map[string]string{"city": "Manila"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Data struct {
			ID          int64  `json:"id"`
			Description string `json:"weather_description"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Weather data", created.Data.Description)

	env.do(t, http.MethodPost, "/api/history", map[string]string{"city": "Cebu", "description": "Cloudy"})

	resp, body = env.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Cebu", list[0]["city"])

	path := "/api/history/" + jsonID(created.Data.ID)
	resp, _ = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/history/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = env.do(t, http.MethodGet, "/api/history", nil)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)
}

func TestNoteRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/notes", map[string]string{"city": "Manila", "note": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/notes", map[string]string{"city": "Manila", "note": "Bring umbrella"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Data struct {
			ID   int64  `json:"id"`
			Note string `json:"note"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	id := jsonID(created.Data.ID)

	var listed struct {
		Notes []map[string]any `json:"notes"`
	}
	_, body = env.do(t, http.MethodGet, "/api/notes/city/manila", nil)
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed.Notes, 1)
	assert.Equal(t, "Bring umbrella", listed.Notes[0]["note"])

	resp, _ = env.do(t, http.MethodPut, "/api/notes/"+id, map[string]string{"note": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPut, "/api/notes/999", map[string]string{"note": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, body = env.do(t, http.MethodPut, "/api/notes/"+id, map[string]string{"note": "Sunscreen"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Sunscreen")

	resp, _ = env.do(t, http.MethodDelete, "/api/notes/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = env.do(t, http.MethodGet, "/api/notes", nil)
	assert.JSONEq(t, `{"notes":[]}`, string(body))
}

func TestPhotoRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.send(t, uploadRequest(t, "Cebu", "beach.png", pngBytes(t)))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created struct {
		ImageURL string `json:"imageUrl"`
		Data     struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.True(t, strings.HasPrefix(created.ImageURL, "/api/images/"))

	resp, body = env.do(t, http.MethodGet, created.ImageURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, pngBytes(t), body)

	var listed struct {
		Photos []map[string]any `json:"photos"`
	}
	_, body = env.do(t, http.MethodGet, "/api/cities/cebu/photos", nil)
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.Len(t, listed.Photos, 1)

	path := "/api/photos/" + jsonID(created.Data.ID)
	resp, _ = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, created.ImageURL, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPhotoUploadValidation(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.send(t, uploadRequest(t, "Cebu", "", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.send(t, uploadRequest(t, "Cebu", "notes.txt", []byte("plain text")))
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	infos, err := env.blobs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestDeletePhotoWithMissingBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	photo, err := env.store.AddPhoto(ctx, "Cebu", "gone.png", "/api/images/gone.png")
	require.NoError(t, err)

	resp, _ := env.do(t, http.MethodDelete, "/api/photos/"+jsonID(photo.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = env.store.GetPhoto(ctx, photo.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/weather/Manila", nil)

	resp, body := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `weather_dashboard_weather_lookups_total{result="hit"} 1`)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

// Package client is the dashboard's gateway to the backend routes and the
// upstream weather API. Every method fails soft: transport errors, error
// statuses and undecodable bodies are logged and turned into nil, an empty
// slice or false, so callers only ever deal with renderable values.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-dashboard/internal/models"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Options configures a Client.
type Options struct {
	// ServerURL is the backend API root, e.g. http://localhost:8080/api.
	ServerURL string
	// WeatherURL is an upstream city API root the city name is appended to.
	// Empty uses the backend's /weather proxy.
	WeatherURL string
	Timeout    time.Duration
	// HTTPClient is optional; tests inject one bound to an in-process server.
	HTTPClient *http.Client
	Log        zerolog.Logger
}

// Client talks to the backend over HTTP.
type Client struct {
	api     *resty.Client
	weather *resty.Client
	origin  string
	log     zerolog.Logger
}

func New(opts Options) *Client {
	server := strings.TrimRight(opts.ServerURL, "/")
	weatherURL := strings.TrimRight(opts.WeatherURL, "/")
	if weatherURL == "" {
		weatherURL = server + "/weather"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	newResty := func(base string) *resty.Client {
		var rc *resty.Client
		if opts.HTTPClient != nil {
			rc = resty.NewWithClient(opts.HTTPClient)
		} else {
			rc = resty.New()
		}
		return rc.
			SetBaseURL(base).
			SetHeader("Accept", "application/json").
			SetTimeout(timeout)
	}

	return &Client{
		api:     newResty(server),
		weather: newResty(weatherURL),
		origin:  origin(server),
		log:     opts.Log,
	}
}

// ImageURL resolves a photo's image route against the backend origin.
func (c *Client) ImageURL(p models.Photo) string {
	if strings.HasPrefix(p.ImageURL, "http://") || strings.HasPrefix(p.ImageURL, "https://") {
		return p.ImageURL
	}
	return c.origin + p.ImageURL
}

// FetchWeather returns nil when the city is unknown or the lookup failed.
func (c *Client) FetchWeather(ctx context.Context, city string) *weather.Snapshot {
	resp, err := c.weather.R().
		SetContext(ctx).
		SetPathParam("city", city).
		Get("/{city}")
	if err != nil {
		c.log.Error().Err(err).Str("op", "fetch_weather").Str("city", city).Msg("gateway request failed")
		return nil
	}
	if resp.StatusCode() == http.StatusNotFound {
		c.log.Info().Str("city", city).Msg("weather provider does not know city")
		return nil
	}
	var snap weather.Snapshot
	if !c.decode("fetch_weather", resp, &snap) {
		return nil
	}
	if !snap.Found() {
		return nil
	}
	return &snap
}

func (c *Client) History(ctx context.Context) []models.HistoryEntry {
	var out []models.HistoryEntry
	c.call(ctx, "list_history", c.api.R(), http.MethodGet, "/history", &out)
	return nonNil(out)
}

func (c *Client) AddHistory(ctx context.Context, city, description string) *models.HistoryEntry {
	var out struct {
		Data models.HistoryEntry `json:"data"`
	}
	req := c.api.R().SetBody(map[string]string{"city": city, "description": description})
	if !c.call(ctx, "add_history", req, http.MethodPost, "/history", &out) {
		return nil
	}
	return &out.Data
}

func (c *Client) DeleteHistory(ctx context.Context, id int64) bool {
	return c.call(ctx, "delete_history", c.api.R().SetPathParam("id", itoa(id)), http.MethodDelete, "/history/{id}", nil)
}

func (c *Client) AllNotes(ctx context.Context) []models.Note {
	var out struct {
		Notes []models.Note `json:"notes"`
	}
	c.call(ctx, "list_notes", c.api.R(), http.MethodGet, "/notes", &out)
	return nonNil(out.Notes)
}

func (c *Client) CityNotes(ctx context.Context, city string) []models.Note {
	var out struct {
		Notes []models.Note `json:"notes"`
	}
	c.call(ctx, "list_city_notes", c.api.R().SetPathParam("city", city), http.MethodGet, "/notes/city/{city}", &out)
	return nonNil(out.Notes)
}

func (c *Client) AddNote(ctx context.Context, city, text string) *models.Note {
	var out struct {
		Data models.Note `json:"data"`
	}
	req := c.api.R().SetBody(map[string]string{"city": city, "note": text})
	if !c.call(ctx, "add_note", req, http.MethodPost, "/notes", &out) {
		return nil
	}
	return &out.Data
}

func (c *Client) UpdateNote(ctx context.Context, id int64, text string) *models.Note {
	var out struct {
		Data models.Note `json:"data"`
	}
	req := c.api.R().SetPathParam("id", itoa(id)).SetBody(map[string]string{"note": text})
	if !c.call(ctx, "update_note", req, http.MethodPut, "/notes/{id}", &out) {
		return nil
	}
	return &out.Data
}

func (c *Client) DeleteNote(ctx context.Context, id int64) bool {
	return c.call(ctx, "delete_note", c.api.R().SetPathParam("id", itoa(id)), http.MethodDelete, "/notes/{id}", nil)
}

func (c *Client) CityPhotos(ctx context.Context, city string) []models.Photo {
	var out struct {
		Photos []models.Photo `json:"photos"`
	}
	c.call(ctx, "list_photos", c.api.R().SetPathParam("city", city), http.MethodGet, "/cities/{city}/photos", &out)
	return nonNil(out.Photos)
}

func (c *Client) UploadPhoto(ctx context.Context, city string, up models.Upload) *models.Photo {
	var out struct {
		Data models.Photo `json:"data"`
	}
	req := c.api.R().
		SetPathParam("city", city).
		SetFileReader("photo", up.Name, bytes.NewReader(up.Data))
	if !c.call(ctx, "upload_photo", req, http.MethodPost, "/cities/{city}/photos", &out) {
		return nil
	}
	return &out.Data
}

func (c *Client) DeletePhoto(ctx context.Context, id int64) bool {
	return c.call(ctx, "delete_photo", c.api.R().SetPathParam("id", itoa(id)), http.MethodDelete, "/photos/{id}", nil)
}

// call executes req and decodes a successful body into out (if non-nil).
func (c *Client) call(ctx context.Context, op string, req *resty.Request, method, path string, out any) bool {
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		c.log.Error().Err(err).Str("op", op).Msg("gateway request failed")
		return false
	}
	return c.decode(op, resp, out)
}

func (c *Client) decode(op string, resp *resty.Response, out any) bool {
	if resp.IsError() {
		c.log.Error().
			Str("op", op).
			Int("status", resp.StatusCode()).
			Str("body", truncate(resp.String(), 200)).
			Msg("gateway request rejected")
		return false
	}
	if out == nil {
		return true
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		c.log.Error().Err(err).Str("op", op).Msg("gateway response undecodable")
		return false
	}
	return true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// origin strips the path from a base URL: http://host:8080/api -> http://host:8080.
func origin(base string) string {
	if i := strings.Index(base, "://"); i >= 0 {
		if j := strings.Index(base[i+3:], "/"); j >= 0 {
			return base[:i+3+j]
		}
	}
	return base
}

// Package dashboard holds the city session state of the weather dashboard and
// keeps it consistent with the backend.
//
// A selection change bumps a token; every step of the fetch sequence it
// starts re-checks the token and stops once a newer selection exists, so a
// slow response for an abandoned city never lands in the view. Writes go
// through mutate, which re-reads the affected lists from the backend instead
// of patching local copies.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/models"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultCity is selected on load and never recorded in history.
const DefaultCity = "Davao City"

const (
	defaultWeatherTimeout = 10 * time.Second
	defaultDescription    = "Weather data"
)

// Trailing qualifiers stripped for the single fallback lookup.
var qualifierSuffixes = []string{" city"}

var (
	ErrEmptyCity    = errors.New("city name is required")
	ErrEmptyNote    = errors.New("note text is required")
	ErrCityNotFound = errors.New("city does not exist")
	ErrNoCity       = errors.New("no city selected")
	ErrWriteFailed  = errors.New("backend did not accept the change")

	// ErrSuperseded is returned by a selection that a newer one replaced
	// before it finished.
	ErrSuperseded = errors.New("selection superseded")
)

// Status is the resolution state of the current selection.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusNotFound:
		return "not found"
	default:
		return "idle"
	}
}

// View is a copy of the dashboard state for rendering.
type View struct {
	City   string
	Status Status
	// ResolvedAs is the name the weather provider answered for. It differs
	// from City when the qualifier fallback was used.
	ResolvedAs string
	Weather    *weather.Snapshot
	Theme      Theme
	Condition  weather.Condition
	Message    string

	CityNotes []models.Note
	Photos    []models.Photo
	AllNotes  []models.Note
	History   []models.HistoryEntry
}

// Options tune a Dashboard.
type Options struct {
	DefaultCity    string
	WeatherTimeout time.Duration
	Log            zerolog.Logger
}

// Dashboard is safe for concurrent use. Gateway calls run without the lock
// held; results are applied under it.
type Dashboard struct {
	gw             Gateway
	defaultCity    string
	weatherTimeout time.Duration
	log            zerolog.Logger

	mu    sync.Mutex
	token uint64
	view  View
	seq   [numLists]listSeq
}

func New(gw Gateway, opts Options) *Dashboard {
	d := &Dashboard{
		gw:             gw,
		defaultCity:    opts.DefaultCity,
		weatherTimeout: opts.WeatherTimeout,
		log:            opts.Log,
	}
	if d.defaultCity == "" {
		d.defaultCity = DefaultCity
	}
	if d.weatherTimeout <= 0 {
		d.weatherTimeout = defaultWeatherTimeout
	}
	d.view.Theme = ThemeDefault
	return d
}

// DefaultCity returns the configured sentinel city.
func (d *Dashboard) DefaultCity() string { return d.defaultCity }

// View returns a copy of the current state.
func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := d.view
	if v.Weather != nil {
		snap := *v.Weather
		snap.Forecast = slices.Clone(snap.Forecast)
		v.Weather = &snap
	}
	v.CityNotes = slices.Clone(v.CityNotes)
	v.Photos = slices.Clone(v.Photos)
	v.AllNotes = slices.Clone(v.AllNotes)
	v.History = slices.Clone(v.History)
	return v
}

// Load fetches the global lists and selects the default city.
func (d *Dashboard) Load(ctx context.Context) error {
	d.Refresh(ctx)
	return d.Select(ctx, d.defaultCity)
}

// Refresh re-reads the search history and the all-notes list.
func (d *Dashboard) Refresh(ctx context.Context) {
	d.refresh(ctx, listHistory, listAllNotes)
}

// Search normalizes user input ("davao city" -> "Davao City") and selects it.
func (d *Dashboard) Search(ctx context.Context, input string) error {
	city := common.TitleWords(input)
	if city == "" {
		return ErrEmptyCity
	}
	return d.Select(ctx, city)
}

// Select makes city the current selection and runs its fetch sequence:
// weather (with one qualifier-stripped retry), then the city's notes and
// photos, then a history entry for non-default cities.
func (d *Dashboard) Select(ctx context.Context, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return ErrEmptyCity
	}

	d.mu.Lock()
	d.token++
	tok := d.token
	d.view.City = city
	d.view.Status = StatusLoading
	d.view.ResolvedAs = ""
	d.view.Weather = nil
	d.view.Theme = ThemeDefault
	d.view.Condition = ""
	d.view.Message = ""
	d.view.CityNotes = nil
	d.view.Photos = nil
	d.mu.Unlock()

	snap, resolved := d.resolve(ctx, tok, city)
	if !d.isCurrent(tok) {
		return ErrSuperseded
	}
	if snap == nil {
		d.apply(tok, func(v *View) {
			v.Status = StatusNotFound
			v.Message = fmt.Sprintf("City %q does not exist", city)
		})
		return ErrCityNotFound
	}

	if !d.apply(tok, func(v *View) {
		v.Status = StatusReady
		v.ResolvedAs = resolved
		v.Weather = snap
		v.Theme = ThemeFor(snap.Description)
		v.Condition = weather.ConditionFor(snap.Description)
	}) {
		return ErrSuperseded
	}

	d.refreshFor(ctx, tok, city, listCityNotes, listPhotos)
	if !d.isCurrent(tok) {
		return ErrSuperseded
	}

	if strings.EqualFold(city, d.defaultCity) {
		return nil
	}
	desc := strings.TrimSpace(snap.Description)
	if desc == "" {
		desc = defaultDescription
	}
	if d.gw.AddHistory(ctx, city, desc) == nil {
		d.log.Warn().Str("city", city).Msg("history entry not recorded")
		return nil
	}
	d.refresh(ctx, listHistory)
	return nil
}

// resolve looks the city up, retrying once without a trailing qualifier.
func (d *Dashboard) resolve(ctx context.Context, tok uint64, city string) (*weather.Snapshot, string) {
	if snap := d.fetchWeather(ctx, city); snap != nil {
		return snap, city
	}
	base, ok := stripQualifier(city)
	if !ok || !d.isCurrent(tok) {
		return nil, ""
	}
	d.log.Debug().Str("city", city).Str("retry", base).Msg("retrying weather without qualifier")
	if snap := d.fetchWeather(ctx, base); snap != nil {
		return snap, base
	}
	return nil, ""
}

// fetchWeather bounds the lookup; running out of time counts as a miss.
func (d *Dashboard) fetchWeather(ctx context.Context, city string) *weather.Snapshot {
	ctx, cancel := context.WithTimeout(ctx, d.weatherTimeout)
	defer cancel()

	snap := d.gw.FetchWeather(ctx, city)
	if snap == nil || !snap.Found() {
		return nil
	}
	return snap
}

func stripQualifier(city string) (string, bool) {
	lower := strings.ToLower(city)
	for _, suffix := range qualifierSuffixes {
		if strings.HasSuffix(lower, suffix) && len(city) > len(suffix) {
			return strings.TrimSpace(city[:len(city)-len(suffix)]), true
		}
	}
	return "", false
}

func (d *Dashboard) isCurrent(tok uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token == tok
}

// apply runs fn on the view if tok is still the current selection.
func (d *Dashboard) apply(tok uint64, fn func(v *View)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.token != tok {
		return false
	}
	fn(&d.view)
	return true
}

// selection returns the current token and city.
func (d *Dashboard) selection() (uint64, string, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token, d.view.City, d.view.Status
}

package ui

import (
	"context"
	"errors"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/models"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// memGateway answers from a MemoryStore.
type memGateway struct {
	st *store.MemoryStore
}

func (g memGateway) FetchWeather(_ context.Context, city string) *weather.Snapshot {
	switch city {
	case "Davao City":
		return &weather.Snapshot{Temperature: "+29 °C", Description: "Light rain"}
	case "Manila":
		return &weather.Snapshot{Temperature: "+32 °C", Description: "Sunny",
			Forecast: []weather.ForecastDay{{Day: "1", Temperature: "+31 °C", Wind: "10 km/h"}}}
	}
	return nil
}

func (g memGateway) History(ctx context.Context) []models.HistoryEntry {
	l, _ := g.st.ListHistory(ctx)
	return l
}

func (g memGateway) AddHistory(ctx context.Context, city, desc string) *models.HistoryEntry {
	e, _ := g.st.AddHistory(ctx, city, desc)
	return &e
}

func (g memGateway) DeleteHistory(ctx context.Context, id int64) bool {
	err := g.st.DeleteHistory(ctx, id)
	return err == nil || errors.Is(err, store.ErrNotFound)
}

func (g memGateway) AllNotes(ctx context.Context) []models.Note {
	l, _ := g.st.ListNotes(ctx)
	return l
}

func (g memGateway) CityNotes(ctx context.Context, city string) []models.Note {
	l, _ := g.st.ListCityNotes(ctx, city)
	return l
}

func (g memGateway) AddNote(ctx context.Context, city, text string) *models.Note {
	n, _ := g.st.AddNote(ctx, city, text)
	return &n
}

func (g memGateway) UpdateNote(ctx context.Context, id int64, text string) *models.Note {
	n, err := g.st.UpdateNote(ctx, id, text)
	if err != nil {
		return nil
	}
	return &n
}

func (g memGateway) DeleteNote(ctx context.Context, id int64) bool {
	return g.st.DeleteNote(ctx, id) == nil
}

func (g memGateway) CityPhotos(ctx context.Context, city string) []models.Photo {
	l, _ := g.st.ListCityPhotos(ctx, city)
	return l
}

func (g memGateway) UploadPhoto(ctx context.Context, city string, up models.Upload) *models.Photo {
	p, _ := g.st.AddPhoto(ctx, city, up.Name, "/api/images/"+up.Name)
	return &p
}

func (g memGateway) DeletePhoto(ctx context.Context, id int64) bool {
	return g.st.DeletePhoto(ctx, id) == nil
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	d := dashboard.New(memGateway{st: store.NewMemoryStore()}, dashboard.Options{Log: zerolog.Nop()})
	m := NewModel(context.Background(), d)
	m.readFile = func(p string) ([]byte, error) {
		if p == "a.png" {
			return []byte("png"), nil
		}
		return nil, os.ErrNotExist
	}
	return m
}

// settle runs cmd and feeds every resulting backend message back into m.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range drain(cmd) {
		switch msg.(type) {
		case selectedMsg, mutatedMsg, uploadedMsg:
			updated, _ := m.Update(msg)
			m = updated.(Model)
		}
	}
	return m
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: k})
	return updated.(Model), cmd
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}
	return m
}

func search(t *testing.T, m Model, city string) Model {
	t.Helper()
	m = typeText(m, city)
	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	return settle(t, m, cmd)
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, ModeSearch, m.mode)
	assert.True(t, m.loading)
}

func TestWindowSize(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
}

func TestLoadShowsDefaultCity(t *testing.T) {
	m := newTestModel(t)
	m = settle(t, m, loadCmd(m.ctx, m.dash))

	assert.False(t, m.loading)
	assert.Equal(t, "Davao City", m.view.City)
	assert.Contains(t, m.View(), "Davao City")
	assert.Contains(t, m.View(), "+29 °C")
}

func TestSupersededSelectionKeepsSpinner(t *testing.T) {
	m := newTestModel(t)
	require.True(t, m.loading)

	updated, cmd := m.Update(selectedMsg{err: dashboard.ErrSuperseded})
	m = updated.(Model)
	assert.Nil(t, cmd)
	assert.True(t, m.loading)

	updated, _ = m.Update(selectedMsg{})
	m = updated.(Model)
	assert.False(t, m.loading)
}

func TestSearchFlow(t *testing.T) {
	m := newTestModel(t)
	m = search(t, m, "manila")

	assert.NoError(t, m.err)
	assert.Equal(t, "Manila", m.view.City)
	assert.Equal(t, dashboard.ThemeSunny, m.view.Theme)
	assert.Len(t, m.view.History, 1)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Day 1")
}

func TestSearchUnknownCity(t *testing.T) {
	m := newTestModel(t)
	m = search(t, m, "atlantis")

	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "does not exist")
	assert.Contains(t, m.View(), "does not exist")
}

func TestAddNoteFlow(t *testing.T) {
	m := newTestModel(t)
	m = search(t, m, "manila")

	m, _ = press(m, tea.KeyCtrlN)
	assert.Equal(t, ModeDraft, m.mode)
	assert.True(t, m.overlays.IsOpen(dashboard.OverlayAddNote))

	m = typeText(m, "Umbrella")
	assert.Equal(t, "Umbrella", m.overlays.Draft)

	m, cmd := press(m, tea.KeyEnter)
	assert.False(t, m.overlays.IsOpen(dashboard.OverlayAddNote))
	assert.Equal(t, ModeSearch, m.mode)
	m = settle(t, m, cmd)

	require.Len(t, m.view.CityNotes, 1)
	assert.Equal(t, "Umbrella", m.view.CityNotes[0].Text)
	assert.Equal(t, "Note added", m.status)
}

func TestBlankDraftIsRejected(t *testing.T) {
	m := newTestModel(t)
	m = search(t, m, "manila")
	m, _ = press(m, tea.KeyCtrlN)

	m, cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.err, dashboard.ErrEmptyNote)
	assert.True(t, m.overlays.IsOpen(dashboard.OverlayAddNote))
}

func TestEscClosesTopOverlay(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(m, tea.KeyCtrlR)
	m, _ = press(m, tea.KeyCtrlG)

	m, _ = press(m, tea.KeyEsc)
	assert.False(t, m.overlays.IsOpen(dashboard.OverlayGallery))
	assert.True(t, m.overlays.IsOpen(dashboard.OverlayHistory))
}

func TestHistoryRowSelectsCity(t *testing.T) {
	m := newTestModel(t)
	m = search(t, m, "manila")
	m = search(t, m, "davao city")
	require.Equal(t, "Davao City", m.view.City)

	m, _ = press(m, tea.KeyCtrlR)
	m, cmd := press(m, tea.KeyEnter)
	assert.False(t, m.overlays.IsOpen(dashboard.OverlayHistory))
	m = settle(t, m, cmd)
	assert.Equal(t, "Manila", m.view.City)
}

func TestUploadFlow(t *testing.T) {
	m := newTestModel(t)
	m = search(t, m, "manila")

	m, _ = press(m, tea.KeyCtrlU)
	require.Equal(t, ModeUpload, m.mode)
	m = typeText(m, "a.png,missing.png")
	m, cmd := press(m, tea.KeyEnter)
	m = settle(t, m, cmd)

	assert.Equal(t, "Upload Complete: 1 of 2 photos uploaded", m.status)
	assert.Len(t, m.view.Photos, 1)
}

func TestUploadNeedsCity(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(m, tea.KeyCtrlU)
	assert.Equal(t, ModeSearch, m.mode)
	assert.ErrorIs(t, m.err, dashboard.ErrNoCity)
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestModel(t)
	_, cmd := press(m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
)

// InputMode says what the text input is currently collecting.
type InputMode int

const (
	ModeSearch InputMode = iota // City search
	ModeDraft                   // New note text
	ModeEdit                    // Inline note edit
	ModeUpload                  // Photo file paths
)

// Model is the terminal dashboard.
type Model struct {
	ctx      context.Context
	dash     *dashboard.Dashboard
	overlays dashboard.Overlays
	readFile func(string) ([]byte, error)

	width  int
	height int

	mode    InputMode
	input   textinput.Model
	spinner spinner.Model
	loading bool

	view   dashboard.View
	status string
	err    error

	// cursor indexes the list shown by the topmost overlay.
	cursor int
	// editing is the collection whose note the input is editing.
	editing dashboard.NoteCollection
}

// NewModel creates a model driving d. ctx bounds every backend call.
func NewModel(ctx context.Context, d *dashboard.Dashboard) Model {
	ti := textinput.New()
	ti.Placeholder = "Search a city (e.g. Manila)..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return Model{
		ctx:      ctx,
		dash:     d,
		readFile: defaultReadFile,
		mode:     ModeSearch,
		input:    ti,
		spinner:  s,
		loading:  true,
	}
}

// Init loads the global lists and the default city.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, loadCmd(m.ctx, m.dash))
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case selectedMsg:
		if errors.Is(msg.err, dashboard.ErrSuperseded) {
			// A newer selection is still in flight and owns the view.
			return m, nil
		}
		m.loading = false
		m.view = m.dash.View()
		m.cursor = 0
		switch {
		case msg.err == nil:
			m.err = nil
		case errors.Is(msg.err, dashboard.ErrCityNotFound):
			m.err = errors.New(m.view.Message)
		default:
			m.err = msg.err
		}
		return m, nil

	case mutatedMsg:
		m.loading = false
		m.view = m.dash.View()
		m.clampCursor()
		if msg.err != nil {
			m.err = fmt.Errorf("%s: %w", msg.op, msg.err)
		} else {
			m.err = nil
			m.status = msg.op
		}
		return m, nil

	case uploadedMsg:
		m.loading = false
		m.view = m.dash.View()
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		total := msg.result.Uploaded + len(msg.result.Failed) + len(msg.skipped)
		m.status = fmt.Sprintf("Upload Complete: %d of %d photos uploaded", msg.result.Uploaded, total)
		m.err = nil
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		return m.escape(), nil
	case "ctrl+t":
		m.overlays.Toggle(dashboard.OverlayMenu)
		return m, nil
	case "ctrl+r":
		return m.toggle(dashboard.OverlayHistory), nil
	case "ctrl+g":
		return m.toggle(dashboard.OverlayGallery), nil
	case "ctrl+l":
		return m.toggle(dashboard.OverlayNoteList), nil
	case "ctrl+d":
		return m.toggle(dashboard.OverlayDeveloper), nil
	case "ctrl+n":
		m = m.toggle(dashboard.OverlayAddNote)
		if m.overlays.IsOpen(dashboard.OverlayAddNote) {
			m.setMode(ModeDraft, m.overlays.Draft)
		} else {
			m.setMode(ModeSearch, "")
		}
		return m, nil
	case "ctrl+u":
		if m.view.Status != dashboard.StatusReady {
			m.err = dashboard.ErrNoCity
			return m, nil
		}
		m.setMode(ModeUpload, "")
		return m, nil
	case "tab":
		m.nextChip()
		return m, nil
	case "ctrl+e":
		return m.beginEdit(), nil
	case "ctrl+x":
		return m.deleteSelected()
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down":
		m.cursor++
		m.clampCursor()
		return m, nil
	case "enter":
		return m.submit()
	}

	if m.overlays.Top() == dashboard.OverlayHistory && msg.String() == "ctrl+k" {
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, mutateCmd("History cleared", func() error {
			_, err := m.dash.ClearHistory(m.ctx)
			return err
		}))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	switch m.mode {
	case ModeDraft:
		m.overlays.Draft = m.input.Value()
	case ModeEdit:
		m.overlays.SetEditText(m.editing, m.input.Value())
	}
	return m, cmd
}

// escape backs out of the innermost state: an edit, then the top overlay,
// then the menu and an expanded chip.
func (m Model) escape() Model {
	if m.mode == ModeEdit {
		m.overlays.CancelEdit(m.editing)
		m.setMode(ModeSearch, "")
		return m
	}
	if m.mode == ModeUpload {
		m.setMode(ModeSearch, "")
		return m
	}
	top := m.overlays.Top()
	if top != 0 && top != dashboard.OverlayMenu {
		m.overlays.ClickBackdrop(top)
		if top == dashboard.OverlayAddNote {
			m.setMode(ModeSearch, "")
		}
		m.cursor = 0
		return m
	}
	m.overlays.ClickMain()
	return m
}

func (m Model) toggle(o dashboard.Overlay) Model {
	m.overlays.Toggle(o)
	m.cursor = 0
	if o == dashboard.OverlayNoteList && m.mode == ModeEdit && m.editing == dashboard.NoteListItems {
		m.setMode(ModeSearch, "")
	}
	return m
}

func (m *Model) setMode(mode InputMode, value string) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.CursorEnd()
	switch mode {
	case ModeDraft:
		m.input.Placeholder = "Note for " + m.view.City
	case ModeEdit:
		m.input.Placeholder = "Edit note"
	case ModeUpload:
		m.input.Placeholder = "Photo paths, comma separated"
	default:
		m.input.Placeholder = "Search a city (e.g. Manila)..."
	}
}

// nextChip expands the city note after the expanded one.
func (m *Model) nextChip() {
	notes := m.view.CityNotes
	if len(notes) == 0 {
		return
	}
	next := 0
	for i, n := range notes {
		if n.ID == m.overlays.Expanded(dashboard.CityChips) {
			next = (i + 1) % len(notes)
		}
	}
	m.overlays.ToggleChip(dashboard.CityChips, notes[next].ID)
}

func (m Model) beginEdit() Model {
	switch {
	case m.overlays.Top() == dashboard.OverlayNoteList:
		if m.cursor < len(m.view.AllNotes) {
			n := m.view.AllNotes[m.cursor]
			m.overlays.BeginEdit(dashboard.NoteListItems, n.ID, n.Text)
			m.editing = dashboard.NoteListItems
			m.setMode(ModeEdit, n.Text)
		}
	case m.overlays.Expanded(dashboard.CityChips) != 0:
		id := m.overlays.Expanded(dashboard.CityChips)
		for _, n := range m.view.CityNotes {
			if n.ID == id {
				m.overlays.BeginEdit(dashboard.CityChips, n.ID, n.Text)
				m.editing = dashboard.CityChips
				m.setMode(ModeEdit, n.Text)
			}
		}
	}
	return m
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.overlays.Top() {
	case dashboard.OverlayHistory:
		if m.cursor < len(m.view.History) {
			id := m.view.History[m.cursor].ID
			cmd = mutateCmd("History item deleted", func() error { return m.dash.DeleteHistory(m.ctx, id) })
		}
	case dashboard.OverlayNoteList:
		if m.cursor < len(m.view.AllNotes) {
			id := m.view.AllNotes[m.cursor].ID
			cmd = mutateCmd("Note deleted", func() error { return m.dash.DeleteNote(m.ctx, id) })
		}
	case dashboard.OverlayGallery:
		if m.cursor < len(m.view.Photos) {
			id := m.view.Photos[m.cursor].ID
			cmd = mutateCmd("Photo deleted", func() error { return m.dash.DeletePhoto(m.ctx, id) })
		}
	default:
		if id := m.overlays.Expanded(dashboard.CityChips); id != 0 {
			m.overlays.ResetCity()
			cmd = mutateCmd("Note deleted", func() error { return m.dash.DeleteNote(m.ctx, id) })
		}
	}
	if cmd == nil {
		return m, nil
	}
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, cmd)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	switch m.mode {
	case ModeDraft:
		if strings.TrimSpace(value) == "" {
			m.err = dashboard.ErrEmptyNote
			return m, nil
		}
		m.overlays.Close(dashboard.OverlayAddNote)
		m.setMode(ModeSearch, "")
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, mutateCmd("Note added", func() error {
			return m.dash.AddNote(m.ctx, "", value)
		}))

	case ModeEdit:
		id, _, ok := m.overlays.Editing(m.editing)
		if !ok {
			m.setMode(ModeSearch, "")
			return m, nil
		}
		if strings.TrimSpace(value) == "" {
			m.err = dashboard.ErrEmptyNote
			return m, nil
		}
		m.overlays.CancelEdit(m.editing)
		m.setMode(ModeSearch, "")
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, mutateCmd("Note updated", func() error {
			return m.dash.UpdateNote(m.ctx, id, value)
		}))

	case ModeUpload:
		paths := splitPaths(value)
		m.setMode(ModeSearch, "")
		if len(paths) == 0 {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, uploadCmd(m.ctx, m.dash, m.readFile, paths))
	}

	// History rows select their city.
	if m.overlays.Top() == dashboard.OverlayHistory && m.cursor < len(m.view.History) {
		city := m.view.History[m.cursor].City
		m.overlays.Close(dashboard.OverlayHistory)
		m.overlays.ResetCity()
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, selectCmd(m.ctx, m.dash, city))
	}

	if strings.TrimSpace(value) == "" {
		return m, nil
	}
	m.input.SetValue("")
	m.overlays.ResetCity()
	m.loading = true
	m.err = nil
	m.status = ""
	return m, tea.Batch(m.spinner.Tick, searchCmd(m.ctx, m.dash, value))
}

func (m *Model) clampCursor() {
	n := 0
	switch m.overlays.Top() {
	case dashboard.OverlayHistory:
		n = len(m.view.History)
	case dashboard.OverlayNoteList:
		n = len(m.view.AllNotes)
	case dashboard.OverlayGallery:
		n = len(m.view.Photos)
	}
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

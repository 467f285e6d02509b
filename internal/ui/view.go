package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
)

// View renders the main panel followed by any open overlays.
func (m Model) View() string {
	sections := []string{
		titleStyle.Render("Weather Dashboard"),
		m.input.View(),
		m.viewWeather(),
		m.viewChips(),
	}

	for _, o := range []dashboard.Overlay{
		dashboard.OverlayMenu,
		dashboard.OverlayHistory,
		dashboard.OverlayGallery,
		dashboard.OverlayNoteList,
		dashboard.OverlayAddNote,
		dashboard.OverlayDeveloper,
	} {
		if m.overlays.IsOpen(o) {
			sections = append(sections, m.viewOverlay(o))
		}
	}

	sections = append(sections, m.viewStatus(), helpStyle.Render(
		"enter search/select • tab note chips • ctrl+e edit • ctrl+x delete • ctrl+t menu • esc close • ctrl+c quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewWeather() string {
	v := m.view
	style := paneStyle.BorderForeground(themeColor(v.Theme))
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}

	switch v.Status {
	case dashboard.StatusLoading, dashboard.StatusIdle:
		return style.Render(fmt.Sprintf("%s Loading %s...", m.spinner.View(), v.City))
	case dashboard.StatusNotFound:
		return style.Render(errorStyle.Render(v.Message))
	}
	if v.Weather == nil {
		return style.Render(mutedStyle.Render("No weather data"))
	}

	var b strings.Builder
	title := v.City
	if v.ResolvedAs != "" && v.ResolvedAs != v.City {
		title += mutedStyle.Render(" (as " + v.ResolvedAs + ")")
	}
	fmt.Fprintf(&b, "%s  %s\n", titleStyle.Render(title), conditionIcon(v.Condition))
	fmt.Fprintf(&b, "%s  %s\n", v.Weather.Temperature, v.Weather.Description)
	if v.Weather.Wind != "" {
		fmt.Fprintf(&b, "Wind %s\n", v.Weather.Wind)
	}
	for i, f := range v.Weather.Forecast {
		day := f.Day
		if day == "" {
			day = fmt.Sprint(i + 1)
		}
		fmt.Fprintf(&b, "%s Day %s: %s, %s\n", mutedStyle.Render("•"), day, f.Temperature, f.Wind)
	}
	fmt.Fprintf(&b, "%s", mutedStyle.Render(fmt.Sprintf("%d photos • theme %s", len(v.Photos), v.Theme)))
	return style.Render(b.String())
}

func (m Model) viewChips() string {
	if len(m.view.CityNotes) == 0 {
		return mutedStyle.Render("No notes for this city")
	}
	expanded := m.overlays.Expanded(dashboard.CityChips)
	editID, editText, editing := m.overlays.Editing(dashboard.CityChips)

	chips := make([]string, 0, len(m.view.CityNotes))
	for _, n := range m.view.CityNotes {
		switch {
		case editing && n.ID == editID:
			chips = append(chips, expandedChipStyle.Render("✎ "+editText))
		case n.ID == expanded:
			chips = append(chips, expandedChipStyle.Render(n.Text))
		default:
			chips = append(chips, chipStyle.Render(truncate(n.Text, 16)))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m Model) viewOverlay(o dashboard.Overlay) string {
	var lines []string
	top := m.overlays.Top() == o

	switch o {
	case dashboard.OverlayMenu:
		lines = []string{
			"ctrl+r  Search history",
			"ctrl+l  All notes",
			"ctrl+n  Add note",
			"ctrl+g  Gallery",
			"ctrl+u  Upload photos",
			"ctrl+d  Developer info",
		}
	case dashboard.OverlayHistory:
		for i, h := range m.view.History {
			lines = append(lines, m.row(top, i, fmt.Sprintf("%s - %s (%s)", h.City, h.Description, h.SearchedAt.Local().Format("Jan 2 15:04"))))
		}
		if len(lines) == 0 {
			lines = append(lines, mutedStyle.Render("No searches yet"))
		} else {
			lines = append(lines, mutedStyle.Render("ctrl+k clear all"))
		}
	case dashboard.OverlayGallery:
		for i, p := range m.view.Photos {
			lines = append(lines, m.row(top, i, fmt.Sprintf("%s (%s)", p.ImageURL, p.UploadedAt.Local().Format("Jan 2 15:04"))))
		}
		if len(lines) == 0 {
			lines = append(lines, mutedStyle.Render("No photos for "+m.view.City))
		}
	case dashboard.OverlayNoteList:
		editID, editText, editing := m.overlays.Editing(dashboard.NoteListItems)
		for i, n := range m.view.AllNotes {
			text := n.Text
			if editing && n.ID == editID {
				text = "✎ " + editText
			}
			lines = append(lines, m.row(top, i, fmt.Sprintf("%s: %s", n.City, text)))
		}
		if len(lines) == 0 {
			lines = append(lines, mutedStyle.Render("No notes yet"))
		}
	case dashboard.OverlayAddNote:
		lines = []string{"New note for " + m.view.City, m.overlays.Draft}
	case dashboard.OverlayDeveloper:
		lines = []string{
			"Weather Dashboard terminal client",
			"Backend routes under /api, weather via the city API proxy",
		}
	}

	return overlayStyle.Render(titleStyle.Render(common.TitleWords(o.String())) + "\n" + strings.Join(lines, "\n"))
}

func (m Model) row(active bool, i int, text string) string {
	if active && i == m.cursor {
		return selectedStyle.Render("> " + text)
	}
	return "  " + text
}

func (m Model) viewStatus() string {
	switch {
	case m.err != nil:
		return errorStyle.Render(m.err.Error())
	case m.loading:
		return m.spinner.View() + " Working..."
	case m.status != "":
		return successStyle.Render(m.status)
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

package ui

import (
	"context"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/models"
)

// Message types for async operations

// selectedMsg is sent when a load, search or history selection finished.
type selectedMsg struct {
	err error
}

// mutatedMsg is sent when a write and its list refresh finished.
type mutatedMsg struct {
	op  string
	err error
}

// uploadedMsg is sent when a photo batch finished.
type uploadedMsg struct {
	result  dashboard.UploadResult
	skipped []string
	err     error
}

func loadCmd(ctx context.Context, d *dashboard.Dashboard) tea.Cmd {
	return func() tea.Msg {
		return selectedMsg{err: d.Load(ctx)}
	}
}

func searchCmd(ctx context.Context, d *dashboard.Dashboard, input string) tea.Cmd {
	return func() tea.Msg {
		return selectedMsg{err: d.Search(ctx, input)}
	}
}

func selectCmd(ctx context.Context, d *dashboard.Dashboard, city string) tea.Cmd {
	return func() tea.Msg {
		return selectedMsg{err: d.Select(ctx, city)}
	}
}

func mutateCmd(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return mutatedMsg{op: op, err: fn()}
	}
}

// uploadCmd reads the listed files and uploads the readable ones.
func uploadCmd(ctx context.Context, d *dashboard.Dashboard, readFile func(string) ([]byte, error), paths []string) tea.Cmd {
	return func() tea.Msg {
		var (
			uploads []models.Upload
			skipped []string
		)
		for _, p := range paths {
			data, err := readFile(p)
			if err != nil {
				skipped = append(skipped, p)
				continue
			}
			uploads = append(uploads, models.Upload{Name: baseName(p), Data: data})
		}
		res, err := d.UploadPhotos(ctx, uploads)
		return uploadedMsg{result: res, skipped: skipped, err: err}
	}
}

func splitPaths(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}

func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

var defaultReadFile = os.ReadFile

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/ui"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			p := tea.NewProgram(ui.NewModel(cmd.Context(), s.dash), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search CITY",
		Short: "Show weather, notes and photos for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			err = s.dash.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil && !errors.Is(err, dashboard.ErrCityNotFound) {
				return err
			}
			printCity(cmd.OutOrStdout(), s.dash.View())
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Search history operations"}

	history.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List searches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			s.dash.Refresh(cmd.Context())
			printHistory(cmd.OutOrStdout(), s.dash.View())
			return nil
		},
	})

	history.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every history entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			s.dash.Refresh(cmd.Context())
			n, err := s.dash.ClearHistory(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries\n", n)
			return err
		},
	})

	return history
}

func notesCmd() *cobra.Command {
	notes := &cobra.Command{Use: "notes", Short: "Note operations"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List notes, optionally for one city",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			s.dash.Refresh(cmd.Context())
			printNotes(cmd.OutOrStdout(), s.dash.View(), cityFlag)
			return nil
		},
	}
	list.Flags().StringVarP(&cityFlag, "city", "c", "", "Only notes for this city")
	notes.AddCommand(list)

	var addCity string
	add := &cobra.Command{
		Use:   "add TEXT",
		Short: "Add a note to a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.dash.AddNote(cmd.Context(), addCity, strings.Join(args, " ")); err != nil {
				return err
			}
			printNotes(cmd.OutOrStdout(), s.dash.View(), addCity)
			return nil
		},
	}
	add.Flags().StringVarP(&addCity, "city", "c", "", "City the note belongs to (required)")
	_ = add.MarkFlagRequired("city")
	notes.AddCommand(add)

	return notes
}

func printCity(w io.Writer, v dashboard.View) {
	if v.Status == dashboard.StatusNotFound {
		fmt.Fprintln(w, v.Message)
		return
	}
	if v.Weather == nil {
		fmt.Fprintf(w, "%s: no weather data\n", v.City)
		return
	}
	fmt.Fprintf(w, "%s: %s, %s (%s)\n", v.City, v.Weather.Temperature, v.Weather.Description, v.Theme)
	if v.Weather.Wind != "" {
		fmt.Fprintf(w, "  wind %s\n", v.Weather.Wind)
	}
	for i, f := range v.Weather.Forecast {
		fmt.Fprintf(w, "  day %d: %s, %s\n", i+1, f.Temperature, f.Wind)
	}
	for _, n := range v.CityNotes {
		fmt.Fprintf(w, "  note #%d: %s\n", n.ID, n.Text)
	}
	fmt.Fprintf(w, "  %d photos\n", len(v.Photos))
}

func printHistory(w io.Writer, v dashboard.View) {
	if len(v.History) == 0 {
		fmt.Fprintln(w, "no searches yet")
		return
	}
	for _, h := range v.History {
		fmt.Fprintf(w, "#%d %s  %s  %s\n", h.ID, h.SearchedAt.Local().Format("2006-01-02 15:04"), h.City, h.Description)
	}
}

func printNotes(w io.Writer, v dashboard.View, city string) {
	printed := 0
	for _, n := range v.AllNotes {
		if city != "" && !strings.EqualFold(n.City, city) {
			continue
		}
		fmt.Fprintf(w, "#%d [%s] %s\n", n.ID, n.City, n.Text)
		printed++
	}
	if printed == 0 {
		fmt.Fprintln(w, "no notes")
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-dashboard/internal/client"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/logger"
)

var (
	serverFlag  string
	weatherFlag string
	cityFlag    string
	rootCmd     = &cobra.Command{
		Use:          "weatherctl",
		Short:        "Terminal client for the weather dashboard backend",
		SilenceUsage: true,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", "", "Backend API URL (overrides WEATHERCTL_SERVER_URL)")
	rootCmd.PersistentFlags().StringVarP(&weatherFlag, "weather-url", "w", "", "Upstream city weather API (overrides WEATHERCTL_WEATHER_URL)")

	rootCmd.AddCommand(tuiCmd(), searchCmd(), historyCmd(), notesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session bundles what every subcommand needs.
type session struct {
	cfg   *config.ClientConfig
	dash  *dashboard.Dashboard
	close func()
}

// newSession loads configuration, applies flag overrides and wires the
// gateway into a dashboard. Logs go to the configured file so they never
// interleave with terminal output.
func newSession() (*session, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}
	if weatherFlag != "" {
		cfg.WeatherURL = weatherFlag
	}

	var sink io.Writer = io.Discard
	closeLog := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		sink = f
		closeLog = func() { _ = f.Close() }
	}
	lg := logger.NewWithWriter(sink, "weatherctl", cfg.LogLevel)

	return &session{
		cfg:   cfg,
		dash:  newDashboard(cfg, lg),
		close: closeLog,
	}, nil
}

func newDashboard(cfg *config.ClientConfig, lg zerolog.Logger) *dashboard.Dashboard {
	gw := client.New(client.Options{
		ServerURL:  cfg.ServerURL,
		WeatherURL: cfg.WeatherURL,
		Timeout:    cfg.Timeout,
		Log:        lg,
	})
	return dashboard.New(gw, dashboard.Options{
		DefaultCity:    cfg.DefaultCity,
		WeatherTimeout: cfg.WeatherTimeout,
		Log:            lg,
	})
}

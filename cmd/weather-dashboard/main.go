package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/blob"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/logger"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/photos"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/store/sqlstore"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	lg := logger.New("weather-dashboard", cfg.LogLevel)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker), in priority order.
	provs := []weather.Provider{providers.NewGoWeatherProvider(httpClient, cfg.WeatherAPIURL)}
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	st, blobs, err := openStorage(cfg)
	if err != nil {
		lg.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open storage")
	}
	defer st.Close()

	weatherSvc := weather.NewService(provs, cfg.WeatherCacheTTL, m, lg)
	photoSvc := photos.NewService(st, blobs, m, lg)

	// Janitor that reclaims blobs left behind by interrupted uploads.
	sched := scheduler.New(photoSvc, cfg.SweepInterval, cfg.SweepGrace, lg)
	if err := sched.Start(); err != nil {
		lg.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             cfg.MaxUploadBytes,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Services{
		Weather:  weatherSvc,
		Store:    st,
		Photos:   photoSvc,
		Gatherer: reg,
		Log:      lg,
	})

	go func() {
		lg.Info().Str("port", cfg.Port).Str("driver", cfg.DBDriver).Msg("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("error during shutdown")
	}
}

// openStorage picks the metadata store and the blob store for the driver.
// The memory driver keeps both in process.
func openStorage(cfg *config.AppConfig) (store.Store, blob.Store, error) {
	if cfg.DBDriver == "memory" {
		return store.NewMemoryStore(), blob.NewMemoryStore(), nil
	}
	st, err := sqlstore.New(cfg.DBDriver, cfg.DBConn)
	if err != nil {
		return nil, nil, err
	}
	blobs, err := blob.NewFSStore(cfg.BlobDir)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	return st, blobs, nil
}

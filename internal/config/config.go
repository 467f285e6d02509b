package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var validate = validator.New()

// AppConfig configures the backend process.
type AppConfig struct {
	Port string `envconfig:"PORT" default:"8080" validate:"required,numeric"`

	// Upstream weather endpoints. The city name is appended to WeatherAPIURL.
	WeatherAPIURL     string        `envconfig:"WEATHER_API_URL" default:"https://goweather.herokuapp.com/weather/" validate:"required,url"`
	OpenWeatherAPIKey string        `envconfig:"OPENWEATHER_API_KEY"`
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"gt=0"`
	WeatherCacheTTL   time.Duration `envconfig:"WEATHER_CACHE_TTL" default:"10m" validate:"gte=0"`

	// Persistence.
	DBDriver       string `envconfig:"DB_DRIVER" default:"sqlite" validate:"oneof=sqlite postgres memory"`
	DBConn         string `envconfig:"DB_CONN" default:"weather-dashboard.db"`
	BlobDir        string `envconfig:"BLOB_DIR" default:"data/images"`
	MaxUploadBytes int    `envconfig:"MAX_UPLOAD_BYTES" default:"10485760" validate:"gt=0"`

	// Orphan blob janitor.
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`
	SweepGrace    time.Duration `envconfig:"SWEEP_GRACE" default:"15m" validate:"gte=0"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// ClientConfig configures weatherctl. Keys carry the WEATHERCTL_ prefix.
type ClientConfig struct {
	ServerURL string `envconfig:"SERVER_URL" default:"http://localhost:8080/api" validate:"required,url"`
	// WeatherURL points the gateway straight at an upstream city API.
	// Empty means the backend's /weather proxy is used.
	WeatherURL     string        `envconfig:"WEATHER_URL" validate:"omitempty,url"`
	Timeout        time.Duration `envconfig:"TIMEOUT" default:"10s" validate:"gt=0"`
	WeatherTimeout time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s" validate:"gt=0"`
	DefaultCity    string        `envconfig:"DEFAULT_CITY" default:"Davao City" validate:"required"`
	LogFile        string        `envconfig:"LOG_FILE" default:"weatherctl.log"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the backend configuration from .env (if present) and the environment.
func Load() (*AppConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if cfg.DBDriver == "postgres" && cfg.DBConn == "" {
		return nil, errors.New("DB_CONN is required for the postgres driver")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadClient reads the weatherctl configuration.
func LoadClient() (*ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg := &ClientConfig{}
	if err := envconfig.Process("weatherctl", cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// A missing .env is normal outside local development.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

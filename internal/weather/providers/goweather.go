package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// GoWeatherProvider queries a city-path weather API of the form
// GET {baseURL}{city} returning {temperature, wind, description, forecast}.
type GoWeatherProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewGoWeatherProvider(client *http.Client, baseURL string) *GoWeatherProvider {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &GoWeatherProvider{
		name:    "goweather",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newBreaker("goweather"),
	}
}

func (p *GoWeatherProvider) Name() string {
	return p.name
}

func (p *GoWeatherProvider) Fetch(ctx context.Context, city string) (weather.Snapshot, error) {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, p.baseURL+url.PathEscape(city), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, err
	}
	defer resp.Body.Close()

	var snap weather.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return weather.Snapshot{}, fmt.Errorf("decode %s response: %w", p.name, err)
	}
	if !snap.Found() {
		return weather.Snapshot{}, weather.ErrNotFound
	}
	return snap, nil
}

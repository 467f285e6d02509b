package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-dashboard/internal/metrics"
)

// Service resolves cities against the configured providers and caches hits.
type Service struct {
	providers []Provider
	cache     *cache.Cache
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewService creates a new Service. Providers are listed in priority order.
// A cacheTTL of zero disables caching.
func NewService(providers []Provider, cacheTTL time.Duration, m *metrics.Metrics, log zerolog.Logger) *Service {
	var c *cache.Cache
	if cacheTTL > 0 {
		c = cache.New(cacheTTL, 2*cacheTTL)
	}
	return &Service{
		providers: providers,
		cache:     c,
		metrics:   m,
		log:       log,
	}
}

// Lookup fetches the city from all providers concurrently and merges the
// answers. It returns ErrNotFound when every provider that answered did not
// know the city, and ErrUnavailable when no provider answered at all.
// Misses are never cached so a transient upstream gap does not stick.
func (s *Service) Lookup(ctx context.Context, city string) (Snapshot, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Snapshot{}, ErrNotFound
	}
	key := strings.ToLower(city)

	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			s.count("cached")
			return v.(Snapshot), nil
		}
	}

	if len(s.providers) == 0 {
		s.log.Error().Str("city", city).Msg("no weather providers configured")
		s.count("error")
		return Snapshot{}, fmt.Errorf("%w: no providers configured", ErrUnavailable)
	}

	var (
		wg       sync.WaitGroup
		readings = make([]Reading, len(s.providers))
		answered = make([]bool, len(s.providers))
	)

	for i, p := range s.providers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			snap, err := p.Fetch(ctx, city)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					answered[i] = true
					return
				}
				// Log and continue; a single provider failing is not fatal.
				s.log.Warn().Err(err).Str("provider", p.Name()).Str("city", city).Msg("provider fetch failed")
				return
			}
			readings[i] = Reading{ProviderName: p.Name(), Snapshot: snap}
			answered[i] = true
		}()
	}
	wg.Wait()

	if snap, ok := MergeReadings(readings); ok {
		if s.cache != nil {
			s.cache.SetDefault(key, snap)
		}
		s.count("hit")
		return snap, nil
	}

	for _, a := range answered {
		if a {
			s.count("not_found")
			return Snapshot{}, ErrNotFound
		}
	}

	s.count("error")
	return Snapshot{}, ErrUnavailable
}

func (s *Service) count(result string) {
	if s.metrics != nil {
		s.metrics.WeatherLookups.WithLabelValues(result).Inc()
	}
}

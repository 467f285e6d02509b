package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the backend's collectors.
type Metrics struct {
	WeatherLookups *prometheus.CounterVec
	PhotoUploads   *prometheus.CounterVec
	PhotoDeletes   *prometheus.CounterVec
	BlobsSwept     prometheus.Counter
}

// New registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry()
// so repeated construction does not collide on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WeatherLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "weather_lookups_total",
			Help:      "Weather lookups by result (hit, cached, not_found, error).",
		}, []string{"result"}),
		PhotoUploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "photo_uploads_total",
			Help:      "Photo uploads by result.",
		}, []string{"result"}),
		PhotoDeletes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "photo_deletes_total",
			Help:      "Photo deletions by result.",
		}, []string{"result"}),
		BlobsSwept: f.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "orphan_blobs_swept_total",
			Help:      "Blobs removed because no photo row referenced them.",
		}),
	}
}

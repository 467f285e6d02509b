package weather

import (
	"strings"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionClear  Condition = "clear"
	ConditionCloudy Condition = "cloudy"
	ConditionRain   Condition = "rain"
	ConditionWind   Condition = "wind"
	ConditionStorm  Condition = "storm"
	ConditionSnow   Condition = "snow"
)

// ForecastDay is one day-ahead forecast entry. Values are display strings
// as the upstream city API returns them (e.g. "+29 °C", "12 km/h").
type ForecastDay struct {
	Day         string `json:"day,omitempty"`
	Temperature string `json:"temperature"`
	Wind        string `json:"wind"`
}

// Snapshot is the current conditions plus a short forecast for one city.
// Fields are omitted when the provider has nothing for the city.
type Snapshot struct {
	Temperature string        `json:"temperature,omitempty"`
	Wind        string        `json:"wind,omitempty"`
	Description string        `json:"description,omitempty"`
	Forecast    []ForecastDay `json:"forecast,omitempty"`
}

// Found reports whether the snapshot carries a temperature. Providers answer
// unknown cities with empty payloads rather than errors, so this is the only
// reliable resolution signal.
func (s Snapshot) Found() bool {
	return strings.TrimSpace(s.Temperature) != ""
}

// ConditionFor maps a free-text description to an icon condition.
// The first matching keyword group wins; anything unrecognised is cloudy.
func ConditionFor(desc string) Condition {
	d := strings.ToLower(desc)
	switch {
	case common.HasAny(d, "sun", "clear"):
		return ConditionClear
	case common.HasAny(d, "cloud"):
		return ConditionCloudy
	case common.HasAny(d, "rain"):
		return ConditionRain
	case common.HasAny(d, "wind"):
		return ConditionWind
	case common.HasAny(d, "thunder"):
		return ConditionStorm
	case common.HasAny(d, "snow"):
		return ConditionSnow
	default:
		return ConditionCloudy
	}
}

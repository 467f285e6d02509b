package dashboard

import (
	"strings"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// Theme is the background style derived from the weather description.
type Theme string

const (
	ThemeDefault Theme = "default"
	ThemeSunny   Theme = "sunny"
	ThemeRainy   Theme = "rainy"
	ThemeCloudy  Theme = "cloudy"
	ThemeSnowy   Theme = "snowy"
)

// Checked in order; the first group with a matching keyword wins.
var themeKeywords = []struct {
	keywords []string
	theme    Theme
}{
	{[]string{"sun", "clear"}, ThemeSunny},
	{[]string{"rain"}, ThemeRainy},
	{[]string{"cloud"}, ThemeCloudy},
	{[]string{"snow"}, ThemeSnowy},
}

// ThemeFor maps a weather description to a background theme.
func ThemeFor(description string) Theme {
	d := strings.ToLower(description)
	for _, k := range themeKeywords {
		if common.HasAny(d, k.keywords...) {
			return k.theme
		}
	}
	return ThemeDefault
}

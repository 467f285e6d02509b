package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// Color palette
	colorPrimary = lipgloss.Color("#00BFFF")
	colorMuted   = lipgloss.Color("#6C757D")
	colorDanger  = lipgloss.Color("#FF6B6B")
	colorSuccess = lipgloss.Color("#6BCF7F")

	themeColors = map[dashboard.Theme]lipgloss.Color{
		dashboard.ThemeSunny:   lipgloss.Color("#FFB347"),
		dashboard.ThemeRainy:   lipgloss.Color("#4A6FA5"),
		dashboard.ThemeCloudy:  lipgloss.Color("#8E9AAF"),
		dashboard.ThemeSnowy:   lipgloss.Color("#E0F7FA"),
		dashboard.ThemeDefault: lipgloss.Color("#4A90E2"),
	}

	conditionIcons = map[weather.Condition]string{
		weather.ConditionClear:  "☀",
		weather.ConditionCloudy: "☁",
		weather.ConditionRain:   "☂",
		weather.ConditionWind:   "≋",
		weather.ConditionStorm:  "⚡",
		weather.ConditionSnow:   "❄",
	}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#3A3F44")).
			Padding(0, 1).
			MarginRight(1)

	expandedChipStyle = chipStyle.
				Background(colorPrimary)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle   = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	helpStyle    = lipgloss.NewStyle().Foreground(colorMuted).Padding(1, 0, 0, 0)
)

func themeColor(t dashboard.Theme) lipgloss.Color {
	if c, ok := themeColors[t]; ok {
		return c
	}
	return themeColors[dashboard.ThemeDefault]
}

func conditionIcon(c weather.Condition) string {
	if icon, ok := conditionIcons[c]; ok {
		return icon
	}
	return conditionIcons[weather.ConditionCloudy]
}

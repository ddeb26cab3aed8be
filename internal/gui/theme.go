package gui

import (
	"log/slog"
	"strings"

	darkmode "github.com/thiagokokada/dark-mode-go"

	"github.com/thiagokokada/storygraph/internal/gui/widgets"
)

type ThemePreference int

const (
	ThemeAuto ThemePreference = iota
	ThemeLight
	ThemeDark
)

func (p ThemePreference) String() string {
	switch p {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

type colorPalette struct {
	ThemeName    string
	Canvas       widgets.CanvasStyle
	DetailHeader string
	DetailMuted  string
}

var (
	lightPalette = colorPalette{
		ThemeName:    "azure light",
		Canvas:       widgets.CanvasStyleFor(false),
		DetailHeader: "#e4e4e4",
		DetailMuted:  "#6b6b6b",
	}
	darkPalette = colorPalette{
		ThemeName:    "azure dark",
		Canvas:       widgets.CanvasStyleFor(true),
		DetailHeader: "#2f2f2f",
		DetailMuted:  "#9a9a9a",
	}
	detectDarkMode = darkmode.IsDarkMode
)

func ThemePreferenceFromString(raw string) ThemePreference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeDark.String():
		return ThemeDark
	case ThemeLight.String():
		return ThemeLight
	default:
		return ThemeAuto
	}
}

func paletteForPreference(pref ThemePreference) colorPalette {
	switch pref {
	case ThemeDark:
		return darkPalette
	case ThemeLight:
		return lightPalette
	default:
		if detectDarkMode != nil {
			if dark, err := detectDarkMode(); err == nil {
				if dark {
					return darkPalette
				}
			} else {
				slog.Warn("detect dark-mode", slog.Any("error", err))
			}
		}
		return lightPalette
	}
}

func (p colorPalette) isDark() bool {
	return strings.Contains(strings.ToLower(p.ThemeName), "dark")
}

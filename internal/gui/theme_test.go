package gui

import (
	"errors"
	"testing"
)

func TestThemePreferenceFromString(t *testing.T) {
	cases := map[string]ThemePreference{
		"dark":   ThemeDark,
		" Light": ThemeLight,
		"auto":   ThemeAuto,
		"":       ThemeAuto,
		"purple": ThemeAuto,
	}
	for raw, want := range cases {
		if got := ThemePreferenceFromString(raw); got != want {
			t.Fatalf("ThemePreferenceFromString(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestPaletteForPreference(t *testing.T) {
	orig := detectDarkMode
	t.Cleanup(func() { detectDarkMode = orig })

	detectDarkMode = func() (bool, error) { return true, nil }
	if got := paletteForPreference(ThemeLight); got.isDark() {
		t.Fatalf("explicit light preference returned %q", got.ThemeName)
	}
	if got := paletteForPreference(ThemeAuto); !got.isDark() {
		t.Fatalf("expected dark palette from detection, got %q", got.ThemeName)
	}

	detectDarkMode = func() (bool, error) { return false, errors.New("no desktop") }
	if got := paletteForPreference(ThemeAuto); got.isDark() {
		t.Fatalf("expected light fallback on detection error, got %q", got.ThemeName)
	}
	if got := paletteForPreference(ThemeDark); got.Canvas.Background != darkPalette.Canvas.Background {
		t.Fatalf("expected dark canvas background, got %q", got.Canvas.Background)
	}
}

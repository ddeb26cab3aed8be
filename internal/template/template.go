// Package template holds the visual style of a rendered story graph.
//
// A Template is built once by overriding a named preset and is then handed to
// a render engine unmodified.
package template

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownPreset   = errors.New("unknown template preset")
	ErrInvalidTemplate = errors.New("invalid template")
)

type Name string

const (
	Metro      Name = "metro"
	BlackArrow Name = "blackarrow"
)

type Template struct {
	Colors []string
	Branch BranchStyle
	Commit CommitStyle
}

type BranchStyle struct {
	LineWidth     int
	Spacing       int
	LabelRotation int
}

type CommitStyle struct {
	Spacing int
	Dot     DotStyle
	Message MessageStyle
}

type DotStyle struct {
	Size        int
	StrokeWidth int
}

type MessageStyle struct {
	DisplayAuthor bool
	DisplayBranch bool
	DisplayHash   bool
	Font          string
}

var presets = map[Name]Template{
	Metro: {
		Colors: []string{"#979797", "#008fb5", "#f1c109"},
		Branch: BranchStyle{LineWidth: 10, Spacing: 50},
		Commit: CommitStyle{
			Spacing: 80,
			Dot:     DotStyle{Size: 14},
			Message: MessageStyle{
				DisplayAuthor: true,
				DisplayBranch: true,
				DisplayHash:   true,
				Font:          "normal 14pt Arial",
			},
		},
	},
	BlackArrow: {
		Colors: []string{"#6963FF", "#47E8D4", "#6BDB52", "#E84BA5", "#FFA657"},
		Branch: BranchStyle{LineWidth: 2, Spacing: 20},
		Commit: CommitStyle{
			Spacing: 60,
			Dot:     DotStyle{Size: 12, StrokeWidth: 2},
			Message: MessageStyle{
				DisplayAuthor: true,
				DisplayBranch: true,
				DisplayHash:   true,
				Font:          "normal 12pt Calibri",
			},
		},
	},
}

// Names lists the available presets.
func Names() []Name {
	names := make([]Name, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Preset returns a copy of the named preset.
func Preset(name Name) (Template, error) {
	key := Name(strings.ToLower(strings.TrimSpace(string(name))))
	if key == "" {
		key = Metro
	}
	t, ok := presets[key]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return t.Clone(), nil
}

// Clone returns a copy that shares no memory with t.
func (t Template) Clone() Template {
	t.Colors = slices.Clone(t.Colors)
	return t
}

// Color returns the palette color for lane i, cycling through the palette.
func (t Template) Color(i int) string {
	if len(t.Colors) == 0 {
		return "#000000"
	}
	if i < 0 {
		i = -i
	}
	return t.Colors[i%len(t.Colors)]
}

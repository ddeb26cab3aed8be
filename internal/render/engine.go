// Package render turns a story graph into a drawable layout and provides the
// headless render engines (SVG and plain-text outline).
package render

import (
	"fmt"
	"strings"

	"github.com/thiagokokada/storygraph/internal/story"
)

// Engine redraws the current state of a graph. Refresh must produce identical
// output when called again without an intervening model change.
type Engine interface {
	Refresh() error
}

// EngineFunc adapts a function to Engine.
type EngineFunc func() error

func (f EngineFunc) Refresh() error { return f() }

type Orientation string

const (
	Vertical          Orientation = "vertical"
	VerticalReverse   Orientation = "vertical-reverse"
	Horizontal        Orientation = "horizontal"
	HorizontalReverse Orientation = "horizontal-reverse"
)

type Mode string

const (
	Extended Mode = "extended"
	Compact  Mode = "compact"
)

// DetailFunc returns the lines shown under an expanded commit.
type DetailFunc func(c *story.Commit) []string

// Options are the layout settings passed to an engine when it is created.
type Options struct {
	Orientation Orientation
	Mode        Mode
	// Detail produces the expanded text of a commit. Nil shows the body and
	// the raw detail payload.
	Detail DetailFunc
}

// ParseOrientation maps user input to an Orientation.
func ParseOrientation(raw string) (Orientation, error) {
	switch o := Orientation(strings.ToLower(strings.TrimSpace(raw))); o {
	case "":
		return Vertical, nil
	case Vertical, VerticalReverse, Horizontal, HorizontalReverse:
		return o, nil
	default:
		return "", fmt.Errorf("unknown orientation %q", raw)
	}
}

// ParseMode maps user input to a Mode.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return Extended, nil
	case Extended, Compact:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", raw)
	}
}

func (o Options) normalized() Options {
	if o.Orientation == "" {
		o.Orientation = Vertical
	}
	if o.Mode == "" {
		o.Mode = Extended
	}
	if o.Detail == nil {
		o.Detail = DefaultDetail
	}
	return o
}

func (o Orientation) horizontal() bool {
	return o == Horizontal || o == HorizontalReverse
}

// DefaultDetail shows the body followed by the raw detail payload.
func DefaultDetail(c *story.Commit) []string {
	var lines []string
	for _, text := range []string{c.Body(), c.Detail()} {
		if text == "" {
			continue
		}
		lines = append(lines, strings.Split(text, "\n")...)
	}
	return lines
}

package script

import (
	"log/slog"
	"maps"

	"github.com/thiagokokada/storygraph/internal/story"
)

// Listeners maps the listener names a story may reference to callbacks.
type Listeners map[string]story.Listener

// Builtin returns the listeners every story can use.
func Builtin() Listeners {
	return Listeners{"log": LogInteraction}
}

// With returns a copy of l extended with extra. Entries in extra win.
func (l Listeners) With(extra Listeners) Listeners {
	out := maps.Clone(l)
	if out == nil {
		out = Listeners{}
	}
	maps.Copy(out, extra)
	return out
}

// LogInteraction logs the click at info level.
func LogInteraction(id story.CommitID, expanded bool) {
	slog.Info("commit clicked", slog.Int("commit", int(id)), slog.Bool("expanded", expanded))
}

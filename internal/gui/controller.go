package gui

import (
	"log/slog"

	"github.com/thiagokokada/storygraph/internal/gui/widgets"
	"github.com/thiagokokada/storygraph/internal/script"
	"github.com/thiagokokada/storygraph/internal/session"
	"github.com/thiagokokada/storygraph/internal/story"
	. "modernc.org/tk9.0"
)

// Controller owns the Tk window and the session shown in it. All of its
// methods run on the Tk event loop, which is what serialises clicks.
type Controller struct {
	cfg   controllerConfig
	theme controllerTheme
	story controllerStory

	ui appWidgets

	watch     autoReloadState
	shortcuts shortcutsState

	log *slog.Logger
}

type controllerConfig struct {
	storyPath           string
	autoReloadRequested bool
	syntaxHighlight     bool
	listeners           script.Listeners
}

type controllerTheme struct {
	pref    ThemePreference
	palette colorPalette
}

type controllerStory struct {
	session *session.Session
	// loading is the script being started, so Lookup can hand its files to
	// the new engine.
	loading *script.Script
	// focus is the commit most recently expanded from the canvas.
	focus story.CommitID
}

type appWidgets struct {
	graph        *widgets.GraphCanvas
	detail       *TextWidget
	status       *TLabelWidget
	title        *TLabelWidget
	reloadButton *TButtonWidget
	syntaxTags   map[string]string
}

type shortcutsState struct {
	window *ToplevelWidget
}

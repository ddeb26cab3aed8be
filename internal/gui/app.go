package gui

import (
	"fmt"
	"log/slog"

	"github.com/thiagokokada/storygraph/internal/buildinfo"
	"github.com/thiagokokada/storygraph/internal/script"
	"github.com/thiagokokada/storygraph/internal/session"
	"github.com/thiagokokada/storygraph/internal/story"

	. "modernc.org/tk9.0"
	_ "modernc.org/tk9.0/themes/azure" // load theme
)

// RunConfig describes the parameters that control the GUI runtime.
type RunConfig struct {
	// StoryPath is the story file to show. Empty shows the built-in story.
	StoryPath       string
	ThemePreference ThemePreference
	AutoReload      bool
	SyntaxHighlight bool
	Listeners       script.Listeners
	Logger          *slog.Logger
}

func Run(cfg RunConfig) error {
	if err := InitializeExtension("eval"); err != nil && err != AlreadyInitialized {
		return fmt.Errorf("init eval extension: %v", err)
	}
	sc, err := script.LoadOrDefault(cfg.StoryPath)
	if err != nil {
		return err
	}
	pref := cfg.ThemePreference
	if pref < ThemeAuto || pref > ThemeDark {
		pref = ThemeAuto
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := &Controller{
		cfg: controllerConfig{
			storyPath:           cfg.StoryPath,
			autoReloadRequested: cfg.AutoReload && cfg.StoryPath != "",
			syntaxHighlight:     cfg.SyntaxHighlight,
			listeners:           cfg.Listeners,
		},
		theme: controllerTheme{
			pref: pref,
		},
		log: logger,
	}
	return app.run(sc)
}

func (a *Controller) run(sc *script.Script) error {
	defer a.shutdown()
	a.theme.palette = paletteForPreference(a.theme.pref)
	if a.theme.palette.ThemeName != "" {
		err := ActivateTheme(a.theme.palette.ThemeName)
		if err != nil {
			a.log.Error(
				"activate theme",
				slog.String("theme", a.theme.palette.ThemeName),
				slog.Any("error", err),
			)
		}
	}
	applyAppIcon()
	a.buildUI()
	if err := a.startSession(sc); err != nil {
		Destroy(App)
		return err
	}
	a.initAutoReload(a.cfg.autoReloadRequested)
	App.WmTitle(buildinfo.Title())
	App.SetResizable(true, true)
	App.Center().Wait()
	return nil
}

// Lookup resolves the container a story asks to be drawn into. The window
// has a single graph canvas.
func (a *Controller) Lookup(id string) (session.Container, bool) {
	if id != script.DefaultContainer || a.ui.graph == nil {
		return nil, false
	}
	return a.container(), true
}

func (a *Controller) startSession(sc *script.Script) error {
	a.story.loading = sc
	defer func() { a.story.loading = nil }()
	sess, err := session.Start(a, session.Config{
		Script:    sc,
		Listeners: a.cfg.listeners,
		Logger:    a.log,
	})
	if err != nil {
		return err
	}
	a.adopt(sess)
	return nil
}

// replaceSession swaps in next. On failure the current session keeps
// running; nothing was drawn since the new engine never refreshed.
func (a *Controller) replaceSession(next *script.Script) error {
	cur := a.story.session
	if cur == nil {
		return a.startSession(next)
	}
	a.story.loading = next
	defer func() { a.story.loading = nil }()
	prevFocus := a.story.focus
	a.story.focus = 0
	sess, err := cur.Replace(a, next, a.cfg.listeners)
	if err != nil {
		a.story.focus = prevFocus
		return err
	}
	a.adopt(sess)
	return nil
}

func (a *Controller) adopt(sess *session.Session) {
	a.story.session = sess
	a.updateTitleLabel()
	a.setStatus(a.statusSummary())
}

func (a *Controller) onCanvasClick(x, y int) {
	sess := a.story.session
	if sess == nil || a.ui.graph == nil {
		return
	}
	id, ok := a.ui.graph.CommitAt(x, y)
	if !ok {
		return
	}
	prevFocus := a.story.focus
	a.story.focus = id
	expanded, err := sess.Controller.Toggle(id)
	if err != nil {
		a.story.focus = prevFocus
		a.log.Error("toggle commit", slog.Int("commit", int(id)), slog.Any("error", err))
		a.setStatus(fmt.Sprintf("Unable to toggle commit %d: %v", id, err))
		return
	}
	if !expanded {
		// The pane already fell back to the newest expanded commit.
		a.story.focus = 0
	}
	a.setStatus(a.statusSummary())
}

func (a *Controller) collapseAll() {
	sess := a.story.session
	if sess == nil {
		return
	}
	a.story.focus = 0
	if err := sess.Controller.CollapseAll(); err != nil {
		a.log.Error("collapse all", slog.Any("error", err))
		a.setStatus(fmt.Sprintf("Unable to collapse commits: %v", err))
		return
	}
	a.setStatus(a.statusSummary())
}

func (a *Controller) reloadStory() {
	if a.cfg.storyPath == "" {
		a.setStatus("The built-in story cannot be reloaded.")
		return
	}
	next, err := script.Load(a.cfg.storyPath)
	if err == nil {
		err = a.replaceSession(next)
	}
	if err != nil {
		a.log.Error("failed to reload story", slog.String("path", a.cfg.storyPath), slog.Any("error", err))
		a.setStatus(fmt.Sprintf("Failed to reload story: %v", err))
		return
	}
	a.setStatus(a.statusSummary())
}

func (a *Controller) setStatus(msg string) {
	if a.ui.status == nil {
		return
	}
	text := msg
	PostEvent(func() {
		a.ui.status.Configure(Txt(text))
	}, false)
}

func (a *Controller) statusSummary() string {
	sess := a.story.session
	if sess == nil {
		return "No story loaded."
	}
	return formatStatus(sess.Script.Name(), sess.Graph, len(sess.Controller.Expanded()))
}

func formatStatus(name string, g *story.Graph, expanded int) string {
	base := fmt.Sprintf("%s: %d commits on %d branches, %d merges", name, g.Len(), len(g.Branches()), len(g.Merges()))
	if expanded == 0 {
		return base
	}
	return fmt.Sprintf("%s (%d expanded)", base, expanded)
}

func (a *Controller) updateTitleLabel() {
	if a.ui.title == nil || a.story.session == nil {
		return
	}
	label := fmt.Sprintf("Story: %s", a.story.session.Script.Name())
	if a.cfg.storyPath != "" {
		label = fmt.Sprintf("%s (%s)", label, a.cfg.storyPath)
	}
	a.ui.title.Configure(Txt(label))
}

func (a *Controller) shutdown() {
	if err := a.disableAutoReload(); err != nil {
		a.log.Error("watcher close", slog.Any("error", err))
	}
}

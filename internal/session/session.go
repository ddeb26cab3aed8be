// Package session wires a story script to a host's render engine.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/thiagokokada/storygraph/internal/detail"
	"github.com/thiagokokada/storygraph/internal/interact"
	"github.com/thiagokokada/storygraph/internal/render"
	"github.com/thiagokokada/storygraph/internal/script"
	"github.com/thiagokokada/storygraph/internal/story"
	"github.com/thiagokokada/storygraph/internal/template"
)

var ErrContainerNotFound = errors.New("container not found")

// Container is the display surface a host hands out for a container id.
type Container interface {
	// Engine creates the render engine drawing g into the container.
	Engine(g *story.Graph, tmpl template.Template, opts render.Options) (render.Engine, error)
}

// Host resolves container ids to display surfaces.
type Host interface {
	Lookup(id string) (Container, bool)
}

// HostFunc adapts a function to Host.
type HostFunc func(id string) (Container, bool)

func (f HostFunc) Lookup(id string) (Container, bool) { return f(id) }

// ContainerFunc adapts a function to Container.
type ContainerFunc func(g *story.Graph, tmpl template.Template, opts render.Options) (render.Engine, error)

func (f ContainerFunc) Engine(g *story.Graph, tmpl template.Template, opts render.Options) (render.Engine, error) {
	return f(g, tmpl, opts)
}

// Session is one display of one story. It is created at startup and passed
// explicitly to whatever drives it.
type Session struct {
	ID         uuid.UUID
	Script     *script.Script
	Graph      *story.Graph
	Template   template.Template
	Options    render.Options
	Engine     render.Engine
	Controller *interact.Controller
	Log        *slog.Logger

	baseLog *slog.Logger
}

type Config struct {
	Script *script.Script
	// Listeners extends the built-in listeners available to the script.
	Listeners script.Listeners
	Logger    *slog.Logger
}

// Start builds the story and draws it once. Any failure aborts before the
// first refresh, so a host never shows a partial graph.
func Start(host Host, cfg Config) (*Session, error) {
	if cfg.Script == nil {
		return nil, fmt.Errorf("start session: %w: no script", script.ErrInvalidScript)
	}
	id := uuid.New()
	base := cfg.Logger
	if base == nil {
		base = slog.Default()
	}
	logger := base.With(slog.String("session", id.String()))

	s := cfg.Script
	container, ok := host.Lookup(s.Container)
	if !ok {
		return nil, fmt.Errorf("start session: %w: %q", ErrContainerNotFound, s.Container)
	}
	tmpl, err := s.BuildTemplate()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	opts, err := s.Options()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	opts.Detail = detail.Func(s.Files)

	g, err := s.Build(script.Builtin().With(cfg.Listeners))
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	engine, err := container.Engine(g, tmpl, opts)
	if err != nil {
		return nil, fmt.Errorf("start session: create engine: %w", err)
	}
	if err := engine.Refresh(); err != nil {
		return nil, fmt.Errorf("start session: first refresh: %w", err)
	}
	logger.Info("session started",
		slog.String("story", s.Name()),
		slog.String("container", s.Container),
		slog.Int("commits", g.Len()),
	)
	return &Session{
		ID:         id,
		Script:     s,
		Graph:      g,
		Template:   tmpl,
		Options:    opts,
		Engine:     engine,
		Controller: interact.New(g, engine, logger),
		Log:        logger,
		baseLog:    base,
	}, nil
}

// Outline is the plain-text rendering of the session's current state.
func (s *Session) Outline() string {
	return render.OutlineString(s.Graph, s.Template, s.Options)
}

// Replace starts a session for next on the same host and logs how the
// outline changed. The old session's branch and commit handles stay bound
// to the old graph.
func (s *Session) Replace(host Host, next *script.Script, listeners script.Listeners) (*Session, error) {
	ns, err := Start(host, Config{Script: next, Listeners: listeners, Logger: s.baseLog})
	if err != nil {
		return nil, err
	}
	diff, err := render.OutlineDiff(s.Outline(), ns.Outline())
	if err != nil {
		s.Log.Warn("outline diff failed", slog.Any("error", err))
	} else if diff != "" {
		ns.Log.Debug("story changed", slog.String("previous", s.ID.String()), slog.String("diff", diff))
	}
	return ns, nil
}

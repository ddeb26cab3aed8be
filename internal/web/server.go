// Package web serves a story session over HTTP. Clicks on the SVG go through
// the session's controller; connected pages are told to redraw over a
// websocket after every refresh.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thiagokokada/storygraph/internal/render"
	"github.com/thiagokokada/storygraph/internal/script"
	"github.com/thiagokokada/storygraph/internal/session"
	"github.com/thiagokokada/storygraph/internal/story"
	storytemplate "github.com/thiagokokada/storygraph/internal/template"
)

//go:embed assets
var assets embed.FS

const shutdownTimeout = 5 * time.Second

type Config struct {
	Script *script.Script
	// Dark selects the dark highlighting style for detail panels.
	Dark      bool
	Listeners script.Listeners
	Logger    *slog.Logger
}

// Server hosts one session. mu is the session lock: every handler touching
// the graph holds it, so toggles from concurrent requests run one at a time.
type Server struct {
	mu        sync.Mutex
	sess      *session.Session
	engine    *svgEngine
	hub       *hub
	router    *gin.Engine
	dark      bool
	listeners script.Listeners
	log       *slog.Logger
}

// New starts a session for cfg.Script with the server as its host.
func New(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		hub:       newHub(),
		dark:      cfg.Dark,
		listeners: cfg.Listeners,
		log:       logger,
	}
	sess, err := session.Start(s, session.Config{Script: cfg.Script, Listeners: cfg.Listeners, Logger: logger})
	if err != nil {
		return nil, err
	}
	s.adopt(sess)
	page, err := template.ParseFS(assets, "assets/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	s.router = s.routes(page)
	return s, nil
}

// Lookup serves the page's only graph container.
func (s *Server) Lookup(id string) (session.Container, bool) {
	if id != script.DefaultContainer {
		return nil, false
	}
	return session.ContainerFunc(s.newEngine), true
}

func (s *Server) newEngine(g *story.Graph, tmpl storytemplate.Template, opts render.Options) (render.Engine, error) {
	e := &svgEngine{SVGEngine: render.NewSVGEngine(g, tmpl, opts), graph: g}
	s.engine = e
	return e, nil
}

// adopt makes sess current and starts forwarding its refreshes.
func (s *Server) adopt(sess *session.Session) {
	s.sess = sess
	e := s.engine
	e.notify = func() {
		s.hub.broadcast(Event{Type: "refresh", Session: sess.ID.String(), Generation: e.graph.Generation()})
	}
}

// Reload replaces the session with one built from next. On failure the
// current session keeps running.
func (s *Server) Reload(next *script.Script) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.engine
	sess, err := s.sess.Replace(s, next, s.listeners)
	if err != nil {
		s.engine = prev
		return fmt.Errorf("reload: %w", err)
	}
	s.adopt(sess)
	s.hub.broadcast(Event{Type: "reload", Session: sess.ID.String(), Generation: sess.Graph.Generation()})
	return nil
}

// Session returns the current session.
func (s *Server) Session() *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving story", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		s.hub.close()
		return err
	case <-ctx.Done():
	}
	s.hub.close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// svgEngine is the SVG engine plus the websocket notification.
type svgEngine struct {
	*render.SVGEngine
	graph  *story.Graph
	notify func()
}

func (e *svgEngine) Refresh() error {
	if err := e.SVGEngine.Refresh(); err != nil {
		return err
	}
	if e.notify != nil {
		e.notify()
	}
	return nil
}

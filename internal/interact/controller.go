// Package interact turns clicks on commits into detail toggles.
package interact

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/thiagokokada/storygraph/internal/render"
	"github.com/thiagokokada/storygraph/internal/story"
)

// ErrReentrant is returned for a toggle issued while another one is still
// running, for example from a listener or from inside Refresh.
var ErrReentrant = errors.New("toggle already in progress")

// Controller owns the only mutation of a built graph: flipping a commit's
// detail flag, followed by a single engine refresh.
//
// Operations never block. Hosts drive a controller from a single event loop
// or under their own session lock; any call made while another operation is
// running fails with ErrReentrant.
type Controller struct {
	running atomic.Bool
	graph   *story.Graph
	engine  render.Engine
	log     *slog.Logger
}

func New(g *story.Graph, engine render.Engine, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{graph: g, engine: engine, log: logger}
}

// Toggle flips the detail state of commit id, notifies the commit's listener
// and refreshes the engine once. It returns the new state.
func (c *Controller) Toggle(id story.CommitID) (bool, error) {
	if !c.running.CompareAndSwap(false, true) {
		return false, fmt.Errorf("toggle commit %d: %w", id, ErrReentrant)
	}
	defer c.running.Store(false)
	return c.toggle(id)
}

// CollapseAll collapses every expanded commit, one refresh per commit.
func (c *Controller) CollapseAll() error {
	if !c.running.CompareAndSwap(false, true) {
		return fmt.Errorf("collapse all: %w", ErrReentrant)
	}
	defer c.running.Store(false)
	var errs []error
	for _, id := range c.expanded() {
		if _, err := c.toggle(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Expanded returns the ids of expanded commits in ascending order.
func (c *Controller) Expanded() []story.CommitID {
	return c.expanded()
}

// Refresh redraws without changing state, for hosts that need to repaint.
func (c *Controller) Refresh() error {
	if !c.running.CompareAndSwap(false, true) {
		return fmt.Errorf("refresh: %w", ErrReentrant)
	}
	defer c.running.Store(false)
	return c.engine.Refresh()
}

// Graph returns the controlled graph.
func (c *Controller) Graph() *story.Graph {
	return c.graph
}

func (c *Controller) toggle(id story.CommitID) (bool, error) {
	commit, err := c.graph.Commit(id)
	if err != nil {
		return false, fmt.Errorf("toggle: %w", err)
	}
	expanded := !commit.ShowDetail()
	if _, err := c.graph.SetShowDetail(id, expanded); err != nil {
		return false, fmt.Errorf("toggle: %w", err)
	}
	c.log.Debug("commit toggled",
		slog.Int("commit", int(id)),
		slog.Bool("expanded", expanded),
		slog.Uint64("generation", c.graph.Generation()),
	)
	if l := commit.Listener(); l != nil {
		l(id, expanded)
	}
	if err := c.engine.Refresh(); err != nil {
		return expanded, fmt.Errorf("refresh after toggling commit %d: %w", id, err)
	}
	return expanded, nil
}

func (c *Controller) expanded() []story.CommitID {
	var ids []story.CommitID
	for _, commit := range c.graph.Commits() {
		if commit.ShowDetail() {
			ids = append(ids, commit.ID())
		}
	}
	return ids
}

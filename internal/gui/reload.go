package gui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/thiagokokada/storygraph/internal/watch"
	. "modernc.org/tk9.0"
)

type autoReloadState struct {
	mu         sync.Mutex
	configured bool
	enabled    bool
	watcher    *watch.Watcher
}

func (a *Controller) initAutoReload(requested bool) {
	a.watch.mu.Lock()
	a.watch.configured = requested
	a.watch.mu.Unlock()
	if requested {
		if err := a.enableAutoReload(); err != nil {
			a.log.Error("auto reload disabled", slog.Any("error", err))
			a.watch.mu.Lock()
			a.watch.configured = false
			a.watch.mu.Unlock()
		}
	}
	a.updateReloadButtonLabel()
}

func (a *Controller) enableAutoReload() error {
	a.watch.mu.Lock()
	defer a.watch.mu.Unlock()
	if !a.watch.configured || a.watch.enabled {
		return nil
	}
	paths := []string{a.cfg.storyPath}
	if a.story.session != nil {
		paths = a.story.session.Script.SourceFiles()
	}
	w, err := watch.New(paths, watch.DefaultDelay, func() {
		PostEvent(func() {
			a.log.Debug("story changed on disk", slog.String("path", a.cfg.storyPath))
			a.reloadStory()
		}, false)
	})
	if err != nil {
		return fmt.Errorf("auto reload: %w", err)
	}
	a.watch.watcher = w
	a.watch.enabled = true
	return nil
}

func (a *Controller) disableAutoReload() error {
	a.watch.mu.Lock()
	defer a.watch.mu.Unlock()
	a.watch.enabled = false
	if a.watch.watcher == nil {
		return nil
	}
	err := a.watch.watcher.Close()
	a.watch.watcher = nil
	return err
}

func (a *Controller) updateReloadButtonLabel() {
	if a.ui.reloadButton == nil {
		return
	}
	a.watch.mu.Lock()
	configured := a.watch.configured
	enabled := a.watch.enabled
	a.watch.mu.Unlock()
	a.ui.reloadButton.Configure(Txt(reloadButtonLabel(configured, enabled)))
}

func reloadButtonLabel(configured, enabled bool) string {
	if !configured {
		return "Reload"
	}
	state := "Off"
	if enabled {
		state = "On"
	}
	return fmt.Sprintf("Reload (Auto %s)", state)
}

func (a *Controller) onReloadButton() {
	a.watch.mu.Lock()
	configured := a.watch.configured
	enabled := a.watch.enabled
	a.watch.mu.Unlock()
	if !configured {
		a.reloadStory()
		return
	}
	if enabled {
		if err := a.disableAutoReload(); err != nil {
			a.log.Error("auto reload disable failed", slog.Any("error", err))
		}
	} else {
		if err := a.enableAutoReload(); err != nil {
			a.log.Error("auto reload enable failed", slog.Any("error", err))
		}
	}
	a.updateReloadButtonLabel()
	a.reloadStory()
}

package gui

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/thiagokokada/storygraph/internal/detail"
	"github.com/thiagokokada/storygraph/internal/render"
	"github.com/thiagokokada/storygraph/internal/session"
	"github.com/thiagokokada/storygraph/internal/story"
	"github.com/thiagokokada/storygraph/internal/template"
	. "modernc.org/tk9.0"
)

var errCanvasNotReady = errors.New("graph canvas not ready")

// canvasEngine draws one graph onto the window. Refresh runs on the Tk
// event loop.
type canvasEngine struct {
	app   *Controller
	graph *story.Graph
	tmpl  template.Template
	opts  render.Options
	files fs.FS
}

func (a *Controller) container() session.Container {
	var files fs.FS
	if a.story.loading != nil {
		files = a.story.loading.Files
	}
	return session.ContainerFunc(func(g *story.Graph, tmpl template.Template, opts render.Options) (render.Engine, error) {
		return &canvasEngine{app: a, graph: g, tmpl: tmpl, opts: opts, files: files}, nil
	})
}

func (e *canvasEngine) Refresh() error {
	gc := e.app.ui.graph
	if gc == nil {
		return errCanvasNotReady
	}
	gc.Draw(render.Compute(e.graph, e.tmpl, e.opts), e.tmpl.Commit.Dot.StrokeWidth)
	e.app.showDetail(panelCommit(e.graph, e.app.story.focus), e.files)
	return nil
}

// panelCommit picks the commit shown in the detail pane: the focused commit
// while it is expanded, otherwise the newest expanded one.
func panelCommit(g *story.Graph, focus story.CommitID) *story.Commit {
	if c, err := g.Commit(focus); err == nil && c.ShowDetail() {
		return c
	}
	commits := g.Commits()
	for i := len(commits) - 1; i >= 0; i-- {
		if commits[i].ShowDetail() {
			return commits[i]
		}
	}
	return nil
}

// panelText lays out the detail pane for c. The payload starts on the
// returned 1-based line, or 0 when there is none.
func panelText(c *story.Commit, content detail.Content) (string, int) {
	var b strings.Builder
	b.WriteString(c.Subject())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Branch: %s\n", c.BranchName())
	fmt.Fprintf(&b, "Commit: %s\n", c.ShortHash())
	if c.Tag() != "" {
		fmt.Fprintf(&b, "Period: %s\n", c.Tag())
	}
	if content.Kind == detail.File {
		fmt.Fprintf(&b, "File:   %s\n", content.Name)
	}
	if body := strings.TrimSpace(c.Body()); body != "" {
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	var payload string
	if content.Kind == detail.File {
		payload = strings.TrimRight(content.Text, "\n")
	} else {
		payload = strings.Join(content.Lines(), "\n")
	}
	if payload == "" {
		return strings.TrimRight(b.String(), "\n"), 0
	}
	b.WriteString("\n")
	start := strings.Count(b.String(), "\n") + 1
	b.WriteString(payload)
	return b.String(), start
}

func (a *Controller) showDetail(c *story.Commit, files fs.FS) {
	if c == nil {
		a.writeDetailText("Click a commit to expand it.", 0, nil)
		return
	}
	content, err := detail.Resolve(c.Detail(), files)
	if err != nil {
		a.log.Warn("detail unavailable", slog.Int("commit", int(c.ID())), slog.Any("error", err))
		content = detail.Content{Kind: detail.Inline, Text: c.Detail()}
	}
	text, start := panelText(c, content)
	var runs []detail.Run
	if a.cfg.syntaxHighlight && content.Kind == detail.File && start > 0 {
		runs = content.Runs(detail.Style(a.theme.palette.isDark()))
	}
	a.writeDetailText(text, start, runs)
}

func (a *Controller) writeDetailText(content string, payloadLine int, runs []detail.Run) {
	if a.ui.detail == nil {
		return
	}
	a.ui.detail.Configure(State(NORMAL))
	a.ui.detail.Delete("1.0", END)
	a.ui.detail.Insert("1.0", content)
	a.clearSyntaxHighlight()
	a.ui.detail.TagRemove("detailHeader", "1.0", END)
	if content != "" {
		a.ui.detail.TagAdd("detailHeader", "1.0", "1.end")
	}
	for _, run := range runs {
		tag := a.syntaxTagForColor(run.Color)
		if tag == "" {
			continue
		}
		line := payloadLine + run.Line - 1
		a.ui.detail.TagAdd(tag,
			fmt.Sprintf("%d.%d", line, run.Col),
			fmt.Sprintf("%d.%d", line, run.Col+run.Len),
		)
	}
	a.ui.detail.Configure(State("disabled"))
}

func (a *Controller) clearSyntaxHighlight() {
	if a.ui.detail == nil {
		return
	}
	for _, tag := range a.ui.syntaxTags {
		a.ui.detail.TagRemove(tag, "1.0", END)
	}
}

func (a *Controller) syntaxTagForColor(color string) string {
	if color == "" || a.ui.detail == nil {
		return ""
	}
	if a.ui.syntaxTags == nil {
		a.ui.syntaxTags = make(map[string]string)
	}
	if tag, ok := a.ui.syntaxTags[color]; ok {
		return tag
	}
	tag := fmt.Sprintf("syntax_%d", len(a.ui.syntaxTags))
	a.ui.detail.TagConfigure(tag, Foreground(color))
	a.ui.syntaxTags[color] = tag
	return tag
}

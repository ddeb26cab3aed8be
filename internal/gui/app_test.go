package gui

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/thiagokokada/storygraph/internal/detail"
	"github.com/thiagokokada/storygraph/internal/gui/widgets"
	"github.com/thiagokokada/storygraph/internal/script"
	"github.com/thiagokokada/storygraph/internal/story"
)

func headlessController(t *testing.T) *Controller {
	t.Helper()
	return &Controller{
		ui:  appWidgets{graph: widgets.NewGraphCanvas(nil, lightPalette.Canvas)},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestLookup(t *testing.T) {
	a := &Controller{}
	if _, ok := a.Lookup(script.DefaultContainer); ok {
		t.Fatal("expected lookup to fail before the canvas exists")
	}
	a = headlessController(t)
	if _, ok := a.Lookup("elsewhere"); ok {
		t.Fatal("expected unknown container to be rejected")
	}
	if _, ok := a.Lookup(script.DefaultContainer); !ok {
		t.Fatal("expected default container to resolve")
	}
}

func TestStartSessionDrawsLayout(t *testing.T) {
	a := headlessController(t)
	sc, err := script.Default()
	if err != nil {
		t.Fatalf("default story: %v", err)
	}
	if err := a.startSession(sc); err != nil {
		t.Fatalf("start session: %v", err)
	}
	if a.story.session == nil {
		t.Fatal("expected session to be adopted")
	}
	if a.story.loading != nil {
		t.Fatal("expected loading script to be cleared")
	}
	if got := len(a.ui.graph.Layout().Nodes); got != 15 {
		t.Fatalf("expected 15 drawn commits, got %d", got)
	}

	// Toggling redraws through the canvas engine.
	expanded, err := a.story.session.Controller.Toggle(12)
	if err != nil || !expanded {
		t.Fatalf("toggle: expanded=%v err=%v", expanded, err)
	}
	n, ok := a.ui.graph.Layout().Node(12)
	if !ok || !n.Expanded {
		t.Fatalf("expected commit 12 to be drawn expanded, got %+v", n)
	}
	if !strings.Contains(strings.Join(n.Detail, "\n"), "Defended in 2023") {
		t.Fatalf("expected detail file contents, got %q", n.Detail)
	}
}

func TestReplaceSessionKeepsCurrentOnFailure(t *testing.T) {
	a := headlessController(t)
	sc, err := script.Default()
	if err != nil {
		t.Fatalf("default story: %v", err)
	}
	if err := a.startSession(sc); err != nil {
		t.Fatalf("start session: %v", err)
	}
	cur := a.story.session
	a.story.focus = 3

	broken, err := script.Parse(strings.NewReader("steps:\n  - commit: {branch: missing, subject: x}\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := a.replaceSession(broken); err == nil {
		t.Fatal("expected replace to fail")
	}
	if a.story.session != cur {
		t.Fatal("expected the current session to survive a failed replace")
	}
	if a.story.focus != 3 {
		t.Fatalf("expected focus to be restored, got %d", a.story.focus)
	}

	next, err := script.Parse(strings.NewReader("steps:\n  - branch: {name: main}\n  - commit: {branch: main, subject: only}\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := a.replaceSession(next); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if a.story.session == cur || a.story.focus != 0 {
		t.Fatalf("expected a fresh session with no focus, focus=%d", a.story.focus)
	}
	if got := len(a.ui.graph.Layout().Nodes); got != 1 {
		t.Fatalf("expected the new story to be drawn, got %d nodes", got)
	}
}

func TestPanelCommit(t *testing.T) {
	g := story.New()
	main, err := g.CreateBranch("main", nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, subject := range []string{"one", "two", "three"} {
		if _, err := main.Commit(story.Record{Subject: subject}); err != nil {
			t.Fatal(err)
		}
	}
	if c := panelCommit(g, 0); c != nil {
		t.Fatalf("expected no commit, got %d", c.ID())
	}
	for _, id := range []story.CommitID{1, 2} {
		if _, err := g.SetShowDetail(id, true); err != nil {
			t.Fatal(err)
		}
	}
	if c := panelCommit(g, 1); c == nil || c.ID() != 1 {
		t.Fatalf("expected focused commit 1, got %v", c)
	}
	if c := panelCommit(g, 3); c == nil || c.ID() != 2 {
		t.Fatalf("expected newest expanded commit 2 for collapsed focus, got %v", c)
	}
	if c := panelCommit(g, 99); c == nil || c.ID() != 2 {
		t.Fatalf("expected newest expanded commit 2 for unknown focus, got %v", c)
	}
}

func TestPanelText(t *testing.T) {
	g := story.New()
	main, err := g.CreateBranch("career", nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := main.Commit(story.Record{Subject: "PhD", Tag: "2019 - 2023", Body: "Kosice"})
	if err != nil {
		t.Fatal(err)
	}

	text, start := panelText(c, detail.Content{Kind: detail.File, Name: "details/phd.md", Text: "# PhD\n\n- drones\n"})
	lines := strings.Split(text, "\n")
	if lines[0] != "PhD" || lines[1] != "Branch: career" {
		t.Fatalf("unexpected header: %q", lines[:2])
	}
	if !strings.Contains(text, "Period: 2019 - 2023\n") || !strings.Contains(text, "File:   details/phd.md\n") {
		t.Fatalf("expected period and file lines, got %q", text)
	}
	if start <= 0 || start > len(lines) || lines[start-1] != "# PhD" {
		t.Fatalf("payload should start at line %d, got lines %q", start, lines)
	}
	if lines[len(lines)-1] != "- drones" {
		t.Fatalf("expected trailing newline to be trimmed, got %q", lines[len(lines)-1])
	}

	text, start = panelText(c, detail.Content{Kind: detail.Inline, Text: "<p>Robotics <b>picking</b></p>"})
	if !strings.HasSuffix(text, "Robotics picking") {
		t.Fatalf("expected markup to be stripped, got %q", text)
	}
	if strings.Contains(text, "File:") {
		t.Fatalf("inline payload must not name a file, got %q", text)
	}

	text, start = panelText(c, detail.Content{Kind: detail.Inline})
	if start != 0 || strings.HasSuffix(text, "\n") {
		t.Fatalf("expected no payload, got start=%d text=%q", start, text)
	}
}

func TestFormatStatus(t *testing.T) {
	g := story.New()
	main, _ := g.CreateBranch("main", nil)
	_, _ = main.Commit(story.Record{Subject: "a"})
	side, _ := main.Branch("side")
	_, _ = side.Commit(story.Record{Subject: "b"})
	_, _ = main.Merge(side, "m")

	if got := formatStatus("demo", g, 0); got != "demo: 3 commits on 2 branches, 1 merges" {
		t.Fatalf("unexpected status: %q", got)
	}
	if got := formatStatus("demo", g, 2); !strings.HasSuffix(got, "(2 expanded)") {
		t.Fatalf("unexpected status: %q", got)
	}
}

func TestReloadButtonLabel(t *testing.T) {
	if got := reloadButtonLabel(false, false); got != "Reload" {
		t.Fatalf("unexpected label: %q", got)
	}
	if got := reloadButtonLabel(true, true); got != "Reload (Auto On)" {
		t.Fatalf("unexpected label: %q", got)
	}
	if got := reloadButtonLabel(true, false); got != "Reload (Auto Off)" {
		t.Fatalf("unexpected label: %q", got)
	}
}

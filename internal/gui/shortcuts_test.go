package gui

import (
	"strings"
	"testing"
)

func TestFormatShortcutsHelpText(t *testing.T) {
	bindings := []shortcutBinding{
		{category: "Graph", display: "Click", description: "Expand or collapse a commit"},
		{category: "Graph", display: "c", description: "Collapse all commits"},
		{category: "", display: "x", description: "ignored (no category)"},
		{category: "Other", display: "", description: "ignored (no display)"},
		{sequences: []string{"<KeyPress-Next>"}},
		{category: "General", display: "r / F5", description: "Reload the story file"},
	}
	got := formatShortcutsHelpText(bindings)

	if strings.Contains(got, "ignored") || strings.Contains(got, "Other") {
		t.Fatalf("expected incomplete bindings to be absent, got %q", got)
	}
	want := "Graph\n  Click — Expand or collapse a commit\n  c — Collapse all commits\n\nGeneral\n  r / F5 — Reload the story file"
	if got != want {
		t.Fatalf("unexpected help text:\n%q\nwant\n%q", got, want)
	}
}

func TestShortcutBindingsAreDocumented(t *testing.T) {
	a := &Controller{}
	seen := map[string]bool{}
	for _, sc := range a.shortcutBindings() {
		for _, seq := range sc.sequences {
			if seen[seq] {
				t.Fatalf("sequence %s bound twice", seq)
			}
			seen[seq] = true
		}
		if sc.display != "" && sc.description == "" {
			t.Fatalf("shortcut %q has no description", sc.display)
		}
	}
	for _, seq := range []string{"<KeyPress-r>", "<KeyPress-c>", "<KeyPress-q>", "<F1>"} {
		if !seen[seq] {
			t.Fatalf("expected %s to be bound", seq)
		}
	}
	help := formatShortcutsHelpText(a.shortcutBindings())
	if !strings.Contains(help, "Graph\n") || !strings.Contains(help, "\n\nGeneral\n") {
		t.Fatalf("unexpected categories in %q", help)
	}
}

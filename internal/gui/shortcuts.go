package gui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/thiagokokada/storygraph/internal/gui/tkutil"
	. "modernc.org/tk9.0"
)

func (a *Controller) bindShortcuts() {
	for _, sc := range a.shortcutBindings() {
		if sc.handler == nil {
			continue
		}
		for _, seq := range sc.sequences {
			if seq == "" {
				continue
			}
			Bind(App, seq, Command(sc.handler))
		}
	}
}

type shortcutBinding struct {
	sequences   []string
	display     string
	description string
	category    string
	handler     func()
}

func (a *Controller) shortcutBindings() []shortcutBinding {
	return []shortcutBinding{
		{
			category:    "Graph",
			display:     "Click",
			description: "Expand or collapse a commit",
		},
		{
			category:    "Graph",
			display:     "c",
			description: "Collapse all commits",
			sequences:   []string{"<KeyPress-c>", "<KeyPress-C>"},
			handler:     a.collapseAll,
		},
		{
			category:    "Graph",
			display:     "k / Up",
			description: "Scroll graph up",
			sequences:   []string{"<KeyPress-k>", "<KeyPress-Up>"},
			handler:     func() { a.scrollGraph(-1, "units") },
		},
		{
			category:    "Graph",
			display:     "j / Down",
			description: "Scroll graph down",
			sequences:   []string{"<KeyPress-j>", "<KeyPress-Down>"},
			handler:     func() { a.scrollGraph(1, "units") },
		},
		{
			category:    "Graph",
			display:     "Page Up / Page Down",
			description: "Scroll graph by a page",
			sequences:   []string{"<KeyPress-Prior>"},
			handler:     func() { a.scrollGraph(-1, "pages") },
		},
		{
			sequences: []string{"<KeyPress-Next>"},
			handler:   func() { a.scrollGraph(1, "pages") },
		},
		{
			category:    "General",
			display:     "r / F5",
			description: "Reload the story file",
			sequences:   []string{"<KeyPress-r>", "<F5>"},
			handler:     a.reloadStory,
		},
		{
			category:    "General",
			display:     "F1",
			description: "Show shortcut list",
			sequences:   []string{"<F1>"},
			handler:     a.showShortcutsDialog,
		},
		{
			category:    "General",
			display:     "q / Ctrl+Q",
			description: "Quit",
			sequences:   []string{"<KeyPress-q>", "<Control-KeyPress-q>"},
			handler:     func() { Destroy(App) },
		},
	}
}

func (a *Controller) scrollGraph(delta int, unit string) {
	if a.ui.graph == nil || a.ui.graph.Widget() == nil || delta == 0 {
		return
	}
	if _, err := tkutil.Eval("%s yview scroll %d %s", a.ui.graph.Widget(), delta, unit); err != nil {
		slog.Error("graph scroll", slog.Any("error", err))
	}
}

func (a *Controller) showShortcutsDialog() {
	if a.shortcuts.window != nil {
		Destroy(a.shortcuts.window.Window)
		a.shortcuts.window = nil
	}
	dialog := App.Toplevel()
	a.shortcuts.window = dialog
	dialog.Window.WmTitle("Keyboard Shortcuts")
	WmTransient(dialog.Window, App)

	frame := dialog.TFrame(Padding("12p"))
	Grid(frame, Row(0), Column(0), Sticky(NEWS))
	GridColumnConfigure(frame.Window, 0, Weight(1))
	GridRowConfigure(frame.Window, 1, Weight(1))

	header := frame.TLabel(Txt("Keyboard Shortcuts"), Anchor(W))
	Grid(header, Row(0), Column(0), Sticky(W), Pady("0 8p"))

	text := frame.Text(Width(52), Height(14), Wrap(WORD), Exportselection(false))
	text.Insert("1.0", formatShortcutsHelpText(a.shortcutBindings()))
	text.Configure(State("disabled"))
	Grid(text, Row(1), Column(0), Sticky(NEWS))

	closeBtn := frame.TButton(Txt("Close"), Command(func() { Destroy(dialog.Window) }))
	Grid(closeBtn, Row(2), Column(0), Sticky(E), Pady("8p 0"))

	Bind(dialog.Window, "<Destroy>", Command(func() {
		if a.shortcuts.window == dialog {
			a.shortcuts.window = nil
		}
	}))
	dialog.Window.Center()
}

func formatShortcutsHelpText(bindings []shortcutBinding) string {
	var b strings.Builder
	currentCategory := ""
	for _, sc := range bindings {
		if sc.category == "" || sc.display == "" || sc.description == "" {
			continue
		}
		if sc.category != currentCategory {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			currentCategory = sc.category
			b.WriteString(currentCategory)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %s — %s\n", sc.display, sc.description)
	}
	return strings.TrimRight(b.String(), "\n")
}

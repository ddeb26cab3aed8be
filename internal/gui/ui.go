package gui

import (
	"fmt"

	"github.com/thiagokokada/storygraph/internal/gui/tkutil"
	"github.com/thiagokokada/storygraph/internal/gui/widgets"
	. "modernc.org/tk9.0"
)

func (a *Controller) buildUI() {
	GridColumnConfigure(App, 0, Weight(1))
	GridRowConfigure(App, 1, Weight(1))

	controls := App.TFrame(Padding("8p"))
	Grid(controls, Row(0), Column(0), Sticky(WE))
	GridColumnConfigure(controls.Window, 0, Weight(1))

	a.ui.title = controls.TLabel(Txt("Story:"), Anchor(W))
	Grid(a.ui.title, Row(0), Column(0), Sticky(W))

	collapseBtn := controls.TButton(Txt("Collapse all"), Command(a.collapseAll))
	Grid(collapseBtn, Row(0), Column(1), Sticky(E), Padx("4p"))
	a.ui.reloadButton = controls.TButton(Txt("Reload"), Command(a.onReloadButton))
	Grid(a.ui.reloadButton, Row(0), Column(2), Sticky(E))

	pane := App.TPanedwindow(Orient(HORIZONTAL))
	Grid(pane, Row(1), Column(0), Sticky(NEWS), Padx("4p"), Pady("4p"))

	graphArea := pane.TFrame()
	detailArea := pane.TFrame()
	pane.Add(graphArea.Window)
	pane.Add(detailArea.Window)
	configurePane := func(window *Window, options string) {
		if _, err := tkutil.Eval("%s pane %s %s", pane, window, options); err != nil {
			a.log.Debug("configure pane", "pane", window.String(), "error", err)
		}
	}
	configurePane(graphArea.Window, "-weight 3")
	configurePane(detailArea.Window, "-weight 2")

	GridRowConfigure(graphArea.Window, 0, Weight(1))
	GridColumnConfigure(graphArea.Window, 0, Weight(1))
	GridRowConfigure(detailArea.Window, 0, Weight(1))
	GridColumnConfigure(detailArea.Window, 0, Weight(1))

	var canvas *CanvasWidget
	graphYScroll := graphArea.TScrollbar(Command(func(e *Event) { e.Yview(canvas) }))
	graphXScroll := graphArea.TScrollbar(Orient(HORIZONTAL), Command(func(e *Event) { e.Xview(canvas) }))
	canvas = graphArea.Canvas(
		Width(720),
		Height(560),
		Background(a.theme.palette.Canvas.Background),
	)
	tkutil.EvalOrEmpty("%s configure -highlightthickness 0", canvas)
	canvas.Configure(Yscrollcommand(func(e *Event) { e.ScrollSet(graphYScroll) }))
	canvas.Configure(Xscrollcommand(func(e *Event) { e.ScrollSet(graphXScroll) }))
	Grid(canvas, Row(0), Column(0), Sticky(NEWS))
	Grid(graphYScroll, Row(0), Column(1), Sticky(NS))
	Grid(graphXScroll, Row(1), Column(0), Sticky(WE))
	a.ui.graph = widgets.NewGraphCanvas(canvas, a.theme.palette.Canvas)
	Bind(canvas, "<Button-1>", Command(func(e *Event) {
		a.onCanvasClick(e.X, e.Y)
	}))
	a.bindCanvasWheel(canvas)

	detailYScroll := detailArea.TScrollbar(Command(func(e *Event) { e.Yview(a.ui.detail) }))
	a.ui.detail = detailArea.Text(Wrap(WORD), Font(CourierFont(), 11), Exportselection(false), Width(48))
	a.ui.detail.Configure(Yscrollcommand(func(e *Event) { e.ScrollSet(detailYScroll) }))
	headerColor := a.theme.palette.DetailHeader
	if headerColor == "" {
		headerColor = lightPalette.DetailHeader
	}
	a.ui.detail.TagConfigure("detailHeader", Background(headerColor))
	Grid(a.ui.detail, Row(0), Column(0), Sticky(NEWS))
	Grid(detailYScroll, Row(0), Column(1), Sticky(NS))
	a.ui.detail.Configure(State("disabled"))

	a.ui.status = App.TLabel(Anchor(W), Relief(SUNKEN), Padding("4p"))
	Grid(a.ui.status, Row(2), Column(0), Sticky(WE))

	a.writeDetailText("Click a commit to expand it.", 0, nil)
	a.initMenubar()
	a.bindShortcuts()
}

// bindCanvasWheel scrolls the graph with the mouse wheel. X11 reports
// wheel motion as buttons 4 and 5.
func (a *Controller) bindCanvasWheel(canvas *CanvasWidget) {
	path := canvas.String()
	if path == "" {
		return
	}
	script := fmt.Sprintf(`
		bind %[1]s <MouseWheel> {%[1]s yview scroll [expr {-%%D / 120}] units}
		bind %[1]s <Shift-MouseWheel> {%[1]s xview scroll [expr {-%%D / 120}] units}
		bind %[1]s <Button-4> {%[1]s yview scroll -1 units}
		bind %[1]s <Button-5> {%[1]s yview scroll 1 units}
	`, path)
	if _, err := tkutil.Eval("%s", script); err != nil {
		a.log.Debug("bind canvas wheel", "error", err)
	}
}

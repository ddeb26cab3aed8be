package widgets

import (
	"strconv"
	"strings"

	. "modernc.org/tk9.0"

	"github.com/thiagokokada/storygraph/internal/gui/tkutil"
	"github.com/thiagokokada/storygraph/internal/render"
	"github.com/thiagokokada/storygraph/internal/story"
)

const (
	graphCanvasLabelPadX = 4
	graphCanvasLabelPadY = 2
	graphCanvasTagGap    = 8
	graphCanvasLineH     = 16

	graphCanvasMessageFont = "TkDefaultFont 10"
	graphCanvasLabelFont   = "TkDefaultFont 9"
	graphCanvasDetailFont  = "TkFixedFont 9"
)

// CanvasStyle holds the theme-dependent colors of the graph canvas.
type CanvasStyle struct {
	Background string
	Text       string
	Detail     string
	TagFill    string
	TagText    string
	DotStroke  string
}

func CanvasStyleFor(dark bool) CanvasStyle {
	if dark {
		return CanvasStyle{
			Background: "#1e1e1e",
			Text:       "#e6e6e6",
			Detail:     "#a8a8a8",
			TagFill:    "#333333",
			TagText:    "#d0d0d0",
			DotStroke:  "#1e1e1e",
		}
	}
	return CanvasStyle{
		Background: "#ffffff",
		Text:       "#222222",
		Detail:     "#555555",
		TagFill:    "#eeeeee",
		TagText:    "#333333",
		DotStroke:  "#ffffff",
	}
}

// GraphCanvas draws a render.Layout onto a Tk canvas and remembers the last
// layout so clicks can be mapped back to commits.
type GraphCanvas struct {
	canvas *CanvasWidget
	layout render.Layout
	style  CanvasStyle
}

func NewGraphCanvas(canvas *CanvasWidget, style CanvasStyle) *GraphCanvas {
	return &GraphCanvas{canvas: canvas, style: style}
}

func (g *GraphCanvas) Widget() *CanvasWidget { return g.canvas }

func (g *GraphCanvas) Layout() render.Layout { return g.layout }

// Draw replaces the canvas contents with l.
func (g *GraphCanvas) Draw(l render.Layout, dotStrokeWidth int) {
	g.layout = l
	if g.canvas == nil {
		return
	}
	canvasPath := g.canvas.String()
	if canvasPath == "" {
		return
	}
	g.canvas.Delete("all")
	g.canvas.Configure(Background(g.style.Background))
	tkutil.EvalOrEmpty("%s configure -scrollregion {0 0 %d %d}", canvasPath, l.Width, l.Height)

	for _, e := range l.Edges {
		coords := polylineCoords(e.Points)
		if coords == "" {
			continue
		}
		tkutil.EvalOrEmpty("%s create line %s -width %d -fill %s -joinstyle round", canvasPath, coords, e.Width, e.Color)
	}
	for _, lbl := range l.Labels {
		g.drawLabel(canvasPath, lbl)
	}
	for _, n := range l.Nodes {
		g.drawNode(canvasPath, n, dotStrokeWidth)
	}
}

// CommitAt maps window coordinates to a commit, accounting for scrolling.
func (g *GraphCanvas) CommitAt(x, y int) (story.CommitID, bool) {
	if g.canvas == nil {
		return 0, false
	}
	canvasPath := g.canvas.String()
	cx := tkutil.Atoi(tkutil.EvalOrEmpty("%s canvasx %d", canvasPath, x))
	cy := tkutil.Atoi(tkutil.EvalOrEmpty("%s canvasy %d", canvasPath, y))
	return g.layout.CommitAt(cx, cy)
}

func (g *GraphCanvas) drawLabel(canvasPath string, lbl render.Label) {
	textID := g.canvas.CreateText(
		lbl.X+graphCanvasLabelPadX, lbl.Y,
		Anchor(W),
		Txt(lbl.Branch),
		Font(graphCanvasLabelFont),
		Fill(lbl.Color),
	)
	if lbl.Rotation != 0 {
		tkutil.EvalOrEmpty("%s itemconfigure %s -angle %d", canvasPath, textID, -lbl.Rotation)
		return
	}
	h := graphCanvasLineH + graphCanvasLabelPadY*2
	g.canvas.CreateRectangle(
		lbl.X, lbl.Y-h/2,
		lbl.X+lbl.Width, lbl.Y+h/2,
		Outline(lbl.Color),
		Width(1),
	)
}

func (g *GraphCanvas) drawNode(canvasPath string, n render.Node, strokeWidth int) {
	outline := n.Color
	width := 1
	if strokeWidth > 0 {
		outline = g.style.DotStroke
		width = strokeWidth
	}
	g.canvas.CreateOval(
		n.X-n.Radius, n.Y-n.Radius,
		n.X+n.Radius, n.Y+n.Radius,
		Fill(n.Color),
		Outline(outline),
		Width(width),
	)
	if n.Message == "" {
		return
	}
	textID := g.canvas.CreateText(
		n.MessageX, n.Y,
		Anchor(W),
		Txt(n.Message),
		Font(graphCanvasMessageFont),
		Fill(g.style.Text),
	)
	if n.MessageRotation != 0 {
		// Tk measures angles counter-clockwise.
		tkutil.EvalOrEmpty("%s coords %s %d %d", canvasPath, textID, n.MessageX, n.MessageY)
		tkutil.EvalOrEmpty("%s itemconfigure %s -angle %d", canvasPath, textID, -n.MessageRotation)
	} else if n.Tag != "" {
		g.drawTag(canvasPath, textID, n)
	}
	if n.Expanded && len(n.Detail) > 0 {
		g.canvas.CreateText(
			n.DetailX, n.DetailY-graphCanvasLineH+graphCanvasLabelPadY,
			Anchor("nw"),
			Txt(strings.Join(n.Detail, "\n")),
			Font(graphCanvasDetailFont),
			Fill(g.style.Detail),
		)
	}
}

func (g *GraphCanvas) drawTag(canvasPath, messageID string, n render.Node) {
	bbox := g.canvas.Bbox(messageID)
	x := n.MessageX
	if len(bbox) >= 4 {
		x = tkutil.Atoi(bbox[2])
	}
	x += graphCanvasTagGap
	textID := g.canvas.CreateText(
		x+graphCanvasLabelPadX, n.Y,
		Anchor(W),
		Txt(n.Tag),
		Font(graphCanvasLabelFont),
		Fill(g.style.TagText),
	)
	tb := g.canvas.Bbox(textID)
	if len(tb) < 4 {
		return
	}
	rectID := g.canvas.CreateRectangle(
		tkutil.Atoi(tb[0])-graphCanvasLabelPadX, tkutil.Atoi(tb[1])-graphCanvasLabelPadY,
		tkutil.Atoi(tb[2])+graphCanvasLabelPadX, tkutil.Atoi(tb[3])+graphCanvasLabelPadY,
		Fill(g.style.TagFill),
		Outline(n.Color),
		Width(1),
	)
	tkutil.EvalOrEmpty("%s lower %s %s", canvasPath, rectID, textID)
}

// polylineCoords flattens points into a canvas coordinate list. A single
// point is not a line.
func polylineCoords(points [][2]int) string {
	if len(points) < 2 {
		return ""
	}
	parts := make([]string, 0, len(points)*2)
	for _, p := range points {
		parts = append(parts, strconv.Itoa(p[0]), strconv.Itoa(p[1]))
	}
	return strings.Join(parts, " ")
}

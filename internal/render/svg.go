package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/thiagokokada/storygraph/internal/buildinfo"
	"github.com/thiagokokada/storygraph/internal/story"
	"github.com/thiagokokada/storygraph/internal/template"
)

const (
	textStyle   = "font-family:sans-serif;font-size:13px;fill:#222222"
	detailStyle = "font-family:sans-serif;font-size:12px;fill:#555555"
)

// SVGEngine renders the graph into an in-memory SVG document on every Refresh.
type SVGEngine struct {
	graph *story.Graph
	tmpl  template.Template
	opts  Options

	buf       bytes.Buffer
	layout    Layout
	refreshes int
}

func NewSVGEngine(g *story.Graph, tmpl template.Template, opts Options) *SVGEngine {
	return &SVGEngine{graph: g, tmpl: tmpl.Clone(), opts: opts.normalized()}
}

func (e *SVGEngine) Refresh() error {
	e.layout = Compute(e.graph, e.tmpl, e.opts)
	e.buf.Reset()
	if err := WriteSVG(&e.buf, e.layout, e.tmpl); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	e.refreshes++
	return nil
}

// Bytes returns the document produced by the last Refresh.
func (e *SVGEngine) Bytes() []byte {
	return bytes.Clone(e.buf.Bytes())
}

// Layout returns the layout used by the last Refresh.
func (e *SVGEngine) Layout() Layout {
	return e.layout
}

// Refreshes counts completed refreshes.
func (e *SVGEngine) Refreshes() int {
	return e.refreshes
}

// WriteSVG draws l. Commit dots and messages carry a data-commit attribute so
// a host page can route clicks back to the interaction controller.
func WriteSVG(w io.Writer, l Layout, tmpl template.Template) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(l.Width, l.Height, `class="storygraph"`)
	canvas.Desc("storygraph " + buildinfo.Version())

	canvas.Group(`class="edges"`, "fill:none")
	for _, e := range l.Edges {
		canvas.Path(pathData(e.Points), fmt.Sprintf("stroke:%s;stroke-width:%d", e.Color, e.Width))
	}
	canvas.Gend()

	for _, lbl := range l.Labels {
		drawLabel(canvas, lbl)
	}

	for _, n := range l.Nodes {
		drawNode(canvas, n, tmpl)
	}
	canvas.End()
	return ew.err
}

func drawLabel(canvas *svg.SVG, lbl Label) {
	h := lineHeight + labelPad
	attrs := []string{`class="branch-label"`, fmt.Sprintf(`data-branch="%s"`, escapeAttr(lbl.Branch))}
	if lbl.Rotation != 0 {
		attrs = append(attrs, fmt.Sprintf(`transform="rotate(%d %d %d)"`, lbl.Rotation, lbl.X, lbl.Y))
	}
	canvas.Group(attrs...)
	canvas.Roundrect(lbl.X, lbl.Y-h/2, lbl.Width, h, 3, 3, fmt.Sprintf("fill:none;stroke:%s", lbl.Color))
	canvas.Text(lbl.X+labelPad, lbl.Y+lineHeight/4, lbl.Branch, fmt.Sprintf("font-family:sans-serif;font-size:12px;fill:%s", lbl.Color))
	canvas.Gend()
}

func drawNode(canvas *svg.SVG, n Node, tmpl template.Template) {
	id := fmt.Sprintf(`data-commit="%d"`, n.ID)
	classes := "commit"
	if n.Expanded {
		classes += " expanded"
	}
	if n.Merge {
		classes += " merge"
	}
	canvas.Group(fmt.Sprintf(`id="commit-%d"`, n.ID), fmt.Sprintf(`class="%s"`, classes), id)

	dotStyle := "fill:" + n.Color
	if sw := tmpl.Commit.Dot.StrokeWidth; sw > 0 {
		dotStyle += fmt.Sprintf(";stroke:#ffffff;stroke-width:%d", sw)
	}
	canvas.Circle(n.X, n.Y, n.Radius, `class="commit-dot"`, id, dotStyle)

	if n.Message != "" {
		attrs := []string{`class="commit-message"`, id}
		if n.MessageRotation != 0 {
			attrs = append(attrs, fmt.Sprintf(`transform="rotate(%d %d %d)"`, n.MessageRotation, n.MessageX, n.MessageY))
		}
		canvas.Text(n.MessageX, n.MessageY, n.Message, append(attrs, textStyle)...)
		if n.Tag != "" && n.MessageRotation == 0 {
			x := n.MessageX + textWidth(n.Message) + 2*labelPad
			h := lineHeight + labelPad
			canvas.Roundrect(x, n.Y-h/2, textWidth(n.Tag)+2*labelPad, h, 3, 3, `class="commit-tag"`, "fill:#eeeeee;stroke:#999999")
			canvas.Text(x+labelPad, n.MessageY, n.Tag, "font-family:sans-serif;font-size:11px;fill:#333333")
		}
	}
	if n.Expanded {
		canvas.Group(`class="commit-detail"`)
		for i, line := range n.Detail {
			canvas.Text(n.DetailX, n.DetailY+i*lineHeight, line, detailStyle)
		}
		canvas.Gend()
	}
	canvas.Gend()
}

func pathData(points [][2]int) string {
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			fmt.Fprintf(&b, "M%d,%d", p[0], p[1])
			continue
		}
		fmt.Fprintf(&b, " L%d,%d", p[0], p[1])
	}
	return b.String()
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// errWriter keeps the first write error; svgo discards them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

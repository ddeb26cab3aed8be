package render

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/thiagokokada/storygraph/internal/story"
	"github.com/thiagokokada/storygraph/internal/template"
)

const (
	margin         = 20
	lineHeight     = 16
	charWidth      = 7
	messageGap     = 16
	labelPad       = 4
	minLaneSpacing = 12
	minRowSpacing  = 20
	// horizontal layouts tilt messages so neighbouring commits do not overlap.
	horizontalMessageAngle = 45
	horizontalMessageSpan  = 160
)

type Node struct {
	ID     story.CommitID
	Branch string
	Lane   int
	X, Y   int
	Radius int
	Color  string
	Merge  bool

	// Message is empty in compact mode.
	Message         string
	Tag             string
	MessageX        int
	MessageY        int
	MessageRotation int

	Expanded bool
	Detail   []string
	DetailX  int
	DetailY  int
}

type Edge struct {
	From, To story.CommitID
	Points   [][2]int
	Color    string
	Width    int
}

type Label struct {
	Branch   string
	X, Y     int
	Width    int
	Color    string
	Rotation int
}

// Layout is the positioned form of a graph. The same graph state, template
// and options always produce the same Layout.
type Layout struct {
	Width, Height int
	Nodes         []Node
	Edges         []Edge
	Labels        []Label
	// index maps commit id - 1 to a position in Nodes.
	index []int
}

// Node returns the node of commit id.
func (l Layout) Node(id story.CommitID) (Node, bool) {
	if id < 1 || int(id) > len(l.index) {
		return Node{}, false
	}
	return l.Nodes[l.index[id-1]], true
}

// Compute lays out g. Branches get one lane each in creation order and
// commits one row each in creation order.
func Compute(g *story.Graph, tmpl template.Template, opts Options) Layout {
	opts = opts.normalized()
	horizontal := opts.Orientation.horizontal()
	showMessages := opts.Mode != Compact

	laneSpacing := max(tmpl.Branch.Spacing, minLaneSpacing)
	rowSpacing := max(tmpl.Commit.Spacing, minRowSpacing)
	radius := max(tmpl.Commit.Dot.Size/2, 2)
	lanes := len(g.Branches())
	crossEnd := margin + max(lanes-1, 0)*laneSpacing + 2*radius

	order := g.Commits()
	if opts.Orientation == Vertical || opts.Orientation == HorizontalReverse {
		// Newest first.
		slices.Reverse(order)
	}

	l := Layout{
		Nodes: make([]Node, 0, len(order)),
		index: make([]int, len(order)),
	}
	labelled := make(map[string]bool, lanes)
	pos := 0
	for _, c := range order {
		lane := c.Branch().Index()
		n := Node{
			ID:     c.ID(),
			Branch: c.BranchName(),
			Lane:   lane,
			Radius: radius,
			Color:  tmpl.Color(lane),
			Merge:  c.IsMerge(),
		}
		cross := margin + lane*laneSpacing + radius
		main := margin + pos + radius
		if horizontal {
			n.X, n.Y = main, cross
		} else {
			n.X, n.Y = cross, main
		}
		if showMessages {
			n.Message = messageText(c, tmpl)
			n.Tag = c.Tag()
			if horizontal {
				n.MessageX = n.X
				n.MessageY = crossEnd + messageGap
				n.MessageRotation = horizontalMessageAngle
			} else {
				n.MessageX = crossEnd + messageGap
				n.MessageY = n.Y + lineHeight/4
			}
			if tmpl.Commit.Message.DisplayBranch && isBranchStart(c) && !labelled[n.Branch] {
				labelled[n.Branch] = true
				lbl := Label{
					Branch:   n.Branch,
					X:        n.MessageX,
					Y:        n.Y,
					Width:    textWidth(n.Branch) + 2*labelPad,
					Color:    n.Color,
					Rotation: tmpl.Branch.LabelRotation,
				}
				if horizontal {
					lbl.X = n.X - lbl.Width/2
					lbl.Y = margin - lineHeight/2
				} else {
					n.MessageX += lbl.Width + labelPad
				}
				l.Labels = append(l.Labels, lbl)
			}
			if c.ShowDetail() {
				n.Expanded = true
				n.Detail = opts.Detail(c)
				if horizontal {
					n.DetailX = n.X
					n.DetailY = crossEnd + messageGap + horizontalMessageSpan
				} else {
					n.DetailX = n.MessageX + labelPad
					n.DetailY = n.MessageY + lineHeight
				}
			}
		}
		l.index[c.ID()-1] = len(l.Nodes)
		l.Nodes = append(l.Nodes, n)

		pos += rowSpacing
		if !horizontal && n.Expanded {
			pos += len(n.Detail) * lineHeight
		}
	}

	l.Edges = computeEdges(g, l, tmpl, horizontal, rowSpacing)

	if horizontal {
		l.Width = 2*margin + pos
		l.Height = crossEnd + messageGap + margin
		if showMessages {
			l.Height += horizontalMessageSpan
		}
		for _, n := range l.Nodes {
			if n.Expanded {
				l.Height = max(l.Height, n.DetailY+len(n.Detail)*lineHeight+margin)
				l.Width = max(l.Width, n.DetailX+maxTextWidth(n.Detail)+margin)
			}
		}
		return l
	}
	l.Height = 2*margin + pos
	l.Width = crossEnd + margin
	for _, n := range l.Nodes {
		if n.Message != "" {
			w := n.MessageX + textWidth(n.Message)
			if n.Tag != "" {
				w += labelPad*3 + textWidth(n.Tag)
			}
			l.Width = max(l.Width, w+margin)
		}
		if n.Expanded {
			l.Width = max(l.Width, n.DetailX+maxTextWidth(n.Detail)+margin)
		}
	}
	return l
}

func computeEdges(g *story.Graph, l Layout, tmpl template.Template, horizontal bool, rowSpacing int) []Edge {
	width := max(tmpl.Branch.LineWidth, 1)
	var edges []Edge
	for _, c := range g.Commits() {
		child, _ := l.Node(c.ID())
		parents := c.Parents()
		for k, pid := range parents {
			parent, ok := l.Node(pid)
			if !ok || slices.Contains(parents[:k], pid) {
				continue
			}
			e := Edge{From: pid, To: c.ID(), Color: child.Color, Width: width}
			if k > 0 {
				e.Color = parent.Color
			}
			e.Points = edgePoints(parent, child, k > 0, horizontal, rowSpacing)
			edges = append(edges, e)
		}
	}
	return edges
}

// edgePoints routes a parent->child edge. Forks leave the parent's lane right
// away; merges follow the source lane and cross over next to the child.
func edgePoints(parent, child Node, merge, horizontal bool, rowSpacing int) [][2]int {
	if parent.Lane == child.Lane {
		return [][2]int{{parent.X, parent.Y}, {child.X, child.Y}}
	}
	step := rowSpacing / 2
	if horizontal {
		dir := sign(child.X - parent.X)
		if merge {
			return [][2]int{{parent.X, parent.Y}, {child.X - dir*step, parent.Y}, {child.X, child.Y}}
		}
		return [][2]int{{parent.X, parent.Y}, {parent.X + dir*step, child.Y}, {child.X, child.Y}}
	}
	dir := sign(child.Y - parent.Y)
	if merge {
		return [][2]int{{parent.X, parent.Y}, {parent.X, child.Y - dir*step}, {child.X, child.Y}}
	}
	return [][2]int{{parent.X, parent.Y}, {child.X, parent.Y + dir*step}, {child.X, child.Y}}
}

func isBranchStart(c *story.Commit) bool {
	ids := c.Branch().Commits()
	return len(ids) > 0 && ids[0] == c.ID()
}

func messageText(c *story.Commit, tmpl template.Template) string {
	var parts []string
	if tmpl.Commit.Message.DisplayHash {
		parts = append(parts, c.ShortHash())
	}
	parts = append(parts, c.Subject())
	if tmpl.Commit.Message.DisplayAuthor {
		parts = append(parts, "- "+c.Author())
	}
	return strings.Join(parts, " ")
}

func textWidth(s string) int {
	return utf8.RuneCountInString(s) * charWidth
}

func maxTextWidth(lines []string) int {
	w := 0
	for _, line := range lines {
		w = max(w, textWidth(line))
	}
	return w
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

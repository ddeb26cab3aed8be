package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/thiagokokada/storygraph/internal/story"
	"github.com/thiagokokada/storygraph/internal/template"
)

// Outline writes a plain-text rendering of g, one row per commit in creation
// order, with a lane column per branch.
func Outline(w io.Writer, g *story.Graph, tmpl template.Template, opts Options) error {
	opts = opts.normalized()
	branches := g.Branches()
	spans := laneSpans(g)
	nameWidth := 0
	for _, b := range branches {
		nameWidth = max(nameWidth, len(b.Name()))
	}
	for _, c := range g.Commits() {
		var lanes strings.Builder
		for _, b := range branches {
			switch span := spans[b.Index()]; {
			case b == c.Branch() && c.IsMerge():
				lanes.WriteString("M ")
			case b == c.Branch():
				lanes.WriteString("* ")
			case span.first < c.ID() && c.ID() < span.last:
				lanes.WriteString("| ")
			default:
				lanes.WriteString("  ")
			}
		}
		line := fmt.Sprintf("%s %-*s", lanes.String(), nameWidth, c.BranchName())
		if opts.Mode != Compact {
			line += " " + messageText(c, tmpl)
			if c.Tag() != "" {
				line += " [" + c.Tag() + "]"
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
		if !c.ShowDetail() {
			continue
		}
		for _, detail := range opts.Detail(c) {
			if _, err := fmt.Fprintf(w, "%s    %s\n", strings.Repeat(" ", 2*len(branches)), detail); err != nil {
				return err
			}
		}
	}
	return nil
}

// OutlineString is Outline into a string.
func OutlineString(g *story.Graph, tmpl template.Template, opts Options) string {
	var b strings.Builder
	// strings.Builder never fails.
	_ = Outline(&b, g, tmpl, opts)
	return b.String()
}

// OutlineDiff returns a unified diff between two outlines, empty when equal.
func OutlineDiff(before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  2,
	})
}

type span struct {
	first, last story.CommitID
}

// laneSpans returns, per branch, the range of commit ids during which its
// lane is drawn: from the fork point to its last commit or last merge out.
func laneSpans(g *story.Graph) []span {
	spans := make([]span, len(g.Branches()))
	for _, b := range g.Branches() {
		s := span{first: b.From(), last: b.Tip()}
		if ids := b.Commits(); len(ids) > 0 && s.first == 0 {
			s.first = ids[0]
		}
		spans[b.Index()] = s
	}
	for _, m := range g.Merges() {
		src, ok := g.Branch(m.Source)
		if !ok {
			continue
		}
		if s := &spans[src.Index()]; m.Commit > s.last {
			s.last = m.Commit
		}
	}
	return spans
}

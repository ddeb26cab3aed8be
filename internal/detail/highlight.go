package detail

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// Style returns the highlighting style for a light or dark background.
func Style(dark bool) *chroma.Style {
	name := "github"
	if dark {
		name = "github-dark"
	}
	if st := styles.Get(name); st != nil {
		return st
	}
	return styles.Fallback
}

// HTML renders the content as a highlighted <pre> block with inline styles.
func (c Content) HTML(style *chroma.Style) (string, error) {
	if style == nil {
		style = styles.Fallback
	}
	it, err := c.Lexer().Tokenise(nil, c.Text)
	if err != nil {
		return "", fmt.Errorf("tokenise detail: %w", err)
	}
	var b strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(false), chromahtml.Standalone(false))
	if err := formatter.Format(&b, style, it); err != nil {
		return "", fmt.Errorf("format detail: %w", err)
	}
	return b.String(), nil
}

// Run is a colored span of Text. Line is 1-based and Col counts runes from 0,
// matching Tk text indices.
type Run struct {
	Line, Col, Len int
	Color          string
}

// Runs returns the colored spans of Text under style.
func (c Content) Runs(style *chroma.Style) []Run {
	if style == nil || c.Text == "" {
		return nil
	}
	it, err := c.Lexer().Tokenise(nil, c.Text)
	if err != nil {
		return nil
	}
	var runs []Run
	line, col := 1, 0
	for _, tok := range it.Tokens() {
		color := colorFromEntry(style.Get(tok.Type))
		for i, part := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				line++
				col = 0
			}
			n := utf8.RuneCountInString(part)
			if n > 0 && color != "" {
				runs = append(runs, Run{Line: line, Col: col, Len: n, Color: color})
			}
			col += n
		}
	}
	return runs
}

func colorFromEntry(entry chroma.StyleEntry) string {
	if !entry.Colour.IsSet() {
		return ""
	}
	return "#" + strings.TrimPrefix(strings.ToLower(entry.Colour.String()), "#")
}

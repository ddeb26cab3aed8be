// Package detail resolves and highlights the detail payload of a commit.
//
// A payload is either inline markup or a reference to a file next to the
// story. The graph stores it untouched; only this package interprets it.
package detail

import (
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/thiagokokada/storygraph/internal/render"
	"github.com/thiagokokada/storygraph/internal/story"
)

type Kind int

const (
	Inline Kind = iota
	File
)

func (k Kind) String() string {
	if k == File {
		return "file"
	}
	return "inline"
}

// Content is a resolved payload.
type Content struct {
	Kind Kind
	// Name is the referenced file, empty for inline markup.
	Name string
	Text string
}

// Resolve interprets payload. A single token with a known file extension that
// names a file in files is read from it; anything else is inline markup.
func Resolve(payload string, files fs.FS) (Content, error) {
	payload = strings.TrimSpace(payload)
	name, ok := fileReference(payload)
	if !ok || files == nil {
		return Content{Kind: Inline, Text: payload}, nil
	}
	data, err := fs.ReadFile(files, name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("detail file not found, using payload as markup", slog.String("file", name))
		return Content{Kind: Inline, Text: payload}, nil
	case err != nil:
		return Content{}, fmt.Errorf("read detail %s: %w", name, err)
	}
	return Content{Kind: File, Name: name, Text: string(data)}, nil
}

func fileReference(payload string) (string, bool) {
	if payload == "" || strings.ContainsAny(payload, " \t\r\n<>") {
		return "", false
	}
	name := path.Clean(strings.TrimPrefix(payload, "./"))
	if !fs.ValidPath(name) || path.Ext(name) == "" {
		return "", false
	}
	if path.Ext(name) != ".txt" && lexers.Match(path.Base(name)) == nil {
		return "", false
	}
	return name, true
}

// Lexer picks a lexer from the file name, or HTML for inline markup.
func (c Content) Lexer() chroma.Lexer {
	var lexer chroma.Lexer
	if c.Kind == File {
		lexer = lexers.Match(path.Base(c.Name))
	} else {
		lexer = lexers.Get("html")
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// Lines returns the content as plain text lines. Inline markup loses its tags.
func (c Content) Lines() []string {
	text := c.Text
	if c.Kind == Inline {
		text = stripMarkup(c.Lexer(), text)
	}
	var lines []string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if c.Kind == Inline {
			line = strings.Join(strings.Fields(line), " ")
			if line == "" {
				continue
			}
		}
		lines = append(lines, strings.TrimRight(line, " \t\r"))
	}
	return lines
}

func stripMarkup(lexer chroma.Lexer, text string) string {
	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var b strings.Builder
	for _, tok := range it.Tokens() {
		switch tok.Type {
		case chroma.Text, chroma.TextWhitespace:
			b.WriteString(tok.Value)
		case chroma.NameEntity:
			b.WriteString(html.UnescapeString(tok.Value))
		}
	}
	return b.String()
}

// Func returns a render.DetailFunc showing the commit body followed by its
// resolved detail. Unreadable files fall back to the raw payload.
func Func(files fs.FS) render.DetailFunc {
	return func(c *story.Commit) []string {
		var lines []string
		if body := c.Body(); body != "" {
			lines = append(lines, strings.Split(body, "\n")...)
		}
		if c.Detail() == "" {
			return lines
		}
		content, err := Resolve(c.Detail(), files)
		if err != nil {
			slog.Warn("detail unavailable", slog.Int("commit", int(c.ID())), slog.Any("error", err))
			return append(lines, c.Detail())
		}
		return append(lines, content.Lines()...)
	}
}

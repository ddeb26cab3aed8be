// Package script loads story documents and replays them against a graph.
package script

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thiagokokada/storygraph/internal/detail"
	"github.com/thiagokokada/storygraph/internal/render"
	"github.com/thiagokokada/storygraph/internal/story"
	"github.com/thiagokokada/storygraph/internal/template"
)

var ErrInvalidScript = errors.New("invalid story script")

// DefaultContainer is used when a script does not name its container.
const DefaultContainer = "graph-container"

//go:embed stories
var stories embed.FS

const defaultStory = "career.yaml"

// Script is a parsed story document.
type Script struct {
	Container string         `yaml:"container"`
	Template  TemplateConfig `yaml:"template"`
	Layout    LayoutConfig   `yaml:"layout"`
	Steps     []Step         `yaml:"steps"`

	// Path is the file the script was loaded from, empty for built-in stories.
	Path string `yaml:"-"`
	// Files resolves detail file references.
	Files fs.FS `yaml:"-"`
}

type TemplateConfig struct {
	Preset            string `yaml:"preset"`
	template.Override `yaml:",inline"`
}

type LayoutConfig struct {
	Orientation string `yaml:"orientation"`
	Mode        string `yaml:"mode"`
}

// Step holds exactly one action.
type Step struct {
	Branch *BranchStep `yaml:"branch,omitempty"`
	Commit *CommitStep `yaml:"commit,omitempty"`
	Merge  *MergeStep  `yaml:"merge,omitempty"`
}

type BranchStep struct {
	Name string `yaml:"name"`
	// From is the parent branch. Empty creates the root branch.
	From string `yaml:"from,omitempty"`
}

type CommitStep struct {
	Branch   string `yaml:"branch"`
	Subject  string `yaml:"subject"`
	Tag      string `yaml:"tag,omitempty"`
	Body     string `yaml:"body,omitempty"`
	Detail   string `yaml:"detail,omitempty"`
	Listener string `yaml:"listener,omitempty"`
}

type MergeStep struct {
	Into    string `yaml:"into"`
	From    string `yaml:"from"`
	Message string `yaml:"message"`
}

// Parse decodes a story document. Unknown keys are rejected.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if s.Container == "" {
		s.Container = DefaultContainer
	}
	for i, step := range s.Steps {
		if n := step.actions(); n != 1 {
			return nil, fmt.Errorf("%w: step %d has %d actions, want 1", ErrInvalidScript, i+1, n)
		}
	}
	return &s, nil
}

// Load reads the story at path. Detail file references resolve relative to
// the story's directory.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read story: %w", err)
	}
	s, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	s.Files = os.DirFS(filepath.Dir(path))
	return s, nil
}

// Default returns the built-in career story.
func Default() (*Script, error) {
	f, err := stories.Open("stories/" + defaultStory)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("built-in story: %w", err)
	}
	sub, err := fs.Sub(stories, "stories")
	if err != nil {
		return nil, err
	}
	s.Files = sub
	return s, nil
}

// LoadOrDefault loads path, or the built-in story when path is empty.
func LoadOrDefault(path string) (*Script, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// SourceFiles lists the story file and the detail files it references, so
// callers can reload when any of them changes. Built-in stories have none.
func (s *Script) SourceFiles() []string {
	if s.Path == "" {
		return nil
	}
	paths := []string{s.Path}
	seen := map[string]struct{}{}
	dir := filepath.Dir(s.Path)
	for _, st := range s.Steps {
		if st.Commit == nil || st.Commit.Detail == "" {
			continue
		}
		content, err := detail.Resolve(st.Commit.Detail, s.Files)
		if err != nil || content.Kind != detail.File {
			continue
		}
		if _, ok := seen[content.Name]; ok {
			continue
		}
		seen[content.Name] = struct{}{}
		paths = append(paths, filepath.Join(dir, filepath.FromSlash(content.Name)))
	}
	return paths
}

// Name is a short label for logs and window titles.
func (s *Script) Name() string {
	if s.Path == "" {
		return strings.TrimSuffix(defaultStory, filepath.Ext(defaultStory))
	}
	return filepath.Base(s.Path)
}

// BuildTemplate resolves the template section against its preset.
func (s *Script) BuildTemplate() (template.Template, error) {
	t, err := template.Extend(template.Name(s.Template.Preset), s.Template.Override)
	if err != nil {
		return template.Template{}, fmt.Errorf("template: %w", err)
	}
	return t, nil
}

// Options resolves the layout section.
func (s *Script) Options() (render.Options, error) {
	o, err := render.ParseOrientation(s.Layout.Orientation)
	if err != nil {
		return render.Options{}, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	m, err := render.ParseMode(s.Layout.Mode)
	if err != nil {
		return render.Options{}, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	return render.Options{Orientation: o, Mode: m}, nil
}

// Execute replays the steps against g in order. It stops at the first
// failing step; the error names the step and wraps the graph's sentinel.
func (s *Script) Execute(g *story.Graph, listeners Listeners) error {
	if listeners == nil {
		listeners = Builtin()
	}
	for i, step := range s.Steps {
		if err := step.apply(g, listeners); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	slog.Debug("story executed",
		slog.String("story", s.Name()),
		slog.Int("branches", len(g.Branches())),
		slog.Int("commits", g.Len()),
	)
	return nil
}

// Build executes s against a fresh graph.
func (s *Script) Build(listeners Listeners) (*story.Graph, error) {
	g := story.New()
	if err := s.Execute(g, listeners); err != nil {
		return nil, err
	}
	return g, nil
}

func (st Step) actions() int {
	n := 0
	if st.Branch != nil {
		n++
	}
	if st.Commit != nil {
		n++
	}
	if st.Merge != nil {
		n++
	}
	return n
}

func (st Step) apply(g *story.Graph, listeners Listeners) error {
	switch {
	case st.Branch != nil:
		var parent *story.Branch
		if st.Branch.From != "" {
			b, err := lookup(g, st.Branch.From)
			if err != nil {
				return err
			}
			parent = b
		}
		_, err := g.CreateBranch(st.Branch.Name, parent)
		return err
	case st.Commit != nil:
		b, err := lookup(g, st.Commit.Branch)
		if err != nil {
			return err
		}
		rec := story.Record{
			Subject: st.Commit.Subject,
			Tag:     st.Commit.Tag,
			Body:    st.Commit.Body,
			Detail:  st.Commit.Detail,
		}
		if name := st.Commit.Listener; name != "" {
			l, ok := listeners[name]
			if !ok {
				return fmt.Errorf("%w: unknown listener %q", ErrInvalidScript, name)
			}
			rec.OnInteract = l
		}
		_, err = g.AddCommit(b, rec)
		return err
	case st.Merge != nil:
		into, err := lookup(g, st.Merge.Into)
		if err != nil {
			return err
		}
		from, err := lookup(g, st.Merge.From)
		if err != nil {
			return err
		}
		_, err = g.Merge(into, from, st.Merge.Message)
		return err
	}
	return fmt.Errorf("%w: empty step", ErrInvalidScript)
}

func lookup(g *story.Graph, name string) (*story.Branch, error) {
	b, ok := g.Branch(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown branch %q", story.ErrInvalidReference, name)
	}
	return b, nil
}

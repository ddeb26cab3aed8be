package script

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/storygraph/internal/render"
	"github.com/thiagokokada/storygraph/internal/story"
	"github.com/thiagokokada/storygraph/internal/template"
)

const scenario = `
template:
  preset: blackarrow
  branch: {lineWidth: 4}
layout: {orientation: horizontal, mode: compact}
steps:
  - branch: {name: career}
  - commit: {branch: career, subject: Init career}
  - branch: {name: education, from: career}
  - commit: {branch: education, subject: School, tag: 1999 - 2003, listener: log}
  - merge: {into: career, from: education, message: Graduated}
`

func parse(t *testing.T, doc string) *Script {
	t.Helper()
	s, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return s
}

func TestExecuteScenario(t *testing.T) {
	s := parse(t, scenario)
	assert.Equal(t, DefaultContainer, s.Container)

	g, err := s.Build(nil)
	require.NoError(t, err)

	career, ok := g.Branch("career")
	require.True(t, ok)
	education, ok := g.Branch("education")
	require.True(t, ok)
	assert.Equal(t, []story.CommitID{1, 3}, career.Commits())
	assert.Equal(t, []story.CommitID{2}, education.Commits())

	merge, err := g.Commit(3)
	require.NoError(t, err)
	assert.True(t, merge.IsMerge())
	assert.Equal(t, "Graduated", merge.Subject())
	assert.Equal(t, []story.CommitID{1, 2}, merge.Parents())

	school, err := g.Commit(2)
	require.NoError(t, err)
	assert.Equal(t, "1999 - 2003", school.Tag())
	assert.NotNil(t, school.Listener())
}

func TestBuildTemplateAndOptions(t *testing.T) {
	s := parse(t, scenario)

	tmpl, err := s.BuildTemplate()
	require.NoError(t, err)
	base, err := template.Preset(template.BlackArrow)
	require.NoError(t, err)
	assert.Equal(t, 4, tmpl.Branch.LineWidth)
	assert.Equal(t, base.Colors, tmpl.Colors)
	assert.Equal(t, base.Commit, tmpl.Commit)

	opts, err := s.Options()
	require.NoError(t, err)
	assert.Equal(t, render.Horizontal, opts.Orientation)
	assert.Equal(t, render.Compact, opts.Mode)
}

func TestParseErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":          "",
		"unknown key":    "stepz: []",
		"two actions":    "steps:\n  - branch: {name: a}\n    commit: {branch: a, subject: x}",
		"no action":      "steps:\n  - {}",
		"malformed yaml": "steps: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			require.ErrorIs(t, err, ErrInvalidScript)
		})
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
		step string
	}{
		{
			name: "duplicate branch",
			doc:  "steps:\n  - branch: {name: career}\n  - branch: {name: career, from: career}",
			want: story.ErrDuplicateBranch,
			step: "step 2",
		},
		{
			name: "unknown branch",
			doc:  "steps:\n  - commit: {branch: nowhere, subject: x}",
			want: story.ErrInvalidReference,
			step: "step 1",
		},
		{
			name: "blank subject",
			doc:  "steps:\n  - branch: {name: career}\n  - commit: {branch: career, subject: '  '}",
			want: story.ErrInvalidRecord,
			step: "step 2",
		},
		{
			name: "unknown listener",
			doc:  "steps:\n  - branch: {name: career}\n  - commit: {branch: career, subject: x, listener: beep}",
			want: ErrInvalidScript,
			step: "step 2",
		},
		{
			name: "merge into itself",
			doc:  "steps:\n  - branch: {name: career}\n  - merge: {into: career, from: career, message: m}",
			want: story.ErrInvalidReference,
			step: "step 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.doc).Build(nil)
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.step)
		})
	}
}

func TestCustomListeners(t *testing.T) {
	var got []story.CommitID
	listeners := Builtin().With(Listeners{"record": func(id story.CommitID, _ bool) {
		got = append(got, id)
	}})
	assert.Contains(t, listeners, "log")

	s := parse(t, "steps:\n  - branch: {name: career}\n  - commit: {branch: career, subject: x, listener: record}")
	g, err := s.Build(listeners)
	require.NoError(t, err)
	c, err := g.Commit(1)
	require.NoError(t, err)
	c.Listener()(1, true)
	assert.Equal(t, []story.CommitID{1}, got)
}

func TestInvalidLayout(t *testing.T) {
	s := parse(t, "layout: {orientation: diagonal}")
	_, err := s.Options()
	require.ErrorIs(t, err, ErrInvalidScript)
}

func TestDefault(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "career", s.Name())

	g, err := s.Build(nil)
	require.NoError(t, err)
	assert.Len(t, g.Branches(), 3)
	assert.Equal(t, 15, g.Len())
	assert.Len(t, g.Merges(), 2)

	_, err = s.BuildTemplate()
	require.NoError(t, err)

	// Every file-referenced detail ships with the built-in story.
	for _, c := range g.Commits() {
		if d := c.Detail(); strings.HasPrefix(d, "details/") {
			_, err := fs.Stat(s.Files, d)
			assert.NoError(t, err, d)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.md"), []byte("# note"), 0o644))

	s, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, "story.yaml", s.Name())
	data, err := fs.ReadFile(s.Files, "note.md")
	require.NoError(t, err)
	assert.Equal(t, "# note", string(data))

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestSourceFiles(t *testing.T) {
	builtin, err := Default()
	require.NoError(t, err)
	assert.Nil(t, builtin.SourceFiles())

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "details"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "details", "phd.md"), []byte("# PhD\n"), 0o644))
	path := filepath.Join(dir, "story.yaml")
	doc := `steps:
  - branch: {name: main}
  - commit: {branch: main, subject: a, detail: details/phd.md}
  - commit: {branch: main, subject: b, detail: ./details/phd.md}
  - commit: {branch: main, subject: c, detail: "<b>inline</b>"}
  - commit: {branch: main, subject: d, detail: details/missing.md}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path, filepath.Join(dir, "details", "phd.md")}, s.SourceFiles())
}

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/storygraph/internal/buildinfo"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

const storyDoc = `template:
  commit:
    message: {displayHash: false, displayAuthor: false}
steps:
  - branch: {name: career}
  - commit: {branch: career, subject: Init career, body: first day}
  - branch: {name: education, from: career}
  - commit: {branch: education, subject: School}
  - merge: {into: career, from: education, message: Graduated}
`

func writeStory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "story.yaml")
	require.NoError(t, os.WriteFile(path, []byte(storyDoc), 0o644))
	return path
}

func TestRenderOutline(t *testing.T) {
	path := writeStory(t)

	out, err := execute(t, "render", "--format", "outline", path)
	require.NoError(t, err)
	assert.Equal(t, "*    career    Init career\n| *  education School\nM    career    Graduated\n", out)

	out, err = execute(t, "render", "-f", "outline", "--expand", "1", "--story", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Init career\n        first day\n")
}

func TestRenderBuiltinSVGToFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "career.svg")
	out, err := execute(t, "render", "-o", dst)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("<?xml")))
	assert.Contains(t, string(data), `data-commit="15"`)
}

func TestRenderErrors(t *testing.T) {
	path := writeStory(t)

	_, err := execute(t, "render", "--format", "png", path)
	require.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "render", "--expand", "42", path)
	require.ErrorContains(t, err, "expand")

	_, err = execute(t, "render", "--orientation", "diagonal", path)
	require.Error(t, err)

	_, err = execute(t, "render", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = execute(t, "--log-format", "xml", "version")
	require.ErrorContains(t, err, "unknown log format")
}

func TestExportGit(t *testing.T) {
	path := writeStory(t)
	dir := t.TempDir()

	out, err := execute(t, "export-git", "--story", path, dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "exported 3 commits and 2 branches"), out)

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, "career", head.Name().Short())
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Graduated", strings.TrimSpace(commit.Message))
	assert.Equal(t, 2, commit.NumParents())
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, buildinfo.Title()+"\n", out)
}

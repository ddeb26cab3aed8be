// Package gitexport writes a story graph out as a git history.
package gitexport

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"

	"github.com/thiagokokada/storygraph/internal/story"
)

var ErrHashMismatch = errors.New("exported hash differs from story hash")

// Result summarises an export.
type Result struct {
	Commits int
	Refs    []plumbing.ReferenceName
	Head    plumbing.ReferenceName
}

// Export stores every commit of g in s, points one branch ref at each story
// branch tip and HEAD at the root branch. Commits keep the hashes the story
// shows.
func Export(g *story.Graph, s storage.Storer) (Result, error) {
	var res Result
	if err := writeEmptyTree(s); err != nil {
		return res, err
	}
	for _, c := range g.Commits() {
		obj := s.NewEncodedObject()
		if err := g.GitCommit(c).Encode(obj); err != nil {
			return res, fmt.Errorf("encode commit %d: %w", c.ID(), err)
		}
		h, err := s.SetEncodedObject(obj)
		if err != nil {
			return res, fmt.Errorf("store commit %d: %w", c.ID(), err)
		}
		if h.String() != c.Hash() {
			return res, fmt.Errorf("commit %d: %w: %s != %s", c.ID(), ErrHashMismatch, h, c.Hash())
		}
		res.Commits++
	}

	for _, b := range g.Branches() {
		tip := b.Tip()
		if tip == 0 {
			slog.Debug("skipping branch without commits", slog.String("branch", b.Name()))
			continue
		}
		c, err := g.Commit(tip)
		if err != nil {
			return res, err
		}
		name := plumbing.NewBranchReferenceName(b.Name())
		if err := name.Validate(); err != nil {
			return res, fmt.Errorf("branch %q: %w", b.Name(), err)
		}
		if err := s.SetReference(plumbing.NewHashReference(name, plumbing.NewHash(c.Hash()))); err != nil {
			return res, fmt.Errorf("set ref %s: %w", name, err)
		}
		res.Refs = append(res.Refs, name)
	}

	if root := g.Root(); root != nil && root.Tip() != 0 {
		res.Head = plumbing.NewBranchReferenceName(root.Name())
		if err := s.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, res.Head)); err != nil {
			return res, fmt.Errorf("set HEAD: %w", err)
		}
	}
	slog.Debug("story exported", slog.Int("commits", res.Commits), slog.Int("refs", len(res.Refs)))
	return res, nil
}

// ExportDir initialises a bare repository at dir and exports g into it.
func ExportDir(g *story.Graph, dir string) (Result, error) {
	repo, err := git.PlainInit(dir, true)
	if err != nil {
		return Result{}, fmt.Errorf("init %s: %w", dir, err)
	}
	return Export(g, repo.Storer)
}

func writeEmptyTree(s storage.Storer) error {
	obj := s.NewEncodedObject()
	if err := (&object.Tree{}).Encode(obj); err != nil {
		return fmt.Errorf("encode empty tree: %w", err)
	}
	h, err := s.SetEncodedObject(obj)
	if err != nil {
		return fmt.Errorf("store empty tree: %w", err)
	}
	if h.String() != story.EmptyTreeHash {
		return fmt.Errorf("empty tree: %w: %s", ErrHashMismatch, h)
	}
	return nil
}

package story

import (
	"fmt"
	"slices"
)

type Branch struct {
	graph   *Graph
	name    string
	parent  *Branch
	from    CommitID
	index   int
	commits []CommitID
}

func (b *Branch) Name() string { return b.name }

// Parent returns the branch this one was created from, nil for the root.
func (b *Branch) Parent() *Branch { return b.parent }

// From returns the parent's tip at creation time, or 0 when the parent had no commits.
func (b *Branch) From() CommitID { return b.from }

// Index is the branch's position in creation order.
func (b *Branch) Index() int { return b.index }

// Commits returns the branch's commit ids in insertion order.
func (b *Branch) Commits() []CommitID {
	return slices.Clone(b.commits)
}

// Len returns the number of commits appended to the branch.
func (b *Branch) Len() int { return len(b.commits) }

// Tip returns the last commit on the branch, falling back to the created-from
// tip for a branch without commits of its own.
func (b *Branch) Tip() CommitID {
	if n := len(b.commits); n > 0 {
		return b.commits[n-1]
	}
	return b.from
}

// Branch creates a child branch of b.
func (b *Branch) Branch(name string) (*Branch, error) {
	if b == nil {
		return nil, fmt.Errorf("create branch %q: %w", name, ErrInvalidReference)
	}
	return b.graph.CreateBranch(name, b)
}

// Commit appends a commit to b.
func (b *Branch) Commit(rec Record) (*Commit, error) {
	if b == nil {
		return nil, fmt.Errorf("add commit: %w", ErrInvalidReference)
	}
	return b.graph.AddCommit(b, rec)
}

// Merge merges source into b.
func (b *Branch) Merge(source *Branch, message string) (*Commit, error) {
	if b == nil {
		return nil, fmt.Errorf("merge: %w", ErrInvalidReference)
	}
	return b.graph.Merge(b, source, message)
}

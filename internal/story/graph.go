package story

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Graph is the branch/commit/merge structure of one story. It is built once by
// an ordered sequence of CreateBranch, AddCommit and Merge calls; afterwards
// only the per-commit detail flag changes. A Graph is not safe for concurrent
// use; the owning session serialises access.
type Graph struct {
	branches map[string]*Branch
	order    []*Branch
	commits  []*Commit
	merges   []MergeEvent
	root     *Branch

	generation uint64
}

// MergeEvent records a merge of Source into Target.
type MergeEvent struct {
	Source  string
	Target  string
	Message string
	Commit  CommitID
}

func New() *Graph {
	return &Graph{branches: make(map[string]*Branch)}
}

// CreateBranch adds a branch named name forking from parent's current tip. A
// nil parent creates the root branch, which may only exist once.
func (g *Graph) CreateBranch(name string, parent *Branch) (*Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("create branch: %w: empty name", ErrInvalidRecord)
	}
	if _, ok := g.branches[name]; ok {
		return nil, fmt.Errorf("create branch %q: %w", name, ErrDuplicateBranch)
	}
	var from CommitID
	if parent == nil {
		if g.root != nil {
			return nil, fmt.Errorf("create branch %q: %w: root branch %q already exists", name, ErrInvalidReference, g.root.name)
		}
	} else {
		if !g.owns(parent) {
			return nil, fmt.Errorf("create branch %q: %w: unknown parent %q", name, ErrInvalidReference, parent.name)
		}
		from = parent.Tip()
	}
	b := &Branch{
		graph:  g,
		name:   name,
		parent: parent,
		from:   from,
		index:  len(g.order),
	}
	g.branches[name] = b
	g.order = append(g.order, b)
	if parent == nil {
		g.root = b
	}
	slog.Debug("branch created", slog.String("branch", name), slog.Int("from", int(from)))
	return b, nil
}

// AddCommit appends a commit built from rec to branch and advances its tip.
func (g *Graph) AddCommit(branch *Branch, rec Record) (*Commit, error) {
	if !g.owns(branch) {
		return nil, fmt.Errorf("add commit %q: %w: stale branch handle", rec.Subject, ErrInvalidReference)
	}
	subject := strings.TrimSpace(rec.Subject)
	if subject == "" {
		return nil, fmt.Errorf("add commit on %q: %w: subject is required", branch.name, ErrInvalidRecord)
	}
	var parents []CommitID
	if tip := branch.Tip(); tip != 0 {
		parents = []CommitID{tip}
	}
	c := &Commit{
		subject:  subject,
		tag:      strings.TrimSpace(rec.Tag),
		body:     strings.TrimSpace(rec.Body),
		detail:   strings.TrimSpace(rec.Detail),
		parents:  parents,
		listener: rec.OnInteract,
	}
	g.append(branch, c)
	return c, nil
}

// Merge appends a merge commit to target whose parents are target's prior tip
// and source's current tip. Source's own sequence is unchanged. Both tips are
// kept even when equal (a source with no commits of its own); an empty target
// has no prior tip and contributes none.
func (g *Graph) Merge(target, source *Branch, message string) (*Commit, error) {
	if !g.owns(target) {
		return nil, fmt.Errorf("merge: %w: stale target branch handle", ErrInvalidReference)
	}
	if !g.owns(source) {
		return nil, fmt.Errorf("merge into %q: %w: stale source branch handle", target.name, ErrInvalidReference)
	}
	if source == target {
		return nil, fmt.Errorf("merge %q into itself: %w", target.name, ErrInvalidReference)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("merge %q into %q: %w: message is required", source.name, target.name, ErrInvalidRecord)
	}
	var parents []CommitID
	if tip := target.Tip(); tip != 0 {
		parents = append(parents, tip)
	}
	if tip := source.Tip(); tip != 0 {
		parents = append(parents, tip)
	}
	c := &Commit{
		subject: message,
		parents: parents,
		merge:   true,
	}
	g.append(target, c)
	g.merges = append(g.merges, MergeEvent{
		Source:  source.name,
		Target:  target.name,
		Message: message,
		Commit:  c.id,
	})
	return c, nil
}

func (g *Graph) append(branch *Branch, c *Commit) {
	c.id = CommitID(len(g.commits) + 1)
	c.branch = branch
	c.hash = g.computeHash(c)
	g.commits = append(g.commits, c)
	branch.commits = append(branch.commits, c.id)
	slog.Debug("commit added",
		slog.Int("id", int(c.id)),
		slog.String("branch", branch.name),
		slog.Bool("merge", c.merge),
		slog.String("subject", c.subject),
	)
}

func (g *Graph) owns(b *Branch) bool {
	if b == nil || b.graph != g {
		return false
	}
	return g.branches[b.name] == b
}

// Owns reports whether b is a live handle of this graph.
func (g *Graph) Owns(b *Branch) bool {
	return g.owns(b)
}

// Branch returns the branch named name.
func (g *Graph) Branch(name string) (*Branch, bool) {
	b, ok := g.branches[name]
	return b, ok
}

// Root returns the root branch, nil for an empty graph.
func (g *Graph) Root() *Branch {
	return g.root
}

// Branches returns all branches in creation order.
func (g *Graph) Branches() []*Branch {
	return slices.Clone(g.order)
}

// Commits returns all commits in creation order.
func (g *Graph) Commits() []*Commit {
	return slices.Clone(g.commits)
}

// Merges returns the merge events in the order they happened.
func (g *Graph) Merges() []MergeEvent {
	return slices.Clone(g.merges)
}

// Commit returns the commit with the given id.
func (g *Graph) Commit(id CommitID) (*Commit, error) {
	if id < 1 || int(id) > len(g.commits) {
		return nil, fmt.Errorf("commit %d: %w", id, ErrInvalidReference)
	}
	return g.commits[id-1], nil
}

// Len returns the number of commits in the graph.
func (g *Graph) Len() int {
	return len(g.commits)
}

// SetShowDetail sets the detail flag of commit id and reports whether the
// value changed. It is the only mutation allowed once the graph is built.
func (g *Graph) SetShowDetail(id CommitID, show bool) (bool, error) {
	c, err := g.Commit(id)
	if err != nil {
		return false, err
	}
	if c.showDetail == show {
		return false, nil
	}
	c.showDetail = show
	g.generation++
	return true, nil
}

// Generation is bumped by every detail flag change.
func (g *Graph) Generation() uint64 {
	return g.generation
}

package story

import (
	"slices"

	"github.com/go-git/go-git/v5/plumbing"
)

// CommitID identifies a commit. IDs start at 1 and follow creation order.
type CommitID int

// Listener is notified after a commit's detail state flips.
type Listener func(id CommitID, expanded bool)

// Record carries the fields of a new commit.
type Record struct {
	Subject string
	Tag     string
	Body    string
	// Detail is forwarded untouched to the detail viewer: inline markup or a file reference.
	Detail     string
	OnInteract Listener
}

type Commit struct {
	id       CommitID
	branch   *Branch
	parents  []CommitID
	subject  string
	tag      string
	body     string
	detail   string
	merge    bool
	hash     plumbing.Hash
	listener Listener

	showDetail bool
}

func (c *Commit) ID() CommitID       { return c.id }
func (c *Commit) Subject() string    { return c.subject }
func (c *Commit) Tag() string        { return c.tag }
func (c *Commit) Body() string       { return c.body }
func (c *Commit) Detail() string     { return c.detail }
func (c *Commit) IsMerge() bool      { return c.merge }
func (c *Commit) Branch() *Branch    { return c.branch }
func (c *Commit) BranchName() string { return c.branch.name }
func (c *Commit) Listener() Listener { return c.listener }
func (c *Commit) ShowDetail() bool   { return c.showDetail }

// Parents returns the parent ids. A merge commit lists the target's prior tip first.
func (c *Commit) Parents() []CommitID {
	return slices.Clone(c.parents)
}

// Hash returns the git object hash of the commit.
func (c *Commit) Hash() string {
	return c.hash.String()
}

// ShortHash returns the abbreviated hash shown in messages.
func (c *Commit) ShortHash() string {
	h := c.hash.String()
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

// HasDetail reports whether there is anything to expand.
func (c *Commit) HasDetail() bool {
	return c.body != "" || c.detail != ""
}

// Author returns the signature shown when messages display the author.
func (c *Commit) Author() string {
	return authorName + " <" + authorEmail + ">"
}

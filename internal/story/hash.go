package story

import (
	"slices"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	// EmptyTreeHash is the git hash of an empty tree; every story commit points at it.
	EmptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

	authorName  = "storygraph"
	authorEmail = "storygraph@localhost"
)

// epoch anchors commit timestamps so hashes only depend on the story content.
var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// GitCommit returns the git commit object equivalent of c. Parent hashes are
// resolved against g, so the result is stable across rebuilds of the same story.
func (g *Graph) GitCommit(c *Commit) *object.Commit {
	sig := object.Signature{
		Name:  authorName,
		Email: authorEmail,
		When:  epoch.Add(time.Duration(c.id) * time.Hour),
	}
	// git rejects repeated parents.
	parents := make([]plumbing.Hash, 0, len(c.parents))
	for _, id := range c.parents {
		h := g.commits[id-1].hash
		if !slices.Contains(parents, h) {
			parents = append(parents, h)
		}
	}
	return &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      commitMessage(c),
		TreeHash:     plumbing.NewHash(EmptyTreeHash),
		ParentHashes: parents,
	}
}

func (g *Graph) computeHash(c *Commit) plumbing.Hash {
	obj := &plumbing.MemoryObject{}
	if err := g.GitCommit(c).Encode(obj); err != nil {
		// MemoryObject writes cannot fail; fall back to hashing the message.
		return plumbing.ComputeHash(plumbing.CommitObject, []byte(commitMessage(c)))
	}
	return obj.Hash()
}

func commitMessage(c *Commit) string {
	msg := c.subject + "\n"
	if c.body != "" {
		msg += "\n" + c.body + "\n"
	}
	if c.tag != "" {
		msg += "\nPeriod: " + c.tag + "\n"
	}
	return msg
}

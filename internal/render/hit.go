package render

import "github.com/thiagokokada/storygraph/internal/story"

// hitSlack widens the dot target so small dots stay clickable.
const hitSlack = 3

// CommitAt returns the commit whose dot or message covers the point x, y.
// Rotated messages only react on the dot.
func (l Layout) CommitAt(x, y int) (story.CommitID, bool) {
	for _, n := range l.Nodes {
		if n.covers(x, y) {
			return n.ID, true
		}
	}
	return 0, false
}

func (n Node) covers(x, y int) bool {
	dx, dy := x-n.X, y-n.Y
	r := n.Radius + hitSlack
	if dx*dx+dy*dy <= r*r {
		return true
	}
	if n.Message == "" || n.MessageRotation != 0 {
		return false
	}
	w := textWidth(n.Message)
	if n.Tag != "" {
		w += 3*labelPad + textWidth(n.Tag)
	}
	return x >= n.MessageX && x <= n.MessageX+w &&
		y >= n.MessageY-lineHeight && y <= n.MessageY+lineHeight/4
}

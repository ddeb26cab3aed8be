package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/storygraph/internal/story"
	"github.com/thiagokokada/storygraph/internal/template"
)

func testTemplate() template.Template {
	return template.Template{
		Colors: []string{"#aaaaaa", "#bbbbbb"},
		Branch: template.BranchStyle{LineWidth: 2, Spacing: 30},
		Commit: template.CommitStyle{Spacing: 40, Dot: template.DotStyle{Size: 10}},
	}
}

func scenario(t *testing.T) *story.Graph {
	t.Helper()
	g := story.New()
	career, err := g.CreateBranch("career", nil)
	require.NoError(t, err)
	_, err = career.Commit(story.Record{Subject: "Init career", Body: "line1\nline2"})
	require.NoError(t, err)
	education, err := career.Branch("education")
	require.NoError(t, err)
	_, err = education.Commit(story.Record{Subject: "School", Tag: "1999 - 2003"})
	require.NoError(t, err)
	_, err = career.Merge(education, "Graduated")
	require.NoError(t, err)
	return g
}

func TestComputeVerticalReverse(t *testing.T) {
	l := Compute(scenario(t), testTemplate(), Options{Orientation: VerticalReverse})

	n1, ok := l.Node(1)
	require.True(t, ok)
	n2, _ := l.Node(2)
	n3, _ := l.Node(3)
	assert.Equal(t, [2]int{25, 25}, [2]int{n1.X, n1.Y})
	assert.Equal(t, [2]int{55, 65}, [2]int{n2.X, n2.Y})
	assert.Equal(t, [2]int{25, 105}, [2]int{n3.X, n3.Y})
	assert.Equal(t, "#aaaaaa", n1.Color)
	assert.Equal(t, "#bbbbbb", n2.Color)
	assert.True(t, n3.Merge)
	assert.Equal(t, 160, l.Height)
	assert.Equal(t, "Init career", n1.Message)
	assert.Equal(t, "1999 - 2003", n2.Tag)

	require.Len(t, l.Edges, 3)
	assert.Equal(t, Edge{From: 1, To: 2, Color: "#bbbbbb", Width: 2, Points: [][2]int{{25, 25}, {55, 45}, {55, 65}}}, l.Edges[0])
	assert.Equal(t, Edge{From: 1, To: 3, Color: "#aaaaaa", Width: 2, Points: [][2]int{{25, 25}, {25, 105}}}, l.Edges[1])
	assert.Equal(t, Edge{From: 2, To: 3, Color: "#bbbbbb", Width: 2, Points: [][2]int{{55, 65}, {55, 85}, {25, 105}}}, l.Edges[2])

	_, ok = l.Node(4)
	assert.False(t, ok)
}

func TestComputeMergeOfEmptyBranchDrawsOneEdge(t *testing.T) {
	g := story.New()
	career, err := g.CreateBranch("career", nil)
	require.NoError(t, err)
	_, err = career.Commit(story.Record{Subject: "Init career"})
	require.NoError(t, err)
	education, err := career.Branch("education")
	require.NoError(t, err)
	_, err = career.Merge(education, "Graduated")
	require.NoError(t, err)

	l := Compute(g, testTemplate(), Options{Orientation: VerticalReverse})
	require.Len(t, l.Edges, 1)
	assert.Equal(t, story.CommitID(1), l.Edges[0].From)
	assert.Equal(t, story.CommitID(2), l.Edges[0].To)
}

func TestComputeVerticalPutsNewestFirst(t *testing.T) {
	l := Compute(scenario(t), testTemplate(), Options{Orientation: Vertical})
	n1, _ := l.Node(1)
	n3, _ := l.Node(3)
	assert.Equal(t, 25, n3.Y)
	assert.Equal(t, 105, n1.Y)
	assert.Equal(t, story.CommitID(3), l.Nodes[0].ID)
}

func TestComputeHorizontal(t *testing.T) {
	l := Compute(scenario(t), testTemplate(), Options{Orientation: Horizontal})
	n1, _ := l.Node(1)
	n2, _ := l.Node(2)
	assert.Equal(t, [2]int{25, 25}, [2]int{n1.X, n1.Y})
	assert.Equal(t, [2]int{65, 55}, [2]int{n2.X, n2.Y})
	assert.Equal(t, horizontalMessageAngle, n1.MessageRotation)
	assert.Equal(t, 160, l.Width)
}

func TestComputeExpandedCommitPushesRows(t *testing.T) {
	g := scenario(t)
	_, err := g.SetShowDetail(1, true)
	require.NoError(t, err)

	l := Compute(g, testTemplate(), Options{Orientation: VerticalReverse})
	n1, _ := l.Node(1)
	n2, _ := l.Node(2)
	assert.True(t, n1.Expanded)
	assert.Equal(t, []string{"line1", "line2"}, n1.Detail)
	assert.Equal(t, 65+2*lineHeight, n2.Y)
}

func TestComputeCustomDetail(t *testing.T) {
	g := scenario(t)
	_, err := g.SetShowDetail(2, true)
	require.NoError(t, err)
	l := Compute(g, testTemplate(), Options{Detail: func(c *story.Commit) []string {
		return []string{"detail of " + c.Subject()}
	}})
	n2, _ := l.Node(2)
	assert.Equal(t, []string{"detail of School"}, n2.Detail)
}

func TestComputeCompactHidesMessages(t *testing.T) {
	tmpl := testTemplate()
	tmpl.Commit.Message.DisplayBranch = true
	l := Compute(scenario(t), tmpl, Options{Mode: Compact})
	for _, n := range l.Nodes {
		assert.Empty(t, n.Message)
	}
	assert.Empty(t, l.Labels)
}

func TestComputeBranchLabels(t *testing.T) {
	tmpl := testTemplate()
	tmpl.Commit.Message.DisplayBranch = true
	tmpl.Commit.Message.DisplayHash = true
	g := scenario(t)
	l := Compute(g, tmpl, Options{Orientation: VerticalReverse})
	require.Len(t, l.Labels, 2)
	assert.Equal(t, "career", l.Labels[0].Branch)
	assert.Equal(t, "education", l.Labels[1].Branch)

	c, err := g.Commit(1)
	require.NoError(t, err)
	n1, _ := l.Node(1)
	assert.Equal(t, c.ShortHash()+" Init career", n1.Message)
	assert.Greater(t, n1.MessageX, l.Labels[0].X)
}

func TestParseOptions(t *testing.T) {
	o, err := ParseOrientation(" Horizontal ")
	require.NoError(t, err)
	assert.Equal(t, Horizontal, o)
	o, err = ParseOrientation("")
	require.NoError(t, err)
	assert.Equal(t, Vertical, o)
	_, err = ParseOrientation("diagonal")
	require.Error(t, err)

	m, err := ParseMode("compact")
	require.NoError(t, err)
	assert.Equal(t, Compact, m)
	_, err = ParseMode("tiny")
	require.Error(t, err)
}

func TestSVGEngineRefreshIsIdempotent(t *testing.T) {
	g := scenario(t)
	e := NewSVGEngine(g, testTemplate(), Options{})
	require.NoError(t, e.Refresh())
	first := e.Bytes()
	require.NoError(t, e.Refresh())
	assert.Equal(t, first, e.Bytes())
	assert.Equal(t, 2, e.Refreshes())

	out := string(first)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml"))
	assert.Contains(t, out, `data-commit="1"`)
	assert.Contains(t, out, `class="commit-message"`)
	assert.Contains(t, out, "Init career")
	assert.Contains(t, out, "1999 - 2003")
	assert.NotContains(t, out, "line1")

	_, err := g.SetShowDetail(1, true)
	require.NoError(t, err)
	require.NoError(t, e.Refresh())
	expanded := string(e.Bytes())
	assert.NotEqual(t, out, expanded)
	assert.Contains(t, expanded, "commit expanded")
	assert.Contains(t, expanded, "line1")
	assert.Contains(t, expanded, "line2")
}

func TestWriteSVGEscapesText(t *testing.T) {
	g := story.New()
	b, err := g.CreateBranch("career", nil)
	require.NoError(t, err)
	_, err = b.Commit(story.Record{Subject: "R&D <lab>"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, Compute(g, testTemplate(), Options{}), testTemplate()))
	assert.Contains(t, buf.String(), "R&amp;D &lt;lab&gt;")
}

func TestOutline(t *testing.T) {
	g := scenario(t)
	want := strings.Join([]string{
		"*    career    Init career",
		"| *  education School [1999 - 2003]",
		"M    career    Graduated",
		"",
	}, "\n")
	assert.Equal(t, want, OutlineString(g, testTemplate(), Options{}))

	_, err := g.SetShowDetail(1, true)
	require.NoError(t, err)
	expanded := OutlineString(g, testTemplate(), Options{})
	assert.Contains(t, expanded, "*    career    Init career\n        line1\n        line2\n")

	compact := OutlineString(g, testTemplate(), Options{Mode: Compact})
	assert.Equal(t, "*    career\n        line1\n        line2\n| *  education\nM    career\n", compact)
}

func TestOutlineDiff(t *testing.T) {
	same, err := OutlineDiff("a\nb\n", "a\nb\n")
	require.NoError(t, err)
	assert.Empty(t, same)

	diff, err := OutlineDiff("a\nb\n", "a\nc\n")
	require.NoError(t, err)
	assert.Contains(t, diff, "--- before")
	assert.Contains(t, diff, "+++ after")
	assert.Contains(t, diff, "-b")
	assert.Contains(t, diff, "+c")
}

func TestEngineFunc(t *testing.T) {
	calls := 0
	var e Engine = EngineFunc(func() error {
		calls++
		return nil
	})
	require.NoError(t, e.Refresh())
	assert.Equal(t, 1, calls)
}

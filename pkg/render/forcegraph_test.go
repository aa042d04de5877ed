package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddl-r-abdulaziz/relmap/pkg/force"
	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
	"github.com/ddl-r-abdulaziz/relmap/pkg/interact"
)

func testSnapshot() force.Snapshot {
	return force.Snapshot{
		Nodes: []force.NodeState{
			{Node: graph.Node{ID: "a", Label: "Climate", Type: graph.NodeTypeTheme}, X: 0, Y: 0},
			{Node: graph.Node{ID: "b", Label: "Acme", Type: graph.NodeTypeOrganization}, X: 300, Y: 0},
			{Node: graph.Node{ID: "c", Label: "Solar power systems", Type: graph.NodeTypeInitiative}, X: 300, Y: 200},
			{Node: graph.Node{ID: "d", Label: "Panels", Type: graph.NodeTypeTopic}, X: 300, Y: 200},
		},
		Links: []graph.Link{
			{Source: "a", Target: "b", Kind: graph.LinkKindMain},
			{Source: "b", Target: "c", Kind: graph.LinkKindBranch},
			{Source: "c", Target: "d", Kind: graph.LinkKindTopic},
			{Source: "a", Target: "gone"},
		},
		Tick: 3,
	}
}

func TestForceScene(t *testing.T) {
	s := ForceScene(testSnapshot(), 1200, 800, Options{})

	require.False(t, s.Empty)
	assert.Len(t, s.Circles, 4)
	assert.Len(t, s.Texts, 4)
	require.Len(t, s.Lines, 2, "dangling and coincident links are not drawn")

	tests := map[string]struct {
		id             string
		x1, y1, x2, y2 float64
		stroke         string
		width          float64
		dash           string
		opacity        float64
	}{
		"main link ends on both circumferences": {
			id: "a->b", x1: 120, y1: 60, x2: 315, y2: 60,
			stroke: "#666666", width: 2, opacity: 0.7,
		},
		"branch link is dashed": {
			id: "b->c", x1: 360, y1: 105, x2: 360, y2: 232,
			stroke: "#888888", width: 1.5, dash: "3,3", opacity: 0.6,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l, ok := s.Line(tt.id)
			require.True(t, ok)
			assert.InDelta(t, tt.x1, l.X1, 1e-9)
			assert.InDelta(t, tt.y1, l.Y1, 1e-9)
			assert.InDelta(t, tt.x2, l.X2, 1e-9)
			assert.InDelta(t, tt.y2, l.Y2, 1e-9)
			assert.Equal(t, tt.stroke, l.Stroke)
			assert.Equal(t, tt.width, l.Width)
			assert.Equal(t, tt.dash, l.Dash)
			assert.Equal(t, tt.opacity, l.Opacity)
		})
	}

	c, ok := s.Circle("a")
	require.True(t, ok)
	assert.Equal(t, 60.0, c.X)
	assert.Equal(t, 60.0, c.R)
	assert.Equal(t, "#1A1A1A", c.Fill)
}

func TestForceSceneHover(t *testing.T) {
	s := ForceScene(testSnapshot(), 1200, 800, Options{Hovered: "b", HighlightedRelation: "b->c"})

	for _, id := range []string{"a->b", "b->c"} {
		l, _ := s.Line(id)
		assert.Equal(t, 1.0, l.Opacity, id)
	}
	ab, _ := s.Line("a->b")
	assert.Equal(t, linkHoverStroke, ab.Stroke)
	bc, _ := s.Line("b->c")
	assert.Equal(t, highlightStroke, bc.Stroke)

	b, _ := s.Circle("b")
	assert.Equal(t, "#34D399", b.Fill)
	assert.Equal(t, hoverScale, b.Scale)
	assert.Equal(t, 45.0, b.R, "hover scales the drawing, not the radius")
}

func TestForceSceneLabels(t *testing.T) {
	s := ForceScene(testSnapshot(), 1200, 800, Options{})
	var initiative Text
	for i, c := range s.Circles {
		if c.ID == "c" {
			initiative = s.Texts[i]
		}
	}
	assert.Equal(t, []string{"Solar", "po..."}, initiative.Lines)
	assert.InDelta(t, 14*1.2, initiative.LineHeight, 1e-12)
}

func TestForceSceneTransformAndBanner(t *testing.T) {
	snap := testSnapshot()
	snap.Warning = "Showing 4 of 9 nodes: the display is limited to 4 nodes for performance."
	s := ForceScene(snap, 1200, 800, Options{View: interact.NewViewport(1200, 800).Transform()})

	assert.Equal(t, "translate(120,80) scale(0.8)", s.Transform)
	assert.Equal(t, snap.Warning, s.Banner)
}

func TestForceSceneEmpty(t *testing.T) {
	s := ForceScene(force.Snapshot{}, 1200, 800, Options{})
	assert.True(t, s.Empty)
	assert.Empty(t, s.Lines)
	assert.Equal(t, []string{EmptyMessage}, s.Texts[0].Lines)
}

func TestWrap(t *testing.T) {
	tests := map[string]struct {
		text     string
		width    float64
		fontSize float64
		maxChars int
		want     []string
	}{
		"fits on one line": {
			text: "Acme", width: 90, fontSize: 14, maxChars: 8,
			want: []string{"Acme"},
		},
		"breaks after a space": {
			text: "Renewable Energy", width: 120, fontSize: 16, maxChars: 10,
			want: []string{"Renewable", "Energy"},
		},
		"hard split without spaces": {
			text: "abcdefghij", width: 40, fontSize: 12,
			want: []string{"abcd", "efgh", "ij"},
		},
		"at least one character per line": {
			text: "abc", width: 1, fontSize: 12,
			want: []string{"a", "b", "c"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.text, tt.width, tt.fontSize, tt.maxChars))
		})
	}
}

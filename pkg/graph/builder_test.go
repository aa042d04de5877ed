package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleGraph() ([]Node, []Link) {
	nodes := []Node{
		{ID: "root", Label: "All", Type: NodeTypeTheme, Parent: true},
		{ID: "t1", Label: "Energy", Type: NodeTypeTheme},
		{ID: "t2", Label: "Health", Type: NodeTypeTheme},
		{ID: "o1", Label: "Acme", Type: NodeTypeOrganization},
		{ID: "o2", Label: "Initech", Type: NodeTypeCompany},
		{ID: "i1", Label: "Solar", Type: NodeTypeInitiative},
		{ID: "i2", Label: "Wind", Type: NodeTypeInitiative},
		{ID: "i3", Label: "Clinics", Type: NodeTypeInitiative},
		{ID: "p1", Label: "Panels", Type: NodeTypeTopic},
		{ID: "p2", Label: "Inverters", Type: NodeTypeTopic},
		{ID: "p3", Label: "Turbines", Type: NodeTypeTopic},
		{ID: "lost", Label: "Lost org", Type: NodeTypeOrganization},
		{ID: "stray", Label: "Stray topic", Type: NodeTypeTopic},
	}
	links := []Link{
		{Source: "root", Target: "t1"},
		{Source: "t1", Target: "o1", Kind: LinkKindMain},
		{Source: "t2", Target: "o2", Kind: LinkKindMain},
		{Source: "o1", Target: "i1", Kind: LinkKindBranch},
		{Source: "o1", Target: "i2", Kind: LinkKindBranch},
		{Source: "o2", Target: "i3", Kind: LinkKindBranch},
		{Source: "i1", Target: "p1", Kind: LinkKindTopic},
		{Source: "i1", Target: "p2", Kind: LinkKindTopic},
		{Source: "i2", Target: "p3", Kind: LinkKindTopic},
		{Source: "i2", Target: "missing", Kind: LinkKindTopic},
	}
	return nodes, links
}

func find(h *HierarchyNode, id string) *HierarchyNode {
	var found *HierarchyNode
	h.Walk(func(n *HierarchyNode) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

func assertWeightsConserved(t *testing.T, root *HierarchyNode) {
	t.Helper()
	root.Walk(func(n *HierarchyNode) bool {
		if n.IsLeaf() {
			assert.Equal(t, 1.0, n.Weight, n.ID)
			return true
		}
		var sum float64
		for _, c := range n.Children {
			sum += c.Weight
		}
		assert.Equal(t, sum, n.Weight, n.ID)
		return true
	})
}

func TestBuilderBuild(t *testing.T) {
	tests := map[string]struct {
		detail     bool
		rootWeight float64
		weights    map[string]float64
		depths     map[string]int
		absent     []string
		orphans    []string
	}{
		"without detail": {
			detail:     false,
			rootWeight: 3,
			weights:    map[string]float64{"t1": 2, "t2": 1, "o1": 2, "o2": 1, "i1": 1, "i2": 1, "i3": 1},
			depths:     map[string]int{"t1": 1, "o1": 2, "i1": 3},
			absent:     []string{"root", "p1", "p2", "p3", "stray", "lost"},
			orphans:    []string{"lost"},
		},
		"with detail": {
			detail:     true,
			rootWeight: 4,
			weights:    map[string]float64{"t1": 3, "t2": 1, "o1": 3, "i1": 2, "i2": 1, "p1": 1},
			depths:     map[string]int{"p1": 4, "p3": 4},
			absent:     []string{"root", "stray", "lost"},
			orphans:    []string{"lost", "stray"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			nodes, links := sampleGraph()
			h := NewBuilder().Build(nodes, links, tt.detail)

			require.NotNil(t, h.Root)
			assert.Equal(t, 0, h.Root.Depth)
			assert.Equal(t, tt.rootWeight, h.Root.Weight)
			assertWeightsConserved(t, h.Root)

			for _, theme := range h.Root.Children {
				assert.Equal(t, NodeTypeTheme, theme.NodeType)
			}
			for id, w := range tt.weights {
				n := find(h.Root, id)
				require.NotNil(t, n, id)
				assert.Equal(t, w, n.Weight, id)
			}
			for id, d := range tt.depths {
				n := find(h.Root, id)
				require.NotNil(t, n, id)
				assert.Equal(t, d, n.Depth, id)
			}
			for _, id := range tt.absent {
				assert.Nil(t, find(h.Root, id), id)
			}
			assert.Equal(t, tt.orphans, h.Orphans)
		})
	}
}

func TestBuilderKeepsOriginalReference(t *testing.T) {
	nodes, links := sampleGraph()
	h := NewBuilder().Build(nodes, links, false)

	o2 := find(h.Root, "o2")
	require.NotNil(t, o2)
	require.NotNil(t, o2.Original)
	assert.Equal(t, "Initech", o2.Original.Label)
	assert.Equal(t, "Initech", o2.Name)
	assert.Nil(t, h.Root.Original)
}

func TestBuilderUnrootedBucket(t *testing.T) {
	nodes, links := sampleGraph()
	h := NewBuilder(WithUnrootedBucket()).Build(nodes, links, true)

	bucket := find(h.Root, UnrootedID)
	require.NotNil(t, bucket)
	assert.Equal(t, NodeTypeTheme, bucket.NodeType)
	assert.Equal(t, 1, bucket.Depth)

	var ids []string
	for _, c := range bucket.Children {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"lost", "stray"}, ids)
	assert.Equal(t, []string{"lost", "stray"}, h.Orphans)
	assertWeightsConserved(t, h.Root)
}

func TestBuilderBucketExpandsOrphanedSubtrees(t *testing.T) {
	nodes := []Node{
		{ID: "o", Label: "Org", Type: NodeTypeOrganization},
		{ID: "i", Label: "Init", Type: NodeTypeInitiative},
		{ID: "j", Label: "Loose", Type: NodeTypeInitiative},
	}
	links := []Link{{Source: "o", Target: "i", Kind: LinkKindBranch}}

	h := NewBuilder(WithUnrootedBucket()).Build(nodes, links, false)
	bucket := find(h.Root, UnrootedID)
	require.NotNil(t, bucket)
	require.Len(t, bucket.Children, 2)
	assert.Equal(t, "o", bucket.Children[0].ID)
	assert.Equal(t, "i", bucket.Children[0].Children[0].ID)
	assert.Equal(t, "j", bucket.Children[1].ID)
	assert.Equal(t, 2.0, bucket.Weight)
}

func TestBuilderIgnoresDuplicateLinks(t *testing.T) {
	nodes := []Node{
		{ID: "t", Label: "T", Type: NodeTypeTheme},
		{ID: "o", Label: "O", Type: NodeTypeOrganization},
	}
	links := []Link{
		{Source: "t", Target: "o", Kind: LinkKindMain},
		{Source: "t", Target: "o", Kind: LinkKindMain},
	}
	h := NewBuilder().Build(nodes, links, false)
	theme := find(h.Root, "t")
	require.NotNil(t, theme)
	assert.Len(t, theme.Children, 1)
}

func TestBuilderEmptyInput(t *testing.T) {
	h := NewBuilder().Build(nil, nil, true)
	require.NotNil(t, h.Root)
	assert.True(t, h.Root.IsLeaf())
	assert.Empty(t, h.Orphans)
}

func TestBuilderLogsOrphans(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	nodes, links := sampleGraph()

	NewBuilder(WithLogger(zap.New(core))).Build(nodes, links, false)

	entries := logs.FilterMessage("entities not reachable from any theme").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["count"])
	assert.Equal(t, 1, logs.FilterMessage("dropped links referencing missing nodes").Len())
}

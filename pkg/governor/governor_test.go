package governor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

func TestFor(t *testing.T) {
	tests := map[string]struct {
		nodes    int
		expected Params
	}{
		"small": {
			nodes:    10,
			expected: Params{ChargeScale: 1, LinkDistanceScale: 1, AlphaDecay: 0.05, VelocityDecay: 0.6, MaxTicks: 300},
		},
		"at medium threshold": {
			nodes:    200,
			expected: Params{ChargeScale: 1, LinkDistanceScale: 1, AlphaDecay: 0.05, VelocityDecay: 0.6, MaxTicks: 300},
		},
		"medium": {
			nodes:    201,
			expected: Params{ChargeScale: 0.85, LinkDistanceScale: 1, AlphaDecay: 0.06, VelocityDecay: 0.6, MaxTicks: 200},
		},
		"at large threshold": {
			nodes:    500,
			expected: Params{ChargeScale: 0.85, LinkDistanceScale: 1, AlphaDecay: 0.06, VelocityDecay: 0.6, MaxTicks: 200},
		},
		"large": {
			nodes:    501,
			expected: Params{ChargeScale: 0.7, LinkDistanceScale: 0.9, AlphaDecay: 0.08, VelocityDecay: 0.6, MaxTicks: 150},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, For(tt.nodes))
		})
	}
}

func mixedNodes(n int) []graph.Node {
	nodes := make([]graph.Node, 0, n+2)
	for i := 0; i < n; i++ {
		nodes = append(nodes, graph.Node{ID: fmt.Sprintf("n%d", i), Type: graph.NodeTypeInitiative})
	}
	nodes = append(nodes,
		graph.Node{ID: "theme", Type: graph.NodeTypeTheme},
		graph.Node{ID: "parent", Type: graph.NodeTypeTheme, Parent: true},
	)
	return nodes
}

func ids(nodes []graph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestLimit(t *testing.T) {
	tests := map[string]struct {
		nodes     []graph.Node
		max       int
		expected  []string
		truncated bool
	}{
		"unlimited": {
			nodes:    mixedNodes(3),
			max:      0,
			expected: []string{"n0", "n1", "n2", "theme", "parent"},
		},
		"negative is unlimited": {
			nodes:    mixedNodes(2),
			max:      -1,
			expected: []string{"n0", "n1", "theme", "parent"},
		},
		"under the cap": {
			nodes:    mixedNodes(2),
			max:      10,
			expected: []string{"n0", "n1", "theme", "parent"},
		},
		"structure admitted first, input order kept": {
			nodes:     mixedNodes(5),
			max:       4,
			expected:  []string{"n0", "n1", "theme", "parent"},
			truncated: true,
		},
		"cap smaller than structure": {
			nodes:     mixedNodes(5),
			max:       1,
			expected:  []string{"theme"},
			truncated: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, trunc := Limit(tt.nodes, tt.max)
			assert.Equal(t, tt.expected, ids(got))
			assert.Equal(t, tt.truncated, trunc.Truncated())
			assert.Equal(t, len(tt.nodes), trunc.Total)
			assert.Equal(t, len(got), trunc.Kept)
		})
	}
}

func TestLimitIsDeterministic(t *testing.T) {
	nodes := mixedNodes(50)
	first, _ := Limit(nodes, 20)
	second, _ := Limit(nodes, 20)
	require.Len(t, first, 20)
	assert.Equal(t, ids(first), ids(second))

	again, trunc := Limit(first, 20)
	assert.Equal(t, ids(first), ids(again))
	assert.False(t, trunc.Truncated())
}

func TestTruncationWarning(t *testing.T) {
	_, trunc := Limit(mixedNodes(10), 5)
	assert.Equal(t, "Showing 5 of 12 nodes: the display is limited to 5 nodes for performance.", trunc.Warning())

	_, none := Limit(mixedNodes(1), 5)
	assert.Empty(t, none.Warning())
}

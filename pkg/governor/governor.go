// Package governor holds the size-dependent performance policy shared by the
// layouts: force parameters scaled by node count and the hard node cap.
package governor

import (
	"fmt"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

// Size thresholds at which the force layout starts trading accuracy for speed.
const (
	MediumGraph = 200
	LargeGraph  = 500
)

// Params are the force-layout knobs that depend on graph size.
type Params struct {
	ChargeScale       float64 // multiplies every per-type charge strength
	LinkDistanceScale float64 // multiplies every per-kind link distance
	AlphaDecay        float64
	VelocityDecay     float64 // fraction of velocity removed per tick
	MaxTicks          int
}

// For returns the policy for a graph with nodeCount nodes.
func For(nodeCount int) Params {
	p := Params{
		ChargeScale:       1.0,
		LinkDistanceScale: 1.0,
		AlphaDecay:        0.05,
		VelocityDecay:     0.6,
		MaxTicks:          300,
	}
	switch {
	case nodeCount > LargeGraph:
		p.ChargeScale = 0.7
		p.LinkDistanceScale = 0.9
		p.AlphaDecay = 0.08
		p.MaxTicks = 150
	case nodeCount > MediumGraph:
		p.ChargeScale = 0.85
		p.AlphaDecay = 0.06
		p.MaxTicks = 200
	}
	return p
}

// Truncation describes what Limit removed.
type Truncation struct {
	Total int
	Kept  int
	Limit int
}

// Truncated reports whether any node was dropped.
func (t Truncation) Truncated() bool {
	return t.Kept < t.Total
}

// Warning returns the user-facing notice for a truncated pass, or "" when
// nothing was dropped.
func (t Truncation) Warning() string {
	if !t.Truncated() {
		return ""
	}
	return fmt.Sprintf("Showing %d of %d nodes: the display is limited to %d nodes for performance.", t.Kept, t.Total, t.Limit)
}

// Limit caps nodes at maxNodes (0 or negative means unlimited). Synthetic
// parent and theme nodes are admitted first so the structure stays visible,
// then the remaining nodes in input order. The result keeps input order, so
// the same input always yields the same subset.
func Limit(nodes []graph.Node, maxNodes int) ([]graph.Node, Truncation) {
	t := Truncation{Total: len(nodes), Kept: len(nodes), Limit: maxNodes}
	if maxNodes <= 0 || len(nodes) <= maxNodes {
		return nodes, t
	}

	admit := make([]bool, len(nodes))
	budget := maxNodes
	for i, n := range nodes {
		if budget == 0 {
			break
		}
		if n.Parent || n.Type == graph.NodeTypeTheme {
			admit[i] = true
			budget--
		}
	}
	for i := range nodes {
		if budget == 0 {
			break
		}
		if !admit[i] {
			admit[i] = true
			budget--
		}
	}

	kept := make([]graph.Node, 0, maxNodes)
	for i, n := range nodes {
		if admit[i] {
			kept = append(kept, n)
		}
	}
	t.Kept = len(kept)
	return kept, t
}

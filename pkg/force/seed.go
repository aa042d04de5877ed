package force

import (
	"math"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

// seed returns deterministic starting positions: nodes that already carry a
// position keep it, the synthetic parent sits at the centre, and every other
// node is spread on its type's ring starting from the top.
func seed(nodes []graph.Node, cx, cy float64) []graph.Point {
	ring := func(n graph.Node) graph.NodeType {
		if n.Type == graph.NodeTypeCompany {
			return graph.NodeTypeOrganization
		}
		return n.Type
	}

	total := make(map[graph.NodeType]int)
	for _, n := range nodes {
		if !n.Parent {
			total[ring(n)]++
		}
	}

	seen := make(map[graph.NodeType]int)
	points := make([]graph.Point, len(nodes))
	for i, n := range nodes {
		if n.Parent {
			points[i] = graph.Point{X: cx, Y: cy}
			continue
		}
		t := ring(n)
		idx := seen[t]
		seen[t]++

		if n.Position != nil && finite(n.Position.X) && finite(n.Position.Y) {
			points[i] = *n.Position
			continue
		}

		radius := t.Style().Ring
		if radius == 0 {
			points[i] = graph.Point{X: cx, Y: cy}
			continue
		}
		angle := float64(idx)/float64(max(total[t], 1))*2*math.Pi - math.Pi/2
		points[i] = graph.Point{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		}
	}
	return points
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package force

import (
	"time"

	"github.com/ddl-r-abdulaziz/relmap/pkg/governor"
	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

// Config describes the surface a simulation runs on.
type Config struct {
	Width, Height float64

	// MaxNodes caps the nodes admitted to a pass; 0 or negative is unlimited.
	MaxNodes int

	// ParentLock is how long a synthetic parent stays pinned to the centre.
	// Zero uses DefaultParentLock.
	ParentLock time.Duration

	// Params overrides the size-dependent policy when MaxTicks is non-zero.
	Params governor.Params
}

// DefaultParentLock is the real time a synthetic parent stays pinned.
const DefaultParentLock = time.Second

// NodeState is a node together with its position at one tick.
type NodeState struct {
	Node   graph.Node
	X, Y   float64
	Pinned bool
}

// Snapshot is the position stream element handed to renderers after each tick.
type Snapshot struct {
	Nodes   []NodeState
	Links   []graph.Link
	Tick    int
	Alpha   float64
	Done    bool
	Warning string // set when the node cap truncated the input
}

// Position returns the position of node id in the snapshot.
func (s Snapshot) Position(id string) (graph.Point, bool) {
	for _, n := range s.Nodes {
		if n.Node.ID == id {
			return graph.Point{X: n.X, Y: n.Y}, true
		}
	}
	return graph.Point{}, false
}

// Empty reports whether the snapshot holds no nodes.
func (s Snapshot) Empty() bool { return len(s.Nodes) == 0 }

package force

import (
	"time"

	"go.uber.org/zap"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

// FrameInterval is the frame time Settle simulates between ticks.
const FrameInterval = 16 * time.Millisecond

// Settle runs a layout to its stop condition on a simulated clock and returns
// the final snapshot. It is the offline counterpart of driving an Engine from
// an animation loop.
func Settle(nodes []graph.Node, links []graph.Link, cfg Config, logger *zap.Logger) Snapshot {
	e := NewEngine(logger)
	h := e.Start(nodes, links, cfg)

	now := time.Unix(0, 0)
	for e.Advance(now) {
		now = now.Add(FrameInterval)
	}
	snap, _ := e.Snapshot(h)
	return snap
}

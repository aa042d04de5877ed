// Package force runs the node-link force layout: a tick-driven simulation of
// link springs, many-body repulsion, a weak centring pull and collision, plus
// an Engine that owns the active simulation and guards against stale
// instances.
package force

import (
	"go.uber.org/zap"

	"github.com/ddl-r-abdulaziz/relmap/pkg/governor"
	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

// AlphaMin is the temperature below which a cooling simulation stops.
const AlphaMin = 0.001

// Margin is the inset of the simulation area from the drawing surface edge.
const Margin = 60.0

// Simulation is one force layout pass over a fixed node and link set.
// It is not safe for concurrent use.
type Simulation struct {
	logger  *zap.Logger
	params  governor.Params
	bodies  []*body
	index   map[string]int
	links   []graph.Link
	springs []spring

	centerX, centerY float64
	alpha            float64
	alphaTarget      float64
	ticks            int
	done             bool
}

// NewSimulation seeds a simulation for nodes inside a width x height surface.
// Links with a missing endpoint are dropped. The caller's nodes are copied
// and never written to.
func NewSimulation(nodes []graph.Node, links []graph.Link, cfg Config, logger *zap.Logger) *Simulation {
	if logger == nil {
		logger = zap.NewNop()
	}
	nodes = graph.UniqueNodes(nodes, logger)
	links, _ = graph.FilterLinks(nodes, links, logger)

	params := cfg.Params
	if params.MaxTicks == 0 {
		params = governor.For(len(nodes))
	}

	s := &Simulation{
		logger:  logger,
		params:  params,
		index:   graph.IndexByID(nodes),
		links:   links,
		centerX: (cfg.Width - 2*Margin) / 2,
		centerY: (cfg.Height - 2*Margin) / 2,
		alpha:   1,
	}

	start := seed(nodes, s.centerX, s.centerY)
	s.bodies = make([]*body, len(nodes))
	for i, n := range nodes {
		n.Position = nil
		b := &body{
			node:     n,
			x:        start[i].X,
			y:        start[i].Y,
			radius:   graph.CollisionRadius(n),
			strength: graph.StyleOf(n).Charge * params.ChargeScale,
		}
		if n.Parent {
			b.pinned, b.locked = true, true
			b.fx, b.fy = s.centerX, s.centerY
		}
		s.bodies[i] = b
	}
	s.springs = newSprings(links, s.index, len(nodes), params.LinkDistanceScale)

	logger.Debug("simulation seeded",
		zap.Int("nodes", len(nodes)),
		zap.Int("links", len(links)),
		zap.Float64("chargeScale", params.ChargeScale),
		zap.Int("maxTicks", params.MaxTicks),
	)
	return s
}

// Tick advances the simulation by one step. It returns false without doing
// anything once the simulation has stopped.
func (s *Simulation) Tick() bool {
	if s.done {
		return false
	}
	s.alpha += (s.alphaTarget - s.alpha) * s.params.AlphaDecay

	s.applyLinks()
	s.applyCharge()
	s.applyCenter()
	s.applyCollide()

	keep := 1 - s.params.VelocityDecay
	for _, b := range s.bodies {
		if b.pinned {
			b.x, b.y = b.fx, b.fy
			b.vx, b.vy = 0, 0
			continue
		}
		b.vx *= keep
		b.vy *= keep
		b.x += b.vx
		b.y += b.vy
	}

	s.ticks++
	// a positive target means a drag is holding the layout warm
	if s.alphaTarget == 0 && (s.alpha < AlphaMin || s.ticks >= s.params.MaxTicks) {
		s.done = true
		s.logger.Debug("simulation stopped",
			zap.Int("ticks", s.ticks),
			zap.Float64("alpha", s.alpha),
		)
	}
	return true
}

// Done reports whether the simulation has stopped.
func (s *Simulation) Done() bool { return s.done }

// Ticks returns the number of ticks run since the start or the last reheat.
func (s *Simulation) Ticks() int { return s.ticks }

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Params returns the size-dependent parameters in effect.
func (s *Simulation) Params() governor.Params { return s.params }

// Len returns the number of simulated nodes.
func (s *Simulation) Len() int { return len(s.bodies) }

// Reheat sets the temperature the simulation moves toward and restarts it
// with a fresh tick budget.
func (s *Simulation) Reheat(target float64) {
	s.alphaTarget = target
	s.ticks = 0
	s.done = false
}

// Pin fixes node id at (x, y) until Unpin. It reports whether id exists.
func (s *Simulation) Pin(id string, x, y float64) bool {
	b := s.body(id)
	if b == nil {
		return false
	}
	b.pinned, b.locked = true, false
	b.fx, b.fy = x, y
	return true
}

// Unpin releases node id.
func (s *Simulation) Unpin(id string) bool {
	b := s.body(id)
	if b == nil {
		return false
	}
	b.pinned, b.locked = false, false
	return true
}

// ReleaseParent frees synthetic parent nodes that are still locked to the
// centre. Nodes pinned by a drag are left alone.
func (s *Simulation) ReleaseParent() {
	for _, b := range s.bodies {
		if b.locked {
			b.pinned, b.locked = false, false
		}
	}
}

// Position returns the current position of node id.
func (s *Simulation) Position(id string) (graph.Point, bool) {
	b := s.body(id)
	if b == nil {
		return graph.Point{}, false
	}
	return graph.Point{X: b.x, Y: b.y}, true
}

// Node returns the simulated copy of node id.
func (s *Simulation) Node(id string) (graph.Node, bool) {
	b := s.body(id)
	if b == nil {
		return graph.Node{}, false
	}
	return b.node, true
}

func (s *Simulation) body(id string) *body {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return s.bodies[i]
}

// Snapshot copies the current state. Later ticks never change a snapshot
// already handed out.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes: make([]NodeState, len(s.bodies)),
		Links: make([]graph.Link, len(s.links)),
		Tick:  s.ticks,
		Alpha: s.alpha,
		Done:  s.done,
	}
	for i, b := range s.bodies {
		snap.Nodes[i] = NodeState{Node: b.node, X: b.x, Y: b.y, Pinned: b.pinned}
	}
	copy(snap.Links, s.links)
	return snap
}

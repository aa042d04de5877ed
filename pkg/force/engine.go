package force

import (
	"time"

	"go.uber.org/zap"

	"github.com/ddl-r-abdulaziz/relmap/pkg/governor"
	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

// Handle identifies one started layout instance. Calls carrying the handle
// of a replaced instance are ignored.
type Handle struct {
	token uint64
}

// Valid reports whether h was returned by Start.
func (h Handle) Valid() bool { return h.token != 0 }

// Engine owns at most one running simulation at a time and drives it one tick
// per Advance. Starting a new instance stops the previous one and discards
// its tick callback before anything else happens.
//
// An Engine is not safe for concurrent use; drive it from a single goroutine.
type Engine struct {
	logger *zap.Logger

	token      uint64
	sim        *Simulation
	onTick     func(Snapshot)
	truncation governor.Truncation

	parentLock time.Duration
	startedAt  time.Time
	released   bool
}

// NewEngine creates an idle engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Start stops any running instance and starts a new one over nodes and links.
// Nodes beyond cfg.MaxNodes are dropped with a warning. Empty input yields a
// valid handle whose instance never ticks.
func (e *Engine) Start(nodes []graph.Node, links []graph.Link, cfg Config) Handle {
	if e.sim != nil {
		e.Stop(Handle{token: e.token})
	}

	e.token++
	kept, t := governor.Limit(nodes, cfg.MaxNodes)
	e.truncation = t
	if t.Truncated() {
		e.logger.Warn("node cap reached, truncating input",
			zap.Int("total", t.Total),
			zap.Int("kept", t.Kept),
			zap.Int("limit", t.Limit),
		)
	}

	e.parentLock = cfg.ParentLock
	if e.parentLock <= 0 {
		e.parentLock = DefaultParentLock
	}
	e.startedAt = time.Time{}
	e.released = false
	e.onTick = nil

	if len(kept) == 0 {
		e.logger.Debug("no nodes to lay out", zap.Uint64("instance", e.token))
		return Handle{token: e.token}
	}
	e.sim = NewSimulation(kept, links, cfg, e.logger)
	e.logger.Debug("layout started",
		zap.Uint64("instance", e.token),
		zap.Int("nodes", e.sim.Len()),
	)
	return Handle{token: e.token}
}

// Stop halts the instance identified by h. Stopping a stale handle is a no-op.
func (e *Engine) Stop(h Handle) {
	if !e.current(h) {
		return
	}
	e.sim = nil
	e.onTick = nil
	e.logger.Debug("layout stopped", zap.Uint64("instance", h.token))
}

// OnTick registers fn to receive a snapshot after every tick of instance h,
// replacing any earlier callback.
func (e *Engine) OnTick(h Handle, fn func(Snapshot)) {
	if !e.current(h) {
		return
	}
	e.onTick = fn
}

// Advance runs exactly one tick of the active instance and delivers its
// snapshot. now is the host's frame time; it drives the parent lock. It
// returns false when there is nothing to advance.
func (e *Engine) Advance(now time.Time) bool {
	if e.sim == nil || e.sim.Done() {
		return false
	}
	if e.startedAt.IsZero() {
		e.startedAt = now
	}
	if !e.released && now.Sub(e.startedAt) >= e.parentLock {
		e.sim.ReleaseParent()
		e.released = true
	}

	e.sim.Tick()
	if e.onTick != nil {
		e.onTick(e.snapshot())
	}
	return true
}

// Running reports whether instance h is current and still ticking.
func (e *Engine) Running(h Handle) bool {
	return e.current(h) && e.sim != nil && !e.sim.Done()
}

// Snapshot returns the current state of instance h.
func (e *Engine) Snapshot(h Handle) (Snapshot, bool) {
	if !e.current(h) {
		return Snapshot{}, false
	}
	return e.snapshot(), true
}

func (e *Engine) snapshot() Snapshot {
	var s Snapshot
	if e.sim != nil {
		s = e.sim.Snapshot()
	} else {
		s.Done = true
	}
	s.Warning = e.truncation.Warning()
	return s
}

// Truncation describes what the node cap removed from instance h.
func (e *Engine) Truncation(h Handle) governor.Truncation {
	if !e.current(h) {
		return governor.Truncation{}
	}
	return e.truncation
}

// Reheat moves instance h toward temperature target and restarts it.
func (e *Engine) Reheat(h Handle, target float64) {
	if sim := e.active(h); sim != nil {
		sim.Reheat(target)
	}
}

// Pin fixes node id of instance h at (x, y).
func (e *Engine) Pin(h Handle, id string, x, y float64) bool {
	if sim := e.active(h); sim != nil {
		return sim.Pin(id, x, y)
	}
	return false
}

// Unpin releases node id of instance h.
func (e *Engine) Unpin(h Handle, id string) bool {
	if sim := e.active(h); sim != nil {
		return sim.Unpin(id)
	}
	return false
}

// Position returns the current position of node id in instance h.
func (e *Engine) Position(h Handle, id string) (graph.Point, bool) {
	if sim := e.active(h); sim != nil {
		return sim.Position(id)
	}
	return graph.Point{}, false
}

// Node returns node id as admitted to instance h.
func (e *Engine) Node(h Handle, id string) (graph.Node, bool) {
	if sim := e.active(h); sim != nil {
		return sim.Node(id)
	}
	return graph.Node{}, false
}

func (e *Engine) current(h Handle) bool {
	if h.token == 0 || h.token != e.token {
		if h.token != 0 {
			e.logger.Debug("ignoring stale layout handle",
				zap.Uint64("handle", h.token),
				zap.Uint64("current", e.token),
			)
		}
		return false
	}
	return true
}

func (e *Engine) active(h Handle) *Simulation {
	if !e.current(h) {
		return nil
	}
	return e.sim
}

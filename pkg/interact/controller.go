// Package interact turns pointer input into layout changes and node
// callbacks: drag-to-pin on the force layout, click versus double-click
// classification, hover state and viewport zoom/pan.
package interact

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ddl-r-abdulaziz/relmap/pkg/force"
	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

// DragHeat is the temperature a drag holds the simulation at so neighbours
// relax around the moved node.
const DragHeat = 0.3

// Layout is the part of the force engine the controller drives.
type Layout interface {
	Start(nodes []graph.Node, links []graph.Link, cfg force.Config) force.Handle
	Stop(h force.Handle)
	OnTick(h force.Handle, fn func(force.Snapshot))
	Reheat(h force.Handle, target float64)
	Pin(h force.Handle, id string, x, y float64) bool
	Unpin(h force.Handle, id string) bool
	Position(h force.Handle, id string) (graph.Point, bool)
	Node(h force.Handle, id string) (graph.Node, bool)
}

type drag struct {
	id          string
	node        graph.Node
	screenStart graph.Point
	pointer     graph.Point // scene position at pointer-down
	origin      graph.Point // node position at pointer-down
}

// Controller owns the active layout instance and all ephemeral pointer state.
// It is not safe for concurrent use.
type Controller struct {
	logger   *zap.Logger
	layout   Layout
	viewport *Viewport
	clicks   *ClickClassifier

	handle   force.Handle
	onTick   func(force.Snapshot)
	drag     *drag
	hovered  string
	onClick  func(graph.Node)
	onDouble func(graph.Node)
	window   time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// OnNodeClick sets the single-click callback.
func OnNodeClick(fn func(graph.Node)) Option {
	return func(c *Controller) { c.onClick = fn }
}

// OnNodeDoubleClick sets the double-click callback.
func OnNodeDoubleClick(fn func(graph.Node)) Option {
	return func(c *Controller) { c.onDouble = fn }
}

// WithDoubleClickWindow overrides DoubleClickWindow.
func WithDoubleClickWindow(d time.Duration) Option {
	return func(c *Controller) { c.window = d }
}

// NewController creates a controller. layout may be nil for the bubble view,
// which only clicks, hovers and zooms.
func NewController(layout Layout, viewport *Viewport, opts ...Option) *Controller {
	c := &Controller{
		logger:   zap.NewNop(),
		layout:   layout,
		viewport: viewport,
		window:   DoubleClickWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.clicks = NewClickClassifier(c.window,
		func(n graph.Node) {
			c.logger.Debug("node clicked", zap.String("id", n.ID))
			if c.onClick != nil {
				c.onClick(n)
			}
		},
		func(n graph.Node) {
			c.logger.Debug("node double-clicked", zap.String("id", n.ID))
			if c.onDouble != nil {
				c.onDouble(n)
			}
		},
	)
	return c
}

// Viewport returns the controller's viewport.
func (c *Controller) Viewport() *Viewport { return c.viewport }

// Handle returns the active layout handle.
func (c *Controller) Handle() force.Handle { return c.handle }

// OnTick subscribes fn to snapshots of the current and every later layout.
func (c *Controller) OnTick(fn func(force.Snapshot)) {
	c.onTick = fn
	if c.layout != nil && c.handle.Valid() {
		c.layout.OnTick(c.handle, fn)
	}
}

// Load replaces the node set: the previous layout is stopped before the new
// one starts, and drag, hover and pending clicks are discarded.
func (c *Controller) Load(nodes []graph.Node, links []graph.Link, cfg force.Config) force.Handle {
	c.drag = nil
	c.hovered = ""
	c.clicks.Reset()
	if c.layout == nil {
		return force.Handle{}
	}
	if c.handle.Valid() {
		c.layout.Stop(c.handle)
	}
	c.handle = c.layout.Start(nodes, links, cfg)
	if c.onTick != nil {
		c.layout.OnTick(c.handle, c.onTick)
	}
	return c.handle
}

// Close stops the active layout.
func (c *Controller) Close() {
	if c.layout != nil && c.handle.Valid() {
		c.layout.Stop(c.handle)
	}
	c.handle = force.Handle{}
	c.drag = nil
	c.clicks.Reset()
}

// PointerDown starts a drag on node id at screen point p. It reports whether
// a drag started.
func (c *Controller) PointerDown(id string, p graph.Point, at time.Time) bool {
	if c.layout == nil || c.drag != nil {
		return false
	}
	node, ok := c.layout.Node(c.handle, id)
	if !ok {
		return false
	}
	origin, ok := c.layout.Position(c.handle, id)
	if !ok {
		return false
	}
	c.layout.Pin(c.handle, id, origin.X, origin.Y)
	c.layout.Reheat(c.handle, DragHeat)
	c.drag = &drag{
		id:          id,
		node:        node,
		screenStart: p,
		pointer:     c.viewport.Transform().Invert(p),
		origin:      origin,
	}
	c.logger.Debug("drag started", zap.String("id", id))
	return true
}

// PointerMove moves the dragged node with the pointer.
func (c *Controller) PointerMove(p graph.Point) {
	if c.drag == nil {
		return
	}
	scene := c.viewport.Transform().Invert(p)
	c.layout.Pin(c.handle, c.drag.id,
		c.drag.origin.X+scene.X-c.drag.pointer.X,
		c.drag.origin.Y+scene.Y-c.drag.pointer.Y,
	)
}

// PointerUp ends the drag. A gesture that travelled less than ClickDistance
// screen pixels counts as a click.
func (c *Controller) PointerUp(p graph.Point, at time.Time) {
	d := c.drag
	if d == nil {
		return
	}
	c.drag = nil
	c.layout.Unpin(c.handle, d.id)
	c.layout.Reheat(c.handle, 0)

	moved := math.Hypot(p.X-d.screenStart.X, p.Y-d.screenStart.Y)
	c.logger.Debug("drag ended", zap.String("id", d.id), zap.Float64("distance", moved))
	if moved < ClickDistance {
		c.clicks.Click(d.node, at)
	}
}

// Tap records a click without a drag, as the bubble view does.
func (c *Controller) Tap(node graph.Node, at time.Time) {
	c.clicks.Click(node, at)
}

// Poll resolves a pending click whose window has closed by now.
func (c *Controller) Poll(now time.Time) { c.clicks.Poll(now) }

// Deadline returns when the pending click resolves, if one is pending.
func (c *Controller) Deadline() (time.Time, bool) { return c.clicks.Deadline() }

// Dragging returns the id of the node being dragged.
func (c *Controller) Dragging() (string, bool) {
	if c.drag == nil {
		return "", false
	}
	return c.drag.id, true
}

// PointerEnter marks node id as hovered. Hover is visual only and never
// reaches the layout.
func (c *Controller) PointerEnter(id string) { c.hovered = id }

// PointerLeave clears the hover if id is the hovered node.
func (c *Controller) PointerLeave(id string) {
	if c.hovered == id {
		c.hovered = ""
	}
}

// Hovered returns the hovered node id, or "".
func (c *Controller) Hovered() string { return c.hovered }

// Zoom scales the view around focal. Ignored while a node is dragged.
func (c *Controller) Zoom(factor float64, focal graph.Point) bool {
	if c.drag != nil {
		return false
	}
	c.viewport.ZoomAt(factor, focal)
	return true
}

// Pan shifts the view. Ignored while a node is dragged.
func (c *Controller) Pan(dx, dy float64) bool {
	if c.drag != nil {
		return false
	}
	c.viewport.Pan(dx, dy)
	return true
}

// ResetView restores the initial view.
func (c *Controller) ResetView() { c.viewport.Reset() }

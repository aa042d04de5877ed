package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ddl-r-abdulaziz/relmap/pkg/force"
	"github.com/ddl-r-abdulaziz/relmap/pkg/governor"
	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
	"github.com/ddl-r-abdulaziz/relmap/pkg/interact"
	"github.com/ddl-r-abdulaziz/relmap/pkg/render"
)

const writeTimeout = 5 * time.Second

// Message types sent by the page.
const (
	MessageEnter     = "enter"
	MessageLeave     = "leave"
	MessageDown      = "down"
	MessageMove      = "move"
	MessageUp        = "up"
	MessagePan       = "pan"
	MessageZoom      = "zoom"
	MessageReset     = "reset"
	MessageHighlight = "highlight"
)

// Message is one pointer or view event from the page. X and Y are surface
// coordinates.
type Message struct {
	Type     string  `json:"type"`
	ID       string  `json:"id,omitempty"`
	Relation string  `json:"relation,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	DX       float64 `json:"dx,omitempty"`
	DY       float64 `json:"dy,omitempty"`
	Factor   float64 `json:"factor,omitempty"`
}

// Event kinds delivered to the page.
const (
	EventClick       = "click"
	EventDoubleClick = "dblclick"
)

// Event is a classified node click.
type Event struct {
	Kind string     `json:"kind"`
	Node graph.Node `json:"node"`
}

// Frame is one message to the page: a redrawn scene, an event, or both.
type Frame struct {
	Scene *render.Scene `json:"scene,omitempty"`
	Event *Event        `json:"event,omitempty"`
}

// view is one live layout driven by a session loop.
type view interface {
	// load restarts the view on g and reports what the node cap removed.
	load(g *graph.Graph) governor.Truncation
	handle(msg Message, now time.Time)
	// tick advances the view to now and reports whether the layout moved.
	tick(now time.Time) bool
	// frames drains what the page has not seen yet.
	frames() []Frame
	close()
}

// forceSession is the live force view. It is owned by a single goroutine.
type forceSession struct {
	opts   Options
	logger *zap.Logger
	engine *force.Engine
	ctrl   *interact.Controller
	marks  marks

	snap force.Snapshot
}

func newForceSession(opts Options, logger *zap.Logger) *forceSession {
	s := &forceSession{opts: opts, logger: logger, engine: force.NewEngine(logger)}
	s.ctrl = interact.NewController(s.engine, interact.NewViewport(opts.Width, opts.Height),
		interact.WithLogger(logger),
		interact.OnNodeClick(s.marks.click),
		interact.OnNodeDoubleClick(s.marks.doubleClick),
	)
	s.ctrl.OnTick(func(snap force.Snapshot) {
		s.snap = snap
		s.marks.dirty = true
	})
	return s
}

// load stops the previous instance before starting the new one, so none of
// its ticks reach the new scene.
func (s *forceSession) load(g *graph.Graph) governor.Truncation {
	h := s.ctrl.Load(g.Nodes, g.Links, force.Config{
		Width:    s.opts.Width,
		Height:   s.opts.Height,
		MaxNodes: s.opts.MaxNodes,
	})
	s.snap, _ = s.engine.Snapshot(h)
	s.marks.dirty = true
	return s.engine.Truncation(h)
}

func (s *forceSession) handle(msg Message, now time.Time) {
	p := graph.Point{X: msg.X, Y: msg.Y}
	switch msg.Type {
	case MessageDown:
		s.ctrl.PointerDown(msg.ID, p, now)
	case MessageMove:
		if _, ok := s.ctrl.Dragging(); !ok {
			return
		}
		s.ctrl.PointerMove(p)
	case MessageUp:
		s.ctrl.PointerUp(p, now)
	default:
		if !s.marks.handle(s.ctrl, msg, s.logger) {
			return
		}
	}
	s.marks.dirty = true
}

func (s *forceSession) tick(now time.Time) bool {
	advanced := s.engine.Advance(now)
	s.ctrl.Poll(now)
	return advanced
}

func (s *forceSession) frames() []Frame {
	return s.marks.drain(s.scene)
}

func (s *forceSession) scene() *render.Scene {
	return render.ForceScene(s.snap, s.opts.Width, s.opts.Height, s.marks.options(s.ctrl, s.ctrl.Viewport().Transform()))
}

func (s *forceSession) close() { s.ctrl.Close() }

// marks is the visual state a page layers over a layout: hover, highlight,
// pending click events and whether a redraw is due.
type marks struct {
	dirty     bool
	events    []Event
	highlight string
	relation  string
}

func (m *marks) click(n graph.Node) {
	m.events = append(m.events, Event{Kind: EventClick, Node: n})
}

func (m *marks) doubleClick(n graph.Node) {
	m.events = append(m.events, Event{Kind: EventDoubleClick, Node: n})
}

// handle applies the messages both views share. It reports whether the
// message changed anything.
func (m *marks) handle(ctrl *interact.Controller, msg Message, logger *zap.Logger) bool {
	switch msg.Type {
	case MessageEnter:
		ctrl.PointerEnter(msg.ID)
	case MessageLeave:
		ctrl.PointerLeave(msg.ID)
	case MessagePan:
		return ctrl.Pan(msg.DX, msg.DY)
	case MessageZoom:
		return msg.Factor > 0 && ctrl.Zoom(msg.Factor, graph.Point{X: msg.X, Y: msg.Y})
	case MessageReset:
		ctrl.ResetView()
	case MessageHighlight:
		m.highlight, m.relation = msg.ID, msg.Relation
	default:
		logger.Debug("ignoring unknown message", zap.String("type", msg.Type))
		return false
	}
	return true
}

func (m *marks) options(ctrl *interact.Controller, t interact.Transform) render.Options {
	return render.Options{
		Hovered:             ctrl.Hovered(),
		HighlightedEntity:   m.highlight,
		HighlightedRelation: m.relation,
		View:                t,
	}
}

func (m *marks) drain(scene func() *render.Scene) []Frame {
	var out []Frame
	if m.dirty {
		out = append(out, Frame{Scene: scene()})
		m.dirty = false
	}
	for i := range m.events {
		out = append(out, Frame{Event: &m.events[i]})
	}
	m.events = nil
	return out
}

func (s *Server) handleForceSocket(c *gin.Context) {
	s.serveSocket(c, "live", func(logger *zap.Logger) view {
		return newForceSession(s.opts, logger)
	})
}

func (s *Server) handleBubbleSocket(c *gin.Context) {
	detail := s.detail(c)
	s.serveSocket(c, "live-bubble", func(logger *zap.Logger) view {
		return newBubbleSession(s, detail, logger)
	})
}

func (s *Server) serveSocket(c *gin.Context, layout string, newView func(*zap.Logger) view) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", zap.Error(err))
		return
	}
	defer conn.Close()
	s.runSession(c.Request.Context(), conn, layout, newView)
}

// runSession drives one live view until the page goes away or ctx ends. Only
// this goroutine touches the view; a reader goroutine hands messages over.
func (s *Server) runSession(ctx context.Context, conn *websocket.Conn, layout string, newView func(*zap.Logger) view) {
	id := uuid.NewString()
	logger := s.logger.With(zap.String("session", id), zap.String("layout", layout))
	reload := s.register(id)
	defer s.unregister(id)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inbound := make(chan Message)
	go func() {
		defer cancel()
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				logger.Debug("session reader stopped", zap.Error(err))
				return
			}
			select {
			case inbound <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	v := newView(logger)
	defer v.close()
	s.start(ctx, v, layout)
	logger.Info("session opened")
	defer logger.Info("session closed")

	ticker := time.NewTicker(s.opts.FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-inbound:
			v.handle(msg, time.Now())
		case <-reload:
			logger.Info("restarting layout on new graph")
			s.start(ctx, v, layout)
		case now := <-ticker.C:
			if v.tick(now) {
				s.metrics.Ticks.Inc()
			}
			for _, f := range v.frames() {
				if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
					return
				}
				if err := conn.WriteJSON(f); err != nil {
					logger.Debug("failed to write frame", zap.Error(err))
					return
				}
			}
		}
	}
}

// start loads the served graph into v.
func (s *Server) start(ctx context.Context, v view, layout string) {
	_, span := s.tracer.Start(ctx, "layout."+layout+".start")
	defer span.End()
	started := time.Now()

	if t := v.load(s.Graph()); t.Truncated() {
		s.metrics.TruncatedNodes.Add(float64(t.Total - t.Kept))
	}
	s.metrics.observePass(layout, started)
}

package server

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ddl-r-abdulaziz/relmap/pkg/force"
	"github.com/ddl-r-abdulaziz/relmap/pkg/governor"
	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
	"github.com/ddl-r-abdulaziz/relmap/pkg/interact"
	"github.com/ddl-r-abdulaziz/relmap/pkg/render"
)

// bubbleSession is the live bubble view. The pack is solved once per graph;
// pointer input only restyles and moves it.
type bubbleSession struct {
	srv    *Server
	detail bool
	logger *zap.Logger
	ctrl   *interact.Controller
	marks  marks

	pass  bubblePass
	nodes map[string]graph.Node
	press *press
}

// press is a pointer held down on a bubble.
type press struct {
	node graph.Node
	at   graph.Point
}

func newBubbleSession(srv *Server, detail bool, logger *zap.Logger) *bubbleSession {
	s := &bubbleSession{srv: srv, detail: detail, logger: logger}
	s.ctrl = interact.NewController(nil, interact.NewViewport(srv.opts.Width, srv.opts.Height),
		interact.WithLogger(logger),
		interact.OnNodeClick(s.marks.click),
		interact.OnNodeDoubleClick(s.marks.doubleClick),
	)
	return s
}

func (s *bubbleSession) load(g *graph.Graph) governor.Truncation {
	s.ctrl.Load(nil, nil, force.Config{})
	s.press = nil
	s.pass = s.srv.packGraph(g, s.detail)
	s.nodes = make(map[string]graph.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		s.nodes[n.ID] = n
	}
	s.marks.dirty = true
	return s.pass.truncation
}

func (s *bubbleSession) handle(msg Message, now time.Time) {
	p := graph.Point{X: msg.X, Y: msg.Y}
	switch msg.Type {
	case MessageDown:
		if n, ok := s.nodes[msg.ID]; ok {
			s.press = &press{node: n, at: p}
		}
	case MessageUp:
		pr := s.press
		s.press = nil
		if pr != nil && math.Hypot(p.X-pr.at.X, p.Y-pr.at.Y) < interact.ClickDistance {
			s.ctrl.Tap(pr.node, now)
		}
	case MessageMove:
		// bubbles are not draggable
	default:
		if s.marks.handle(s.ctrl, msg, s.logger) {
			s.marks.dirty = true
		}
	}
}

func (s *bubbleSession) tick(now time.Time) bool {
	s.ctrl.Poll(now)
	return false
}

func (s *bubbleSession) frames() []Frame {
	return s.marks.drain(s.scene)
}

func (s *bubbleSession) scene() *render.Scene {
	return s.srv.renderPass(s.pass, s.marks.options(s.ctrl, s.ctrl.Viewport().Relative()))
}

func (s *bubbleSession) close() { s.ctrl.Close() }

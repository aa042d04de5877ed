// Package server hosts the layouts over HTTP. Static bubble and force views
// are rendered per request. Live pages open a websocket session that owns its
// own layout, takes pointer input and streams redrawn scenes and node clicks.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ddl-r-abdulaziz/relmap/pkg/force"
	"github.com/ddl-r-abdulaziz/relmap/pkg/governor"
	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
	"github.com/ddl-r-abdulaziz/relmap/pkg/interact"
	"github.com/ddl-r-abdulaziz/relmap/pkg/pack"
	"github.com/ddl-r-abdulaziz/relmap/pkg/render"
)

const (
	serviceName      = "relmap"
	socketPath       = "/ws"
	bubbleSocketPath = "/ws/bubble"
	shutdownTimeout  = 5 * time.Second
	defaultFrameTime = force.FrameInterval
)

// Options describes the surface and policy every view is rendered with.
type Options struct {
	Width, Height  float64
	MaxNodes       int
	ShowDetail     bool
	UnrootedBucket bool
	// FrameInterval is the tick period of live sessions. Zero uses 16ms.
	FrameInterval time.Duration
}

// Server serves one graph, which may be replaced while sessions are open.
type Server struct {
	opts     Options
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	tracer   trace.Tracer
	bubbles  *render.BubbleRenderer
	pages    *render.HTMLRenderer
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	graph    *graph.Graph
	sessions map[string]chan struct{}
}

// New creates a server with an empty graph.
func New(opts Options, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = defaultFrameTime
	}
	pages, err := render.NewHTMLRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create page renderer: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Server{
		opts:     opts,
		logger:   logger,
		registry: registry,
		metrics:  NewMetrics(registry),
		tracer:   otel.Tracer("github.com/ddl-r-abdulaziz/relmap/pkg/server"),
		bubbles:  render.NewBubbleRenderer(),
		pages:    pages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		graph:    &graph.Graph{Nodes: []graph.Node{}, Links: []graph.Link{}},
		sessions: make(map[string]chan struct{}),
	}, nil
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// SetGraph replaces the served graph. Duplicate nodes and dangling links are
// dropped, and every open session restarts its layout on the new input.
func (s *Server) SetGraph(g *graph.Graph) {
	if g == nil {
		g = &graph.Graph{}
	}
	nodes := graph.UniqueNodes(g.Nodes, s.logger)
	links, dropped := graph.FilterLinks(nodes, g.Links, s.logger)
	s.metrics.DroppedLinks.Add(float64(dropped))
	s.metrics.Reloads.Inc()

	s.mu.Lock()
	s.graph = &graph.Graph{Nodes: nodes, Links: links}
	notify := make([]chan struct{}, 0, len(s.sessions))
	for _, ch := range s.sessions {
		notify = append(notify, ch)
	}
	s.mu.Unlock()

	for _, ch := range notify {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.logger.Info("graph loaded",
		zap.Int("nodes", len(nodes)),
		zap.Int("links", len(links)),
		zap.Int("sessions", len(notify)),
	)
}

// Graph returns the served graph. Callers must not modify it.
func (s *Server) Graph() *graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), otelgin.Middleware(serviceName))

	r.GET("/", s.handleLive)
	r.GET("/bubble", s.handleBubblePage)
	r.GET("/bubble.svg", s.handleBubbleSVG)
	r.GET("/force.svg", s.handleForceSVG)
	r.GET("/graph.json", s.handleGraph)
	r.GET(socketPath, s.handleForceSocket)
	r.GET(bubbleSocketPath, s.handleBubbleSocket)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Shutdown leaves hijacked connections open; sessions end with ctx.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// viewOptions reads the purely visual query parameters.
func viewOptions(c *gin.Context) render.Options {
	return render.Options{
		Hovered:             c.Query("hover"),
		HighlightedEntity:   c.Query("highlight"),
		HighlightedRelation: c.Query("relation"),
	}
}

func (s *Server) detail(c *gin.Context) bool {
	if v, ok := c.GetQuery("detail"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return s.opts.ShowDetail
}

// bubblePass is one capped, built and solved bubble layout. The layout is nil
// when the hierarchy has nothing to pack.
type bubblePass struct {
	layout     *pack.Layout
	hierarchy  *graph.Hierarchy
	kept       int
	truncation governor.Truncation
}

func (s *Server) packGraph(g *graph.Graph, detail bool) bubblePass {
	nodes, t := governor.Limit(g.Nodes, s.opts.MaxNodes)
	opts := []graph.BuilderOption{graph.WithLogger(s.logger)}
	if s.opts.UnrootedBucket {
		opts = append(opts, graph.WithUnrootedBucket())
	}
	h := graph.NewBuilder(opts...).Build(nodes, g.Links, detail)
	p := bubblePass{hierarchy: h, kept: len(nodes), truncation: t}
	if len(h.Root.Children) > 0 {
		p.layout = pack.Solve(h, s.opts.Width, s.opts.Height)
	}
	return p
}

func (s *Server) renderPass(p bubblePass, view render.Options) *render.Scene {
	var scene *render.Scene
	if p.layout == nil {
		scene = render.EmptyScene(s.opts.Width, s.opts.Height)
	} else {
		scene = s.bubbles.Render(p.layout, view)
	}
	scene.Banner = p.truncation.Warning()
	return scene
}

// BubbleScene runs one bubble pass over the served graph.
func (s *Server) BubbleScene(ctx context.Context, detail bool, view render.Options) *render.Scene {
	_, span := s.tracer.Start(ctx, "layout.bubble")
	defer span.End()
	started := time.Now()

	p := s.packGraph(s.Graph(), detail)
	if p.truncation.Truncated() {
		s.metrics.TruncatedNodes.Add(float64(p.truncation.Total - p.truncation.Kept))
	}
	scene := s.renderPass(p, view)

	span.SetAttributes(
		attribute.Int("relmap.nodes", p.kept),
		attribute.Int("relmap.orphans", len(p.hierarchy.Orphans)),
		attribute.Bool("relmap.truncated", p.truncation.Truncated()),
		attribute.Bool("relmap.detail", detail),
	)
	s.metrics.observePass("bubble", started)
	return scene
}

// ForceScene settles a force layout of the served graph.
func (s *Server) ForceScene(ctx context.Context, view render.Options) *render.Scene {
	_, span := s.tracer.Start(ctx, "layout.force")
	defer span.End()
	started := time.Now()

	g := s.Graph()
	snap := force.Settle(g.Nodes, g.Links, s.forceConfig(), s.logger)
	if snap.Warning != "" {
		s.metrics.TruncatedNodes.Add(float64(len(g.Nodes) - len(snap.Nodes)))
	}
	s.metrics.Ticks.Add(float64(snap.Tick))

	span.SetAttributes(
		attribute.Int("relmap.nodes", len(snap.Nodes)),
		attribute.Int("relmap.ticks", snap.Tick),
	)
	s.metrics.observePass("force", started)
	if view.View.K == 0 {
		view.View = interact.NewViewport(s.opts.Width, s.opts.Height).Initial()
	}
	return render.ForceScene(snap, s.opts.Width, s.opts.Height, view)
}

func (s *Server) forceConfig() force.Config {
	return force.Config{Width: s.opts.Width, Height: s.opts.Height, MaxNodes: s.opts.MaxNodes}
}

func (s *Server) handleLive(c *gin.Context) {
	// the page shows the seeded positions until the socket streams ticks
	g := s.Graph()
	e := force.NewEngine(nil)
	h := e.Start(g.Nodes, g.Links, s.forceConfig())
	snap, _ := e.Snapshot(h)
	scene := render.ForceScene(snap, s.opts.Width, s.opts.Height, render.Options{
		View: interact.NewViewport(s.opts.Width, s.opts.Height).Initial(),
	})
	s.writePage(c, render.Page{Title: serviceName, Scene: scene, Socket: socketPath})
}

func (s *Server) handleBubblePage(c *gin.Context) {
	detail := s.detail(c)
	scene := s.BubbleScene(c.Request.Context(), detail, viewOptions(c))
	s.writePage(c, render.Page{
		Title:  serviceName,
		Scene:  scene,
		Socket: bubbleSocketPath + "?detail=" + strconv.FormatBool(detail),
	})
}

func (s *Server) handleBubbleSVG(c *gin.Context) {
	s.writeSVG(c, s.BubbleScene(c.Request.Context(), s.detail(c), viewOptions(c)))
}

func (s *Server) handleForceSVG(c *gin.Context) {
	s.writeSVG(c, s.ForceScene(c.Request.Context(), viewOptions(c)))
}

func (s *Server) handleGraph(c *gin.Context) {
	c.JSON(http.StatusOK, s.Graph())
}

func (s *Server) writePage(c *gin.Context, p render.Page) {
	page, err := s.pages.RenderPage(p)
	if err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (s *Server) writeSVG(c *gin.Context, scene *render.Scene) {
	c.Header("Content-Type", "image/svg+xml")
	c.Status(http.StatusOK)
	if err := render.WriteSVG(c.Writer, scene); err != nil {
		s.logger.Warn("failed to write svg response", zap.Error(err))
	}
}

func (s *Server) register(id string) chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.sessions[id] = ch
	s.mu.Unlock()
	s.metrics.Sessions.Inc()
	return ch
}

func (s *Server) unregister(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.metrics.Sessions.Dec()
}

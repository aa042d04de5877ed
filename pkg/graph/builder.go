package graph

import (
	"go.uber.org/zap"
)

// UnrootedID is the ID of the synthetic theme that collects orphaned entities
// when the builder runs WithUnrootedBucket.
const UnrootedID = "__unrooted__"

// HierarchyNode is one node of the rooted tree consumed by the circle-pack layout.
type HierarchyNode struct {
	Name     string
	ID       string
	Weight   float64
	Depth    int
	NodeType NodeType
	Children []*HierarchyNode
	Original *Node // nil for the synthetic root and the unrooted bucket
}

// IsLeaf reports whether h has no children.
func (h *HierarchyNode) IsLeaf() bool {
	return len(h.Children) == 0
}

// Walk visits h and its descendants in pre-order until fn returns false.
func (h *HierarchyNode) Walk(fn func(*HierarchyNode) bool) bool {
	if !fn(h) {
		return false
	}
	for _, c := range h.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Hierarchy is the result of a build: the synthetic root plus the IDs of the
// entities that could not be reached from any theme.
type Hierarchy struct {
	Root    *HierarchyNode
	Orphans []string
}

// Builder constructs theme -> organization -> initiative -> topic trees from
// flat nodes and links.
type Builder struct {
	logger   *zap.Logger
	unrooted bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithUnrootedBucket collects orphaned entities under a synthetic "Unrooted"
// theme instead of leaving them out of the hierarchy.
func WithUnrootedBucket() BuilderOption {
	return func(b *Builder) {
		b.unrooted = true
	}
}

// NewBuilder creates a new hierarchy builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build constructs the hierarchy. When detail is false topic nodes are left out
// entirely, so they never contribute weight.
func (b *Builder) Build(nodes []Node, links []Link, detail bool) *Hierarchy {
	nodes = UniqueNodes(nodes, b.logger)
	links, _ = FilterLinks(nodes, links, b.logger)

	// Build maps for quick lookup
	nodeIndex := IndexByID(nodes)
	children := make(map[string][]*Node) // parent ID -> child nodes, in link order
	linked := make(map[string]map[string]bool)
	for _, l := range links {
		if linked[l.Source] == nil {
			linked[l.Source] = make(map[string]bool)
		}
		if linked[l.Source][l.Target] {
			continue
		}
		linked[l.Source][l.Target] = true
		children[l.Source] = append(children[l.Source], &nodes[nodeIndex[l.Target]])
	}

	ex := &expander{children: children, detail: detail, reached: make(map[string]bool)}
	root := &HierarchyNode{Name: "root", Depth: 0}

	for i := range nodes {
		n := &nodes[i]
		if n.Type != NodeTypeTheme || n.Parent {
			continue
		}
		ex.reached[n.ID] = true
		theme := newHierarchyNode(n, 1)
		for _, org := range ex.childrenOf(n.ID, NodeType.IsOrganization) {
			theme.Children = append(theme.Children, ex.organization(org, 2))
		}
		root.Children = append(root.Children, theme)
	}

	orphans := make([]string, 0)
	for i := range nodes {
		n := &nodes[i]
		if ex.reached[n.ID] || n.Parent || n.Type == NodeTypeTheme {
			continue
		}
		if n.Type == NodeTypeTopic && !detail {
			continue
		}
		orphans = append(orphans, n.ID)
	}
	if len(orphans) > 0 {
		b.logger.Debug("entities not reachable from any theme",
			zap.Int("count", len(orphans)),
			zap.Strings("ids", orphans),
			zap.Bool("bucketed", b.unrooted),
		)
	}

	if b.unrooted && len(orphans) > 0 {
		root.Children = append(root.Children, ex.bucket(nodes, orphans))
	}

	aggregate(root)
	return &Hierarchy{Root: root, Orphans: orphans}
}

// expander walks the link structure one type level at a time.
type expander struct {
	children map[string][]*Node
	detail   bool
	reached  map[string]bool
}

func (e *expander) childrenOf(id string, match func(NodeType) bool) []*Node {
	var out []*Node
	for _, c := range e.children[id] {
		if match(c.Type) && !c.Parent {
			out = append(out, c)
		}
	}
	return out
}

func (e *expander) organization(n *Node, depth int) *HierarchyNode {
	e.reached[n.ID] = true
	org := newHierarchyNode(n, depth)
	for _, in := range e.childrenOf(n.ID, isType(NodeTypeInitiative)) {
		org.Children = append(org.Children, e.initiative(in, depth+1))
	}
	return org
}

func (e *expander) initiative(n *Node, depth int) *HierarchyNode {
	e.reached[n.ID] = true
	in := newHierarchyNode(n, depth)
	if !e.detail {
		return in
	}
	for _, topic := range e.childrenOf(n.ID, isType(NodeTypeTopic)) {
		e.reached[topic.ID] = true
		in.Children = append(in.Children, newHierarchyNode(topic, depth+1))
	}
	return in
}

// bucket expands orphans under a synthetic theme: organizations first, then
// initiatives not already pulled in, then loose topics.
func (e *expander) bucket(nodes []Node, orphans []string) *HierarchyNode {
	orphan := make(map[string]bool, len(orphans))
	for _, id := range orphans {
		orphan[id] = true
	}
	bucket := &HierarchyNode{Name: "Unrooted", ID: UnrootedID, NodeType: NodeTypeTheme, Depth: 1}

	passes := []func(NodeType) bool{NodeType.IsOrganization, isType(NodeTypeInitiative), isType(NodeTypeTopic)}
	for _, match := range passes {
		for i := range nodes {
			n := &nodes[i]
			if !orphan[n.ID] || e.reached[n.ID] || !match(n.Type) {
				continue
			}
			switch {
			case n.Type.IsOrganization():
				bucket.Children = append(bucket.Children, e.organization(n, 2))
			case n.Type == NodeTypeInitiative:
				bucket.Children = append(bucket.Children, e.initiative(n, 2))
			default:
				e.reached[n.ID] = true
				bucket.Children = append(bucket.Children, newHierarchyNode(n, 2))
			}
		}
	}
	return bucket
}

func isType(t NodeType) func(NodeType) bool {
	return func(other NodeType) bool { return other == t }
}

func newHierarchyNode(n *Node, depth int) *HierarchyNode {
	return &HierarchyNode{
		Name:     n.Label,
		ID:       n.ID,
		Weight:   1,
		Depth:    depth,
		NodeType: n.Type,
		Original: n,
	}
}

// aggregate sets every weight bottom-up: leaves weigh 1, parents the sum of
// their children.
func aggregate(h *HierarchyNode) float64 {
	if h.IsLeaf() {
		h.Weight = 1
		return h.Weight
	}
	var sum float64
	for _, c := range h.Children {
		sum += aggregate(c)
	}
	h.Weight = sum
	return sum
}

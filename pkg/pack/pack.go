// Package pack computes the nested circle-pack layout used by the bubble view.
//
// The solver runs in two stages. A weighted circle pack sizes and positions
// every node of the hierarchy inside the viewport. A second pass then
// re-places initiatives inside each organization and topics inside each
// initiative on a ring, and separates any overlapping siblings.
package pack

import (
	"math"
	"sort"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

// Layout constants.
const (
	Inset   = 40.0 // gap between the viewport edge and the packed area
	Padding = 10.0 // gap between siblings in the weighted pack

	OrganizationMargin = 5.0 // min gap between initiatives inside an organization
	InitiativeMargin   = 3.0 // min gap between topics inside an initiative
)

// Circle is the placement of one hierarchy node. X and Y are viewport
// coordinates.
type Circle struct {
	X, Y, R  float64
	Node     *graph.HierarchyNode
	Parent   *Circle
	Children []*Circle
}

// Depth returns the hierarchy depth of the circle (0 for the root).
func (c *Circle) Depth() int {
	if c.Node == nil {
		return 0
	}
	return c.Node.Depth
}

// Contains reports whether other lies fully inside c, allowing tol slack.
func (c *Circle) Contains(other *Circle, tol float64) bool {
	return math.Hypot(other.X-c.X, other.Y-c.Y)+other.R <= c.R+tol
}

// Layout is the solved circle pack.
type Layout struct {
	Width, Height float64
	Root          *Circle
	// Circles lists every circle in pre-order, root first.
	Circles []*Circle
}

// Solve lays out h inside a width x height viewport.
func Solve(h *graph.Hierarchy, width, height float64) *Layout {
	dx := math.Max(width-2*Inset, 1)
	dy := math.Max(height-2*Inset, 1)

	root := buildCircles(h.Root, nil)
	l := &Layout{Width: width, Height: height, Root: root}

	eachAfter(root, func(c *Circle) {
		if len(c.Children) == 0 {
			c.R = math.Sqrt(math.Max(c.Node.Weight, 0))
		}
	})

	// first pass finds the scale at which Padding should be applied
	eachAfter(root, func(c *Circle) { packChildren(c, 0) })
	k := root.R / math.Min(dx, dy)
	eachAfter(root, func(c *Circle) { packChildren(c, Padding*k) })

	scale := 1.0
	if root.R > 0 {
		scale = math.Min(dx, dy) / (2 * root.R)
	}
	root.X, root.Y = Inset+dx/2, Inset+dy/2
	root.R *= scale
	eachBefore(root, func(c *Circle) {
		for _, child := range c.Children {
			child.X = c.X + scale*child.X
			child.Y = c.Y + scale*child.Y
			child.R *= scale
		}
	})

	eachBefore(root, func(c *Circle) {
		l.Circles = append(l.Circles, c)
	})

	for _, c := range l.Circles {
		if c.Node.NodeType.IsOrganization() {
			Arrange(c, childrenOfType(c, graph.NodeTypeInitiative), OrganizationMargin)
		}
	}
	for _, c := range l.Circles {
		if c.Node.NodeType == graph.NodeTypeInitiative {
			Arrange(c, childrenOfType(c, graph.NodeTypeTopic), InitiativeMargin)
		}
	}
	return l
}

// buildCircles mirrors the hierarchy, ordering siblings by descending weight.
// The sort is stable so equal weights keep input order.
func buildCircles(h *graph.HierarchyNode, parent *Circle) *Circle {
	c := &Circle{Node: h, Parent: parent}
	for _, child := range h.Children {
		c.Children = append(c.Children, buildCircles(child, c))
	}
	sort.SliceStable(c.Children, func(i, j int) bool {
		return c.Children[i].Node.Weight > c.Children[j].Node.Weight
	})
	return c
}

// packChildren packs c's children relative to c and sets c.R to their
// enclosing radius plus pad.
func packChildren(c *Circle, pad float64) {
	if len(c.Children) == 0 {
		return
	}
	for _, child := range c.Children {
		child.R += pad
	}
	e := packSiblings(c.Children)
	for _, child := range c.Children {
		child.R -= pad
	}
	c.R = e + pad
}

func childrenOfType(c *Circle, t graph.NodeType) []*Circle {
	var out []*Circle
	for _, child := range c.Children {
		if child.Node.NodeType == t {
			out = append(out, child)
		}
	}
	return out
}

func eachBefore(c *Circle, fn func(*Circle)) {
	fn(c)
	for _, child := range c.Children {
		eachBefore(child, fn)
	}
}

func eachAfter(c *Circle, fn func(*Circle)) {
	for _, child := range c.Children {
		eachAfter(child, fn)
	}
	fn(c)
}

// translate moves c and its whole subtree by (dx, dy).
func translate(c *Circle, dx, dy float64) {
	eachBefore(c, func(d *Circle) {
		d.X += dx
		d.Y += dy
	})
}

func moveTo(c *Circle, x, y float64) {
	translate(c, x-c.X, y-c.Y)
}

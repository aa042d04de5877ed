// Package graph provides the entity model shared by every layout, plus the
// hierarchy builder that feeds the circle-pack layout.
package graph

import "strings"

// NodeType represents the semantic type of an entity node.
type NodeType string

const (
	NodeTypeTheme        NodeType = "theme"
	NodeTypeOrganization NodeType = "organization"
	NodeTypeCompany      NodeType = "company"
	NodeTypeInitiative   NodeType = "initiative"
	NodeTypeTopic        NodeType = "topic"
)

// NodeTypes lists every node type, outermost first.
var NodeTypes = []NodeType{
	NodeTypeTheme,
	NodeTypeOrganization,
	NodeTypeCompany,
	NodeTypeInitiative,
	NodeTypeTopic,
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	_, ok := styles[t]
	return ok
}

// IsOrganization reports whether t groups initiatives (organization or company).
func (t NodeType) IsOrganization() bool {
	return t == NodeTypeOrganization || t == NodeTypeCompany
}

// LinkKind represents the rendering-relevant kind of a link.
type LinkKind string

const (
	LinkKindMain   LinkKind = "main"   // theme -> organization
	LinkKindBranch LinkKind = "branch" // organization -> initiative
	LinkKindTopic  LinkKind = "topic"  // initiative -> topic
)

// OrDefault returns k, or LinkKindMain when k is empty or unknown.
func (k LinkKind) OrDefault() LinkKind {
	switch k {
	case LinkKindMain, LinkKindBranch, LinkKindTopic:
		return k
	default:
		return LinkKindMain
	}
}

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node represents an entity in the graph.
type Node struct {
	ID     string         `json:"id"`
	Label  string         `json:"label"`
	Type   NodeType       `json:"type"`
	Parent bool           `json:"parent,omitempty"` // synthetic parent node placed at the centre of force layouts
	Data   map[string]any `json:"data,omitempty"`
	// Position is a seed hint for the force layout. Layouts never write to it.
	Position *Point `json:"position,omitempty"`
}

// Description returns the optional free-text description carried in Data.
func (n Node) Description() string {
	if n.Data == nil {
		return ""
	}
	if s, ok := n.Data["description"].(string); ok {
		return s
	}
	return ""
}

// Link represents a relation between two nodes. The source is treated as the
// parent when building hierarchies.
type Link struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   LinkKind `json:"kind,omitempty"`
}

// Graph is a flat set of nodes and links as handed over by collaborators.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// LinkID generates a unique ID for a link.
func LinkID(source, target string) string {
	return source + "->" + target
}

// IndexByID maps every node ID to its position in nodes. When an ID repeats
// the first occurrence wins.
func IndexByID(nodes []Node) map[string]int {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, seen := index[n.ID]; !seen {
			index[n.ID] = i
		}
	}
	return index
}

// ParseNodeType converts user input to a NodeType.
func ParseNodeType(s string) (NodeType, bool) {
	t := NodeType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

package graph

import (
	"strings"
	"testing"
)

func TestLinkID(t *testing.T) {
	tests := map[string]struct {
		source   string
		target   string
		expected string
	}{
		"simple": {
			source:   "theme-1",
			target:   "org-1",
			expected: "theme-1->org-1",
		},
		"empty target": {
			source:   "org-1",
			target:   "",
			expected: "org-1->",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result := LinkID(tt.source, tt.target)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestParseNodeType(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected NodeType
		valid    bool
	}{
		"theme":           {input: "theme", expected: NodeTypeTheme, valid: true},
		"mixed case":      {input: " Organization ", expected: NodeTypeOrganization, valid: true},
		"company":         {input: "company", expected: NodeTypeCompany, valid: true},
		"unknown":         {input: "person", expected: NodeType("person"), valid: false},
		"empty":           {input: "", expected: NodeType(""), valid: false},
		"topic uppercase": {input: "TOPIC", expected: NodeTypeTopic, valid: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result, ok := ParseNodeType(tt.input)
			if result != tt.expected || ok != tt.valid {
				t.Errorf("expected (%q, %v), got (%q, %v)", tt.expected, tt.valid, result, ok)
			}
		})
	}
}

func TestLinkKindOrDefault(t *testing.T) {
	tests := map[string]struct {
		kind     LinkKind
		expected LinkKind
	}{
		"main":    {kind: LinkKindMain, expected: LinkKindMain},
		"branch":  {kind: LinkKindBranch, expected: LinkKindBranch},
		"topic":   {kind: LinkKindTopic, expected: LinkKindTopic},
		"empty":   {kind: "", expected: LinkKindMain},
		"unknown": {kind: "sideways", expected: LinkKindMain},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.kind.OrDefault(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRadius(t *testing.T) {
	tests := map[string]struct {
		node     Node
		expected float64
	}{
		"short theme label uses minimum": {
			node:     Node{Label: "AI", Type: NodeTypeTheme},
			expected: 60,
		},
		"long theme label grows": {
			node:     Node{Label: strings.Repeat("x", 20), Type: NodeTypeTheme},
			expected: 70,
		},
		"organization counts runes": {
			node:     Node{Label: strings.Repeat("組", 18), Type: NodeTypeOrganization},
			expected: 54,
		},
		"initiative is fixed": {
			node:     Node{Label: strings.Repeat("x", 50), Type: NodeTypeInitiative},
			expected: 28,
		},
		"topic is fixed": {
			node:     Node{Label: "x", Type: NodeTypeTopic},
			expected: 20,
		},
		"parent overrides type": {
			node:     Node{Label: "Root", Type: NodeTypeTheme, Parent: true},
			expected: 100,
		},
		"unknown type falls back": {
			node:     Node{Label: "?", Type: "person"},
			expected: 40,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Radius(tt.node); got != tt.expected {
				t.Errorf("expected radius %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCollisionRadiusIgnoresLabel(t *testing.T) {
	short := Node{Label: "a", Type: NodeTypeTheme}
	long := Node{Label: strings.Repeat("a", 40), Type: NodeTypeTheme}
	if CollisionRadius(short) != CollisionRadius(long) {
		t.Errorf("collision radius should not depend on the label")
	}
}

func TestStyleTableCoversEveryType(t *testing.T) {
	for _, nt := range NodeTypes {
		if !nt.Valid() {
			t.Errorf("type %q has no style", nt)
		}
		s := nt.Style()
		if s.Fill == "" || s.CollisionRadius <= 0 || s.Charge >= 0 {
			t.Errorf("type %q has an incomplete style: %+v", nt, s)
		}
	}
}

func TestNodeDescription(t *testing.T) {
	tests := map[string]struct {
		node     Node
		expected string
	}{
		"no data":     {node: Node{}, expected: ""},
		"string":      {node: Node{Data: map[string]any{"description": "Grid storage"}}, expected: "Grid storage"},
		"wrong type":  {node: Node{Data: map[string]any{"description": 42}}, expected: ""},
		"missing key": {node: Node{Data: map[string]any{"owner": "ops"}}, expected: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.node.Description(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

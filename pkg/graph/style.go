package graph

import (
	"math"
	"unicode/utf8"
)

// Style is the single declarative visual and physical encoding of a node type.
// Layouts and renderers look everything up here instead of branching on type.
type Style struct {
	Caption string

	// Force layout geometry and physics.
	MinRadius       float64 // drawn radius floor
	LabelScale      float64 // drawn radius grows with label length when > 0
	CollisionRadius float64 // fixed, independent of hover
	Charge          float64 // many-body strength before size scaling
	Ring            float64 // initial seeding ring radius

	// Colours.
	Fill   string
	Stroke string
	Hover  string
	Text   string

	// Labels in the force layout.
	FontSize     float64
	FontWeight   string
	MaxLineChars int // 0 means width-bounded only

	// Labels in the bubble layout.
	BubbleFontSize   float64
	BubbleFontWeight string
	BubbleLabelMin   float64 // radius a bubble needs before it gets a label
}

var styles = map[NodeType]Style{
	NodeTypeTheme: {
		Caption: "Theme", MinRadius: 60, LabelScale: 3.5, CollisionRadius: 65, Charge: -600, Ring: 180,
		Fill: "#1A1A1A", Stroke: "#000000", Hover: "#2D2D2D", Text: "#FFFFFF",
		FontSize: 16, FontWeight: "600", MaxLineChars: 10,
		BubbleFontSize: 20, BubbleFontWeight: "700", BubbleLabelMin: 50,
	},
	NodeTypeOrganization: {
		Caption: "Organization", MinRadius: 45, LabelScale: 3, CollisionRadius: 50, Charge: -400, Ring: 320,
		Fill: "#10B981", Stroke: "#059669", Hover: "#34D399", Text: "#FFFFFF",
		FontSize: 14, FontWeight: "600", MaxLineChars: 8,
		BubbleFontSize: 16, BubbleFontWeight: "600", BubbleLabelMin: 30,
	},
	NodeTypeCompany: {
		Caption: "Company", MinRadius: 45, LabelScale: 3, CollisionRadius: 50, Charge: -400, Ring: 320,
		Fill: "#10B981", Stroke: "#059669", Hover: "#34D399", Text: "#FFFFFF",
		FontSize: 14, FontWeight: "600", MaxLineChars: 8,
		BubbleFontSize: 16, BubbleFontWeight: "600", BubbleLabelMin: 30,
	},
	NodeTypeInitiative: {
		Caption: "Initiative", MinRadius: 28, CollisionRadius: 30, Charge: -250, Ring: 450,
		Fill: "#4262FF", Stroke: "#2E4ED8", Hover: "#5C7AFF", Text: "#FFFFFF",
		FontSize: 14, FontWeight: "500", MaxLineChars: 8,
		BubbleFontSize: 14, BubbleFontWeight: "600", BubbleLabelMin: 20,
	},
	NodeTypeTopic: {
		Caption: "Topic", MinRadius: 20, CollisionRadius: 24, Charge: -150, Ring: 500,
		Fill: "#F59E0B", Stroke: "#D97706", Hover: "#FBBF24", Text: "#FFFFFF",
		FontSize: 12, FontWeight: "500",
		BubbleFontSize: 12, BubbleFontWeight: "500", BubbleLabelMin: 12,
	},
}

// parentStyle applies to the synthetic parent node regardless of its type.
var parentStyle = Style{
	Caption: "Parent", MinRadius: 100, LabelScale: 5, CollisionRadius: 105, Charge: -1000, Ring: 0,
	Fill: "#808080", Stroke: "#666666", Hover: "#666666", Text: "#FFFFFF",
	FontSize: 16, FontWeight: "600",
	BubbleFontSize: 20, BubbleFontWeight: "700", BubbleLabelMin: 50,
}

// fallbackStyle covers unknown types so a bad record degrades instead of failing.
var fallbackStyle = Style{
	Caption: "Entity", MinRadius: 40, CollisionRadius: 40, Charge: -200, Ring: 500,
	Fill: "#CCCCCC", Stroke: "#999999", Hover: "#BBBBBB", Text: "#000000",
	FontSize: 14, FontWeight: "500",
	BubbleFontSize: 12, BubbleFontWeight: "500", BubbleLabelMin: 12,
}

// Style returns the encoding for t.
func (t NodeType) Style() Style {
	if s, ok := styles[t]; ok {
		return s
	}
	return fallbackStyle
}

// StyleOf returns the encoding for n, honouring the synthetic parent flag.
func StyleOf(n Node) Style {
	if n.Parent {
		return parentStyle
	}
	return n.Type.Style()
}

// Radius returns the drawn radius of n in the force layout. Large node types
// grow with their label so the text fits.
func Radius(n Node) float64 {
	s := StyleOf(n)
	if s.LabelScale == 0 {
		return s.MinRadius
	}
	return math.Max(float64(utf8.RuneCountInString(n.Label))*s.LabelScale, s.MinRadius)
}

// CollisionRadius returns the fixed collision radius of n.
func CollisionRadius(n Node) float64 {
	return StyleOf(n).CollisionRadius
}

package render

import (
	"math"
	"unicode/utf8"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
	"github.com/ddl-r-abdulaziz/relmap/pkg/pack"
)

const (
	bubbleShadowID  = "bubble-shadow"
	hoverScale      = 1.1
	charWidthRatio  = 0.6 // average glyph width relative to the font size
	tooltipMaxChars = 100
)

// bubbleLook is the per-type circle encoding of the bubble view.
type bubbleLook struct {
	fillOpacity, hoverOpacity float64
	outlined                  bool // dashed outline in the type colour instead of a white rim
	labelAbove                bool
	labelFill                 string // empty means the type colour
}

var bubbleLooks = map[graph.NodeType]bubbleLook{
	graph.NodeTypeTheme:        {fillOpacity: 0.08, hoverOpacity: 0.15, outlined: true, labelAbove: true},
	graph.NodeTypeOrganization: {fillOpacity: 0.75, hoverOpacity: 0.85, labelAbove: true},
	graph.NodeTypeCompany:      {fillOpacity: 0.75, hoverOpacity: 0.85, labelAbove: true},
	graph.NodeTypeInitiative:   {fillOpacity: 0.7, hoverOpacity: 0.8, labelFill: "#FFFFFF"},
	graph.NodeTypeTopic:        {fillOpacity: 0.8, hoverOpacity: 0.9, labelFill: "#FFFFFF"},
}

// BubbleRenderer draws a solved circle pack.
type BubbleRenderer struct {
	shadow Shadow
}

// NewBubbleRenderer creates a bubble renderer.
func NewBubbleRenderer() *BubbleRenderer {
	return &BubbleRenderer{
		shadow: Shadow{ID: bubbleShadowID, DY: 2, StdDeviation: 3, Opacity: 0.15},
	}
}

// Render draws every circle of l except the synthetic root. A nil or empty
// layout produces the empty state.
func (r *BubbleRenderer) Render(l *pack.Layout, opts Options) *Scene {
	if l == nil || l.Root == nil || len(l.Root.Children) == 0 {
		w, h := 0.0, 0.0
		if l != nil {
			w, h = l.Width, l.Height
		}
		return EmptyScene(w, h)
	}

	s := &Scene{
		Width:     l.Width,
		Height:    l.Height,
		Transform: opts.transform(),
		Filters:   []Shadow{r.shadow},
		Lines:     []Line{},
	}
	for _, c := range l.Circles {
		if c == l.Root || c.R <= 0 {
			continue
		}
		s.Circles = append(s.Circles, r.circle(c, opts))
		if t, ok := bubbleLabel(c); ok {
			s.Texts = append(s.Texts, t)
		}
	}
	if s.Texts == nil {
		s.Texts = []Text{}
	}
	return s
}

func lookOf(t graph.NodeType) bubbleLook {
	if l, ok := bubbleLooks[t]; ok {
		return l
	}
	return bubbleLook{fillOpacity: 0.7, hoverOpacity: 0.8, labelFill: "#FFFFFF"}
}

func (r *BubbleRenderer) circle(c *pack.Circle, opts Options) Circle {
	n := c.Node
	style := n.NodeType.Style()
	look := lookOf(n.NodeType)
	hovered := opts.Hovered != "" && opts.Hovered == n.ID

	out := Circle{
		ID:          n.ID,
		Type:        string(n.NodeType),
		X:           c.X,
		Y:           c.Y,
		R:           c.R,
		Scale:       1,
		Fill:        style.Fill,
		FillOpacity: look.fillOpacity,
		Tooltip:     tooltip(n),
	}
	if look.outlined {
		out.Stroke = style.Fill
		out.StrokeWidth = 1
		out.Dash = "8,4"
		if hovered {
			out.StrokeWidth = 1.5
		}
	} else {
		out.Stroke = "#FFFFFF"
		out.StrokeWidth = 1.5
		out.Filter = r.shadow.ID
	}
	if hovered {
		out.FillOpacity = look.hoverOpacity
		out.Scale = hoverScale
	}
	if opts.HighlightedEntity != "" && opts.HighlightedEntity == n.ID {
		out.Stroke = highlightStroke
		out.StrokeWidth = highlightWidth
	}
	return out
}

func bubbleLabel(c *pack.Circle) (Text, bool) {
	n := c.Node
	style := n.NodeType.Style()
	if n.Name == "" || c.R <= style.BubbleLabelMin {
		return Text{}, false
	}
	look := lookOf(n.NodeType)

	t := Text{
		X:          c.X,
		Y:          c.Y,
		Lines:      []string{truncate(n.Name, int(math.Floor(c.R/(style.BubbleFontSize*charWidthRatio))))},
		FontSize:   style.BubbleFontSize,
		FontWeight: style.BubbleFontWeight,
		Fill:       look.labelFill,
	}
	if t.Fill == "" {
		t.Fill = style.Fill
	}

	switch {
	case n.NodeType == graph.NodeTypeTheme:
		t.Y = c.Y - c.R - 20
	case look.labelAbove:
		t.Y = c.Y - c.R - 15
	case n.NodeType == graph.NodeTypeInitiative:
		t.Y = c.Y - c.R*0.7
	default:
		t.Stroke = "rgba(0,0,0,0.3)"
		t.StrokeWidth = 0.5
	}
	return t, true
}

// truncate shortens s to max runes, the last of which become "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	keep := max - 1
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + "..."
}

func tooltip(n *graph.HierarchyNode) string {
	text := n.NodeType.Style().Caption + ": " + n.Name
	if n.NodeType != graph.NodeTypeInitiative && n.NodeType != graph.NodeTypeTopic {
		return text
	}
	if n.Original == nil {
		return text
	}
	desc := n.Original.Description()
	if desc == "" {
		return text
	}
	if utf8.RuneCountInString(desc) > tooltipMaxChars {
		desc = string([]rune(desc)[:tooltipMaxChars]) + "..."
	}
	return text + "\n" + desc
}

// Package render turns solved layouts into a flat vector scene that can be
// written as SVG or embedded into an interactive HTML page.
package render

import (
	"github.com/ddl-r-abdulaziz/relmap/pkg/interact"
)

// EmptyMessage is shown instead of an empty canvas when there is nothing to lay out.
const EmptyMessage = "No data to display"

// Highlight colour for emphasized entities and relations. Highlighting only
// changes strokes, never geometry.
const (
	highlightStroke = "#FF6B00"
	highlightWidth  = 3.0
)

// Scene is a renderer-agnostic drawing: lines below circles below text.
type Scene struct {
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
	Transform string   `json:"transform,omitempty"` // SVG transform of the drawing group
	Filters   []Shadow `json:"filters,omitempty"`
	Lines     []Line   `json:"lines"`
	Circles   []Circle `json:"circles"`
	Texts     []Text   `json:"texts"`
	Empty     bool     `json:"empty"`
	Banner    string   `json:"banner,omitempty"` // user-visible warning, drawn outside the transform
}

// Shadow is a drop shadow filter definition.
type Shadow struct {
	ID           string  `json:"id"`
	DX           float64 `json:"dx"`
	DY           float64 `json:"dy"`
	StdDeviation float64 `json:"stdDeviation"`
	Opacity      float64 `json:"opacity"`
}

// Circle is a node bubble.
type Circle struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	R           float64 `json:"r"`
	Scale       float64 `json:"scale"`
	Fill        string  `json:"fill"`
	FillOpacity float64 `json:"fillOpacity"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Dash        string  `json:"dash,omitempty"`
	Filter      string  `json:"filter,omitempty"`
	Tooltip     string  `json:"tooltip,omitempty"`
}

// Line is a drawn link.
type Line struct {
	ID      string  `json:"id"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	Stroke  string  `json:"stroke"`
	Width   float64 `json:"width"`
	Dash    string  `json:"dash,omitempty"`
	Opacity float64 `json:"opacity"`
}

// Text is a label of one or more centred lines. Y is the baseline of the
// first line.
type Text struct {
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Lines       []string `json:"lines"`
	LineHeight  float64  `json:"lineHeight,omitempty"`
	FontSize    float64  `json:"fontSize"`
	FontWeight  string   `json:"fontWeight"`
	Fill        string   `json:"fill"`
	Stroke      string   `json:"stroke,omitempty"`
	StrokeWidth float64  `json:"strokeWidth,omitempty"`
}

// Options carries the purely visual state a scene is drawn with.
type Options struct {
	Hovered             string
	HighlightedEntity   string
	HighlightedRelation string // a graph.LinkID
	// View is the zoom/pan transform. A zero value draws untransformed.
	View interact.Transform
}

func (o Options) transform() string {
	if o.View.K == 0 {
		return ""
	}
	return o.View.String()
}

// EmptyScene is a width by height canvas carrying only the empty-state message.
func EmptyScene(width, height float64) *Scene {
	return &Scene{
		Width:  width,
		Height: height,
		Empty:  true,
		Texts: []Text{{
			X:          width / 2,
			Y:          height / 2,
			Lines:      []string{EmptyMessage},
			FontSize:   16,
			FontWeight: "500",
			Fill:       "#6B7280",
		}},
	}
}

// Circle returns the circle drawn for node id.
func (s *Scene) Circle(id string) (Circle, bool) {
	for _, c := range s.Circles {
		if c.ID == id {
			return c, true
		}
	}
	return Circle{}, false
}

// Line returns the line drawn for link id.
func (s *Scene) Line(id string) (Line, bool) {
	for _, l := range s.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return Line{}, false
}

package render

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ddl-r-abdulaziz/relmap/pkg/force"
	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

const (
	nodeShadowID      = "node-shadow"
	nodeStrokeWidth   = 1.5
	labelWidthRatio   = 0.85 // share of the diameter a label line may use
	labelLineHeight   = 1.2
	labelBaseline     = 0.35
	initiativeLabel   = 8
	maxWrapLookBehind = 8
)

type linkLook struct {
	stroke  string
	width   float64
	dash    string
	opacity float64
}

var linkLooks = map[graph.LinkKind]linkLook{
	graph.LinkKindMain:   {stroke: "#666666", width: 2, opacity: 0.7},
	graph.LinkKindBranch: {stroke: "#888888", width: 1.5, dash: "3,3", opacity: 0.6},
	graph.LinkKindTopic:  {stroke: "#888888", width: 1.5, dash: "3,3", opacity: 0.6},
}

const linkHoverStroke = "#333333"

// ForceScene draws one position snapshot of the force layout on a width x
// height surface. Simulation coordinates are offset by force.Margin.
func ForceScene(snap force.Snapshot, width, height float64, opts Options) *Scene {
	if snap.Empty() {
		s := EmptyScene(width, height)
		s.Banner = snap.Warning
		return s
	}

	s := &Scene{
		Width:     width,
		Height:    height,
		Transform: opts.transform(),
		Banner:    snap.Warning,
		Filters: []Shadow{
			{ID: nodeShadowID, DY: 1, StdDeviation: 1.5, Opacity: 0.1},
		},
		Lines:   make([]Line, 0, len(snap.Links)),
		Circles: make([]Circle, 0, len(snap.Nodes)),
		Texts:   make([]Text, 0, len(snap.Nodes)),
	}

	index := make(map[string]int, len(snap.Nodes))
	for i, n := range snap.Nodes {
		index[n.Node.ID] = i
	}
	for _, l := range snap.Links {
		si, ok := index[l.Source]
		if !ok {
			continue
		}
		ti, ok := index[l.Target]
		if !ok {
			continue
		}
		if line, ok := linkLine(snap.Nodes[si], snap.Nodes[ti], l, opts); ok {
			s.Lines = append(s.Lines, line)
		}
	}

	for _, n := range snap.Nodes {
		s.Circles = append(s.Circles, nodeCircle(n, opts))
		s.Texts = append(s.Texts, nodeLabel(n))
	}
	return s
}

// linkLine draws l between the circumferences of its endpoints. Coincident
// endpoints have no direction and are skipped for this snapshot.
func linkLine(src, dst force.NodeState, l graph.Link, opts Options) (Line, bool) {
	dx, dy := dst.X-src.X, dst.Y-src.Y
	d := math.Hypot(dx, dy)
	if d < 1e-9 {
		return Line{}, false
	}
	ux, uy := dx/d, dy/d
	rs, rt := graph.Radius(src.Node), graph.Radius(dst.Node)
	if rs+rt >= d {
		rs, rt = 0, 0
	}

	look, ok := linkLooks[l.Kind.OrDefault()]
	if !ok {
		look = linkLooks[graph.LinkKindMain]
	}
	id := graph.LinkID(l.Source, l.Target)
	line := Line{
		ID:      id,
		X1:      src.X + force.Margin + ux*rs,
		Y1:      src.Y + force.Margin + uy*rs,
		X2:      dst.X + force.Margin - ux*rt,
		Y2:      dst.Y + force.Margin - uy*rt,
		Stroke:  look.stroke,
		Width:   look.width,
		Dash:    look.dash,
		Opacity: look.opacity,
	}
	if opts.Hovered != "" && (l.Source == opts.Hovered || l.Target == opts.Hovered) {
		line.Stroke = linkHoverStroke
		line.Opacity = 1
	}
	if opts.HighlightedRelation != "" && opts.HighlightedRelation == id {
		line.Stroke = highlightStroke
		line.Width = highlightWidth
		line.Opacity = 1
	}
	return line, true
}

func nodeCircle(n force.NodeState, opts Options) Circle {
	style := graph.StyleOf(n.Node)
	c := Circle{
		ID:          n.Node.ID,
		Type:        string(n.Node.Type),
		X:           n.X + force.Margin,
		Y:           n.Y + force.Margin,
		R:           graph.Radius(n.Node),
		Scale:       1,
		Fill:        style.Fill,
		FillOpacity: 1,
		Stroke:      style.Stroke,
		StrokeWidth: nodeStrokeWidth,
		Tooltip:     n.Node.Label,
	}
	if opts.Hovered != "" && opts.Hovered == n.Node.ID {
		c.Fill = style.Hover
		c.Scale = hoverScale
		c.Filter = nodeShadowID
	}
	if opts.HighlightedEntity != "" && opts.HighlightedEntity == n.Node.ID {
		c.Stroke = highlightStroke
		c.StrokeWidth = highlightWidth
	}
	return c
}

func nodeLabel(n force.NodeState) Text {
	style := graph.StyleOf(n.Node)
	label := n.Node.Label
	if n.Node.Type == graph.NodeTypeInitiative && !n.Node.Parent && utf8.RuneCountInString(label) > initiativeLabel {
		label = string([]rune(label)[:initiativeLabel]) + "..."
	}

	lines := Wrap(label, 2*graph.Radius(n.Node), style.FontSize, style.MaxLineChars)
	lineHeight := style.FontSize * labelLineHeight
	total := float64(len(lines)-1) * lineHeight

	return Text{
		X:          n.X + force.Margin,
		Y:          n.Y + force.Margin - total/2 + style.FontSize*labelBaseline,
		Lines:      lines,
		LineHeight: lineHeight,
		FontSize:   style.FontSize,
		FontWeight: style.FontWeight,
		Fill:       style.Text,
	}
}

// Wrap splits text into lines that fit 85% of width at fontSize. maxChars,
// when positive, caps the characters per line further. A line prefers to
// break after a space in its last few characters.
func Wrap(text string, width, fontSize float64, maxChars int) []string {
	perLine := int(math.Floor(width * labelWidthRatio / (fontSize * charWidthRatio)))
	if maxChars > 0 && maxChars < perLine {
		perLine = maxChars
	}
	if perLine < 1 {
		perLine = 1
	}

	runes := []rune(text)
	if len(runes) <= perLine {
		return []string{text}
	}

	var lines []string
	for len(runes) > perLine {
		split := perLine
		for j := perLine - 1; j >= max(1, perLine-maxWrapLookBehind); j-- {
			if runes[j] == ' ' {
				split = j + 1
				break
			}
		}
		lines = append(lines, strings.TrimRight(string(runes[:split]), " "))
		runes = runes[split:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return lines
}

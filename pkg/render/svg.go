package render

import (
	"fmt"
	"html"
	"io"
	"math"

	svg "github.com/ajstarks/svgo/float"
)

const fontFamily = "Inter, 'Noto Sans JP', -apple-system, sans-serif"

// errWriter remembers the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	if _, err := e.w.Write(p); err != nil {
		e.err = err
	}
	return len(p), nil
}

// WriteSVG writes s as a standalone SVG document.
func WriteSVG(w io.Writer, s *Scene) error {
	out := &errWriter{w: w}
	canvas := svg.New(out)
	canvas.Start(s.Width, s.Height,
		attr("viewBox", fmt.Sprintf("0 0 %g %g", s.Width, s.Height)),
		attr("font-family", fontFamily),
	)

	if len(s.Filters) > 0 {
		canvas.Def()
		for _, f := range s.Filters {
			writeShadow(canvas, f)
		}
		canvas.DefEnd()
	}

	if s.Transform != "" {
		canvas.Gtransform(s.Transform)
	} else {
		canvas.Group()
	}
	for _, l := range s.Lines {
		writeLine(canvas, l)
	}
	for _, c := range s.Circles {
		writeCircle(canvas, c)
	}
	for _, t := range s.Texts {
		writeText(canvas, t)
	}
	canvas.Gend()

	if s.Banner != "" {
		canvas.Rect(8, 8, s.Width-16, 28, `rx="4"`, `fill="#FEF3C7"`, `stroke="#F59E0B"`)
		canvas.Text(18, 27, s.Banner, `font-size="13"`, `fill="#92400E"`)
	}
	canvas.End()

	if out.err != nil {
		return fmt.Errorf("failed to write svg: %w", out.err)
	}
	return nil
}

func writeShadow(canvas *svg.SVG, f Shadow) {
	canvas.Filter(f.ID, `x="-50%"`, `y="-50%"`, `width="200%"`, `height="200%"`)
	canvas.FeGaussianBlur(svg.Filterspec{In: "SourceAlpha", Result: "blur"}, f.StdDeviation, f.StdDeviation)
	canvas.FeOffset(svg.Filterspec{In: "blur", Result: "offsetBlur"}, int(math.Round(f.DX)), int(math.Round(f.DY)))
	canvas.FeMerge([]string{"offsetBlur", "SourceGraphic"})
	canvas.Fend()
}

func writeLine(canvas *svg.SVG, l Line) {
	attrs := []string{
		attr("data-link-id", l.ID),
		attr("stroke", l.Stroke),
		num("stroke-width", l.Width),
		num("opacity", l.Opacity),
	}
	if l.Dash != "" {
		attrs = append(attrs, attr("stroke-dasharray", l.Dash))
	}
	canvas.Line(l.X1, l.Y1, l.X2, l.Y2, attrs...)
}

func writeCircle(canvas *svg.SVG, c Circle) {
	attrs := []string{
		attr("data-node-id", c.ID),
		attr("class", c.Type+"-node"),
		attr("fill", c.Fill),
		num("fill-opacity", c.FillOpacity),
		attr("stroke", c.Stroke),
		num("stroke-width", c.StrokeWidth),
	}
	if c.Dash != "" {
		attrs = append(attrs, attr("stroke-dasharray", c.Dash))
	}
	if c.Filter != "" {
		attrs = append(attrs, attr("filter", "url(#"+c.Filter+")"))
	}
	if c.Scale != 0 && c.Scale != 1 {
		attrs = append(attrs, attr("transform",
			fmt.Sprintf("translate(%g,%g) scale(%g) translate(%g,%g)", c.X, c.Y, c.Scale, -c.X, -c.Y)))
	}

	if c.Tooltip == "" {
		canvas.Circle(c.X, c.Y, c.R, attrs...)
		return
	}
	// the tooltip hangs off a group so the circle itself can stay self-closing
	canvas.Group()
	canvas.Title(c.Tooltip)
	canvas.Circle(c.X, c.Y, c.R, attrs...)
	canvas.Gend()
}

// writeText draws one text element per line, each LineHeight below the last.
func writeText(canvas *svg.SVG, t Text) {
	attrs := []string{
		`text-anchor="middle"`,
		attr("font-size", fmt.Sprintf("%gpx", t.FontSize)),
		attr("font-weight", t.FontWeight),
		attr("fill", t.Fill),
		`pointer-events="none"`,
	}
	if t.Stroke != "" {
		attrs = append(attrs, attr("stroke", t.Stroke), num("stroke-width", t.StrokeWidth))
	}
	for i, line := range t.Lines {
		canvas.Text(t.X, t.Y+float64(i)*t.LineHeight, line, attrs...)
	}
}

// attr renders one escaped name="value" pair in the form svgo expects for
// extra attributes.
func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

func num(name string, v float64) string {
	return fmt.Sprintf(`%s="%g"`, name, v)
}

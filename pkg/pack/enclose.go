package pack

import "math"

// disc is a bare circle used by the enclosing-circle computation.
type disc struct {
	X, Y, R float64
}

// lcg is a fixed-seed linear congruential generator. Enclosure only needs a
// shuffled order, and a fixed seed keeps every layout reproducible.
type lcg struct {
	s uint32
}

func newLCG() *lcg { return &lcg{s: 1} }

func (g *lcg) next() float64 {
	g.s = 1664525*g.s + 1013904223
	return float64(g.s) / 4294967296
}

func shuffle(discs []disc, rng *lcg) {
	m := len(discs)
	for m > 0 {
		i := int(rng.next() * float64(m))
		m--
		discs[m], discs[i] = discs[i], discs[m]
	}
}

// enclose returns the smallest circle enclosing every disc (Welzl-style
// incremental basis extension over a shuffled order).
func enclose(discs []disc) disc {
	if len(discs) == 0 {
		return disc{}
	}
	shuffled := make([]disc, len(discs))
	copy(shuffled, discs)
	shuffle(shuffled, newLCG())

	var (
		basis []disc
		e     disc
		have  bool
	)
	for i := 0; i < len(shuffled); {
		p := shuffled[i]
		if have && enclosesWeak(e, p) {
			i++
			continue
		}
		next, ok := extendBasis(basis, p)
		if !ok {
			return encloseNaive(discs)
		}
		basis = next
		e = encloseBasis(basis)
		have = true
		i = 0
	}
	return e
}

func extendBasis(basis []disc, p disc) ([]disc, bool) {
	if enclosesWeakAll(p, basis) {
		return []disc{p}, true
	}

	for i := range basis {
		if enclosesNot(p, basis[i]) && enclosesWeakAll(encloseBasis2(basis[i], p), basis) {
			return []disc{basis[i], p}, true
		}
	}

	for i := 0; i < len(basis)-1; i++ {
		for j := i + 1; j < len(basis); j++ {
			if enclosesNot(encloseBasis2(basis[i], basis[j]), p) &&
				enclosesNot(encloseBasis2(basis[i], p), basis[j]) &&
				enclosesNot(encloseBasis2(basis[j], p), basis[i]) &&
				enclosesWeakAll(encloseBasis3(basis[i], basis[j], p), basis) {
				return []disc{basis[i], basis[j], p}, true
			}
		}
	}
	return nil, false
}

func enclosesNot(a, b disc) bool {
	dr := a.R - b.R
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dr < 0 || dr*dr < dx*dx+dy*dy
}

func enclosesWeak(a, b disc) bool {
	dr := a.R - b.R + math.Max(math.Max(a.R, b.R), 1)*1e-9
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

func enclosesWeakAll(a disc, basis []disc) bool {
	for _, b := range basis {
		if !enclosesWeak(a, b) {
			return false
		}
	}
	return true
}

func encloseBasis(basis []disc) disc {
	switch len(basis) {
	case 1:
		return basis[0]
	case 2:
		return encloseBasis2(basis[0], basis[1])
	default:
		return encloseBasis3(basis[0], basis[1], basis[2])
	}
}

func encloseBasis2(a, b disc) disc {
	x21, y21, r21 := b.X-a.X, b.Y-a.Y, b.R-a.R
	l := math.Sqrt(x21*x21 + y21*y21)
	if l < epsilon {
		if a.R >= b.R {
			return a
		}
		return b
	}
	return disc{
		X: (a.X + b.X + x21/l*r21) / 2,
		Y: (a.Y + b.Y + y21/l*r21) / 2,
		R: (l + a.R + b.R) / 2,
	}
}

func encloseBasis3(a, b, c disc) disc {
	x1, y1, r1 := a.X, a.Y, a.R
	x2, y2, r2 := b.X, b.Y, b.R
	x3, y3, r3 := c.X, c.Y, c.R
	a2, a3 := x1-x2, x1-x3
	b2, b3 := y1-y2, y1-y3
	c2, c3 := r2-r1, r3-r1
	d1 := x1*x1 + y1*y1 - r1*r1
	d2 := d1 - x2*x2 - y2*y2 + r2*r2
	d3 := d1 - x3*x3 - y3*y3 + r3*r3
	ab := a3*b2 - a2*b3
	if math.Abs(ab) < epsilon {
		// collinear centres; the pairwise enclosures are exact enough
		e := encloseBasis2(a, b)
		if !enclosesWeak(e, c) {
			e = encloseBasis2(e, c)
		}
		return e
	}
	xa := (b2*d3-b3*d2)/(ab*2) - x1
	xb := (b3*c2 - b2*c3) / ab
	ya := (a3*d2-a2*d3)/(ab*2) - y1
	yb := (a2*c3 - a3*c2) / ab
	A := xb*xb + yb*yb - 1
	B := 2 * (r1 + xa*xb + ya*yb)
	C := xa*xa + ya*ya - r1*r1
	var r float64
	if math.Abs(A) > 1e-6 {
		r = -(B + math.Sqrt(math.Max(0, B*B-4*A*C))) / (2 * A)
	} else {
		r = -C / B
	}
	return disc{X: x1 + xa + xb*r, Y: y1 + ya + yb*r, R: r}
}

// encloseNaive is a loose but always-valid enclosure around the bounding box
// centre, used if the basis search ever fails on degenerate input.
func encloseNaive(discs []disc) disc {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, d := range discs {
		minX = math.Min(minX, d.X-d.R)
		minY = math.Min(minY, d.Y-d.R)
		maxX = math.Max(maxX, d.X+d.R)
		maxY = math.Max(maxY, d.Y+d.R)
	}
	e := disc{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
	for _, d := range discs {
		e.R = math.Max(e.R, math.Hypot(d.X-e.X, d.Y-e.Y)+d.R)
	}
	return e
}

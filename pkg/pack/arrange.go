package pack

import "math"

const (
	ringRatio      = 0.7 // ring sits inside this fraction of the parent radius
	ringSpread     = 0.8 // fraction of the available ring distance actually used
	maxSeparations = 30
	pullWeight     = 0.3 // share of each separation step spent pulling toward the parent
	minDistance    = 0.1 // pairs closer than this have no usable direction

	// Overlap and containment checks allow for float error.
	tolerance = 1e-6
)

// Arrange re-places children inside parent: a lone child is centred, several
// are spread on a ring and then pushed apart until no two are closer than
// margin. Each child keeps its radius and moves together with its subtree.
// If separation leaves them closer than margin, a tangential re-pack is tried
// with the largest gap up to margin that fits. Children never end with less
// clearance than they started with.
func Arrange(parent *Circle, children []*Circle, margin float64) {
	placed := make([]*Circle, 0, len(children))
	for _, c := range children {
		if c.R > 0 {
			placed = append(placed, c)
		}
	}
	if len(placed) == 0 || parent.R <= 0 {
		return
	}

	if len(placed) == 1 {
		moveTo(placed[0], parent.X, parent.Y)
		return
	}

	start := positions(placed)

	placeOnRing(parent, placed, margin)
	separate(parent, placed, margin)
	if Valid(parent, placed, margin) {
		return
	}

	candidates := [][][2]float64{positions(placed)}
	if packed, ok := repackWithin(parent, placed, margin); ok {
		candidates = append(candidates, packed)
	}
	candidates = append(candidates, start)

	best, bestScore := candidates[0], math.Inf(-1)
	for _, pos := range candidates {
		apply(placed, pos)
		if score := clearance(parent, placed); score > bestScore {
			best, bestScore = pos, score
		}
	}
	apply(placed, best)
}

func positions(children []*Circle) [][2]float64 {
	out := make([][2]float64, len(children))
	for i, c := range children {
		out[i] = [2]float64{c.X, c.Y}
	}
	return out
}

func apply(children []*Circle, pos [][2]float64) {
	for i, c := range children {
		moveTo(c, pos[i][0], pos[i][1])
	}
}

// clearance is the smallest gap between two children. A child that pokes
// out of the parent makes it negative by the amount it sticks out.
func clearance(parent *Circle, children []*Circle) float64 {
	gap := math.Inf(1)
	for i, a := range children {
		if out := math.Hypot(a.X-parent.X, a.Y-parent.Y) + a.R - parent.R; out > tolerance {
			gap = math.Min(gap, -out)
		}
		for _, b := range children[i+1:] {
			gap = math.Min(gap, math.Hypot(b.X-a.X, b.Y-a.Y)-a.R-b.R)
		}
	}
	return gap
}

func placeOnRing(parent *Circle, children []*Circle, margin float64) {
	var maxR float64
	for _, c := range children {
		maxR = math.Max(maxR, c.R)
	}
	maxDist := parent.R*ringRatio - maxR

	n := float64(len(children))
	for i, c := range children {
		angle := float64(i) / n * 2 * math.Pi
		available := math.Max(0, maxDist-c.R)
		dist := math.Max(c.R+margin, available*ringSpread)
		if allowed := math.Max(0, parent.R-c.R-margin); dist > allowed {
			dist = allowed
		}
		moveTo(c, parent.X+math.Cos(angle)*dist, parent.Y+math.Sin(angle)*dist)
	}
}

// separate runs bounded pairwise repulsion with a weak pull toward the parent
// centre, clamping each moved child back inside the parent.
func separate(parent *Circle, children []*Circle, margin float64) {
	for iter := 0; iter < maxSeparations; iter++ {
		overlap := false
		for i := 0; i < len(children); i++ {
			for j := i + 1; j < len(children); j++ {
				a, b := children[i], children[j]
				dx, dy := b.X-a.X, b.Y-a.Y
				dist := math.Hypot(dx, dy)
				need := a.R + b.R + margin
				if dist >= need || dist <= minDistance {
					continue
				}
				overlap = true

				sep := (need - dist) / 2
				ux, uy := dx/dist, dy/dist
				ax, ay := -ux*sep, -uy*sep
				bx, by := ux*sep, uy*sep

				pax, pay := parent.X-a.X, parent.Y-a.Y
				pbx, pby := parent.X-b.X, parent.Y-b.Y
				la, lb := math.Hypot(pax, pay), math.Hypot(pbx, pby)
				if la > 0 && lb > 0 {
					ax += pax / la * sep * pullWeight
					ay += pay / la * sep * pullWeight
					bx += pbx / lb * sep * pullWeight
					by += pby / lb * sep * pullWeight
				}

				translate(a, ax, ay)
				translate(b, bx, by)
				clampInside(parent, a, margin)
				clampInside(parent, b, margin)
			}
		}
		if !overlap {
			return
		}
	}
}

// clampInside pulls c back toward the parent centre until it sits at least
// margin inside the parent's edge.
func clampInside(parent, c *Circle, margin float64) {
	dx, dy := c.X-parent.X, c.Y-parent.Y
	dist := math.Hypot(dx, dy)
	allowed := math.Max(0, parent.R-c.R-margin)
	if dist <= allowed {
		return
	}
	s := allowed / dist
	moveTo(c, parent.X+dx*s, parent.Y+dy*s)
}

// repackBisections bounds the search for the widest gap a re-pack can keep.
const repackBisections = 16

// packAt packs children tangentially with radii grown by gap/2, which keeps
// every pair at least gap apart, centred on the parent. It reports whether
// the pack fits inside the parent.
func packAt(parent *Circle, children []*Circle, gap float64) ([][2]float64, bool) {
	half := gap / 2
	grown := make([]*Circle, len(children))
	for i, c := range children {
		grown[i] = &Circle{R: c.R + half}
	}
	// the real circles end half short of the grown enclosure
	e := packSiblings(grown)
	if e-half > parent.R+tolerance {
		return nil, false
	}
	out := make([][2]float64, len(children))
	for i, p := range grown {
		out[i] = [2]float64{parent.X + p.X, parent.Y + p.Y}
	}
	return out, true
}

// repackWithin returns the fitting tangential pack with the largest gap up to
// margin, narrowing the gap by bisection when margin itself does not fit.
func repackWithin(parent *Circle, children []*Circle, margin float64) ([][2]float64, bool) {
	if pos, ok := packAt(parent, children, margin); ok {
		return pos, true
	}
	best, ok := packAt(parent, children, 0)
	if !ok {
		return nil, false
	}
	lo, hi := 0.0, margin
	for i := 0; i < repackBisections; i++ {
		mid := (lo + hi) / 2
		if pos, fits := packAt(parent, children, mid); fits {
			best, lo = pos, mid
		} else {
			hi = mid
		}
	}
	return best, true
}

// Valid reports whether children are pairwise at least margin apart and each
// fits inside parent.
func Valid(parent *Circle, children []*Circle, margin float64) bool {
	for i, a := range children {
		if math.Hypot(a.X-parent.X, a.Y-parent.Y)+a.R > parent.R+tolerance {
			return false
		}
		for _, b := range children[i+1:] {
			if math.Hypot(b.X-a.X, b.Y-a.Y) < a.R+b.R+margin-tolerance {
				return false
			}
		}
	}
	return true
}

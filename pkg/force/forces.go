package force

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

// Force constants.
const (
	LinkStrength   = 0.8
	CenterStrength = 0.1
	Theta          = 0.9 // Barnes-Hut accuracy; larger is coarser and faster

	// distances below this are treated as coincident and skipped
	epsilon = 1e-9
)

// LinkDistance is the rest length of each link kind before size scaling.
var LinkDistance = map[graph.LinkKind]float64{
	graph.LinkKindMain:   200,
	graph.LinkKindBranch: 120,
	graph.LinkKindTopic:  80,
}

// body is the simulation mirror of one node.
type body struct {
	node     graph.Node
	x, y     float64
	vx, vy   float64
	fx, fy   float64
	pinned   bool
	locked   bool // pinned to the centre as the synthetic parent
	radius   float64
	strength float64
}

// Coord2 and Mass make a body a barneshut.Particle2. Mass is the repulsion
// magnitude, so aggregated cells are centred on their combined charge.
func (b *body) Coord2() r2.Vec { return r2.Vec{X: b.x, Y: b.y} }
func (b *body) Mass() float64  { return math.Max(-b.strength, 0) }

// spring is a resolved link between two bodies.
type spring struct {
	source, target int
	distance       float64
	bias           float64 // share of the correction applied to the target
}

func newSprings(links []graph.Link, index map[string]int, n int, distanceScale float64) []spring {
	count := make([]int, n)
	for _, l := range links {
		count[index[l.Source]]++
		count[index[l.Target]]++
	}
	springs := make([]spring, 0, len(links))
	for _, l := range links {
		s, t := index[l.Source], index[l.Target]
		springs = append(springs, spring{
			source:   s,
			target:   t,
			distance: LinkDistance[l.Kind.OrDefault()] * distanceScale,
			bias:     float64(count[s]) / float64(count[s]+count[t]),
		})
	}
	return springs
}

func (s *Simulation) applyLinks() {
	for _, sp := range s.springs {
		src, tgt := s.bodies[sp.source], s.bodies[sp.target]
		x := tgt.x + tgt.vx - src.x - src.vx
		y := tgt.y + tgt.vy - src.y - src.vy
		l := math.Sqrt(x*x + y*y)
		if l < epsilon {
			continue
		}
		k := (l - sp.distance) / l * s.alpha * LinkStrength
		x, y = x*k, y*k
		tgt.vx -= x * sp.bias
		tgt.vy -= y * sp.bias
		src.vx += x * (1 - sp.bias)
		src.vy += y * (1 - sp.bias)
	}
}

// applyCharge adds pairwise repulsion, approximated with a Barnes-Hut tree.
func (s *Simulation) applyCharge() {
	if len(s.bodies) < 2 {
		return
	}
	alpha := s.alpha
	repel := func(p1, p2 barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		if p2 != nil && p1 == p2 {
			return r2.Vec{}
		}
		l2 := v.X*v.X + v.Y*v.Y
		if l2 < epsilon {
			return r2.Vec{}
		}
		if l2 < 1 {
			l2 = math.Sqrt(l2)
		}
		k := -m2 * alpha / l2
		return r2.Vec{X: v.X * k, Y: v.Y * k}
	}

	particles := make([]barneshut.Particle2, len(s.bodies))
	for i, b := range s.bodies {
		particles[i] = b
	}
	var plane *barneshut.Plane
	if !s.hasCoincident() {
		var err error
		plane, err = barneshut.NewPlane(particles)
		if err != nil {
			s.logger.Debug("falling back to exact charge", zap.Error(err))
			plane = nil
		}
	}

	forces := make([]r2.Vec, len(s.bodies))
	for i, b := range s.bodies {
		if plane != nil {
			forces[i] = plane.ForceOn(b, Theta, repel)
			continue
		}
		for _, other := range s.bodies {
			if other == b {
				continue
			}
			f := repel(b, other, b.Mass(), other.Mass(), r2.Vec{X: other.x - b.x, Y: other.y - b.y})
			forces[i].X += f.X
			forces[i].Y += f.Y
		}
	}
	for i, b := range s.bodies {
		b.vx += forces[i].X
		b.vy += forces[i].Y
	}
}

// hasCoincident reports whether two bodies share exact coordinates, which a
// quadtree cannot separate.
func (s *Simulation) hasCoincident() bool {
	seen := make(map[[2]float64]struct{}, len(s.bodies))
	for _, b := range s.bodies {
		k := [2]float64{b.x, b.y}
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}

// applyCenter shifts every body so the mean position moves toward the centre.
func (s *Simulation) applyCenter() {
	if len(s.bodies) == 0 {
		return
	}
	var sx, sy float64
	for _, b := range s.bodies {
		sx += b.x
		sy += b.y
	}
	n := float64(len(s.bodies))
	sx = (sx/n - s.centerX) * CenterStrength
	sy = (sy/n - s.centerY) * CenterStrength
	for _, b := range s.bodies {
		b.x -= sx
		b.y -= sy
	}
}

// applyCollide pushes apart bodies whose predicted positions are closer than
// the sum of their collision radii. Larger bodies move less.
func (s *Simulation) applyCollide() {
	if len(s.bodies) < 2 {
		return
	}
	var maxR float64
	for _, b := range s.bodies {
		maxR = math.Max(maxR, b.radius)
	}
	if maxR <= 0 {
		return
	}
	cell := 2 * maxR
	key := func(x, y float64) [2]int {
		return [2]int{int(math.Floor(x / cell)), int(math.Floor(y / cell))}
	}

	grid := make(map[[2]int][]int)
	for i, b := range s.bodies {
		k := key(b.x+b.vx, b.y+b.vy)
		grid[k] = append(grid[k], i)
	}

	for i, a := range s.bodies {
		xi, yi := a.x+a.vx, a.y+a.vy
		ri2 := a.radius * a.radius
		k := key(xi, yi)
		for gx := k[0] - 1; gx <= k[0]+1; gx++ {
			for gy := k[1] - 1; gy <= k[1]+1; gy++ {
				for _, j := range grid[[2]int{gx, gy}] {
					if j <= i {
						continue
					}
					b := s.bodies[j]
					r := a.radius + b.radius
					x := xi - b.x - b.vx
					y := yi - b.y - b.vy
					l := x*x + y*y
					if l >= r*r || l < epsilon {
						continue
					}
					l = math.Sqrt(l)
					l = (r - l) / l
					x, y = x*l, y*l
					rj2 := b.radius * b.radius
					w := rj2 / (ri2 + rj2)
					a.vx += x * w
					a.vy += y * w
					b.vx -= x * (1 - w)
					b.vy -= y * (1 - w)
				}
			}
		}
	}
}

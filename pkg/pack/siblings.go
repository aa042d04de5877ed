package pack

import "math"

const epsilon = 1e-9

// chainNode is one link of the circular front chain used while packing
// siblings.
type chainNode struct {
	c          *Circle
	next, prev *chainNode
}

// packSiblings places circles tangent to one another around the origin using
// the front-chain algorithm, then recentres them on their enclosing circle.
// Only X and Y are written; R is read. It returns the enclosing radius.
func packSiblings(circles []*Circle) float64 {
	n := len(circles)
	if n == 0 {
		return 0
	}

	a := circles[0]
	a.X, a.Y = 0, 0
	if n == 1 {
		return a.R
	}

	b := circles[1]
	a.X = -b.R
	b.X, b.Y = a.R, 0
	if n == 2 {
		return a.R + b.R
	}

	place(b, a, circles[2])

	na := &chainNode{c: a}
	nb := &chainNode{c: b}
	nc := &chainNode{c: circles[2]}
	na.next, nc.prev = nb, nb
	nb.next, na.prev = nc, nc
	nc.next, nb.prev = na, na

pack:
	for i := 3; i < n; i++ {
		c := circles[i]
		place(na.c, nb.c, c)
		nc = &chainNode{c: c}

		// find the closest intersecting circle on the front chain, if any
		j, k := nb.next, na.prev
		sj, sk := nb.c.R, na.c.R
		for {
			if sj <= sk {
				if intersects(j.c, c) {
					nb = j
					na.next, nb.prev = nb, na
					i--
					continue pack
				}
				sj += j.c.R
				j = j.next
			} else {
				if intersects(k.c, c) {
					na = k
					na.next, nb.prev = nb, na
					i--
					continue pack
				}
				sk += k.c.R
				k = k.prev
			}
			if j == k.next {
				break
			}
		}

		nc.prev, nc.next = na, nb
		na.next, nb.prev = nc, nc
		nb = nc

		// the new pair to extend from is the one closest to the origin
		best := score(na)
		for cur := nc.next; cur != nb; cur = cur.next {
			if s := score(cur); s < best {
				na, best = cur, s
			}
		}
		nb = na.next
	}

	front := []disc{toDisc(nb.c)}
	for cur := nb.next; cur != nb; cur = cur.next {
		front = append(front, toDisc(cur.c))
	}
	e := enclose(front)

	for _, c := range circles {
		c.X -= e.X
		c.Y -= e.Y
	}
	return e.R
}

// place positions c tangent to both a and b.
func place(b, a, c *Circle) {
	dx, dy := b.X-a.X, b.Y-a.Y
	d2 := dx*dx + dy*dy
	if d2 == 0 {
		c.X, c.Y = a.X+c.R, a.Y
		return
	}

	a2 := (a.R + c.R) * (a.R + c.R)
	b2 := (b.R + c.R) * (b.R + c.R)
	if a2 > b2 {
		x := (d2 + b2 - a2) / (2 * d2)
		y := math.Sqrt(math.Max(0, b2/d2-x*x))
		c.X = b.X - x*dx - y*dy
		c.Y = b.Y - x*dy + y*dx
		return
	}
	x := (d2 + a2 - b2) / (2 * d2)
	y := math.Sqrt(math.Max(0, a2/d2-x*x))
	c.X = a.X + x*dx - y*dy
	c.Y = a.Y + x*dy + y*dx
}

func intersects(a, b *Circle) bool {
	dr := a.R + b.R - 1e-6
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

// score is the squared distance from the origin to the weighted midpoint of a
// front-chain pair.
func score(n *chainNode) float64 {
	a, b := n.c, n.next.c
	ab := a.R + b.R
	if ab == 0 {
		x, y := (a.X+b.X)/2, (a.Y+b.Y)/2
		return x*x + y*y
	}
	dx := (a.X*b.R + b.X*a.R) / ab
	dy := (a.Y*b.R + b.Y*a.R) / ab
	return dx*dx + dy*dy
}

func toDisc(c *Circle) disc {
	return disc{X: c.X, Y: c.Y, R: c.R}
}

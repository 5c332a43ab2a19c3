package contour

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"
	"gonum.org/v1/gonum/spatial/r2"
)

// signedArea is the shoelace area of c, positive when counter-clockwise.
func signedArea(c polyclip.Contour) float64 {
	var a float64
	for i := range c {
		p, q := c[i], c[(i+1)%len(c)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// inside reports whether the ring inner lies within outer. Rings from a
// union never cross, so a vote over inner's vertices settles touching
// vertices, for which Contains may go either way.
func inside(inner, outer polyclip.Contour) bool {
	votes := 0
	for _, p := range inner {
		if outer.Contains(p) {
			votes++
		} else {
			votes--
		}
	}
	return votes > 0
}

// largestRegion classifies the contours of a union result into exteriors
// and holes by nesting depth and returns the exterior whose area, minus
// its direct holes, is largest.
func largestRegion(p polyclip.Polygon) (polyclip.Contour, float64) {
	n := len(p)
	area := make([]float64, n)
	for i, c := range p {
		area[i] = math.Abs(signedArea(c))
	}

	depth := make([]int, n)
	parent := make([]int, n)
	for i := range p {
		parent[i] = -1
		for j := range p {
			if i == j || area[j] <= area[i] || !inside(p[i], p[j]) {
				continue
			}
			depth[i]++
			if parent[i] < 0 || area[j] < area[parent[i]] {
				parent[i] = j
			}
		}
	}

	region := make([]float64, n)
	for i := range p {
		if depth[i]%2 == 0 {
			region[i] += area[i]
		} else if parent[i] >= 0 {
			region[parent[i]] -= area[i]
		}
	}

	best := -1
	for i := range p {
		if depth[i]%2 != 0 || len(p[i]) < 3 {
			continue
		}
		if best < 0 || region[i] > region[best] {
			best = i
		}
	}
	if best < 0 || region[best] <= 0 {
		return nil, 0
	}
	return p[best], region[best]
}

// canonicalRing drops repeated and closing points, winds the ring
// counter-clockwise and rotates it to start at the vertex with the
// smallest X, ties broken by smallest Y. Points within dupTolerance of
// each other count as repeated.
func canonicalRing(c polyclip.Contour) []r2.Vec {
	tol := dupTolerance(c)
	same := func(a, b r2.Vec) bool { return r2.Norm(r2.Sub(a, b)) <= tol }

	ring := make([]r2.Vec, 0, len(c))
	for _, p := range c {
		v := r2.Vec{X: p.X, Y: p.Y}
		if len(ring) > 0 && same(ring[len(ring)-1], v) {
			continue
		}
		ring = append(ring, v)
	}
	for len(ring) > 1 && same(ring[0], ring[len(ring)-1]) {
		ring = ring[:len(ring)-1]
	}

	if signedArea(c) < 0 {
		for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
			ring[i], ring[j] = ring[j], ring[i]
		}
	}

	start := 0
	for i, v := range ring {
		s := ring[start]
		if v.X < s.X || (v.X == s.X && v.Y < s.Y) {
			start = i
		}
	}
	return append(ring[start:len(ring):len(ring)], ring[:start]...)
}

// dupTolerance is the distance below which two ring points are merged,
// relative to the larger side of the ring's bounding box.
func dupTolerance(c polyclip.Contour) float64 {
	if len(c) == 0 {
		return 0
	}
	lo, hi := c[0], c[0]
	for _, p := range c {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return 1e-9 * math.Max(hi.X-lo.X, hi.Y-lo.Y)
}

package contour

import (
	"context"
	"fmt"
	"math"
	"sort"

	polyclip "github.com/ctessum/polyclip-go"
	"github.com/lotuspc25/TangentialCAM/internal/mesh"
	"github.com/lotuspc25/TangentialCAM/internal/progress"
)

// projectTriangles drops Z from every face and keeps the triangles with a
// finite, non-degenerate area above minArea, each wound counter-clockwise.
func projectTriangles(m *mesh.Mesh, minArea float64) []polyclip.Contour {
	out := make([]polyclip.Contour, 0, m.NumFaces())
	for i := 0; i < m.NumFaces(); i++ {
		tri := m.Triangle(i)
		c := polyclip.Contour{
			{X: tri[0].X, Y: tri[0].Y},
			{X: tri[1].X, Y: tri[1].Y},
			{X: tri[2].X, Y: tri[2].Y},
		}
		if !finite(c) {
			continue
		}
		a := signedArea(c)
		if math.Abs(a) <= degenerateArea(c) || math.Abs(a) <= minArea {
			continue
		}
		if a < 0 {
			c[1], c[2] = c[2], c[1]
		}
		out = append(out, c)
	}
	return out
}

// degenerateArea is the area below which a triangle counts as collinear,
// relative to the square of its longest edge.
func degenerateArea(c polyclip.Contour) float64 {
	var longest float64
	for i := range c {
		p, q := c[i], c[(i+1)%len(c)]
		d := (q.X-p.X)*(q.X-p.X) + (q.Y-p.Y)*(q.Y-p.Y)
		longest = math.Max(longest, d)
	}
	return 1e-12 * longest
}

func finite(c polyclip.Contour) bool {
	for _, p := range c {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// union returns the boundary rings of the region covered by tris:
// exteriors counter-clockwise, holes clockwise.
//
// Every triangle is snapped to an integer grid and all edges are split at
// their mutual intersections. A piece of edge is on the boundary when
// triangles cover exactly one of its sides; those pieces are then chained
// into rings. All orientation tests are exact, so coincident and
// near-coincident edges (the top and bottom of a closed solid project onto
// each other) need no special handling.
func union(ctx context.Context, tris []polyclip.Contour, rep progress.Reporter) (polyclip.Polygon, error) {
	rep = progress.OrNop(rep)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("polygon union: %w", err)
	}
	if len(tris) == 0 {
		return nil, nil
	}

	g := newSnapGrid(tris)
	itris := snapTriangles(tris, g)
	if len(itris) == 0 {
		return nil, nil
	}

	segs := buildSegments(itris)
	rep.Report(5, "intersecting edges")
	if err := cutSegments(ctx, segs); err != nil {
		return nil, fmt.Errorf("polygon union: %w", err)
	}

	rep.Report(50, "splitting edges")
	edges := splitSegments(segs)

	rep.Report(60, "tracing boundary")
	arcs, err := boundaryArcs(ctx, edges, itris)
	if err != nil {
		return nil, fmt.Errorf("polygon union: %w", err)
	}

	var out polyclip.Polygon
	for _, r := range chainRings(arcs) {
		r = dropCollinear(r)
		if len(r) < 3 {
			continue
		}
		c := make(polyclip.Contour, len(r))
		for i, p := range r {
			c[i] = g.point(p)
		}
		out = append(out, c)
	}
	rep.Report(100, "tracing boundary")
	return out, nil
}

// gridUnits bounds snapped coordinates to [0, gridUnits], which keeps
// every cross product of doubled coordinates within int64.
const gridUnits = 1 << 26

type ipt struct{ x, y int64 }

func less(a, b ipt) bool { return a.x < b.x || (a.x == b.x && a.y < b.y) }

func sub(a, b ipt) ipt { return ipt{a.x - b.x, a.y - b.y} }

func dbl(a ipt) ipt { return ipt{2 * a.x, 2 * a.y} }

func cross(a, b ipt) int64 { return a.x*b.y - a.y*b.x }

func dot(a, b ipt) int64 { return a.x*b.x + a.y*b.y }

// orient is positive when c lies left of a→b.
func orient(a, b, c ipt) int64 { return cross(sub(b, a), sub(c, a)) }

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

type snapGrid struct {
	min   polyclip.Point
	scale float64
}

// newSnapGrid fits the bounding box of tris onto the grid using a power
// of two scale, so coordinates with short binary fractions snap exactly.
func newSnapGrid(tris []polyclip.Contour) snapGrid {
	lo, hi := tris[0][0], tris[0][0]
	for _, c := range tris {
		for _, p := range c {
			lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
			hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
		}
	}
	g := snapGrid{min: lo, scale: 1}
	if extent := math.Max(hi.X-lo.X, hi.Y-lo.Y); extent > 0 {
		_, e := math.Frexp(gridUnits / extent)
		g.scale = math.Ldexp(1, e-1)
	}
	return g
}

func (g snapGrid) snap(p polyclip.Point) ipt {
	return ipt{
		x: int64(math.Round((p.X - g.min.X) * g.scale)),
		y: int64(math.Round((p.Y - g.min.Y) * g.scale)),
	}
}

func (g snapGrid) point(q ipt) polyclip.Point {
	return polyclip.Point{X: float64(q.x)/g.scale + g.min.X, Y: float64(q.y)/g.scale + g.min.Y}
}

type itri [3]ipt

// snapTriangles snaps tris to g, drops those that collapse and removes
// exact duplicates. Every result is counter-clockwise.
func snapTriangles(tris []polyclip.Contour, g snapGrid) []itri {
	seen := make(map[itri]struct{}, len(tris))
	out := make([]itri, 0, len(tris))
	for _, c := range tris {
		t := itri{g.snap(c[0]), g.snap(c[1]), g.snap(c[2])}
		o := orient(t[0], t[1], t[2])
		if o == 0 {
			continue
		}
		if o < 0 {
			t[1], t[2] = t[2], t[1]
		}
		key := t
		sort.Slice(key[:], func(i, j int) bool { return less(key[i], key[j]) })
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

type owner struct {
	tri int32
	// left is set when the triangle lies left of the edge's a→b.
	left bool
}

// segment is a triangle edge shared by every triangle that owns it, with
// a before b.
type segment struct {
	a, b   ipt
	owners []owner
	cuts   []ipt
}

func buildSegments(tris []itri) []*segment {
	index := make(map[[2]ipt]int, 3*len(tris)/2)
	var segs []*segment
	for t, tri := range tris {
		for k := 0; k < 3; k++ {
			a, b, left := tri[k], tri[(k+1)%3], true
			if less(b, a) {
				a, b, left = b, a, false
			}
			key := [2]ipt{a, b}
			i, ok := index[key]
			if !ok {
				i = len(segs)
				index[key] = i
				segs = append(segs, &segment{a: a, b: b})
			}
			segs[i].owners = append(segs[i].owners, owner{tri: int32(t), left: left})
		}
	}
	return segs
}

func (s *segment) bounds() (lo, hi ipt) {
	return ipt{s.a.x, min(s.a.y, s.b.y)}, ipt{s.b.x, max(s.a.y, s.b.y)}
}

func (s *segment) cutAt(p ipt) {
	if p != s.a && p != s.b {
		s.cuts = append(s.cuts, p)
	}
}

// strictlyWithin reports whether p, collinear with s, lies strictly
// between its endpoints.
func (s *segment) strictlyWithin(p ipt) bool {
	d := sub(s.b, s.a)
	return dot(sub(p, s.a), d) > 0 && dot(sub(p, s.b), d) < 0
}

// intersect records where s and t touch or cross as cut points on both.
func intersect(s, t *segment) {
	d1, d2 := orient(s.a, s.b, t.a), orient(s.a, s.b, t.b)
	d3, d4 := orient(t.a, t.b, s.a), orient(t.a, t.b, s.b)
	if d1 == 0 && s.strictlyWithin(t.a) {
		s.cutAt(t.a)
	}
	if d2 == 0 && s.strictlyWithin(t.b) {
		s.cutAt(t.b)
	}
	if d3 == 0 && t.strictlyWithin(s.a) {
		t.cutAt(s.a)
	}
	if d4 == 0 && t.strictlyWithin(s.b) {
		t.cutAt(s.b)
	}
	if sign(d1)*sign(d2) < 0 && sign(d3)*sign(d4) < 0 {
		u := float64(d3) / float64(d3-d4)
		p := ipt{
			x: s.a.x + int64(math.Round(u*float64(s.b.x-s.a.x))),
			y: s.a.y + int64(math.Round(u*float64(s.b.y-s.a.y))),
		}
		s.cutAt(p)
		t.cutAt(p)
	}
}

// buckets is a uniform grid over the snapped plane used to find
// candidate pairs.
type buckets struct {
	n     int
	cells [][]int32
}

func newBuckets(count int) *buckets {
	n := int(math.Ceil(math.Sqrt(float64(count))))
	n = max(1, min(n, 256))
	return &buckets{n: n, cells: make([][]int32, n*n)}
}

func (b *buckets) cell(v int64) int {
	return max(0, min(int(v*int64(b.n)/(gridUnits+1)), b.n-1))
}

func (b *buckets) at(p ipt) int { return b.cell(p.y)*b.n + b.cell(p.x) }

func (b *buckets) insert(id int32, lo, hi ipt) {
	for cy := b.cell(lo.y); cy <= b.cell(hi.y); cy++ {
		for cx := b.cell(lo.x); cx <= b.cell(hi.x); cx++ {
			b.cells[cy*b.n+cx] = append(b.cells[cy*b.n+cx], id)
		}
	}
}

// cutSegments intersects every pair of segments whose bounding boxes
// overlap. A pair is tested only in the cell holding the lower-left
// corner of that overlap.
func cutSegments(ctx context.Context, segs []*segment) error {
	b := newBuckets(len(segs))
	for i, s := range segs {
		lo, hi := s.bounds()
		b.insert(int32(i), lo, hi)
	}
	for ci, cell := range b.cells {
		if ci%b.n == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for x := 0; x < len(cell); x++ {
			s := segs[cell[x]]
			slo, shi := s.bounds()
			for y := x + 1; y < len(cell); y++ {
				t := segs[cell[y]]
				tlo, thi := t.bounds()
				lo := ipt{max(slo.x, tlo.x), max(slo.y, tlo.y)}
				hi := ipt{min(shi.x, thi.x), min(shi.y, thi.y)}
				if lo.x > hi.x || lo.y > hi.y || b.at(lo) != ci {
					continue
				}
				intersect(s, t)
			}
		}
	}
	return nil
}

// edge is a piece of one or more segments between consecutive cuts.
type edge struct {
	a, b   ipt
	owners []owner
}

func splitSegments(segs []*segment) []*edge {
	index := make(map[[2]ipt]*edge, len(segs))
	var edges []*edge
	for _, s := range segs {
		d := sub(s.b, s.a)
		pts := make([]ipt, 0, len(s.cuts)+2)
		pts = append(pts, s.a)
		pts = append(pts, s.cuts...)
		pts = append(pts, s.b)
		inner := pts[1 : len(pts)-1]
		sort.Slice(inner, func(i, j int) bool {
			return dot(sub(inner[i], s.a), d) < dot(sub(inner[j], s.a), d)
		})

		for i := 1; i < len(pts); i++ {
			u, v := pts[i-1], pts[i]
			if u == v {
				continue
			}
			key, forward := [2]ipt{u, v}, true
			if less(v, u) {
				key, forward = [2]ipt{v, u}, false
			}
			e, ok := index[key]
			if !ok {
				e = &edge{a: key[0], b: key[1]}
				index[key] = e
				edges = append(edges, e)
			}
			for _, o := range s.owners {
				e.owners = append(e.owners, owner{tri: o.tri, left: o.left == forward})
			}
		}
	}
	return edges
}

func (e *edge) owned(tri int32) bool {
	for _, o := range e.owners {
		if o.tri == tri {
			return true
		}
	}
	return false
}

// coverage reports whether any triangle covers the left or the right side
// of e next to its midpoint. Owners are settled by which side of their own
// edge they lie on; other candidates by an exact point test.
func (e *edge) coverage(tris []itri, cands []int32) (left, right bool) {
	for _, o := range e.owners {
		if o.left {
			left = true
		} else {
			right = true
		}
	}
	a, b := dbl(e.a), dbl(e.b)
	m := ipt{e.a.x + e.b.x, e.a.y + e.b.y}
	for _, t := range cands {
		if left && right {
			return
		}
		if e.owned(t) {
			continue
		}
		l, r := sides(tris[t], a, b, m)
		left, right = left || l, right || r
	}
	return
}

// sides reports which sides of a→b the triangle t covers at m. All points
// are in doubled coordinates.
func sides(t itri, a, b, m ipt) (left, right bool) {
	v := [3]ipt{dbl(t[0]), dbl(t[1]), dbl(t[2])}
	on := -1
	for k := 0; k < 3; k++ {
		o := orient(v[k], v[(k+1)%3], m)
		if o < 0 {
			return false, false
		}
		if o == 0 {
			if on >= 0 {
				return true, true
			}
			on = k
		}
	}
	if on < 0 {
		return true, true
	}
	p, q, r := v[on], v[(on+1)%3], v[(on+2)%3]
	if orient(p, q, a) != 0 || orient(p, q, b) != 0 {
		return true, true
	}
	if orient(a, b, r) > 0 {
		return true, false
	}
	return false, true
}

// arc is a boundary edge directed with the covered side on its left.
type arc struct{ from, to ipt }

func boundaryArcs(ctx context.Context, edges []*edge, tris []itri) ([]arc, error) {
	b := newBuckets(len(tris))
	for i, t := range tris {
		lo := ipt{min(t[0].x, t[1].x, t[2].x), min(t[0].y, t[1].y, t[2].y)}
		hi := ipt{max(t[0].x, t[1].x, t[2].x), max(t[0].y, t[1].y, t[2].y)}
		b.insert(int32(i), lo, hi)
	}

	var arcs []arc
	for i, e := range edges {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		mid := ipt{(e.a.x + e.b.x) / 2, (e.a.y + e.b.y) / 2}
		left, right := e.coverage(tris, b.cells[b.at(mid)])
		switch {
		case left && !right:
			arcs = append(arcs, arc{e.a, e.b})
		case right && !left:
			arcs = append(arcs, arc{e.b, e.a})
		}
	}
	return arcs, nil
}

// chainRings links arcs end to start into closed rings. Chains that do
// not close are dropped.
func chainRings(arcs []arc) [][]ipt {
	out := make(map[ipt][]int, len(arcs))
	for i, a := range arcs {
		out[a.from] = append(out[a.from], i)
	}
	used := make([]bool, len(arcs))

	var rings [][]ipt
	for i := range arcs {
		if used[i] {
			continue
		}
		start := arcs[i].from
		var ring []ipt
		for cur := i; cur >= 0; {
			used[cur] = true
			ring = append(ring, arcs[cur].from)
			if arcs[cur].to == start {
				rings = append(rings, ring)
				break
			}
			cur = nextArc(arcs, out[arcs[cur].to], cur, used)
		}
	}
	return rings
}

// nextArc picks the unused arc leaving the end of arcs[in] with the
// sharpest left turn, which keeps regions that touch at a vertex apart.
func nextArc(arcs []arc, cands []int, in int, used []bool) int {
	d := sub(arcs[in].to, arcs[in].from)
	best, bestTurn := -1, 0.0
	for _, c := range cands {
		if used[c] {
			continue
		}
		w := sub(arcs[c].to, arcs[c].from)
		turn := math.Atan2(float64(cross(d, w)), float64(dot(d, w)))
		if best < 0 || turn > bestTurn {
			best, bestTurn = c, turn
		}
	}
	return best
}

// dropCollinear removes vertices lying on a straight run.
func dropCollinear(ring []ipt) []ipt {
	n := len(ring)
	out := make([]ipt, 0, n)
	for i, p := range ring {
		prev, next := ring[(i+n-1)%n], ring[(i+1)%n]
		if orient(prev, p, next) == 0 && dot(sub(p, prev), sub(next, p)) > 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

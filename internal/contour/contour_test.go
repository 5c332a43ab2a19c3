package contour

import (
	"context"
	"math"
	"sort"
	"testing"

	polyclip "github.com/ctessum/polyclip-go"
	"github.com/lotuspc25/TangentialCAM/internal/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// square returns two triangles covering [x0,x0+size]² at height z.
func square(x0, y0, size, z float64) [][3]r3.Vec {
	a := r3.Vec{X: x0, Y: y0, Z: z}
	b := r3.Vec{X: x0 + size, Y: y0, Z: z}
	c := r3.Vec{X: x0 + size, Y: y0 + size, Z: z}
	d := r3.Vec{X: x0, Y: y0 + size, Z: z}
	return [][3]r3.Vec{{a, b, c}, {a, c, d}}
}

// grid returns an n×n grid of unit cells with a bump in the middle.
func grid(n int) [][3]r3.Vec {
	var tris [][3]r3.Vec
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			tris = append(tris, square(float64(i), float64(j), 1, math.Sin(float64(i+j)))...)
		}
	}
	return tris
}

// box returns a closed axis-aligned box; its side walls project to
// zero-area triangles.
func box(w, h, d float64) [][3]r3.Vec {
	v := func(x, y, z float64) r3.Vec { return r3.Vec{X: x * w, Y: y * h, Z: z * d} }
	quads := [][4]r3.Vec{
		{v(0, 0, 0), v(0, 1, 0), v(1, 1, 0), v(1, 0, 0)}, // bottom
		{v(0, 0, 1), v(1, 0, 1), v(1, 1, 1), v(0, 1, 1)}, // top
		{v(0, 0, 0), v(1, 0, 0), v(1, 0, 1), v(0, 0, 1)},
		{v(1, 0, 0), v(1, 1, 0), v(1, 1, 1), v(1, 0, 1)},
		{v(1, 1, 0), v(0, 1, 0), v(0, 1, 1), v(1, 1, 1)},
		{v(0, 1, 0), v(0, 0, 0), v(0, 0, 1), v(0, 1, 1)},
	}
	var tris [][3]r3.Vec
	for _, q := range quads {
		tris = append(tris, [3]r3.Vec{q[0], q[1], q[2]}, [3]r3.Vec{q[0], q[2], q[3]})
	}
	return tris
}

// frame returns a 3×3 square with a 1×1 hole in the middle.
func frame() [][3]r3.Vec {
	o := []r3.Vec{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}, {X: 0, Y: 3}}
	in := []r3.Vec{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}}
	var tris [][3]r3.Vec
	for k := 0; k < 4; k++ {
		a, b := o[k], o[(k+1)%4]
		c, d := in[(k+1)%4], in[k]
		tris = append(tris, [3]r3.Vec{a, b, c}, [3]r3.Vec{a, c, d})
	}
	return tris
}

// sphere returns a closed UV sphere with seg longitudes and seg/2
// latitude bands; its top and bottom halves project onto each other.
func sphere(seg int, r float64) [][3]r3.Vec {
	bands := seg / 2
	p := func(i, j int) r3.Vec {
		th := math.Pi * float64(j) / float64(bands)
		ph := 2 * math.Pi * float64(i%seg) / float64(seg)
		return r3.Vec{X: r * math.Sin(th) * math.Cos(ph), Y: r * math.Sin(th) * math.Sin(ph), Z: r * math.Cos(th)}
	}
	var tris [][3]r3.Vec
	for j := 0; j < bands; j++ {
		for i := 0; i < seg; i++ {
			a, b, c, d := p(i, j), p(i+1, j), p(i+1, j+1), p(i, j+1)
			tris = append(tris, [3]r3.Vec{a, d, c}, [3]r3.Vec{a, c, b})
		}
	}
	return tris
}

// cylinder returns a closed, capped cylinder along Z.
func cylinder(seg int, r, h float64) [][3]r3.Vec {
	p := func(i int, z float64) r3.Vec {
		ph := 2 * math.Pi * float64(i%seg) / float64(seg)
		return r3.Vec{X: r * math.Cos(ph), Y: r * math.Sin(ph), Z: z}
	}
	bottom, top := r3.Vec{}, r3.Vec{Z: h}
	var tris [][3]r3.Vec
	for i := 0; i < seg; i++ {
		a, b, c, d := p(i, 0), p(i+1, 0), p(i+1, h), p(i, h)
		tris = append(tris,
			[3]r3.Vec{a, b, c}, [3]r3.Vec{a, c, d},
			[3]r3.Vec{bottom, b, a}, [3]r3.Vec{top, d, c},
		)
	}
	return tris
}

func shift(tris [][3]r3.Vec, d r3.Vec) [][3]r3.Vec {
	out := make([][3]r3.Vec, len(tris))
	for i, tri := range tris {
		for k := range tri {
			out[i][k] = r3.Add(tri[k], d)
		}
	}
	return out
}

func extract(t *testing.T, tris [][3]r3.Vec, opt Options) ([]r2.Vec, error) {
	t.Helper()
	return Extract(context.Background(), mesh.FromTriangles(tris), opt, nil)
}

func TestUnitSquare(t *testing.T) {
	ring, err := extract(t, square(0, 0, 1, 0), Options{Decimate: 1})
	require.NoError(t, err)
	require.Len(t, ring, 4)

	assert.Equal(t, r2.Vec{X: 0, Y: 0}, ring[0])
	assert.Equal(t, r2.Vec{X: 1, Y: 0}, ring[1])
	assert.Equal(t, r2.Vec{X: 1, Y: 1}, ring[2])
	assert.Equal(t, r2.Vec{X: 0, Y: 1}, ring[3])
}

func TestBoundingBoxMatchesMesh(t *testing.T) {
	for name, tris := range map[string][][3]r3.Vec{
		"grid":  grid(6),
		"box":   box(4, 2, 3),
		"frame": frame(),
	} {
		t.Run(name, func(t *testing.T) {
			m := mesh.FromTriangles(tris)
			ring, err := Extract(context.Background(), m, Options{MinArea: 0.0001, Decimate: 1}, nil)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(ring), 3)

			mb := m.Bounds()
			rb := bounds(ring)
			assert.InDelta(t, mb.Min.X, rb.Min.X, 1e-9)
			assert.InDelta(t, mb.Min.Y, rb.Min.Y, 1e-9)
			assert.InDelta(t, mb.Max.X, rb.Max.X, 1e-9)
			assert.InDelta(t, mb.Max.Y, rb.Max.Y, 1e-9)
			assert.Greater(t, ringArea(ring), 0.0, "ring must be counter-clockwise")
		})
	}
}

// The outline of a convex solid is the convex hull of its projected
// vertices, whatever the orientation.
func TestClosedSolidOutline(t *testing.T) {
	for name, m := range map[string]*mesh.Mesh{
		"sphere16":        mesh.FromTriangles(sphere(16, 10)),
		"sphere32":        mesh.FromTriangles(sphere(32, 10)),
		"sphere64":        mesh.FromTriangles(sphere(64, 10)),
		"tilted sphere":   mesh.FromTriangles(sphere(32, 10)).Transform(mesh.Compose(30, 20, 10, 1)),
		"cylinder":        mesh.FromTriangles(cylinder(24, 5, 20)),
		"tilted cylinder": mesh.FromTriangles(cylinder(24, 5, 20)).Transform(mesh.Compose(35, 20, 0, 1)),
		"tilted box":      mesh.FromTriangles(box(4, 2, 3)).Transform(mesh.Compose(25, 15, 30, 1)),
	} {
		t.Run(name, func(t *testing.T) {
			ring, err := Extract(context.Background(), m, Options{MinArea: 1e-4, Decimate: 1}, nil)
			require.NoError(t, err)

			want := hullArea(m.Vertices())
			assert.InDelta(t, want, ringArea(ring), 1e-3*want)

			mb, rb := m.Bounds(), bounds(ring)
			assert.InDelta(t, mb.Min.X, rb.Min.X, 1e-5)
			assert.InDelta(t, mb.Min.Y, rb.Min.Y, 1e-5)
			assert.InDelta(t, mb.Max.X, rb.Max.X, 1e-5)
			assert.InDelta(t, mb.Max.Y, rb.Max.Y, 1e-5)
		})
	}
}

func TestSphereAreaMatchesEquator(t *testing.T) {
	for _, seg := range []int{16, 32, 64} {
		ring, err := extract(t, sphere(seg, 10), Options{MinArea: 1e-4, Decimate: 1})
		require.NoError(t, err)

		// the equator is a regular seg-gon of radius 10
		want := float64(seg) / 2 * 100 * math.Sin(2*math.Pi/float64(seg))
		assert.InDelta(t, want, ringArea(ring), 1e-3, "seg=%d", seg)
		assert.Len(t, ring, seg, "seg=%d", seg)
	}
}

// Two bars at different heights crossing in plan give a non-convex
// outline made of pieces of both.
func TestCrossingSolids(t *testing.T) {
	tris := append(shift(box(6, 2, 1), r3.Vec{Y: 2}), shift(box(2, 6, 1), r3.Vec{X: 2, Z: 0.5})...)

	ring, err := extract(t, tris, Options{Decimate: 1})
	require.NoError(t, err)

	// a plus sign: 6×2 and 2×6 overlapping in a 2×2 square
	assert.InDelta(t, 20.0, ringArea(ring), 1e-9)
	assert.Len(t, ring, 12)
	assert.Equal(t, r2.Vec{X: 0, Y: 2}, ring[0])
}

func TestLargestRegionWins(t *testing.T) {
	tris := append(square(10, 10, 1, 0), square(0, 0, 2, 0)...)
	ring, err := extract(t, tris, Options{Decimate: 1})
	require.NoError(t, err)

	rb := bounds(ring)
	assert.Equal(t, r2.Vec{X: 0, Y: 0}, rb.Min)
	assert.Equal(t, r2.Vec{X: 2, Y: 2}, rb.Max)
}

func TestFrameAreaExcludesHole(t *testing.T) {
	polys := projectTriangles(mesh.FromTriangles(frame()), 0)
	merged, err := union(context.Background(), polys, nil)
	require.NoError(t, err)

	outer, area := largestRegion(merged)
	require.NotNil(t, outer)
	assert.InDelta(t, 8.0, area, 1e-9)
}

func TestDegenerateOnly(t *testing.T) {
	tri := [3]r3.Vec{{X: 0}, {X: 1}, {X: 2}}
	_, err := extract(t, [][3]r3.Vec{tri}, Options{Decimate: 1})
	assert.ErrorIs(t, err, ErrNoValidGeometry)
}

func TestTriangleMinArea(t *testing.T) {
	_, err := extract(t, square(0, 0, 1, 0), Options{TriangleMinArea: 0.5, Decimate: 1})
	assert.ErrorIs(t, err, ErrNoValidGeometry)
}

func TestAreaTooSmall(t *testing.T) {
	_, err := extract(t, square(0, 0, 1, 0), Options{MinArea: 1.5, Decimate: 1})
	assert.ErrorIs(t, err, ErrAreaTooSmall)
}

func TestEmptyMesh(t *testing.T) {
	_, err := Extract(context.Background(), mesh.FromTriangles(nil), Options{}, nil)
	assert.ErrorIs(t, err, mesh.ErrInvalidMesh)
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Extract(ctx, mesh.FromTriangles(grid(4)), Options{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecimate(t *testing.T) {
	ring := make([]r2.Vec, 10)
	for i := range ring {
		ring[i] = r2.Vec{X: float64(i)}
	}

	assert.Len(t, decimate(ring, 1), 10)
	assert.Equal(t, []r2.Vec{{X: 0}, {X: 3}, {X: 6}, {X: 9}}, decimate(ring, 3))
	// 10 points at step 4 leaves 3, which is not more than 4
	assert.Len(t, decimate(ring, 4), 10)
}

func TestCanonicalRing(t *testing.T) {
	// clockwise, starting mid-edge, with a repeated and a closing point
	c := polyclip.Contour{{X: 1, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	ring := canonicalRing(c)
	assert.Equal(t, []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, ring)

	// near-duplicates are merged too
	c = polyclip.Contour{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10 + 2.4e-15, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 1e-14, Y: 0}}
	ring = canonicalRing(c)
	assert.Equal(t, []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}, ring)
}

func TestInsideUsesContainment(t *testing.T) {
	outer := polyclip.Contour{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}
	hole := polyclip.Contour{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 1}}
	apart := polyclip.Contour{{X: 5, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 1}}
	assert.True(t, inside(hole, outer))
	assert.False(t, inside(outer, hole))
	assert.False(t, inside(apart, outer))

	_, area := largestRegion(polyclip.Polygon{hole, outer})
	assert.InDelta(t, 15.0, area, 1e-12)
}

func bounds(ring []r2.Vec) r2.Box {
	b := r2.Box{Min: ring[0], Max: ring[0]}
	for _, v := range ring {
		b.Min = r2.Vec{X: math.Min(b.Min.X, v.X), Y: math.Min(b.Min.Y, v.Y)}
		b.Max = r2.Vec{X: math.Max(b.Max.X, v.X), Y: math.Max(b.Max.Y, v.Y)}
	}
	return b
}

// hullArea is the area of the convex hull of the XY projection of vs.
func hullArea(vs []r3.Vec) float64 {
	pts := make([]r2.Vec, len(vs))
	for i, v := range vs {
		pts[i] = r2.Vec{X: v.X, Y: v.Y}
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	turn := func(o, a, b r2.Vec) float64 { return r2.Cross(r2.Sub(a, o), r2.Sub(b, o)) }

	var hull []r2.Vec
	for pass := 0; pass < 2; pass++ {
		start := len(hull)
		for _, p := range pts {
			for len(hull) >= start+2 && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
				hull = hull[:len(hull)-1]
			}
			hull = append(hull, p)
		}
		hull = hull[:len(hull)-1]
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return ringArea(hull)
}

func ringArea(ring []r2.Vec) float64 {
	var a float64
	for i := range ring {
		p, q := ring[i], ring[(i+1)%len(ring)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

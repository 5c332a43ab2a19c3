// Package surface samples mesh heights below 2-D path points.
package surface

import (
	"errors"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoVertices is returned when an index is built over no vertices.
var ErrNoVertices = errors.New("surface: no vertices to index")

// Index answers nearest-vertex queries in the XY plane. Ties between
// equidistant vertices resolve to the lowest vertex index, which is what
// a linear scan over the vertex list would return.
type Index struct {
	tree *kdtree.Tree
	z    []float64
}

// NewIndex builds an Index over the XY projection of vertices.
func NewIndex(vertices []r3.Vec) (*Index, error) {
	if len(vertices) == 0 {
		return nil, ErrNoVertices
	}
	pts := make(points, len(vertices))
	z := make([]float64, len(vertices))
	for i, v := range vertices {
		pts[i] = point{Vec: r2.Vec{X: v.X, Y: v.Y}, idx: i}
		z[i] = v.Z
	}
	return &Index{tree: kdtree.New(pts, false), z: z}, nil
}

// Nearest returns the index and Z of the vertex closest to p in XY.
func (ix *Index) Nearest(p r2.Vec) (int, float64) {
	q := point{Vec: p}
	got, d := ix.tree.Nearest(q)
	best := got.(point).idx

	// collect every vertex at the same distance to pick the lowest index
	keep := kdtree.NewDistKeeper(d)
	ix.tree.NearestSet(keep, q)
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		if i := c.Comparable.(point).idx; i < best {
			best = i
		}
	}
	return best, ix.z[best]
}

type point struct {
	r2.Vec
	idx int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		panic("illegal dimension")
	}
}

func (p point) Dims() int { return 2 }

// Distance is the squared XY distance.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	return r2.Norm2(r2.Sub(p.Vec, q.Vec))
}

type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{points: p, Dim: d}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts points along a single dimension.
type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.points[i].X < p.points[j].X
	case 1:
		return p.points[i].Y < p.points[j].Y
	default:
		panic("illegal dimension")
	}
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}

// Package mesh holds the immutable triangle-soup surface the toolpath is
// generated from, and the rigid/scaled transforms applied to it.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidMesh is returned for meshes without vertices or faces, or with
// faces that index outside the vertex list.
var ErrInvalidMesh = errors.New("invalid mesh")

// Face is a triangle given as three indices into the vertex list.
type Face [3]int

// Mesh is an ordered list of vertex positions and triangular faces.
// A Mesh is never modified after construction; Transform returns a new one.
type Mesh struct {
	vertices []r3.Vec
	faces    []Face
}

// New returns a Mesh holding copies of vertices and faces.
func New(vertices []r3.Vec, faces []Face) (*Mesh, error) {
	for i, f := range faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("%w: face %d references vertex %d of %d", ErrInvalidMesh, i, idx, len(vertices))
			}
		}
	}
	return &Mesh{
		vertices: append([]r3.Vec(nil), vertices...),
		faces:    append([]Face(nil), faces...),
	}, nil
}

// FromTriangles welds bit-identical corner positions into shared vertices,
// keeping the first occurrence of each position.
func FromTriangles(tris [][3]r3.Vec) *Mesh {
	m := &Mesh{faces: make([]Face, 0, len(tris))}
	cache := make(map[r3.Vec]int)
	for _, tri := range tris {
		var f Face
		for j, v := range tri {
			idx, ok := cache[v]
			if !ok {
				idx = len(m.vertices)
				cache[v] = idx
				m.vertices = append(m.vertices, v)
			}
			f[j] = idx
		}
		m.faces = append(m.faces, f)
	}
	return m
}

func (m *Mesh) NumVertices() int { return len(m.vertices) }
func (m *Mesh) NumFaces() int    { return len(m.faces) }

func (m *Mesh) Vertex(i int) r3.Vec { return m.vertices[i] }
func (m *Mesh) Face(i int) Face     { return m.faces[i] }

// Vertices returns a copy of the vertex positions.
func (m *Mesh) Vertices() []r3.Vec { return append([]r3.Vec(nil), m.vertices...) }

// Faces returns a copy of the face list.
func (m *Mesh) Faces() []Face { return append([]Face(nil), m.faces...) }

// Triangle returns the corner positions of face i.
func (m *Mesh) Triangle(i int) [3]r3.Vec {
	f := m.faces[i]
	return [3]r3.Vec{m.vertices[f[0]], m.vertices[f[1]], m.vertices[f[2]]}
}

// Empty reports whether the mesh has no vertices or no faces.
func (m *Mesh) Empty() bool {
	return m == nil || len(m.vertices) == 0 || len(m.faces) == 0
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *Mesh) Bounds() r3.Box {
	if len(m.vertices) == 0 {
		return r3.Box{}
	}
	b := r3.Box{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, v := range m.vertices {
		b.Min = r3.Vec{X: math.Min(b.Min.X, v.X), Y: math.Min(b.Min.Y, v.Y), Z: math.Min(b.Min.Z, v.Z)}
		b.Max = r3.Vec{X: math.Max(b.Max.X, v.X), Y: math.Max(b.Max.Y, v.Y), Z: math.Max(b.Max.Z, v.Z)}
	}
	return b
}

// Transform returns a new mesh with every vertex mapped through t. Faces
// are shared with m since neither mesh ever modifies them.
func (m *Mesh) Transform(t Transform) *Mesh {
	out := &Mesh{
		vertices: make([]r3.Vec, len(m.vertices)),
		faces:    m.faces,
	}
	for i, v := range m.vertices {
		out.vertices[i] = t.Apply(v)
	}
	return out
}

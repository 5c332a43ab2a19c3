package mesh

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/hschendel/stl"
	"gonum.org/v1/gonum/spatial/r3"
)

// LoadSTL reads an ASCII or binary STL file into a welded Mesh.
func LoadSTL(path string) (*Mesh, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromSolid(solid)
}

// FromSolid converts STL triangles into a Mesh, rejecting non-finite
// vertex coordinates.
func FromSolid(solid *stl.Solid) (*Mesh, error) {
	if solid == nil || len(solid.Triangles) == 0 {
		return nil, fmt.Errorf("%w: STL contains no triangles", ErrInvalidMesh)
	}
	tris := make([][3]r3.Vec, len(solid.Triangles))
	for i, t := range solid.Triangles {
		for j, v := range t.Vertices {
			if bad3F32(v) {
				return nil, fmt.Errorf("%w: triangle %d: %v", ErrInvalidMesh, i, errBadVertex)
			}
			tris[i][j] = r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
		}
	}
	return FromTriangles(tris), nil
}

var errBadVertex = errors.New("inf/NaN STL triangle vertex")

func bad3F32(f stl.Vec3) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

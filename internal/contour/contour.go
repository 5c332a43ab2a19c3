// Package contour projects a mesh onto the XY plane and extracts the
// exterior boundary of the largest connected region of the projection.
package contour

import (
	"context"
	"errors"
	"fmt"

	"github.com/lotuspc25/TangentialCAM/internal/mesh"
	"github.com/lotuspc25/TangentialCAM/internal/progress"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrNoValidGeometry = errors.New("no valid triangle polygon")
	ErrRegionNotFound  = errors.New("outer region not found")
	ErrAreaTooSmall    = errors.New("outer region area too small")
)

// Options controls which geometry takes part in the union and how the
// resulting boundary is thinned.
type Options struct {
	// MinArea rejects the selected region when its area is below it.
	// Zero disables the check.
	MinArea float64
	// TriangleMinArea discards projected triangles whose area is at or
	// below it. Zero-area triangles are always discarded.
	TriangleMinArea float64
	// Decimate keeps every Decimate-th boundary point. Values below 2
	// keep every point.
	Decimate int
}

// Extract returns the exterior ring of the largest region of the union of
// all XY-projected faces of m. The ring is counter-clockwise, has no
// closing duplicate point and starts at its lowest-leftmost vertex.
func Extract(ctx context.Context, m *mesh.Mesh, opt Options, rep progress.Reporter) ([]r2.Vec, error) {
	rep = progress.OrNop(rep)
	if m.Empty() {
		return nil, fmt.Errorf("%w: mesh has no vertices or faces", mesh.ErrInvalidMesh)
	}

	rep.Report(0, "projecting triangles")
	tris := projectTriangles(m, opt.TriangleMinArea)
	if len(tris) == 0 {
		return nil, fmt.Errorf("%w: all %d faces are degenerate or below %g", ErrNoValidGeometry, m.NumFaces(), opt.TriangleMinArea)
	}

	rep.Report(10, "merging triangles")
	merged, err := union(ctx, tris, progress.Scaled(rep, 10, 80))
	if err != nil {
		return nil, err
	}

	rep.Report(80, "selecting outer region")
	outer, area := largestRegion(merged)
	if outer == nil {
		return nil, ErrRegionNotFound
	}
	if opt.MinArea > 0 && area < opt.MinArea {
		return nil, fmt.Errorf("%w: %.6f < %.6f", ErrAreaTooSmall, area, opt.MinArea)
	}

	ring := canonicalRing(outer)
	if len(ring) < 3 {
		return nil, fmt.Errorf("%w: boundary collapsed to %d points", ErrRegionNotFound, len(ring))
	}

	ring = decimate(ring, opt.Decimate)
	rep.Report(100, "outline ready")
	return ring, nil
}

// decimate keeps every step-th point starting at index 0 when the thinned
// ring still has more than step points.
func decimate(ring []r2.Vec, step int) []r2.Vec {
	if step <= 1 {
		return ring
	}
	kept := (len(ring) + step - 1) / step
	if kept <= step {
		return ring
	}
	out := make([]r2.Vec, 0, kept)
	for i := 0; i < len(ring); i += step {
		out = append(out, ring[i])
	}
	return out
}

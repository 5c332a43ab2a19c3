package toolpath

import (
	"context"
	"fmt"
	"math"

	"github.com/lotuspc25/TangentialCAM/internal/contour"
	"github.com/lotuspc25/TangentialCAM/internal/mesh"
	"github.com/lotuspc25/TangentialCAM/internal/progress"
	"github.com/lotuspc25/TangentialCAM/internal/surface"
)

// Params are the path generation settings.
type Params struct {
	MinArea         float64
	TriangleMinArea float64
	Decimate        int
	Rotate90        bool
	// DepthFromTop is the knife depth below the surface. Its sign is
	// ignored.
	DepthFromTop float64
}

// Generate runs the whole pipeline: transform, outline, surface sampling,
// knife angles and machine alignment. It either returns a complete
// PathData or an error, never a partial result. ctx is checked between
// stages and periodically while sampling.
func Generate(ctx context.Context, m *mesh.Mesh, t mesh.Transform, p Params, rep progress.Reporter) (*PathData, error) {
	rep = progress.OrNop(rep)
	if m.Empty() {
		return nil, fmt.Errorf("%w: mesh has no vertices or faces", mesh.ErrInvalidMesh)
	}

	checkpoint := func(pct int, msg string) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("generate path: %w", err)
		}
		rep.Report(pct, msg)
		return nil
	}

	if err := checkpoint(5, "applying transform"); err != nil {
		return nil, err
	}
	tm := m.Transform(t)

	if err := checkpoint(15, "computing outline"); err != nil {
		return nil, err
	}
	outline, err := contour.Extract(ctx, tm, contour.Options{
		MinArea:         p.MinArea,
		TriangleMinArea: p.TriangleMinArea,
		Decimate:        p.Decimate,
	}, progress.Scaled(rep, 15, 40))
	if err != nil {
		return nil, err
	}

	if err := checkpoint(40, "sampling surface Z"); err != nil {
		return nil, err
	}
	zs, err := surface.Sample(ctx, tm.Vertices(), outline, progress.Scaled(rep, 40, 70))
	if err != nil {
		return nil, err
	}

	// tool centre sits depth below the sampled surface
	depth := math.Abs(p.DepthFromTop)
	for i := range zs {
		zs[i] -= depth
	}

	if err := checkpoint(70, "computing knife angles"); err != nil {
		return nil, err
	}
	angles, err := Angles(outline, progress.Scaled(rep, 70, 85))
	if err != nil {
		return nil, err
	}

	if err := checkpoint(85, "aligning to machine axes"); err != nil {
		return nil, err
	}
	xy, angles := Align(outline, angles, p.Rotate90)

	pd, err := NewPathData(xy, Some(zs), Some(angles), outline, Meta{
		Rotate90: p.Rotate90,
		Depth:    Some(depth),
	})
	if err != nil {
		return nil, err
	}

	rep.Report(100, "path ready")
	return pd, nil
}

package surface

import (
	"context"
	"fmt"

	"github.com/lotuspc25/TangentialCAM/internal/progress"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// reportEvery is how many points are sampled between progress reports and
// cancellation checks.
const reportEvery = 200

// Sample returns, for every point of pts, the Z of the vertex nearest to it
// in XY. Progress runs 0..100 over the points.
func Sample(ctx context.Context, vertices []r3.Vec, pts []r2.Vec, rep progress.Reporter) ([]float64, error) {
	rep = progress.OrNop(rep)
	ix, err := NewIndex(vertices)
	if err != nil {
		return nil, err
	}

	zs := make([]float64, len(pts))
	n := max(1, len(pts))
	for i, p := range pts {
		if i%reportEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("surface sampling at point %d: %w", i, err)
			}
			rep.Report(100*i/n, "sampling surface Z")
		}
		_, zs[i] = ix.Nearest(p)
	}
	return zs, nil
}

package toolpath

import (
	"fmt"
	"math"

	"github.com/lotuspc25/TangentialCAM/internal/progress"
	"gonum.org/v1/gonum/spatial/r2"
)

// Angles returns the knife angle in degrees at every point of the closed
// contour pts, taken from the chord between its two neighbours. Values are
// raw atan2 output in (-180, 180] and are not unwrapped.
func Angles(pts []r2.Vec, rep progress.Reporter) ([]float64, error) {
	rep = progress.OrNop(rep)
	n := len(pts)
	if n < 2 {
		return nil, fmt.Errorf("%w: %d", ErrInsufficientPoints, n)
	}

	angles := make([]float64, n)
	for i := range pts {
		prev := pts[(i-1+n)%n]
		next := pts[(i+1)%n]
		d := r2.Sub(next, prev)
		angles[i] = math.Atan2(d.Y, d.X) * 180 / math.Pi

		if i%200 == 0 {
			rep.Report(100*i/n, "computing knife angles")
		}
	}
	return angles, nil
}

package toolpath

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Align maps a model-space path onto machine axes. With rotate90 every
// point (x,y) becomes (-y,x) and every angle gains 90°. The result is then
// shifted so that its minimum X and Y are both zero.
func Align(xy []r2.Vec, angles []float64, rotate90 bool) ([]r2.Vec, []float64) {
	xs := make([]float64, len(xy))
	ys := make([]float64, len(xy))
	for i, v := range xy {
		if rotate90 {
			xs[i], ys[i] = -v.Y, v.X
		} else {
			xs[i], ys[i] = v.X, v.Y
		}
	}
	out := append([]float64(nil), angles...)
	if rotate90 {
		floats.AddConst(90, out)
	}

	if len(xy) > 0 {
		floats.AddConst(-floats.Min(xs), xs)
		floats.AddConst(-floats.Min(ys), ys)
	}

	aligned := make([]r2.Vec, len(xy))
	for i := range aligned {
		aligned[i] = r2.Vec{X: xs[i], Y: ys[i]}
	}
	return aligned, out
}

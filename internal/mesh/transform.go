package mesh

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is a 4x4 homogeneous matrix applied to column vectors.
// The zero value of Transform is the identity transform.
type Transform struct {
	// stored with the identity subtracted so that Transform{} is the identity
	d [16]float64
}

// NewTransform returns a Transform populated from 16 values in row-major order.
func NewTransform(rows [16]float64) Transform {
	var t Transform
	for i := range rows {
		t.d[i] = rows[i] - identityAt(i)
	}
	return t
}

// Identity returns the identity transform.
func Identity() Transform { return Transform{} }

func identityAt(i int) float64 {
	if i%5 == 0 {
		return 1
	}
	return 0
}

// At returns the matrix element at row i, column j.
func (t Transform) At(i, j int) float64 {
	k := i*4 + j
	return t.d[k] + identityAt(k)
}

// Rows returns a copy of the matrix in row-major order.
func (t Transform) Rows() [16]float64 {
	var r [16]float64
	for i := range r {
		r[i] = t.d[i] + identityAt(i)
	}
	return r
}

// IsIdentity reports whether t is exactly the identity.
func (t Transform) IsIdentity() bool { return t == Transform{} }

// Mul returns the product t·b, i.e. b is applied first.
func (t Transform) Mul(b Transform) Transform {
	if t.IsIdentity() {
		return b
	}
	if b.IsIdentity() {
		return t
	}
	ra, rb := t.Rows(), b.Rows()
	var m mat.Dense
	m.Mul(mat.NewDense(4, 4, ra[:]), mat.NewDense(4, 4, rb[:]))
	var out [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i*4+j] = m.At(i, j)
		}
	}
	return NewTransform(out)
}

// Apply transforms the point v.
func (t Transform) Apply(v r3.Vec) r3.Vec {
	if t.IsIdentity() {
		return v
	}
	r := t.Rows()
	w := r[12]*v.X + r[13]*v.Y + r[14]*v.Z + r[15]
	if w == 0 {
		w = 1
	}
	return r3.Vec{
		X: (r[0]*v.X + r[1]*v.Y + r[2]*v.Z + r[3]) / w,
		Y: (r[4]*v.X + r[5]*v.Y + r[6]*v.Z + r[7]) / w,
		Z: (r[8]*v.X + r[9]*v.Y + r[10]*v.Z + r[11]) / w,
	}
}

// Translate returns t followed by a translation by v.
func (t Transform) Translate(v r3.Vec) Transform {
	t.d[3] += v.X
	t.d[7] += v.Y
	t.d[11] += v.Z
	return t
}

// Scale returns a uniform scaling transform.
func Scale(k float64) Transform {
	return NewTransform([16]float64{
		k, 0, 0, 0,
		0, k, 0, 0,
		0, 0, k, 0,
		0, 0, 0, 1,
	})
}

// RotateX returns a rotation about the X axis by deg degrees.
func RotateX(deg float64) Transform {
	s, c := math.Sincos(deg * math.Pi / 180)
	return NewTransform([16]float64{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	})
}

// RotateY returns a rotation about the Y axis by deg degrees.
func RotateY(deg float64) Transform {
	s, c := math.Sincos(deg * math.Pi / 180)
	return NewTransform([16]float64{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	})
}

// RotateZ returns a rotation about the Z axis by deg degrees.
func RotateZ(deg float64) Transform {
	s, c := math.Sincos(deg * math.Pi / 180)
	return NewTransform([16]float64{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// Compose builds Scale · Rz · Ry · Rx from rotations in degrees and a
// uniform scale factor. Points are rotated about X first.
func Compose(rotX, rotY, rotZ, scale float64) Transform {
	return Scale(scale).Mul(RotateZ(rotZ)).Mul(RotateY(rotY)).Mul(RotateX(rotX))
}

// equals tests the equality of the Transforms to within a tolerance.
func (t Transform) equals(b Transform, tol float64) bool {
	for i := range t.d {
		if math.Abs(t.d[i]-b.d[i]) > tol {
			return false
		}
	}
	return true
}

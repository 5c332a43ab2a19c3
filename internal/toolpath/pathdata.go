// Package toolpath turns a transformed mesh into the knife path of a
// tangential cutting machine.
package toolpath

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrInsufficientPoints = errors.New("not enough points to compute angles")
	ErrInvalidPathData    = errors.New("invalid path data")
)

// Meta records how a path was generated.
type Meta struct {
	Rotate90 bool
	// Depth is the cut depth below the surface, always non-negative.
	Depth Optional[float64]
}

// Values returns the metadata as a key/value map, as written to settings
// files.
func (m Meta) Values() map[string]any {
	v := map[string]any{"rotate_90": m.Rotate90}
	if d, ok := m.Depth.Get(); ok {
		v["depth"] = d
	}
	return v
}

// PathData is the generated cut path. It is never modified after
// construction; every accessor returns a copy.
type PathData struct {
	xy     []r2.Vec
	z      Optional[[]float64]
	angles Optional[[]float64]
	xyGeom []r2.Vec
	meta   Meta
}

// NewPathData validates and copies its inputs. A nil xyGeom defaults to xy.
func NewPathData(xy []r2.Vec, z, angles Optional[[]float64], xyGeom []r2.Vec, meta Meta) (*PathData, error) {
	n := len(xy)
	if n < 2 {
		return nil, fmt.Errorf("%w: %d points, need at least 2", ErrInvalidPathData, n)
	}
	if zs, ok := z.Get(); ok && len(zs) != n {
		return nil, fmt.Errorf("%w: %d z values for %d points", ErrInvalidPathData, len(zs), n)
	}
	if as, ok := angles.Get(); ok && len(as) != n {
		return nil, fmt.Errorf("%w: %d angles for %d points", ErrInvalidPathData, len(as), n)
	}
	if xyGeom == nil {
		xyGeom = xy
	}
	if len(xyGeom) != n {
		return nil, fmt.Errorf("%w: %d geometry points for %d points", ErrInvalidPathData, len(xyGeom), n)
	}

	return &PathData{
		xy:     append([]r2.Vec(nil), xy...),
		z:      copyFloats(z),
		angles: copyFloats(angles),
		xyGeom: append([]r2.Vec(nil), xyGeom...),
		meta:   meta,
	}, nil
}

func copyFloats(o Optional[[]float64]) Optional[[]float64] {
	v, ok := o.Get()
	if !ok {
		return None[[]float64]()
	}
	return Some(append([]float64(nil), v...))
}

func (p *PathData) Len() int { return len(p.xy) }

// XY returns the machine-aligned path.
func (p *PathData) XY() []r2.Vec { return append([]r2.Vec(nil), p.xy...) }

// XYGeom returns the path in model coordinates, before alignment.
func (p *PathData) XYGeom() []r2.Vec { return append([]r2.Vec(nil), p.xyGeom...) }

// Z returns the tool-centre heights.
func (p *PathData) Z() Optional[[]float64] { return copyFloats(p.z) }

// Angles returns the knife angles in degrees.
func (p *PathData) Angles() Optional[[]float64] { return copyFloats(p.angles) }

func (p *PathData) Meta() Meta { return p.meta }

// Bounds returns the bounding box of the machine-aligned path.
func (p *PathData) Bounds() r2.Box {
	b := r2.Box{Min: p.xy[0], Max: p.xy[0]}
	for _, v := range p.xy[1:] {
		b.Min.X = min(b.Min.X, v.X)
		b.Min.Y = min(b.Min.Y, v.Y)
		b.Max.X = max(b.Max.X, v.X)
		b.Max.Y = max(b.Max.Y, v.Y)
	}
	return b
}

// Package preview draws a generated path over a top-down heightmap of the
// model, and charts the path's outline and knife angles.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/lotuspc25/TangentialCAM/internal/mesh"
	"github.com/lotuspc25/TangentialCAM/internal/progress"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var ErrEmptyRaster = errors.New("preview: width and height must be positive")

var (
	pathColor  = color.RGBA{R: 255, A: 255}
	startColor = color.RGBA{G: 255, A: 255}
)

type Options struct {
	Width  int
	Height int
	// Bottom draws the model seen from below.
	Bottom bool
}

// Renderer rasterises a mesh, already in the same coordinates as the path
// to be drawn over it, into a heightmap.
type Renderer struct {
	options   Options
	mesh      *mesh.Mesh
	min       r3.Vec
	mmWidth   float64
	mmHeight  float64
	mmDepth   float64
	heightmap *Heightmap
}

func NewRenderer(m *mesh.Mesh, opt Options) (*Renderer, error) {
	if opt.Width <= 0 || opt.Height <= 0 {
		return nil, ErrEmptyRaster
	}
	if m.Empty() {
		return nil, fmt.Errorf("%w: nothing to render", mesh.ErrInvalidMesh)
	}

	r := Renderer{options: opt, mesh: m}

	// rotate to the required side
	if opt.Bottom {
		r.mesh = m.Transform(mesh.RotateY(180))
	}

	b := r.mesh.Bounds()
	r.min = b.Min
	r.mmWidth = b.Max.X - b.Min.X
	r.mmHeight = b.Max.Y - b.Min.Y
	r.mmDepth = b.Max.Z - b.Min.Z
	r.heightmap = NewHeightmap(opt.Width, opt.Height)

	return &r, nil
}

// Size returns the model extent in mm.
func (r *Renderer) Size() (width, height, depth float64) {
	return r.mmWidth, r.mmHeight, r.mmDepth
}

// Render draws every triangle into the heightmap.
func (r *Renderer) Render(ctx context.Context, rep progress.Reporter) error {
	rep = progress.OrNop(rep)
	n := r.mesh.NumFaces()
	for i := 0; i < n; i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			rep.Report(100*i/n, "drawing triangles")
		}
		t := r.mesh.Triangle(i)
		r.heightmap.DrawTriangle(r.MmToPx(t[0]), r.MmToPx(t[1]), r.MmToPx(t[2]))
	}
	rep.Report(100, "drawing triangles")
	return nil
}

func (r *Renderer) Heightmap() *Heightmap { return r.heightmap }

// MmToPx maps model coordinates to pixel X,Y (Y down) and 0..1 Z.
func (r *Renderer) MmToPx(v r3.Vec) [3]float32 {
	var p [3]float32
	p[0] = float32(scale(v.X-r.min.X, r.mmWidth, r.options.Width))
	p[1] = float32(r.options.Height-1) - float32(scale(v.Y-r.min.Y, r.mmHeight, r.options.Height))
	if r.mmDepth > 0 {
		p[2] = float32((v.Z - r.min.Z) / r.mmDepth)
	} else {
		p[2] = 1
	}
	return p
}

// scale maps 0..mm onto 0..px-1; a flat extent maps to 0.
func scale(d, mm float64, px int) float64 {
	if mm <= 0 {
		return 0
	}
	return d * float64(px-1) / mm
}

// Image returns the heightmap with pts drawn over it as a closed red
// polyline and its first point marked green. pts must be in model
// coordinates; when the model was drawn from below, X is mirrored to
// match.
func (r *Renderer) Image(pts []r2.Vec) *image.RGBA {
	img := r.heightmap.Image()
	if len(pts) == 0 {
		return img
	}

	px := func(v r2.Vec) [3]float32 {
		if r.options.Bottom {
			v.X = -v.X
		}
		return r.MmToPx(r3.Vec{X: v.X, Y: v.Y})
	}
	plot := func(x, y int, _ float32) {
		if (image.Point{X: x, Y: y}).In(img.Rect) {
			img.SetRGBA(x, y, pathColor)
		}
	}
	for i := range pts {
		IterateLine(px(pts[i]), px(pts[(i+1)%len(pts)]), plot)
	}

	s := px(pts[0])
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			x, y := int(s[0])+dx, int(s[1])+dy
			if (image.Point{X: x, Y: y}).In(img.Rect) {
				img.SetRGBA(x, y, startColor)
			}
		}
	}

	return img
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

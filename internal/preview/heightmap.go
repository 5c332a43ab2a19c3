package preview

import (
	"image"
	"image/color"
	"math"
)

// Heightmap is a raster of surface heights in 0..1. Pixels never touched by
// a triangle stay below zero and render black.
type Heightmap struct {
	width, height int
	z             []float32
}

func NewHeightmap(width, height int) *Heightmap {
	hm := Heightmap{width: width, height: height}
	hm.z = make([]float32, width*height)

	// initialise to "no surface"
	for i := range hm.z {
		hm.z[i] = -1
	}

	return &hm
}

// At returns the height at pixel (x, y), or -1 outside the surface.
func (hm *Heightmap) At(x, y int) float32 {
	if x < 0 || x >= hm.width || y < 0 || y >= hm.height {
		return -1
	}
	return hm.z[y*hm.width+x]
}

// Image renders the heightmap as grey levels, brighter being higher.
func (hm *Heightmap) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, hm.width, hm.height))

	for y := 0; y < hm.height; y++ {
		for x := 0; x < hm.width; x++ {
			z := hm.z[y*hm.width+x]
			if z < 0 {
				img.SetRGBA(x, y, color.RGBA{A: 255})
				continue
			}
			if z > 1 {
				z = 1
			}
			// keep the lowest surface visibly above the background
			v := uint8(40 + 215*z)
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	return img
}

// DrawTriangle fills a triangle given in pixel X,Y and 0..1 Z, keeping the
// highest Z per pixel.
func (hm *Heightmap) DrawTriangle(a, b, c [3]float32) {
	// min/max X position for each Y position
	leftX := make(map[int]int)
	rightX := make(map[int]int)
	// Z coordinate for corresponding leftX/rightX
	leftZ := make(map[int]float32)
	rightZ := make(map[int]float32)

	minY := hm.height
	maxY := -1

	// 1. work out where the outline of the triangle is
	perimeterCb := func(x, y int, z float32) {
		cur, got := leftX[y]
		if !got || x < cur {
			leftX[y] = x
			leftZ[y] = z
		}
		cur, got = rightX[y]
		if !got || x > cur {
			rightX[y] = x
			rightZ[y] = z
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	IterateLine(a, b, perimeterCb)
	IterateLine(b, c, perimeterCb)
	IterateLine(c, a, perimeterCb)

	// 2. fill in scanlines, clipped to the raster
	minY = max(minY, 0)
	maxY = min(maxY, hm.height-1)
	for y := minY; y <= maxY; y++ {
		startX, ok := leftX[y]
		if !ok {
			continue
		}
		endX := rightX[y]
		startZ := leftZ[y]
		endZ := rightZ[y]
		dx := float32(endX - startX)
		dz := endZ - startZ
		for x := max(startX, 0); x <= min(endX, hm.width-1); x++ {
			k := float32(1.0)
			if dx != 0 {
				k = float32(x-startX) / dx
			}

			hm.PlotPixel(x, y, startZ+dz*k)
		}
	}
}

func (hm *Heightmap) PlotPixel(x, y int, z float32) {
	if x < 0 || x >= hm.width || y < 0 || y >= hm.height {
		return
	}

	n := y*hm.width + x

	if z > hm.z[n] {
		hm.z[n] = z
	}
}

// IterateLine visits every pixel along a to b, stepping 1px at a time and
// interpolating Z.
func IterateLine(a, b [3]float32, cb func(int, int, float32)) {
	// visit the first point
	cb(int(a[0]), int(a[1]), a[2])

	dx := b[0] - a[0]
	dy := b[1] - a[1]
	dz := b[2] - a[2]
	length := float32(math.Sqrt(float64(dx*dx + dy*dy))) // 2d length

	// if the line has 0px length, only plot the 1st pixel, and avoid dividing by 0
	if length < 1 {
		return
	}

	dx /= length
	dy /= length
	dz /= length

	x, y, z := a[0], a[1], a[2]

	for i := 1; i <= int(length); i++ {
		x += dx
		y += dy
		z += dz
		cb(int(x), int(y), z)
	}
}

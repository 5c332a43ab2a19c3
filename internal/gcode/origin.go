package gcode

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// OriginMode selects which point of the path's bounding box becomes the
// work-coordinate origin.
type OriginMode string

const (
	BottomLeft  OriginMode = "bottom_left"
	BottomRight OriginMode = "bottom_right"
	TopLeft     OriginMode = "top_left"
	TopRight    OriginMode = "top_right"
	Center      OriginMode = "center"
)

// Offset returns the amount to subtract from every point. An empty mode
// means BottomLeft; an unrecognised one means no offset.
func (o OriginMode) Offset(b r2.Box) r2.Vec {
	mode := OriginMode(strings.ToLower(string(o)))
	if mode == "" {
		mode = BottomLeft
	}
	switch mode {
	case BottomLeft:
		return b.Min
	case BottomRight:
		return r2.Vec{X: b.Max.X, Y: b.Min.Y}
	case TopLeft:
		return r2.Vec{X: b.Min.X, Y: b.Max.Y}
	case TopRight:
		return b.Max
	case Center:
		return r2.Vec{X: 0.5 * (b.Min.X + b.Max.X), Y: 0.5 * (b.Min.Y + b.Max.Y)}
	}
	return r2.Vec{}
}

// Known reports whether o is one of the named modes (or empty).
func (o OriginMode) Known() bool {
	switch OriginMode(strings.ToLower(string(o))) {
	case "", BottomLeft, BottomRight, TopLeft, TopRight, Center:
		return true
	}
	return false
}

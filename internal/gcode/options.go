// Package gcode writes tangential-knife paths as G-code programs.
package gcode

import (
	"errors"
)

var (
	ErrInvalidKnife = errors.New("invalid knife axis")
	ErrUnknownMode  = errors.New("unknown gcode mode")
)

type Options struct {
	Title string

	FeedXY    float64 // mm/min, cutting moves
	FeedZ     float64 // mm/min, plunge in 3D mode
	RapidFeed float64 // mm/min, only used for cycle time estimates

	SafeZ float64
	CutZ  float64 // flat mode depth when the path carries none

	Knife     Knife
	Origin    OriginMode
	Precision int
}

func DefaultOptions() Options {
	return Options{
		FeedXY:    2000,
		FeedZ:     800,
		RapidFeed: 10000,
		SafeZ:     5,
		CutZ:      -1,
		Knife:     Knife{Axis: "A"},
		Origin:    BottomLeft,
		Precision: 3,
	}
}

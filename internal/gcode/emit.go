package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/lotuspc25/TangentialCAM/internal/toolpath"
	"gonum.org/v1/gonum/spatial/r2"
)

// Mode selects between constant-depth and surface-following output.
type Mode string

const (
	ModeFlat Mode = "flat"
	Mode3D   Mode = "3d"
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat", "2d":
		return ModeFlat, nil
	case "3d":
		return Mode3D, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Emit dispatches to Flat or ThreeD.
func Emit(mode Mode, pd *toolpath.PathData, opt Options) (string, error) {
	switch mode {
	case ModeFlat:
		return Flat(pd, opt)
	case Mode3D:
		return ThreeD(pd, opt)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// Flat cuts the whole path at one depth: CutZ, or -|depth| when the path
// metadata carries a depth. Per-point Z values are ignored. The path is
// closed by a final move back to its first point.
func Flat(pd *toolpath.PathData, opt Options) (string, error) {
	prog, err := FlatProgram(pd, opt)
	if err != nil {
		return "", err
	}
	return prog.ToGcode(), nil
}

func FlatProgram(pd *toolpath.PathData, opt Options) (*Program, error) {
	xy, angles, err := prepare(pd, opt)
	if err != nil {
		return nil, err
	}

	cutZ := opt.CutZ
	if d, ok := pd.Meta().Depth.Get(); ok {
		cutZ = -math.Abs(d)
	}

	prog := NewProgram(opt)
	prog.Append(Move{feed: RapidFeed, z: some(opt.SafeZ)})
	prog.Append(Move{feed: RapidFeed, x: some(xy[0].X), y: some(xy[0].Y), a: angleAt(angles, 0, opt.Knife)})
	prog.Append(Move{feed: CuttingFeed, z: some(cutZ), f: some(opt.FeedXY)})
	// the last move returns to the start to close the cut
	for i := 1; i <= len(xy); i++ {
		j := i % len(xy)
		prog.Append(Move{feed: CuttingFeed, x: some(xy[j].X), y: some(xy[j].Y), a: angleAt(angles, j, opt.Knife), f: some(opt.FeedXY)})
	}
	prog.Append(Move{feed: RapidFeed, z: some(opt.SafeZ)})
	return prog, nil
}

// ThreeD follows the per-point tool-centre Z along the path, plunging to
// the first point at FeedZ and closing back to it.
func ThreeD(pd *toolpath.PathData, opt Options) (string, error) {
	prog, err := ThreeDProgram(pd, opt)
	if err != nil {
		return "", err
	}
	return prog.ToGcode(), nil
}

func ThreeDProgram(pd *toolpath.PathData, opt Options) (*Program, error) {
	xy, angles, err := prepare(pd, opt)
	if err != nil {
		return nil, err
	}
	zs, hasZ := pd.Z().Get()

	prog := NewProgram(opt)
	prog.Append(Move{feed: RapidFeed, z: some(opt.SafeZ)})
	prog.Append(Move{feed: RapidFeed, x: some(xy[0].X), y: some(xy[0].Y), a: angleAt(angles, 0, opt.Knife)})
	if hasZ {
		prog.Append(Move{feed: CuttingFeed, z: some(zs[0]), f: some(opt.FeedZ)})
	}
	for i := 1; i <= len(xy); i++ {
		j := i % len(xy)
		m := Move{feed: CuttingFeed, x: some(xy[j].X), y: some(xy[j].Y), a: angleAt(angles, j, opt.Knife), f: some(opt.FeedXY)}
		if hasZ {
			m.z = some(zs[j])
		}
		prog.Append(m)
	}
	prog.Append(Move{feed: RapidFeed, z: some(opt.SafeZ)})
	return prog, nil
}

// prepare validates the inputs and returns the origin-shifted path.
func prepare(pd *toolpath.PathData, opt Options) ([]r2.Vec, toolpath.Optional[[]float64], error) {
	if pd == nil || pd.Len() == 0 {
		return nil, toolpath.None[[]float64](), fmt.Errorf("%w: no path", toolpath.ErrInvalidPathData)
	}
	if err := opt.Knife.Validate(); err != nil {
		return nil, toolpath.None[[]float64](), err
	}

	off := opt.Origin.Offset(pd.Bounds())
	xy := pd.XY()
	for i := range xy {
		xy[i] = r2.Sub(xy[i], off)
	}
	return xy, pd.Angles(), nil
}

func some(v float64) toolpath.Optional[float64] { return toolpath.Some(v) }

func angleAt(angles toolpath.Optional[[]float64], i int, k Knife) toolpath.Optional[float64] {
	as, ok := angles.Get()
	if !ok {
		return toolpath.None[float64]()
	}
	return toolpath.Some(k.Angle(as[i]))
}

package gcode

import (
	"fmt"
	"strings"
)

// Knife is the rotary axis that turns the blade, and the fixed angle added
// to every commanded blade angle.
type Knife struct {
	Axis   string
	Offset float64
}

// rotary axis letters a controller accepts for the blade
const knifeAxes = "ABCUVW"

func NewKnife(axis string, offset float64) (Knife, error) {
	k := Knife{Axis: strings.ToUpper(strings.TrimSpace(axis)), Offset: offset}
	if err := k.Validate(); err != nil {
		return Knife{}, err
	}
	return k, nil
}

func (k Knife) Validate() error {
	if len(k.Axis) != 1 || !strings.Contains(knifeAxes, k.Axis) {
		return fmt.Errorf("%w: unrecognised knife axis %q (want one of %s)", ErrInvalidKnife, k.Axis, knifeAxes)
	}
	return nil
}

// Angle returns the commanded axis value for a path angle.
func (k Knife) Angle(deg float64) float64 { return deg + k.Offset }

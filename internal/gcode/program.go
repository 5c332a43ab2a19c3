package gcode

import (
	"math"
	"strings"

	"github.com/lotuspc25/TangentialCAM/internal/toolpath"
)

type FeedType int

const (
	RapidFeed FeedType = iota
	CuttingFeed
)

// Move is one G0/G1 line. Absent words are left out of the output.
type Move struct {
	feed    FeedType
	x, y, z toolpath.Optional[float64]
	a       toolpath.Optional[float64]
	f       toolpath.Optional[float64]
}

// Program is a list of moves between a fixed preamble and postamble.
type Program struct {
	title string
	opt   Options
	moves []Move
}

func NewProgram(opt Options) *Program {
	return &Program{title: opt.Title, opt: opt}
}

func (p *Program) Append(m Move) {
	p.moves = append(p.moves, m)
}

func (p *Program) Moves() []Move { return append([]Move(nil), p.moves...) }

func (p *Program) Preamble() []string {
	var lines []string
	if t := sanitizeComment(p.title); t != "" {
		lines = append(lines, "("+t+")")
	}
	return append(lines,
		"G21", // mm
		"G90", // absolute coordinates
		"G54", // work coordinate system
	)
}

func (p *Program) Postamble() []string {
	return []string{"M30"} // end program
}

// ToGcode renders the program with lines joined by "\n" and no trailing
// newline.
func (p *Program) ToGcode() string {
	lines := p.Preamble()
	for _, m := range p.moves {
		lines = append(lines, p.line(m))
	}
	lines = append(lines, p.Postamble()...)
	return strings.Join(lines, "\n")
}

func (p *Program) line(m Move) string {
	gcode := strings.Builder{}

	if m.feed == RapidFeed {
		gcode.WriteString("G0")
	} else {
		gcode.WriteString("G1")
	}
	word := func(letter string, v toolpath.Optional[float64]) {
		if n, ok := v.Get(); ok {
			gcode.WriteString(" " + letter + formatNumber(n, p.opt.Precision))
		}
	}
	word("X", m.x)
	word("Y", m.y)
	word("Z", m.z)
	word(p.opt.Knife.Axis, m.a)
	word("F", m.f)

	return gcode.String()
}

// CycleTime estimates the run time in seconds. Rapids run at RapidFeed,
// cutting moves at their own feed word. Axes whose position is not yet
// known at the start of the program contribute no distance.
func (p *Program) CycleTime() float64 {
	var pos [3]float64
	var known [3]bool
	cycleTime := 0.0

	for _, m := range p.moves {
		dist2 := 0.0
		for i, v := range [3]toolpath.Optional[float64]{m.x, m.y, m.z} {
			n, ok := v.Get()
			if !ok {
				continue
			}
			if known[i] {
				dist2 += (n - pos[i]) * (n - pos[i])
			}
			pos[i], known[i] = n, true
		}
		dist := math.Sqrt(dist2)

		feedRate := p.opt.RapidFeed
		if m.feed == CuttingFeed {
			feedRate = m.f.Or(p.opt.FeedXY)
		}
		if feedRate <= 0 || dist == 0 {
			continue
		}

		cycleTime += 60 * (dist / feedRate)
	}

	return cycleTime
}

// sanitizeComment removes characters that would end a G-code comment early.
func sanitizeComment(s string) string {
	s = strings.NewReplacer("(", "", ")", "", "\n", " ", "\r", " ").Replace(s)
	return strings.TrimSpace(s)
}

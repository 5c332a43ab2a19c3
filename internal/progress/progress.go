// Package progress carries informational percentage updates out of long
// running pipeline stages. Reporters never influence control flow.
package progress

// Reporter receives a percentage in 0..100 and a short stage message.
type Reporter interface {
	Report(pct int, msg string)
}

// Func adapts a plain function to a Reporter.
type Func func(pct int, msg string)

func (f Func) Report(pct int, msg string) {
	if f != nil {
		f(pct, msg)
	}
}

type nop struct{}

func (nop) Report(int, string) {}

// Nop is a Reporter that discards everything.
var Nop Reporter = nop{}

// OrNop returns rep, or Nop when rep is nil.
func OrNop(rep Reporter) Reporter {
	if rep == nil {
		return Nop
	}
	return rep
}

type scaled struct {
	rep      Reporter
	from, to float64
}

// Scaled maps a sub-stage's own 0..100 progress onto from..to of rep.
func Scaled(rep Reporter, from, to int) Reporter {
	return scaled{rep: OrNop(rep), from: float64(from), to: float64(to)}
}

func (s scaled) Report(pct int, msg string) {
	s.rep.Report(int(s.from+(s.to-s.from)*float64(pct)/100), msg)
}

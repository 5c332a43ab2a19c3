package logger

import (
	"go.uber.org/zap"
)

// ProgressReporter logs pipeline progress at info level, skipping repeats
// of the same percentage.
type ProgressReporter struct {
	last int
}

func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{last: -1}
}

func (p *ProgressReporter) Report(pct int, msg string) {
	if pct == p.last {
		return
	}
	p.last = pct
	Log.Info(msg, zap.Int("pct", pct))
}

package sessions

import (
	"errors"
	"time"
)

var (
	// ErrNoTimestamps is returned when segmenting an empty sequence.
	ErrNoTimestamps = errors.New("no compile timestamps to segment")
	// ErrUnsorted is returned when the input is not in ascending order.
	ErrUnsorted = errors.New("compile timestamps are not sorted")
)

// Session is an inferred block of continuous coding activity.
type Session struct {
	Start    time.Time     `json:"start" yaml:"start"`
	End      time.Time     `json:"end" yaml:"end"`
	Compiles int           `json:"compiles" yaml:"compiles"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Segment folds ascending compile timestamps into sessions. It also returns
// the gaps that ended each session, in order.
//
// A session closed by a break that holds a single compile is credited
// cfg.LoneSession. Every other session, including the trailing one even
// when it holds a single compile, runs from LeadTime before its first
// compile to its last compile.
func Segment(cfg Config, ts []time.Time) ([]Session, []time.Duration, error) {
	if len(ts) == 0 {
		return nil, nil, ErrNoTimestamps
	}

	var (
		out    []Session
		breaks []time.Duration
	)
	start, prev := ts[0], ts[0]
	count := 1

	for _, curr := range ts[1:] {
		gap := curr.Sub(prev)
		if gap < 0 {
			return nil, nil, ErrUnsorted
		}
		if gap > cfg.BreakThreshold {
			d := cfg.LoneSession
			if !start.Equal(prev) {
				d = leadTimeDuration(cfg, start, prev)
			}
			out = append(out, newSession(prev, count, d))
			breaks = append(breaks, gap)
			start = curr
			count = 0
		}
		prev = curr
		count++
	}

	out = append(out, newSession(prev, count, leadTimeDuration(cfg, start, prev)))
	return out, breaks, nil
}

func leadTimeDuration(cfg Config, start, end time.Time) time.Duration {
	return end.Sub(start.Add(-cfg.LeadTime))
}

func newSession(end time.Time, compiles int, d time.Duration) Session {
	return Session{
		Start:    end.Add(-d),
		End:      end,
		Compiles: compiles,
		Duration: d,
	}
}

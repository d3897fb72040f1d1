package sessions

import (
	"slices"
	"time"
)

// Report is the result of analyzing a compile timestamp sequence.
type Report struct {
	Config        Config          `json:"config" yaml:"config"`
	Sessions      []Session       `json:"sessions" yaml:"sessions"`
	Breaks        []time.Duration `json:"breaks" yaml:"breaks"`
	FirstCompile  time.Time       `json:"first_compile" yaml:"first_compile"`
	LastCompile   time.Time       `json:"last_compile" yaml:"last_compile"`
	Compiles      int             `json:"compiles" yaml:"compiles"`
	Total         time.Duration   `json:"total" yaml:"total"`
	Longest       time.Duration   `json:"longest" yaml:"longest"`
	Mean          time.Duration   `json:"mean" yaml:"mean"`
	Median        time.Duration   `json:"median" yaml:"median"`
	LongestBreak  time.Duration   `json:"longest_break" yaml:"longest_break"`
	Elapsed       time.Duration   `json:"elapsed" yaml:"elapsed"`
	CodingPercent float64         `json:"coding_percent" yaml:"coding_percent"`
}

// Analyze sorts a copy of ts, segments it and computes aggregate statistics.
func Analyze(cfg Config, ts []time.Time) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(ts) == 0 {
		return nil, ErrNoTimestamps
	}

	sorted := slices.Clone(ts)
	slices.SortStableFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })

	list, breaks, err := Segment(cfg, sorted)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Config:       cfg,
		Sessions:     list,
		Breaks:       breaks,
		FirstCompile: sorted[0],
		LastCompile:  sorted[len(sorted)-1],
		Compiles:     len(sorted),
	}
	r.Elapsed = r.LastCompile.Sub(r.FirstCompile)

	durations := make([]time.Duration, len(list))
	for i, s := range list {
		durations[i] = s.Duration
		r.Total += s.Duration
	}
	slices.Sort(durations)
	r.Longest = durations[len(durations)-1]
	r.Median = durations[len(durations)/2]
	r.Mean = r.Total / time.Duration(len(durations))

	for _, b := range breaks {
		r.LongestBreak = max(r.LongestBreak, b)
	}

	r.CodingPercent = Percent(r.Total, r.Elapsed)
	return r, nil
}

// HoursHundredths returns d in hundredths of an hour, rounded half away
// from zero. Sub-second precision is ignored.
func HoursHundredths(d time.Duration) int64 {
	if d < 0 {
		return -HoursHundredths(-d)
	}
	secs := int64(d / time.Second)
	return (secs*100 + 1800) / 3600
}

// Percent returns part/whole as a percentage rounded half away from zero to
// two decimals. It returns 0 when whole is not positive.
func Percent(part, whole time.Duration) float64 {
	p, w := int64(part/time.Second), int64(whole/time.Second)
	if w <= 0 {
		return 0
	}
	neg := p < 0
	if neg {
		p = -p
	}
	h := (2*p*10000 + w) / (2 * w)
	if neg {
		h = -h
	}
	return float64(h) / 100
}

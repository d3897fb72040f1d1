package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/codetime/internal/sessions"
)

// Supported report formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// Formats lists every accepted --format value.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatMarkdown, FormatCSV}

const timeLayout = "2006-01-02 15:04:05"

// DurationView is a duration as shown to users and machines.
type DurationView struct {
	Text    string  `json:"text" yaml:"text"`
	Hours   float64 `json:"hours" yaml:"hours"`
	Seconds int64   `json:"seconds" yaml:"seconds"`
}

func newDurationView(d time.Duration) DurationView {
	return DurationView{Text: Breakdown(d), Hours: Hours(d), Seconds: int64(d / time.Second)}
}

// SessionView is one session in a machine-readable report.
type SessionView struct {
	Start    time.Time    `json:"start" yaml:"start"`
	End      time.Time    `json:"end" yaml:"end"`
	Compiles int          `json:"compiles" yaml:"compiles"`
	Duration DurationView `json:"duration" yaml:"duration"`
}

// ConfigView echoes the parameters a report was computed with.
type ConfigView struct {
	BreakThreshold string `json:"break_threshold" yaml:"break_threshold"`
	LeadTime       string `json:"lead_time" yaml:"lead_time"`
	LoneSession    string `json:"lone_session" yaml:"lone_session"`
}

// ReportView is the serializable form of a sessions.Report.
type ReportView struct {
	Source        string        `json:"source,omitempty" yaml:"source,omitempty"`
	Config        ConfigView    `json:"config" yaml:"config"`
	Compiles      int           `json:"compiles" yaml:"compiles"`
	SessionCount  int           `json:"session_count" yaml:"session_count"`
	FirstCompile  time.Time     `json:"first_compile" yaml:"first_compile"`
	LastCompile   time.Time     `json:"last_compile" yaml:"last_compile"`
	Total         DurationView  `json:"total" yaml:"total"`
	Longest       DurationView  `json:"longest_session" yaml:"longest_session"`
	Mean          DurationView  `json:"mean_session" yaml:"mean_session"`
	Median        DurationView  `json:"median_session" yaml:"median_session"`
	LongestBreak  DurationView  `json:"longest_break" yaml:"longest_break"`
	Elapsed       DurationView  `json:"elapsed" yaml:"elapsed"`
	CodingPercent float64       `json:"coding_percent" yaml:"coding_percent"`
	Sessions      []SessionView `json:"sessions" yaml:"sessions"`
}

// NewReportView converts a report for serialization.
func NewReportView(source string, r *sessions.Report) ReportView {
	v := ReportView{
		Source: source,
		Config: ConfigView{
			BreakThreshold: r.Config.BreakThreshold.String(),
			LeadTime:       r.Config.LeadTime.String(),
			LoneSession:    r.Config.LoneSession.String(),
		},
		Compiles:      r.Compiles,
		SessionCount:  len(r.Sessions),
		FirstCompile:  r.FirstCompile,
		LastCompile:   r.LastCompile,
		Total:         newDurationView(r.Total),
		Longest:       newDurationView(r.Longest),
		Mean:          newDurationView(r.Mean),
		Median:        newDurationView(r.Median),
		LongestBreak:  newDurationView(r.LongestBreak),
		Elapsed:       newDurationView(r.Elapsed),
		CodingPercent: r.CodingPercent,
	}
	v.Sessions = make([]SessionView, len(r.Sessions))
	for i, s := range r.Sessions {
		v.Sessions[i] = SessionView{Start: s.Start, End: s.End, Compiles: s.Compiles, Duration: newDurationView(s.Duration)}
	}
	return v
}

type statRow struct {
	Label    string
	Duration time.Duration
}

func statRows(r *sessions.Report) []statRow {
	return []statRow{
		{"Total coding time", r.Total},
		{"Longest session", r.Longest},
		{"Mean session", r.Mean},
		{"Median session", r.Median},
		{"Longest break", r.LongestBreak},
		{"Total elapsed", r.Elapsed},
	}
}

// Report writes r in the given format. showSessions adds the per-session
// listing to text and markdown output; machine formats always include it.
func (u *UI) Report(source string, r *sessions.Report, format string, showSessions bool) error {
	switch format {
	case "", FormatText:
		return u.reportText(source, r, showSessions)
	case FormatJSON:
		enc := json.NewEncoder(u.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(NewReportView(source, r))
	case FormatYAML:
		enc := yaml.NewEncoder(u.Out)
		enc.SetIndent(2)
		if err := enc.Encode(NewReportView(source, r)); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		return writeMarkdown(u.Out, source, r, showSessions)
	case FormatCSV:
		return writeCSV(u.Out, r)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func (u *UI) reportText(source string, r *sessions.Report, showSessions bool) error {
	if source != "" {
		u.Info("Coding time for %s", Cyan(source))
	}
	fmt.Fprintf(u.Out, "%d compiles in %d sessions, %s to %s\n\n",
		r.Compiles, len(r.Sessions), r.FirstCompile.Format(timeLayout), r.LastCompile.Format(timeLayout))

	table := u.Table([]string{"Metric", "Time", "Hours"})
	for _, row := range statRows(r) {
		_ = table.Append([]string{row.Label, Breakdown(row.Duration), HoursString(row.Duration)})
	}
	_ = table.Append([]string{"Coding percentage", PercentColor(r.CodingPercent), ""})
	if err := table.Render(); err != nil {
		return err
	}

	if !showSessions {
		return nil
	}
	fmt.Fprintln(u.Out)
	table = u.Table([]string{"#", "Start", "End", "Compiles", "Time", "Hours"})
	for i, s := range r.Sessions {
		_ = table.Append([]string{
			strconv.Itoa(i + 1),
			s.Start.Format(timeLayout),
			s.End.Format(timeLayout),
			strconv.Itoa(s.Compiles),
			Breakdown(s.Duration),
			HoursString(s.Duration),
		})
	}
	return table.Render()
}

func writeMarkdown(w io.Writer, source string, r *sessions.Report, showSessions bool) error {
	title := "Coding Time"
	if source != "" {
		title += ": " + source
	}
	fmt.Fprintf(w, "# %s\n\n", title)
	fmt.Fprintln(w, "| Metric | Time | Hours |")
	fmt.Fprintln(w, "|--------|------|-------|")
	for _, row := range statRows(r) {
		fmt.Fprintf(w, "| %s | %s | %s |\n", row.Label, Breakdown(row.Duration), HoursString(row.Duration))
	}
	fmt.Fprintf(w, "| Coding percentage | %.2f%% | |\n", r.CodingPercent)

	if !showSessions {
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "## Sessions")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| # | Start | End | Compiles | Time | Hours |")
	fmt.Fprintln(w, "|---|-------|-----|----------|------|-------|")
	for i, s := range r.Sessions {
		fmt.Fprintf(w, "| %d | %s | %s | %d | %s | %s |\n",
			i+1, s.Start.Format(timeLayout), s.End.Format(timeLayout), s.Compiles, Breakdown(s.Duration), HoursString(s.Duration))
	}
	return nil
}

// writeCSV emits one row per session.
func writeCSV(w io.Writer, r *sessions.Report) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"Session", "Start", "End", "Compiles", "Seconds", "Hours"})
	for i, s := range r.Sessions {
		cw.Write([]string{
			strconv.Itoa(i + 1),
			s.Start.Format(time.RFC3339),
			s.End.Format(time.RFC3339),
			strconv.Itoa(s.Compiles),
			strconv.FormatInt(int64(s.Duration/time.Second), 10),
			HoursString(s.Duration),
		})
	}
	cw.Flush()
	return cw.Error()
}

package output

import (
	"fmt"
	"time"

	"github.com/joescharf/codetime/internal/sessions"
)

// Breakdown renders d as days, hours and minutes, e.g. "2d 3h 15m" or "0h 50m".
// Seconds are truncated.
func Breakdown(d time.Duration) string {
	if d < 0 {
		return "-" + Breakdown(-d)
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// Hours returns d in decimal hours rounded half away from zero to two places.
func Hours(d time.Duration) float64 {
	return float64(sessions.HoursHundredths(d)) / 100
}

// HoursString formats Hours(d) with exactly two decimals.
func HoursString(d time.Duration) string {
	h := sessions.HoursHundredths(d)
	sign := ""
	if h < 0 {
		sign, h = "-", -h
	}
	return fmt.Sprintf("%s%d.%02d", sign, h/100, h%100)
}

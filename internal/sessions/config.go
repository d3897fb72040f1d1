package sessions

import (
	"errors"
	"fmt"
	"time"
)

// Default session parameters.
const (
	DefaultBreakThreshold = time.Hour + 45*time.Minute
	DefaultLeadTime       = 10 * time.Minute
	DefaultLoneSession    = 20 * time.Minute
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid session config")

// Config holds the tunables used to split compile events into sessions.
type Config struct {
	// BreakThreshold is the gap beyond which a new session starts.
	BreakThreshold time.Duration `json:"break_threshold" yaml:"break_threshold"`
	// LeadTime is the assumed work before the first compile of a session.
	LeadTime time.Duration `json:"lead_time" yaml:"lead_time"`
	// LoneSession is the duration credited to a single-compile session
	// that is followed by a break.
	LoneSession time.Duration `json:"lone_session" yaml:"lone_session"`
}

// DefaultConfig returns the stock 1h45m / 10m / 20m parameters.
func DefaultConfig() Config {
	return Config{
		BreakThreshold: DefaultBreakThreshold,
		LeadTime:       DefaultLeadTime,
		LoneSession:    DefaultLoneSession,
	}
}

// Validate checks that all durations are usable.
func (c Config) Validate() error {
	if c.BreakThreshold <= 0 {
		return fmt.Errorf("%w: break threshold must be positive, got %s", ErrInvalidConfig, c.BreakThreshold)
	}
	if c.LeadTime < 0 {
		return fmt.Errorf("%w: lead time must not be negative, got %s", ErrInvalidConfig, c.LeadTime)
	}
	if c.LoneSession < 0 {
		return fmt.Errorf("%w: lone session must not be negative, got %s", ErrInvalidConfig, c.LoneSession)
	}
	return nil
}

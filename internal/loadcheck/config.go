// Package loadcheck fires concurrent submissions with overlapping ids at a
// running append store and verifies that each normalized id was stored
// exactly once.
package loadcheck

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// Defaults applied by Config.withDefaults.
const (
	DefaultUnique  = 200
	DefaultRepeats = 4
	DefaultTimeout = 10 * time.Second
)

var (
	// ErrInvalidConfig is returned when the run cannot start.
	ErrInvalidConfig = errors.New("invalid load check config")
	// ErrVerification is returned when the sheet does not hold exactly one
	// row per generated id.
	ErrVerification = errors.New("load check verification failed")
)

// Config holds configuration for one load check run.
type Config struct {
	BaseURL string        // store base URL, e.g. http://localhost:9080
	Unique  int           // distinct ids to generate
	Repeats int           // submissions per id, in varied case and padding
	Workers int           // concurrent submitters
	Timeout time.Duration // per request timeout
}

func (c Config) withDefaults() Config {
	if c.Unique <= 0 {
		c.Unique = DefaultUnique
	}
	if c.Repeats <= 0 {
		c.Repeats = DefaultRepeats
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU() * 2
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	}
	return nil
}

// Report summarizes a run.
type Report struct {
	Unique    int           `json:"unique"`
	Submitted int           `json:"submitted"`
	Accepted  int           `json:"accepted"`
	Duplicate int           `json:"duplicate"`
	Rejected  int           `json:"rejected"`
	Failed    int           `json:"failed"`
	Rows      int           `json:"rows"`
	Missing   []string      `json:"missing,omitempty"`
	Repeated  []string      `json:"repeated,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// OK reports whether every id was accepted once and stored once.
func (r *Report) OK() bool {
	return r.Accepted == r.Unique && len(r.Missing) == 0 && len(r.Repeated) == 0
}

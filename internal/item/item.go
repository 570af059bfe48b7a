// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package item

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNegativeInterval is returned when a periodic interval is below zero.
	ErrNegativeInterval = errors.New("reload interval must not be negative")
	// ErrIntervalTooLarge is returned when a periodic interval overflows time.Duration.
	ErrIntervalTooLarge = errors.New("reload interval is too large")
	// ErrInvalidInterval is returned when a periodic interval is not a finite number.
	ErrInvalidInterval = errors.New("reload interval is not a finite number")
)

// Kind is the execution strategy of an item.
type Kind int

const (
	// Streaming items are spawned once and read line by line, restarting when they exit.
	Streaming Kind = iota
	// Static items are run exactly once.
	Static
	// Periodic items are run to completion repeatedly with a pause between runs.
	Periodic
)

// String implements the Stringer interface for Kind.
func (k Kind) String() string {
	switch k {
	case Streaming:
		return "streaming"
	case Static:
		return "static"
	case Periodic:
		return "periodic"
	default:
		return "unknown"
	}
}

// Policy describes how an item is executed. Interval is only meaningful for Periodic.
type Policy struct {
	Kind     Kind
	Interval time.Duration
}

// StaticPolicy returns a policy that runs the command once.
func StaticPolicy() Policy {
	return Policy{Kind: Static}
}

// StreamingPolicy returns a policy that reads the command output continuously.
func StreamingPolicy() Policy {
	return Policy{Kind: Streaming}
}

// PeriodicPolicy returns a policy that reruns the command after each interval.
func PeriodicPolicy(interval time.Duration) Policy {
	return Policy{Kind: Periodic, Interval: interval}
}

// PeriodicSeconds converts a number of seconds, which may be fractional, into a periodic policy.
func PeriodicSeconds(seconds float64) (Policy, error) {
	switch {
	case math.IsNaN(seconds) || math.IsInf(seconds, 0):
		return Policy{}, ErrInvalidInterval
	case seconds < 0:
		return Policy{}, fmt.Errorf("%w: %v", ErrNegativeInterval, seconds)
	case seconds > math.MaxInt64/float64(time.Second):
		return Policy{}, fmt.Errorf("%w: %v", ErrIntervalTooLarge, seconds)
	}

	return PeriodicPolicy(time.Duration(seconds * float64(time.Second))), nil
}

// String implements the Stringer interface for Policy.
func (p Policy) String() string {
	if p.Kind == Periodic {
		return fmt.Sprintf("%s(%s)", p.Kind, p.Interval)
	}

	return p.Kind.String()
}

// Spec is a fully resolved item, ready to be handed to a runner.
type Spec struct {
	Name     string // Name of the configuration section, used in diagnostics.
	Position int    // Zero-based slot in the rendered line.
	Command  string // Command line passed verbatim to the shell.
	Shell    string // Shell executable the command runs under.
	Policy   Policy // How often the command runs.
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package loop

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Clock is the time source the loop paces itself with.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// Rate paces a loop at a fixed number of ticks per second. Each Sleep waits
// out what is left of the period since the previous Sleep returned. A tick
// that overruns the period is not compensated later.
type Rate struct {
	clock  Clock
	logger *zap.SugaredLogger

	rate     float64
	period   time.Duration
	last     time.Time
	overruns uint64
}

// NewRate starts the first period now.
func NewRate(ticksPerSecond float64, clock Clock, logger *zap.SugaredLogger) (*Rate, error) {
	if math.IsNaN(ticksPerSecond) || math.IsInf(ticksPerSecond, 0) || ticksPerSecond <= 0 {
		return nil, fmt.Errorf("rate must be a positive number, got %v", ticksPerSecond)
	}
	return &Rate{
		clock:  clock,
		logger: logger,
		rate:   ticksPerSecond,
		period: time.Duration(float64(time.Second) / ticksPerSecond),
		last:   clock.Now(),
	}, nil
}

// Rate returns ticks per second.
func (r *Rate) Rate() float64 { return r.rate }

// Period returns the target tick duration.
func (r *Rate) Period() time.Duration { return r.period }

// Overruns returns how many periods were exceeded so far.
func (r *Rate) Overruns() uint64 { return r.overruns }

// Sleep blocks for the remainder of the current period and starts the next.
func (r *Rate) Sleep() {
	work := r.clock.Now().Sub(r.last)
	if remaining := r.period - work; remaining > 0 {
		r.clock.Sleep(remaining)
	} else {
		r.overruns++
		r.logger.Warnf("loop: control step took %v, period is %v", work, r.period)
	}
	r.last = r.clock.Now()
}

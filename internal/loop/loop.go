// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package loop runs sense, control and act once per tick at a fixed rate
// until the configured length elapses or the context is cancelled.
package loop

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/relabs-tech/real_robot/internal/config"
)

// Robot is what the loop drives each tick.
type Robot interface {
	Sense() error
	Control() error
	Act() error
}

// Observer is told about every completed tick.
type Observer interface {
	TickCompleted(tick uint64)
}

// State is owned by the loop while it runs.
type State struct {
	ElapsedTicks uint64
	Running      bool
}

// Loop is the rate-controlled driver for one Robot.
type Loop struct {
	cfg      config.ControlConfig
	robot    Robot
	logger   *zap.SugaredLogger
	clock    Clock
	observer Observer
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// WithObserver registers an observer for completed ticks.
func WithObserver(o Observer) Option {
	return func(l *Loop) { l.observer = o }
}

// New validates cfg and returns a loop ready to Run.
func New(cfg config.ControlConfig, robot Robot, logger *zap.SugaredLogger, opts ...Option) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := &Loop{
		cfg:    cfg,
		robot:  robot,
		logger: logger,
		clock:  SystemClock{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Run ticks until the configured length has elapsed, ctx is cancelled, or a
// tick fails. Cancellation is only observed between ticks. The first tick
// error stops the loop and is returned; cancellation is not an error.
func (l *Loop) Run(ctx context.Context) (State, error) {
	rate, err := NewRate(l.cfg.TickRate, l.clock, l.logger)
	if err != nil {
		return State{}, err
	}

	state := State{Running: true}
	l.logger.Infof("loop: control loop running at %g Hz (period %v)", rate.Rate(), rate.Period())

	for state.Running {
		if err := ctx.Err(); err != nil {
			l.logger.Infof("loop: stopping after %d ticks: %v", state.ElapsedTicks, err)
			state.Running = false
			break
		}

		if err := l.tick(); err != nil {
			state.Running = false
			return state, fmt.Errorf("tick %d: %w", state.ElapsedTicks+1, err)
		}

		rate.Sleep()

		state.ElapsedTicks++
		if l.cfg.TotalDuration != 0 && float64(state.ElapsedTicks)/rate.Rate() >= l.cfg.TotalDuration {
			state.Running = false
		}
		if l.observer != nil {
			l.observer.TickCompleted(state.ElapsedTicks)
		}
	}

	if rate.Overruns() > 0 {
		l.logger.Warnf("loop: %d of %d ticks overran the period", rate.Overruns(), state.ElapsedTicks)
	}
	return state, nil
}

func (l *Loop) tick() error {
	if err := l.robot.Sense(); err != nil {
		return fmt.Errorf("sense: %w", err)
	}
	if err := l.robot.Control(); err != nil {
		return fmt.Errorf("control: %w", err)
	}
	if err := l.robot.Act(); err != nil {
		return fmt.Errorf("act: %w", err)
	}
	return nil
}

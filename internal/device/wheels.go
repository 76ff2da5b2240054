// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/transport"
)

// DefaultMaxSpeed is the Thymio motor target limit.
const DefaultMaxSpeed = 500

// Wheels is the differential drive reached over the command link.
type Wheels struct {
	name   string
	env    Env
	logger *zap.SugaredLogger

	link     transport.Link
	maxSpeed float64
	left     float64
	right    float64
}

// NewWheels is the ActuatorConstructor for "wheels".
func NewWheels(name string, env Env) Actuator {
	return &Wheels{name: name, env: env, logger: loggerFor(env)}
}

func (w *Wheels) Name() string { return w.name }

// Init picks up the command link and speed limit.
func (w *Wheels) Init(params config.Params) error {
	link, err := w.env.Handle.RequireLink(w.name)
	if err != nil {
		return err
	}
	maxSpeed, err := params.Float("max_speed", DefaultMaxSpeed)
	if err != nil {
		return err
	}
	if math.IsNaN(maxSpeed) || maxSpeed <= 0 {
		return fmt.Errorf("max_speed must be positive, got %v", maxSpeed)
	}
	w.link = link
	w.maxSpeed = maxSpeed
	return nil
}

// SetLinearVelocity stores the wheel targets for the next Update, clamped to
// the configured limit.
func (w *Wheels) SetLinearVelocity(left, right float64) {
	w.left = clamp(left, w.maxSpeed)
	w.right = clamp(right, w.maxSpeed)
}

// Update sends the current targets.
func (w *Wheels) Update() error {
	return expectOK(w.link, w.command())
}

func (w *Wheels) command() string {
	return "motor.target " +
		strconv.FormatFloat(w.left, 'f', -1, 64) + " " +
		strconv.FormatFloat(w.right, 'f', -1, 64)
}

// Reset zeroes the targets. The motors stop on the next Update.
func (w *Wheels) Reset() {
	w.left = 0
	w.right = 0
}

// Commands returns the current left and right targets.
func (w *Wheels) Commands() []float64 {
	return []float64{w.left, w.right}
}

// Close stops the motors.
func (w *Wheels) Close() error {
	if w.link == nil {
		return nil
	}
	w.Reset()
	if err := w.Update(); err != nil {
		return fmt.Errorf("%s: stop motors: %w", w.name, err)
	}
	w.logger.Infof("%s: motors stopped", w.name)
	w.link = nil
	return nil
}

func clamp(v, limit float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-limit, math.Min(limit, v))
}

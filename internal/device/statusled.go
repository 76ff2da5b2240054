// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"fmt"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/transport"
)

const defaultLEDPin = "GPIO17"

// StatusLED drives a single GPIO output.
type StatusLED struct {
	name   string
	env    Env
	logger *zap.SugaredLogger

	pin gpio.PinOut
	on  bool
}

// NewStatusLED is the ActuatorConstructor for "status_led".
func NewStatusLED(name string, env Env) Actuator {
	return &StatusLED{name: name, env: env, logger: loggerFor(env)}
}

func (l *StatusLED) Name() string { return l.name }

// Init resolves the configured pin by name.
func (l *StatusLED) Init(params config.Params) error {
	pinName, err := params.String("pin", defaultLEDPin)
	if err != nil {
		return err
	}
	p := gpioreg.ByName(pinName)
	if p == nil {
		return &transport.BindingError{Device: l.name, Reason: fmt.Sprintf("GPIO pin %q not found", pinName)}
	}
	l.pin = p
	l.logger.Infof("%s: using pin %s", l.name, pinName)
	return nil
}

// Set stores the LED state for the next Update.
func (l *StatusLED) Set(on bool) { l.on = on }

// Update drives the pin.
func (l *StatusLED) Update() error {
	return l.pin.Out(gpio.Level(l.on))
}

// Reset turns the LED off on the next Update.
func (l *StatusLED) Reset() { l.on = false }

// Commands returns 1 when lit and 0 otherwise.
func (l *StatusLED) Commands() []float64 {
	if l.on {
		return []float64{1}
	}
	return []float64{0}
}

// Close turns the LED off.
func (l *StatusLED) Close() error {
	if l.pin == nil {
		return nil
	}
	l.on = false
	err := l.pin.Out(gpio.Low)
	l.pin = nil
	return err
}

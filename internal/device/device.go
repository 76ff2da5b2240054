// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package device binds the sensors and actuators a controller declares to
// concrete device instances built from a name-keyed factory.
package device

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/transport"
)

// Sensor is a device the loop updates before each control step.
type Sensor interface {
	Name() string
	Init(params config.Params) error
	Update() error
	Reset()
}

// Actuator is a device the loop updates after each control step.
type Actuator interface {
	Name() string
	Init(params config.Params) error
	Update() error
	Reset()
}

// Enabler is implemented by hardware-facing sensors that must be switched on
// once before the first tick.
type Enabler interface {
	Enable() error
}

// Reader exposes the latest normalized values of a sensor.
type Reader interface {
	Readings() []float64
}

// Commander exposes the latest command values of an actuator.
type Commander interface {
	Commands() []float64
}

// DifferentialDrive is an actuator steered by two wheel speeds.
type DifferentialDrive interface {
	SetLinearVelocity(left, right float64)
}

// Env is what a device constructor gets to work with.
type Env struct {
	Handle *transport.Handle
	Logger *zap.SugaredLogger
}

// UnknownDeviceError is returned when the factory has no constructor for a
// declared device name.
type UnknownDeviceError struct {
	Kind config.DeviceKind
	Name string
}

func (e *UnknownDeviceError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// DuplicateDeviceError is returned when one binding pass declares the same
// name twice for the same kind.
type DuplicateDeviceError struct {
	Kind config.DeviceKind
	Name string
}

func (e *DuplicateDeviceError) Error() string {
	return fmt.Sprintf("%s %q declared more than once", e.Kind, e.Name)
}

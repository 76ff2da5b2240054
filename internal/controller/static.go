// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package controller

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/device"
)

// Static commands constant wheel speeds every tick, for bench checks of the
// drive and the loop timing. Params: left, right, actuator.
type Static struct {
	base

	left, right float64
	wheels      device.DifferentialDrive
}

// NewStatic is the Constructor for "static".
func NewStatic(logger *zap.SugaredLogger) Controller {
	return &Static{base: base{logger: logger}}
}

func (c *Static) Init(devices *device.Table, params config.Params) error {
	var err error
	if c.left, err = params.Float("left", 0); err != nil {
		return err
	}
	if c.right, err = params.Float("right", 0); err != nil {
		return err
	}
	name, err := params.String("actuator", "wheels")
	if err != nil {
		return err
	}
	a, ok := devices.Actuator(name)
	if !ok {
		return fmt.Errorf("actuator %q is not bound", name)
	}
	if c.wheels, ok = a.(device.DifferentialDrive); !ok {
		return fmt.Errorf("actuator %q is not a differential drive", name)
	}
	return nil
}

func (c *Static) ControlStep() error {
	c.wheels.SetLinearVelocity(c.left, c.right)
	return nil
}

func (c *Static) Reset() {}

func (c *Static) Destroy() {
	c.wheels = nil
}

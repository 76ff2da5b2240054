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

// Thymio layout: the first five horizontal sensors face forward, left to right.
const frontSensors = 5

type indicator interface {
	Set(on bool)
}

type textPanel interface {
	SetLines(lines ...string)
}

// ObstacleAvoidance drives forward and spins away from the side whose
// proximity readings are stronger.
//
// Params:
//   - velocity: wheel speed (default 200)
//   - threshold: a reading above this counts as an obstacle (default 0)
//   - sensor / actuator: device names (default "proximity" / "wheels")
//   - indicator / display: optional status_led and display names
type ObstacleAvoidance struct {
	base

	velocity  float64
	threshold float64

	proximity device.Reader
	wheels    device.DifferentialDrive
	led       indicator
	panel     textPanel

	avoiding bool
}

// NewObstacleAvoidance is the Constructor for "obstacle_avoidance".
func NewObstacleAvoidance(logger *zap.SugaredLogger) Controller {
	return &ObstacleAvoidance{base: base{logger: logger}}
}

func (c *ObstacleAvoidance) Init(devices *device.Table, params config.Params) error {
	var err error
	if c.velocity, err = params.Float("velocity", 200); err != nil {
		return err
	}
	if c.threshold, err = params.Float("threshold", 0); err != nil {
		return err
	}

	sensorName, err := params.String("sensor", "proximity")
	if err != nil {
		return err
	}
	s, ok := devices.Sensor(sensorName)
	if !ok {
		return fmt.Errorf("sensor %q is not bound", sensorName)
	}
	if c.proximity, ok = s.(device.Reader); !ok {
		return fmt.Errorf("sensor %q has no readings", sensorName)
	}

	actuatorName, err := params.String("actuator", "wheels")
	if err != nil {
		return err
	}
	a, ok := devices.Actuator(actuatorName)
	if !ok {
		return fmt.Errorf("actuator %q is not bound", actuatorName)
	}
	if c.wheels, ok = a.(device.DifferentialDrive); !ok {
		return fmt.Errorf("actuator %q is not a differential drive", actuatorName)
	}

	if name, err := params.String("indicator", "status_led"); err != nil {
		return err
	} else if a, ok := devices.Actuator(name); ok {
		c.led, _ = a.(indicator)
	}
	if name, err := params.String("display", "display"); err != nil {
		return err
	} else if a, ok := devices.Actuator(name); ok {
		c.panel, _ = a.(textPanel)
	}
	return nil
}

func (c *ObstacleAvoidance) ControlStep() error {
	readings := c.proximity.Readings()
	front := readings
	if len(front) > frontSensors {
		front = front[:frontSensors]
	}

	obstacle := false
	for _, r := range front {
		if r > c.threshold {
			obstacle = true
			break
		}
	}

	var left, right float64
	half := len(front) / 2
	for i := 0; i < half; i++ {
		left += front[i]
		right += front[len(front)-1-i]
	}

	var l, r float64
	switch {
	case !obstacle:
		l, r = c.velocity, c.velocity
	case left > right:
		l, r = c.velocity, -c.velocity
	default:
		l, r = -c.velocity, c.velocity
	}
	c.wheels.SetLinearVelocity(l, r)

	if obstacle != c.avoiding {
		c.logger.Debugf("obstacle_avoidance: obstacle=%t", obstacle)
		c.avoiding = obstacle
	}
	if c.led != nil {
		c.led.Set(obstacle)
	}
	if c.panel != nil {
		status := "clear"
		if obstacle {
			status = "obstacle"
		}
		c.panel.SetLines(c.id, status, fmt.Sprintf("L%5.0f R%5.0f", l, r))
	}
	return nil
}

func (c *ObstacleAvoidance) Reset() {
	c.avoiding = false
}

func (c *ObstacleAvoidance) Destroy() {
	c.proximity = nil
	c.wheels = nil
	c.led = nil
	c.panel = nil
}

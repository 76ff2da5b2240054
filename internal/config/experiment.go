// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// DeviceKind tells sensors and actuators apart in a DeviceSpec.
type DeviceKind string

const (
	KindSensor   DeviceKind = "sensor"
	KindActuator DeviceKind = "actuator"
)

// DeviceSpec declares one device a controller needs.
type DeviceSpec struct {
	Name   string     `yaml:"name"`
	Kind   DeviceKind `yaml:"-"`
	Params Params     `yaml:"params"`
}

// ControllerEntry is one entry of the controllers section.
type ControllerEntry struct {
	ID        string       `yaml:"id"`
	Type      string       `yaml:"type"`
	Actuators []DeviceSpec `yaml:"actuators"`
	Sensors   []DeviceSpec `yaml:"sensors"`
	Params    Params       `yaml:"params"`
}

// Experiment is the parsed experiment document.
type Experiment struct {
	Framework struct {
		Experiment struct {
			TicksPerSecond float64 `yaml:"ticks_per_second"`
			Length         float64 `yaml:"length"`
		} `yaml:"experiment"`
	} `yaml:"framework"`
	Controllers []ControllerEntry `yaml:"controllers"`
}

// ControlConfig is what the loop needs to run one controller.
type ControlConfig struct {
	TickRate       float64 // ticks per second, > 0
	TotalDuration  float64 // seconds, 0 means unbounded
	ControllerKind string
	ControllerID   string
}

// Validate enforces tick_rate > 0 and total_duration >= 0.
func (c ControlConfig) Validate() error {
	if math.IsNaN(c.TickRate) || math.IsInf(c.TickRate, 0) || c.TickRate <= 0 {
		return &ConfigurationError{ID: c.ControllerID, Reason: fmt.Sprintf("ticks_per_second must be a positive number, got %v", c.TickRate)}
	}
	if math.IsNaN(c.TotalDuration) || math.IsInf(c.TotalDuration, 0) || c.TotalDuration < 0 {
		return &ConfigurationError{ID: c.ControllerID, Reason: fmt.Sprintf("length must be a non-negative number, got %v", c.TotalDuration)}
	}
	if c.ControllerKind == "" {
		return &ConfigurationError{ID: c.ControllerID, Reason: "controller type is empty"}
	}
	return nil
}

// LoadExperiment reads and parses an experiment document.
func LoadExperiment(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file: %w", err)
	}
	return ParseExperiment(data)
}

// ParseExperiment parses an experiment document from memory.
func ParseExperiment(data []byte) (*Experiment, error) {
	var exp Experiment
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to parse experiment: %w", err)
	}
	for i := range exp.Controllers {
		c := &exp.Controllers[i]
		for j := range c.Actuators {
			c.Actuators[j].Kind = KindActuator
		}
		for j := range c.Sensors {
			c.Sensors[j].Kind = KindSensor
		}
	}
	return &exp, nil
}

// Controller returns the entry with the given id. The first match wins.
func (e *Experiment) Controller(id string) (*ControllerEntry, error) {
	for i := range e.Controllers {
		if e.Controllers[i].ID == id {
			return &e.Controllers[i], nil
		}
	}
	return nil, &ConfigurationError{ID: id, Reason: fmt.Sprintf("can't find controller with id %q", id)}
}

// ControlConfig resolves the controller id and returns a validated
// ControlConfig for it.
func (e *Experiment) ControlConfig(id string) (ControlConfig, error) {
	entry, err := e.Controller(id)
	if err != nil {
		return ControlConfig{}, err
	}
	cfg := ControlConfig{
		TickRate:       e.Framework.Experiment.TicksPerSecond,
		TotalDuration:  e.Framework.Experiment.Length,
		ControllerKind: entry.Type,
		ControllerID:   entry.ID,
	}
	if err := cfg.Validate(); err != nil {
		return ControlConfig{}, err
	}
	return cfg, nil
}

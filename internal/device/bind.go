// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"errors"
	"fmt"
	"io"

	"github.com/relabs-tech/real_robot/internal/config"
)

// Table holds the devices bound for one controller, by name. Iteration order
// is declaration order.
type Table struct {
	sensors   map[string]Sensor
	actuators map[string]Actuator

	sensorOrder   []Sensor
	actuatorOrder []Actuator
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		sensors:   make(map[string]Sensor),
		actuators: make(map[string]Actuator),
	}
}

// Sensor looks up a bound sensor.
func (t *Table) Sensor(name string) (Sensor, bool) {
	s, ok := t.sensors[name]
	return s, ok
}

// Actuator looks up a bound actuator.
func (t *Table) Actuator(name string) (Actuator, bool) {
	a, ok := t.actuators[name]
	return a, ok
}

// Sensors returns the bound sensors in declaration order.
func (t *Table) Sensors() []Sensor {
	return t.sensorOrder
}

// Actuators returns the bound actuators in declaration order.
func (t *Table) Actuators() []Actuator {
	return t.actuatorOrder
}

func (t *Table) addSensor(s Sensor) {
	t.sensors[s.Name()] = s
	t.sensorOrder = append(t.sensorOrder, s)
}

func (t *Table) addActuator(a Actuator) {
	t.actuators[a.Name()] = a
	t.actuatorOrder = append(t.actuatorOrder, a)
}

// Close closes every device that holds resources, actuators first.
func (t *Table) Close() error {
	var devs []any
	for _, a := range t.actuatorOrder {
		devs = append(devs, a)
	}
	for _, s := range t.sensorOrder {
		devs = append(devs, s)
	}
	return closeAll(devs)
}

func closeAll(devs []any) error {
	var errs []error
	for _, d := range devs {
		if c, ok := d.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Bind builds, initialises and enables the declared devices.
//
// Nothing is constructed when a name is declared twice. Sensors are enabled
// only after every device has been constructed and initialised, so a failing
// pass never switches hardware on. Devices already built are closed when the
// pass fails.
func Bind(f *Factory, env Env, sensors, actuators []config.DeviceSpec) (*Table, error) {
	if err := checkDuplicates(config.KindActuator, actuators); err != nil {
		return nil, err
	}
	if err := checkDuplicates(config.KindSensor, sensors); err != nil {
		return nil, err
	}

	var built []any
	fail := func(err error) (*Table, error) {
		if cerr := closeAll(built); cerr != nil && env.Logger != nil {
			env.Logger.Warnf("device: closing after failed bind: %v", cerr)
		}
		return nil, err
	}

	// construct
	acts := make([]Actuator, 0, len(actuators))
	for _, spec := range actuators {
		a, ok := f.MakeActuator(spec.Name, env)
		if !ok {
			return fail(&UnknownDeviceError{Kind: config.KindActuator, Name: spec.Name})
		}
		acts = append(acts, a)
		built = append(built, a)
	}
	sens := make([]Sensor, 0, len(sensors))
	for _, spec := range sensors {
		s, ok := f.MakeSensor(spec.Name, env)
		if !ok {
			return fail(&UnknownDeviceError{Kind: config.KindSensor, Name: spec.Name})
		}
		sens = append(sens, s)
		built = append(built, s)
	}

	// init
	for i, a := range acts {
		if err := a.Init(actuators[i].Params); err != nil {
			return fail(fmt.Errorf("init actuator %q: %w", actuators[i].Name, err))
		}
	}
	for i, s := range sens {
		if err := s.Init(sensors[i].Params); err != nil {
			return fail(fmt.Errorf("init sensor %q: %w", sensors[i].Name, err))
		}
	}

	// enable
	for _, s := range sens {
		if e, ok := s.(Enabler); ok {
			if err := e.Enable(); err != nil {
				return fail(fmt.Errorf("enable sensor %q: %w", s.Name(), err))
			}
		}
	}

	t := NewTable()
	for _, a := range acts {
		t.addActuator(a)
	}
	for _, s := range sens {
		t.addSensor(s)
	}
	if env.Logger != nil {
		env.Logger.Infof("device: bound %d actuators and %d sensors", len(acts), len(sens))
	}
	return t, nil
}

func checkDuplicates(kind config.DeviceKind, specs []config.DeviceSpec) error {
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if _, dup := seen[spec.Name]; dup {
			return &DuplicateDeviceError{Kind: kind, Name: spec.Name}
		}
		seen[spec.Name] = struct{}{}
	}
	return nil
}

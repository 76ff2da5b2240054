// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"sort"
	"sync"
)

// SensorConstructor builds an uninitialised sensor registered under name.
type SensorConstructor func(name string, env Env) Sensor

// ActuatorConstructor builds an uninitialised actuator registered under name.
type ActuatorConstructor func(name string, env Env) Actuator

// Factory maps device names to constructors.
type Factory struct {
	mu        sync.RWMutex
	sensors   map[string]SensorConstructor
	actuators map[string]ActuatorConstructor
}

// NewFactory returns an empty factory.
func NewFactory() *Factory {
	return &Factory{
		sensors:   make(map[string]SensorConstructor),
		actuators: make(map[string]ActuatorConstructor),
	}
}

// DefaultFactory returns a factory holding every built-in device.
func DefaultFactory() *Factory {
	f := NewFactory()

	f.RegisterSensor("proximity", NewProximity)
	f.RegisterSensor("range_finder", NewRangeFinder)
	f.RegisterSensor("temperature", NewTemperature)
	f.RegisterSensor("gps", NewGPS)

	f.RegisterActuator("wheels", NewWheels)
	f.RegisterActuator("status_led", NewStatusLED)
	f.RegisterActuator("display", NewDisplay)

	return f
}

// RegisterSensor adds or replaces the constructor for name.
func (f *Factory) RegisterSensor(name string, c SensorConstructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sensors[name] = c
}

// RegisterActuator adds or replaces the constructor for name.
func (f *Factory) RegisterActuator(name string, c ActuatorConstructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actuators[name] = c
}

// MakeSensor builds the sensor registered under name. ok is false for an
// unknown name.
func (f *Factory) MakeSensor(name string, env Env) (s Sensor, ok bool) {
	f.mu.RLock()
	c, ok := f.sensors[name]
	f.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return c(name, env), true
}

// MakeActuator builds the actuator registered under name. ok is false for an
// unknown name.
func (f *Factory) MakeActuator(name string, env Env) (a Actuator, ok bool) {
	f.mu.RLock()
	c, ok := f.actuators[name]
	f.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return c(name, env), true
}

// Sensors lists the registered sensor names, sorted.
func (f *Factory) Sensors() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedKeys(f.sensors)
}

// Actuators lists the registered actuator names, sorted.
func (f *Factory) Actuators() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedKeys(f.actuators)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"fmt"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"

	"github.com/relabs-tech/real_robot/internal/config"
)

const bmp280DefaultAddr = 0x76

// envSenser is the part of *bmxx80.Dev the temperature sensor uses.
type envSenser interface {
	Sense(e *physic.Env) error
	Halt() error
}

func openBMxx80(bus i2c.Bus, addr uint16) (envSenser, error) {
	return bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
}

// Temperature is a BMP280/BME280 on the I2C bus. Readings are the
// temperature in °C and the pressure in hPa.
type Temperature struct {
	name   string
	env    Env
	logger *zap.SugaredLogger
	open   func(bus i2c.Bus, addr uint16) (envSenser, error)

	dev      envSenser
	celsius  float64
	pressure float64 // hPa
}

// NewTemperature is the SensorConstructor for "temperature".
func NewTemperature(name string, env Env) Sensor {
	return &Temperature{name: name, env: env, logger: loggerFor(env), open: openBMxx80}
}

func (t *Temperature) Name() string { return t.name }

// Init opens the sensor at the configured address.
func (t *Temperature) Init(params config.Params) error {
	bus, err := t.env.Handle.RequireBus(t.name)
	if err != nil {
		return err
	}
	addr, err := params.Int("address", bmp280DefaultAddr)
	if err != nil {
		return err
	}
	dev, err := t.open(bus, uint16(addr))
	if err != nil {
		return fmt.Errorf("%s: BMP init at 0x%02X: %w", t.name, addr, err)
	}
	t.dev = dev
	t.logger.Infof("%s: BMP sensor initialized at 0x%02X", t.name, addr)
	return nil
}

// Update takes one measurement.
func (t *Temperature) Update() error {
	var e physic.Env
	if err := t.dev.Sense(&e); err != nil {
		return fmt.Errorf("%s: BMP sense: %w", t.name, err)
	}
	pressurePa := float64(e.Pressure) / float64(physic.Pascal)
	t.celsius = e.Temperature.Celsius()
	t.pressure = pressurePa / 100.0 // 1 hPa = 100 Pa
	return nil
}

// Reset clears the last measurement.
func (t *Temperature) Reset() {
	t.celsius = 0
	t.pressure = 0
}

// Readings returns °C and hPa.
func (t *Temperature) Readings() []float64 {
	return []float64{t.celsius, t.pressure}
}

// Close halts the sensor.
func (t *Temperature) Close() error {
	if t.dev == nil {
		return nil
	}
	dev := t.dev
	t.dev = nil
	return dev.Halt()
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"fmt"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/real_robot/internal/calibration"
	"github.com/relabs-tech/real_robot/internal/config"
)

// VL53L0X registers used by RangeFinder.
const (
	vl53l0xDefaultAddr = 0x29

	regSysrangeStart     = 0x00
	regResultRangeStatus = 0x14
	regResultRangeMM     = regResultRangeStatus + 10 // 16-bit big endian
	regIdentModelID      = 0xC0

	vl53l0xModelID = 0xEE

	sysrangeStop       = 0x01
	sysrangeBackToBack = 0x02
)

// RangeFinder is a VL53L0X time-of-flight sensor on the I2C bus, used in
// continuous back-to-back mode. Its single reading is calibrated like a
// proximity sensor.
type RangeFinder struct {
	name   string
	env    Env
	logger *zap.SugaredLogger

	dev     *i2c.Dev
	ranging bool
	meters  float64
	reading float64
}

// NewRangeFinder is the SensorConstructor for "range_finder".
func NewRangeFinder(name string, env Env) Sensor {
	return &RangeFinder{name: name, env: env, logger: loggerFor(env)}
}

func (r *RangeFinder) Name() string { return r.name }

// Init checks the model id at the configured address.
func (r *RangeFinder) Init(params config.Params) error {
	bus, err := r.env.Handle.RequireBus(r.name)
	if err != nil {
		return err
	}
	addr, err := params.Int("address", vl53l0xDefaultAddr)
	if err != nil {
		return err
	}
	if addr <= 0 || addr > 0x7F {
		return fmt.Errorf("address 0x%X is not a 7-bit I2C address", addr)
	}
	r.dev = &i2c.Dev{Bus: bus, Addr: uint16(addr)}

	id := make([]byte, 1)
	if err := r.dev.Tx([]byte{regIdentModelID}, id); err != nil {
		return fmt.Errorf("%s: read model id: %w", r.name, err)
	}
	if id[0] != vl53l0xModelID {
		return fmt.Errorf("%s: unexpected model id 0x%02X at 0x%02X", r.name, id[0], addr)
	}
	r.logger.Infof("%s: VL53L0X found at 0x%02X", r.name, addr)
	return nil
}

// Enable starts continuous ranging.
func (r *RangeFinder) Enable() error {
	if err := r.dev.Tx([]byte{regSysrangeStart, sysrangeBackToBack}, nil); err != nil {
		return fmt.Errorf("%s: start ranging: %w", r.name, err)
	}
	r.ranging = true
	return nil
}

// Update reads the last range measurement. Nothing in range reads as 8190mm
// or more, which calibrates to zero.
func (r *RangeFinder) Update() error {
	buf := make([]byte, 2)
	if err := r.dev.Tx([]byte{regResultRangeMM}, buf); err != nil {
		return fmt.Errorf("%s: read range: %w", r.name, err)
	}
	mm := uint16(buf[0])<<8 | uint16(buf[1])
	r.meters = float64(mm) / 1000
	r.reading = calibration.CalculateReading(r.meters)
	return nil
}

// Reset clears the last measurement.
func (r *RangeFinder) Reset() {
	r.meters = 0
	r.reading = 0
}

// Readings returns the calibrated range.
func (r *RangeFinder) Readings() []float64 {
	return []float64{r.reading}
}

// Meters returns the last measured range.
func (r *RangeFinder) Meters() float64 { return r.meters }

// Close stops ranging.
func (r *RangeFinder) Close() error {
	if !r.ranging {
		return nil
	}
	r.ranging = false
	return r.dev.Tx([]byte{regSysrangeStart, sysrangeStop}, nil)
}

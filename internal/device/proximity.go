// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/relabs-tech/real_robot/internal/calibration"
	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/transport"
)

// DefaultProximityCount is the size of a Thymio horizontal proximity array.
const DefaultProximityCount = 7

// Proximity is the horizontal proximity array reached over the command link.
// Raw values are obstacle distances in meters; Readings are calibrated.
type Proximity struct {
	name   string
	env    Env
	logger *zap.SugaredLogger

	link     transport.Link
	count    int
	enabled  bool
	raw      []float64
	readings []float64
}

// NewProximity is the SensorConstructor for "proximity".
func NewProximity(name string, env Env) Sensor {
	return &Proximity{name: name, env: env, logger: loggerFor(env)}
}

func (p *Proximity) Name() string { return p.name }

// Init picks up the command link and the array size.
func (p *Proximity) Init(params config.Params) error {
	link, err := p.env.Handle.RequireLink(p.name)
	if err != nil {
		return err
	}
	count, err := params.Int("count", DefaultProximityCount)
	if err != nil {
		return err
	}
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	p.link = link
	p.count = count
	p.raw = make([]float64, count)
	p.readings = make([]float64, count)
	return nil
}

// Enable switches the array on.
func (p *Proximity) Enable() error {
	if err := expectOK(p.link, "prox.enable 1"); err != nil {
		return err
	}
	p.enabled = true
	p.logger.Infof("%s: enabled (%d sensors)", p.name, p.count)
	return nil
}

// Update fetches the raw distances and calibrates them.
func (p *Proximity) Update() error {
	resp, err := p.link.Request("prox.horizontal")
	if err != nil {
		return err
	}
	fields := strings.Fields(resp)
	if len(fields) != p.count {
		return fmt.Errorf("%s: expected %d distances, got %d", p.name, p.count, len(fields))
	}
	for i, f := range fields {
		d, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("%s: bad distance %q: %w", p.name, f, err)
		}
		// calibration is only defined for finite non-negative distances
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return fmt.Errorf("%s: distance %d out of domain: %v", p.name, i, d)
		}
		p.raw[i] = d
	}
	p.readings = calibration.CalibrateAll(p.readings, p.raw)
	return nil
}

// Reset clears the last readings.
func (p *Proximity) Reset() {
	clear(p.raw)
	clear(p.readings)
}

// Readings returns a copy of the calibrated values.
func (p *Proximity) Readings() []float64 {
	return append([]float64(nil), p.readings...)
}

// Raw returns a copy of the last distances in meters.
func (p *Proximity) Raw() []float64 {
	return append([]float64(nil), p.raw...)
}

// Close switches the array off if it was enabled.
func (p *Proximity) Close() error {
	if !p.enabled {
		return nil
	}
	p.enabled = false
	return expectOK(p.link, "prox.enable 0")
}

func expectOK(link transport.Link, cmd string) error {
	resp, err := link.Request(cmd)
	if err != nil {
		return err
	}
	if resp != "ok" {
		return fmt.Errorf("unexpected response to %q: %q", cmd, resp)
	}
	return nil
}

func loggerFor(env Env) *zap.SugaredLogger {
	if env.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return env.Logger
}

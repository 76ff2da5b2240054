// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"fmt"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	"go.uber.org/zap"

	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/transport"
)

// Fix represents a single combined GPS fix suitable for JSON and MQTT.
type Fix struct {
	Time       string  `json:"time"`        // e.g. "12:34:56"
	Date       string  `json:"date"`        // e.g. "23/03/94"
	Latitude   float64 `json:"lat"`         // decimal degrees
	Longitude  float64 `json:"lon"`         // decimal degrees
	SpeedKnots float64 `json:"speed_knots"` // speed over ground
	CourseDeg  float64 `json:"course_deg"`  // course over ground
	Validity   string  `json:"validity"`    // "A" (valid) / "V" (void)
}

// Valid reports whether the receiver flagged the fix as valid.
func (f Fix) Valid() bool { return f.Validity == nmea.ValidRMC }

// GPS polls the robot's receiver for RMC sentences over the command link.
type GPS struct {
	name   string
	env    Env
	logger *zap.SugaredLogger

	link    transport.Link
	fix     Fix
	haveFix bool
}

// NewGPS is the SensorConstructor for "gps".
func NewGPS(name string, env Env) Sensor {
	return &GPS{name: name, env: env, logger: loggerFor(env)}
}

func (g *GPS) Name() string { return g.name }

// Init picks up the command link.
func (g *GPS) Init(_ config.Params) error {
	link, err := g.env.Handle.RequireLink(g.name)
	if err != nil {
		return err
	}
	g.link = link
	return nil
}

// Update asks for the latest RMC sentence. An unparseable sentence keeps the
// previous fix; only link failures are errors.
func (g *GPS) Update() error {
	line, err := g.link.Request("gps.rmc")
	if err != nil {
		return err
	}
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		g.logger.Debugf("%s: ignoring non-NMEA line %q", g.name, line)
		return nil
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		g.logger.Debugf("%s: NMEA parse error: %v (line: %q)", g.name, err, line)
		return nil
	}

	switch sentence.DataType() {
	case nmea.TypeRMC:
		m, ok := sentence.(nmea.RMC)
		if !ok {
			return fmt.Errorf("%s: unexpected sentence type %T", g.name, sentence)
		}
		g.fix = Fix{
			Time:       m.Time.String(),
			Date:       m.Date.String(),
			Latitude:   m.Latitude,
			Longitude:  m.Longitude,
			SpeedKnots: m.Speed,
			CourseDeg:  m.Course,
			Validity:   m.Validity,
		}
		g.haveFix = true
	default:
		// other sentence types are ignored
	}
	return nil
}

// Reset drops the last fix.
func (g *GPS) Reset() {
	g.fix = Fix{}
	g.haveFix = false
}

// Fix returns the latest fix and whether one has been received.
func (g *GPS) Fix() (Fix, bool) {
	return g.fix, g.haveFix
}

// Readings returns latitude, longitude, speed and course, or nothing before
// the first fix.
func (g *GPS) Readings() []float64 {
	if !g.haveFix {
		return nil
	}
	return []float64{g.fix.Latitude, g.fix.Longitude, g.fix.SpeedKnots, g.fix.CourseDeg}
}

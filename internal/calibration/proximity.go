// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package calibration maps raw proximity distances to the normalized readings
// controllers consume.
package calibration

const (
	// MaxRange is the effective sensing range in meters. Anything farther
	// reads as 0.
	MaxRange = 0.085
	// NearRange is the upper bound (meters, exclusive) of the close-range
	// segment.
	NearRange = 0.02

	// Attenuation scales the fitted value into the controller input range.
	Attenuation float64 = 4300
)

// Fitted segments, line slope over distance range. Typed so each operand is
// rounded to float64 before the division.
const (
	midLine  float64 = 0.083
	midSpan  float64 = 2910
	nearLine float64 = 0.015
	nearSpan float64 = 192
)

// CalculateReading converts a distance in meters into a normalized proximity
// reading. It is pure and deterministic.
//
// distance must be finite and non-negative; callers filter anything else.
//
// The mid-range test is strict on both ends, so a distance of exactly
// MaxRange uses the close-range slope. Calibrated hardware expects this.
func CalculateReading(distance float64) float64 {
	var output float64

	// fitting into range
	if distance > MaxRange {
		output = 0
	} else if distance > NearRange && distance < MaxRange {
		output = midLine / midSpan * distance
	} else {
		output = nearLine / nearSpan * distance
	}

	// scaling down into range
	return output / Attenuation
}

// CalibrateAll writes CalculateReading(distances[i]) into dst[i] and returns
// dst, growing it if needed.
func CalibrateAll(dst, distances []float64) []float64 {
	if cap(dst) < len(distances) {
		dst = make([]float64, len(distances))
	}
	dst = dst[:len(distances)]
	for i, d := range distances {
		dst[i] = CalculateReading(d)
	}
	return dst
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateReadingOutOfRange(t *testing.T) {
	for _, d := range []float64{0.0851, 0.09, 0.5, 1, 100, math.MaxFloat64} {
		assert.Equal(t, 0.0, CalculateReading(d), "distance %v", d)
	}
}

func TestCalculateReadingMidRange(t *testing.T) {
	for _, d := range []float64{0.0200001, 0.03, 0.05, 0.0849999} {
		want := d * (0.083 / 2910) / 4300
		assert.InEpsilon(t, want, CalculateReading(d), 1e-12, "distance %v", d)
	}
}

func TestCalculateReadingCloseRange(t *testing.T) {
	for _, d := range []float64{0.001, 0.01, 0.02} {
		want := d * (0.015 / 192) / 4300
		assert.InEpsilon(t, want, CalculateReading(d), 1e-12, "distance %v", d)
	}
	assert.Equal(t, 0.0, CalculateReading(0))
}

func TestCalculateReadingUpperBoundaryUsesCloseSlope(t *testing.T) {
	got := CalculateReading(MaxRange)
	assert.InEpsilon(t, 0.085*(0.015/192)/4300, got, 1e-12)
	assert.NotEqual(t, 0.0, got)

	mid := 0.085 * (0.083 / 2910) / 4300
	assert.Greater(t, math.Abs(got-mid), 1e-12)
}

func TestCalculateReadingIsPure(t *testing.T) {
	for _, d := range []float64{0, 0.01, 0.02, 0.0425, 0.085, 0.2} {
		a := CalculateReading(d)
		b := CalculateReading(d)
		assert.Equal(t, math.Float64bits(a), math.Float64bits(b), "distance %v", d)
	}
}

func TestCalibrateAll(t *testing.T) {
	in := []float64{0.01, 0.05, 0.2}
	out := CalibrateAll(nil, in)
	assert.Len(t, out, 3)
	for i, d := range in {
		assert.Equal(t, CalculateReading(d), out[i])
	}

	buf := make([]float64, 10)
	out = CalibrateAll(buf, in)
	assert.Len(t, out, 3)
	assert.Equal(t, &buf[0], &out[0])
}

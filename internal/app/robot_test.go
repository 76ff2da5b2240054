// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/controller"
	"github.com/relabs-tech/real_robot/internal/device"
	"github.com/relabs-tech/real_robot/internal/loop"
	"github.com/relabs-tech/real_robot/internal/telemetry"
	"github.com/relabs-tech/real_robot/internal/transport"
)

const experimentYAML = `
framework:
  experiment:
    ticks_per_second: 5
    length: 1.0
controllers:
  - id: c1
    type: obstacle_avoidance
    actuators:
      - name: wheels
        params: {max_speed: 500}
    sensors:
      - name: proximity
    params:
      velocity: 100
  - id: broken
    type: obstacle_avoidance
    sensors:
      - name: proximity
      - name: lidar
  - id: idle
    type: static
    sensors:
      - name: proximity
`

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

type memorySink struct {
	snaps  []telemetry.Snapshot
	events []telemetry.Event
	closed int
}

func (m *memorySink) Record(s telemetry.Snapshot) error { m.snaps = append(m.snaps, s); return nil }
func (m *memorySink) Event(e telemetry.Event) error     { m.events = append(m.events, e); return nil }
func (m *memorySink) Close() error                      { m.closed++; return nil }

func (m *memorySink) kinds() []string {
	var out []string
	for _, e := range m.events {
		out = append(out, e.Kind)
	}
	return out
}

type harness struct {
	sim  *transport.SimLink
	sink *memorySink
	logs *observer.ObservedLogs
	opts Options
}

func newHarness(t *testing.T, controllerID string) *harness {
	t.Helper()
	exp, err := config.ParseExperiment([]byte(experimentYAML))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	hostname := func(context.Context) (string, error) { return "thymio-07", nil }
	h := &harness{sim: transport.NewSimLink(), sink: &memorySink{}, logs: logs}
	h.opts = Options{
		Experiment:     exp,
		ControllerID:   controllerID,
		Handle:         &transport.Handle{Link: h.sim},
		Sink:           h.sink,
		Logger:         zap.New(core).Sugar(),
		LoopOptions:    []loop.Option{loop.WithClock(&fakeClock{now: time.Unix(0, 0)})},
		ManagerOptions: []controller.Option{controller.WithHostname(hostname)},
	}
	return h
}

func count(items []string, want string) int {
	n := 0
	for _, it := range items {
		if it == want {
			n++
		}
	}
	return n
}

func TestRobotEndToEnd(t *testing.T) {
	h := newHarness(t, "c1")
	robot, err := NewRobot(h.opts)
	require.NoError(t, err)
	assert.Equal(t, 1, count(h.sim.Requests(), "prox.enable 1"))

	require.NoError(t, robot.Execute(context.Background()))

	require.Len(t, h.sink.snaps, 5)
	for i, s := range h.sink.snaps {
		assert.Equal(t, uint64(i+1), s.Tick)
		assert.Equal(t, robot.RunID(), s.RunID)
		assert.Equal(t, "thymio-07", s.Controller)
		assert.Len(t, s.Readings["proximity"], device.DefaultProximityCount)
		assert.Len(t, s.Commands["wheels"], 2)
	}
	assert.Equal(t, []string{telemetry.EventStart, telemetry.EventStop}, h.sink.kinds())
	assert.Equal(t, uint64(5), h.sink.events[1].Ticks)
	assert.Equal(t, 1, h.sink.closed)

	// motors at rest and proximity switched off after cleanup
	left, right := h.sim.Motors()
	assert.Zero(t, left)
	assert.Zero(t, right)
	reqs := h.sim.Requests()
	assert.Equal(t, "prox.enable 0", reqs[len(reqs)-1])
	assert.Equal(t, 1, count(reqs, "prox.enable 1"))

	status := robot.Status()
	assert.Equal(t, uint64(5), status.Ticks)
	assert.Equal(t, "stopped", status.State)
	assert.Equal(t, "c1", status.ControllerID)
	assert.Equal(t, "obstacle_avoidance", status.ControllerKind)
	assert.Equal(t, "thymio-07", status.Identity)

	robot.Cleanup()
	assert.Equal(t, 1, h.logs.FilterMessage("robot: all done").Len())
	assert.Equal(t, 1, h.logs.FilterMessage("robot: stopping controller").Len())
	assert.Equal(t, 1, h.sink.closed)
}

func TestRobotUnknownDeviceNeverEnables(t *testing.T) {
	h := newHarness(t, "broken")
	_, err := NewRobot(h.opts)

	var unknown *device.UnknownDeviceError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "lidar", unknown.Name)
	assert.Zero(t, count(h.sim.Requests(), "prox.enable 1"))
	assert.Empty(t, h.sink.events)
}

func TestRobotUnknownControllerID(t *testing.T) {
	h := newHarness(t, "c9")
	_, err := NewRobot(h.opts)

	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), `"c9"`)
	assert.Empty(t, h.sim.Requests())
}

func TestRobotMissingHandle(t *testing.T) {
	h := newHarness(t, "c1")
	h.opts.Handle = nil
	_, err := NewRobot(h.opts)

	var bindErr *transport.BindingError
	assert.True(t, errors.As(err, &bindErr))
}

func TestRobotControllerInitFailureReleasesDevices(t *testing.T) {
	// static needs wheels and the idle entry declares none
	h := newHarness(t, "idle")
	_, err := NewRobot(h.opts)
	require.Error(t, err)

	reqs := h.sim.Requests()
	assert.Equal(t, 1, count(reqs, "prox.enable 1"))
	assert.Equal(t, "prox.enable 0", reqs[len(reqs)-1])
}

func TestRobotTickErrorRunsCleanup(t *testing.T) {
	h := newHarness(t, "c1")
	robot, err := NewRobot(h.opts)
	require.NoError(t, err)

	require.NoError(t, h.sim.Close())
	err = robot.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tick 1: sense: sensor "proximity"`)
	assert.ErrorIs(t, err, transport.ErrLinkClosed)

	assert.Empty(t, h.sink.snaps)
	assert.Equal(t, []string{telemetry.EventStart, telemetry.EventError, telemetry.EventStop}, h.sink.kinds())
	assert.Equal(t, 1, h.sink.closed)
	assert.Equal(t, "stopped", robot.Status().State)
	assert.Equal(t, 1, h.logs.FilterMessage("robot: all done").Len())
}

func TestRobotCancelledBeforeFirstTick(t *testing.T) {
	h := newHarness(t, "c1")
	robot, err := NewRobot(h.opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, robot.Execute(ctx))

	assert.Empty(t, h.sink.snaps)
	assert.Equal(t, []string{telemetry.EventStart, telemetry.EventStop}, h.sink.kinds())
	assert.Equal(t, "stopped", robot.Status().State)
}

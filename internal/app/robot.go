// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/controller"
	"github.com/relabs-tech/real_robot/internal/device"
	"github.com/relabs-tech/real_robot/internal/loop"
	"github.com/relabs-tech/real_robot/internal/telemetry"
	"github.com/relabs-tech/real_robot/internal/transport"
)

// Options describes one robot run.
type Options struct {
	// ExperimentPath is read unless Experiment is already set.
	ExperimentPath string
	Experiment     *config.Experiment
	ControllerID   string

	// Handle is the caller's connection to the robot; the runner never
	// closes it.
	Handle *transport.Handle

	Factory  *device.Factory      // nil uses device.DefaultFactory
	Registry *controller.Registry // nil uses controller.DefaultRegistry
	Sink     telemetry.Sink       // nil discards telemetry
	Logger   *zap.SugaredLogger

	Now            func() time.Time
	LoopOptions    []loop.Option
	ManagerOptions []controller.Option
}

// Status is a point-in-time view of a run, safe to read from other
// goroutines.
type Status struct {
	RunID          string  `json:"run_id"`
	ControllerID   string  `json:"controller_id"`
	ControllerKind string  `json:"controller_kind"`
	Identity       string  `json:"identity"`
	State          string  `json:"state"`
	Ticks          uint64  `json:"ticks"`
	TickRate       float64 `json:"tick_rate"`
	Length         float64 `json:"length"`
}

// Robot owns everything one run needs: the bound devices, the controller
// manager and the loop. It is the loop's Robot and Observer.
type Robot struct {
	cfg     config.ControlConfig
	devices *device.Table
	manager *controller.Manager
	loop    *loop.Loop
	sink    telemetry.Sink
	logger  *zap.SugaredLogger
	now     func() time.Time
	runID   string

	ticks       atomic.Uint64
	cleanupOnce sync.Once
}

// NewRobot resolves the experiment, binds the devices and initialises the
// controller. Any failure is returned before a single tick runs, and
// whatever was bound is released.
func NewRobot(opts Options) (*Robot, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	exp := opts.Experiment
	if exp == nil {
		var err error
		logger.Infof("robot: loading experiment %s", opts.ExperimentPath)
		if exp, err = config.LoadExperiment(opts.ExperimentPath); err != nil {
			return nil, err
		}
	}

	cfg, err := exp.ControlConfig(opts.ControllerID)
	if err != nil {
		return nil, err
	}
	entry, err := exp.Controller(opts.ControllerID)
	if err != nil {
		return nil, err
	}

	if err := opts.Handle.Probe(); err != nil {
		return nil, err
	}

	factory := opts.Factory
	if factory == nil {
		factory = device.DefaultFactory()
	}
	registry := opts.Registry
	if registry == nil {
		registry = controller.DefaultRegistry()
	}

	devices, err := device.Bind(factory, device.Env{Handle: opts.Handle, Logger: logger}, entry.Sensors, entry.Actuators)
	if err != nil {
		return nil, err
	}

	manager := controller.NewManager(registry, logger, opts.ManagerOptions...)
	if err := manager.Initialize(cfg, devices, entry.Params); err != nil {
		if cerr := devices.Close(); cerr != nil {
			logger.Warnf("robot: releasing devices: %v", cerr)
		}
		return nil, err
	}

	r := &Robot{
		cfg:     cfg,
		devices: devices,
		manager: manager,
		sink:    opts.Sink,
		logger:  logger,
		now:     opts.Now,
		runID:   telemetry.NewRunID(),
	}
	if r.sink == nil {
		r.sink = telemetry.Discard{}
	}
	if r.now == nil {
		r.now = time.Now
	}

	loopOpts := append([]loop.Option{loop.WithObserver(r)}, opts.LoopOptions...)
	if r.loop, err = loop.New(cfg, r, logger, loopOpts...); err != nil {
		manager.Shutdown()
		if cerr := devices.Close(); cerr != nil {
			logger.Warnf("robot: releasing devices: %v", cerr)
		}
		return nil, err
	}
	return r, nil
}

// Sense updates every sensor in declaration order.
func (r *Robot) Sense() error {
	for _, s := range r.devices.Sensors() {
		if err := s.Update(); err != nil {
			return fmt.Errorf("sensor %q: %w", s.Name(), err)
		}
	}
	return nil
}

// Control runs one controller step.
func (r *Robot) Control() error {
	return r.manager.Step()
}

// Act pushes every actuator's pending command to the hardware.
func (r *Robot) Act() error {
	for _, a := range r.devices.Actuators() {
		if err := a.Update(); err != nil {
			return fmt.Errorf("actuator %q: %w", a.Name(), err)
		}
	}
	return nil
}

// TickCompleted hands a snapshot of the tick to the telemetry sink.
// Telemetry problems are logged; they never stop the robot.
func (r *Robot) TickCompleted(tick uint64) {
	r.ticks.Store(tick)
	if err := r.sink.Record(r.snapshot(tick)); err != nil {
		r.logger.Warnf("robot: telemetry for tick %d: %v", tick, err)
	}
}

func (r *Robot) snapshot(tick uint64) telemetry.Snapshot {
	s := telemetry.Snapshot{
		RunID:      r.runID,
		Tick:       tick,
		Time:       r.now(),
		Controller: r.manager.ID(),
		Readings:   make(map[string][]float64),
		Commands:   make(map[string][]float64),
	}
	for _, sensor := range r.devices.Sensors() {
		if rd, ok := sensor.(device.Reader); ok {
			s.Readings[sensor.Name()] = rd.Readings()
		}
	}
	for _, act := range r.devices.Actuators() {
		if cmd, ok := act.(device.Commander); ok {
			s.Commands[act.Name()] = cmd.Commands()
		}
	}
	return s
}

// Execute runs the loop until it finishes, ctx is cancelled or a tick fails,
// then cleans up. The tick error, if any, is returned after cleanup.
func (r *Robot) Execute(ctx context.Context) error {
	r.event(telemetry.EventStart, "")

	_, err := r.loop.Run(ctx)
	if err != nil {
		r.logger.Errorf("robot: control loop failed: %v", err)
		r.event(telemetry.EventError, err.Error())
	}

	r.Cleanup()
	return err
}

// Cleanup stops the controller, brings the actuators to rest and releases
// the devices and telemetry. Only the first call does anything.
func (r *Robot) Cleanup() {
	r.cleanupOnce.Do(func() {
		r.manager.Shutdown()

		for _, a := range r.devices.Actuators() {
			a.Reset()
			if err := a.Update(); err != nil {
				r.logger.Warnf("robot: resetting actuator %q: %v", a.Name(), err)
			}
		}
		if err := r.devices.Close(); err != nil {
			r.logger.Warnf("robot: closing devices: %v", err)
		}

		r.event(telemetry.EventStop, "")
		if err := r.sink.Close(); err != nil {
			r.logger.Warnf("robot: closing telemetry: %v", err)
		}
		r.logger.Infof("robot: all done")
	})
}

func (r *Robot) event(kind, detail string) {
	e := telemetry.Event{
		RunID:      r.runID,
		Kind:       kind,
		Controller: r.manager.ID(),
		Time:       r.now(),
		Ticks:      r.ticks.Load(),
		Detail:     detail,
	}
	if err := r.sink.Event(e); err != nil {
		r.logger.Warnf("robot: telemetry %s event: %v", kind, err)
	}
}

// Status reports the run as it is right now.
func (r *Robot) Status() Status {
	return Status{
		RunID:          r.runID,
		ControllerID:   r.cfg.ControllerID,
		ControllerKind: r.cfg.ControllerKind,
		Identity:       r.manager.ID(),
		State:          r.manager.State().String(),
		Ticks:          r.ticks.Load(),
		TickRate:       r.cfg.TickRate,
		Length:         r.cfg.TotalDuration,
	}
}

// RunID identifies this run in telemetry.
func (r *Robot) RunID() string { return r.runID }

// Devices returns the bound device table.
func (r *Robot) Devices() *device.Table { return r.devices }

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/device"
)

// State is the lifecycle state of the managed controller.
type State int

const (
	Uninitialized State = iota
	Initialized
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrInvalidState is returned when an operation is not allowed in the
// current lifecycle state.
var ErrInvalidState = errors.New("invalid controller state")

const hostnameTimeout = 2 * time.Second

// Manager owns the single controller instance of a run and is the only thing
// that destroys it.
type Manager struct {
	registry *Registry
	logger   *zap.SugaredLogger
	hostname HostnameFunc

	mu       sync.Mutex
	state    State
	instance Controller
	kind     string
	id       string
}

// Option configures a Manager.
type Option func(*Manager)

// WithHostname replaces the hostname lookup used for the controller identity.
func WithHostname(fn HostnameFunc) Option {
	return func(m *Manager) { m.hostname = fn }
}

// NewManager returns a manager in the Uninitialized state.
func NewManager(registry *Registry, logger *zap.SugaredLogger, opts ...Option) *Manager {
	m := &Manager{
		registry: registry,
		logger:   logger,
		hostname: SystemHostname,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize builds the controller named by cfg, gives it the host identity
// and the bound devices, and moves to Initialized. On failure the manager
// stays Uninitialized and holds no instance.
func (m *Manager) Initialize(cfg config.ControlConfig, devices *device.Table, params config.Params) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Uninitialized {
		return fmt.Errorf("%w: initialize in state %s", ErrInvalidState, m.state)
	}

	m.logger.Infof("robot: controller type %q, id %q initialization start", cfg.ControllerKind, cfg.ControllerID)
	c, err := m.registry.New(cfg.ControllerKind, m.logger)
	if err != nil {
		return fmt.Errorf("controller %q: %w", cfg.ControllerID, err)
	}

	id := m.identity()
	c.SetID(id)
	m.logger.Infof("robot: controller id set to %q", id)

	if err := c.Init(devices, params); err != nil {
		c.Destroy()
		return fmt.Errorf("init controller %q: %w", cfg.ControllerID, err)
	}

	m.instance = c
	m.kind = cfg.ControllerKind
	m.id = id
	m.state = Initialized
	m.logger.Infof("robot: controller type %q, id %q initialization done", cfg.ControllerKind, cfg.ControllerID)
	return nil
}

// identity never fails: a lookup error degrades to the empty identity.
func (m *Manager) identity() string {
	ctx, cancel := context.WithTimeout(context.Background(), hostnameTimeout)
	defer cancel()

	name, err := m.hostname(ctx)
	if err != nil {
		m.logger.Warnf("robot: hostname lookup failed, using empty controller id: %v", err)
		return ""
	}
	return truncateIdentity(name)
}

// Step runs one control computation. The first call moves Initialized to
// Running.
func (m *Manager) Step() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Initialized:
		m.state = Running
	case Running:
	default:
		return fmt.Errorf("%w: step in state %s", ErrInvalidState, m.state)
	}
	return m.instance.ControlStep()
}

// Shutdown destroys the controller and moves to Stopped. Later calls do
// nothing.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Stopped {
		return
	}
	m.logger.Infof("robot: stopping controller")
	if m.instance != nil {
		m.instance.Destroy()
		m.instance = nil
	}
	m.state = Stopped
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ID returns the identity given to the controller, "" before Initialize.
func (m *Manager) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

// Kind returns the controller type name, "" before Initialize.
func (m *Manager) Kind() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kind
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package controller owns the pluggable decision-making unit the loop drives
// once per tick.
package controller

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/device"
)

// Controller consumes sensor readings and produces actuator commands.
type Controller interface {
	// Init receives the bound devices and the controller params subtree.
	// The controller keeps non-owning references to the devices.
	Init(devices *device.Table, params config.Params) error
	// ControlStep runs one control computation.
	ControlStep() error
	Reset()
	// Destroy releases whatever Init acquired. It is called exactly once.
	Destroy()
	SetID(id string)
	ID() string
}

// Constructor builds an uninitialised controller.
type Constructor func(logger *zap.SugaredLogger) Controller

// ErrUnknownController is returned for a type name with no constructor.
var ErrUnknownController = errors.New("unknown controller type")

// Registry maps controller type names to constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// DefaultRegistry returns a registry holding the built-in controllers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("obstacle_avoidance", NewObstacleAvoidance)
	r.Register("static", NewStatic)
	return r
}

// Register adds or replaces the constructor for kind.
func (r *Registry) Register(kind string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[kind] = c
}

// New builds a controller of the given kind.
func (r *Registry) New(kind string, logger *zap.SugaredLogger) (Controller, error) {
	r.mu.RLock()
	c, ok := r.ctors[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownController, kind)
	}
	return c(logger), nil
}

// Kinds lists the registered type names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.ctors))
	for k := range r.ctors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// base carries the identity every built-in controller needs.
type base struct {
	id     string
	logger *zap.SugaredLogger
}

func (b *base) SetID(id string) { b.id = id }
func (b *base) ID() string      { return b.id }

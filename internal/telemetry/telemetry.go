// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry carries what happened on each control tick out of the
// loop: to MQTT, to a SQLite recording and to live websocket clients.
package telemetry

import (
	"errors"
	"time"

	"github.com/rs/xid"
)

// Snapshot is the state of the robot at the end of one tick.
type Snapshot struct {
	RunID      string               `json:"run_id"`
	Tick       uint64               `json:"tick"`
	Time       time.Time            `json:"time"`
	Controller string               `json:"controller"`
	Readings   map[string][]float64 `json:"readings"`
	Commands   map[string][]float64 `json:"commands"`
}

// Event kinds.
const (
	EventStart = "start"
	EventStop  = "stop"
	EventError = "error"
)

// Event marks a run lifecycle change.
type Event struct {
	RunID      string    `json:"run_id"`
	Kind       string    `json:"kind"`
	Controller string    `json:"controller"`
	Time       time.Time `json:"time"`
	Ticks      uint64    `json:"ticks"`
	Detail     string    `json:"detail,omitempty"`
}

// Sink receives snapshots and events. Record is called from the loop
// goroutine once per tick and must not block for long.
type Sink interface {
	Record(s Snapshot) error
	Event(e Event) error
	Close() error
}

// NewRunID returns a new globally unique, time-sortable run id.
func NewRunID() string {
	return xid.New().String()
}

// Multi fans every call out to all of its sinks. A failing sink does not
// stop the others; their errors are joined.
type Multi []Sink

func (m Multi) Record(s Snapshot) error {
	var errs []error
	for _, sink := range m {
		errs = append(errs, sink.Record(s))
	}
	return errors.Join(errs...)
}

func (m Multi) Event(e Event) error {
	var errs []error
	for _, sink := range m {
		errs = append(errs, sink.Event(e))
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, sink := range m {
		errs = append(errs, sink.Close())
	}
	return errors.Join(errs...)
}

// Discard drops everything.
type Discard struct{}

func (Discard) Record(Snapshot) error { return nil }
func (Discard) Event(Event) error     { return nil }
func (Discard) Close() error          { return nil }

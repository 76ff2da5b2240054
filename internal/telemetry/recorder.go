// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"
)

// DefaultBatchSize is how many snapshots the recorder buffers per write.
const DefaultBatchSize = 100

// ErrRecorderClosed is returned by writes after Close.
var ErrRecorderClosed = errors.New("telemetry: recorder closed")

// Recorder writes snapshots and events to a SQLite database. Snapshots are
// buffered and written in one transaction per batch; events are written
// immediately. Pending snapshots are also flushed at process exit.
type Recorder struct {
	db        *sql.DB
	tickStmt  *sql.Stmt
	eventStmt *sql.Stmt
	path      string
	batchSize int
	logger    *zap.SugaredLogger

	mu      sync.Mutex
	pending []Snapshot
	closed  bool
}

// NewRecorder opens (or creates) the database at path. Runs from several
// processes can share one file; rows are keyed by run id.
func NewRecorder(path string, batchSize int, logger *zap.SugaredLogger) (*Recorder, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open recording %s: %w", path, err)
	}
	// one connection keeps the batch transaction and the statements together
	db.SetMaxOpenConns(1)

	r := &Recorder{
		db:        db,
		path:      path,
		batchSize: batchSize,
		logger:    logger,
	}
	if err := r.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := r.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	atexit.Register(func() {
		if err := r.Flush(); err != nil {
			logger.Warnf("telemetry: flush at exit: %v", err)
		}
	})

	logger.Infof("telemetry: recording ticks to %s", path)
	return r, nil
}

func (r *Recorder) createTables() error {
	const ticks = `
		CREATE TABLE IF NOT EXISTS ticks (
			run_id     TEXT    NOT NULL,
			tick       INTEGER NOT NULL,
			time_ns    INTEGER NOT NULL,
			controller TEXT    NOT NULL,
			readings   TEXT    NOT NULL,
			commands   TEXT    NOT NULL,
			PRIMARY KEY (run_id, tick)
		)`
	const events = `
		CREATE TABLE IF NOT EXISTS events (
			run_id     TEXT    NOT NULL,
			kind       TEXT    NOT NULL,
			controller TEXT    NOT NULL,
			time_ns    INTEGER NOT NULL,
			ticks      INTEGER NOT NULL,
			detail     TEXT    NOT NULL
		)`
	for _, stmt := range []string{ticks, events} {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (r *Recorder) prepareStatements() error {
	var err error
	r.tickStmt, err = r.db.Prepare(`INSERT INTO ticks VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare tick insert: %w", err)
	}
	r.eventStmt, err = r.db.Prepare(`INSERT INTO events VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare event insert: %w", err)
	}
	return nil
}

// Record buffers s and writes the batch once it is full.
func (r *Recorder) Record(s Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRecorderClosed
	}
	r.pending = append(r.pending, s)
	if len(r.pending) >= r.batchSize {
		return r.flushLocked()
	}
	return nil
}

// Event writes e right away.
func (r *Recorder) Event(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRecorderClosed
	}
	_, err := r.eventStmt.Exec(e.RunID, e.Kind, e.Controller, e.Time.UnixNano(), e.Ticks, e.Detail)
	if err != nil {
		return fmt.Errorf("insert %s event: %w", e.Kind, err)
	}
	return nil
}

// Flush writes all buffered snapshots. It is a no-op after Close.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if len(r.pending) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt := tx.Stmt(r.tickStmt)
	for _, s := range r.pending {
		readings, err := json.Marshal(s.Readings)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("json marshal error (readings): %w", err)
		}
		commands, err := json.Marshal(s.Commands)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("json marshal error (commands): %w", err)
		}
		if _, err := stmt.Exec(s.RunID, s.Tick, s.Time.UnixNano(), s.Controller, string(readings), string(commands)); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert tick %d: %w", s.Tick, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.Debugf("telemetry: wrote %d ticks to %s", len(r.pending), r.path)
	r.pending = nil
	return nil
}

// Close flushes and closes the database. Calling it again does nothing.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	flushErr := r.flushLocked()
	r.closed = true
	return errors.Join(flushErr, r.tickStmt.Close(), r.eventStmt.Close(), r.db.Close())
}

// Count returns how many ticks are recorded for runID.
func (r *Recorder) Count(runID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, ErrRecorderClosed
	}
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM ticks WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

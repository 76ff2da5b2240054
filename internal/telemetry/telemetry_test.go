// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeToken struct {
	mqtt.Token
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeClient struct {
	mqtt.Client
	token        *fakeToken
	published    []published
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.published = append(c.published, published{topic, retained, payload.([]byte)})
	return c.token
}

func (c *fakeClient) Disconnect(quiesce uint) { c.disconnected = true }

func snapshot(tick uint64) Snapshot {
	return Snapshot{
		RunID:      "run-1",
		Tick:       tick,
		Time:       time.Date(2026, 3, 1, 12, 0, 0, int(tick)*100_000_000, time.UTC),
		Controller: "thymio-07",
		Readings:   map[string][]float64{"proximity": {0, 1.5e-10}},
		Commands:   map[string][]float64{"wheels": {100, -100}},
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.Len(t, a, 20)
	assert.NotEqual(t, a, b)
}

func TestPublisher(t *testing.T) {
	client := &fakeClient{token: &fakeToken{}}
	p := newPublisher(client, "robot/tick", "robot/events", zaptest.NewLogger(t).Sugar())

	require.NoError(t, p.Record(snapshot(3)))
	require.NoError(t, p.Event(Event{RunID: "run-1", Kind: EventStart}))
	require.Len(t, client.published, 2)

	tick := client.published[0]
	assert.Equal(t, "robot/tick", tick.topic)
	assert.False(t, tick.retained)
	var got Snapshot
	require.NoError(t, json.Unmarshal(tick.payload, &got))
	assert.Equal(t, uint64(3), got.Tick)
	assert.Equal(t, []float64{100, -100}, got.Commands["wheels"])

	assert.Equal(t, "robot/events", client.published[1].topic)
	assert.True(t, client.published[1].retained)
	assert.Contains(t, string(client.published[1].payload), `"kind":"start"`)

	require.NoError(t, p.Close())
	assert.True(t, client.disconnected)
}

func TestPublisherErrors(t *testing.T) {
	t.Run("broker error", func(t *testing.T) {
		client := &fakeClient{token: &fakeToken{err: errors.New("not connected")}}
		p := newPublisher(client, "robot/tick", "", zaptest.NewLogger(t).Sugar())
		assert.ErrorContains(t, p.Record(snapshot(1)), "not connected")
	})

	t.Run("timeout", func(t *testing.T) {
		client := &fakeClient{token: &fakeToken{timeout: true}}
		p := newPublisher(client, "robot/tick", "", zaptest.NewLogger(t).Sugar())
		assert.ErrorContains(t, p.Record(snapshot(1)), "timed out")
	})

	t.Run("no events topic", func(t *testing.T) {
		client := &fakeClient{token: &fakeToken{}}
		p := newPublisher(client, "robot/tick", "", zaptest.NewLogger(t).Sugar())
		require.NoError(t, p.Event(Event{Kind: EventStop}))
		assert.Empty(t, client.published)
	})
}

func TestRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.sqlite3")
	r, err := NewRecorder(path, 3, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	for tick := uint64(1); tick <= 4; tick++ {
		require.NoError(t, r.Record(snapshot(tick)))
	}

	// the first batch of three is on disk, the fourth is still buffered
	n, err := r.Count("run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, r.Flush())
	n, err = r.Count("run-1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, r.Record(snapshot(5)))
	require.NoError(t, r.Event(Event{RunID: "run-1", Kind: EventStop, Ticks: 5}))
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Record(snapshot(6)), ErrRecorderClosed)
	assert.NoError(t, r.Flush())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var ticks int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ticks`).Scan(&ticks))
	assert.Equal(t, 5, ticks)

	var readings string
	require.NoError(t, db.QueryRow(`SELECT readings FROM ticks WHERE tick = 2`).Scan(&readings))
	assert.JSONEq(t, `{"proximity":[0,1.5e-10]}`, readings)

	var kind string
	var eventTicks int
	require.NoError(t, db.QueryRow(`SELECT kind, ticks FROM events`).Scan(&kind, &eventTicks))
	assert.Equal(t, EventStop, kind)
	assert.Equal(t, 5, eventTicks)
}

func TestRecorderRejectsDuplicateTick(t *testing.T) {
	r, err := NewRecorder(filepath.Join(t.TempDir(), "ticks.sqlite3"), 1, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Record(snapshot(1)))
	assert.ErrorContains(t, r.Record(snapshot(1)), "insert tick 1")
}

func TestHub(t *testing.T) {
	h := NewHub(2, zaptest.NewLogger(t).Sugar())
	_, ok := h.Last()
	assert.False(t, ok)

	fast, cancelFast := h.Subscribe()
	slow, cancelSlow := h.Subscribe()
	assert.Equal(t, 2, h.Subscribers())

	require.NoError(t, h.Record(snapshot(1)))
	msg := <-fast
	var m struct {
		Type string   `json:"type"`
		Data Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &m))
	assert.Equal(t, "tick", m.Type)
	assert.Equal(t, uint64(1), m.Data.Tick)

	// slow never reads; it keeps its buffer and the rest is dropped
	require.NoError(t, h.Record(snapshot(2)))
	require.NoError(t, h.Event(Event{Kind: EventStop}))
	assert.Len(t, slow, 2)
	assert.Len(t, fast, 2)

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(2), last.Tick)

	cancelSlow()
	cancelSlow()
	assert.Equal(t, 1, h.Subscribers())

	require.NoError(t, h.Close())
	cancelFast()
	drained := 0
	for range fast {
		drained++
	}
	assert.Equal(t, 2, drained)

	closed, _ := h.Subscribe()
	_, open := <-closed
	assert.False(t, open)
}

type failingSink struct{ Discard }

func (failingSink) Record(Snapshot) error { return errors.New("disk full") }

func TestMulti(t *testing.T) {
	h := NewHub(4, zaptest.NewLogger(t).Sugar())
	ch, cancel := h.Subscribe()
	defer cancel()

	m := Multi{failingSink{}, h}
	err := m.Record(snapshot(1))
	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, ch, 1, "a failing sink must not starve the others")
	assert.NoError(t, m.Event(Event{Kind: EventStart}))
	assert.NoError(t, m.Close())
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Message is what hub subscribers receive, JSON encoded.
type Message struct {
	Type string `json:"type"` // "tick" or "event"
	Data any    `json:"data"`
}

// Hub fans snapshots and events out to any number of subscribers, typically
// websocket clients. A subscriber that falls behind loses messages rather
// than slowing the control loop down.
type Hub struct {
	buffer int
	logger *zap.SugaredLogger

	mu      sync.Mutex
	clients map[chan []byte]struct{}
	last    *Snapshot
	dropped uint64
	closed  bool
}

// NewHub returns a hub whose subscribers buffer up to buffer messages.
func NewHub(buffer int, logger *zap.SugaredLogger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		buffer:  buffer,
		logger:  logger,
		clients: make(map[chan []byte]struct{}),
	}
}

// Subscribe registers a new subscriber. The channel is closed when the
// returned cancel func runs or the hub closes.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, h.buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.clients[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.clients[ch]; ok {
				delete(h.clients, ch)
				close(ch)
			}
		})
	}
}

// Record broadcasts s and remembers it as the latest snapshot.
func (h *Hub) Record(s Snapshot) error {
	payload, err := json.Marshal(Message{Type: "tick", Data: s})
	if err != nil {
		return fmt.Errorf("json marshal error (tick): %w", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = &s
	h.broadcastLocked(payload)
	return nil
}

// Event broadcasts e.
func (h *Hub) Event(e Event) error {
	payload, err := json.Marshal(Message{Type: "event", Data: e})
	if err != nil {
		return fmt.Errorf("json marshal error (event): %w", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(payload)
	return nil
}

func (h *Hub) broadcastLocked(payload []byte) {
	for ch := range h.clients {
		select {
		case ch <- payload:
		default:
			h.dropped++
			if h.dropped%100 == 1 {
				h.logger.Warnf("telemetry: slow subscriber, %d messages dropped so far", h.dropped)
			}
		}
	}
}

// Last returns the most recent snapshot.
func (h *Hub) Last() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return Snapshot{}, false
	}
	return *h.last, true
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
	return nil
}

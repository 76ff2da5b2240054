// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SimProximityCount is the number of horizontal proximity sensors the
// simulated robot reports.
const SimProximityCount = 7

// simRMC is a fixed, valid RMC sentence body (without '$' and checksum).
const simRMC = "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"

// SimLink is a simulated robot behind the command protocol. Obstacle
// distances change smoothly over time and motor commands are recorded.
type SimLink struct {
	mu    sync.Mutex
	start time.Time
	now   func() time.Time

	proxEnabled bool
	motorL      float64
	motorR      float64
	requests    []string
	closed      bool
}

// NewSimLink creates a simulated link using the wall clock.
func NewSimLink() *SimLink {
	return NewSimLinkWithClock(time.Now)
}

// NewSimLinkWithClock creates a simulated link driven by now.
func NewSimLinkWithClock(now func() time.Time) *SimLink {
	return &SimLink{start: now(), now: now}
}

// Request implements Link.
func (s *SimLink) Request(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrLinkClosed
	}
	s.requests = append(s.requests, cmd)

	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return "", &RemoteError{Cmd: cmd, Message: "empty command"}
	}

	switch fields[0] {
	case "ping":
		return "pong", nil

	case "prox.enable":
		if len(fields) != 2 {
			return "", &RemoteError{Cmd: cmd, Message: "expected one argument"}
		}
		s.proxEnabled = fields[1] == "1"
		return "ok", nil

	case "prox.horizontal":
		if !s.proxEnabled {
			return "", &RemoteError{Cmd: cmd, Message: "proximity disabled"}
		}
		return s.proximityLine(), nil

	case "gps.rmc":
		return "$" + simRMC + "*" + Checksum(simRMC), nil

	case "motor.target":
		if len(fields) != 3 {
			return "", &RemoteError{Cmd: cmd, Message: "expected two arguments"}
		}
		l, errL := strconv.ParseFloat(fields[1], 64)
		r, errR := strconv.ParseFloat(fields[2], 64)
		if errL != nil || errR != nil {
			return "", &RemoteError{Cmd: cmd, Message: "bad speed"}
		}
		s.motorL, s.motorR = l, r
		return "ok", nil

	default:
		return "", &RemoteError{Cmd: cmd, Message: "unknown command"}
	}
}

// proximityLine produces distances in meters, a slow wave per sensor so a
// controller sees obstacles come and go.
func (s *SimLink) proximityLine() string {
	elapsed := s.now().Sub(s.start).Seconds()
	parts := make([]string, SimProximityCount)
	for i := range parts {
		d := 0.06 + 0.05*math.Sin(elapsed+float64(i)*0.9)
		if d < 0 {
			d = 0
		}
		parts[i] = strconv.FormatFloat(d, 'f', 4, 64)
	}
	return strings.Join(parts, " ")
}

// Motors returns the last commanded wheel speeds.
func (s *SimLink) Motors() (left, right float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.motorL, s.motorR
}

// Requests returns a copy of every command received so far.
func (s *SimLink) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Close implements Link.
func (s *SimLink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Checksum returns the two-digit hex NMEA checksum of body (the text between
// '$' and '*').
func Checksum(body string) string {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("%02X", sum)
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package transport holds the already-established connections to the robot
// that devices consume: a line-oriented command link and an optional I2C bus.
package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
)

// Link is a request/response command channel to the robot firmware. One
// request line produces exactly one response line.
type Link interface {
	Request(cmd string) (string, error)
	Close() error
}

// ErrLinkClosed is returned by Request after Close.
var ErrLinkClosed = errors.New("link closed")

// RemoteError is an "ERR ..." response from the robot.
type RemoteError struct {
	Cmd     string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("robot rejected %q: %s", e.Cmd, e.Message)
}

// StreamLink speaks the line protocol over any byte stream.
type StreamLink struct {
	mu     sync.Mutex
	rw     io.ReadWriteCloser
	reader *bufio.Reader
	closed bool
}

// NewStreamLink wraps rw. The link owns rw and closes it on Close.
func NewStreamLink(rw io.ReadWriteCloser) *StreamLink {
	return &StreamLink{
		rw:     rw,
		reader: bufio.NewReader(rw),
	}
}

// OpenSerial opens a serial port and returns a link speaking over it.
func OpenSerial(portName string, baudRate int) (*StreamLink, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", portName, err)
	}
	return NewStreamLink(port), nil
}

// Request sends cmd and waits for the response line.
func (l *StreamLink) Request(cmd string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return "", ErrLinkClosed
	}
	if strings.ContainsAny(cmd, "\r\n") {
		return "", fmt.Errorf("command %q contains a line break", cmd)
	}
	if _, err := io.WriteString(l.rw, cmd+"\n"); err != nil {
		return "", fmt.Errorf("write %q: %w", cmd, err)
	}
	line, err := l.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read response to %q: %w", cmd, err)
	}
	line = strings.TrimSpace(line)
	if msg, ok := strings.CutPrefix(line, "ERR"); ok {
		return "", &RemoteError{Cmd: cmd, Message: strings.TrimSpace(msg)}
	}
	return line, nil
}

// Close closes the underlying stream. Further calls are no-ops.
func (l *StreamLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.rw.Close()
}

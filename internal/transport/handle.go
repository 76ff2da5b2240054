// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/real_robot/internal/config"
)

// BindingError reports a handle that cannot serve a device: the link or bus
// it needs is missing, or the robot does not answer.
type BindingError struct {
	Device string
	Reason string
}

func (e *BindingError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("transport binding error: %s", e.Reason)
	}
	return fmt.Sprintf("transport binding error (device %q): %s", e.Device, e.Reason)
}

// Handle is the caller-supplied connection to the robot. Devices borrow its
// link and bus; they never open or close them.
type Handle struct {
	Link Link
	Bus  i2c.Bus

	busCloser i2c.BusCloser
}

// RequireLink returns the command link or a BindingError naming device.
func (h *Handle) RequireLink(device string) (Link, error) {
	if h == nil || h.Link == nil {
		return nil, &BindingError{Device: device, Reason: "no command link on the robot handle"}
	}
	return h.Link, nil
}

// RequireBus returns the I2C bus or a BindingError naming device.
func (h *Handle) RequireBus(device string) (i2c.Bus, error) {
	if h == nil || h.Bus == nil {
		return nil, &BindingError{Device: device, Reason: "no I2C bus on the robot handle"}
	}
	return h.Bus, nil
}

// Probe checks that the robot answers on the command link. A handle without a
// link passes: it may be an I2C-only robot.
func (h *Handle) Probe() error {
	if h == nil {
		return &BindingError{Reason: "robot handle is nil"}
	}
	if h.Link == nil {
		return nil
	}
	resp, err := h.Link.Request("ping")
	if err != nil {
		return &BindingError{Reason: fmt.Sprintf("robot link not answering: %v", err)}
	}
	if resp != "pong" {
		return &BindingError{Reason: fmt.Sprintf("unexpected ping response %q", resp)}
	}
	return nil
}

// Open establishes the robot connection described by settings. This is the
// caller's side of the contract; the control core only consumes the result.
func Open(settings *config.Settings, logger *zap.SugaredLogger) (*Handle, error) {
	h := &Handle{}

	if settings.Simulated {
		logger.Infof("transport: using simulated robot link")
		h.Link = NewSimLink()
	} else {
		link, err := OpenSerial(settings.SerialPort, settings.SerialBaudRate)
		if err != nil {
			return nil, err
		}
		logger.Infof("transport: serial link opened on %s at %d baud", settings.SerialPort, settings.SerialBaudRate)
		h.Link = link
	}

	if settings.I2CBus != "" {
		if _, err := host.Init(); err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("periph host init: %w", err)
		}
		bus, err := i2creg.Open(settings.I2CBus)
		if err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("open I2C bus %q: %w", settings.I2CBus, err)
		}
		logger.Infof("transport: I2C bus %s opened", bus)
		h.Bus = bus
		h.busCloser = bus
	}

	return h, nil
}

// Close releases whatever Open established.
func (h *Handle) Close() error {
	var errs []error
	if h.Link != nil {
		errs = append(errs, h.Link.Close())
	}
	if h.busCloser != nil {
		errs = append(errs, h.busCloser.Close())
	}
	return errors.Join(errs...)
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Settings holds the host-side runtime values for one robot: where the robot
// link lives and where telemetry goes. The experiment itself (rate, length,
// controllers) lives in the Experiment document.
type Settings struct {
	// Robot link
	SerialPort     string
	SerialBaudRate int
	I2CBus         string // periph bus name, e.g. "1"; "" leaves I2C closed
	Simulated      bool   // use the simulated link instead of SerialPort

	// MQTT
	MQTTBroker   string
	MQTTClientID string

	// Topics
	TopicTick   string
	TopicEvents string

	// Recording
	RecordDB string // sqlite file; "" disables recording

	// Web Server
	WebServerPort int // 0 disables the status server
}

// DefaultSettings returns the values used for keys missing from the file.
func DefaultSettings() Settings {
	return Settings{
		SerialBaudRate: 115200,
		MQTTClientID:   "real-robot",
		TopicTick:      "robot/tick",
		TopicEvents:    "robot/events",
	}
}

// Package-level state for the process-wide settings:
//   - globalSettings is only written by InitGlobal.
//   - settingsOnce makes repeated InitGlobal calls harmless.
//   - settingsMu guards readers against the single write.
var (
	globalSettings *Settings
	settingsOnce   sync.Once
	settingsMu     sync.RWMutex
)

// LoadSettings reads a KEY=VALUE settings file and returns the parsed values.
func LoadSettings(path string) (*Settings, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return settingsFromMap(values)
}

func settingsFromMap(values map[string]string) (*Settings, error) {
	s := DefaultSettings()

	// Stable order so the first bad key reported is deterministic.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := s.setValue(key, values[key]); err != nil {
			return nil, err
		}
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// setValue sets a settings value based on the key.
func (s *Settings) setValue(key, value string) error {
	switch key {
	// Robot link
	case "SERIAL_PORT":
		s.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		if rate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE must be positive, got %d", rate)
		}
		s.SerialBaudRate = rate
	case "I2C_BUS":
		s.I2CBus = value
	case "SIMULATED":
		sim, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid SIMULATED %q: %w", value, err)
		}
		s.Simulated = sim

	// MQTT
	case "MQTT_BROKER":
		s.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		s.MQTTClientID = value

	// Topics
	case "TOPIC_TICK":
		s.TopicTick = value
	case "TOPIC_EVENTS":
		s.TopicEvents = value

	// Recording
	case "RECORD_DB":
		s.RecordDB = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port < 0 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", port)
		}
		s.WebServerPort = port

	default:
		return fmt.Errorf("unknown settings key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (s *Settings) validate() error {
	if !s.Simulated && s.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required unless SIMULATED=true")
	}
	if s.MQTTBroker != "" && s.TopicTick == "" {
		return fmt.Errorf("TOPIC_TICK is required when MQTT_BROKER is set")
	}
	return nil
}

// InitGlobal initializes the process-wide settings from file.
// Only the first call has any effect.
func InitGlobal(path string) error {
	var err error
	settingsOnce.Do(func() {
		settingsMu.Lock()
		defer settingsMu.Unlock()
		globalSettings, err = LoadSettings(path)
	})
	return err
}

// Get returns the process-wide settings, or nil before InitGlobal.
func Get() *Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return globalSettings
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/telemetry"
)

// RunConsole subscribes to the telemetry topics and prints every tick and
// event to out until ctx is cancelled.
func RunConsole(ctx context.Context, settings *config.Settings, out io.Writer, logger *zap.SugaredLogger) error {
	if settings.MQTTBroker == "" {
		return fmt.Errorf("console: MQTT_BROKER is not set")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(settings.MQTTBroker).
		SetClientID(settings.MQTTClientID + "-console")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	logger.Infof("console: connected to MQTT broker at %s", settings.MQTTBroker)

	p := &consolePrinter{out: out, logger: logger}

	tickToken := client.Subscribe(settings.TopicTick, 0, func(_ mqtt.Client, msg mqtt.Message) {
		p.handleTick(msg.Payload())
	})
	tickToken.Wait()
	if tickToken.Error() != nil {
		return tickToken.Error()
	}
	logger.Infof("console: subscribed to %s", settings.TopicTick)

	if settings.TopicEvents != "" {
		eventToken := client.Subscribe(settings.TopicEvents, 0, func(_ mqtt.Client, msg mqtt.Message) {
			p.handleEvent(msg.Payload())
		})
		eventToken.Wait()
		if eventToken.Error() != nil {
			return eventToken.Error()
		}
		logger.Infof("console: subscribed to %s", settings.TopicEvents)
	}

	<-ctx.Done()

	logger.Infof("console: shutting down")
	client.Disconnect(250)
	return nil
}

type consolePrinter struct {
	out    io.Writer
	logger *zap.SugaredLogger
}

func (p *consolePrinter) handleTick(payload []byte) {
	var s telemetry.Snapshot
	if err := json.Unmarshal(payload, &s); err != nil {
		p.logger.Warnf("console: tick unmarshal error: %v", err)
		return
	}
	fmt.Fprintln(p.out, formatTick(s))
}

func (p *consolePrinter) handleEvent(payload []byte) {
	var e telemetry.Event
	if err := json.Unmarshal(payload, &e); err != nil {
		p.logger.Warnf("console: event unmarshal error: %v", err)
		return
	}
	fmt.Fprintln(p.out, formatEvent(e))
}

func formatTick(s telemetry.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[TICK] %6d ctrl=%s", s.Tick, s.Controller)
	writeValues(&b, "in", s.Readings)
	writeValues(&b, "out", s.Commands)
	return b.String()
}

func writeValues(b *strings.Builder, label string, values map[string][]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(b, "  %s.%s=[", label, name)
		for i, v := range values[name] {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(b, "%.4g", v)
		}
		b.WriteByte(']')
	}
}

func formatEvent(e telemetry.Event) string {
	line := fmt.Sprintf("[%-5s] run=%s ctrl=%s ticks=%d", strings.ToUpper(e.Kind), e.RunID, e.Controller, e.Ticks)
	if e.Detail != "" {
		line += " " + e.Detail
	}
	return line
}

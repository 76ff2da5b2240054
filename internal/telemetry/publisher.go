// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// DefaultPublishTimeout bounds how long a tick waits for the broker.
const DefaultPublishTimeout = 100 * time.Millisecond

// Publisher sends snapshots and events to an MQTT broker as JSON.
type Publisher struct {
	client      mqtt.Client
	topicTick   string
	topicEvents string
	timeout     time.Duration
	logger      *zap.SugaredLogger
}

// NewPublisher connects to broker and returns a publisher for the given
// topics. An empty topicEvents disables event publishing.
func NewPublisher(broker, clientID, topicTick, topicEvents string, logger *zap.SugaredLogger) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	logger.Infof("telemetry: connected to MQTT broker %s as %s", broker, clientID)

	return newPublisher(client, topicTick, topicEvents, logger), nil
}

func newPublisher(client mqtt.Client, topicTick, topicEvents string, logger *zap.SugaredLogger) *Publisher {
	return &Publisher{
		client:      client,
		topicTick:   topicTick,
		topicEvents: topicEvents,
		timeout:     DefaultPublishTimeout,
		logger:      logger,
	}
}

// Record publishes s to the tick topic.
func (p *Publisher) Record(s Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("json marshal error (tick): %w", err)
	}
	return p.publish(p.topicTick, false, payload)
}

// Event publishes e to the events topic, retained so late subscribers see
// the last lifecycle change.
func (p *Publisher) Event(e Event) error {
	if p.topicEvents == "" {
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("json marshal error (event): %w", err)
	}
	return p.publish(p.topicEvents, true, payload)
}

func (p *Publisher) publish(topic string, retained bool, payload []byte) error {
	token := p.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("MQTT publish to %s timed out after %v", topic, p.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT publish error (%s): %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	p.logger.Infof("telemetry: disconnected from MQTT broker")
	return nil
}

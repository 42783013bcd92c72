// Package uplink publishes finalized contact events to an MQTT broker so an
// aggregation back end can consume them.
package uplink

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"colocate/contact-agent/internal/model"
)

// Publisher wraps an MQTT client scoped to one device's contact-event topic.
type Publisher struct {
	client   mqtt.Client
	deviceID string
	logger   *slog.Logger
}

// Dial connects to the broker and returns a publisher for the device.
func Dial(brokerAddr, deviceID string, logger *slog.Logger) (*Publisher, error) {
	clientID := fmt.Sprintf("%s-agent-%d", deviceID, time.Now().UnixNano())
	opts := mqtt.NewClientOptions().AddBroker(brokerAddr).SetClientID(clientID)
	opts = opts.SetOrderMatters(false)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to broker: %w", token.Error())
	}
	logger.Info("connected to uplink broker", "broker", brokerAddr, "client_id", clientID)

	return &Publisher{client: client, deviceID: deviceID, logger: logger}, nil
}

// PublishContactEvent sends one finalized event as JSON.
func (p *Publisher) PublishContactEvent(event model.ContactEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode contact event: %w", err)
	}

	topic := fmt.Sprintf("contacts/%s/events", p.deviceID)
	token := p.client.Publish(topic, 0, false, data)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish contact event: %w", err)
	}

	p.logger.Debug("published contact event", "topic", topic, "peer", event.PeerID)
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

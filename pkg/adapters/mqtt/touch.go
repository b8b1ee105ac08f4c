// Package mqtt receives touch sensor values published on an MQTT broker.
//
// Each sensor event has its own topic, prefix + event name, e.g.
// "wayfinder/touch/HandLeftBackTouched". Payloads are decimal numbers.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/ports"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTopicPrefix is prepended to sensor event names.
const DefaultTopicPrefix = "wayfinder/touch/"

// Config describes the broker connection.
type Config struct {
	Broker      string
	Port        int
	ClientID    string
	TopicPrefix string
}

// Connect opens a client that reconnects on its own.
func Connect(cfg Config) (mqtt.Client, error) {
	broker := fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port)
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return client, nil
}

// TouchSignal implements ports.TouchSignal on MQTT topics.
type TouchSignal struct {
	client mqtt.Client
	prefix string
	logger *slog.Logger
}

// Option configures a TouchSignal.
type Option func(*TouchSignal)

// WithTopicPrefix sets the topic prefix.
func WithTopicPrefix(prefix string) Option {
	return func(t *TouchSignal) {
		t.prefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *TouchSignal) {
		t.logger = logger
	}
}

// NewTouchSignal wraps a connected client.
func NewTouchSignal(client mqtt.Client, opts ...Option) *TouchSignal {
	t := &TouchSignal{
		client: client,
		prefix: DefaultTopicPrefix,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Topic returns the topic carrying event.
func (t *TouchSignal) Topic(event string) string {
	return t.prefix + event
}

// Subscribe forwards every numeric payload on the event topic to fn.
func (t *TouchSignal) Subscribe(ctx context.Context, event string, fn func(float64)) (ports.Unsubscribe, error) {
	topic := t.Topic(event)
	token := t.client.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		raw := strings.TrimSpace(string(msg.Payload()))
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			t.logger.Warn("Invalid touch payload", "topic", msg.Topic(), "payload", raw)
			return
		}
		fn(value)
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt subscribe %s: %w", topic, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			tok := t.client.Unsubscribe(topic)
			if !tok.WaitTimeout(2 * time.Second) {
				t.logger.Warn("Unsubscribe timed out", "topic", topic)
				return
			}
			if err := tok.Error(); err != nil {
				t.logger.Warn("Unsubscribe failed", "topic", topic, "err", err)
			}
		})
	}, nil
}

// Publish sends a sensor value, e.g. from a bridge or a test rig.
func (t *TouchSignal) Publish(event string, value float64) error {
	if !t.client.IsConnected() {
		return fmt.Errorf("mqtt not connected")
	}
	token := t.client.Publish(t.Topic(event), 1, false, strconv.FormatFloat(value, 'f', -1, 64))
	token.Wait()
	return token.Error()
}

// Close disconnects the client.
func (t *TouchSignal) Close() {
	t.client.Disconnect(1000)
}

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Devices publish their raw telemetry to greenb/{deviceId}/telemetry;
// the payload is the bare field object, with the device id carried in
// the topic.
const telemetryTopic = "greenb/+/telemetry"

// MQTTConfig holds configuration for the MQTT source.
type MQTTConfig struct {
	// BrokerURL, e.g. tcp://localhost:1883.
	BrokerURL string

	// ClientID identifies this consumer to the broker.
	ClientID string

	Username string
	Password string

	Pipeline *Pipeline
	Logger   zerolog.Logger
}

// MQTTSource subscribes to the device telemetry topic and feeds the
// pipeline.
type MQTTSource struct {
	client   mqtt.Client
	pipeline *Pipeline
	logger   zerolog.Logger
}

// NewMQTTSource creates an MQTT source. Connect/Start establish the
// session.
func NewMQTTSource(cfg MQTTConfig) *MQTTSource {
	src := &MQTTSource{pipeline: cfg.Pipeline, logger: cfg.Logger}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetOrderMatters(false).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts = opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}
	opts = opts.SetOnConnectHandler(func(c mqtt.Client) {
		if token := c.Subscribe(telemetryTopic, 1, src.handleMessage); token.Wait() && token.Error() != nil {
			src.logger.Error().Err(token.Error()).Msg("mqtt subscribe failed")
			return
		}
		src.logger.Info().Str("topic", telemetryTopic).Msg("mqtt subscribed")
	})

	src.client = mqtt.NewClient(opts)
	return src
}

// Start connects to the broker. The OnConnect handler performs the
// subscription so it survives reconnects.
func (s *MQTTSource) Start() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect to mqtt broker: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSource) Close() {
	s.client.Disconnect(250)
}

func (s *MQTTSource) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	deviceID, ok := deviceIDFromTopic(msg.Topic())
	if !ok {
		s.logger.Warn().Str("topic", msg.Topic()).Msg("unroutable telemetry topic")
		return
	}

	var fields map[string]any
	if err := json.Unmarshal(msg.Payload(), &fields); err != nil {
		s.logger.Error().Err(err).Str("device_id", deviceID).Msg("malformed telemetry payload")
		return
	}

	telemetry := TelemetryMessage{DeviceID: deviceID, Fields: fields}
	if err := s.pipeline.Process(context.Background(), telemetry); err != nil {
		s.logger.Error().Err(err).Str("device_id", deviceID).Msg("telemetry ingest failed")
	}
}

// deviceIDFromTopic extracts the device id from greenb/{id}/telemetry.
func deviceIDFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "greenb" || parts[2] != "telemetry" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

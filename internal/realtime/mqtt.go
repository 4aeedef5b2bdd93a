package realtime

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	mqttQoS            = 1
	mqttPublishTimeout = 5 * time.Second
	mqttDisconnectMS   = 250
)

// CommandTopic is the per-display topic players subscribe to.
func CommandTopic(displayID string) string {
	return fmt.Sprintf("tv/%s/commands", displayID)
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// CreateMQTTClient connects to brokerURL with the given client id.
func CreateMQTTClient(brokerURL, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

// MQTTMirror republishes refresh events on each display's command topic so
// players subscribed over MQTT get the same signal as the WebSocket channel.
type MQTTMirror struct {
	client mqtt.Client
}

var _ Mirror = (*MQTTMirror)(nil)

func NewMQTTMirror(client mqtt.Client) *MQTTMirror {
	return &MQTTMirror{client: client}
}

func (m *MQTTMirror) PublishRefresh(ctx context.Context, displayID string, payload []byte) error {
	topic := CommandTopic(displayID)
	token := m.client.Publish(topic, mqttQoS, false, payload)

	timeout := mqttPublishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTTMirror) Close() {
	m.client.Disconnect(mqttDisconnectMS)
	log.Info().Msg("MQTT client disconnected")
}

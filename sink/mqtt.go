// Package sink implements the two output transports a record can be
// published to: an MQTT broker, addressed by the record's topic
// descriptor, and a plain append-only file.
package sink

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTT publishes records to one broker, chosen from one or more
// configured addresses, under a topic derived from each record's
// 24-byte topic descriptor.
type MQTT struct {
	client mqtt.Client
}

func generateClientID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "spektri_" + hex.EncodeToString(b)
}

// NewMQTT connects a single client to one of the broker addresses in
// brokers (each a full MQTT broker URL, e.g. "tcp://localhost:1883");
// paho tries them in order and fails over between them on its own.
func NewMQTT(brokers []string) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	for _, b := range brokers {
		opts.AddBroker(b)
	}
	opts.SetClientID(generateClientID())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Println("sink: connected to MQTT broker")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("sink: MQTT connection lost: %v", err)
	})
	opts.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		log.Println("sink: reconnecting to MQTT broker")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("sink: connect to MQTT broker: %w", token.Error())
	}

	return &MQTT{client: client}, nil
}

// topicString renders a 24-byte topic descriptor as the hex-encoded
// MQTT topic every record of that stream is published under.
func topicString(topic [24]byte) string {
	return "spektri/" + hex.EncodeToString(topic[:])
}

// Send publishes payload under topic at QoS 0, without retaining it.
// It blocks until the broker has accepted the publish or returns an
// error; callers treat a returned error as a dropped record, not a
// fatal condition.
func (m *MQTT) Send(topic [24]byte, payload []byte) error {
	token := m.client.Publish(topicString(topic), 0, false, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker, waiting up to 250ms to flush any
// in-flight publishes.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}

package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/sweeney/smoker-controller/internal/control"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second

	// replayCapacity bounds the messages held while the broker is down.
	// At one status per second plus occasional events this covers roughly
	// four minutes of outage.
	replayCapacity = 256
)

// RealPublisher publishes to an actual MQTT broker. While the broker is
// unreachable, outgoing messages are held in a bounded replay buffer and
// flushed on reconnection, oldest first.
type RealPublisher struct {
	client paho.Client
	log    logrus.FieldLogger

	mu     sync.Mutex
	replay *ringBuffer
}

// NewRealPublisher creates a publisher connected to the given broker. The
// broker's last-will is a retained SHUTDOWN system event so consumers learn
// about unclean exits.
func NewRealPublisher(broker string, log logrus.FieldLogger) (*RealPublisher, error) {
	p := &RealPublisher{
		log:    log,
		replay: newRingBuffer(replayCapacity),
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("smoker-controller").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.WithError(err).Warn("mqtt connection lost, buffering messages")
		}).
		SetOnConnectHandler(func(_ paho.Client) {
			p.flushReplay()
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends a control event to the MQTT broker.
func (p *RealPublisher) Publish(event control.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 1 so heater transitions survive broker restarts
	return p.send(TopicEvents, payload, 1, false)
}

// PublishStatus sends a pre-formatted status snapshot, retained so consumers
// see the latest state immediately on subscribe.
func (p *RealPublisher) PublishStatus(payload []byte) error {
	return p.send(TopicStatus, payload, 0, true)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(TopicSystem, payload, 1, event.Retained)
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // milliseconds
	return nil
}

func (p *RealPublisher) send(topic string, payload []byte, qos byte, retained bool) error {
	if !p.client.IsConnectionOpen() {
		p.buffer(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (p *RealPublisher) buffer(msg bufferedMsg) {
	p.mu.Lock()
	dropped := p.replay.push(msg)
	count := p.replay.len()
	p.mu.Unlock()

	if dropped {
		p.log.WithField("buffered", count).Warn("replay buffer full, dropped oldest message")
	}
}

// flushReplay republishes buffered messages after reconnection.
func (p *RealPublisher) flushReplay() {
	p.mu.Lock()
	msgs := p.replay.drainAll()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	p.log.WithField("count", len(msgs)).Info("mqtt reconnected, replaying buffered messages")

	for _, msg := range msgs {
		token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(publishTimeout) {
			p.log.WithField("topic", msg.topic).Warn("replay publish timeout")
			continue
		}
		if err := token.Error(); err != nil {
			p.log.WithError(err).WithField("topic", msg.topic).Warn("replay publish failed")
		}
	}
}

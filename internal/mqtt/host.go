package mqtt

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/fbw-supervisor/internal/bridge"
)

// Host is a bridge.Host whose simulator talks to the bench through the broker:
// inputs arrive on TopicInput, outputs leave on TopicOutput.
type Host struct {
	broker   string
	clientID string
	client   paho.Client

	mu      sync.Mutex
	pending []bridge.InputEvent
}

var _ bridge.Host = (*Host)(nil)

func NewHost(broker, clientID string) *Host {
	return &Host{broker: broker, clientID: clientID}
}

// Connect connects and subscribes to the input topic. The subscription is renewed
// on every reconnect.
func (h *Host) Connect(ctx context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(h.broker).
		SetClientID(h.clientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(c paho.Client) {
			c.Subscribe(TopicInput, 1, func(_ paho.Client, m paho.Message) {
				h.handleInput(m.Payload())
			})
		})
	h.client = paho.NewClient(opts)

	token := h.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("connect host: %w", ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect host: %w", err)
	}
	return nil
}

func (h *Host) handleInput(payload []byte) {
	events, err := DecodeInputPayload(payload)
	if err != nil {
		log.Printf("mqtt: host input: %v", err)
		return
	}
	h.mu.Lock()
	h.pending = append(h.pending, events...)
	h.mu.Unlock()
}

// Read returns the input events received since the last call.
func (h *Host) Read(ctx context.Context) ([]bridge.InputEvent, error) {
	h.mu.Lock()
	events := h.pending
	h.pending = nil
	h.mu.Unlock()
	return events, nil
}

// Write publishes the frame outputs at QoS 0.
func (h *Host) Write(ctx context.Context, out bridge.Output) error {
	payload, err := FormatOutputPayload(out)
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	if h.client == nil || !h.client.IsConnectionOpen() {
		return nil
	}
	token := h.client.Publish(TopicOutput, 0, false, payload)
	if !token.WaitTimeout(time.Second) {
		return fmt.Errorf("publish output timeout")
	}
	return token.Error()
}

// Close disconnects from the broker.
func (h *Host) Close() error {
	if h.client != nil {
		h.client.Disconnect(250)
	}
	return nil
}

// Package mqtt publishes the bench state to an MQTT broker: computer transition
// events, lifecycle events and packed output bus frames. It also carries the host
// bridge over MQTT for rigs whose simulator talks to the broker.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/fbw-supervisor/internal/arinc429"
	"github.com/sweeney/fbw-supervisor/internal/bridge"
	"github.com/sweeney/fbw-supervisor/internal/fcs"
)

// Topic is the MQTT topic for computer transition events.
const Topic = "fbw/bench/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "fbw/bench/system"

// TopicBus prefixes the per-computer bus frame topics, e.g. "fbw/bench/bus/elac1".
const TopicBus = "fbw/bench/bus"

// TopicInput carries host input events to the bench.
const TopicInput = "fbw/bench/input"

// TopicOutput carries the bench outputs back to the host.
const TopicOutput = "fbw/bench/output"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a computer transition event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event fcs.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// PublishFrame sends one computer's packed output bus.
	PublishFrame(id fcs.ID, frame arinc429.Frame) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "SCENARIO_DONE"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// BusTopic returns the frame topic of one computer.
func BusTopic(id fcs.ID) string {
	return TopicBus + "/" + strings.ToLower(id.String())
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	FBW EventPayload `json:"fbw"`
}

// EventPayload contains the transition details. Time is simulation time.
type EventPayload struct {
	TimeMs   int64  `json:"time_ms"`
	Computer string `json:"computer"`
	Signal   string `json:"signal"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// FormatPayload creates the JSON payload for a transition event.
func FormatPayload(event fcs.Event) ([]byte, error) {
	payload := Payload{
		FBW: EventPayload{
			TimeMs:   event.Time.Milliseconds(),
			Computer: event.Computer.String(),
			Signal:   event.Signal,
			From:     event.From,
			To:       event.To,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// OutputPayload is what the bench sends the host after each frame. Frames are
// keyed by computer name; encoding/json writes them as base64.
type OutputPayload struct {
	TimeMs int64             `json:"time_ms"`
	Frames map[string][]byte `json:"frames"`
}

// FormatOutputPayload creates the JSON payload for a host output.
func FormatOutputPayload(out bridge.Output) ([]byte, error) {
	p := OutputPayload{
		TimeMs: out.Time.Milliseconds(),
		Frames: make(map[string][]byte, len(out.Frames)),
	}
	for i, f := range out.Frames {
		p.Frames[fcs.ID(i).String()] = f.Encode()
	}
	return json.Marshal(p)
}

// DecodeInputPayload accepts either one input event object or an array of them.
func DecodeInputPayload(data []byte) ([]bridge.InputEvent, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var events []bridge.InputEvent
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, fmt.Errorf("decode input: %w", err)
		}
		return events, nil
	}
	var ev bridge.InputEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return []bridge.InputEvent{ev}, nil
}

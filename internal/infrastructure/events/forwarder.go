package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/narwhalmedia/wrongopinions/pkg/events"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
)

// Broker is the outbound side of a message broker.
type Broker interface {
	Publish(ctx context.Context, envelope events.Envelope, data []byte) error
	Close() error
}

// Forwarder relays every event of the local bus to a broker as a JSON
// envelope.
type Forwarder struct {
	broker Broker
	logger interfaces.Logger
}

// NewForwarder creates a forwarder for broker.
func NewForwarder(broker Broker, logger interfaces.Logger) *Forwarder {
	return &Forwarder{
		broker: broker,
		logger: logger,
	}
}

// Attach subscribes the forwarder to every event type of bus.
func (f *Forwarder) Attach(bus interfaces.EventBus) error {
	return bus.Subscribe(events.Wildcard, f)
}

// Handle publishes one event to the broker.
func (f *Forwarder) Handle(ctx context.Context, event interfaces.Event) error {
	envelope := events.ToEnvelope(event)

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	if err := f.broker.Publish(ctx, envelope, data); err != nil {
		f.logger.Warn("Event forward failed",
			interfaces.String("event_id", envelope.ID),
			interfaces.String("event_type", envelope.Type),
			interfaces.Error(err))
		return fmt.Errorf("forward event: %w", err)
	}
	return nil
}

// EventType names the forwarder in bus logs.
func (f *Forwarder) EventType() string {
	return "broker-forwarder"
}

// Close closes the broker.
func (f *Forwarder) Close() error {
	return f.broker.Close()
}

package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/narwhalmedia/wrongopinions/pkg/events"
)

const publishTimeout = 5 * time.Second

// StreamPublisher is the publishing subset of jetstream.JetStream.
type StreamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher forwards event envelopes to JetStream, one subject per event
// type.
type Publisher struct {
	js     StreamPublisher
	logger *zap.Logger
}

// NewPublisher creates a new NATS event publisher
func NewPublisher(js StreamPublisher, logger *zap.Logger) *Publisher {
	return &Publisher{
		js:     js,
		logger: logger.Named("publisher"),
	}
}

// Subject returns the subject an event type is published on.
func Subject(eventType string) string {
	return SubjectPrefix + "." + eventType
}

// Publish publishes an encoded envelope. The event id doubles as the
// JetStream message id so redeliveries are deduplicated.
func (p *Publisher) Publish(ctx context.Context, envelope events.Envelope, data []byte) error {
	subject := Subject(envelope.Type)

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	ack, err := p.js.Publish(pubCtx, subject, data, jetstream.WithMsgID(envelope.ID))
	if err != nil {
		p.logger.Error("failed to publish event",
			zap.Error(err),
			zap.String("event_id", envelope.ID),
			zap.String("event_type", envelope.Type),
			zap.String("subject", subject),
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("event published",
		zap.String("event_id", envelope.ID),
		zap.String("event_type", envelope.Type),
		zap.String("subject", subject),
		zap.Uint64("sequence", ack.Sequence),
		zap.String("stream", ack.Stream),
	)
	return nil
}

// Close is a no-op; the connection is drained by the client cleanup.
func (p *Publisher) Close() error {
	return nil
}

package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/narwhalmedia/wrongopinions/pkg/events"
)

// HeaderEventType carries the event type on every record.
const HeaderEventType = "event_type"

// Publisher forwards event envelopes to a single Kafka topic, keyed by
// aggregate id so events of one aggregate stay ordered.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewConfig returns the producer configuration used by NewPublisher.
func NewConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	return config
}

// NewPublisher creates a new Kafka event publisher
func NewPublisher(brokers []string, topic string, logger *zap.Logger) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("creating producer: %w", err)
	}
	return NewPublisherWithProducer(producer, topic, logger), nil
}

// NewPublisherWithProducer creates a publisher on an existing producer.
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger.Named("kafka"),
	}
}

// Publish sends an encoded envelope. Events without an aggregate are keyed
// by their own id.
func (p *Publisher) Publish(ctx context.Context, envelope events.Envelope, data []byte) error {
	key := envelope.AggregateID
	if key == "" {
		key = envelope.ID
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte(HeaderEventType),
				Value: []byte(envelope.Type),
			},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	p.logger.Debug("event published",
		zap.String("event_id", envelope.ID),
		zap.String("event_type", envelope.Type),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close closes the publisher
func (p *Publisher) Close() error {
	return p.producer.Close()
}

package nats_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/events/nats"
	"github.com/narwhalmedia/wrongopinions/pkg/config"
	"github.com/narwhalmedia/wrongopinions/pkg/events"
)

type mockStream struct {
	mock.Mock
}

func (m *mockStream) Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	args := m.Called(ctx, subject, data, len(opts))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jetstream.PubAck), args.Error(1)
}

func envelope(t *testing.T, eventType string) (events.Envelope, []byte) {
	t.Helper()
	env := events.ToEnvelope(events.NewAggregateEvent(eventType, "w-1", map[string]interface{}{"year": 2025}))
	data, err := json.Marshal(env)
	require.NoError(t, err)
	return env, data
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "wrongopinions.week.slot_added", nats.Subject("week.slot_added"))
}

func TestPublisher_Publish(t *testing.T) {
	// Arrange
	stream := new(mockStream)
	env, data := envelope(t, "week.created")
	stream.On("Publish", mock.Anything, "wrongopinions.week.created", data, 1).
		Return(&jetstream.PubAck{Stream: "WRONGOPINIONS_EVENTS", Sequence: 7}, nil).Once()
	publisher := nats.NewPublisher(stream, zaptest.NewLogger(t))

	// Act
	err := publisher.Publish(context.Background(), env, data)

	// Assert
	require.NoError(t, err)
	stream.AssertExpectations(t)
}

func TestPublisher_PublishError(t *testing.T) {
	// Arrange
	stream := new(mockStream)
	env, data := envelope(t, "week.deleted")
	stream.On("Publish", mock.Anything, "wrongopinions.week.deleted", data, 1).
		Return(nil, errors.New("no responders")).Once()
	publisher := nats.NewPublisher(stream, zaptest.NewLogger(t))

	// Act
	err := publisher.Publish(context.Background(), env, data)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no responders")
	assert.NoError(t, publisher.Close())
}

func TestClient_PublishToJetStream(t *testing.T) {
	// Skip if NATS is not available
	cfg := config.EventsConfig{
		NATSURL:    "nats://localhost:4222",
		NATSStream: "WRONGOPINIONS_EVENTS_TEST",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cleanup, err := nats.NewClient(ctx, cfg, "test-publisher", zaptest.NewLogger(t))
	if err != nil {
		t.Skip("NATS not available:", err)
	}
	defer cleanup()

	require.NoError(t, client.Health(ctx))

	publisher := nats.NewPublisher(client.JetStream(), zaptest.NewLogger(t))
	env, data := envelope(t, "week.created")
	require.NoError(t, publisher.Publish(ctx, env, data))
}

package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/wrongopinions/pkg/events"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
	"github.com/narwhalmedia/wrongopinions/pkg/logger"
)

type recorder struct {
	mu    sync.Mutex
	types []string
}

func (r *recorder) handler(name string) *events.HandlerFunc {
	return &events.HandlerFunc{Name: name, Fn: func(ctx context.Context, e interfaces.Event) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.types = append(r.types, name+":"+e.EventType())
		return nil
	}}
}

func TestInMemoryEventBus_PublishRoutesByTypeAndWildcard(t *testing.T) {
	// Setup
	bus := events.NewInMemoryEventBus(logger.NewNoopLogger())
	rec := &recorder{}
	require.NoError(t, bus.Subscribe("week.created", rec.handler("typed")))
	require.NoError(t, bus.Subscribe(events.Wildcard, rec.handler("all")))

	// Test
	require.NoError(t, bus.Publish(context.Background(), events.NewEvent("week.created", nil)))
	require.NoError(t, bus.Publish(context.Background(), events.NewEvent("film.cached", nil)))

	// Assert
	assert.Equal(t, []string{"typed:week.created", "all:week.created", "all:film.cached"}, rec.types)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := events.NewInMemoryEventBus(logger.NewNoopLogger())
	rec := &recorder{}
	failing := &events.HandlerFunc{Name: "failing", Fn: func(context.Context, interfaces.Event) error {
		return errors.New("boom")
	}}
	require.NoError(t, bus.Subscribe("week.deleted", failing))
	require.NoError(t, bus.Subscribe("week.deleted", rec.handler("ok")))

	err := bus.Publish(context.Background(), events.NewEvent("week.deleted", nil))

	require.NoError(t, err)
	assert.Equal(t, []string{"ok:week.deleted"}, rec.types)
}

func TestInMemoryEventBus_PublishAsyncAndStop(t *testing.T) {
	bus := events.NewInMemoryEventBus(logger.NewNoopLogger())
	rec := &recorder{}
	require.NoError(t, bus.Subscribe(events.Wildcard, rec.handler("all")))

	ctx, cancel := context.WithCancel(context.Background())
	bus.PublishAsync(ctx, events.NewAggregateEvent("week.updated", "w-1", map[string]interface{}{"notes": "x"}))
	cancel()
	require.NoError(t, bus.Stop())

	assert.Equal(t, []string{"all:week.updated"}, rec.types)
}

func TestToEnvelope(t *testing.T) {
	event := events.NewAggregateEvent("week.slot_added", "week-42", map[string]interface{}{"position": 1})

	env := events.ToEnvelope(event)

	assert.Equal(t, event.ID, env.ID)
	assert.Equal(t, "week.slot_added", env.Type)
	assert.Equal(t, "week-42", env.AggregateID)
	assert.Equal(t, 1, env.Data["position"])
	assert.Equal(t, event.Time, env.OccurredAt.UnixNano())
}

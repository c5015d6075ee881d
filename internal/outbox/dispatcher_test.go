package outbox

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/workoutmap/internal/events"
)

type recordingWriter struct {
	topics  []string
	batches map[string][]kafka.Message
	err     error
}

func (w *recordingWriter) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	if w.batches == nil {
		w.batches = make(map[string][]kafka.Message)
	}
	w.topics = append(w.topics, topic)
	w.batches[topic] = append(w.batches[topic], msgs...)
	return nil
}

type countingRegistry struct {
	calls map[string]int
	ids   map[string]int
}

func (r *countingRegistry) EnsureSchema(_ context.Context, subject, _ string) (int, error) {
	r.calls[subject]++
	return r.ids[subject], nil
}

func newTestDispatcher(w messageWriter, r schemaRegistrar) *Dispatcher {
	return &Dispatcher{
		producer: w,
		registry: r,
		logger:   log.New(io.Discard, "", 0),
	}
}

func outboxMessage(id int64, eventType, topic, subject string) Message {
	return Message{
		EventID:       id,
		SlotKey:       "workouts",
		AggregateType: "workout",
		AggregateID:   "w-1",
		EventType:     eventType,
		Topic:         topic,
		SchemaSubject: subject,
		PartitionKey:  "workouts",
		Payload:       json.RawMessage(`{"slot":"workouts"}`),
	}
}

func TestDeliverFramesAndGroupsByTopic(t *testing.T) {
	writer := &recordingWriter{}
	registry := &countingRegistry{
		calls: map[string]int{},
		ids:   map[string]int{"workout_events-value": 7, "workout_resets-value": 9},
	}
	d := newTestDispatcher(writer, registry)

	err := d.deliver(context.Background(), []Message{
		outboxMessage(1, events.TypeWorkoutLogged, "workout_events", "workout_events-value"),
		outboxMessage(2, events.TypeWorkoutLogged, "workout_events", "workout_events-value"),
		outboxMessage(3, events.TypeWorkoutsReset, "workout_resets", "workout_resets-value"),
	})
	require.NoError(t, err)

	require.Equal(t, []string{"workout_events", "workout_resets"}, writer.topics)
	require.Len(t, writer.batches["workout_events"], 2)
	require.Equal(t, 1, registry.calls["workout_events-value"], "schema id must be cached")

	record := writer.batches["workout_resets"][0]
	require.Equal(t, byte(0), record.Value[0])
	require.Equal(t, uint32(9), binary.BigEndian.Uint32(record.Value[1:5]))
	require.JSONEq(t, `{"slot":"workouts"}`, string(record.Value[5:]))
	require.Equal(t, []byte("workouts"), record.Key)

	headers := map[string]string{}
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, events.TypeWorkoutsReset, headers["event_type"])
	require.Equal(t, "workouts", headers["slot_key"])
	require.Equal(t, "workout_resets-value", headers["schema_subject"])
}

func TestDeliverRejectsUnknownEventType(t *testing.T) {
	writer := &recordingWriter{}
	d := newTestDispatcher(writer, &countingRegistry{calls: map[string]int{}})

	err := d.deliver(context.Background(), []Message{outboxMessage(1, "workout.deleted", "workout_events", "workout_events-value")})
	require.Error(t, err)
	require.Empty(t, writer.topics)
}

func TestDeliverPropagatesWriterErrors(t *testing.T) {
	writer := &recordingWriter{err: errors.New("broker unavailable")}
	d := newTestDispatcher(writer, &countingRegistry{calls: map[string]int{}, ids: map[string]int{}})

	err := d.deliver(context.Background(), []Message{outboxMessage(1, events.TypeWorkoutLogged, "workout_events", "workout_events-value")})
	require.ErrorContains(t, err, "broker unavailable")
}

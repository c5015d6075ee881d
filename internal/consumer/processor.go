// Package consumer reads workout events back from Kafka and records them.
package consumer

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/workoutmap/internal/events"
	"example.com/workoutmap/internal/observability"
)

// Reader exposes the minimal kafka.Reader interface needed by the processor.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler receives decoded messages from Kafka.
type Handler interface {
	Handle(context.Context, Message) error
}

// Message is a decoded record emitted by the outbox dispatcher.
type Message struct {
	Topic         string
	Partition     int
	Offset        int64
	Timestamp     time.Time
	EventType     string
	SlotKey       string
	SchemaSubject string
	SchemaID      int
	Payload       json.RawMessage

	// WorkoutType is set for workout.logged events.
	WorkoutType string
	// Discarded is the number of workouts a workouts.reset event cleared.
	Discarded int
}

// decodeError is a record the processor cannot use. Reason labels the
// decode error metric.
type decodeError struct {
	reason string
	err    error
}

func (e *decodeError) Error() string { return e.err.Error() }

func (e *decodeError) Unwrap() error { return e.err }

func framingError(format string, args ...any) error {
	return &decodeError{reason: "framing", err: fmt.Errorf(format, args...)}
}

// Option configures optional behaviour for the Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// Processor pulls messages from Kafka, decodes them, and dispatches to a Handler.
type Processor struct {
	reader  Reader
	handler Handler
	logger  *log.Logger
}

func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:  reader,
		handler: handler,
		logger:  log.New(log.Writer(), "[consumer] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes messages until the context is cancelled. Handler failures
// leave the offset uncommitted so the record is redelivered after a rebalance.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			p.logger.Printf("fetch error: %v", err)
			continue
		}

		if !p.process(ctx, msg) {
			continue
		}
		if err := p.reader.CommitMessages(ctx, msg); err != nil {
			p.logger.Printf("commit error (topic=%s, offset=%d): %v", msg.Topic, msg.Offset, err)
		}
	}
}

// process reports whether msg is done with and its offset may be committed.
// Undecodable records count as done so one bad record cannot stall a partition.
func (p *Processor) process(ctx context.Context, msg kafka.Message) bool {
	event, err := decodeMessage(msg)
	if err != nil {
		p.logger.Printf("skipping undecodable record (topic=%s, partition=%d, offset=%d): %v", msg.Topic, msg.Partition, msg.Offset, err)
		reason := "unknown"
		var de *decodeError
		if errors.As(err, &de) {
			reason = de.reason
		}
		recordDecodeError(msg.Topic, reason)
		return true
	}

	if err := p.handler.Handle(ctx, event); err != nil {
		p.logger.Printf("handler error (event_type=%s, slot=%s): %v", event.EventType, event.SlotKey, err)
		recordHandlerError(event)
		observability.CaptureError(err, map[string]any{
			"topic":      event.Topic,
			"event_type": event.EventType,
			"offset":     event.Offset,
		})
		return false
	}

	recordProcessed(event)
	return true
}

func decodeMessage(msg kafka.Message) (Message, error) {
	if len(msg.Value) < 5 {
		return Message{}, framingError("invalid payload length: %d", len(msg.Value))
	}
	if msg.Value[0] != 0 {
		return Message{}, framingError("unexpected magic byte %d", msg.Value[0])
	}

	eventType, ok := headerValue(msg, "event_type")
	if !ok {
		return Message{}, &decodeError{reason: "headers", err: errors.New("missing event_type header")}
	}
	slotKey, _ := headerValue(msg, "slot_key")
	schemaSubject, _ := headerValue(msg, "schema_subject")

	decoded := Message{
		Topic:         msg.Topic,
		Partition:     msg.Partition,
		Offset:        msg.Offset,
		Timestamp:     msg.Time,
		EventType:     string(eventType),
		SlotKey:       string(slotKey),
		SchemaSubject: string(schemaSubject),
		SchemaID:      int(binary.BigEndian.Uint32(msg.Value[1:5])),
		Payload:       json.RawMessage(append([]byte(nil), msg.Value[5:]...)),
	}
	if err := decodePayload(&decoded); err != nil {
		return Message{}, err
	}
	return decoded, nil
}

// decodePayload checks the payload against its event type and copies the
// fields the metrics need onto msg.
func decodePayload(msg *Message) error {
	switch msg.EventType {
	case events.TypeWorkoutLogged:
		var evt events.WorkoutLogged
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return &decodeError{reason: "payload", err: fmt.Errorf("decode %s payload: %w", msg.EventType, err)}
		}
		if evt.WorkoutID == "" {
			return &decodeError{reason: "payload", err: fmt.Errorf("%s payload without workout_id", msg.EventType)}
		}
		msg.WorkoutType = evt.WorkoutType
	case events.TypeWorkoutsReset:
		var evt events.WorkoutsReset
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return &decodeError{reason: "payload", err: fmt.Errorf("decode %s payload: %w", msg.EventType, err)}
		}
		msg.Discarded = evt.Discarded
	default:
		return &decodeError{reason: "event_type", err: fmt.Errorf("unknown event_type %q", msg.EventType)}
	}
	return nil
}

func headerValue(msg kafka.Message, key string) ([]byte, bool) {
	for _, header := range msg.Headers {
		if header.Key == key {
			return header.Value, true
		}
	}
	return nil, false
}

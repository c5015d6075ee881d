package consumer

import (
	"github.com/prometheus/client_golang/prometheus"

	"example.com/workoutmap/internal/events"
)

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "consumer",
		Name:      "messages_processed_total",
		Help:      "Workout events recorded in the event log.",
	}, []string{"topic", "event_type"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "consumer",
		Name:      "handler_errors_total",
		Help:      "Number of handler errors grouped by topic and event type.",
	}, []string{"topic", "event_type"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "consumer",
		Name:      "decode_errors_total",
		Help:      "Records skipped because they could not be decoded, grouped by reason.",
	}, []string{"topic", "reason"})

	workoutsLoggedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "consumer",
		Name:      "workouts_logged_total",
		Help:      "Logged workouts seen on the event stream per slot and workout type.",
	}, []string{"slot", "workout_type"})

	workoutsDiscardedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "consumer",
		Name:      "workouts_discarded_total",
		Help:      "Workouts cleared by reset events per slot.",
	}, []string{"slot"})

	lastMessageGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "workoutmap",
		Subsystem: "consumer",
		Name:      "last_message_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successfully processed message per topic and event type.",
	}, []string{"topic", "event_type"})
)

func init() {
	prometheus.MustRegister(processedCounter, handlerErrorCounter, decodeErrorCounter,
		workoutsLoggedCounter, workoutsDiscardedCounter, lastMessageGauge)
}

func recordProcessed(msg Message) {
	processedCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
	switch msg.EventType {
	case events.TypeWorkoutLogged:
		workoutsLoggedCounter.WithLabelValues(msg.SlotKey, msg.WorkoutType).Inc()
	case events.TypeWorkoutsReset:
		workoutsDiscardedCounter.WithLabelValues(msg.SlotKey).Add(float64(msg.Discarded))
	}
	if !msg.Timestamp.IsZero() {
		lastMessageGauge.WithLabelValues(msg.Topic, msg.EventType).Set(float64(msg.Timestamp.Unix()))
	}
}

func recordHandlerError(msg Message) {
	handlerErrorCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordDecodeError(topic, reason string) {
	decodeErrorCounter.WithLabelValues(topic, reason).Inc()
}

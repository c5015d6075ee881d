package app

import "sync"

// User-facing alert texts.
const (
	AlertInvalidInput   = "Inputs have to be positive numbers!"
	AlertNoPosition     = "Could not get your position"
	AlertSaveFailed     = "Could not save your workout, please try again"
	AlertMapUnavailable = "The map is not ready yet"
)

// Alerter shows blocking messages to the user.
type Alerter interface {
	Alert(message string)
}

// AlertQueue buffers alerts until the host page collects them.
type AlertQueue struct {
	mu      sync.Mutex
	pending []string
}

// NewAlertQueue constructs an empty queue.
func NewAlertQueue() *AlertQueue {
	return &AlertQueue{}
}

// Alert implements Alerter.
func (q *AlertQueue) Alert(message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, message)
}

// Drain returns the buffered alerts in order and empties the queue.
func (q *AlertQueue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	if out == nil {
		out = []string{}
	}
	return out
}

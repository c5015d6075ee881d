package snapshot

import (
	"context"
	"sync"
)

// MemorySlot keeps slot values in memory for tests and ephemeral runs.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string][]byte
	events []Event
}

// NewMemorySlot constructs an empty MemorySlot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

// Read implements Slot.
func (m *MemorySlot) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Write implements Slot.
func (m *MemorySlot) Write(_ context.Context, key string, value []byte, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	m.events = append(m.events, events...)
	return nil
}

// Delete implements Slot.
func (m *MemorySlot) Delete(_ context.Context, key string, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	m.events = append(m.events, events...)
	return nil
}

// Put stores a raw value, bypassing encoding.
func (m *MemorySlot) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
}

// Events returns the events recorded so far.
func (m *MemorySlot) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

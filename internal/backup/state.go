package backup

import (
	"fmt"
	"slices"
	"sync"

	"msgr/internal/bus"
)

// State represents an archive job state.
type State string

const (
	StateIdle      State = "IDLE"
	StateBackingUp State = "BACKING_UP"
	StateRestoring State = "RESTORING"
	StateFailed    State = "FAILED"
)

// validTransitions defines allowed state transitions. Idle and Failed
// may start a new job; a running job may only finish or fail.
var validTransitions = map[State][]State{
	StateIdle:      {StateBackingUp, StateRestoring},
	StateBackingUp: {StateIdle, StateFailed},
	StateRestoring: {StateIdle, StateFailed},
	StateFailed:    {StateIdle, StateBackingUp, StateRestoring},
}

// Machine tracks and enforces archive job state transitions. Entering
// a working state succeeds for exactly one caller at a time, which is
// how the engine serializes jobs.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Idle state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: StateIdle,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.KindBackupStatus, StatusChange{
			From: from,
			To:   to,
		})
	}
	return nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}

// Package lifecycle models a module run as a small state machine driven by
// two host notifications: become active, and become inactive (optionally
// flagged as about to be destroyed).
package lifecycle

import (
	"errors"
	"sync"
)

// State of a run.
type State int

const (
	StateInactive State = iota
	StateActive
	// StateFinishing is terminal: the run was deactivated with the
	// destruction flag and will not become active again.
	StateFinishing
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActive:
		return "active"
	case StateFinishing:
		return "active-finishing"
	default:
		return "unknown"
	}
}

// Transition is an observable step between states.
type Transition int

const (
	Created Transition = iota
	Resumed
	Paused
	Finishing
)

func (t Transition) String() string {
	switch t {
	case Created:
		return "created"
	case Resumed:
		return "resumed"
	case Paused:
		return "paused"
	case Finishing:
		return "finishing"
	default:
		return "unknown"
	}
}

var (
	ErrAlreadyActive = errors.New("lifecycle: already active")
	ErrNotActive     = errors.New("lifecycle: not active")
	ErrFinished      = errors.New("lifecycle: run is finishing")
)

// Observer is notified of each transition in order.
type Observer func(Transition)

// Machine tracks one run. Observers run on the caller's goroutine after the
// state change is committed.
type Machine struct {
	mu        sync.Mutex
	state     State
	created   bool
	observers []Observer
}

// New returns a machine in StateInactive that has not been created yet.
func New() *Machine { return &Machine{} }

// Subscribe adds an observer. Intended to be called before the first Activate.
func (m *Machine) Subscribe(o Observer) {
	if o == nil {
		return
	}
	m.mu.Lock()
	m.observers = append(m.observers, o)
	m.mu.Unlock()
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Activate handles the "become active" notification. The first activation
// emits Created before Resumed.
func (m *Machine) Activate() error {
	m.mu.Lock()
	switch m.state {
	case StateFinishing:
		m.mu.Unlock()
		return ErrFinished
	case StateActive:
		m.mu.Unlock()
		return ErrAlreadyActive
	}
	var out []Transition
	if !m.created {
		m.created = true
		out = append(out, Created)
	}
	out = append(out, Resumed)
	m.state = StateActive
	obs := m.observers
	m.mu.Unlock()

	notify(obs, out)
	return nil
}

// Deactivate handles the "become inactive" notification. With finishing set
// the run moves to the terminal state and Finishing follows Paused.
func (m *Machine) Deactivate(finishing bool) error {
	m.mu.Lock()
	switch m.state {
	case StateFinishing:
		m.mu.Unlock()
		return ErrFinished
	case StateInactive:
		m.mu.Unlock()
		return ErrNotActive
	}
	out := []Transition{Paused}
	m.state = StateInactive
	if finishing {
		out = append(out, Finishing)
		m.state = StateFinishing
	}
	obs := m.observers
	m.mu.Unlock()

	notify(obs, out)
	return nil
}

func notify(obs []Observer, ts []Transition) {
	for _, t := range ts {
		for _, o := range obs {
			o(t)
		}
	}
}

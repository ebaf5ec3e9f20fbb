package core

import (
	"fmt"
	"sync"
	"time"

	checkouterrors "cohort/internal/checkout/errors"
)

// Observer is told how long the machine stayed in from before moving to to.
type Observer func(from, to State, spent time.Duration)

type Machine struct {
	mu        sync.RWMutex
	state     State
	enteredAt time.Time
	observers []Observer
	now       func() time.Time
}

func NewMachine(observers ...Observer) *Machine {
	return &Machine{
		state:     Idle,
		enteredAt: time.Now(),
		observers: observers,
		now:       time.Now,
	}
}

func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	from := m.state
	if !CanTransition(from, to) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", checkouterrors.ErrInvalidTransition, from, to)
	}
	now := m.now()
	spent := now.Sub(m.enteredAt)
	m.state = to
	m.enteredAt = now
	m.mu.Unlock()

	for _, observe := range m.observers {
		observe(from, to, spent)
	}
	return nil
}

// Reset returns a finished machine to Idle so the next attempt can start.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Idle {
		return nil
	}
	if !m.state.Terminal() {
		return fmt.Errorf("%w: %s -> %s", checkouterrors.ErrInvalidTransition, m.state, Idle)
	}
	m.state = Idle
	m.enteredAt = m.now()
	return nil
}

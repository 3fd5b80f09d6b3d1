package round

import (
	"crash_backend/internal/logger"
	"crash_backend/internal/model"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Handlers - optional callbacks of one phase
type Handlers struct {
	OnEnter  func(from model.Phase) error
	OnExit   func(to model.Phase) error
	OnUpdate func(dt float64) error
}

// ChangeFunc is called once after every completed transition.
type ChangeFunc func(from, to model.Phase)

// Machine - phase state machine. Transitions are not reentrant: a
// ChangeState issued from inside a handler is rejected.
type Machine struct {
	log           *zap.Logger
	states        map[model.Phase]Handlers
	current       model.Phase
	previous      model.Phase
	transitioning bool
	onChange      ChangeFunc
}

func NewMachine(log *zap.Logger) *Machine {
	return &Machine{
		log:    logger.OrNop(log),
		states: make(map[model.Phase]Handlers),
	}
}

func (m *Machine) Register(p model.Phase, h Handlers) {
	m.states[p] = h
}

func (m *Machine) OnChange(fn ChangeFunc) {
	m.onChange = fn
}

// ChangeState runs exit(old), swaps, enter(new) and then notifies.
// It reports whether a transition happened.
func (m *Machine) ChangeState(target model.Phase) bool {
	if target == m.current {
		return false
	}
	if m.transitioning {
		m.log.Warn("state change rejected: transition in progress",
			zap.Stringer("current", m.current),
			zap.Stringer("target", target))
		return false
	}

	m.transitioning = true
	defer func() { m.transitioning = false }()

	from := m.current
	if h, ok := m.states[from]; ok && h.OnExit != nil {
		m.guard("exit", from, func() error { return h.OnExit(target) })
	}

	m.previous = from
	m.current = target

	if h, ok := m.states[target]; ok && h.OnEnter != nil {
		m.guard("enter", target, func() error { return h.OnEnter(from) })
	}

	if m.onChange != nil {
		m.guard("change", target, func() error {
			m.onChange(from, target)
			return nil
		})
	}
	return true
}

// Force swaps the phase without running handlers. Listeners are notified.
func (m *Machine) Force(target model.Phase) {
	from := m.current
	m.previous = from
	m.current = target
	m.transitioning = false
	if m.onChange != nil && from != target {
		m.guard("change", target, func() error {
			m.onChange(from, target)
			return nil
		})
	}
}

// Update forwards dt to the current phase. No-op while transitioning.
func (m *Machine) Update(dt float64) {
	if m.transitioning {
		return
	}
	if h, ok := m.states[m.current]; ok && h.OnUpdate != nil {
		m.guard("update", m.current, func() error { return h.OnUpdate(dt) })
	}
}

func (m *Machine) guard(stage string, p model.Phase, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("state handler panicked",
				zap.String("stage", stage),
				zap.Stringer("phase", p),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()
	if err := fn(); err != nil {
		m.log.Error("state handler failed",
			zap.String("stage", stage),
			zap.Stringer("phase", p),
			zap.Error(err))
	}
}

func (m *Machine) Current() model.Phase {
	return m.current
}

func (m *Machine) Previous() model.Phase {
	return m.previous
}

func (m *Machine) Is(p model.Phase) bool {
	return m.current == p
}

func (m *Machine) IsAny(ps ...model.Phase) bool {
	for _, p := range ps {
		if m.current == p {
			return true
		}
	}
	return false
}

func (m *Machine) Transitioning() bool {
	return m.transitioning
}

// Reset returns to Idle without running handlers or notifying.
func (m *Machine) Reset() {
	m.current = model.PhaseIdle
	m.previous = model.PhaseIdle
	m.transitioning = false
}

// Registered - phases with handlers, in cycle order
func (m *Machine) Registered() []model.Phase {
	out := make([]model.Phase, 0, len(m.states))
	for p := range m.states {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

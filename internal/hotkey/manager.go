package hotkey

import (
	"errors"
	"fmt"
)

// ErrConflict reports a combination that is already taken, by another
// action in this process or by another client of the host.
var ErrConflict = errors.New("shortcut already registered")

// Registrar is the host-side half of hotkey handling. Arming a shortcut
// makes the host report presses regardless of input focus.
type Registrar interface {
	RegisterShortcut(id int, sc Shortcut) error
	UnregisterShortcut(id int) error
}

// Manager maps action ids to shortcuts and shortcuts to callbacks.
// Dispatch is keyed by combination rather than action id so a press queued
// before a re-registration cannot fire the wrong callback.
type Manager[T any] struct {
	reg        Registrar
	byAction   map[int]Shortcut
	byShortcut map[Shortcut]int
	callbacks  map[Shortcut]T
}

func NewManager[T any](reg Registrar) *Manager[T] {
	return &Manager[T]{
		reg:        reg,
		byAction:   map[int]Shortcut{},
		byShortcut: map[Shortcut]int{},
		callbacks:  map[Shortcut]T{},
	}
}

// Register binds sc to action id, replacing the action's previous binding.
// Binding a combination that another action holds fails with ErrConflict
// and leaves both actions untouched.
func (m *Manager[T]) Register(id int, sc Shortcut, cb T) error {
	if owner, ok := m.byShortcut[sc]; ok && owner != id {
		return fmt.Errorf("%v is bound to action %d: %w", sc, owner, ErrConflict)
	}

	if old, ok := m.byAction[id]; ok {
		delete(m.callbacks, old)
		delete(m.byShortcut, old)
		delete(m.byAction, id)
		_ = m.reg.UnregisterShortcut(id)
	}

	if err := m.reg.RegisterShortcut(id, sc); err != nil {
		return err
	}
	m.byAction[id] = sc
	m.byShortcut[sc] = id
	m.callbacks[sc] = cb
	return nil
}

// Unregister removes the action's binding. Unknown ids are a no-op.
func (m *Manager[T]) Unregister(id int) error {
	sc, ok := m.byAction[id]
	if !ok {
		return nil
	}
	delete(m.callbacks, sc)
	delete(m.byShortcut, sc)
	delete(m.byAction, id)
	return m.reg.UnregisterShortcut(id)
}

// Callback looks up the handler for a pressed combination.
func (m *Manager[T]) Callback(sc Shortcut) (T, bool) {
	cb, ok := m.callbacks[sc]
	return cb, ok
}

// Bound returns the combination currently registered for an action.
func (m *Manager[T]) Bound(id int) (Shortcut, bool) {
	sc, ok := m.byAction[id]
	return sc, ok
}

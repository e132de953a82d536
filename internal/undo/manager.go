// Package undo keeps a bounded, linear Command history.
package undo

import (
	"fmt"
	"sync"
)

// DefaultLimit is the history length before the oldest command is evicted.
const DefaultLimit = 50

// Command is one undoable state transition. Redo must tolerate being called
// again on an already-applied state.
type Command interface {
	Undo()
	Redo()
}

// Describer is implemented by commands that can name themselves for history
// listings.
type Describer interface {
	Description() string
}

// Status is the UI-facing view of the history.
type Status struct {
	CanUndo  bool `json:"canUndo"`
	CanRedo  bool `json:"canRedo"`
	Position int  `json:"position"`
	Length   int  `json:"length"`
}

// Entry describes one history slot.
type Entry struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Applied     bool   `json:"applied"`
}

// Manager holds commands and the index of the last applied one (-1 = none).
type Manager struct {
	mu       sync.Mutex
	commands []Command
	position int
	limit    int

	subMu     sync.Mutex
	subs      map[int]func(Status)
	nextSubID int
}

// NewManager creates a history bounded at limit. Non-positive limits use
// DefaultLimit.
func NewManager(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{
		position: -1,
		limit:    limit,
		subs:     make(map[int]func(Status)),
	}
}

// Push discards the redo branch and appends cmd. When the history overflows
// the oldest command is evicted and the position stays where it is.
func (m *Manager) Push(cmd Command) {
	if cmd == nil {
		return
	}
	m.mu.Lock()
	m.commands = append(m.commands[:m.position+1:m.position+1], cmd)
	if len(m.commands) > m.limit {
		m.commands = append([]Command(nil), m.commands[1:]...)
	} else {
		m.position++
	}
	st := m.statusLocked()
	m.mu.Unlock()

	m.notify(st)
}

// Undo reverts the last applied command. Returns false when there is nothing
// to undo.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	if m.position < 0 {
		m.mu.Unlock()
		return false
	}
	cmd := m.commands[m.position]
	m.position--
	st := m.statusLocked()
	m.mu.Unlock()

	cmd.Undo()
	m.notify(st)
	return true
}

// Redo re-applies the next command. Returns false at the head of history.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	if m.position >= len(m.commands)-1 {
		m.mu.Unlock()
		return false
	}
	m.position++
	cmd := m.commands[m.position]
	st := m.statusLocked()
	m.mu.Unlock()

	cmd.Redo()
	m.notify(st)
	return true
}

// CanUndo reports whether Undo would do anything.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position >= 0
}

// CanRedo reports whether Redo would do anything.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position < len(m.commands)-1
}

// Clear empties the history. It is not itself undoable.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.commands = nil
	m.position = -1
	st := m.statusLocked()
	m.mu.Unlock()

	m.notify(st)
}

// Len returns the number of commands held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.commands)
}

// Position returns the index of the last applied command.
func (m *Manager) Position() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// Limit returns the maximum history length.
func (m *Manager) Limit() int {
	return m.limit
}

// Status returns the derived flags.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

// Entries lists the history oldest first.
func (m *Manager) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, len(m.commands))
	for i, cmd := range m.commands {
		out[i] = Entry{Index: i, Description: describe(cmd), Applied: i <= m.position}
	}
	return out
}

// Subscribe registers fn to receive the status after every push, undo, redo
// and clear. The returned func unsubscribes.
func (m *Manager) Subscribe(fn func(Status)) func() {
	m.subMu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) statusLocked() Status {
	return Status{
		CanUndo:  m.position >= 0,
		CanRedo:  m.position < len(m.commands)-1,
		Position: m.position,
		Length:   len(m.commands),
	}
}

func (m *Manager) notify(st Status) {
	m.subMu.Lock()
	fns := make([]func(Status), 0, len(m.subs))
	for i := 0; i < m.nextSubID; i++ {
		if fn, ok := m.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func describe(cmd Command) string {
	if d, ok := cmd.(Describer); ok {
		return d.Description()
	}
	return fmt.Sprintf("%T", cmd)
}

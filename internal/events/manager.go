// Package events is the builder's name-keyed pub/sub with optional debouncing.
package events

import (
	"sync"
	"time"

	"github.com/grid-builder/backend/internal/logging"
)

// Wildcard subscribes a handler to every event name.
const Wildcard = "*"

// Event is what handlers receive.
type Event struct {
	Name      string    `json:"name"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler reacts to an event. Handlers run on the emitting goroutine, or on a
// timer goroutine for debounced events.
type Handler func(Event)

// HandlerID identifies a subscription for Off.
type HandlerID uint64

type subscription struct {
	id HandlerID
	fn Handler
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

// Manager dispatches events to subscribers.
type Manager struct {
	mu       sync.Mutex
	handlers map[string][]subscription
	pending  map[string]*pendingEvent
	policy   DebouncePolicy
	nextID   HandlerID
	closed   bool
	logger   logging.Logger
}

// NewManager creates a Manager with the given debounce policy.
func NewManager(policy DebouncePolicy, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard{}
	}
	return &Manager{
		handlers: make(map[string][]subscription),
		pending:  make(map[string]*pendingEvent),
		policy:   policy,
		logger:   logger,
	}
}

// Policy returns the debounce policy in effect.
func (m *Manager) Policy() DebouncePolicy {
	return m.policy
}

// On subscribes fn to name. Use Wildcard to receive everything.
func (m *Manager) On(name string, fn Handler) HandlerID {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.handlers[name] = append(m.handlers[name], subscription{id: id, fn: fn})
	return id
}

// Off removes a subscription. Unknown ids are ignored.
func (m *Manager) Off(name string, id HandlerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.handlers[name]
	for i, s := range subs {
		if s.id == id {
			m.handlers[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(m.handlers[name]) == 0 {
		delete(m.handlers, name)
	}
}

// Emit delivers an event, coalescing it if the policy debounces name. The
// newest payload within a window wins.
func (m *Manager) Emit(name string, payload any) {
	ev := Event{Name: name, Payload: payload, Timestamp: time.Now()}

	m.mu.Lock()
	if m.closed || !m.policy.Debounced(name) {
		m.mu.Unlock()
		m.deliver(ev)
		return
	}

	if p, ok := m.pending[name]; ok {
		p.event = ev
		p.timer.Reset(m.policy.Delay)
		m.mu.Unlock()
		return
	}
	m.pending[name] = &pendingEvent{
		event: ev,
		timer: time.AfterFunc(m.policy.Delay, func() { m.fire(name) }),
	}
	m.mu.Unlock()
}

// EmitNow delivers immediately, discarding any pending debounced payload of
// the same name. Final commit events use it so a gesture's end is never delayed.
func (m *Manager) EmitNow(name string, payload any) {
	m.drop(name)
	m.deliver(Event{Name: name, Payload: payload, Timestamp: time.Now()})
}

// Flush delivers a pending debounced event right away, if any.
func (m *Manager) Flush(name string) {
	m.mu.Lock()
	p, ok := m.pending[name]
	if ok {
		p.timer.Stop()
		delete(m.pending, name)
	}
	m.mu.Unlock()

	if ok {
		m.deliver(p.event)
	}
}

// FlushAll delivers every pending debounced event.
func (m *Manager) FlushAll() {
	m.mu.Lock()
	names := make([]string, 0, len(m.pending))
	for name := range m.pending {
		names = append(names, name)
	}
	m.mu.Unlock()

	for _, name := range names {
		m.Flush(name)
	}
}

// Pending reports whether a debounced event is waiting for name.
func (m *Manager) Pending(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pending[name]
	return ok
}

// Close cancels pending timers without delivering them. Later emits are
// delivered synchronously.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, p := range m.pending {
		p.timer.Stop()
		delete(m.pending, name)
	}
	m.closed = true
}

func (m *Manager) drop(name string) {
	m.mu.Lock()
	if p, ok := m.pending[name]; ok {
		p.timer.Stop()
		delete(m.pending, name)
	}
	m.mu.Unlock()
}

func (m *Manager) fire(name string) {
	m.mu.Lock()
	p, ok := m.pending[name]
	if ok {
		delete(m.pending, name)
	}
	m.mu.Unlock()

	if ok {
		m.deliver(p.event)
	}
}

func (m *Manager) deliver(ev Event) {
	m.mu.Lock()
	subs := make([]subscription, 0, len(m.handlers[ev.Name])+len(m.handlers[Wildcard]))
	subs = append(subs, m.handlers[ev.Name]...)
	subs = append(subs, m.handlers[Wildcard]...)
	m.mu.Unlock()

	for _, s := range subs {
		m.call(s, ev)
	}
}

func (m *Manager) call(s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Errorf("handler for %q panicked: %v", ev.Name, r)
		}
	}()
	s.fn(ev)
}

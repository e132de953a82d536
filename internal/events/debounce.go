package events

import "time"

// DefaultDebounceDelay is the coalescing window for high-frequency events.
const DefaultDebounceDelay = 300 * time.Millisecond

// DebouncePolicy lists the event names that are coalesced and the window.
type DebouncePolicy struct {
	Events map[string]bool
	Delay  time.Duration
}

// DefaultDebouncePolicy debounces drag, resize and state-changed previews.
func DefaultDebouncePolicy() DebouncePolicy {
	return NewDebouncePolicy(DefaultDebounceDelay, ComponentDragged, ComponentResized, StateChanged)
}

// NewDebouncePolicy builds a policy from a delay and event names.
func NewDebouncePolicy(delay time.Duration, names ...string) DebouncePolicy {
	p := DebouncePolicy{Events: make(map[string]bool, len(names)), Delay: delay}
	for _, n := range names {
		if n != "" {
			p.Events[n] = true
		}
	}
	return p
}

// NoDebounce delivers every event synchronously.
func NoDebounce() DebouncePolicy {
	return DebouncePolicy{}
}

// Debounced reports whether name is coalesced under this policy.
func (p DebouncePolicy) Debounced(name string) bool {
	return p.Delay > 0 && p.Events[name]
}

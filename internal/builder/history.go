package builder

import (
	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/undo"
)

// Undo reverts the last action.
func (b *Builder) Undo() bool {
	b.lock()
	defer b.unlock()

	if !b.history.Undo() {
		return false
	}
	st := b.history.Status()
	b.queue(events.UndoExecuted, st)
	b.queue(events.HistoryChanged, st)
	return true
}

// Redo re-applies the next action.
func (b *Builder) Redo() bool {
	b.lock()
	defer b.unlock()

	if !b.history.Redo() {
		return false
	}
	st := b.history.Status()
	b.queue(events.RedoExecuted, st)
	b.queue(events.HistoryChanged, st)
	return true
}

func (b *Builder) CanUndo() bool { return b.history.CanUndo() }
func (b *Builder) CanRedo() bool { return b.history.CanRedo() }

// HistoryStatus returns the derived history flags.
func (b *Builder) HistoryStatus() undo.Status { return b.history.Status() }

// History lists the recorded actions oldest first.
func (b *Builder) History() []undo.Entry { return b.history.Entries() }

// ClearHistory drops every recorded action. It is not undoable.
func (b *Builder) ClearHistory() {
	b.lock()
	defer b.unlock()

	b.history.Clear()
	b.queue(events.HistoryChanged, b.history.Status())
}

// PushCommand records a host-defined action that has already been applied,
// so it shares the builder's undo stack.
func (b *Builder) PushCommand(cmd undo.Command) {
	if cmd == nil {
		return
	}
	b.lock()
	defer b.unlock()
	b.push(cmd)
}

// Reset restores the initial snapshot and clears history.
func (b *Builder) Reset() {
	b.lock()
	defer b.unlock()

	b.store.Reset()
	b.history.Clear()
	b.queue(events.StateReset, nil)
	b.queue(events.HistoryChanged, b.history.Status())
}

package builder

import (
	"github.com/grid-builder/backend/internal/commands"
	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/models"
)

// AddCanvas creates an empty canvas as an undoable action.
func (b *Builder) AddCanvas(canvasID string) bool {
	b.lock()
	defer b.unlock()

	if !b.store.AddCanvas(canvasID) {
		return false
	}
	if cmd, err := commands.NewAddCanvas(b.store, queueEmitter{b}, canvasID); err == nil {
		b.push(cmd)
	} else {
		b.logger.Errorf("add canvas: %v", err)
	}
	b.queue(events.CanvasAdded, events.CanvasPayload{CanvasID: canvasID})
	return true
}

// RemoveCanvas deletes a canvas and all its items as an undoable action.
func (b *Builder) RemoveCanvas(canvasID string) bool {
	b.lock()
	defer b.unlock()

	cmd, err := commands.NewRemoveCanvas(b.store, queueEmitter{b}, canvasID)
	if err != nil {
		b.logger.Warnf("remove canvas: %v", err)
		return false
	}
	if !b.store.RemoveCanvas(canvasID) {
		return false
	}
	b.push(cmd)
	b.queue(events.CanvasRemoved, events.CanvasPayload{CanvasID: canvasID})
	return true
}

// CanvasIDs lists canvases in sorted order.
func (b *Builder) CanvasIDs() []string {
	return b.store.CanvasIDs()
}

// SetActiveCanvas focuses a canvas for click-to-add. Not undoable.
func (b *Builder) SetActiveCanvas(canvasID string) bool {
	b.lock()
	defer b.unlock()

	if !b.store.SetActiveCanvas(canvasID) {
		return false
	}
	b.queue(events.CanvasActivated, events.CanvasPayload{CanvasID: canvasID})
	return true
}

// ActiveCanvas returns the focused canvas id.
func (b *Builder) ActiveCanvas() string { return b.store.ActiveCanvas() }

// SelectItem selects an item wherever it lives.
func (b *Builder) SelectItem(itemID string) bool {
	b.lock()
	defer b.unlock()

	_, canvasID, ok := b.store.GetItem(itemID)
	if !ok || !b.store.SelectItem(canvasID, itemID) {
		return false
	}
	b.queue(events.SelectionChanged, events.SelectionPayload{ItemID: itemID, CanvasID: canvasID})
	return true
}

// ClearSelection deselects.
func (b *Builder) ClearSelection() bool {
	b.lock()
	defer b.unlock()

	if !b.store.ClearSelection() {
		return false
	}
	b.queue(events.SelectionChanged, events.SelectionPayload{})
	return true
}

// SetViewport switches between desktop and mobile editing.
func (b *Builder) SetViewport(v models.Viewport) bool {
	b.lock()
	defer b.unlock()

	if !b.store.SetViewport(v) {
		return false
	}
	b.queue(events.ViewportChanged, events.ViewportPayload{Viewport: v})
	return true
}

// SetShowGrid toggles the grid overlay.
func (b *Builder) SetShowGrid(show bool) bool {
	b.lock()
	defer b.unlock()
	return b.store.SetShowGrid(show)
}

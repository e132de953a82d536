package commands

import (
	"fmt"

	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/models"
	"github.com/grid-builder/backend/internal/state"
)

// AddCanvas undoes a canvas creation.
type AddCanvas struct {
	store    *state.Manager
	emitter  Emitter
	canvasID string
}

func NewAddCanvas(store *state.Manager, emitter Emitter, canvasID string) (*AddCanvas, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	if canvasID == "" {
		return nil, fmt.Errorf("%w: add canvas: empty id", ErrInvalidCommand)
	}
	return &AddCanvas{store: store, emitter: emitterOrNop(emitter), canvasID: canvasID}, nil
}

func (c *AddCanvas) Undo() {
	if c.store.RemoveCanvas(c.canvasID) {
		c.emitter.Emit(events.CanvasRemoved, events.CanvasPayload{CanvasID: c.canvasID})
	}
}

func (c *AddCanvas) Redo() {
	if c.store.AddCanvas(c.canvasID) {
		c.emitter.Emit(events.CanvasAdded, events.CanvasPayload{CanvasID: c.canvasID})
	}
}

func (c *AddCanvas) Description() string { return "add canvas " + c.canvasID }

// RemoveCanvas restores a deleted canvas with all of its items and counter.
type RemoveCanvas struct {
	store    *state.Manager
	emitter  Emitter
	canvasID string
	snapshot models.Canvas
}

// NewRemoveCanvas must be called before the canvas is removed.
func NewRemoveCanvas(store *state.Manager, emitter Emitter, canvasID string) (*RemoveCanvas, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	snap, ok := store.GetCanvas(canvasID)
	if !ok {
		return nil, fmt.Errorf("%w: remove canvas: %q not found", ErrInvalidCommand, canvasID)
	}
	return &RemoveCanvas{store: store, emitter: emitterOrNop(emitter), canvasID: canvasID, snapshot: snap}, nil
}

func (c *RemoveCanvas) Undo() {
	if c.store.RestoreCanvas(c.canvasID, c.snapshot) {
		c.emitter.Emit(events.CanvasAdded, events.CanvasPayload{CanvasID: c.canvasID})
	}
}

func (c *RemoveCanvas) Redo() {
	if c.store.RemoveCanvas(c.canvasID) {
		c.emitter.Emit(events.CanvasRemoved, events.CanvasPayload{CanvasID: c.canvasID})
	}
}

func (c *RemoveCanvas) Description() string {
	return fmt.Sprintf("remove canvas %s (%d items)", c.canvasID, len(c.snapshot.Items))
}

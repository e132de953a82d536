package commands

import (
	"fmt"

	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/models"
	"github.com/grid-builder/backend/internal/state"
)

// ChangeZIndex records one or more simultaneous z-index transitions, such as
// a layer panel reorder.
type ChangeZIndex struct {
	store   *state.Manager
	emitter Emitter
	changes []models.ZIndexChange
}

func NewChangeZIndex(store *state.Manager, emitter Emitter, changes ...models.ZIndexChange) (*ChangeZIndex, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: z-index: no changes", ErrInvalidCommand)
	}
	return &ChangeZIndex{
		store:   store,
		emitter: emitterOrNop(emitter),
		changes: append([]models.ZIndexChange(nil), changes...),
	}, nil
}

// Changes returns the recorded transitions.
func (c *ChangeZIndex) Changes() []models.ZIndexChange {
	return append([]models.ZIndexChange(nil), c.changes...)
}

// Undo restores the old values. The emitted payload has old and new swapped
// so listeners always see the transition that just happened.
func (c *ChangeZIndex) Undo() {
	swapped := make([]models.ZIndexChange, len(c.changes))
	for i, ch := range c.changes {
		swapped[i] = models.ZIndexChange{ItemID: ch.ItemID, CanvasID: ch.CanvasID, OldZIndex: ch.NewZIndex, NewZIndex: ch.OldZIndex}
	}
	c.apply(swapped)
}

func (c *ChangeZIndex) Redo() {
	c.apply(c.changes)
}

func (c *ChangeZIndex) apply(changes []models.ZIndexChange) {
	assignments := make([]state.ZIndexAssignment, len(changes))
	for i, ch := range changes {
		assignments[i] = state.ZIndexAssignment{CanvasID: ch.CanvasID, ItemID: ch.ItemID, ZIndex: ch.NewZIndex}
	}
	c.store.SetZIndexes(assignments)

	if len(changes) == 1 {
		c.emitter.Emit(events.ZIndexChanged, changes[0])
		return
	}
	c.emitter.Emit(events.ZIndexBatchChanged, changes)
}

func (c *ChangeZIndex) Description() string {
	if len(c.changes) == 1 {
		return "reorder " + c.changes[0].ItemID
	}
	return fmt.Sprintf("reorder %d items", len(c.changes))
}

package commands

import (
	"fmt"

	"github.com/grid-builder/backend/internal/models"
	"github.com/grid-builder/backend/internal/state"
)

// AddItem undoes a completed add.
type AddItem struct {
	store *state.Manager
	item  models.GridItem
}

// NewAddItem captures the item as it exists after the add.
func NewAddItem(store *state.Manager, itemID string) (*AddItem, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	it, _, ok := store.GetItem(itemID)
	if !ok {
		return nil, fmt.Errorf("%w: add: item %q not found", ErrInvalidCommand, itemID)
	}
	return &AddItem{store: store, item: it}, nil
}

func (c *AddItem) Undo() {
	if _, canvasID, ok := c.store.GetItem(c.item.ID); ok {
		c.store.RemoveItemFromCanvas(canvasID, c.item.ID)
	}
}

func (c *AddItem) Redo() {
	c.store.AddItemToCanvas(c.item.CanvasID, c.item)
}

func (c *AddItem) Description() string {
	return fmt.Sprintf("add %s %s", c.item.Type, c.item.ID)
}

// DeleteItem restores a deleted item at its original array index.
type DeleteItem struct {
	store *state.Manager
	item  models.GridItem
	index int
}

// NewDeleteItem must be called before the item is removed.
func NewDeleteItem(store *state.Manager, itemID string) (*DeleteItem, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	it, canvasID, ok := store.GetItem(itemID)
	if !ok {
		return nil, fmt.Errorf("%w: delete: item %q not found", ErrInvalidCommand, itemID)
	}
	return &DeleteItem{store: store, item: it, index: store.ItemIndex(canvasID, itemID)}, nil
}

// Item returns the captured snapshot.
func (c *DeleteItem) Item() models.GridItem { return models.CloneItem(c.item) }

func (c *DeleteItem) Undo() {
	c.store.InsertItemAt(c.item.CanvasID, c.item, c.index)
}

func (c *DeleteItem) Redo() {
	if _, canvasID, ok := c.store.GetItem(c.item.ID); ok {
		c.store.RemoveItemFromCanvas(canvasID, c.item.ID)
	}
}

func (c *DeleteItem) Description() string {
	return fmt.Sprintf("delete %s %s", c.item.Type, c.item.ID)
}

// MoveSpec records both ends of a drag. Sizes are optional and only set for
// a combined move and resize.
type MoveSpec struct {
	ItemID       string
	FromCanvasID string
	ToCanvasID   string
	From         models.Position
	To           models.Position
	FromIndex    int
	FromZIndex   int
	ToZIndex     int
	FromSize     *models.Size
	ToSize       *models.Size
}

// MoveItem undoes a same-canvas or cross-canvas drag.
type MoveItem struct {
	store *state.Manager
	spec  MoveSpec
}

// NewMoveItem validates spec. It does not touch the store.
func NewMoveItem(store *state.Manager, spec MoveSpec) (*MoveItem, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	if spec.ItemID == "" || spec.FromCanvasID == "" || spec.ToCanvasID == "" {
		return nil, fmt.Errorf("%w: move: item and canvas ids are required", ErrInvalidCommand)
	}
	if spec.FromSize != nil {
		s := *spec.FromSize
		spec.FromSize = &s
	}
	if spec.ToSize != nil {
		s := *spec.ToSize
		spec.ToSize = &s
	}
	return &MoveItem{store: store, spec: spec}, nil
}

// CrossCanvas reports whether the move changed canvases.
func (c *MoveItem) CrossCanvas() bool { return c.spec.FromCanvasID != c.spec.ToCanvasID }

// Spec returns the recorded move.
func (c *MoveItem) Spec() MoveSpec { return c.spec }

func (c *MoveItem) Undo() {
	s := c.spec
	pos, z := s.From, s.FromZIndex
	c.store.PlaceItem(s.ItemID, s.ToCanvasID, s.FromCanvasID, s.FromIndex, state.ItemUpdate{
		Position: &pos,
		Size:     s.FromSize,
		ZIndex:   &z,
	})
}

func (c *MoveItem) Redo() {
	s := c.spec
	pos, z := s.To, s.ToZIndex
	u := state.ItemUpdate{Position: &pos, Size: s.ToSize, ZIndex: &z}
	if !c.CrossCanvas() {
		c.store.UpdateItem(s.ToCanvasID, s.ItemID, u)
		return
	}
	c.store.PlaceItem(s.ItemID, s.FromCanvasID, s.ToCanvasID, -1, u)
}

func (c *MoveItem) Description() string {
	if c.CrossCanvas() {
		return fmt.Sprintf("move %s to %s", c.spec.ItemID, c.spec.ToCanvasID)
	}
	if c.spec.ToSize != nil && c.spec.To == c.spec.From {
		return fmt.Sprintf("resize %s", c.spec.ItemID)
	}
	return fmt.Sprintf("move %s", c.spec.ItemID)
}

// UpdateItem undoes a partial update by re-applying the full old item.
type UpdateItem struct {
	store    *state.Manager
	canvasID string
	itemID   string
	old      models.GridItem
	update   state.ItemUpdate
}

// NewUpdateItem takes the item as it was before the update and the update
// that was applied.
func NewUpdateItem(store *state.Manager, old models.GridItem, update state.ItemUpdate) (*UpdateItem, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	if old.ID == "" || old.CanvasID == "" {
		return nil, fmt.Errorf("%w: update: old snapshot needs id and canvas id", ErrInvalidCommand)
	}
	if update.Config != nil {
		update.Config = models.CloneConfig(update.Config)
	}
	return &UpdateItem{
		store:    store,
		canvasID: old.CanvasID,
		itemID:   old.ID,
		old:      models.CloneItem(old),
		update:   update,
	}, nil
}

func (c *UpdateItem) Undo() {
	c.store.UpdateItem(c.canvasID, c.itemID, state.FullUpdate(c.old))
}

func (c *UpdateItem) Redo() {
	c.store.UpdateItem(c.canvasID, c.itemID, c.update)
}

func (c *UpdateItem) Description() string {
	return fmt.Sprintf("update %s", c.itemID)
}

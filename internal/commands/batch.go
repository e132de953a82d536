package commands

import (
	"fmt"

	"github.com/grid-builder/backend/internal/models"
	"github.com/grid-builder/backend/internal/state"
)

func captureItems(store *state.Manager, itemIDs []string) ([]models.GridItem, error) {
	items := make([]models.GridItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		it, _, ok := store.GetItem(id)
		if !ok {
			return nil, fmt.Errorf("%w: item %q not found", ErrInvalidCommand, id)
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrInvalidCommand)
	}
	return items, nil
}

func itemIDs(items []models.GridItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// BatchAdd is one history entry for many added items.
type BatchAdd struct {
	store *state.Manager
	items []models.GridItem
}

// NewBatchAdd captures the items after they were added.
func NewBatchAdd(store *state.Manager, ids []string) (*BatchAdd, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	items, err := captureItems(store, ids)
	if err != nil {
		return nil, fmt.Errorf("batch add: %w", err)
	}
	return &BatchAdd{store: store, items: items}, nil
}

func (c *BatchAdd) Undo() { c.store.DeleteItemsBatch(itemIDs(c.items)) }
func (c *BatchAdd) Redo() { c.store.RestoreItemsBatch(c.items) }

func (c *BatchAdd) Description() string {
	return fmt.Sprintf("add %d items", len(c.items))
}

// BatchDelete is one history entry for many deleted items.
type BatchDelete struct {
	store *state.Manager
	items []models.GridItem
}

// NewBatchDelete must be called before the items are removed.
func NewBatchDelete(store *state.Manager, ids []string) (*BatchDelete, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	items, err := captureItems(store, ids)
	if err != nil {
		return nil, fmt.Errorf("batch delete: %w", err)
	}
	return &BatchDelete{store: store, items: items}, nil
}

func (c *BatchDelete) Undo() { c.store.RestoreItemsBatch(c.items) }
func (c *BatchDelete) Redo() { c.store.DeleteItemsBatch(itemIDs(c.items)) }

func (c *BatchDelete) Description() string {
	return fmt.Sprintf("delete %d items", len(c.items))
}

// ItemChange pairs an item before and after a config edit.
type ItemChange struct {
	Old models.GridItem
	New models.GridItem
}

// BatchUpdateConfig swaps whole item snapshots in one commit.
type BatchUpdateConfig struct {
	store *state.Manager
	olds  []models.GridItem
	news  []models.GridItem
}

// NewBatchUpdateConfig takes the per-item before/after pairs.
func NewBatchUpdateConfig(store *state.Manager, changes []ItemChange) (*BatchUpdateConfig, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: batch update: empty batch", ErrInvalidCommand)
	}
	c := &BatchUpdateConfig{store: store}
	for _, ch := range changes {
		if ch.Old.ID == "" || ch.Old.ID != ch.New.ID {
			return nil, fmt.Errorf("%w: batch update: mismatched pair %q/%q", ErrInvalidCommand, ch.Old.ID, ch.New.ID)
		}
		c.olds = append(c.olds, models.CloneItem(ch.Old))
		c.news = append(c.news, models.CloneItem(ch.New))
	}
	return c, nil
}

func (c *BatchUpdateConfig) Undo() { c.store.ReplaceItemsBatch(c.olds) }
func (c *BatchUpdateConfig) Redo() { c.store.ReplaceItemsBatch(c.news) }

func (c *BatchUpdateConfig) Description() string {
	return fmt.Sprintf("update %d configs", len(c.olds))
}

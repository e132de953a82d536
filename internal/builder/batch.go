package builder

import (
	"context"

	"github.com/grid-builder/backend/internal/commands"
	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/models"
	"github.com/grid-builder/backend/internal/state"
)

// ComponentSpec describes one component of AddComponentsBatch.
type ComponentSpec struct {
	CanvasID  string            `json:"canvasId"`
	Type      string            `json:"type"`
	Placement *PlacementRequest `json:"placement,omitempty"`
	Config    map[string]any    `json:"config,omitempty"`
}

// ConfigUpdate is one entry of UpdateConfigsBatch.
type ConfigUpdate struct {
	ItemID string         `json:"itemId"`
	Config map[string]any `json:"config"`
}

// AddComponentsBatch adds many components as one commit and one history
// entry. Specs that cannot be placed are skipped; the ids of the created
// items are returned in input order.
func (b *Builder) AddComponentsBatch(specs []ComponentSpec) []string {
	b.lock()
	defer b.unlock()

	reserved := make(map[string][]models.Layout)
	items := make([]state.ItemSpec, 0, len(specs))
	for _, spec := range specs {
		if !b.store.HasCanvas(spec.CanvasID) {
			b.logger.Warnf("batch add: canvas %s not found", spec.CanvasID)
			continue
		}
		layout, def, ok := b.resolveLayout(spec.CanvasID, spec.Type, spec.Placement, reserved[spec.CanvasID])
		if !ok {
			continue
		}
		reserved[spec.CanvasID] = append(reserved[spec.CanvasID], layout)
		cfg := models.CloneConfig(spec.Config)
		if cfg == nil {
			cfg = map[string]any{}
		}
		l := layout
		items = append(items, state.ItemSpec{
			CanvasID: spec.CanvasID,
			Type:     spec.Type,
			Name:     def.Name,
			Layout:   &l,
			Config:   cfg,
		})
	}
	if len(items) == 0 {
		return nil
	}

	ids := b.store.AddItemsBatch(items)
	if len(ids) == 0 {
		return nil
	}
	if cmd, err := commands.NewBatchAdd(b.store, ids); err == nil {
		b.push(cmd)
	} else {
		b.logger.Errorf("batch add: %v", err)
	}
	b.queue(events.ComponentsBatchAdded, events.BatchPayload{ItemIDs: ids})
	return ids
}

// DeleteComponentsBatch deletes many items as one history entry. The
// before-delete hook runs once per item; any refusal cancels the whole batch.
func (b *Builder) DeleteComponentsBatch(ctx context.Context, itemIDs []string) bool {
	var targets []DeleteContext
	for _, id := range itemIDs {
		it, canvasID, ok := b.store.GetItem(id)
		if !ok {
			b.logger.Warnf("batch delete: item %s not found", id)
			continue
		}
		targets = append(targets, DeleteContext{ItemID: id, CanvasID: canvasID, Item: it})
	}
	if len(targets) == 0 {
		return false
	}
	for _, dc := range targets {
		if !b.confirmDelete(ctx, dc) {
			return false
		}
	}

	b.lock()
	defer b.unlock()

	ids := make([]string, 0, len(targets))
	for _, dc := range targets {
		if _, _, ok := b.store.GetItem(dc.ItemID); ok {
			ids = append(ids, dc.ItemID)
		}
	}
	cmd, err := commands.NewBatchDelete(b.store, ids)
	if err != nil {
		b.logger.Warnf("batch delete: %v", err)
		return false
	}
	if b.store.DeleteItemsBatch(ids) == 0 {
		return false
	}
	b.push(cmd)
	b.queue(events.ComponentsBatchDeleted, events.BatchPayload{ItemIDs: ids})
	return true
}

// UpdateConfigsBatch merges several partial configs as one commit and one
// history entry. Returns the number of items updated.
func (b *Builder) UpdateConfigsBatch(updates []ConfigUpdate) int {
	b.lock()
	defer b.unlock()

	// Repeated ids merge into one running item, in input order.
	var order []string
	olds := make(map[string]models.GridItem)
	nexts := make(map[string]models.GridItem)
	for _, u := range updates {
		next, seen := nexts[u.ItemID]
		if !seen {
			old, _, ok := b.store.GetItem(u.ItemID)
			if !ok {
				b.logger.Warnf("batch config: item %s not found", u.ItemID)
				continue
			}
			olds[u.ItemID] = old
			next = models.CloneItem(old)
			order = append(order, u.ItemID)
		}
		next.Config = mergeConfig(next.Config, u.Config)
		nexts[u.ItemID] = next
	}
	if len(order) == 0 {
		return 0
	}

	changes := make([]commands.ItemChange, 0, len(order))
	news := make([]models.GridItem, 0, len(order))
	payload := make([]events.ConfigPayload, 0, len(order))
	for _, id := range order {
		next := nexts[id]
		changes = append(changes, commands.ItemChange{Old: olds[id], New: next})
		news = append(news, next)
		payload = append(payload, events.ConfigPayload{ItemID: next.ID, CanvasID: next.CanvasID, Config: next.Config})
	}

	n := b.store.ReplaceItemsBatch(news)
	if cmd, err := commands.NewBatchUpdateConfig(b.store, changes); err == nil {
		b.push(cmd)
	} else {
		b.logger.Errorf("batch config: %v", err)
	}
	b.queue(events.ConfigsBatchChanged, payload)
	return n
}

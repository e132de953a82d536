package builder

import (
	"sort"

	"github.com/grid-builder/backend/internal/commands"
	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/models"
	"github.com/grid-builder/backend/internal/state"
)

// ZOrderOp names a layer operation.
type ZOrderOp string

const (
	BringToFront ZOrderOp = "front"
	SendToBack   ZOrderOp = "back"
	MoveForward  ZOrderOp = "forward"
	MoveBackward ZOrderOp = "backward"
)

// Valid reports whether op is known.
func (op ZOrderOp) Valid() bool {
	switch op {
	case BringToFront, SendToBack, MoveForward, MoveBackward:
		return true
	}
	return false
}

// ChangeZOrder applies a layer operation to one item. It returns false when
// the item is already at the requested extreme.
func (b *Builder) ChangeZOrder(itemID string, op ZOrderOp) bool {
	b.lock()
	defer b.unlock()

	_, canvasID, ok := b.store.GetItem(itemID)
	if !ok {
		b.logger.Warnf("z-order: item %s not found", itemID)
		return false
	}
	before := b.store.GetItems(canvasID)

	var primary *models.ZIndexChange
	switch op {
	case BringToFront:
		primary = b.store.BringItemToFront(canvasID, itemID)
	case SendToBack:
		primary = b.store.SendItemToBack(canvasID, itemID)
	case MoveForward:
		primary = b.store.MoveItemForward(canvasID, itemID)
	case MoveBackward:
		primary = b.store.MoveItemBackward(canvasID, itemID)
	default:
		b.logger.Warnf("z-order: unknown operation %q", op)
		return false
	}
	if primary == nil {
		return false
	}

	// Swaps touch a second item; the command must restore both.
	changes := zIndexDiff(canvasID, before, b.store.GetItems(canvasID))
	if cmd, err := commands.NewChangeZIndex(b.store, queueEmitter{b}, changes...); err == nil {
		b.push(cmd)
	} else {
		b.logger.Errorf("z-order: %v", err)
	}
	b.queue(events.ZIndexChanged, *primary)
	return true
}

// BringToFront is ChangeZOrder(itemID, BringToFront).
func (b *Builder) BringToFront(itemID string) bool { return b.ChangeZOrder(itemID, BringToFront) }

// SendToBack is ChangeZOrder(itemID, SendToBack).
func (b *Builder) SendToBack(itemID string) bool { return b.ChangeZOrder(itemID, SendToBack) }

// MoveForward is ChangeZOrder(itemID, MoveForward).
func (b *Builder) MoveForward(itemID string) bool { return b.ChangeZOrder(itemID, MoveForward) }

// MoveBackward is ChangeZOrder(itemID, MoveBackward).
func (b *Builder) MoveBackward(itemID string) bool { return b.ChangeZOrder(itemID, MoveBackward) }

// ReorderLayers restacks the listed items of a canvas, topmost first, reusing
// the z-index values they already hold. Unlisted items keep their z-index.
func (b *Builder) ReorderLayers(canvasID string, topFirst []string) bool {
	b.lock()
	defer b.unlock()

	before := b.store.GetItems(canvasID)
	if before == nil {
		b.logger.Warnf("reorder: canvas %s not found", canvasID)
		return false
	}
	zByID := make(map[string]int, len(before))
	for _, it := range before {
		zByID[it.ID] = it.ZIndex
	}

	seen := make(map[string]bool, len(topFirst))
	var ids []string
	var values []int
	for _, id := range topFirst {
		z, ok := zByID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		values = append(values, z)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	assignments := make([]state.ZIndexAssignment, len(ids))
	for i, id := range ids {
		assignments[i] = state.ZIndexAssignment{CanvasID: canvasID, ItemID: id, ZIndex: values[i]}
	}
	if b.store.SetZIndexes(assignments) == 0 {
		return false
	}

	changes := zIndexDiff(canvasID, before, b.store.GetItems(canvasID))
	if cmd, err := commands.NewChangeZIndex(b.store, queueEmitter{b}, changes...); err == nil {
		b.push(cmd)
	} else {
		b.logger.Errorf("reorder: %v", err)
	}
	b.queue(events.ZIndexBatchChanged, changes)
	return true
}

func zIndexDiff(canvasID string, before, after []models.GridItem) []models.ZIndexChange {
	old := make(map[string]int, len(before))
	for _, it := range before {
		old[it.ID] = it.ZIndex
	}
	var changes []models.ZIndexChange
	for _, it := range after {
		if z, ok := old[it.ID]; ok && z != it.ZIndex {
			changes = append(changes, models.ZIndexChange{ItemID: it.ID, CanvasID: canvasID, OldZIndex: z, NewZIndex: it.ZIndex})
		}
	}
	return changes
}

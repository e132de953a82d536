package builder

import (
	"context"

	"github.com/grid-builder/backend/internal/commands"
	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/geometry"
	"github.com/grid-builder/backend/internal/models"
	"github.com/grid-builder/backend/internal/state"
)

// PlacementRequest is a drop target in grid units. Zero Width or Height
// means the component's default.
type PlacementRequest struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// resolveLayout runs the drag/drop pipeline when p is set (which may reject)
// and the click-to-add free-space search otherwise (which never rejects).
// reserved holds rectangles claimed earlier in the same batch.
func (b *Builder) resolveLayout(canvasID, typ string, p *PlacementRequest, reserved []models.Layout) (models.Layout, models.ComponentDefinition, bool) {
	def := b.registry.Get(typ)

	if p != nil {
		requested := def
		if p.Width > 0 {
			requested.DefaultSize.Width = p.Width
		}
		if p.Height > 0 {
			requested.DefaultSize.Height = p.Height
		}
		placement := geometry.ApplyBoundaryConstraints(requested, p.X, p.Y, models.CanvasGridWidth)
		if placement == nil {
			b.logger.Warnf("component %s does not fit canvas %s", typ, canvasID)
			return models.Layout{}, def, false
		}
		return placement.Layout(), def, true
	}

	size := geometry.ConstrainSizeToCanvas(def, models.CanvasGridWidth)
	// A min width wider than the canvas pushes the size back out; the canvas wins.
	if size.Width > models.CanvasGridWidth {
		b.logger.Warnf("component %s min width exceeds canvas %s, clamping", typ, canvasID)
		size.Width = models.CanvasGridWidth
	}
	occupied := append(geometry.DesktopLayouts(b.store.GetItems(canvasID)), reserved...)
	pos := geometry.FindFreeSpace(occupied, size.Width, size.Height, models.CanvasGridWidth)
	return models.Layout{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}, def, true
}

// AddComponent creates a component and returns its id. With a placement the
// component is clamped into the canvas or rejected; without one it goes to
// the first free spot.
func (b *Builder) AddComponent(canvasID, typ string, placement *PlacementRequest, config map[string]any) (string, bool) {
	b.lock()
	defer b.unlock()

	if !b.store.HasCanvas(canvasID) {
		b.logger.Warnf("add component: canvas %s not found", canvasID)
		return "", false
	}
	layout, def, ok := b.resolveLayout(canvasID, typ, placement, nil)
	if !ok {
		return "", false
	}

	z, _ := b.store.NextZIndex(canvasID)
	cfg := models.CloneConfig(config)
	if cfg == nil {
		cfg = map[string]any{}
	}
	item := models.GridItem{
		ID:       b.store.GenerateItemID(),
		CanvasID: canvasID,
		Type:     typ,
		Name:     def.Name,
		Layouts:  models.Layouts{Desktop: layout},
		ZIndex:   z,
		Config:   cfg,
	}
	if !b.store.AddItemToCanvas(canvasID, item) {
		return "", false
	}

	cmd, err := commands.NewAddItem(b.store, item.ID)
	if err != nil {
		b.logger.Errorf("add component: %v", err)
		return item.ID, true
	}
	b.push(cmd)
	b.queue(events.ComponentAdded, events.ItemPayload{ItemID: item.ID, CanvasID: canvasID, Item: &item})
	return item.ID, true
}

// DeleteComponent removes an item after the before-delete hook approves.
func (b *Builder) DeleteComponent(ctx context.Context, itemID string) bool {
	item, canvasID, ok := b.store.GetItem(itemID)
	if !ok {
		b.logger.Warnf("delete component: item %s not found", itemID)
		return false
	}
	if !b.confirmDelete(ctx, DeleteContext{ItemID: itemID, CanvasID: canvasID, Item: item}) {
		return false
	}

	b.lock()
	defer b.unlock()

	// The item may have changed canvas or vanished while the hook ran.
	cmd, err := commands.NewDeleteItem(b.store, itemID)
	if err != nil {
		b.logger.Warnf("delete component: %v", err)
		return false
	}
	_, canvasID, _ = b.store.GetItem(itemID)
	if !b.store.RemoveItemFromCanvas(canvasID, itemID) {
		return false
	}
	b.push(cmd)
	b.queue(events.ComponentDeleted, events.ItemPayload{ItemID: itemID, CanvasID: canvasID})
	return true
}

// confirmDelete runs the hook outside the action lock. Cancellation, errors
// and panics all mean "do not delete".
func (b *Builder) confirmDelete(ctx context.Context, dc DeleteContext) (ok bool) {
	if b.beforeDelete == nil {
		return true
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("before-delete hook panicked for %s: %v", dc.ItemID, r)
			ok = false
		}
	}()

	allowed, err := b.beforeDelete(ctx, dc)
	if err != nil {
		b.logger.Errorf("before-delete hook failed for %s: %v", dc.ItemID, err)
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	return allowed
}

// mergeConfig shallow-merges partial into base. A nil value removes the key.
func mergeConfig(base, partial map[string]any) map[string]any {
	out := models.CloneConfig(base)
	if out == nil {
		out = map[string]any{}
	}
	for k, v := range models.CloneConfig(partial) {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// UpdateConfig shallow-merges partial into an item's config.
func (b *Builder) UpdateConfig(itemID string, partial map[string]any) bool {
	if partial == nil {
		partial = map[string]any{}
	}
	return b.UpdateItem(itemID, nil, partial)
}

// UpdateItemName renames an item.
func (b *Builder) UpdateItemName(itemID, name string) bool {
	return b.UpdateItem(itemID, &name, nil)
}

// UpdateItem renames an item and/or shallow-merges a partial config as one
// history entry. A nil name or nil partial leaves that field alone.
func (b *Builder) UpdateItem(itemID string, name *string, partial map[string]any) bool {
	b.lock()
	defer b.unlock()

	old, canvasID, ok := b.store.GetItem(itemID)
	if !ok {
		b.logger.Warnf("update item: %s not found", itemID)
		return false
	}
	var update state.ItemUpdate
	if name != nil && *name != old.Name {
		n := *name
		update.Name = &n
	}
	if partial != nil {
		update.Config = mergeConfig(old.Config, partial)
	}
	if update.Name == nil && update.Config == nil {
		return false
	}
	if !b.store.UpdateItem(canvasID, itemID, update) {
		return false
	}
	if cmd, err := commands.NewUpdateItem(b.store, old, update); err == nil {
		b.push(cmd)
	} else {
		b.logger.Errorf("update item: %v", err)
	}
	if update.Config != nil {
		b.queue(events.ConfigChanged, events.ConfigPayload{ItemID: itemID, CanvasID: canvasID, Config: update.Config})
	}
	return true
}

// MoveComponent commits a drag. The position is clamped into the target
// canvas; moving to another canvas reassigns the item's z-index there.
func (b *Builder) MoveComponent(itemID, targetCanvasID string, x, y int) bool {
	b.lock()
	defer b.unlock()

	item, fromCanvasID, ok := b.store.GetItem(itemID)
	if !ok {
		b.logger.Warnf("move component: item %s not found", itemID)
		return false
	}
	if targetCanvasID == "" {
		targetCanvasID = fromCanvasID
	}
	if !b.store.HasCanvas(targetCanvasID) {
		b.logger.Warnf("move component: canvas %s not found", targetCanvasID)
		return false
	}

	d := item.Layouts.Desktop
	p := geometry.ConstrainPositionToCanvas(x, y, d.Width, d.Height, models.CanvasGridWidth)
	spec := commands.MoveSpec{
		ItemID:       itemID,
		FromCanvasID: fromCanvasID,
		ToCanvasID:   targetCanvasID,
		From:         models.Position{X: d.X, Y: d.Y},
		To:           models.Position{X: p.X, Y: p.Y},
		FromIndex:    b.store.ItemIndex(fromCanvasID, itemID),
		FromZIndex:   item.ZIndex,
		ToZIndex:     item.ZIndex,
	}

	if fromCanvasID == targetCanvasID {
		if spec.From == spec.To {
			b.queueFlush(events.ComponentDragged)
			return false
		}
		if !b.store.UpdateItem(fromCanvasID, itemID, state.ItemUpdate{Position: &spec.To}) {
			return false
		}
	} else {
		layout := p.Layout()
		newZ, moved := b.store.MoveItemToCanvas(fromCanvasID, targetCanvasID, itemID, &layout)
		if !moved {
			return false
		}
		spec.ToZIndex = newZ
	}

	if cmd, err := commands.NewMoveItem(b.store, spec); err == nil {
		b.push(cmd)
	} else {
		b.logger.Errorf("move component: %v", err)
	}
	b.queueFlush(events.ComponentDragged)
	b.queueNow(events.ComponentMoved, events.MovePayload{
		ItemID:       itemID,
		FromCanvasID: fromCanvasID,
		ToCanvasID:   targetCanvasID,
		Position:     spec.To,
	})
	return true
}

// ResizeComponent commits a resize from the bottom-right handle.
func (b *Builder) ResizeComponent(itemID string, width, height int) bool {
	item, ok := b.GetItem(itemID)
	if !ok {
		b.logger.Warnf("resize component: item %s not found", itemID)
		return false
	}
	d := item.Layouts.Desktop
	return b.SetComponentBounds(itemID, models.Layout{X: d.X, Y: d.Y, Width: width, Height: height})
}

// SetComponentBounds commits a combined move and resize within the item's
// canvas, e.g. from a top-left resize handle.
func (b *Builder) SetComponentBounds(itemID string, bounds models.Layout) bool {
	b.lock()
	defer b.unlock()

	item, canvasID, ok := b.store.GetItem(itemID)
	if !ok {
		b.logger.Warnf("resize component: item %s not found", itemID)
		return false
	}
	size := b.clampSize(item.Type, bounds.Width, bounds.Height)
	p := geometry.ConstrainPositionToCanvas(bounds.X, bounds.Y, size.Width, size.Height, models.CanvasGridWidth)

	d := item.Layouts.Desktop
	fromSize := models.Size{Width: d.Width, Height: d.Height}
	toSize := models.Size{Width: p.Width, Height: p.Height}
	spec := commands.MoveSpec{
		ItemID:       itemID,
		FromCanvasID: canvasID,
		ToCanvasID:   canvasID,
		From:         models.Position{X: d.X, Y: d.Y},
		To:           models.Position{X: p.X, Y: p.Y},
		FromIndex:    b.store.ItemIndex(canvasID, itemID),
		FromZIndex:   item.ZIndex,
		ToZIndex:     item.ZIndex,
		FromSize:     &fromSize,
		ToSize:       &toSize,
	}
	if spec.From == spec.To && fromSize == toSize {
		b.queueFlush(events.ComponentResized)
		return false
	}
	if !b.store.UpdateItem(canvasID, itemID, state.ItemUpdate{Position: &spec.To, Size: &toSize}) {
		return false
	}
	if cmd, err := commands.NewMoveItem(b.store, spec); err == nil {
		b.push(cmd)
	} else {
		b.logger.Errorf("resize component: %v", err)
	}
	b.queueNow(events.ComponentResized, events.ResizePayload{ItemID: itemID, CanvasID: canvasID, Size: toSize})
	return true
}

// clampSize keeps a size within the component's min/max, the canvas width
// and the maximum item height.
func (b *Builder) clampSize(typ string, width, height int) models.Size {
	def := b.registry.Get(typ)
	def.DefaultSize = models.Size{Width: width, Height: height}
	if def.DefaultSize.Width < 1 {
		def.DefaultSize.Width = 1
	}
	if def.DefaultSize.Height < 1 {
		def.DefaultSize.Height = 1
	}
	res := geometry.ConstrainSizeToCanvas(def, models.CanvasGridWidth)
	if res.Width > models.CanvasGridWidth {
		res.Width = models.CanvasGridWidth
	}
	if res.Height > models.MaxItemHeight {
		res.Height = models.MaxItemHeight
	}
	return models.Size{Width: res.Width, Height: res.Height}
}

// PreviewDrag publishes an intermediate drag position. It never mutates
// state and is debounced.
func (b *Builder) PreviewDrag(itemID, canvasID string, x, y int) {
	b.events.Emit(events.ComponentDragged, events.MovePayload{
		ItemID:     itemID,
		ToCanvasID: canvasID,
		Position:   models.Position{X: x, Y: y},
	})
}

// PreviewResize publishes an intermediate size. It never mutates state.
func (b *Builder) PreviewResize(itemID string, width, height int) {
	canvasID := ""
	if _, cid, ok := b.store.GetItem(itemID); ok {
		canvasID = cid
	}
	b.events.Emit(events.ComponentResized, events.ResizePayload{
		ItemID:   itemID,
		CanvasID: canvasID,
		Size:     models.Size{Width: width, Height: height},
	})
}

// EndGesture delivers any pending previews right away.
func (b *Builder) EndGesture() {
	b.events.FlushAll()
}

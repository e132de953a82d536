package state

import (
	"github.com/grid-builder/backend/internal/models"
)

// ItemUpdate is a partial update. Nil fields are left unchanged; a non-nil
// Config replaces the whole map. Position and Size are applied after Desktop
// and only touch their own fields of the desktop layout.
type ItemUpdate struct {
	Name     *string
	Type     *string
	Desktop  *models.Layout
	Position *models.Position
	Size     *models.Size
	Mobile   *models.MobileLayout
	ZIndex   *int
	Config   map[string]any
}

// Empty reports whether the update changes nothing.
func (u ItemUpdate) Empty() bool {
	return u.Name == nil && u.Type == nil && u.Desktop == nil && u.Position == nil &&
		u.Size == nil && u.Mobile == nil && u.ZIndex == nil && u.Config == nil
}

// FullUpdate builds an update that overwrites every mutable field with it.
func FullUpdate(it models.GridItem) ItemUpdate {
	name, typ, desktop, z := it.Name, it.Type, it.Layouts.Desktop, it.ZIndex
	mobile := models.CloneItem(it).Layouts.Mobile
	cfg := models.CloneConfig(it.Config)
	if cfg == nil {
		cfg = map[string]any{}
	}
	return ItemUpdate{Name: &name, Type: &typ, Desktop: &desktop, Mobile: &mobile, ZIndex: &z, Config: cfg}
}

func (u ItemUpdate) apply(it *models.GridItem) {
	if u.Name != nil {
		it.Name = *u.Name
	}
	if u.Type != nil {
		it.Type = *u.Type
	}
	if u.Desktop != nil {
		it.Layouts.Desktop = *u.Desktop
	}
	if u.Position != nil {
		it.Layouts.Desktop.X = u.Position.X
		it.Layouts.Desktop.Y = u.Position.Y
	}
	if u.Size != nil {
		it.Layouts.Desktop.Width = u.Size.Width
		it.Layouts.Desktop.Height = u.Size.Height
	}
	if u.Mobile != nil {
		it.Layouts.Mobile = models.CloneItem(models.GridItem{Layouts: models.Layouts{Mobile: *u.Mobile}}).Layouts.Mobile
	}
	if u.ZIndex != nil {
		it.ZIndex = *u.ZIndex
	}
	if u.Config != nil {
		it.Config = models.CloneConfig(u.Config)
	}
}

// AddItemToCanvas appends a copy of item to the end of a canvas. Missing
// canvases and ids that already exist anywhere are ignored.
func (m *Manager) AddItemToCanvas(canvasID string, item models.GridItem) bool {
	return m.InsertItemAt(canvasID, item, -1)
}

// InsertItemAt splices a copy of item into a canvas at index. Out-of-range
// indices (including -1) append.
func (m *Manager) InsertItemAt(canvasID string, item models.GridItem, index int) bool {
	return m.commit(func(s *models.GridState) bool {
		if _, ok := s.Canvases[canvasID]; !ok {
			m.logger.Warnf("add: canvas %s not found", canvasID)
			return false
		}
		if _, _, exists := s.FindItem(item.ID); exists {
			m.logger.Warnf("add: item %s already exists", item.ID)
			return false
		}
		it := models.CloneItem(item)
		it.CanvasID = canvasID
		m.warnInvalid("add", it)
		insertItem(s, canvasID, it, index)
		return true
	})
}

// RemoveItemFromCanvas deletes an item and clears the selection if it
// pointed at that item.
func (m *Manager) RemoveItemFromCanvas(canvasID, itemID string) bool {
	return m.commit(func(s *models.GridState) bool {
		if _, _, ok := removeItem(s, canvasID, itemID); !ok {
			m.logger.Warnf("remove: item %s not found in canvas %s", itemID, canvasID)
			return false
		}
		clearSelectionIf(s, itemID)
		return true
	})
}

// UpdateItem merges u into an item in place, keeping its array index.
func (m *Manager) UpdateItem(canvasID, itemID string, u ItemUpdate) bool {
	return m.commit(func(s *models.GridState) bool {
		return m.updateLocked(s, canvasID, itemID, u)
	})
}

func (m *Manager) updateLocked(s *models.GridState, canvasID, itemID string, u ItemUpdate) bool {
	c, ok := s.Canvases[canvasID]
	if !ok {
		m.logger.Warnf("update: canvas %s not found", canvasID)
		return false
	}
	idx := c.IndexOf(itemID)
	if idx < 0 {
		m.logger.Warnf("update: item %s not found in canvas %s", itemID, canvasID)
		return false
	}
	u.apply(&c.Items[idx])
	m.warnInvalid("update", c.Items[idx])
	s.Canvases[canvasID] = c
	return true
}

// MoveItemToCanvas moves an item to the end of another canvas, reassigning
// its canvas id and taking a fresh z-index from the target's counter. A
// non-nil layout replaces the desktop rectangle in the same commit.
// Returns the new z-index.
func (m *Manager) MoveItemToCanvas(fromCanvasID, toCanvasID, itemID string, layout *models.Layout) (int, bool) {
	newZ := 0
	ok := m.commit(func(s *models.GridState) bool {
		if fromCanvasID == toCanvasID {
			return false
		}
		to, ok := s.Canvases[toCanvasID]
		if !ok {
			m.logger.Warnf("move: target canvas %s not found", toCanvasID)
			return false
		}
		if from, ok := s.Canvases[fromCanvasID]; !ok || from.IndexOf(itemID) < 0 {
			m.logger.Warnf("move: item %s not found in canvas %s", itemID, fromCanvasID)
			return false
		}

		newZ = to.ZIndexCounter
		to.ZIndexCounter++
		s.Canvases[toCanvasID] = to

		it, _, _ := removeItem(s, fromCanvasID, itemID)
		it.CanvasID = toCanvasID
		it.ZIndex = newZ
		if layout != nil {
			it.Layouts.Desktop = *layout
		}
		insertItem(s, toCanvasID, it, -1)
		if s.SelectedItemID == itemID {
			s.SelectedCanvasID = toCanvasID
		}
		return true
	})
	return newZ, ok
}

// PlaceItem finds itemID (searching preferCanvasID first, then every canvas),
// strips it from wherever it is, applies u and splices it into toCanvasID at
// index. It is the idempotent primitive behind cross-canvas undo and redo.
func (m *Manager) PlaceItem(itemID, preferCanvasID, toCanvasID string, index int, u ItemUpdate) bool {
	return m.commit(func(s *models.GridState) bool {
		if _, ok := s.Canvases[toCanvasID]; !ok {
			m.logger.Warnf("place: canvas %s not found", toCanvasID)
			return false
		}

		foundIn := ""
		if c, ok := s.Canvases[preferCanvasID]; ok && c.IndexOf(itemID) >= 0 {
			foundIn = preferCanvasID
		} else if _, cid, ok := s.FindItem(itemID); ok {
			foundIn = cid
		}
		if foundIn == "" {
			m.logger.Warnf("place: item %s not found", itemID)
			return false
		}

		it, _, _ := removeItem(s, foundIn, itemID)
		it.CanvasID = toCanvasID
		u.apply(&it)
		insertItem(s, toCanvasID, it, index)
		if s.SelectedItemID == itemID {
			s.SelectedCanvasID = toCanvasID
		}
		return true
	})
}

func removeItem(s *models.GridState, canvasID, itemID string) (models.GridItem, int, bool) {
	c, ok := s.Canvases[canvasID]
	if !ok {
		return models.GridItem{}, -1, false
	}
	idx := c.IndexOf(itemID)
	if idx < 0 {
		return models.GridItem{}, -1, false
	}
	it := c.Items[idx]
	items := make([]models.GridItem, 0, len(c.Items)-1)
	items = append(items, c.Items[:idx]...)
	items = append(items, c.Items[idx+1:]...)
	c.Items = items
	s.Canvases[canvasID] = c
	return it, idx, true
}

func insertItem(s *models.GridState, canvasID string, it models.GridItem, index int) {
	c := s.Canvases[canvasID]
	if index < 0 || index > len(c.Items) {
		index = len(c.Items)
	}
	items := make([]models.GridItem, 0, len(c.Items)+1)
	items = append(items, c.Items[:index]...)
	items = append(items, it)
	items = append(items, c.Items[index:]...)
	c.Items = items
	s.Canvases[canvasID] = c
}

func clearSelectionIf(s *models.GridState, itemID string) {
	if s.SelectedItemID == itemID {
		s.SelectedItemID = ""
		s.SelectedCanvasID = ""
	}
}

package state

import (
	"github.com/grid-builder/backend/internal/models"
)

// DefaultItemLayout is used by AddItemsBatch when a spec carries no layout.
var DefaultItemLayout = models.Layout{X: 0, Y: 0, Width: 10, Height: 6}

// ItemSpec describes one item for AddItemsBatch.
type ItemSpec struct {
	CanvasID string
	Type     string
	Name     string
	Layout   *models.Layout
	Mobile   *models.MobileLayout
	Config   map[string]any
}

// BatchUpdate targets one item for UpdateItemsBatch.
type BatchUpdate struct {
	CanvasID string
	ItemID   string
	Update   ItemUpdate
}

// AddItemsBatch creates every spec in one commit and returns the new ids in
// input order. Specs whose canvas is missing are skipped.
func (m *Manager) AddItemsBatch(specs []ItemSpec) []string {
	ids := make([]string, 0, len(specs))
	m.commit(func(s *models.GridState) bool {
		for _, spec := range specs {
			c, ok := s.Canvases[spec.CanvasID]
			if !ok {
				m.logger.Warnf("batch add: canvas %s not found", spec.CanvasID)
				continue
			}
			layout := DefaultItemLayout
			if spec.Layout != nil {
				layout = *spec.Layout
			}
			name := spec.Name
			if name == "" {
				name = spec.Type
			}
			it := models.GridItem{
				ID:       m.generateIDLocked(),
				CanvasID: spec.CanvasID,
				Type:     spec.Type,
				Name:     name,
				Layouts:  models.Layouts{Desktop: layout},
				ZIndex:   c.ZIndexCounter,
				Config:   models.CloneConfig(spec.Config),
			}
			if spec.Mobile != nil {
				it.Layouts.Mobile = *spec.Mobile
				it = models.CloneItem(it)
			}
			if it.Config == nil {
				it.Config = map[string]any{}
			}
			c.ZIndexCounter++
			s.Canvases[spec.CanvasID] = c
			m.warnInvalid("batch add", it)
			insertItem(s, spec.CanvasID, it, -1)
			ids = append(ids, it.ID)
		}
		return len(ids) > 0
	})
	return ids
}

// DeleteItemsBatch removes items by id from whichever canvas holds them.
// Unknown ids are skipped. Returns the number removed.
func (m *Manager) DeleteItemsBatch(itemIDs []string) int {
	n := 0
	m.commit(func(s *models.GridState) bool {
		for _, id := range itemIDs {
			_, canvasID, ok := s.FindItem(id)
			if !ok {
				m.logger.Warnf("batch delete: item %s not found", id)
				continue
			}
			removeItem(s, canvasID, id)
			clearSelectionIf(s, id)
			n++
		}
		return n > 0
	})
	return n
}

// UpdateItemsBatch applies several partial updates in one commit.
func (m *Manager) UpdateItemsBatch(updates []BatchUpdate) int {
	n := 0
	m.commit(func(s *models.GridState) bool {
		for _, u := range updates {
			if m.updateLocked(s, u.CanvasID, u.ItemID, u.Update) {
				n++
			}
		}
		return n > 0
	})
	return n
}

// RestoreItemsBatch re-inserts full item snapshots into their recorded
// canvases. Items whose id already exists are skipped so repeated restores
// never duplicate.
func (m *Manager) RestoreItemsBatch(items []models.GridItem) int {
	n := 0
	m.commit(func(s *models.GridState) bool {
		for _, it := range items {
			if _, ok := s.Canvases[it.CanvasID]; !ok {
				m.logger.Warnf("batch restore: canvas %s not found", it.CanvasID)
				continue
			}
			if _, _, exists := s.FindItem(it.ID); exists {
				continue
			}
			insertItem(s, it.CanvasID, models.CloneItem(it), -1)
			n++
		}
		return n > 0
	})
	return n
}

// ReplaceItemsBatch overwrites existing items with full snapshots, keeping
// each item's array position. Missing items are skipped.
func (m *Manager) ReplaceItemsBatch(items []models.GridItem) int {
	n := 0
	m.commit(func(s *models.GridState) bool {
		for _, it := range items {
			c, idx, ok := lookup(s, it.CanvasID, it.ID)
			if !ok {
				m.logger.Warnf("batch replace: item %s not found in canvas %s", it.ID, it.CanvasID)
				continue
			}
			c.Items[idx] = models.CloneItem(it)
			s.Canvases[it.CanvasID] = c
			n++
		}
		return n > 0
	})
	return n
}

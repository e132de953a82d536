package state

import (
	"sort"

	"github.com/grid-builder/backend/internal/models"
)

// AddCanvas creates an empty canvas. Existing ids are left alone.
func (m *Manager) AddCanvas(canvasID string) bool {
	return m.commit(func(s *models.GridState) bool {
		if canvasID == "" {
			return false
		}
		if _, exists := s.Canvases[canvasID]; exists {
			m.logger.Warnf("canvas %s already exists", canvasID)
			return false
		}
		s.Canvases[canvasID] = models.NewCanvas()
		return true
	})
}

// RemoveCanvas deletes a canvas and its items, clearing selection and focus
// that referenced it.
func (m *Manager) RemoveCanvas(canvasID string) bool {
	return m.commit(func(s *models.GridState) bool {
		if _, ok := s.Canvases[canvasID]; !ok {
			m.logger.Warnf("remove canvas: %s not found", canvasID)
			return false
		}
		delete(s.Canvases, canvasID)
		if s.SelectedCanvasID == canvasID {
			s.SelectedItemID = ""
			s.SelectedCanvasID = ""
		}
		if s.ActiveCanvasID == canvasID {
			s.ActiveCanvasID = ""
		}
		return true
	})
}

// RestoreCanvas puts back a full canvas snapshot, overwriting any canvas of
// the same id.
func (m *Manager) RestoreCanvas(canvasID string, c models.Canvas) bool {
	return m.commit(func(s *models.GridState) bool {
		if canvasID == "" {
			return false
		}
		restored := models.CloneCanvas(c)
		for i := range restored.Items {
			restored.Items[i].CanvasID = canvasID
		}
		s.Canvases[canvasID] = restored
		return true
	})
}

// GetCanvas returns a copy of a canvas.
func (m *Manager) GetCanvas(canvasID string) (models.Canvas, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.state.Canvases[canvasID]
	if !ok {
		return models.Canvas{}, false
	}
	return models.CloneCanvas(c), true
}

// HasCanvas reports whether a canvas exists.
func (m *Manager) HasCanvas(canvasID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.state.Canvases[canvasID]
	return ok
}

// CanvasIDs returns the canvas ids in sorted order.
func (m *Manager) CanvasIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.state.Canvases))
	for id := range m.state.Canvases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

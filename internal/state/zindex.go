package state

import (
	"github.com/grid-builder/backend/internal/models"
)

// ZIndexAssignment sets one item's z-index.
type ZIndexAssignment struct {
	CanvasID string
	ItemID   string
	ZIndex   int
}

// NextZIndex consumes and returns the canvas's z-index counter.
func (m *Manager) NextZIndex(canvasID string) (int, bool) {
	z := 0
	ok := false
	m.mu.Lock()
	if c, exists := m.state.Canvases[canvasID]; exists {
		z = c.ZIndexCounter
		c.ZIndexCounter++
		m.state.Canvases[canvasID] = c
		ok = true
	}
	m.mu.Unlock()
	return z, ok
}

// SetItemZIndex writes a z-index verbatim. Returns nil when nothing changed.
func (m *Manager) SetItemZIndex(canvasID, itemID string, z int) *models.ZIndexChange {
	var change *models.ZIndexChange
	m.commit(func(s *models.GridState) bool {
		c, idx, ok := lookup(s, canvasID, itemID)
		if !ok {
			m.logger.Warnf("z-index: item %s not found in canvas %s", itemID, canvasID)
			return false
		}
		old := c.Items[idx].ZIndex
		if old == z {
			return false
		}
		c.Items[idx].ZIndex = z
		if z >= c.ZIndexCounter {
			c.ZIndexCounter = z + 1
		}
		s.Canvases[canvasID] = c
		change = &models.ZIndexChange{ItemID: itemID, CanvasID: canvasID, OldZIndex: old, NewZIndex: z}
		return true
	})
	return change
}

// SetZIndexes applies several assignments in one commit and returns how many
// items were touched.
func (m *Manager) SetZIndexes(assignments []ZIndexAssignment) int {
	n := 0
	m.commit(func(s *models.GridState) bool {
		for _, a := range assignments {
			c, idx, ok := lookup(s, a.CanvasID, a.ItemID)
			if !ok || c.Items[idx].ZIndex == a.ZIndex {
				continue
			}
			c.Items[idx].ZIndex = a.ZIndex
			if a.ZIndex >= c.ZIndexCounter {
				c.ZIndexCounter = a.ZIndex + 1
			}
			s.Canvases[a.CanvasID] = c
			n++
		}
		return n > 0
	})
	return n
}

// MoveItemForward swaps z-index with the item directly above it. Returns
// nil when the item is already on top.
func (m *Manager) MoveItemForward(canvasID, itemID string) *models.ZIndexChange {
	return m.swapAdjacent(canvasID, itemID, true)
}

// MoveItemBackward swaps z-index with the item directly below it.
func (m *Manager) MoveItemBackward(canvasID, itemID string) *models.ZIndexChange {
	return m.swapAdjacent(canvasID, itemID, false)
}

func (m *Manager) swapAdjacent(canvasID, itemID string, up bool) *models.ZIndexChange {
	var change *models.ZIndexChange
	m.commit(func(s *models.GridState) bool {
		c, idx, ok := lookup(s, canvasID, itemID)
		if !ok {
			m.logger.Warnf("z-order: item %s not found in canvas %s", itemID, canvasID)
			return false
		}
		cur := c.Items[idx].ZIndex
		other := -1
		for i, it := range c.Items {
			if i == idx {
				continue
			}
			if up && it.ZIndex > cur && (other < 0 || it.ZIndex < c.Items[other].ZIndex) {
				other = i
			}
			if !up && it.ZIndex < cur && (other < 0 || it.ZIndex > c.Items[other].ZIndex) {
				other = i
			}
		}
		if other < 0 {
			return false
		}
		newZ := c.Items[other].ZIndex
		c.Items[other].ZIndex = cur
		c.Items[idx].ZIndex = newZ
		s.Canvases[canvasID] = c
		change = &models.ZIndexChange{ItemID: itemID, CanvasID: canvasID, OldZIndex: cur, NewZIndex: newZ}
		return true
	})
	return change
}

// BringItemToFront gives the item a z-index above every other item in its
// canvas. Returns nil when it is already the unique top item.
func (m *Manager) BringItemToFront(canvasID, itemID string) *models.ZIndexChange {
	var change *models.ZIndexChange
	m.commit(func(s *models.GridState) bool {
		c, idx, ok := lookup(s, canvasID, itemID)
		if !ok {
			m.logger.Warnf("z-order: item %s not found in canvas %s", itemID, canvasID)
			return false
		}
		cur := c.Items[idx].ZIndex
		maxOther, found := extremeZ(c.Items, idx, true)
		if !found || cur > maxOther {
			return false
		}
		newZ := maxOther + 1
		if c.ZIndexCounter > newZ {
			newZ = c.ZIndexCounter
		}
		c.Items[idx].ZIndex = newZ
		c.ZIndexCounter = newZ + 1
		s.Canvases[canvasID] = c
		change = &models.ZIndexChange{ItemID: itemID, CanvasID: canvasID, OldZIndex: cur, NewZIndex: newZ}
		return true
	})
	return change
}

// SendItemToBack gives the item a z-index below every other item in its
// canvas. Z-indices may go to zero or negative.
func (m *Manager) SendItemToBack(canvasID, itemID string) *models.ZIndexChange {
	var change *models.ZIndexChange
	m.commit(func(s *models.GridState) bool {
		c, idx, ok := lookup(s, canvasID, itemID)
		if !ok {
			m.logger.Warnf("z-order: item %s not found in canvas %s", itemID, canvasID)
			return false
		}
		cur := c.Items[idx].ZIndex
		minOther, found := extremeZ(c.Items, idx, false)
		if !found || cur < minOther {
			return false
		}
		newZ := minOther - 1
		c.Items[idx].ZIndex = newZ
		s.Canvases[canvasID] = c
		change = &models.ZIndexChange{ItemID: itemID, CanvasID: canvasID, OldZIndex: cur, NewZIndex: newZ}
		return true
	})
	return change
}

func lookup(s *models.GridState, canvasID, itemID string) (models.Canvas, int, bool) {
	c, ok := s.Canvases[canvasID]
	if !ok {
		return c, -1, false
	}
	idx := c.IndexOf(itemID)
	return c, idx, idx >= 0
}

// extremeZ returns the max (or min) z-index among items other than skip.
func extremeZ(items []models.GridItem, skip int, highest bool) (int, bool) {
	found := false
	z := 0
	for i, it := range items {
		if i == skip {
			continue
		}
		if !found || (highest && it.ZIndex > z) || (!highest && it.ZIndex < z) {
			z = it.ZIndex
			found = true
		}
	}
	return z, found
}

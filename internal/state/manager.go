// Package state owns the canonical GridState of one builder instance.
//
// Every structural mutation runs under the manager's lock and ends in exactly
// one change notification, no matter how many items it touched. Invalid
// references are no-ops: UI event handlers must never crash on a stale id.
package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/grid-builder/backend/internal/logging"
	"github.com/grid-builder/backend/internal/models"
)

// Options configures a Manager.
type Options struct {
	// Initial is deep-copied and restored by Reset. Zero value means empty.
	Initial *models.GridState
	Logger  logging.Logger
}

// Manager is the store for one builder instance. There is deliberately no
// package-level default instance.
type Manager struct {
	mu          sync.RWMutex
	state       models.GridState
	initial     models.GridState
	itemCounter int
	version     uint64

	subMu     sync.Mutex
	subs      map[int]func()
	nextSubID int

	logger logging.Logger
}

// NewManager creates a store seeded with opts.Initial.
func NewManager(opts Options) *Manager {
	initial := models.NewGridState()
	if opts.Initial != nil {
		initial = models.CloneState(*opts.Initial)
		if initial.Canvases == nil {
			initial.Canvases = make(map[string]models.Canvas)
		}
		if !initial.CurrentViewport.Valid() {
			initial.CurrentViewport = models.ViewportDesktop
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard{}
	}
	return &Manager{
		state:   models.CloneState(initial),
		initial: initial,
		subs:    make(map[int]func()),
		logger:  logger,
	}
}

// Subscribe registers fn to run after every committed mutation. The returned
// func unsubscribes.
func (m *Manager) Subscribe(fn func()) func() {
	m.subMu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// Version increments once per committed mutation.
func (m *Manager) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// commit runs fn under the write lock and notifies once if fn reports a change.
func (m *Manager) commit(fn func(s *models.GridState) bool) bool {
	m.mu.Lock()
	changed := fn(&m.state)
	if changed {
		m.version++
	}
	m.mu.Unlock()

	if changed {
		m.notify()
	}
	return changed
}

func (m *Manager) notify() {
	m.subMu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Snapshot returns a deep copy of the current state.
func (m *Manager) Snapshot() models.GridState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.CloneState(m.state)
}

// GetItem returns a copy of an item and the canvas that holds it.
func (m *Manager) GetItem(itemID string) (models.GridItem, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, canvasID, ok := m.state.FindItem(itemID)
	if !ok {
		return models.GridItem{}, "", false
	}
	return models.CloneItem(it), canvasID, true
}

// GetItems returns copies of the items of a canvas in array order.
func (m *Manager) GetItems(canvasID string) []models.GridItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.state.Canvases[canvasID]
	if !ok {
		return nil
	}
	return models.CloneItems(c.Items)
}

// ItemIndex returns the array index of an item in a canvas, or -1.
func (m *Manager) ItemIndex(canvasID, itemID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.state.Canvases[canvasID]
	if !ok {
		return -1
	}
	return c.IndexOf(itemID)
}

// GenerateItemID returns a per-instance unique id from a monotonic counter.
// Ids already present (e.g. after an import) are skipped.
func (m *Manager) GenerateItemID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateIDLocked()
}

func (m *Manager) generateIDLocked() string {
	for {
		m.itemCounter++
		id := fmt.Sprintf("item-%d", m.itemCounter)
		if _, _, exists := m.state.FindItem(id); !exists {
			return id
		}
	}
}

// SelectItem selects an existing item. Unknown references are ignored.
func (m *Manager) SelectItem(canvasID, itemID string) bool {
	return m.commit(func(s *models.GridState) bool {
		c, ok := s.Canvases[canvasID]
		if !ok || c.IndexOf(itemID) < 0 {
			m.logger.Warnf("select: item %s not found in canvas %s", itemID, canvasID)
			return false
		}
		s.SelectedItemID = itemID
		s.SelectedCanvasID = canvasID
		return true
	})
}

// ClearSelection nulls both selection fields.
func (m *Manager) ClearSelection() bool {
	return m.commit(func(s *models.GridState) bool {
		if s.SelectedItemID == "" && s.SelectedCanvasID == "" {
			return false
		}
		s.SelectedItemID = ""
		s.SelectedCanvasID = ""
		return true
	})
}

// Selection returns the selected item and canvas ids.
func (m *Manager) Selection() (itemID, canvasID string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.SelectedItemID, m.state.SelectedCanvasID
}

// SetActiveCanvas focuses a canvas for click-to-add. An empty id clears it.
func (m *Manager) SetActiveCanvas(canvasID string) bool {
	return m.commit(func(s *models.GridState) bool {
		if canvasID != "" {
			if _, ok := s.Canvases[canvasID]; !ok {
				m.logger.Warnf("activate: canvas %s not found", canvasID)
				return false
			}
		}
		if s.ActiveCanvasID == canvasID {
			return false
		}
		s.ActiveCanvasID = canvasID
		return true
	})
}

// ActiveCanvas returns the focused canvas id.
func (m *Manager) ActiveCanvas() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ActiveCanvasID
}

// SetViewport switches the edited viewport.
func (m *Manager) SetViewport(v models.Viewport) bool {
	if !v.Valid() {
		m.logger.Warnf("viewport: unknown value %q", v)
		return false
	}
	return m.commit(func(s *models.GridState) bool {
		if s.CurrentViewport == v {
			return false
		}
		s.CurrentViewport = v
		return true
	})
}

// SetShowGrid toggles grid visibility.
func (m *Manager) SetShowGrid(show bool) bool {
	return m.commit(func(s *models.GridState) bool {
		if s.ShowGrid == show {
			return false
		}
		s.ShowGrid = show
		return true
	})
}

// Load replaces the whole state (used by import). Selection and focus are
// cleared; the initial snapshot used by Reset is untouched.
func (m *Manager) Load(next models.GridState) {
	next = models.CloneState(next)
	if next.Canvases == nil {
		next.Canvases = make(map[string]models.Canvas)
	}
	if !next.CurrentViewport.Valid() {
		next.CurrentViewport = models.ViewportDesktop
	}
	next.SelectedItemID = ""
	next.SelectedCanvasID = ""
	next.ActiveCanvasID = ""

	for canvasID, c := range next.Canvases {
		for i := range c.Items {
			c.Items[i].CanvasID = canvasID
			m.warnInvalid("load", c.Items[i])
		}
	}

	m.commit(func(s *models.GridState) bool {
		*s = next
		return true
	})
}

// Reset restores the instance's initial snapshot, clears selection and focus
// and restarts the item-id counter.
func (m *Manager) Reset() {
	m.commit(func(s *models.GridState) bool {
		*s = models.CloneState(m.initial)
		s.SelectedItemID = ""
		s.SelectedCanvasID = ""
		s.ActiveCanvasID = ""
		m.itemCounter = 0
		return true
	})
}

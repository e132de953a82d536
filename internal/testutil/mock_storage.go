// mock_storage.go - In-memory layout store for handler tests
package testutil

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/grid-builder/backend/internal/models"
	"github.com/grid-builder/backend/internal/storage"
)

// MockStorage implements storage.LayoutStore in memory.
type MockStorage struct {
	layouts map[string]*models.LayoutInfo
	docs    map[string]models.ExportState
	mu      sync.RWMutex

	// FailWith, when set, is returned by every call.
	FailWith error
}

// NewMockStorage creates an empty mock store.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		layouts: make(map[string]*models.LayoutInfo),
		docs:    make(map[string]models.ExportState),
	}
}

func (m *MockStorage) Save(name string, doc models.ExportState) (*models.LayoutInfo, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return m.AddLayout(generateTestID(), name, doc), nil
}

func (m *MockStorage) Update(id string, doc models.ExportState) (*models.LayoutInfo, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.layouts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	info.CanvasCount = len(doc.Canvases)
	info.ItemCount = doc.CountItems()
	info.SavedAt = time.Now()
	m.docs[id] = doc
	out := *info
	return &out, nil
}

func (m *MockStorage) Get(id string) (*models.LayoutInfo, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.layouts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	out := *info
	return &out, nil
}

func (m *MockStorage) Load(id string) (models.ExportState, error) {
	if m.FailWith != nil {
		return models.ExportState{}, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	if !ok {
		return models.ExportState{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return doc, nil
}

func (m *MockStorage) List(limit int) ([]*models.LayoutInfo, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*models.LayoutInfo, 0, len(m.layouts))
	for _, info := range m.layouts {
		out := *info
		list = append(list, &out)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockStorage) Delete(id string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.layouts[id]; !exists {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	delete(m.layouts, id)
	delete(m.docs, id)
	return nil
}

func (m *MockStorage) Rename(id string, newName string) (*models.LayoutInfo, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.layouts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	info.Name = newName
	out := *info
	return &out, nil
}

func (m *MockStorage) Close() error { return nil }

// Ensure MockStorage implements storage.LayoutStore
var _ storage.LayoutStore = (*MockStorage)(nil)

// Test Helper Methods

// AddLayout adds a layout directly to the mock
func (m *MockStorage) AddLayout(id, name string, doc models.ExportState) *models.LayoutInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := &models.LayoutInfo{
		ID:          id,
		Name:        name,
		CanvasCount: len(doc.Canvases),
		ItemCount:   doc.CountItems(),
		SavedAt:     time.Now(),
	}
	m.layouts[id] = info
	m.docs[id] = doc
	out := *info
	return &out
}

// GetLayoutCount returns the number of stored layouts
func (m *MockStorage) GetLayoutCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.layouts)
}

// generateTestID generates a simple test ID
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}

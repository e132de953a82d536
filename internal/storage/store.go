// Package storage persists saved layouts.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/grid-builder/backend/internal/models"
)

// ErrNotFound is returned for unknown layout IDs.
var ErrNotFound = errors.New("layout not found")

// Backend names accepted by Open.
const (
	BackendLocal  = "local"
	BackendDuckDB = "duckdb"
)

// LayoutStore defines the interface for saved-layout storage.
type LayoutStore interface {
	Save(name string, doc models.ExportState) (*models.LayoutInfo, error)
	Update(id string, doc models.ExportState) (*models.LayoutInfo, error)
	Get(id string) (*models.LayoutInfo, error)
	Load(id string) (models.ExportState, error)
	List(limit int) ([]*models.LayoutInfo, error)
	Delete(id string) error
	Rename(id string, newName string) (*models.LayoutInfo, error)
	Close() error
}

// Open creates the store selected by backend inside dir.
func Open(backend, dir string) (LayoutStore, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendLocal:
		return NewLocalStore(dir)
	case BackendDuckDB:
		return NewDuckStore(filepath.Join(dir, "layouts.duckdb"))
	default:
		return nil, fmt.Errorf("unknown layout store %q", backend)
	}
}

func describe(id, name string, doc models.ExportState, size int64) *models.LayoutInfo {
	return &models.LayoutInfo{
		ID:          id,
		Name:        name,
		Size:        size,
		CanvasCount: len(doc.Canvases),
		ItemCount:   doc.CountItems(),
		SavedAt:     time.Now(),
	}
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func limitList(list []*models.LayoutInfo, limit int) []*models.LayoutInfo {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

var (
	_ LayoutStore = (*LocalStore)(nil)
	_ LayoutStore = (*DuckStore)(nil)
)

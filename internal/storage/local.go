package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/grid-builder/backend/internal/models"
)

// storedLayout is the on-disk record of a layout.
type storedLayout struct {
	Info   models.LayoutInfo  `json:"info"`
	Layout models.ExportState `json:"layout"`
}

// LocalStore implements LayoutStore with one JSON file per layout.
type LocalStore struct {
	mu      sync.RWMutex
	dir     string
	layouts map[string]*models.LayoutInfo
}

// NewLocalStore creates a LocalStore in dir and indexes the layouts already there.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating layout directory: %w", err)
	}

	s := &LocalStore{
		dir:     dir,
		layouts: make(map[string]*models.LayoutInfo),
	}
	if err := s.scan(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) scan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading layout directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rec, err := s.read(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		info := rec.Info
		s.layouts[info.ID] = &info
	}
	return nil
}

func (s *LocalStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *LocalStore) read(id string) (*storedLayout, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	var rec storedLayout
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding layout %s: %w", id, err)
	}
	return &rec, nil
}

// write stores rec through a temp file so a crash never leaves half a layout.
func (s *LocalStore) write(rec *storedLayout) error {
	layout, err := json.Marshal(rec.Layout)
	if err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}
	rec.Info.Size = int64(len(layout))

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}
	tmp := s.path(rec.Info.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing layout: %w", err)
	}
	if err := os.Rename(tmp, s.path(rec.Info.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing layout: %w", err)
	}
	return nil
}

// Save stores a new layout under a fresh ID.
func (s *LocalStore) Save(name string, doc models.ExportState) (*models.LayoutInfo, error) {
	rec := &storedLayout{Info: *describe(uuid.New().String(), name, doc, 0), Layout: doc}
	if err := s.write(rec); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	info := rec.Info
	s.layouts[info.ID] = &info
	return &info, nil
}

// Update replaces the document of an existing layout.
func (s *LocalStore) Update(id string, doc models.ExportState) (*models.LayoutInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.layouts[id]
	if !ok {
		return nil, notFound(id)
	}
	rec := &storedLayout{Info: *describe(id, info.Name, doc, 0), Layout: doc}
	if err := s.write(rec); err != nil {
		return nil, err
	}
	*info = rec.Info
	out := *info
	return &out, nil
}

// Get retrieves layout metadata by ID.
func (s *LocalStore) Get(id string) (*models.LayoutInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.layouts[id]
	if !ok {
		return nil, notFound(id)
	}
	out := *info
	return &out, nil
}

// Load reads the document of a layout.
func (s *LocalStore) Load(id string) (models.ExportState, error) {
	s.mu.RLock()
	_, ok := s.layouts[id]
	s.mu.RUnlock()
	if !ok {
		return models.ExportState{}, notFound(id)
	}

	rec, err := s.read(id)
	if err != nil {
		return models.ExportState{}, err
	}
	return rec.Layout, nil
}

// List returns the most recently saved layouts.
func (s *LocalStore) List(limit int) ([]*models.LayoutInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.LayoutInfo, 0, len(s.layouts))
	for _, info := range s.layouts {
		out := *info
		list = append(list, &out)
	}

	// Sort by SavedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].SavedAt.After(list[j].SavedAt)
	})
	return limitList(list, limit), nil
}

// Delete removes a layout.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layouts[id]; !ok {
		return notFound(id)
	}
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting layout: %w", err)
	}
	delete(s.layouts, id)
	return nil
}

// Rename updates the display name of a layout.
func (s *LocalStore) Rename(id string, newName string) (*models.LayoutInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.layouts[id]
	if !ok {
		return nil, notFound(id)
	}
	rec, err := s.read(id)
	if err != nil {
		return nil, err
	}
	rec.Info.Name = newName
	if err := s.write(rec); err != nil {
		return nil, err
	}
	info.Name = newName
	out := *info
	return &out, nil
}

// Close is a no-op; every write is already on disk.
func (s *LocalStore) Close() error { return nil }

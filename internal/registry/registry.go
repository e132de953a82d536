// Package registry maps component types to their sizing rules.
package registry

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/grid-builder/backend/internal/logging"
	"github.com/grid-builder/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// Fallback is used for types nobody registered.
var Fallback = models.ComponentDefinition{
	Type:        "unknown",
	Name:        "Component",
	DefaultSize: models.Size{Width: 10, Height: 6},
	MinSize:     &models.Size{Width: 1, Height: 1},
}

// Defaults returns the built-in component library.
func Defaults() []models.ComponentDefinition {
	return []models.ComponentDefinition{
		{Type: "header", Name: "Header", DefaultSize: models.Size{Width: 50, Height: 4}, MinSize: &models.Size{Width: 10, Height: 2}},
		{Type: "text", Name: "Text", DefaultSize: models.Size{Width: 20, Height: 6}, MinSize: &models.Size{Width: 4, Height: 2}},
		{Type: "image", Name: "Image", DefaultSize: models.Size{Width: 20, Height: 12}, MinSize: &models.Size{Width: 4, Height: 4}},
		{Type: "button", Name: "Button", DefaultSize: models.Size{Width: 10, Height: 3}, MinSize: &models.Size{Width: 4, Height: 2}, MaxSize: &models.Size{Width: 25, Height: 6}},
		{Type: "section", Name: "Section", DefaultSize: models.Size{Width: 50, Height: 20}, MinSize: &models.Size{Width: 10, Height: 4}},
		{Type: "spacer", Name: "Spacer", DefaultSize: models.Size{Width: 50, Height: 2}, MinSize: &models.Size{Width: 1, Height: 1}, MaxSize: &models.Size{Width: 50, Height: 20}},
	}
}

// Registry is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]models.ComponentDefinition
	log  logging.Logger
}

// New creates a registry seeded with defs.
func New(logger logging.Logger, defs ...models.ComponentDefinition) *Registry {
	if logger == nil {
		logger = logging.Discard{}
	}
	r := &Registry{defs: make(map[string]models.ComponentDefinition), log: logger}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			logger.Warnf("skipping component definition: %v", err)
		}
	}
	return r
}

// NewDefault creates a registry holding the built-in library.
func NewDefault(logger logging.Logger) *Registry {
	return New(logger, Defaults()...)
}

// Register adds or replaces a definition.
func (r *Registry) Register(def models.ComponentDefinition) error {
	if err := Validate(def); err != nil {
		return err
	}
	if def.Name == "" {
		def.Name = def.Type
	}
	r.mu.Lock()
	r.defs[def.Type] = def
	r.mu.Unlock()
	return nil
}

// Lookup returns the definition for typ, if registered.
func (r *Registry) Lookup(typ string) (models.ComponentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[typ]
	return d, ok
}

// Get returns the definition for typ, falling back to a generic 10×6 one
// with a warning.
func (r *Registry) Get(typ string) models.ComponentDefinition {
	if d, ok := r.Lookup(typ); ok {
		return d
	}
	r.log.Warnf("unknown component type %q, using fallback size", typ)
	d := Fallback
	d.Type = typ
	return d
}

// List returns every definition sorted by type.
func (r *Registry) List() []models.ComponentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ComponentDefinition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Validate checks a definition for obviously broken sizes.
func Validate(def models.ComponentDefinition) error {
	if strings.TrimSpace(def.Type) == "" {
		return fmt.Errorf("component definition has no type")
	}
	if def.DefaultSize.Width < 1 || def.DefaultSize.Height < 1 {
		return fmt.Errorf("component %q: default size must be positive", def.Type)
	}
	if def.MinSize != nil && def.MaxSize != nil {
		if def.MaxSize.Width > 0 && def.MinSize.Width > def.MaxSize.Width {
			return fmt.Errorf("component %q: min width exceeds max width", def.Type)
		}
		if def.MaxSize.Height > 0 && def.MinSize.Height > def.MaxSize.Height {
			return fmt.Errorf("component %q: min height exceeds max height", def.Type)
		}
	}
	return nil
}

// LoadFile registers the definitions of a YAML component library.
func (r *Registry) LoadFile(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return r.LoadYAML(file)
}

// LoadYAML registers definitions from a reader. Invalid entries are skipped
// with a warning; the count of registered entries is returned.
func (r *Registry) LoadYAML(rd io.Reader) (int, error) {
	lib, err := ParseLibrary(rd)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range lib.Components {
		if err := r.Register(d); err != nil {
			r.log.Warnf("skipping component definition: %v", err)
			continue
		}
		n++
	}
	return n, nil
}

// ParseLibrary decodes a YAML component library.
func ParseLibrary(rd io.Reader) (*models.ComponentLibrary, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}

	var lib models.ComponentLibrary
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse component library: %w", err)
	}

	return &lib, nil
}

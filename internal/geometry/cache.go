package geometry

import (
	"sync"

	"github.com/grid-builder/backend/internal/models"
)

// MinValidWidthPx is the smallest container width trusted as laid out.
// Anything below it is treated as a transient layout state.
const MinValidWidthPx = 100.0

type cacheKey struct {
	instanceID string
	canvasID   string
}

// SizeCache remembers measured container widths. Keys are scoped by builder
// instance because canvas IDs may collide across instances.
type SizeCache struct {
	mu     sync.RWMutex
	widths map[cacheKey]float64
}

// NewSizeCache creates an empty cache.
func NewSizeCache() *SizeCache {
	return &SizeCache{widths: make(map[cacheKey]float64)}
}

// Observe stores a measured width, overwriting any previous value. Widths
// below MinValidWidthPx are rejected and the previous value is kept.
func (c *SizeCache) Observe(instanceID, canvasID string, widthPx float64) bool {
	if widthPx < MinValidWidthPx {
		return false
	}
	c.mu.Lock()
	c.widths[cacheKey{instanceID, canvasID}] = widthPx
	c.mu.Unlock()
	return true
}

// Width returns the cached width for a canvas.
func (c *SizeCache) Width(instanceID, canvasID string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	w, ok := c.widths[cacheKey{instanceID, canvasID}]
	return w, ok
}

// Invalidate drops the cached width for one canvas.
func (c *SizeCache) Invalidate(instanceID, canvasID string) {
	c.mu.Lock()
	delete(c.widths, cacheKey{instanceID, canvasID})
	c.mu.Unlock()
}

// InvalidateInstance drops every width cached for an instance.
func (c *SizeCache) InvalidateInstance(instanceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.widths {
		if k.instanceID == instanceID {
			delete(c.widths, k)
		}
	}
}

// Converter binds one builder instance to a shared SizeCache.
type Converter struct {
	instanceID string
	cache      *SizeCache
	cfg        Config
}

// NewConverter creates a converter for instanceID. A nil cache gets a private one.
func NewConverter(instanceID string, cache *SizeCache, cfg Config) *Converter {
	if cache == nil {
		cache = NewSizeCache()
	}
	return &Converter{instanceID: instanceID, cache: cache, cfg: cfg}
}

// Config returns the vertical sizing config.
func (c *Converter) Config() Config { return c.cfg }

// Observe records a container width for canvasID.
func (c *Converter) Observe(canvasID string, widthPx float64) bool {
	return c.cache.Observe(c.instanceID, canvasID, widthPx)
}

// Invalidate forgets the width of canvasID.
func (c *Converter) Invalidate(canvasID string) {
	c.cache.Invalidate(c.instanceID, canvasID)
}

// Release forgets every width of this instance.
func (c *Converter) Release() {
	c.cache.InvalidateInstance(c.instanceID)
}

// GridToPixelsX converts units for canvasID. ok is false until a valid width
// has been observed; callers must defer.
func (c *Converter) GridToPixelsX(canvasID string, units float64) (float64, bool) {
	w, ok := c.cache.Width(c.instanceID, canvasID)
	if !ok {
		return 0, false
	}
	return GridToPixelsX(units, w), true
}

// PixelsToGridX converts pixels for canvasID.
func (c *Converter) PixelsToGridX(canvasID string, px float64) (float64, bool) {
	w, ok := c.cache.Width(c.instanceID, canvasID)
	if !ok {
		return 0, false
	}
	return PixelsToGridX(px, w), true
}

// GridToPixelsY converts rows to pixels.
func (c *Converter) GridToPixelsY(units float64) float64 {
	return GridToPixelsY(units, c.cfg)
}

// PixelsToGridY converts pixels to rows.
func (c *Converter) PixelsToGridY(px float64) float64 {
	return PixelsToGridY(px, c.cfg)
}

// PixelRect converts a layout on canvasID to pixels.
func (c *Converter) PixelRect(canvasID string, l models.Layout) (Rect, bool) {
	w, ok := c.cache.Width(c.instanceID, canvasID)
	if !ok {
		return Rect{}, false
	}
	return LayoutToPixelRect(l, w, c.cfg), true
}

// Snap converts a pixel point on canvasID to a whole grid position.
func (c *Converter) Snap(canvasID string, pxX, pxY float64) (models.Position, bool) {
	w, ok := c.cache.Width(c.instanceID, canvasID)
	if !ok {
		return models.Position{}, false
	}
	return SnapToGrid(pxX, pxY, w, c.cfg), true
}

package builder

import (
	"github.com/grid-builder/backend/internal/geometry"
	"github.com/grid-builder/backend/internal/models"
)

// ObserveContainerWidth records the measured pixel width of a canvas.
// Widths below geometry.MinValidWidthPx are ignored.
func (b *Builder) ObserveContainerWidth(canvasID string, widthPx float64) bool {
	ok := b.geo.Observe(canvasID, widthPx)
	if !ok {
		b.logger.Debugf("ignoring container width %.1fpx for canvas %s", widthPx, canvasID)
	}
	return ok
}

// InvalidateContainerWidth forgets a canvas width, e.g. after a resize.
func (b *Builder) InvalidateContainerWidth(canvasID string) {
	b.geo.Invalidate(canvasID)
}

// ItemPixelRect returns an item's desktop rectangle in pixels. ok is false
// until the canvas width has been observed.
func (b *Builder) ItemPixelRect(itemID string) (geometry.Rect, bool) {
	it, canvasID, ok := b.store.GetItem(itemID)
	if !ok {
		return geometry.Rect{}, false
	}
	return b.geo.PixelRect(canvasID, it.Layouts.Desktop)
}

// PixelsToGrid snaps a pixel point on a canvas to grid units.
func (b *Builder) PixelsToGrid(canvasID string, pxX, pxY float64) (models.Position, bool) {
	return b.geo.Snap(canvasID, pxX, pxY)
}

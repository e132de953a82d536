package geometry

import "github.com/grid-builder/backend/internal/models"

// FindFreeSpace returns the first row-major position where a width×height
// rectangle does not overlap any of occupied. The scan covers rows down to
// the lowest occupied bottom; if nothing fits there the rectangle goes below
// the lowest item. It never fails.
func FindFreeSpace(occupied []models.Layout, width, height, canvasWidth int) models.Position {
	canvasWidth = canvasWidthOrDefault(canvasWidth)
	if width > canvasWidth {
		width = canvasWidth
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	lowest := 0
	for _, r := range occupied {
		if b := r.Bottom(); b > lowest {
			lowest = b
		}
	}

	for y := 0; y < lowest; y++ {
		for x := 0; x+width <= canvasWidth; x++ {
			candidate := models.Layout{X: x, Y: y, Width: width, Height: height}
			if !overlapsAny(candidate, occupied) {
				return models.Position{X: x, Y: y}
			}
		}
	}

	return models.Position{X: 0, Y: lowest}
}

func overlapsAny(candidate models.Layout, occupied []models.Layout) bool {
	for _, r := range occupied {
		if candidate.Overlaps(r) {
			return true
		}
	}
	return false
}

// DesktopLayouts extracts the desktop rectangles of items.
func DesktopLayouts(items []models.GridItem) []models.Layout {
	out := make([]models.Layout, 0, len(items))
	for _, it := range items {
		out = append(out, it.Layouts.Desktop)
	}
	return out
}

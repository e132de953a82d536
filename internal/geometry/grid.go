// Package geometry converts between pixel space and the 50-unit grid and keeps
// components inside their canvas.
package geometry

import (
	"math"

	"github.com/grid-builder/backend/internal/models"
)

// DefaultVerticalUnitPx is the height of one grid row when not configured.
const DefaultVerticalUnitPx = 20.0

// Config holds the vertical sizing of the grid. The horizontal unit is always
// derived from the measured container width.
type Config struct {
	VerticalUnitPx float64
}

// DefaultConfig returns a Config with 20px rows.
func DefaultConfig() Config {
	return Config{VerticalUnitPx: DefaultVerticalUnitPx}
}

func (c Config) verticalUnit() float64 {
	if c.VerticalUnitPx <= 0 {
		return DefaultVerticalUnitPx
	}
	return c.VerticalUnitPx
}

// GridToPixelsX converts horizontal grid units to pixels for a container of widthPx.
func GridToPixelsX(units, widthPx float64) float64 {
	return units / models.CanvasGridWidth * widthPx
}

// PixelsToGridX is the inverse of GridToPixelsX. A zero width yields zero.
func PixelsToGridX(px, widthPx float64) float64 {
	if widthPx <= 0 {
		return 0
	}
	return px / widthPx * models.CanvasGridWidth
}

// GridToPixelsY converts vertical grid units to pixels.
func GridToPixelsY(units float64, cfg Config) float64 {
	return units * cfg.verticalUnit()
}

// PixelsToGridY is the inverse of GridToPixelsY.
func PixelsToGridY(px float64, cfg Config) float64 {
	return px / cfg.verticalUnit()
}

// Rect is a canvas-relative pixel rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LayoutToPixelRect converts a grid layout into a pixel rectangle.
func LayoutToPixelRect(l models.Layout, widthPx float64, cfg Config) Rect {
	return Rect{
		X:      GridToPixelsX(float64(l.X), widthPx),
		Y:      GridToPixelsY(float64(l.Y), cfg),
		Width:  GridToPixelsX(float64(l.Width), widthPx),
		Height: GridToPixelsY(float64(l.Height), cfg),
	}
}

// SnapToGrid converts a pixel point to the nearest whole grid position.
func SnapToGrid(pxX, pxY, widthPx float64, cfg Config) models.Position {
	return models.Position{
		X: int(math.Round(PixelsToGridX(pxX, widthPx))),
		Y: int(math.Round(PixelsToGridY(pxY, cfg))),
	}
}

package geometry

import "github.com/grid-builder/backend/internal/models"

// SizeResult is the outcome of ConstrainSizeToCanvas.
type SizeResult struct {
	Width       int
	Height      int
	WasAdjusted bool
}

// Placement is a constrained position and size for a component.
type Placement struct {
	X                int  `json:"x"`
	Y                int  `json:"y"`
	Width            int  `json:"width"`
	Height           int  `json:"height"`
	PositionAdjusted bool `json:"positionAdjusted"`
	SizeAdjusted     bool `json:"sizeAdjusted"`
}

// Layout returns the placement as a desktop layout.
func (p Placement) Layout() models.Layout {
	return models.Layout{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

func canvasWidthOrDefault(w int) int {
	if w <= 0 {
		return models.CanvasGridWidth
	}
	return w
}

// CanComponentFitCanvas reports whether the component's minimum width fits.
// Height is never checked because canvases grow.
func CanComponentFitCanvas(def models.ComponentDefinition, canvasWidth int) bool {
	canvasWidth = canvasWidthOrDefault(canvasWidth)
	if def.MinSize == nil {
		return true
	}
	return def.MinSize.Width <= canvasWidth
}

// ConstrainSizeToCanvas shrinks an oversized default width to the canvas and
// then clamps both dimensions into the component's min/max.
func ConstrainSizeToCanvas(def models.ComponentDefinition, canvasWidth int) SizeResult {
	canvasWidth = canvasWidthOrDefault(canvasWidth)
	res := SizeResult{Width: def.DefaultSize.Width, Height: def.DefaultSize.Height}

	if res.Width > canvasWidth {
		res.Width = canvasWidth
		res.WasAdjusted = true
	}

	if def.MinSize != nil {
		if res.Width < def.MinSize.Width {
			res.Width = def.MinSize.Width
			res.WasAdjusted = true
		}
		if res.Height < def.MinSize.Height {
			res.Height = def.MinSize.Height
			res.WasAdjusted = true
		}
	}
	if def.MaxSize != nil {
		if def.MaxSize.Width > 0 && res.Width > def.MaxSize.Width {
			res.Width = def.MaxSize.Width
			res.WasAdjusted = true
		}
		if def.MaxSize.Height > 0 && res.Height > def.MaxSize.Height {
			res.Height = def.MaxSize.Height
			res.WasAdjusted = true
		}
	}
	return res
}

// ConstrainPositionToCanvas clamps x into [0, canvasWidth-width] and y to >= 0.
// There is no bottom bound.
func ConstrainPositionToCanvas(x, y, width, height, canvasWidth int) Placement {
	canvasWidth = canvasWidthOrDefault(canvasWidth)
	p := Placement{X: x, Y: y, Width: width, Height: height}

	maxX := canvasWidth - width
	if maxX < 0 {
		maxX = 0
	}
	if p.X > maxX {
		p.X = maxX
		p.PositionAdjusted = true
	}
	if p.X < 0 {
		p.X = 0
		p.PositionAdjusted = true
	}
	if p.Y < 0 {
		p.Y = 0
		p.PositionAdjusted = true
	}
	return p
}

// ApplyBoundaryConstraints runs the full placement pipeline. A nil result means
// the component cannot be placed on this canvas and must not be created.
func ApplyBoundaryConstraints(def models.ComponentDefinition, x, y, canvasWidth int) *Placement {
	if !CanComponentFitCanvas(def, canvasWidth) {
		return nil
	}
	size := ConstrainSizeToCanvas(def, canvasWidth)
	p := ConstrainPositionToCanvas(x, y, size.Width, size.Height, canvasWidth)
	p.SizeAdjusted = size.WasAdjusted
	return &p
}

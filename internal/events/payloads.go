package events

import "github.com/grid-builder/backend/internal/models"

// Payload types carried by the builder's events. Z-index events carry
// models.ZIndexChange (single) or []models.ZIndexChange (batch).

type ItemPayload struct {
	ItemID   string           `json:"itemId"`
	CanvasID string           `json:"canvasId"`
	Item     *models.GridItem `json:"item,omitempty"`
}

type BatchPayload struct {
	ItemIDs []string `json:"itemIds"`
}

type CanvasPayload struct {
	CanvasID string `json:"canvasId"`
}

type MovePayload struct {
	ItemID       string          `json:"itemId"`
	FromCanvasID string          `json:"fromCanvasId"`
	ToCanvasID   string          `json:"toCanvasId"`
	Position     models.Position `json:"position"`
}

type ResizePayload struct {
	ItemID   string      `json:"itemId"`
	CanvasID string      `json:"canvasId"`
	Size     models.Size `json:"size"`
}

type ConfigPayload struct {
	ItemID   string         `json:"itemId"`
	CanvasID string         `json:"canvasId"`
	Config   map[string]any `json:"config"`
}

type SelectionPayload struct {
	ItemID   string `json:"itemId,omitempty"`
	CanvasID string `json:"canvasId,omitempty"`
}

type ViewportPayload struct {
	Viewport models.Viewport `json:"viewport"`
}

package models

import "time"

// LayoutInfo represents metadata about a saved layout.
type LayoutInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	CanvasCount int       `json:"canvasCount"`
	ItemCount   int       `json:"itemCount"`
	SavedAt     time.Time `json:"savedAt"`
}

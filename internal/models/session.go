package models

import "time"

// BuilderSession represents one builder instance served to a client.
type BuilderSession struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessed time.Time `json:"lastAccessed"`
	CanvasCount  int       `json:"canvasCount"`
	ItemCount    int       `json:"itemCount"`
	CanUndo      bool      `json:"canUndo"`
	CanRedo      bool      `json:"canRedo"`
}

// NewBuilderSession creates a BuilderSession stamped with the current time.
func NewBuilderSession(id, name string) *BuilderSession {
	now := time.Now()
	return &BuilderSession{
		ID:           id,
		Name:         name,
		CreatedAt:    now,
		LastAccessed: now,
	}
}

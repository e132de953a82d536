package models

// Canvas is a container of items with its own z-index counter.
type Canvas struct {
	Items         []GridItem `json:"items"`
	ZIndexCounter int        `json:"zIndexCounter"`
}

// NewCanvas returns an empty canvas whose first item will get zIndex 1.
func NewCanvas() Canvas {
	return Canvas{
		Items:         make([]GridItem, 0),
		ZIndexCounter: 1,
	}
}

// IndexOf returns the array index of itemID, or -1.
func (c Canvas) IndexOf(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// GridState is the canonical state of one builder instance.
type GridState struct {
	Canvases         map[string]Canvas `json:"canvases"`
	SelectedItemID   string            `json:"selectedItemId,omitempty"`
	SelectedCanvasID string            `json:"selectedCanvasId,omitempty"`
	ActiveCanvasID   string            `json:"activeCanvasId,omitempty"`
	CurrentViewport  Viewport          `json:"currentViewport"`
	ShowGrid         bool              `json:"showGrid"`
}

// NewGridState returns an empty state with no canvases.
func NewGridState() GridState {
	return GridState{
		Canvases:        make(map[string]Canvas),
		CurrentViewport: ViewportDesktop,
		ShowGrid:        true,
	}
}

// FindItem locates an item in any canvas.
func (s GridState) FindItem(itemID string) (GridItem, string, bool) {
	for canvasID, canvas := range s.Canvases {
		if idx := canvas.IndexOf(itemID); idx >= 0 {
			return canvas.Items[idx], canvasID, true
		}
	}
	return GridItem{}, "", false
}

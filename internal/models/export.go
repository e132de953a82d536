package models

// ExportVersion is written into every export document.
const ExportVersion = "1.0.0"

// ExportCanvas is the persisted shape of a canvas.
type ExportCanvas struct {
	Items []GridItem `json:"items"`
}

// ExportMetadata carries RFC3339 timestamps.
type ExportMetadata struct {
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ExportState is the round-trippable document produced by Export.
type ExportState struct {
	Version  string                  `json:"version"`
	Canvases map[string]ExportCanvas `json:"canvases"`
	Viewport Viewport                `json:"viewport"`
	Metadata ExportMetadata          `json:"metadata"`
}

// CountItems returns the number of items across all canvases.
func (e ExportState) CountItems() int {
	n := 0
	for _, c := range e.Canvases {
		n += len(c.Items)
	}
	return n
}

package builder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnknownFormat is returned by Import when the document is neither an
// export nor a raw state.
var ErrUnknownFormat = errors.New("unrecognized layout document")

// Export returns the round-trippable export document.
func (b *Builder) Export() models.ExportState {
	s := b.store.Snapshot()
	out := models.ExportState{
		Version:  models.ExportVersion,
		Canvases: make(map[string]models.ExportCanvas, len(s.Canvases)),
		Viewport: s.CurrentViewport,
		Metadata: models.ExportMetadata{
			CreatedAt: b.createdAt.UTC().Format(time.RFC3339),
			UpdatedAt: b.UpdatedAt().UTC().Format(time.RFC3339),
		},
	}
	for id, c := range s.Canvases {
		out.Canvases[id] = models.ExportCanvas{Items: c.Items}
	}
	return out
}

// ExportJSON encodes Export as JSON.
func (b *Builder) ExportJSON() ([]byte, error) {
	data, err := json.Marshal(b.Export())
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// ExportMsgpack encodes Export as msgpack using the JSON field names.
func (b *Builder) ExportMsgpack() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(b.Export()); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return buf.Bytes(), nil
}

// Import replaces the state with a JSON document in either the export shape
// (has "viewport") or the raw state shape (has "currentViewport"). History
// and selection are cleared.
func (b *Builder) Import(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("decode layout: %w", err)
	}

	switch {
	case keys["viewport"] != nil:
		var doc models.ExportState
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("decode export: %w", err)
		}
		b.load(FromExport(doc), true)
	case keys["currentViewport"] != nil:
		var s models.GridState
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode state: %w", err)
		}
		b.load(normalizeState(s), false)
	default:
		return ErrUnknownFormat
	}
	return nil
}

// ImportMsgpack is Import for msgpack documents.
func (b *Builder) ImportMsgpack(data []byte) error {
	var keys map[string]msgpack.RawMessage
	if err := msgpack.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("decode layout: %w", err)
	}

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")

	switch {
	case keys["viewport"] != nil:
		var doc models.ExportState
		if err := dec.Decode(&doc); err != nil {
			return fmt.Errorf("decode export: %w", err)
		}
		b.load(FromExport(doc), true)
	case keys["currentViewport"] != nil:
		var s models.GridState
		if err := dec.Decode(&s); err != nil {
			return fmt.Errorf("decode state: %w", err)
		}
		b.load(normalizeState(s), false)
	default:
		return ErrUnknownFormat
	}
	return nil
}

// ImportState replaces the state with an export document already decoded.
func (b *Builder) ImportState(doc models.ExportState) {
	b.load(FromExport(doc), true)
}

// load swaps in s. Export documents carry no grid toggle, so keepShowGrid
// preserves the current one.
func (b *Builder) load(s models.GridState, keepShowGrid bool) {
	b.lock()
	defer b.unlock()

	if keepShowGrid {
		s.ShowGrid = b.store.Snapshot().ShowGrid
	}
	b.store.Load(s)
	b.history.Clear()
	b.queue(events.StateImported, nil)
	b.queue(events.HistoryChanged, b.history.Status())
}

// FromExport converts an export document into a state, recomputing each
// canvas's z-index counter as max(zIndex)+1.
func FromExport(doc models.ExportState) models.GridState {
	s := models.NewGridState()
	if doc.Viewport.Valid() {
		s.CurrentViewport = doc.Viewport
	}
	for id, c := range doc.Canvases {
		items := models.CloneItems(c.Items)
		s.Canvases[id] = models.Canvas{Items: items, ZIndexCounter: nextZIndex(items)}
	}
	return s
}

func normalizeState(s models.GridState) models.GridState {
	if s.Canvases == nil {
		s.Canvases = make(map[string]models.Canvas)
	}
	for id, c := range s.Canvases {
		if c.Items == nil {
			c.Items = make([]models.GridItem, 0)
		}
		if next := nextZIndex(c.Items); c.ZIndexCounter < next {
			c.ZIndexCounter = next
		}
		s.Canvases[id] = c
	}
	return s
}

func nextZIndex(items []models.GridItem) int {
	next := 1
	for _, it := range items {
		if it.ZIndex+1 > next {
			next = it.ZIndex + 1
		}
	}
	return next
}

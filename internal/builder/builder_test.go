package builder

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/geometry"
	"github.com/grid-builder/backend/internal/logging"
	"github.com/grid-builder/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T, opts Options) (*Builder, *logging.Recorder) {
	t.Helper()
	rec := &logging.Recorder{}
	if opts.Logger == nil {
		opts.Logger = rec
	}
	if opts.Debounce == nil {
		p := events.NoDebounce()
		opts.Debounce = &p
	}
	if len(opts.Canvases) == 0 && opts.Initial == nil {
		opts.Canvases = []string{"c1", "c2"}
	}
	b := New(opts)
	t.Cleanup(b.Close)
	return b, rec
}

type eventLog struct {
	mu    sync.Mutex
	names []string
}

func (l *eventLog) handle(ev events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, ev.Name)
}

func (l *eventLog) count(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, x := range l.names {
		if x == name {
			n++
		}
	}
	return n
}

func TestAddComponent_ClampsDroppedHeader(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})

	id, ok := b.AddComponent("c1", "header", &PlacementRequest{X: 45, Y: 0, Width: 20, Height: 6}, nil)
	require.True(t, ok)

	it, ok := b.GetItem(id)
	require.True(t, ok)
	assert.Equal(t, models.Layout{X: 30, Y: 0, Width: 20, Height: 6}, it.Layouts.Desktop)
	assert.Equal(t, "Header", it.Name)
	assert.Equal(t, 1, it.ZIndex)
	assert.NotNil(t, it.Config)
	assert.Equal(t, 1, len(b.History()))
}

func TestAddComponent_RejectsWhenMinWidthTooLarge(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	require.NoError(t, b.Registry().Register(models.ComponentDefinition{
		Type:        "mural",
		DefaultSize: models.Size{Width: 60, Height: 10},
		MinSize:     &models.Size{Width: 60, Height: 1},
	}))

	_, ok := b.AddComponent("c1", "mural", &PlacementRequest{X: 0, Y: 0}, nil)
	assert.False(t, ok)
	assert.Empty(t, b.GetItems("c1"))
	assert.False(t, b.CanUndo())
}

func TestAddComponent_ClickToAddFindsFreeSpace(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})

	first, ok := b.AddComponent("c1", "text", nil, nil)
	require.True(t, ok)
	second, ok := b.AddComponent("c1", "text", nil, nil)
	require.True(t, ok)

	a, _ := b.GetItem(first)
	c, _ := b.GetItem(second)
	assert.Equal(t, models.Layout{X: 0, Y: 0, Width: 20, Height: 6}, a.Layouts.Desktop)
	assert.Equal(t, models.Layout{X: 20, Y: 0, Width: 20, Height: 6}, c.Layouts.Desktop)
	assert.NotEqual(t, a.ZIndex, c.ZIndex)
}

func TestAddComponent_UnknownTypeFallsBack(t *testing.T) {
	b, rec := newTestBuilder(t, Options{})
	id, ok := b.AddComponent("c1", "carousel", nil, map[string]any{"slides": 3})
	require.True(t, ok)

	it, _ := b.GetItem(id)
	assert.Equal(t, 10, it.Layouts.Desktop.Width)
	assert.Equal(t, 6, it.Layouts.Desktop.Height)
	assert.GreaterOrEqual(t, rec.WarningCount(), 1)
}

func TestAddComponent_MissingCanvas(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	_, ok := b.AddComponent("nope", "text", nil, nil)
	assert.False(t, ok)
}

func TestUndoRedo_OneEntryPerAction(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	log := &eventLog{}
	b.On(events.Wildcard, log.handle)

	id, _ := b.AddComponent("c1", "text", nil, nil)
	require.True(t, b.UpdateConfig(id, map[string]any{"content": "hi"}))
	require.True(t, b.MoveComponent(id, "c1", 5, 5))
	assert.Len(t, b.History(), 3)

	require.True(t, b.Undo())
	it, _ := b.GetItem(id)
	assert.Equal(t, 0, it.Layouts.Desktop.X)

	require.True(t, b.Undo())
	it, _ = b.GetItem(id)
	assert.NotContains(t, it.Config, "content")

	require.True(t, b.Undo())
	_, ok := b.GetItem(id)
	assert.False(t, ok)
	assert.False(t, b.Undo())

	require.True(t, b.Redo())
	require.True(t, b.Redo())
	require.True(t, b.Redo())
	it, _ = b.GetItem(id)
	assert.Equal(t, "hi", it.Config["content"])
	assert.Equal(t, 5, it.Layouts.Desktop.X)
	assert.False(t, b.CanRedo())

	assert.Equal(t, 3, log.count(events.UndoExecuted))
	assert.Equal(t, 3, log.count(events.RedoExecuted))
	assert.Equal(t, 1, log.count(events.ComponentAdded))
	assert.Equal(t, 1, log.count(events.ComponentMoved))
}

func TestUpdateConfig_MergesAndDeletesNilKeys(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	id, _ := b.AddComponent("c1", "text", nil, map[string]any{"a": "1", "b": "2"})

	require.True(t, b.UpdateConfig(id, map[string]any{"b": nil, "c": "3"}))
	it, _ := b.GetItem(id)
	assert.Equal(t, map[string]any{"a": "1", "c": "3"}, it.Config)

	assert.False(t, b.UpdateConfig("ghost", map[string]any{"x": 1}))
}

func TestUpdateItem_NameAndConfigAreOneEntry(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	id, _ := b.AddComponent("c1", "text", nil, map[string]any{"a": "1"})
	before := b.HistoryStatus().Length

	name := "Intro"
	require.True(t, b.UpdateItem(id, &name, map[string]any{"b": "2"}))
	assert.Equal(t, before+1, b.HistoryStatus().Length)

	it, _ := b.GetItem(id)
	assert.Equal(t, "Intro", it.Name)
	assert.Equal(t, map[string]any{"a": "1", "b": "2"}, it.Config)

	require.True(t, b.Undo())
	it, _ = b.GetItem(id)
	assert.Equal(t, "Text", it.Name)
	assert.Equal(t, map[string]any{"a": "1"}, it.Config)

	// Same name and no config is a no-op.
	it, _ = b.GetItem(id)
	assert.False(t, b.UpdateItem(id, &it.Name, nil))
	assert.False(t, b.UpdateItem("ghost", &name, nil))
}

func TestUpdateConfigsBatch_RepeatedIDsAccumulate(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	id, _ := b.AddComponent("c1", "text", nil, map[string]any{"keep": true})

	n := b.UpdateConfigsBatch([]ConfigUpdate{
		{ItemID: id, Config: map[string]any{"a": "1"}},
		{ItemID: id, Config: map[string]any{"b": "2"}},
	})
	assert.Equal(t, 1, n)
	it, _ := b.GetItem(id)
	assert.Equal(t, map[string]any{"keep": true, "a": "1", "b": "2"}, it.Config)

	require.True(t, b.Undo())
	it, _ = b.GetItem(id)
	assert.Equal(t, map[string]any{"keep": true}, it.Config)
}

func TestAddComponent_ClickToAddKeepsWideTypeInsideCanvas(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	require.NoError(t, b.Registry().Register(models.ComponentDefinition{
		Type:        "wide",
		DefaultSize: models.Size{Width: 60, Height: 4},
		MinSize:     &models.Size{Width: 60, Height: 1},
	}))

	id, ok := b.AddComponent("c1", "wide", nil, nil)
	require.True(t, ok)
	it, _ := b.GetItem(id)
	assert.Equal(t, models.Layout{X: 0, Y: 0, Width: models.CanvasGridWidth, Height: 4}, it.Layouts.Desktop)

	require.True(t, b.ResizeComponent(id, 80, 6))
	it, _ = b.GetItem(id)
	assert.Equal(t, models.CanvasGridWidth, it.Layouts.Desktop.Width)
	assert.Equal(t, 6, it.Layouts.Desktop.Height)
}

func TestDeleteComponent_Hook(t *testing.T) {
	tests := []struct {
		name   string
		hook   BeforeDeleteHook
		ctx    func() context.Context
		want   bool
		errors int
	}{
		{"no hook", nil, context.Background, true, 0},
		{"approve", func(context.Context, DeleteContext) (bool, error) { return true, nil }, context.Background, true, 0},
		{"refuse", func(context.Context, DeleteContext) (bool, error) { return false, nil }, context.Background, false, 0},
		{"error", func(context.Context, DeleteContext) (bool, error) { return true, errors.New("nope") }, context.Background, false, 1},
		{"panic", func(context.Context, DeleteContext) (bool, error) { panic("boom") }, context.Background, false, 1},
		{"cancelled", func(context.Context, DeleteContext) (bool, error) { return true, nil }, func() context.Context {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx
		}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, rec := newTestBuilder(t, Options{BeforeDelete: tt.hook})
			id, _ := b.AddComponent("c1", "text", nil, nil)
			entries := len(b.History())

			got := b.DeleteComponent(tt.ctx(), id)
			assert.Equal(t, tt.want, got)
			_, exists := b.GetItem(id)
			assert.Equal(t, !tt.want, exists)
			if tt.want {
				assert.Len(t, b.History(), entries+1)
			} else {
				assert.Len(t, b.History(), entries)
			}
			assert.Equal(t, tt.errors, rec.ErrorCount())
		})
	}
}

func TestDeleteComponent_HookSeesItem(t *testing.T) {
	var seen DeleteContext
	b, _ := newTestBuilder(t, Options{BeforeDelete: func(_ context.Context, dc DeleteContext) (bool, error) {
		seen = dc
		return true, nil
	}})
	id, _ := b.AddComponent("c2", "image", nil, nil)

	require.True(t, b.DeleteComponent(context.Background(), id))
	assert.Equal(t, id, seen.ItemID)
	assert.Equal(t, "c2", seen.CanvasID)
	assert.Equal(t, "image", seen.Item.Type)

	require.True(t, b.Undo())
	_, ok := b.GetItem(id)
	assert.True(t, ok)
}

func TestBatchOperations(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	log := &eventLog{}
	b.On(events.Wildcard, log.handle)

	ids := b.AddComponentsBatch([]ComponentSpec{
		{CanvasID: "c1", Type: "text"},
		{CanvasID: "c1", Type: "text"},
		{CanvasID: "c1", Type: "text"},
		{CanvasID: "missing", Type: "text"},
	})
	require.Len(t, ids, 3)
	assert.Len(t, b.History(), 1)
	assert.Equal(t, 1, log.count(events.StateChanged))
	assert.Equal(t, 1, log.count(events.ComponentsBatchAdded))

	// Batch placement avoids overlaps within the batch itself.
	items := b.GetItems("c1")
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			assert.False(t, items[i].Layouts.Desktop.Overlaps(items[j].Layouts.Desktop))
		}
	}

	n := b.UpdateConfigsBatch([]ConfigUpdate{
		{ItemID: ids[0], Config: map[string]any{"v": "a"}},
		{ItemID: ids[1], Config: map[string]any{"v": "b"}},
		{ItemID: "ghost", Config: map[string]any{"v": "c"}},
	})
	assert.Equal(t, 2, n)
	assert.Len(t, b.History(), 2)

	require.True(t, b.DeleteComponentsBatch(context.Background(), ids))
	assert.Empty(t, b.GetItems("c1"))
	assert.Len(t, b.History(), 3)

	require.True(t, b.Undo())
	assert.Len(t, b.GetItems("c1"), 3)
	require.True(t, b.Undo())
	it, _ := b.GetItem(ids[0])
	assert.NotContains(t, it.Config, "v")
}

func TestDeleteComponentsBatch_AnyRefusalCancels(t *testing.T) {
	var refuse string
	b, _ := newTestBuilder(t, Options{BeforeDelete: func(_ context.Context, dc DeleteContext) (bool, error) {
		return dc.ItemID != refuse, nil
	}})
	ids := b.AddComponentsBatch([]ComponentSpec{{CanvasID: "c1", Type: "text"}, {CanvasID: "c1", Type: "text"}})
	require.Len(t, ids, 2)
	refuse = ids[1]

	assert.False(t, b.DeleteComponentsBatch(context.Background(), ids))
	assert.Len(t, b.GetItems("c1"), 2)
	assert.Len(t, b.History(), 1)
}

func TestMoveComponent_CrossCanvasUndo(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	var ids []string
	for i := 0; i < 3; i++ {
		id, _ := b.AddComponent("c1", "button", nil, nil)
		ids = append(ids, id)
	}
	b.AddComponent("c2", "button", nil, nil)

	before, _ := b.GetItem(ids[1])
	require.True(t, b.MoveComponent(ids[1], "c2", 48, 3))

	moved, _ := b.GetItem(ids[1])
	assert.Equal(t, "c2", moved.CanvasID)
	assert.Equal(t, 40, moved.Layouts.Desktop.X, "x clamped so the item stays inside")
	assert.Equal(t, 2, moved.ZIndex)

	require.True(t, b.Undo())
	restored, _ := b.GetItem(ids[1])
	assert.Equal(t, before, restored)
	items := b.GetItems("c1")
	require.Len(t, items, 3)
	assert.Equal(t, ids[1], items[1].ID)
}

func TestMoveComponent_SamePositionIsNotRecorded(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	id, _ := b.AddComponent("c1", "text", nil, nil)
	assert.False(t, b.MoveComponent(id, "", 0, 0))
	assert.Len(t, b.History(), 1)
}

func TestResizeComponent_Clamps(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	id, _ := b.AddComponent("c1", "button", &PlacementRequest{X: 30, Y: 0}, nil)

	require.True(t, b.ResizeComponent(id, 40, 1))
	it, _ := b.GetItem(id)
	// button max width is 25 and min height 2; x is pulled back to keep it inside.
	assert.Equal(t, models.Layout{X: 25, Y: 0, Width: 25, Height: 2}, it.Layouts.Desktop)

	require.True(t, b.Undo())
	it, _ = b.GetItem(id)
	assert.Equal(t, models.Layout{X: 30, Y: 0, Width: 10, Height: 3}, it.Layouts.Desktop)
}

func TestZOrder(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	a, _ := b.AddComponent("c1", "text", nil, nil)
	c, _ := b.AddComponent("c1", "text", nil, nil)
	zOf := func(id string) int {
		it, _ := b.GetItem(id)
		return it.ZIndex
	}

	require.True(t, b.MoveForward(a))
	assert.Equal(t, 2, zOf(a))
	assert.Equal(t, 1, zOf(c))
	assert.False(t, b.MoveForward(a))

	require.True(t, b.Undo())
	assert.Equal(t, 1, zOf(a))
	assert.Equal(t, 2, zOf(c))

	require.True(t, b.BringToFront(a))
	assert.Greater(t, zOf(a), zOf(c))
	require.True(t, b.SendToBack(a))
	assert.Less(t, zOf(a), zOf(c))
	assert.False(t, b.ChangeZOrder(a, "sideways"))
}

func TestReorderLayers(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	var ids []string
	for i := 0; i < 3; i++ {
		id, _ := b.AddComponent("c1", "text", nil, nil)
		ids = append(ids, id)
	}
	// ids hold z 1,2,3; put the first on top and the last at the bottom.
	require.True(t, b.ReorderLayers("c1", []string{ids[0], ids[1], ids[2]}))

	z := map[string]int{}
	for _, it := range b.GetItems("c1") {
		z[it.ID] = it.ZIndex
	}
	assert.Equal(t, 3, z[ids[0]])
	assert.Equal(t, 2, z[ids[1]])
	assert.Equal(t, 1, z[ids[2]])

	require.True(t, b.Undo())
	it, _ := b.GetItem(ids[0])
	assert.Equal(t, 1, it.ZIndex)

	assert.False(t, b.ReorderLayers("missing", ids))
}

func TestCanvases(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	log := &eventLog{}
	b.On(events.Wildcard, log.handle)

	require.True(t, b.AddCanvas("c3"))
	b.AddComponent("c3", "text", nil, nil)
	b.AddComponent("c3", "text", nil, nil)
	require.True(t, b.SetActiveCanvas("c3"))

	require.True(t, b.RemoveCanvas("c3"))
	assert.Equal(t, []string{"c1", "c2"}, b.CanvasIDs())
	assert.Empty(t, b.ActiveCanvas())

	require.True(t, b.Undo())
	assert.Len(t, b.GetItems("c3"), 2)
	assert.Equal(t, 2, log.count(events.CanvasAdded))
	assert.Equal(t, 1, log.count(events.CanvasRemoved))
	assert.Equal(t, 1, log.count(events.CanvasActivated))
}

func TestSelectionAndViewport(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	id, _ := b.AddComponent("c2", "text", nil, nil)

	require.True(t, b.SelectItem(id))
	s := b.GetState()
	assert.Equal(t, id, s.SelectedItemID)
	assert.Equal(t, "c2", s.SelectedCanvasID)
	require.True(t, b.ClearSelection())
	assert.False(t, b.SelectItem("ghost"))

	require.True(t, b.SetViewport(models.ViewportMobile))
	require.True(t, b.SetShowGrid(false))
	s = b.GetState()
	assert.Equal(t, models.ViewportMobile, s.CurrentViewport)
	assert.False(t, s.ShowGrid)
}

func TestHandlersMayCallBack(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	var state models.GridState
	b.On(events.ComponentAdded, func(events.Event) {
		state = b.GetState()
		b.SetActiveCanvas("c1")
	})

	_, ok := b.AddComponent("c1", "text", nil, nil)
	require.True(t, ok)
	assert.Len(t, state.Canvases["c1"].Items, 1)
	assert.Equal(t, "c1", b.ActiveCanvas())
}

func TestPushCommandAndReset(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	title := "old"
	b.PushCommand(&titleCommand{title: &title, old: "old", new: "new"})
	title = "new"
	b.AddComponent("c1", "text", nil, nil)

	require.True(t, b.Undo())
	require.True(t, b.Undo())
	assert.Equal(t, "old", title)

	b.Redo()
	b.Reset()
	assert.False(t, b.CanUndo())
	assert.False(t, b.CanRedo())
	assert.Empty(t, b.GetItems("c1"))

	id, _ := b.AddComponent("c1", "text", nil, nil)
	assert.Equal(t, "item-1", id)
}

type titleCommand struct {
	title    *string
	old, new string
}

func (c *titleCommand) Undo() { *c.title = c.old }
func (c *titleCommand) Redo() { *c.title = c.new }

func TestExportImportJSON(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	a, _ := b.AddComponent("c1", "text", nil, map[string]any{"content": "hello"})
	b.AddComponent("c2", "image", nil, nil)
	b.SelectItem(a)

	data, err := b.ExportJSON()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, models.ExportVersion, doc["version"])
	assert.Equal(t, "desktop", doc["viewport"])

	other, _ := newTestBuilder(t, Options{Canvases: []string{"x"}})
	require.NoError(t, other.Import(data))
	assert.Equal(t, []string{"c1", "c2"}, other.CanvasIDs())
	it, ok := other.GetItem(a)
	require.True(t, ok)
	assert.Equal(t, "hello", it.Config["content"])
	assert.Equal(t, "c1", it.CanvasID)
	assert.False(t, other.CanUndo())
	assert.Empty(t, other.GetState().SelectedItemID)

	// New items continue above the imported z-indices.
	id, _ := other.AddComponent("c1", "text", nil, nil)
	added, _ := other.GetItem(id)
	assert.Equal(t, 2, added.ZIndex)
	assert.NotEqual(t, a, id)
}

func TestImportRawState(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	raw := `{"canvases":{"hero":{"items":[{"id":"x","canvasId":"hero","type":"text","name":"T","layouts":{"desktop":{"x":0,"y":0,"width":5,"height":5},"mobile":{"customized":false}},"zIndex":7,"config":{}}]}},"currentViewport":"mobile","showGrid":false}`

	require.NoError(t, b.Import([]byte(raw)))
	s := b.GetState()
	assert.Equal(t, models.ViewportMobile, s.CurrentViewport)
	assert.False(t, s.ShowGrid)
	assert.Equal(t, 8, s.Canvases["hero"].ZIndexCounter)

	assert.ErrorIs(t, b.Import([]byte(`{"foo":1}`)), ErrUnknownFormat)
	assert.Error(t, b.Import([]byte(`not json`)))
}

func TestExportImportMsgpack(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	id, _ := b.AddComponent("c1", "text", nil, map[string]any{"content": "packed"})

	data, err := b.ExportMsgpack()
	require.NoError(t, err)

	other, _ := newTestBuilder(t, Options{})
	require.NoError(t, other.ImportMsgpack(data))
	it, ok := other.GetItem(id)
	require.True(t, ok)
	assert.Equal(t, "packed", it.Config["content"])

	orig, _ := b.GetItem(id)
	assert.Equal(t, orig.Layouts.Desktop, it.Layouts.Desktop)
	assert.Equal(t, orig.ZIndex, it.ZIndex)
}

func TestGeometry(t *testing.T) {
	cache := geometry.NewSizeCache()
	b, _ := newTestBuilder(t, Options{InstanceID: "one", SizeCache: cache})
	other, _ := newTestBuilder(t, Options{InstanceID: "two", SizeCache: cache})
	id, _ := b.AddComponent("c1", "text", &PlacementRequest{X: 25, Y: 2, Width: 10, Height: 3}, nil)

	_, ok := b.ItemPixelRect(id)
	assert.False(t, ok)
	assert.False(t, b.ObserveContainerWidth("c1", 0))

	require.True(t, b.ObserveContainerWidth("c1", 1000))
	rect, ok := b.ItemPixelRect(id)
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 500, Y: 40, Width: 200, Height: 60}, rect)

	_, ok = other.PixelsToGrid("c1", 100, 100)
	assert.False(t, ok, "widths are scoped per instance")

	pos, ok := b.PixelsToGrid("c1", 510, 45)
	require.True(t, ok)
	assert.Equal(t, models.Position{X: 26, Y: 2}, pos)

	b.InvalidateContainerWidth("c1")
	_, ok = b.ItemPixelRect(id)
	assert.False(t, ok)
}

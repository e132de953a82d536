package commands

import (
	"testing"

	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/models"
	"github.com/grid-builder/backend/internal/state"
	"github.com/grid-builder/backend/internal/undo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	name    string
	payload any
}

type fakeEmitter struct {
	events []emitted
}

func (f *fakeEmitter) Emit(name string, payload any) {
	f.events = append(f.events, emitted{name: name, payload: payload})
}

func createTestStore(t *testing.T, canvases ...string) *state.Manager {
	t.Helper()
	store := state.NewManager(state.Options{})
	for _, c := range canvases {
		require.True(t, store.AddCanvas(c))
	}
	return store
}

// addItem mimics the builder's add path: consume the canvas counter, then append.
func addItem(t *testing.T, store *state.Manager, canvasID string, layout models.Layout) string {
	t.Helper()
	z, ok := store.NextZIndex(canvasID)
	require.True(t, ok)
	it := models.GridItem{
		ID:      store.GenerateItemID(),
		Type:    "text",
		Name:    "Text",
		Layouts: models.Layouts{Desktop: layout},
		ZIndex:  z,
		Config:  map[string]any{"content": "hello", "style": map[string]any{"bold": true}},
	}
	require.True(t, store.AddItemToCanvas(canvasID, it))
	return it.ID
}

// assertInverse checks undo/redo from the post-mutation state S1:
// undo gives U, redo gives back S1 and a second undo gives back U.
func assertInverse(t *testing.T, store *state.Manager, cmd undo.Command) {
	t.Helper()
	applied := store.Snapshot()
	cmd.Undo()
	undone := store.Snapshot()
	assert.NotEqual(t, applied, undone, "undo changed nothing")

	cmd.Redo()
	assert.Equal(t, applied, store.Snapshot(), "redo did not restore the applied state")
	cmd.Redo()
	assert.Equal(t, applied, store.Snapshot(), "second redo was not idempotent")

	cmd.Undo()
	assert.Equal(t, undone, store.Snapshot(), "undo did not restore the undone state")
}

func TestAddItem(t *testing.T) {
	store := createTestStore(t, "main")
	addItem(t, store, "main", models.Layout{Width: 10, Height: 6})
	id := addItem(t, store, "main", models.Layout{Y: 6, Width: 10, Height: 6})

	cmd, err := NewAddItem(store, id)
	require.NoError(t, err)
	assertInverse(t, store, cmd)

	_, _, ok := store.GetItem(id)
	assert.False(t, ok)

	_, err = NewAddItem(store, "ghost")
	assert.ErrorIs(t, err, ErrInvalidCommand)
	_, err = NewAddItem(nil, id)
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestAddItem_UndoClearsSelection(t *testing.T) {
	store := createTestStore(t, "main")
	id := addItem(t, store, "main", models.Layout{Width: 10, Height: 6})
	cmd, err := NewAddItem(store, id)
	require.NoError(t, err)

	require.True(t, store.SelectItem("main", id))
	cmd.Undo()
	selected, _ := store.Selection()
	assert.Empty(t, selected)
}

func TestDeleteItem_RestoresOriginalIndex(t *testing.T) {
	store := createTestStore(t, "main")
	ids := []string{
		addItem(t, store, "main", models.Layout{Width: 10, Height: 6}),
		addItem(t, store, "main", models.Layout{Y: 6, Width: 10, Height: 6}),
		addItem(t, store, "main", models.Layout{Y: 12, Width: 10, Height: 6}),
	}

	cmd, err := NewDeleteItem(store, ids[1])
	require.NoError(t, err)

	cmd.Redo()
	assert.Len(t, store.GetItems("main"), 2)

	cmd.Undo()
	items := store.GetItems("main")
	require.Len(t, items, 3)
	assert.Equal(t, ids[1], items[1].ID)

	cmd.Redo()
	assertInverse(t, store, cmd)
}

func TestDeleteItem_IndexFallbackAppends(t *testing.T) {
	store := createTestStore(t, "main")
	addItem(t, store, "main", models.Layout{Width: 10, Height: 6})
	last := addItem(t, store, "main", models.Layout{Y: 6, Width: 10, Height: 6})

	cmd, err := NewDeleteItem(store, last)
	require.NoError(t, err)
	cmd.Redo()
	store.DeleteItemsBatch([]string{"item-1"})

	cmd.Undo()
	items := store.GetItems("main")
	require.Len(t, items, 1)
	assert.Equal(t, last, items[0].ID)
}

func TestMoveItem_SameCanvas(t *testing.T) {
	store := createTestStore(t, "main")
	addItem(t, store, "main", models.Layout{Width: 10, Height: 6})
	id := addItem(t, store, "main", models.Layout{X: 0, Y: 6, Width: 10, Height: 6})

	before, _, _ := store.GetItem(id)
	to := models.Position{X: 20, Y: 30}
	newSize := models.Size{Width: 15, Height: 8}
	require.True(t, store.UpdateItem("main", id, state.ItemUpdate{Position: &to, Size: &newSize}))

	cmd, err := NewMoveItem(store, MoveSpec{
		ItemID:       id,
		FromCanvasID: "main",
		ToCanvasID:   "main",
		From:         models.Position{X: 0, Y: 6},
		To:           to,
		FromIndex:    1,
		FromZIndex:   before.ZIndex,
		ToZIndex:     before.ZIndex,
		FromSize:     &models.Size{Width: 10, Height: 6},
		ToSize:       &newSize,
	})
	require.NoError(t, err)
	assert.False(t, cmd.CrossCanvas())
	assertInverse(t, store, cmd)

	it, _, _ := store.GetItem(id)
	assert.Equal(t, before.Layouts.Desktop, it.Layouts.Desktop)
	assert.Equal(t, 1, store.ItemIndex("main", id))
}

func TestMoveItem_CrossCanvasRoundTrip(t *testing.T) {
	store := createTestStore(t, "a", "b")
	var ids []string
	for i := 0; i < 4; i++ {
		ids = append(ids, addItem(t, store, "a", models.Layout{Y: i * 6, Width: 10, Height: 6}))
	}
	target := ids[2]
	require.NotNil(t, store.SetItemZIndex("a", target, 5))

	from, _, _ := store.GetItem(target)
	require.Equal(t, 2, store.ItemIndex("a", target))
	require.Equal(t, 5, from.ZIndex)

	dest := models.Layout{X: 5, Y: 0, Width: 10, Height: 6}
	newZ, ok := store.MoveItemToCanvas("a", "b", target, &dest)
	require.True(t, ok)

	cmd, err := NewMoveItem(store, MoveSpec{
		ItemID:       target,
		FromCanvasID: "a",
		ToCanvasID:   "b",
		From:         models.Position{X: from.Layouts.Desktop.X, Y: from.Layouts.Desktop.Y},
		To:           models.Position{X: dest.X, Y: dest.Y},
		FromIndex:    2,
		FromZIndex:   5,
		ToZIndex:     newZ,
	})
	require.NoError(t, err)
	assert.True(t, cmd.CrossCanvas())

	cmd.Undo()
	it, canvasID, ok := store.GetItem(target)
	require.True(t, ok)
	assert.Equal(t, "a", canvasID)
	assert.Equal(t, "a", it.CanvasID)
	assert.Equal(t, 2, store.ItemIndex("a", target))
	assert.Equal(t, 5, it.ZIndex)
	assert.Equal(t, from.Layouts.Desktop, it.Layouts.Desktop)
	assert.Empty(t, store.GetItems("b"))

	cmd.Redo()
	it, canvasID, _ = store.GetItem(target)
	assert.Equal(t, "b", canvasID)
	assert.Equal(t, newZ, it.ZIndex)
	assert.Equal(t, dest, it.Layouts.Desktop)

	assertInverse(t, store, cmd)
}

func TestMoveItem_UndoFallsBackWhenTargetCanvasIsGone(t *testing.T) {
	store := createTestStore(t, "a", "b", "c")
	id := addItem(t, store, "a", models.Layout{Width: 10, Height: 6})
	_, ok := store.MoveItemToCanvas("a", "b", id, nil)
	require.True(t, ok)

	cmd, err := NewMoveItem(store, MoveSpec{ItemID: id, FromCanvasID: "a", ToCanvasID: "b", FromIndex: 0, FromZIndex: 1, ToZIndex: 1})
	require.NoError(t, err)

	// Something else moved the item to c in the meantime.
	_, ok = store.MoveItemToCanvas("b", "c", id, nil)
	require.True(t, ok)

	cmd.Undo()
	_, canvasID, _ := store.GetItem(id)
	assert.Equal(t, "a", canvasID)
}

func TestUpdateItem(t *testing.T) {
	store := createTestStore(t, "main")
	id := addItem(t, store, "main", models.Layout{Width: 10, Height: 6})

	old, _, _ := store.GetItem(id)
	update := state.ItemUpdate{Config: map[string]any{"content": "changed"}}
	require.True(t, store.UpdateItem("main", id, update))

	cmd, err := NewUpdateItem(store, old, update)
	require.NoError(t, err)
	assertInverse(t, store, cmd)

	it, _, _ := store.GetItem(id)
	assert.Equal(t, old.Config, it.Config)

	_, err = NewUpdateItem(store, models.GridItem{}, update)
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestBatchAdd(t *testing.T) {
	store := createTestStore(t, "main")
	ids := store.AddItemsBatch([]state.ItemSpec{
		{CanvasID: "main", Type: "text", Config: map[string]any{}},
		{CanvasID: "main", Type: "image", Config: map[string]any{}},
	})
	require.Len(t, ids, 2)

	cmd, err := NewBatchAdd(store, ids)
	require.NoError(t, err)
	assertInverse(t, store, cmd)
	assert.Empty(t, store.GetItems("main"))

	_, err = NewBatchAdd(store, nil)
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestBatchDelete(t *testing.T) {
	store := createTestStore(t, "main", "side")
	a := addItem(t, store, "main", models.Layout{Width: 10, Height: 6})
	b := addItem(t, store, "side", models.Layout{Width: 10, Height: 6})

	cmd, err := NewBatchDelete(store, []string{a, b})
	require.NoError(t, err)
	require.Equal(t, 2, store.DeleteItemsBatch([]string{a, b}))

	n := 0
	store.Subscribe(func() { n++ })
	assertInverse(t, store, cmd)
	// One commit per effective undo/redo; the repeated redo is a no-op.
	assert.Equal(t, 3, n)

	cmd.Undo()
	_, canvasID, ok := store.GetItem(b)
	require.True(t, ok)
	assert.Equal(t, "side", canvasID)
}

func TestBatchUpdateConfig(t *testing.T) {
	store := createTestStore(t, "main")
	a := addItem(t, store, "main", models.Layout{Width: 10, Height: 6})
	b := addItem(t, store, "main", models.Layout{Y: 6, Width: 10, Height: 6})

	var changes []ItemChange
	for _, id := range []string{a, b} {
		old, _, _ := store.GetItem(id)
		next := models.CloneItem(old)
		next.Config["content"] = "batch"
		changes = append(changes, ItemChange{Old: old, New: next})
	}
	store.ReplaceItemsBatch([]models.GridItem{changes[0].New, changes[1].New})

	cmd, err := NewBatchUpdateConfig(store, changes)
	require.NoError(t, err)
	assertInverse(t, store, cmd)

	_, err = NewBatchUpdateConfig(store, []ItemChange{{Old: changes[0].Old, New: changes[1].New}})
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestAddCanvas(t *testing.T) {
	store := createTestStore(t, "main")
	em := &fakeEmitter{}
	require.True(t, store.AddCanvas("extra"))

	cmd, err := NewAddCanvas(store, em, "extra")
	require.NoError(t, err)
	assertInverse(t, store, cmd)

	require.Len(t, em.events, 3)
	assert.Equal(t, events.CanvasRemoved, em.events[0].name)
	assert.Equal(t, events.CanvasAdded, em.events[1].name)
	assert.Equal(t, events.CanvasPayload{CanvasID: "extra"}, em.events[1].payload)
	assert.Equal(t, events.CanvasRemoved, em.events[2].name)
}

func TestRemoveCanvas_RestoresItemsAndZIndex(t *testing.T) {
	store := createTestStore(t, "main", "doomed")
	var before []models.GridItem
	for i := 0; i < 3; i++ {
		addItem(t, store, "doomed", models.Layout{Y: i * 6, Width: 10, Height: 6})
	}
	before = store.GetItems("doomed")
	counter, _ := store.GetCanvas("doomed")

	em := &fakeEmitter{}
	cmd, err := NewRemoveCanvas(store, em, "doomed")
	require.NoError(t, err)

	cmd.Redo()
	assert.False(t, store.HasCanvas("doomed"))

	cmd.Undo()
	after, ok := store.GetCanvas("doomed")
	require.True(t, ok)
	require.Len(t, after.Items, 3)
	for i := range before {
		assert.Equal(t, before[i].ZIndex, after.Items[i].ZIndex)
	}
	assert.Equal(t, counter.ZIndexCounter, after.ZIndexCounter)
	assert.Equal(t, []string{events.CanvasRemoved, events.CanvasAdded}, []string{em.events[0].name, em.events[1].name})

	_, err = NewRemoveCanvas(store, em, "ghost")
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestChangeZIndex(t *testing.T) {
	store := createTestStore(t, "main")
	a := addItem(t, store, "main", models.Layout{Width: 10, Height: 6})
	addItem(t, store, "main", models.Layout{Y: 6, Width: 10, Height: 6})

	t.Run("single change swaps payload on undo", func(t *testing.T) {
		ch := store.BringItemToFront("main", a)
		require.NotNil(t, ch)

		em := &fakeEmitter{}
		cmd, err := NewChangeZIndex(store, em, *ch)
		require.NoError(t, err)
		assertInverse(t, store, cmd)

		require.NotEmpty(t, em.events)
		undoPayload := em.events[0].payload.(models.ZIndexChange)
		assert.Equal(t, events.ZIndexChanged, em.events[0].name)
		assert.Equal(t, ch.NewZIndex, undoPayload.OldZIndex)
		assert.Equal(t, ch.OldZIndex, undoPayload.NewZIndex)
		redoPayload := em.events[1].payload.(models.ZIndexChange)
		assert.Equal(t, *ch, redoPayload)
	})

	t.Run("batch emits one event", func(t *testing.T) {
		items := store.GetItems("main")
		changes := []models.ZIndexChange{
			{ItemID: items[0].ID, CanvasID: "main", OldZIndex: items[0].ZIndex, NewZIndex: items[1].ZIndex},
			{ItemID: items[1].ID, CanvasID: "main", OldZIndex: items[1].ZIndex, NewZIndex: items[0].ZIndex},
		}
		em := &fakeEmitter{}
		cmd, err := NewChangeZIndex(store, em, changes...)
		require.NoError(t, err)

		cmd.Redo()
		require.Len(t, em.events, 1)
		assert.Equal(t, events.ZIndexBatchChanged, em.events[0].name)
		assertInverse(t, store, cmd)
	})

	_, err := NewChangeZIndex(store, nil)
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestCommandsThroughHistory(t *testing.T) {
	store := createTestStore(t, "main")
	history := undo.NewManager(undo.DefaultLimit)

	id := addItem(t, store, "main", models.Layout{Width: 10, Height: 6})
	cmd, err := NewAddItem(store, id)
	require.NoError(t, err)
	history.Push(cmd)

	del, err := NewDeleteItem(store, id)
	require.NoError(t, err)
	del.Redo()
	history.Push(del)

	assert.Empty(t, store.GetItems("main"))
	history.Undo()
	assert.Len(t, store.GetItems("main"), 1)
	history.Undo()
	assert.Empty(t, store.GetItems("main"))
	history.Redo()
	history.Redo()
	assert.Empty(t, store.GetItems("main"))
	assert.Equal(t, "delete text "+id, history.Entries()[1].Description)
}

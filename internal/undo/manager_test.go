package undo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCommand struct {
	name string
	log  *[]string
}

func (c *recordingCommand) Undo()               { *c.log = append(*c.log, "undo:"+c.name) }
func (c *recordingCommand) Redo()               { *c.log = append(*c.log, "redo:"+c.name) }
func (c *recordingCommand) Description() string { return c.name }

func newCommands(log *[]string, names ...string) []*recordingCommand {
	out := make([]*recordingCommand, len(names))
	for i, n := range names {
		out[i] = &recordingCommand{name: n, log: log}
	}
	return out
}

func TestManager_Empty(t *testing.T) {
	m := NewManager(0)
	assert.Equal(t, DefaultLimit, m.Limit())
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())
	assert.False(t, m.Undo())
	assert.False(t, m.Redo())
	assert.Equal(t, -1, m.Position())
}

func TestManager_UndoRedo(t *testing.T) {
	var log []string
	m := NewManager(10)
	cmds := newCommands(&log, "c1", "c2")
	for _, c := range cmds {
		m.Push(c)
	}

	assert.True(t, m.CanUndo())
	assert.False(t, m.CanRedo())

	require.True(t, m.Undo())
	assert.Equal(t, 0, m.Position())
	assert.True(t, m.CanRedo())

	require.True(t, m.Redo())
	assert.Equal(t, 1, m.Position())
	assert.False(t, m.Redo())

	assert.Equal(t, []string{"undo:c2", "redo:c2"}, log)
}

func TestManager_PushDiscardsRedoBranch(t *testing.T) {
	var log []string
	m := NewManager(10)
	for _, c := range newCommands(&log, "c1", "c2", "c3") {
		m.Push(c)
	}
	m.Undo()
	m.Undo()
	require.Equal(t, 0, m.Position())

	m.Push(&recordingCommand{name: "c4", log: &log})
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 1, m.Position())
	assert.False(t, m.CanRedo())

	entries := m.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "c1", entries[0].Description)
	assert.Equal(t, "c4", entries[1].Description)
	assert.True(t, entries[1].Applied)
}

func TestManager_BoundedHistory(t *testing.T) {
	var log []string
	m := NewManager(DefaultLimit)
	for i := 0; i < 60; i++ {
		m.Push(&recordingCommand{name: fmt.Sprintf("c%d", i), log: &log})
	}

	assert.Equal(t, 50, m.Len())
	assert.Equal(t, 49, m.Position())
	assert.True(t, m.CanUndo())
	assert.False(t, m.CanRedo())
	assert.Equal(t, "c10", m.Entries()[0].Description)

	undone := 0
	for m.Undo() {
		undone++
	}
	assert.Equal(t, 50, undone)
	assert.Equal(t, "undo:c10", log[len(log)-1])
}

func TestManager_ClearAndSubscribe(t *testing.T) {
	var log []string
	m := NewManager(5)
	var seen []Status
	unsubscribe := m.Subscribe(func(st Status) { seen = append(seen, st) })

	m.Push(&recordingCommand{name: "c1", log: &log})
	m.Undo()
	m.Clear()
	unsubscribe()
	m.Push(&recordingCommand{name: "c2", log: &log})

	require.Len(t, seen, 3)
	assert.Equal(t, Status{CanUndo: true, Position: 0, Length: 1}, seen[0])
	assert.Equal(t, Status{CanRedo: true, Position: -1, Length: 1}, seen[1])
	assert.Equal(t, Status{Position: -1, Length: 0}, seen[2])
}

func TestManager_PushNilIsIgnored(t *testing.T) {
	m := NewManager(5)
	m.Push(nil)
	assert.Equal(t, 0, m.Len())
}

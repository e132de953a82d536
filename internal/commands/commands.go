// Package commands holds the undoable operations pushed onto the builder's
// history.
//
// Commands are built after the state mutation they represent has happened,
// except DeleteItem and RemoveCanvas, which must be built before it because
// they snapshot data the mutation destroys.
package commands

import (
	"errors"
	"fmt"

	"github.com/grid-builder/backend/internal/state"
	"github.com/grid-builder/backend/internal/undo"
)

// ErrInvalidCommand is returned when a command cannot be built from its inputs.
var ErrInvalidCommand = errors.New("invalid command")

// Emitter is the event sink used by canvas and z-index commands.
type Emitter interface {
	Emit(name string, payload any)
}

var (
	_ undo.Command = (*AddItem)(nil)
	_ undo.Command = (*DeleteItem)(nil)
	_ undo.Command = (*MoveItem)(nil)
	_ undo.Command = (*UpdateItem)(nil)
	_ undo.Command = (*BatchAdd)(nil)
	_ undo.Command = (*BatchDelete)(nil)
	_ undo.Command = (*BatchUpdateConfig)(nil)
	_ undo.Command = (*AddCanvas)(nil)
	_ undo.Command = (*RemoveCanvas)(nil)
	_ undo.Command = (*ChangeZIndex)(nil)
)

type nopEmitter struct{}

func (nopEmitter) Emit(string, any) {}

func emitterOrNop(e Emitter) Emitter {
	if e == nil {
		return nopEmitter{}
	}
	return e
}

func requireStore(store *state.Manager) error {
	if store == nil {
		return fmt.Errorf("%w: nil store", ErrInvalidCommand)
	}
	return nil
}

// Package builder is the programmatic API of one page-builder instance. It
// composes the state store, the undo history, the event manager, the
// component registry and the grid geometry, and guarantees that every
// logical action ends in at most one history entry.
package builder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/geometry"
	"github.com/grid-builder/backend/internal/logging"
	"github.com/grid-builder/backend/internal/models"
	"github.com/grid-builder/backend/internal/registry"
	"github.com/grid-builder/backend/internal/state"
	"github.com/grid-builder/backend/internal/undo"
)

// DeleteContext is handed to the before-delete hook.
type DeleteContext struct {
	ItemID   string          `json:"itemId"`
	CanvasID string          `json:"canvasId"`
	Item     models.GridItem `json:"item"`
}

// BeforeDeleteHook is the single suspension point of a delete. Returning
// false, an error, or panicking cancels the delete with no state change.
type BeforeDeleteHook func(ctx context.Context, dc DeleteContext) (bool, error)

// Options configures a Builder. Zero values pick sensible defaults.
type Options struct {
	InstanceID   string
	Canvases     []string
	Initial      *models.GridState
	Registry     *registry.Registry
	HistoryLimit int
	Debounce     *events.DebouncePolicy
	SizeCache    *geometry.SizeCache
	Geometry     geometry.Config
	BeforeDelete BeforeDeleteHook
	Logger       logging.Logger
}

type emission struct {
	name    string
	payload any
	kind    emitKind
}

type emitKind int

const (
	emitDebounced emitKind = iota
	emitNow
	emitFlush
)

// Builder is safe for concurrent use. Logical actions are serialized; events
// raised during an action are delivered after it completes.
type Builder struct {
	id        string
	createdAt time.Time

	store    *state.Manager
	history  *undo.Manager
	events   *events.Manager
	registry *registry.Registry
	geo      *geometry.Converter

	beforeDelete BeforeDeleteHook
	logger       logging.Logger

	mu sync.Mutex

	pendMu    sync.Mutex
	pending   []emission
	updatedAt time.Time
}

// New creates a builder instance.
func New(opts Options) *Builder {
	id := opts.InstanceID
	if id == "" {
		id = uuid.New().String()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard{}
	}

	initial := opts.Initial
	if initial == nil && len(opts.Canvases) > 0 {
		s := models.NewGridState()
		for _, c := range opts.Canvases {
			s.Canvases[c] = models.NewCanvas()
		}
		initial = &s
	}

	reg := opts.Registry
	if reg == nil {
		reg = registry.NewDefault(logger)
	}
	policy := events.DefaultDebouncePolicy()
	if opts.Debounce != nil {
		policy = *opts.Debounce
	}
	geoCfg := opts.Geometry
	if geoCfg.VerticalUnitPx <= 0 {
		geoCfg = geometry.DefaultConfig()
	}

	now := time.Now()
	b := &Builder{
		id:           id,
		createdAt:    now,
		updatedAt:    now,
		store:        state.NewManager(state.Options{Initial: initial, Logger: logger}),
		history:      undo.NewManager(opts.HistoryLimit),
		events:       events.NewManager(policy, logger),
		registry:     reg,
		geo:          geometry.NewConverter(id, opts.SizeCache, geoCfg),
		beforeDelete: opts.BeforeDelete,
		logger:       logger,
	}
	b.store.Subscribe(func() {
		b.pendMu.Lock()
		b.updatedAt = time.Now()
		b.pendMu.Unlock()
		b.queue(events.StateChanged, nil)
	})
	return b
}

// ID returns the instance id.
func (b *Builder) ID() string { return b.id }

// CreatedAt returns when the instance was created.
func (b *Builder) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the time of the last state change.
func (b *Builder) UpdatedAt() time.Time {
	b.pendMu.Lock()
	defer b.pendMu.Unlock()
	return b.updatedAt
}

// Registry returns the component registry in use.
func (b *Builder) Registry() *registry.Registry { return b.registry }

// On subscribes to an event. Use events.Wildcard for everything.
func (b *Builder) On(name string, fn events.Handler) events.HandlerID {
	return b.events.On(name, fn)
}

// Off removes a subscription.
func (b *Builder) Off(name string, id events.HandlerID) {
	b.events.Off(name, id)
}

// Close stops pending debounced events and releases cached container widths.
func (b *Builder) Close() {
	b.events.Close()
	b.geo.Release()
}

// GetState returns a deep copy of the whole state.
func (b *Builder) GetState() models.GridState { return b.store.Snapshot() }

// GetItem returns a copy of an item.
func (b *Builder) GetItem(itemID string) (models.GridItem, bool) {
	it, _, ok := b.store.GetItem(itemID)
	return it, ok
}

// GetItems returns copies of a canvas's items.
func (b *Builder) GetItems(canvasID string) []models.GridItem {
	return b.store.GetItems(canvasID)
}

// Counts returns the number of canvases and items.
func (b *Builder) Counts() (canvases, items int) {
	s := b.store.Snapshot()
	for _, c := range s.Canvases {
		items += len(c.Items)
	}
	return len(s.Canvases), items
}

func (b *Builder) lock() { b.mu.Lock() }

// unlock releases the action lock and then delivers queued events, so
// handlers may call back into the builder.
func (b *Builder) unlock() {
	b.mu.Unlock()

	b.pendMu.Lock()
	pending := b.pending
	b.pending = nil
	b.pendMu.Unlock()

	for _, e := range pending {
		switch e.kind {
		case emitNow:
			b.events.EmitNow(e.name, e.payload)
		case emitFlush:
			b.events.Flush(e.name)
		default:
			b.events.Emit(e.name, e.payload)
		}
	}
}

func (b *Builder) enqueue(e emission) {
	b.pendMu.Lock()
	b.pending = append(b.pending, e)
	b.pendMu.Unlock()
}

func (b *Builder) queue(name string, payload any) {
	b.enqueue(emission{name: name, payload: payload})
}

func (b *Builder) queueNow(name string, payload any) {
	b.enqueue(emission{name: name, payload: payload, kind: emitNow})
}

func (b *Builder) queueFlush(name string) {
	b.enqueue(emission{name: name, kind: emitFlush})
}

// queueEmitter lets commands raise events that are delivered after the
// current action releases the lock.
type queueEmitter struct{ b *Builder }

func (q queueEmitter) Emit(name string, payload any) { q.b.queue(name, payload) }

func (b *Builder) push(cmd undo.Command) {
	b.history.Push(cmd)
	b.queue(events.HistoryChanged, b.history.Status())
}

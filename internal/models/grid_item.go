// Package models contains the data types of the grid builder: items, canvases,
// whole-builder state and the export document.
package models

// Canvas geometry limits, in grid units.
const (
	// CanvasGridWidth is the fixed canvas width. 50 units = 100% of the container.
	CanvasGridWidth = 50
	// MaxItemHeight is the tallest a desktop layout may be.
	MaxItemHeight = 100
)

// Viewport selects which layout of an item is being edited.
type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportMobile  Viewport = "mobile"
)

// Valid reports whether v is one of the known viewports.
func (v Viewport) Valid() bool {
	return v == ViewportDesktop || v == ViewportMobile
}

// Layout is a fully populated rectangle in grid units.
type Layout struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the exclusive right edge.
func (l Layout) Right() int { return l.X + l.Width }

// Bottom returns the exclusive bottom edge.
func (l Layout) Bottom() int { return l.Y + l.Height }

// Overlaps reports whether two rectangles share any area.
func (l Layout) Overlaps(o Layout) bool {
	return l.X < o.Right() && o.X < l.Right() && l.Y < o.Bottom() && o.Y < l.Bottom()
}

// MobileLayout holds the mobile rectangle. When Customized is false the
// positional fields are ignored and the layout is derived from desktop.
type MobileLayout struct {
	X          *int `json:"x"`
	Y          *int `json:"y"`
	Width      *int `json:"width"`
	Height     *int `json:"height"`
	Customized bool `json:"customized"`
}

// Layouts groups the per-viewport rectangles of an item.
type Layouts struct {
	Desktop Layout       `json:"desktop"`
	Mobile  MobileLayout `json:"mobile"`
}

// GridItem is one placed component instance.
type GridItem struct {
	ID       string         `json:"id"`
	CanvasID string         `json:"canvasId"`
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	Layouts  Layouts        `json:"layouts"`
	ZIndex   int            `json:"zIndex"`
	Config   map[string]any `json:"config"`
}

// Position is an x/y pair in grid units.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width/height pair in grid units.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ZIndexChange describes a single z-index transition of one item.
type ZIndexChange struct {
	ItemID    string `json:"itemId"`
	CanvasID  string `json:"canvasId"`
	OldZIndex int    `json:"oldZIndex"`
	NewZIndex int    `json:"newZIndex"`
}

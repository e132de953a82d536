package geometry

import (
	"testing"

	"github.com/grid-builder/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intSize(w, h int) *models.Size {
	return &models.Size{Width: w, Height: h}
}

func TestGridPixelConversion(t *testing.T) {
	t.Run("horizontal round trip", func(t *testing.T) {
		px := GridToPixelsX(25, 1000)
		assert.InDelta(t, 500.0, px, 1e-9)
		assert.InDelta(t, 25.0, PixelsToGridX(px, 1000), 1e-9)
	})

	t.Run("vertical uses default unit", func(t *testing.T) {
		assert.InDelta(t, 120.0, GridToPixelsY(6, Config{}), 1e-9)
		assert.InDelta(t, 6.0, PixelsToGridY(120, Config{}), 1e-9)
	})

	t.Run("vertical honors override", func(t *testing.T) {
		cfg := Config{VerticalUnitPx: 10}
		assert.InDelta(t, 60.0, GridToPixelsY(6, cfg), 1e-9)
	})

	t.Run("zero width never divides", func(t *testing.T) {
		assert.Equal(t, 0.0, PixelsToGridX(300, 0))
	})

	t.Run("layout to pixel rect", func(t *testing.T) {
		r := LayoutToPixelRect(models.Layout{X: 10, Y: 2, Width: 20, Height: 5}, 500, DefaultConfig())
		assert.Equal(t, Rect{X: 100, Y: 40, Width: 200, Height: 100}, r)
	})

	t.Run("snap rounds to nearest unit", func(t *testing.T) {
		pos := SnapToGrid(104, 31, 1000, DefaultConfig())
		assert.Equal(t, models.Position{X: 5, Y: 2}, pos)
	})
}

func TestSizeCache(t *testing.T) {
	t.Run("rejects transient widths and keeps previous", func(t *testing.T) {
		c := NewSizeCache()
		require.True(t, c.Observe("a", "c1", 800))
		assert.False(t, c.Observe("a", "c1", 0))
		assert.False(t, c.Observe("a", "c1", 99))

		w, ok := c.Width("a", "c1")
		require.True(t, ok)
		assert.Equal(t, 800.0, w)
	})

	t.Run("keys are scoped by instance", func(t *testing.T) {
		c := NewSizeCache()
		c.Observe("a", "c1", 800)
		c.Observe("b", "c1", 400)

		wa, _ := c.Width("a", "c1")
		wb, _ := c.Width("b", "c1")
		assert.Equal(t, 800.0, wa)
		assert.Equal(t, 400.0, wb)

		c.InvalidateInstance("a")
		_, ok := c.Width("a", "c1")
		assert.False(t, ok)
		_, ok = c.Width("b", "c1")
		assert.True(t, ok)
	})

	t.Run("converter defers until measured", func(t *testing.T) {
		conv := NewConverter("a", nil, DefaultConfig())
		_, ok := conv.GridToPixelsX("c1", 10)
		assert.False(t, ok)

		conv.Observe("c1", 1000)
		px, ok := conv.GridToPixelsX("c1", 10)
		require.True(t, ok)
		assert.Equal(t, 200.0, px)

		conv.Invalidate("c1")
		_, ok = conv.PixelRect("c1", models.Layout{Width: 1, Height: 1})
		assert.False(t, ok)
	})
}

func TestCanComponentFitCanvas(t *testing.T) {
	assert.True(t, CanComponentFitCanvas(models.ComponentDefinition{}, 50))
	assert.True(t, CanComponentFitCanvas(models.ComponentDefinition{MinSize: intSize(50, 500)}, 50))
	assert.False(t, CanComponentFitCanvas(models.ComponentDefinition{MinSize: intSize(51, 1)}, 50))
	assert.False(t, CanComponentFitCanvas(models.ComponentDefinition{MinSize: intSize(51, 1)}, 0))
}

func TestConstrainSizeToCanvas(t *testing.T) {
	tests := []struct {
		name string
		def  models.ComponentDefinition
		want SizeResult
	}{
		{
			name: "fits unchanged",
			def:  models.ComponentDefinition{DefaultSize: models.Size{Width: 20, Height: 6}},
			want: SizeResult{Width: 20, Height: 6},
		},
		{
			name: "wider than canvas shrinks",
			def:  models.ComponentDefinition{DefaultSize: models.Size{Width: 80, Height: 6}},
			want: SizeResult{Width: 50, Height: 6, WasAdjusted: true},
		},
		{
			name: "below min grows",
			def: models.ComponentDefinition{
				DefaultSize: models.Size{Width: 4, Height: 2},
				MinSize:     intSize(10, 3),
			},
			want: SizeResult{Width: 10, Height: 3, WasAdjusted: true},
		},
		{
			name: "above max shrinks",
			def: models.ComponentDefinition{
				DefaultSize: models.Size{Width: 40, Height: 90},
				MaxSize:     intSize(30, 40),
			},
			want: SizeResult{Width: 30, Height: 40, WasAdjusted: true},
		},
		{
			name: "height never clamped against canvas",
			def:  models.ComponentDefinition{DefaultSize: models.Size{Width: 10, Height: 400}},
			want: SizeResult{Width: 10, Height: 400},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConstrainSizeToCanvas(tt.def, 50))
		})
	}
}

func TestConstrainPositionToCanvas(t *testing.T) {
	t.Run("clamps right edge", func(t *testing.T) {
		p := ConstrainPositionToCanvas(45, 0, 20, 6, 50)
		assert.Equal(t, 30, p.X)
		assert.True(t, p.PositionAdjusted)
		assert.False(t, p.SizeAdjusted)
	})

	t.Run("clamps negatives", func(t *testing.T) {
		p := ConstrainPositionToCanvas(-3, -7, 10, 6, 50)
		assert.Equal(t, 0, p.X)
		assert.Equal(t, 0, p.Y)
		assert.True(t, p.PositionAdjusted)
	})

	t.Run("no bottom bound", func(t *testing.T) {
		p := ConstrainPositionToCanvas(0, 5000, 10, 6, 50)
		assert.Equal(t, 5000, p.Y)
		assert.False(t, p.PositionAdjusted)
	})

	t.Run("idempotent", func(t *testing.T) {
		cases := [][4]int{{45, 0, 20, 6}, {-5, -5, 10, 10}, {0, 0, 50, 1}, {49, 3, 1, 1}, {60, 2, 60, 2}}
		for _, c := range cases {
			first := ConstrainPositionToCanvas(c[0], c[1], c[2], c[3], 50)
			second := ConstrainPositionToCanvas(first.X, first.Y, c[2], c[3], 50)
			assert.Equal(t, first.X, second.X)
			assert.Equal(t, first.Y, second.Y)
			assert.False(t, second.PositionAdjusted)
		}
	})
}

func TestApplyBoundaryConstraints(t *testing.T) {
	t.Run("header dropped past the right edge", func(t *testing.T) {
		def := models.ComponentDefinition{
			Type:        "header",
			DefaultSize: models.Size{Width: 20, Height: 6},
			MinSize:     intSize(10, 1),
		}
		p := ApplyBoundaryConstraints(def, 45, 0, 50)
		require.NotNil(t, p)
		assert.Equal(t, models.Layout{X: 30, Y: 0, Width: 20, Height: 6}, p.Layout())
		assert.True(t, p.PositionAdjusted)
		assert.False(t, p.SizeAdjusted)
	})

	t.Run("rejects components that cannot fit", func(t *testing.T) {
		def := models.ComponentDefinition{DefaultSize: models.Size{Width: 60, Height: 6}, MinSize: intSize(60, 1)}
		assert.Nil(t, ApplyBoundaryConstraints(def, 0, 0, 50))
	})

	t.Run("merges size flag", func(t *testing.T) {
		def := models.ComponentDefinition{DefaultSize: models.Size{Width: 70, Height: 6}}
		p := ApplyBoundaryConstraints(def, 10, 0, 50)
		require.NotNil(t, p)
		assert.Equal(t, 0, p.X)
		assert.Equal(t, 50, p.Width)
		assert.True(t, p.SizeAdjusted)
		assert.True(t, p.PositionAdjusted)
	})
}

func TestFindFreeSpace(t *testing.T) {
	t.Run("empty canvas uses origin", func(t *testing.T) {
		assert.Equal(t, models.Position{}, FindFreeSpace(nil, 10, 5, 50))
	})

	t.Run("fills row to the right", func(t *testing.T) {
		occupied := []models.Layout{{X: 0, Y: 0, Width: 20, Height: 5}}
		assert.Equal(t, models.Position{X: 20, Y: 0}, FindFreeSpace(occupied, 10, 5, 50))
	})

	t.Run("finds a gap between items", func(t *testing.T) {
		occupied := []models.Layout{
			{X: 0, Y: 0, Width: 50, Height: 4},
			{X: 0, Y: 4, Width: 10, Height: 4},
			{X: 30, Y: 4, Width: 20, Height: 4},
		}
		assert.Equal(t, models.Position{X: 10, Y: 4}, FindFreeSpace(occupied, 20, 4, 50))
	})

	t.Run("falls back below lowest item", func(t *testing.T) {
		occupied := []models.Layout{
			{X: 0, Y: 0, Width: 50, Height: 4},
			{X: 0, Y: 4, Width: 50, Height: 9},
		}
		assert.Equal(t, models.Position{X: 0, Y: 13}, FindFreeSpace(occupied, 10, 2, 50))
	})

	t.Run("result never overlaps", func(t *testing.T) {
		occupied := []models.Layout{
			{X: 5, Y: 0, Width: 10, Height: 3},
			{X: 20, Y: 1, Width: 25, Height: 6},
			{X: 0, Y: 5, Width: 12, Height: 2},
		}
		pos := FindFreeSpace(occupied, 8, 3, 50)
		candidate := models.Layout{X: pos.X, Y: pos.Y, Width: 8, Height: 3}
		for _, r := range occupied {
			assert.False(t, candidate.Overlaps(r), "overlaps %+v", r)
		}
	})
}

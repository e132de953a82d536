package state

import (
	"fmt"

	"github.com/grid-builder/backend/internal/models"
)

// ValidateItem returns the layout problems of an item. Problems are reported,
// never enforced: the store keeps whatever it is given.
func ValidateItem(it models.GridItem) []string {
	var problems []string
	if it.ID == "" {
		problems = append(problems, "empty id")
	}
	if it.CanvasID == "" {
		problems = append(problems, "empty canvas id")
	}
	if it.Type == "" {
		problems = append(problems, "empty type")
	}
	d := it.Layouts.Desktop
	if d.X < 0 || d.Y < 0 {
		problems = append(problems, fmt.Sprintf("negative position (%d,%d)", d.X, d.Y))
	}
	if d.Width < 1 || d.Height < 1 {
		problems = append(problems, fmt.Sprintf("non-positive size %dx%d", d.Width, d.Height))
	}
	if d.Right() > models.CanvasGridWidth {
		problems = append(problems, fmt.Sprintf("right edge %d exceeds canvas width %d", d.Right(), models.CanvasGridWidth))
	}
	if d.Height > models.MaxItemHeight {
		problems = append(problems, fmt.Sprintf("height %d exceeds %d", d.Height, models.MaxItemHeight))
	}
	return problems
}

func (m *Manager) warnInvalid(op string, it models.GridItem) {
	for _, p := range ValidateItem(it) {
		m.logger.Warnf("%s: item %s: %s", op, it.ID, p)
	}
}

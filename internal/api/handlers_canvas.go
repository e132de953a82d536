// handlers_canvas.go - Canvas, history handlers
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// HandleAddCanvas creates an empty canvas as an undoable action.
func (h *Handler) HandleAddCanvas(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	var req struct {
		CanvasID string `json:"canvasId"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.CanvasID) == "" {
		return NewValidationError("canvasId")
	}
	if !b.AddCanvas(req.CanvasID) {
		return NewConflictError("canvas already exists: " + req.CanvasID)
	}
	return c.JSON(http.StatusCreated, ActionResponse{OK: true, History: b.HistoryStatus()})
}

// HandleRemoveCanvas deletes a canvas and its items as an undoable action.
func (h *Handler) HandleRemoveCanvas(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	canvasID := c.Param("canvasId")
	if !b.RemoveCanvas(canvasID) {
		return NewNotFoundError("canvas", canvasID)
	}
	return respondAction(c, b, true)
}

// HandleActivateCanvas focuses a canvas for click-to-add.
func (h *Handler) HandleActivateCanvas(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	canvasID := c.Param("canvasId")
	if !hasCanvas(b, canvasID) {
		return NewNotFoundError("canvas", canvasID)
	}
	ok := b.SetActiveCanvas(canvasID)
	return respondAction(c, b, ok)
}

// HandleSetCanvasWidth records the measured container width of a canvas.
func (h *Handler) HandleSetCanvasWidth(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	canvasID := c.Param("canvasId")
	if !hasCanvas(b, canvasID) {
		return NewNotFoundError("canvas", canvasID)
	}
	var req struct {
		WidthPx float64 `json:"widthPx"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.WidthPx <= 0 {
		b.InvalidateContainerWidth(canvasID)
		return c.JSON(http.StatusOK, map[string]bool{"accepted": false})
	}
	return c.JSON(http.StatusOK, map[string]bool{"accepted": b.ObserveContainerWidth(canvasID, req.WidthPx)})
}

// HandleUndo reverts the last action.
func (h *Handler) HandleUndo(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	return respondAction(c, b, b.Undo())
}

// HandleRedo re-applies the next action.
func (h *Handler) HandleRedo(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	return respondAction(c, b, b.Redo())
}

// HandleGetHistory lists the recorded actions.
func (h *Handler) HandleGetHistory(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  b.HistoryStatus(),
		"entries": b.History(),
	})
}

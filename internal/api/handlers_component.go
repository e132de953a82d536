// handlers_component.go - Component (grid item) handlers
package api

import (
	"net/http"
	"strings"

	"github.com/grid-builder/backend/internal/builder"
	"github.com/grid-builder/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// AddComponentRequest is the body of POST /components.
type AddComponentRequest struct {
	CanvasID  string                    `json:"canvasId"`
	Type      string                    `json:"type"`
	Placement *builder.PlacementRequest `json:"placement,omitempty"`
	Config    map[string]interface{}    `json:"config,omitempty"`
}

// ItemIDsRequest carries a list of item IDs.
type ItemIDsRequest struct {
	ItemIDs []string `json:"itemIds"`
}

// MoveRequest is the body of POST /components/:itemId/move.
type MoveRequest struct {
	CanvasID string `json:"canvasId"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// ResizeRequest is the body of POST /components/:itemId/resize. X and Y,
// when both set, move the top-left corner too.
type ResizeRequest struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	X      *int `json:"x,omitempty"`
	Y      *int `json:"y,omitempty"`
}

// ZOrderRequest is the body of POST /components/:itemId/zorder.
type ZOrderRequest struct {
	Op builder.ZOrderOp `json:"op"`
}

// ReorderRequest is the body of POST /layers/reorder.
type ReorderRequest struct {
	CanvasID string   `json:"canvasId"`
	ItemIDs  []string `json:"itemIds"`
}

// HandleListComponentTypes returns the component registry.
func (h *Handler) HandleListComponentTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.Registry().List())
}

// HandleAddComponent adds one component, either dropped at a placement or
// placed in the first free spot. Without a canvasId it targets the active
// canvas.
func (h *Handler) HandleAddComponent(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	var req AddComponentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Type) == "" {
		return NewValidationError("type")
	}
	if req.CanvasID == "" {
		req.CanvasID = targetCanvas(b)
	}
	if !hasCanvas(b, req.CanvasID) {
		return NewNotFoundError("canvas", req.CanvasID)
	}

	id, ok := b.AddComponent(req.CanvasID, req.Type, req.Placement, req.Config)
	if !ok {
		return NewConflictError("component does not fit the canvas")
	}
	return c.JSON(http.StatusCreated, ActionResponse{OK: true, ItemID: id, History: b.HistoryStatus()})
}

// HandleAddComponentsBatch adds several components as one undo step.
func (h *Handler) HandleAddComponentsBatch(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	var req struct {
		Components []builder.ComponentSpec `json:"components"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	if len(req.Components) == 0 {
		return NewValidationError("components")
	}

	ids := b.AddComponentsBatch(req.Components)
	return c.JSON(http.StatusOK, ActionResponse{OK: len(ids) > 0, ItemIDs: ids, Count: len(ids), History: b.HistoryStatus()})
}

// HandleDeleteComponent deletes one item. The request context is handed to
// the before-delete hook, so a dropped client cancels the delete.
func (h *Handler) HandleDeleteComponent(c echo.Context) error {
	b, itemID, err := h.itemFor(c)
	if err != nil {
		return err
	}
	ok := b.DeleteComponent(c.Request().Context(), itemID)
	return respondAction(c, b, ok)
}

// HandleDeleteComponentsBatch deletes several items as one undo step.
func (h *Handler) HandleDeleteComponentsBatch(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	var req ItemIDsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if len(req.ItemIDs) == 0 {
		return NewValidationError("itemIds")
	}
	ok := b.DeleteComponentsBatch(c.Request().Context(), req.ItemIDs)
	return respondAction(c, b, ok)
}

// HandleUpdateConfig shallow-merges a partial config. JSON null removes a key.
func (h *Handler) HandleUpdateConfig(c echo.Context) error {
	b, itemID, err := h.itemFor(c)
	if err != nil {
		return err
	}
	var req struct {
		Name   *string                `json:"name,omitempty"`
		Config map[string]interface{} `json:"config"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}

	var partial map[string]interface{}
	if len(req.Config) > 0 {
		partial = req.Config
	}
	return respondAction(c, b, b.UpdateItem(itemID, req.Name, partial))
}

// HandleUpdateConfigsBatch merges several partial configs as one undo step.
func (h *Handler) HandleUpdateConfigsBatch(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	var req struct {
		Updates []builder.ConfigUpdate `json:"updates"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	if len(req.Updates) == 0 {
		return NewValidationError("updates")
	}
	n := b.UpdateConfigsBatch(req.Updates)
	return c.JSON(http.StatusOK, ActionResponse{OK: n > 0, Count: n, History: b.HistoryStatus()})
}

// HandleMoveComponent commits a drag, optionally onto another canvas.
func (h *Handler) HandleMoveComponent(c echo.Context) error {
	b, itemID, err := h.itemFor(c)
	if err != nil {
		return err
	}
	var req MoveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.CanvasID != "" && !hasCanvas(b, req.CanvasID) {
		return NewNotFoundError("canvas", req.CanvasID)
	}
	ok := b.MoveComponent(itemID, req.CanvasID, req.X, req.Y)
	return respondAction(c, b, ok)
}

// HandleResizeComponent commits a resize.
func (h *Handler) HandleResizeComponent(c echo.Context) error {
	b, itemID, err := h.itemFor(c)
	if err != nil {
		return err
	}
	var req ResizeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Width <= 0 {
		return NewValidationError("width")
	}
	if req.Height <= 0 {
		return NewValidationError("height")
	}

	var ok bool
	if req.X != nil && req.Y != nil {
		ok = b.SetComponentBounds(itemID, models.Layout{X: *req.X, Y: *req.Y, Width: req.Width, Height: req.Height})
	} else {
		ok = b.ResizeComponent(itemID, req.Width, req.Height)
	}
	return respondAction(c, b, ok)
}

// HandleChangeZOrder applies front/back/forward/backward.
func (h *Handler) HandleChangeZOrder(c echo.Context) error {
	b, itemID, err := h.itemFor(c)
	if err != nil {
		return err
	}
	var req ZOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if !req.Op.Valid() {
		return NewValidationError("op")
	}
	ok := b.ChangeZOrder(itemID, req.Op)
	return respondAction(c, b, ok)
}

// HandleReorderLayers restacks a canvas from a topmost-first id list.
func (h *Handler) HandleReorderLayers(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	var req ReorderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if !hasCanvas(b, req.CanvasID) {
		return NewNotFoundError("canvas", req.CanvasID)
	}
	ok := b.ReorderLayers(req.CanvasID, req.ItemIDs)
	return respondAction(c, b, ok)
}

// HandleGetComponentRect returns an item's rectangle in pixels. It answers
// 409 until the client has reported the canvas width.
func (h *Handler) HandleGetComponentRect(c echo.Context) error {
	b, itemID, err := h.itemFor(c)
	if err != nil {
		return err
	}
	rect, ok := b.ItemPixelRect(itemID)
	if !ok {
		return NewConflictError("canvas width not reported yet")
	}
	return c.JSON(http.StatusOK, rect)
}

// targetCanvas is the active canvas, or the first one when none is focused.
func targetCanvas(b *builder.Builder) string {
	if id := b.ActiveCanvas(); id != "" {
		return id
	}
	if ids := b.CanvasIDs(); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

func hasCanvas(b *builder.Builder, canvasID string) bool {
	if canvasID == "" {
		return false
	}
	for _, id := range b.CanvasIDs() {
		if id == canvasID {
			return true
		}
	}
	return false
}

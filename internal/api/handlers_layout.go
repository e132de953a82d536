// handlers_layout.go - Export/import and saved layout handlers
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/grid-builder/backend/internal/builder"
	"github.com/grid-builder/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const mimeMsgpack = "application/msgpack"

// SaveLayoutRequest is the body of POST /sessions/:id/layouts.
type SaveLayoutRequest struct {
	Name string `json:"name"`
}

// UpdateLayoutRequest is the body of PUT /layouts/:layoutId. Either field
// may be omitted.
type UpdateLayoutRequest struct {
	Name   *string             `json:"name,omitempty"`
	Layout *models.ExportState `json:"layout,omitempty"`
}

// HandleExport returns the export document as JSON, or msgpack with
// ?format=msgpack.
func (h *Handler) HandleExport(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}

	if c.QueryParam("format") == "msgpack" {
		data, err := b.ExportMsgpack()
		if err != nil {
			return NewInternalError("failed to encode msgpack", err)
		}
		return c.Blob(http.StatusOK, mimeMsgpack, data)
	}
	return c.JSON(http.StatusOK, b.Export())
}

// HandleImport replaces the session state. The body is an export document or
// a raw state, as JSON or (Content-Type application/msgpack) msgpack.
func (h *Handler) HandleImport(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewBadRequestError("failed to read body", err)
	}
	if len(data) == 0 {
		return NewValidationError("body")
	}

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), mimeMsgpack) {
		err = b.ImportMsgpack(data)
	} else {
		err = b.Import(data)
	}
	if err != nil {
		if errors.Is(err, builder.ErrUnknownFormat) {
			return NewBadRequestError("unrecognized layout document", nil)
		}
		return NewBadRequestError("invalid layout document", err)
	}
	return respondAction(c, b, true)
}

// HandleSaveLayout stores the session's current export under a name.
func (h *Handler) HandleSaveLayout(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	var req SaveLayoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Name) == "" {
		return NewValidationError("name")
	}

	info, err := h.store.Save(req.Name, b.Export())
	if err != nil {
		return storageError(err, "")
	}
	h.log.Infof("saved layout %s (%d items)", info.ID, info.ItemCount)
	return c.JSON(http.StatusCreated, info)
}

// HandleLoadLayout imports a saved layout into the session.
func (h *Handler) HandleLoadLayout(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	layoutID := c.Param("layoutId")
	doc, err := h.store.Load(layoutID)
	if err != nil {
		return storageError(err, layoutID)
	}
	b.ImportState(doc)
	return respondAction(c, b, true)
}

// HandleListLayouts returns saved layouts, newest first.
func (h *Handler) HandleListLayouts(c echo.Context) error {
	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return NewValidationError("limit")
		}
		limit = n
	}
	list, err := h.store.List(limit)
	if err != nil {
		return storageError(err, "")
	}
	return c.JSON(http.StatusOK, list)
}

// HandleGetLayout returns a saved layout's metadata, or the document itself
// with ?include=layout.
func (h *Handler) HandleGetLayout(c echo.Context) error {
	layoutID := c.Param("layoutId")
	info, err := h.store.Get(layoutID)
	if err != nil {
		return storageError(err, layoutID)
	}
	if c.QueryParam("include") != "layout" {
		return c.JSON(http.StatusOK, info)
	}
	doc, err := h.store.Load(layoutID)
	if err != nil {
		return storageError(err, layoutID)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"info": info, "layout": doc})
}

// HandleUpdateLayout renames a layout and/or replaces its document.
func (h *Handler) HandleUpdateLayout(c echo.Context) error {
	layoutID := c.Param("layoutId")
	var req UpdateLayoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Name == nil && req.Layout == nil {
		return NewValidationError("name")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return NewValidationError("name")
	}

	info, err := h.store.Get(layoutID)
	if err != nil {
		return storageError(err, layoutID)
	}
	if req.Layout != nil {
		if info, err = h.store.Update(layoutID, *req.Layout); err != nil {
			return storageError(err, layoutID)
		}
	}
	if req.Name != nil {
		if info, err = h.store.Rename(layoutID, *req.Name); err != nil {
			return storageError(err, layoutID)
		}
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDeleteLayout removes a saved layout.
func (h *Handler) HandleDeleteLayout(c echo.Context) error {
	layoutID := c.Param("layoutId")
	if err := h.store.Delete(layoutID); err != nil {
		return storageError(err, layoutID)
	}
	return c.NoContent(http.StatusNoContent)
}

package api

import (
	"net/http"
	"strings"

	"github.com/grid-builder/backend/internal/builder"
	"github.com/grid-builder/backend/internal/logging"
	"github.com/grid-builder/backend/internal/storage"
	"github.com/grid-builder/backend/internal/undo"
	"github.com/labstack/echo/v4"
)

// Handler handles API requests.
type Handler struct {
	store    storage.LayoutStore
	sessions SessionManager
	log      logging.Logger
}

// NewHandler creates a new API handler.
func NewHandler(store storage.LayoutStore, sessions SessionManager, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard{}
	}
	return &Handler{
		store:    store,
		sessions: sessions,
		log:      logger,
	}
}

// ActionResponse is returned by every mutating endpoint. OK is false when
// the builder treated the request as a no-op.
type ActionResponse struct {
	OK      bool        `json:"ok"`
	ItemID  string      `json:"itemId,omitempty"`
	ItemIDs []string    `json:"itemIds,omitempty"`
	Count   int         `json:"count,omitempty"`
	History undo.Status `json:"history"`
}

func respondAction(c echo.Context, b *builder.Builder, ok bool) error {
	return c.JSON(http.StatusOK, ActionResponse{OK: ok, History: b.HistoryStatus()})
}

// builderFor resolves the :id session and marks it as used.
func (h *Handler) builderFor(c echo.Context) (*builder.Builder, error) {
	id := c.Param("id")
	b, ok := h.sessions.GetBuilder(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	return b, nil
}

// itemFor resolves :id and :itemId, failing with 404 when either is unknown.
func (h *Handler) itemFor(c echo.Context) (*builder.Builder, string, error) {
	b, err := h.builderFor(c)
	if err != nil {
		return nil, "", err
	}
	itemID := c.Param("itemId")
	if _, ok := b.GetItem(itemID); !ok {
		return nil, "", NewNotFoundError("component", itemID)
	}
	return b, itemID, nil
}

func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	return nil
}

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	Name     string   `json:"name"`
	Canvases []string `json:"canvases"`
}

// HandleCreateSession starts a new builder instance.
func (h *Handler) HandleCreateSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	for _, id := range req.Canvases {
		if strings.TrimSpace(id) == "" {
			return NewValidationError("canvases")
		}
	}

	sess, err := h.sessions.StartSession(req.Name, req.Canvases)
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(http.StatusCreated, sess)
}

// HandleListSessions lists live sessions.
func (h *Handler) HandleListSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.ListSessions())
}

// HandleGetSession returns session metadata.
func (h *Handler) HandleGetSession(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessions.GetSession(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleDeleteSession closes a session.
func (h *Handler) HandleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	if !h.sessions.DeleteSession(id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSessionKeepAlive allows clients to explicitly keep a session alive
// while the user is looking at the page without editing.
func (h *Handler) HandleSessionKeepAlive(c echo.Context) error {
	id := c.Param("id")
	if !h.sessions.TouchSession(id) {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleGetState returns a deep copy of the whole grid state.
func (h *Handler) HandleGetState(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b.GetState())
}

// HandleReset restores the session's initial canvases and clears history.
func (h *Handler) HandleReset(c echo.Context) error {
	b, err := h.builderFor(c)
	if err != nil {
		return err
	}
	b.Reset()
	return respondAction(c, b, true)
}

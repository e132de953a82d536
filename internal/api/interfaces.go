// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/grid-builder/backend/internal/builder"
	"github.com/grid-builder/backend/internal/models"
	"github.com/grid-builder/backend/internal/registry"
	"github.com/labstack/echo/v4"
)

// SessionHandler handles builder session lifecycle
type SessionHandler interface {
	HandleCreateSession(c echo.Context) error
	HandleListSessions(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleDeleteSession(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error
	HandleGetState(c echo.Context) error
	HandleReset(c echo.Context) error
}

// ComponentHandler handles item operations on a session's canvases
type ComponentHandler interface {
	HandleListComponentTypes(c echo.Context) error
	HandleAddComponent(c echo.Context) error
	HandleAddComponentsBatch(c echo.Context) error
	HandleDeleteComponent(c echo.Context) error
	HandleDeleteComponentsBatch(c echo.Context) error
	HandleUpdateConfig(c echo.Context) error
	HandleUpdateConfigsBatch(c echo.Context) error
	HandleMoveComponent(c echo.Context) error
	HandleResizeComponent(c echo.Context) error
	HandleChangeZOrder(c echo.Context) error
	HandleReorderLayers(c echo.Context) error
	HandleGetComponentRect(c echo.Context) error
}

// CanvasHandler handles canvas operations
type CanvasHandler interface {
	HandleAddCanvas(c echo.Context) error
	HandleRemoveCanvas(c echo.Context) error
	HandleActivateCanvas(c echo.Context) error
	HandleSetCanvasWidth(c echo.Context) error
}

// HistoryHandler handles undo/redo
type HistoryHandler interface {
	HandleUndo(c echo.Context) error
	HandleRedo(c echo.Context) error
	HandleGetHistory(c echo.Context) error
}

// LayoutHandler handles export/import and saved layouts
type LayoutHandler interface {
	HandleExport(c echo.Context) error
	HandleImport(c echo.Context) error
	HandleSaveLayout(c echo.Context) error
	HandleLoadLayout(c echo.Context) error
	HandleListLayouts(c echo.Context) error
	HandleGetLayout(c echo.Context) error
	HandleUpdateLayout(c echo.Context) error
	HandleDeleteLayout(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionManager defines the interface for session management
// This allows mocking in tests
type SessionManager interface {
	StartSession(name string, canvases []string) (*models.BuilderSession, error)
	GetSession(id string) (*models.BuilderSession, bool)
	GetBuilder(id string) (*builder.Builder, bool)
	ListSessions() []*models.BuilderSession
	TouchSession(id string) bool
	DeleteSession(id string) bool
	Registry() *registry.Registry
	Count() int
}

var (
	_ SessionHandler   = (*Handler)(nil)
	_ ComponentHandler = (*Handler)(nil)
	_ CanvasHandler    = (*Handler)(nil)
	_ HistoryHandler   = (*Handler)(nil)
	_ LayoutHandler    = (*Handler)(nil)
)

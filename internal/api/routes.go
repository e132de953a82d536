// routes.go - Route registration helpers
package api

import (
	"github.com/grid-builder/backend/internal/logging"
	"github.com/grid-builder/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store        storage.LayoutStore
	Sessions     SessionManager
	Version      string
	MaxMessageKB int
	Logger       logging.Logger
	// AllowLayoutDeletion registers DELETE /layouts/:layoutId.
	AllowLayoutDeletion bool
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	API       *Handler
	WebSocket *WebSocketHandler

	allowLayoutDeletion bool
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.Sessions),
		API:       NewHandler(deps.Store, deps.Sessions, deps.Logger),
		WebSocket: NewWebSocketHandler(deps.Sessions, deps.MaxMessageKB, deps.Logger),

		allowLayoutDeletion: deps.AllowLayoutDeletion,
	}
}

// RegisterRoutes registers all API routes under /api
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	h := handlers.API
	g := e.Group("/api")

	g.GET("/health", handlers.Health.HandleHealth)
	g.GET("/components", h.HandleListComponentTypes)

	// Sessions
	g.POST("/sessions", h.HandleCreateSession)
	g.GET("/sessions", h.HandleListSessions)
	g.GET("/sessions/:id", h.HandleGetSession)
	g.DELETE("/sessions/:id", h.HandleDeleteSession)
	g.POST("/sessions/:id/keepalive", h.HandleSessionKeepAlive)
	g.GET("/sessions/:id/state", h.HandleGetState)
	g.POST("/sessions/:id/reset", h.HandleReset)
	g.GET("/sessions/:id/ws", handlers.WebSocket.HandleEventStream)

	// Canvases
	g.POST("/sessions/:id/canvases", h.HandleAddCanvas)
	g.DELETE("/sessions/:id/canvases/:canvasId", h.HandleRemoveCanvas)
	g.POST("/sessions/:id/canvases/:canvasId/activate", h.HandleActivateCanvas)
	g.PUT("/sessions/:id/canvases/:canvasId/width", h.HandleSetCanvasWidth)

	// Components
	g.POST("/sessions/:id/components", h.HandleAddComponent)
	g.POST("/sessions/:id/components/batch", h.HandleAddComponentsBatch)
	g.POST("/sessions/:id/components/batch-delete", h.HandleDeleteComponentsBatch)
	g.PATCH("/sessions/:id/components/config", h.HandleUpdateConfigsBatch)
	g.DELETE("/sessions/:id/components/:itemId", h.HandleDeleteComponent)
	g.PATCH("/sessions/:id/components/:itemId/config", h.HandleUpdateConfig)
	g.POST("/sessions/:id/components/:itemId/move", h.HandleMoveComponent)
	g.POST("/sessions/:id/components/:itemId/resize", h.HandleResizeComponent)
	g.POST("/sessions/:id/components/:itemId/zorder", h.HandleChangeZOrder)
	g.GET("/sessions/:id/components/:itemId/rect", h.HandleGetComponentRect)
	g.POST("/sessions/:id/layers/reorder", h.HandleReorderLayers)

	// History
	g.POST("/sessions/:id/undo", h.HandleUndo)
	g.POST("/sessions/:id/redo", h.HandleRedo)
	g.GET("/sessions/:id/history", h.HandleGetHistory)

	// Export / import and saved layouts
	g.GET("/sessions/:id/export", h.HandleExport)
	g.POST("/sessions/:id/import", h.HandleImport)
	g.POST("/sessions/:id/layouts", h.HandleSaveLayout)
	g.POST("/sessions/:id/layouts/:layoutId/load", h.HandleLoadLayout)
	g.GET("/layouts", h.HandleListLayouts)
	g.GET("/layouts/:layoutId", h.HandleGetLayout)
	g.PUT("/layouts/:layoutId", h.HandleUpdateLayout)
	// Conditional delete based on config
	if handlers.allowLayoutDeletion {
		g.DELETE("/layouts/:layoutId", h.HandleDeleteLayout)
	}
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}

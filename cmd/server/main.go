package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/grid-builder/backend/internal/api"
	"github.com/grid-builder/backend/internal/builder"
	"github.com/grid-builder/backend/internal/config"
	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/logging"
	"github.com/grid-builder/backend/internal/registry"
	"github.com/grid-builder/backend/internal/session"
	"github.com/grid-builder/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "GridBuilder.config")
	if p := os.Getenv("GRID_BUILDER_CONFIG"); p != "" {
		configPath = p
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	logging.SetLevel(cfg.Advanced.LogLevel)
	api.SetExposeErrorDetails(cfg.Advanced.ExposeErrorDetails)
	logger := logging.New("Server")

	// Component library: built-ins plus an optional YAML file
	reg := registry.NewDefault(logging.New("Registry"))
	if cfg.Storage.ComponentLibrary != "" {
		n, err := reg.LoadFile(cfg.Storage.ComponentLibrary)
		if err != nil {
			logger.Warnf("failed to load component library: %v", err)
		} else {
			logger.Infof("loaded %d component types from %s", n, cfg.Storage.ComponentLibrary)
		}
	}

	// Initialize layout storage
	layoutStore, err := storage.Open(cfg.Storage.LayoutStore, cfg.GetLayoutsDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	defer layoutStore.Close()

	// Initialize session manager
	debounce := events.NewDebouncePolicy(cfg.GetDebounceDelay(),
		events.ComponentDragged, events.ComponentResized, events.StateChanged)
	var beforeDelete builder.BeforeDeleteHook
	if cfg.Builder.ProtectLockedItems {
		beforeDelete = session.LockedGuard(logging.New("Guard"))
	}
	sessionMgr := session.NewManager(session.Options{
		MaxSessions:     cfg.Sessions.MaxSessions,
		DefaultCanvases: cfg.GetDefaultCanvases(),
		HistoryLimit:    cfg.Builder.HistoryLimit,
		Debounce:        &debounce,
		Registry:        reg,
		BeforeDelete:    beforeDelete,
		Logger:          logging.New("Session"),
	})
	defer sessionMgr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background session cleanup
	go sessionMgr.RunCleanup(ctx, cfg.GetCleanupInterval(), cfg.GetSessionTimeout())

	e := echo.New()
	e.HideBanner = true
	e.Logger = logging.New("Echo")
	api.SetupMiddleware(e)

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/keepalive") ||
				strings.HasSuffix(path, "/ws") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// API Routes
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Store:               layoutStore,
		Sessions:            sessionMgr,
		Version:             Version,
		MaxMessageKB:        cfg.Advanced.WebSocketMaxMessageSize,
		Logger:              logging.New("API"),
		AllowLayoutDeletion: cfg.Storage.AllowLayoutDelete,
	}))

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Grid Builder Server                             ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Store:      %-45s║\n", cfg.Storage.LayoutStore)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Layouts:   %-46s║\n", cfg.GetLayoutsDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
			logger.Errorf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown failed: %v", err)
	}
	logger.Infof("server stopped")
}

// Package config provides XML-based configuration for the grid builder server.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"GridBuilder"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Builder defaults applied to every session
	Builder BuilderConfig `xml:"Builder"`

	// Session lifecycle
	Sessions SessionsConfig `xml:"Sessions"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains saved-layout storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	LayoutsDirectory string `xml:"LayoutsDirectory"`
	// LayoutStore is "local" (one JSON file per layout) or "duckdb".
	LayoutStore string `xml:"LayoutStore"`
	// ComponentLibrary is an optional YAML file of extra component types.
	ComponentLibrary  string `xml:"ComponentLibrary"`
	AllowLayoutDelete bool   `xml:"AllowLayoutDeletion"`
}

// BuilderConfig contains per-session builder settings
type BuilderConfig struct {
	HistoryLimit int `xml:"HistoryLimit"`
	// DebounceMs delays drag/resize previews; 0 delivers them synchronously.
	DebounceMs      int    `xml:"DebounceMs"`
	DefaultCanvases string `xml:"DefaultCanvases"`
	// ProtectLockedItems refuses deletes of items whose config has locked=true.
	ProtectLockedItems bool `xml:"ProtectLockedItems"`
}

// SessionsConfig contains session lifecycle settings
type SessionsConfig struct {
	MaxSessions            int `xml:"MaxSessions"`
	SessionTimeoutMinutes  int `xml:"SessionTimeoutMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel                string `xml:"LogLevel"`
	EnableRequestLogging    bool   `xml:"EnableRequestLogging"`
	WebSocketMaxMessageSize int    `xml:"WebSocketMaxMessageSizeKB"`
	ExposeErrorDetails      bool   `xml:"ExposeErrorDetails"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "8M",
		},
		Storage: StorageConfig{
			DataDirectory:     "./data",
			LayoutsDirectory:  "./data/layouts",
			LayoutStore:       "local",
			AllowLayoutDelete: true,
		},
		Builder: BuilderConfig{
			HistoryLimit:       50,
			DebounceMs:         300,
			DefaultCanvases:    "main",
			ProtectLockedItems: true,
		},
		Sessions: SessionsConfig{
			MaxSessions:            10,
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
		},
		Advanced: AdvancedConfig{
			LogLevel:                "info",
			EnableRequestLogging:    true,
			WebSocketMaxMessageSize: 64,
			ExposeErrorDetails:      true,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Grid Builder Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.LayoutsDirectory = filepath.Join(dataDir, "layouts")
	}

	if backend := os.Getenv("LAYOUT_STORE"); backend != "" {
		c.Storage.LayoutStore = backend
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	resolve(&c.Storage.DataDirectory)
	resolve(&c.Storage.LayoutsDirectory)
	resolve(&c.Storage.ComponentLibrary)
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetLayoutsDir returns the absolute saved-layouts directory path
func (c *AppConfig) GetLayoutsDir() string {
	return c.Storage.LayoutsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetDefaultCanvases splits the comma-separated canvas list.
func (c *AppConfig) GetDefaultCanvases() []string {
	var out []string
	for _, id := range strings.Split(c.Builder.DefaultCanvases, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// GetDebounceDelay returns the preview debounce delay.
func (c *AppConfig) GetDebounceDelay() time.Duration {
	if c.Builder.DebounceMs <= 0 {
		return 0
	}
	return time.Duration(c.Builder.DebounceMs) * time.Millisecond
}

// GetSessionTimeout returns how long an idle session survives cleanup.
func (c *AppConfig) GetSessionTimeout() time.Duration {
	return time.Duration(c.Sessions.SessionTimeoutMinutes) * time.Minute
}

// GetCleanupInterval returns the session cleanup period.
func (c *AppConfig) GetCleanupInterval() time.Duration {
	return time.Duration(c.Sessions.CleanupIntervalMinutes) * time.Minute
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.LayoutsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Package logging provides the leveled, prefixed loggers used across the builder.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"
)

// Logger is the subset of gommon/echo loggers the core depends on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

const header = `${time_rfc3339} ${level} [${prefix}]`

var (
	mu           sync.RWMutex
	defaultLevel           = log.INFO
	output       io.Writer = os.Stdout
)

// New returns a logger tagged with prefix, e.g. "State" or "Builder".
func New(prefix string) *log.Logger {
	mu.RLock()
	defer mu.RUnlock()

	l := log.New(prefix)
	l.SetHeader(header)
	l.SetLevel(defaultLevel)
	l.SetOutput(output)
	return l
}

// SetLevel changes the level for loggers created afterwards.
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	defaultLevel = ParseLevel(level)
}

// SetOutput redirects loggers created afterwards.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// ParseLevel maps a config string to a gommon level. Unknown values map to INFO.
func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off", "none":
		return log.OFF
	default:
		return log.INFO
	}
}

// Discard is a Logger that drops everything.
type Discard struct{}

func (Discard) Debugf(string, ...interface{}) {}
func (Discard) Infof(string, ...interface{})  {}
func (Discard) Warnf(string, ...interface{})  {}
func (Discard) Errorf(string, ...interface{}) {}

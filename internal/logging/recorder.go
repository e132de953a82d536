package logging

import (
	"fmt"
	"sync"
)

// Recorder is a Logger that keeps formatted messages per level. Tests use it
// to assert that a warning was logged without failing the operation.
type Recorder struct {
	mu       sync.Mutex
	Warnings []string
	Errors   []string
}

func (r *Recorder) Debugf(string, ...interface{}) {}
func (r *Recorder) Infof(string, ...interface{})  {}

func (r *Recorder) Warnf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Recorder) Errorf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// WarningCount returns how many warnings were recorded.
func (r *Recorder) WarningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Warnings)
}

// ErrorCount returns how many errors were recorded.
func (r *Recorder) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Errors)
}

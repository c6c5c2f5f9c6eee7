// Package kvlog is the engine's Logger: WARN/ERROR sinks, not required
// to be structured.
//
// An env-gated, mutex-guarded writer to stderr, leveled because the
// engine's error-swallowing policy distinguishes WARN (self-healing:
// tamper, expired row, deserialization failure) from ERROR (backend
// failure surfaced through last_error).
package kvlog

import (
	"fmt"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	verbose = os.Getenv("KVLITE_DEBUG") != ""
)

// SetVerbose toggles whether Warnf/Errorf also echo to stdout for
// interactive debugging; both always write to stderr regardless.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// Logger is the interface the engine consumes. Callers may
// supply their own to route engine diagnostics elsewhere; Default wraps
// this package's stderr sink.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Default is the package-level Logger used when the engine isn't
// configured with one explicitly.
var Default Logger = stderrLogger{}

type stderrLogger struct{}

func (stderrLogger) Warnf(format string, args ...any)  { write("WARN", format, args...) }
func (stderrLogger) Errorf(format string, args ...any) { write("ERROR", format, args...) }

func write(level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "kvlite: %s: %s\n", level, msg)
	if verbose {
		fmt.Fprintf(os.Stdout, "kvlite: %s: %s\n", level, msg)
	}
}

// Warnf logs at WARN level using the Default logger.
func Warnf(format string, args ...any) { Default.Warnf(format, args...) }

// Errorf logs at ERROR level using the Default logger.
func Errorf(format string, args ...any) { Default.Errorf(format, args...) }

// Package debug provides conditional debug logging for arbor.
//
// Debug logging is enabled by setting the ARBOR_DEBUG environment variable:
//
//	ARBOR_DEBUG=1 arborview
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops.
package debug

import (
	"fmt"
	"log"
	"os"
	"time"
)

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("ARBOR_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[ARBOR_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[ARBOR_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Output(2, fmt.Sprintf(format, args...))
}

// LogTiming logs the duration of an operation.
func LogTiming(name string, elapsed time.Duration) {
	if !enabled {
		return
	}
	logger.Output(2, fmt.Sprintf("%s took %s", name, elapsed))
}

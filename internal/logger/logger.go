// Package logger provides leveled logging for flowhub.
// Debug, Info and Section output is only written in verbose mode
// (--verbose); warnings and errors are always written.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Output returns the current log writer.
func Output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

func write(always bool, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if always || verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "[DEBUG] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	write(false, "\n=== ", "%s ===", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "[INFO] ", format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	write(true, "[WARN] ", format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	write(true, "[ERROR] ", format, args...)
}

package utils

import (
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// ParseDuration parses a per-invocation timeout like "30s".
// An empty string means no timeout.
func ParseDuration(d string) (time.Duration, error) {
	if d == "" {
		return 0, nil
	}
	return time.ParseDuration(d)
}

// --- ANSI color codes ---
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
)

// IsTerminal reports whether w is a terminal. Only *os.File can be one.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Decorate wraps s in color when enabled.
func Decorate(s, color string, enabled bool) string {
	if !enabled {
		return s
	}
	return color + s + ColorReset
}

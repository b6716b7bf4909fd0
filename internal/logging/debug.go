package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger writes printf-style debug lines, conventionally prefixed with a
// "[TAG]" naming the component. A nil Logger discards everything.
type Logger struct {
	mu sync.Mutex
	w  io.Writer
	c  io.Closer
}

// NewLogger wraps an existing writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w}
}

// OpenDebugLog truncates and opens the debug log file at path.
func OpenDebugLog(path string) (*Logger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	return &Logger{w: f, c: f}, nil
}

// Printf appends one line to the log.
func (l *Logger) Printf(format string, args ...interface{}) {
	if l == nil || l.w == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format+"\n", args...)
}

// Close closes the underlying file, if the logger owns one.
func (l *Logger) Close() error {
	if l == nil || l.c == nil {
		return nil
	}
	return l.c.Close()
}

// Package logger provides the logging interface shared by the Convo client
// packages. Components accept a Logger by injection and treat nil as a
// NopLogger, so library code never writes to the process log on its own.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is the printf-style logging contract used across the session core,
// the API client and the CLI.
//
// Cookie values and credentials must never be passed to a Logger. Callers log
// cookie names, hosts and counts only.
type Logger interface {
	// Debug logs diagnostic detail (e.g., "jar: 2 cookies for api.convo.app").
	// Implementations may discard it unless verbose output was requested.
	Debug(format string, args ...interface{})

	// Info logs an informational message (e.g., "session valid").
	Info(format string, args ...interface{})

	// Warning logs a recoverable problem (e.g., "skipped 1 corrupt cookie record").
	Warning(format string, args ...interface{})

	// Error logs a failure (e.g., "persist cookies: database is locked").
	Error(format string, args ...interface{})

	// Close releases resources held by the logger. Safe to call multiple times.
	Close() error
}

// StandardLogger wraps a stdlib *log.Logger and prefixes each line with its
// level. Debug lines are written only when verbose is enabled.
type StandardLogger struct {
	logger  *log.Logger
	verbose bool
	closer  io.Closer
	once    sync.Once
}

// NewStandardLogger creates a logger that wraps the given *log.Logger.
// Debug output is suppressed; see SetVerbose.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// SetVerbose toggles Debug output.
func (s *StandardLogger) SetVerbose(v bool) {
	s.verbose = v
}

// Debug logs a message with [DEBUG] prefix when verbose output is enabled.
func (s *StandardLogger) Debug(format string, args ...interface{}) {
	if !s.verbose {
		return
	}
	s.logger.Printf("[DEBUG] "+format, args...)
}

// Info logs an informational message with [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logger.Printf("[INFO] "+format, args...)
}

// Warning logs a warning message with [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logger.Printf("[WARNING] "+format, args...)
}

// Error logs an error message with [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// NewFileLogger appends to the file at path, creating it private to the
// current user. Close closes the file.
func NewFileLogger(path string, verbose bool) (*StandardLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := NewStandardLogger(log.New(f, "", log.LstdFlags))
	l.SetVerbose(verbose)
	l.closer = f
	return l, nil
}

// Close closes the file of a NewFileLogger and is a no-op otherwise.
func (s *StandardLogger) Close() error {
	var err error
	s.once.Do(func() {
		if s.closer != nil {
			err = s.closer.Close()
		}
	})
	return err
}

// NopLogger discards all messages.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Debug(format string, args ...interface{})   {}
func (n *NopLogger) Info(format string, args ...interface{})    {}
func (n *NopLogger) Warning(format string, args ...interface{}) {}
func (n *NopLogger) Error(format string, args ...interface{})   {}
func (n *NopLogger) Close() error                               { return nil }

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// MockLogger records every call for verification in tests. It is safe for
// concurrent use since the jar may log from several request goroutines.
type MockLogger struct {
	mu           sync.Mutex
	DebugCalls   []string
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates a new MockLogger for testing.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(dst *[]string, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*dst = append(*dst, fmt.Sprintf(format, args...))
}

// Debug records the formatted message.
func (m *MockLogger) Debug(format string, args ...interface{}) {
	m.record(&m.DebugCalls, format, args...)
}

// Info records the formatted message.
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.record(&m.InfoCalls, format, args...)
}

// Warning records the formatted message.
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.record(&m.WarningCalls, format, args...)
}

// Error records the formatted message.
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.record(&m.ErrorCalls, format, args...)
}

// Close records that Close was called.
func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

// All returns every recorded message regardless of level, in level order.
func (m *MockLogger) All() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.DebugCalls)+len(m.InfoCalls)+len(m.WarningCalls)+len(m.ErrorCalls))
	out = append(out, m.DebugCalls...)
	out = append(out, m.InfoCalls...)
	out = append(out, m.WarningCalls...)
	out = append(out, m.ErrorCalls...)
	return out
}

var _ Logger = (*MockLogger)(nil)

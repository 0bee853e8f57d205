package logger

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestStandardLogger_Levels(t *testing.T) {
	tests := []struct {
		name   string
		log    func(*StandardLogger)
		prefix string
		want   string
	}{
		{"info", func(l *StandardLogger) { l.Info("session %s", "valid") }, "[INFO]", "session valid"},
		{"warning", func(l *StandardLogger) { l.Warning("skipped %d records", 2) }, "[WARNING]", "skipped 2 records"},
		{"error", func(l *StandardLogger) { l.Error("persist: %v", "locked") }, "[ERROR]", "persist: locked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			l := NewStandardLogger(log.New(buf, "", 0))
			tt.log(l)
			out := buf.String()
			if !strings.Contains(out, tt.prefix) {
				t.Errorf("expected %s prefix, got: %s", tt.prefix, out)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected message %q, got: %s", tt.want, out)
			}
		})
	}
}

func TestStandardLogger_DebugRequiresVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewStandardLogger(log.New(buf, "", 0))

	l.Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no output without verbose, got: %s", buf.String())
	}

	l.SetVerbose(true)
	l.Debug("shown %d", 2)
	if !strings.Contains(buf.String(), "[DEBUG] shown 2") {
		t.Fatalf("expected debug line, got: %s", buf.String())
	}
	if err := l.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestOrNop(t *testing.T) {
	if _, ok := OrNop(nil).(*NopLogger); !ok {
		t.Fatal("OrNop(nil) should return a NopLogger")
	}
	m := NewMockLogger()
	if OrNop(m) != Logger(m) {
		t.Fatal("OrNop should return a non-nil logger unchanged")
	}
}

func TestMockLogger_RecordsCalls(t *testing.T) {
	l := NewMockLogger()

	l.Debug("debug %d", 0)
	l.Info("info %d", 1)
	l.Info("info %d", 2)
	l.Warning("warn %s", "test")
	l.Error("err %v", "fail")

	if len(l.DebugCalls) != 1 || l.DebugCalls[0] != "debug 0" {
		t.Errorf("unexpected debug calls: %v", l.DebugCalls)
	}
	if len(l.InfoCalls) != 2 || l.InfoCalls[1] != "info 2" {
		t.Errorf("unexpected info calls: %v", l.InfoCalls)
	}
	if len(l.WarningCalls) != 1 || l.WarningCalls[0] != "warn test" {
		t.Errorf("unexpected warning calls: %v", l.WarningCalls)
	}
	if len(l.ErrorCalls) != 1 || l.ErrorCalls[0] != "err fail" {
		t.Errorf("unexpected error calls: %v", l.ErrorCalls)
	}
	if got := len(l.All()); got != 5 {
		t.Errorf("expected 5 recorded messages, got %d", got)
	}
}

func TestMultiLogger_BroadcastsToAll(t *testing.T) {
	mock1 := NewMockLogger()
	mock2 := NewMockLogger()

	multi := NewMultiLogger(mock1, nil, mock2)

	multi.Debug("debug msg")
	multi.Info("info msg")
	multi.Warning("warn msg")
	multi.Error("error msg")

	for i, m := range []*MockLogger{mock1, mock2} {
		if len(m.All()) != 4 {
			t.Errorf("mock%d should receive 4 messages, got %v", i+1, m.All())
		}
	}
}

type failingCloseLogger struct {
	NopLogger
	closeErr error
}

func (f *failingCloseLogger) Close() error {
	return f.closeErr
}

func TestMultiLogger_Close_ReturnsFirstError(t *testing.T) {
	err1 := errors.New("logger1 failed to close")
	err2 := errors.New("logger2 failed to close")
	mock := NewMockLogger()

	multi := NewMultiLogger(&failingCloseLogger{closeErr: err1}, mock, &failingCloseLogger{closeErr: err2})

	if err := multi.Close(); !errors.Is(err, err1) {
		t.Errorf("expected first error %v, got %v", err1, err)
	}
	if !mock.CloseCalled {
		t.Error("expected mock logger to be closed even after first error")
	}
}

func TestMultiLogger_EmptyLoggers(t *testing.T) {
	multi := NewMultiLogger()

	multi.Info("test")
	multi.Warning("test")
	multi.Error("test")
	if err := multi.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convo.log")
	l, err := NewFileLogger(path, false)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	l.Debug("not written")
	l.Info("first")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	l, err = NewFileLogger(path, true)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	l.Debug("second")
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "[INFO] first") || !strings.Contains(out, "[DEBUG] second") {
		t.Fatalf("expected both lines appended, got: %s", out)
	}
	if strings.Contains(out, "not written") {
		t.Fatalf("debug line written without verbose: %s", out)
	}
	if fi, err := os.Stat(path); err == nil && runtime.GOOS != "windows" && fi.Mode().Perm()&0077 != 0 {
		t.Errorf("log file is readable by others: %v", fi.Mode())
	}
}

func TestFileLogger_OpenError(t *testing.T) {
	if _, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "convo.log"), false); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

// Package testutil holds helpers shared by dbcomments tests: loggers that
// route synchronizer, connection and goose records into the test log.
package testutil

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"
)

// NewTestLogger returns a debug-level logger writing through t.Log.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return newLogger(logWriter{tb: t})
}

// NewCaptureLogger is NewTestLogger that also keeps every record, for tests
// asserting on what was logged (goose output, close failures).
func NewCaptureLogger(t testing.TB) (*slog.Logger, *Capture) {
	t.Helper()
	c := &Capture{}
	return newLogger(io.MultiWriter(logWriter{tb: t}, c)), c
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Capture collects log records. It is safe for concurrent use.
type Capture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// String returns everything logged so far.
func (c *Capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

type logWriter struct {
	tb testing.TB
}

func (w logWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

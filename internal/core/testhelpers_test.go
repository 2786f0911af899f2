package core

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"time"

	"weatherview/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type recordedRequest struct {
	method, endpoint, status string
	duration                 time.Duration
}

type mockMetrics struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (m *mockMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.mu.Lock()
	m.requests = append(m.requests, recordedRequest{method, endpoint, status, duration})
	m.mu.Unlock()
}

func (m *mockMetrics) Requests() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedRequest(nil), m.requests...)
}

func newTestServer() *Server {
	cfg := &config.Config{Environment: "local"}
	srv, _ := NewServer(cfg, discardLogger())
	return srv
}

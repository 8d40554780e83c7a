package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tobias915/leadership-companion/internal/countcache"
	"github.com/tobias915/leadership-companion/internal/ledger"
)

type fakeSink struct {
	records []ledger.Record
	err     error
}

func (s *fakeSink) Append(_ context.Context, rec ledger.Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T, sink *fakeSink, counts *countcache.Cache, cfg Config) *Handler {
	t.Helper()
	if sink == nil {
		sink = &fakeSink{}
	}
	if counts == nil {
		counts = countcache.New(func(context.Context) (int, error) { return 0, nil }, time.Minute, nil)
	}
	h := New(discardLogger(), sink, counts, nil, cfg)
	h.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

func decodeBody(t *testing.T, rw *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rw.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v (body: %s)", err, rw.Body.String())
	}
	return body
}

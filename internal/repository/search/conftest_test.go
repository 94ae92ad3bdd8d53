package search

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
)

// mockDoer implements upstream.Doer for tests.
type mockDoer struct {
	doFn func(ctx context.Context, conn domain.Connection, method, path string, body, out any) error
}

func (m *mockDoer) Do(ctx context.Context, conn domain.Connection, method, path string, body, out any) error {
	return m.doFn(ctx, conn, method, path, body, out)
}

// respond decodes payload into out the way the HTTP client would.
func respond(t *testing.T, out any, payload string) error {
	t.Helper()
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	return nil
}

// asJSON re-encodes a request body so tests can assert on its wire form.
func asJSON(t *testing.T, body any) map[string]any {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	return m
}

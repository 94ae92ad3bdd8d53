package collection

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

func testConn() domain.Connection {
	return domain.Connection{Host: "localhost", Port: "8000"}.WithDefaults("localhost", "8000")
}

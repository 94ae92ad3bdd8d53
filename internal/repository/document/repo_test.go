package document

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
)

var conn = domain.Connection{Host: "h", Port: "1"}

const scoped = "api/v2/tenants/default_tenant/databases/default_database/collections/c1/"

func TestList_SynthesizesMissingID(t *testing.T) {
	doer := &mockDoer{doFn: func(_ context.Context, _ domain.Connection, method, path string, body, out any) error {
		if method != http.MethodPost || path != scoped+"get" {
			t.Errorf("unexpected call %s %s", method, path)
		}
		inc, _ := asJSON(t, body)["include"].([]any)
		if len(inc) != 2 || inc[0] != "metadatas" || inc[1] != "documents" {
			t.Errorf("include = %v", inc)
		}
		return respond(t, out, `{
			"ids": ["a", "b", null],
			"metadatas": [{"x": 1}, null, {"y": 2}],
			"documents": ["one", "two", 3]
		}`)
	}}

	docs, err := New(doer).List(context.Background(), conn, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 docs, got %d", len(docs))
	}
	if docs[2].ID != "doc_2" {
		t.Errorf("docs[2].ID = %q, want doc_2", docs[2].ID)
	}
	if docs[2].Document != "3" {
		t.Errorf("docs[2].Document = %q, want \"3\"", docs[2].Document)
	}
	for i, d := range docs {
		if d.Distance != nil {
			t.Errorf("docs[%d] listed with a distance", i)
		}
	}
}

func TestList_EmptyIDs(t *testing.T) {
	doer := &mockDoer{doFn: func(_ context.Context, _ domain.Connection, _, _ string, _, out any) error {
		return respond(t, out, `{"ids": [], "metadatas": null, "documents": null}`)
	}}

	docs, err := New(doer).List(context.Background(), conn, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no docs, got %d", len(docs))
	}
}

func TestList_Error(t *testing.T) {
	doer := &mockDoer{doFn: func(context.Context, domain.Connection, string, string, any, any) error {
		return &domain.UpstreamError{Kind: domain.ErrTransport}
	}}
	if _, err := New(doer).List(context.Background(), conn, "c1"); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestUpdate_Payload(t *testing.T) {
	doer := &mockDoer{doFn: func(_ context.Context, _ domain.Connection, method, path string, body, _ any) error {
		if method != http.MethodPost || path != scoped+"update" {
			t.Errorf("unexpected call %s %s", method, path)
		}
		m := asJSON(t, body)
		ids, _ := m["ids"].([]any)
		docs, _ := m["documents"].([]any)
		metas, _ := m["metadatas"].([]any)
		if len(ids) != 1 || ids[0] != "d1" {
			t.Errorf("ids = %v", ids)
		}
		if len(docs) != 1 || docs[0] != "new text" {
			t.Errorf("documents = %v", docs)
		}
		meta, _ := metas[0].(map[string]any)
		if meta["tag"] != "x" {
			t.Errorf("metadatas = %v", metas)
		}
		return nil
	}}

	err := New(doer).Update(context.Background(), conn, "c1", "d1", "new text", map[string]any{"tag": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdate_NilMetadataSendsEmptyObject(t *testing.T) {
	doer := &mockDoer{doFn: func(_ context.Context, _ domain.Connection, _, _ string, body, _ any) error {
		metas, _ := asJSON(t, body)["metadatas"].([]any)
		if m, ok := metas[0].(map[string]any); !ok || len(m) != 0 {
			t.Errorf("metadatas = %v, want [{}]", metas)
		}
		return nil
	}}
	if err := New(doer).Update(context.Background(), conn, "c1", "d1", "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelete_SingleCall(t *testing.T) {
	calls := 0
	doer := &mockDoer{doFn: func(_ context.Context, _ domain.Connection, method, path string, body, _ any) error {
		calls++
		if method != http.MethodPost || path != scoped+"delete" {
			t.Errorf("unexpected call %s %s", method, path)
		}
		ids, _ := asJSON(t, body)["ids"].([]any)
		if len(ids) != 3 {
			t.Errorf("ids = %v", ids)
		}
		return nil
	}}

	if err := New(doer).Delete(context.Background(), conn, "c1", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one upstream call, got %d", calls)
	}
}

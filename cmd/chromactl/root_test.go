package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const scope = "/api/v2/tenants/default_tenant/databases/default_database"

// fakeChroma serves the scoped v2 API with a single collection.
type fakeChroma struct {
	mu      sync.Mutex
	deleted []string
	updated map[string]any
}

func (f *fakeChroma) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/heartbeat", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"nanosecond heartbeat":1}`))
	})
	mux.HandleFunc(scope+"/collections", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"c1","name":"articles","dimension":3,` +
			`"configuration_json":{"hnsw":{"space":"l2"}}}]`))
	})
	mux.HandleFunc(scope+"/collections/c1/get", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ids":["d1","d2"],"documents":["first doc","second doc"],` +
			`"metadatas":[{"k":1},null]}`))
	})
	mux.HandleFunc(scope+"/collections/c1/delete", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IDs []string `json:"ids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.deleted = append(f.deleted, body.IDs...)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc(scope+"/collections/c1/update", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.updated = body
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})
	return mux
}

func startFake(t *testing.T) (*fakeChroma, []string) {
	t.Helper()
	f := &fakeChroma{}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return f, []string{"--host", u.Hostname(), "--port", u.Port()}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd, err := newRootCmd()
	if err != nil {
		t.Fatalf("build command: %v", err)
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), err
}

func TestProbe(t *testing.T) {
	_, conn := startFake(t)

	out, err := run(t, append([]string{"probe"}, conn...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "connected (API v2)") {
		t.Errorf("output = %q", out)
	}
}

func TestProbe_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u, _ := url.Parse(srv.URL)
	srv.Close()

	_, err := run(t, "probe", "--host", u.Hostname(), "--port", u.Port(), "--timeout", "1s")
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestCollectionsList(t *testing.T) {
	_, conn := startFake(t)

	out, err := run(t, append([]string{"collections", "list"}, conn...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"NAME", "articles", "c1", "l2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCollectionsGet_ByName(t *testing.T) {
	_, conn := startFake(t)

	out, err := run(t, append([]string{"collections", "get", "articles"}, conn...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var col struct {
		ID        string
		Dimension *int
	}
	if err := json.Unmarshal([]byte(out), &col); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if col.ID != "c1" {
		t.Errorf("id = %q, want c1", col.ID)
	}
}

func TestCollectionsGet_Unknown(t *testing.T) {
	_, conn := startFake(t)

	_, err := run(t, append([]string{"collections", "get", "missing"}, conn...)...)
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestDocumentsList_JSON(t *testing.T) {
	_, conn := startFake(t)

	out, err := run(t, append([]string{"documents", "list", "articles", "--json"}, conn...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var docs []struct {
		ID   string
		Text string
	}
	if err := json.Unmarshal([]byte(out), &docs); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(docs) != 2 || docs[0].ID != "d1" || docs[1].Text != "second doc" {
		t.Errorf("docs = %+v", docs)
	}
}

func TestDocumentsDelete_Many(t *testing.T) {
	f, conn := startFake(t)

	out, err := run(t, append([]string{"docs", "delete", "c1", "d1", "d2"}, conn...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "deleted 2 document(s)") {
		t.Errorf("output = %q", out)
	}
	if strings.Join(f.deleted, ",") != "d1,d2" {
		t.Errorf("deleted = %v", f.deleted)
	}
}

func TestDocumentsUpdate(t *testing.T) {
	f, conn := startFake(t)

	args := append([]string{"docs", "update", "c1", "d1", "--text", "new", "--metadata", `{"k":2}`}, conn...)
	if _, err := run(t, args...); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.updated == nil {
		t.Fatal("update was not sent")
	}
	docs, _ := f.updated["documents"].([]any)
	if len(docs) != 1 || docs[0] != "new" {
		t.Errorf("documents = %v", f.updated["documents"])
	}
}

func TestDocumentsUpdate_BadMetadata(t *testing.T) {
	f, conn := startFake(t)

	args := append([]string{"docs", "update", "c1", "d1", "--text", "new", "--metadata", "{oops"}, conn...)
	if _, err := run(t, args...); err == nil {
		t.Fatal("expected validation error")
	}
	if f.updated != nil {
		t.Error("update must not reach the server")
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	_, conn := startFake(t)
	t.Setenv("CHROMACTL_HOST", conn[1])
	t.Setenv("CHROMACTL_PORT", conn[3])

	out, err := run(t, "probe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "connected") {
		t.Errorf("output = %q", out)
	}
}

func TestNewRootCmd_BindsEveryPersistentFlag(t *testing.T) {
	cmd, err := newRootCmd()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"host", "port", "tenant", "database", "relay", "api-key", "timeout", "json", "verbose", "config"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag %q", name)
		}
	}
}

func TestRelayAPIKeyFromEnv(t *testing.T) {
	f := &fakeChroma{}
	chroma := f.handler()
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k1" {
			http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		r.URL.Path = strings.TrimPrefix(r.URL.Path, "/api/chroma")
		chroma.ServeHTTP(w, r)
	}))
	t.Cleanup(relay.Close)

	if _, err := run(t, "probe", "--relay", relay.URL); err == nil {
		t.Fatal("expected failure without api key")
	}

	t.Setenv("CHROMACTL_API_KEY", "k1")
	out, err := run(t, "probe", "--relay", relay.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "connected (API v2)") {
		t.Errorf("output = %q", out)
	}
}

func TestOneLine(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"a\n b\tc", 10, "a b c"},
		{"abcdefghij", 5, "abcd…"},
	}
	for _, tt := range tests {
		if got := oneLine(tt.in, tt.n); got != tt.want {
			t.Errorf("oneLine(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

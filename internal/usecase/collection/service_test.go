package collection

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	repcol "github.com/kailas-cloud/chroma-explorer/internal/repository/collection"
)

// --- Mocks ---

type deleteCall struct {
	shape repcol.Shape
	ident string
}

type mockRepo struct {
	listFn      func(shape repcol.Shape) ([]domain.Collection, error)
	deleteOK    map[deleteCall]bool
	listCalls   []repcol.Shape
	deleteCalls []deleteCall
}

func (m *mockRepo) List(_ context.Context, _ domain.Connection, shape repcol.Shape) ([]domain.Collection, error) {
	m.listCalls = append(m.listCalls, shape)
	return m.listFn(shape)
}

func (m *mockRepo) Delete(_ context.Context, _ domain.Connection, shape repcol.Shape, ident string) error {
	c := deleteCall{shape, ident}
	m.deleteCalls = append(m.deleteCalls, c)
	if m.deleteOK[c] {
		return nil
	}
	return &domain.UpstreamError{Kind: domain.ErrIncompatible, Status: 404}
}

var errShape = &domain.UpstreamError{Kind: domain.ErrIncompatible, Status: 404}

func listOnly(ok repcol.Shape, cols []domain.Collection) func(repcol.Shape) ([]domain.Collection, error) {
	return func(s repcol.Shape) ([]domain.Collection, error) {
		if s == ok {
			return cols, nil
		}
		return nil, errShape
	}
}

func failList(repcol.Shape) ([]domain.Collection, error) {
	return nil, &domain.UpstreamError{Kind: domain.ErrTransport}
}

var conn = domain.Connection{Host: "h", Port: "1"}

// --- List ---

func TestList_FirstShapeWins(t *testing.T) {
	repo := &mockRepo{listFn: listOnly(repcol.ShapeScopedV2, []domain.Collection{{ID: "1", Name: "a"}})}
	cols, err := New(repo).List(context.Background(), conn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) != 1 || cols[0].Name != "a" {
		t.Errorf("cols = %+v", cols)
	}
	if len(repo.listCalls) != 1 {
		t.Errorf("expected one attempt, got %v", repo.listCalls)
	}
}

func TestList_FallsThroughInOrder(t *testing.T) {
	repo := &mockRepo{listFn: listOnly(repcol.ShapeBare, []domain.Collection{})}
	cols, err := New(repo).List(context.Background(), conn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols == nil || len(cols) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", cols)
	}
	if len(repo.listCalls) != len(ListOrder) {
		t.Fatalf("calls = %v", repo.listCalls)
	}
	for i, s := range ListOrder {
		if repo.listCalls[i] != s {
			t.Errorf("call %d = %s, want %s", i, repo.listCalls[i], s)
		}
	}
}

func TestList_AllFail(t *testing.T) {
	repo := &mockRepo{listFn: failList}
	_, err := New(repo).List(context.Background(), conn)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "failed to fetch collections" {
		t.Errorf("message = %q", err.Error())
	}
	var opErr *domain.OperationError
	if !errors.As(err, &opErr) || len(opErr.Attempts) != 4 {
		t.Errorf("expected 4 attempts, got %+v", opErr)
	}
}

// --- Get ---

func TestGet_ByIDThenName(t *testing.T) {
	cols := []domain.Collection{{ID: "1", Name: "2"}, {ID: "2", Name: "b"}}
	repo := &mockRepo{listFn: listOnly(repcol.ShapeScopedV2, cols)}
	svc := New(repo)

	c, err := svc.Get(context.Background(), conn, "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "b" {
		t.Errorf("id match should win over name match, got %+v", c)
	}

	c, err = svc.Get(context.Background(), conn, "b")
	if err != nil || c.ID != "2" {
		t.Errorf("name lookup = %+v, %v", c, err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := &mockRepo{listFn: listOnly(repcol.ShapeScopedV2, nil)}
	_, err := New(repo).Get(context.Background(), conn, "x")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// --- Delete ---

func TestDeleteOrder(t *testing.T) {
	got := DeleteOrder("docs", "abc")
	want := []DeleteTarget{
		{repcol.ShapeScopedV2, "docs"}, {repcol.ShapeFlatV1, "docs"}, {repcol.ShapeFlatV2, "docs"},
		{repcol.ShapeScopedV2, "abc"}, {repcol.ShapeFlatV1, "abc"}, {repcol.ShapeFlatV2, "abc"},
		{repcol.ShapeBare, "docs"}, {repcol.ShapeBare, "abc"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDeleteOrder_NameEqualsID(t *testing.T) {
	got := DeleteOrder("abc", "abc")
	if len(got) != 4 {
		t.Errorf("expected 4 distinct candidates, got %+v", got)
	}
}

func TestDelete_ResolvesNameAndSucceedsOnV1(t *testing.T) {
	repo := &mockRepo{
		listFn:   listOnly(repcol.ShapeScopedV2, []domain.Collection{{ID: "abc", Name: "docs"}}),
		deleteOK: map[deleteCall]bool{{repcol.ShapeFlatV1, "docs"}: true},
	}
	if err := New(repo).Delete(context.Background(), conn, "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.deleteCalls) != 2 {
		t.Fatalf("expected 2 delete attempts, got %+v", repo.deleteCalls)
	}
	if repo.deleteCalls[0] != (deleteCall{repcol.ShapeScopedV2, "docs"}) {
		t.Errorf("first attempt = %+v", repo.deleteCalls[0])
	}
}

func TestDelete_ListFailureUsesID(t *testing.T) {
	repo := &mockRepo{
		listFn:   failList,
		deleteOK: map[deleteCall]bool{{repcol.ShapeBare, "abc"}: true},
	}
	if err := New(repo).Delete(context.Background(), conn, "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range repo.deleteCalls {
		if c.ident != "abc" {
			t.Errorf("unexpected identifier %q", c.ident)
		}
	}
	if len(repo.deleteCalls) != 4 {
		t.Errorf("expected 4 attempts with name == id, got %+v", repo.deleteCalls)
	}
}

func TestDelete_AllFail(t *testing.T) {
	repo := &mockRepo{listFn: listOnly(repcol.ShapeScopedV2, []domain.Collection{{ID: "abc", Name: "docs"}})}
	err := New(repo).Delete(context.Background(), conn, "abc")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "failed to delete collection" {
		t.Errorf("message = %q", err.Error())
	}
	if len(repo.deleteCalls) != 8 {
		t.Errorf("expected 8 attempts, got %d", len(repo.deleteCalls))
	}
}

func TestDelete_EmptyID(t *testing.T) {
	repo := &mockRepo{listFn: failList}
	err := New(repo).Delete(context.Background(), conn, "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if len(repo.listCalls) != 0 {
		t.Error("nothing should be sent for an empty id")
	}
}

// jsonDoer answers every call on one path with a fixed JSON payload and fails the rest.
type jsonDoer struct {
	path    string
	payload string
	calls   []string
}

func (d *jsonDoer) Do(_ context.Context, _ domain.Connection, method, path string, _, out any) error {
	d.calls = append(d.calls, method+" "+path)
	if path != d.path {
		return &domain.UpstreamError{Kind: domain.ErrIncompatible, Method: method, URL: path, Status: 404}
	}
	return json.Unmarshal([]byte(d.payload), out)
}

func TestList_RepeatedCallsAreIdentical(t *testing.T) {
	doer := &jsonDoer{
		path: repcol.ShapeFlatV2.Path(conn),
		payload: `[{"id":"c1","name":"articles","metadata":{"hnsw:space":"cosine"}},` +
			`{"id":"c2","name":"notes","count":4,"dimension":3}]`,
	}
	svc := New(repcol.New(doer))

	first, err := svc.List(context.Background(), conn)
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	firstCalls := append([]string(nil), doer.calls...)

	// Mutating one result must not leak into the next.
	first[0].Metadata["edited"] = true
	first[1].Name = "changed"

	doer.calls = nil
	second, err := svc.List(context.Background(), conn)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if !reflect.DeepEqual(doer.calls, firstCalls) {
		t.Errorf("second call order = %v, want %v", doer.calls, firstCalls)
	}

	third, err := svc.List(context.Background(), conn)
	if err != nil {
		t.Fatalf("third list: %v", err)
	}
	if !reflect.DeepEqual(second, third) {
		t.Errorf("repeated list differs:\n%+v\n%+v", second, third)
	}
	if _, leaked := second[0].Metadata["edited"]; leaked || second[1].Name != "notes" {
		t.Errorf("state leaked between calls: %+v", second)
	}
	if second[1].Count != 4 || second[0].Count != 0 {
		t.Errorf("counts = %d, %d", second[0].Count, second[1].Count)
	}
}

package journal

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/slidekit/dbopen"
	"github.com/hazyhaar/slidekit/idgen"
	"github.com/hazyhaar/slidekit/kit"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	return dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
}

func TestInit_Idempotent(t *testing.T) {
	db := setupDB(t)
	if err := Init(db); err != nil {
		t.Fatal(err)
	}
	var count int
	db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='operation_log'").Scan(&count)
	if count != 1 {
		t.Fatalf("operation_log not found")
	}
}

func TestRecord_Sync(t *testing.T) {
	db := setupDB(t)
	j := New(db, 10, WithIDGenerator(idgen.Sequence("op")))
	defer j.Close()

	e := &Entry{Tool: "get_slides", PresentationID: "prs_1"}
	if err := j.Record(context.Background(), e); err != nil {
		t.Fatal(err)
	}
	if e.EntryID != "op1" || e.Status != "success" {
		t.Fatalf("defaults not filled: %+v", e)
	}
	var tool string
	db.QueryRow("SELECT tool FROM operation_log WHERE entry_id=?", "op1").Scan(&tool)
	if tool != "get_slides" {
		t.Fatalf("tool: got %q", tool)
	}
}

func TestRecordAsync_FlushedOnClose(t *testing.T) {
	db := setupDB(t)
	j := New(db, 10, WithFlushInterval(time.Hour))
	for i := 0; i < 3; i++ {
		j.RecordAsync(&Entry{Tool: "add_textbox"})
	}
	j.Close()
	j.Close()

	var count int
	db.QueryRow("SELECT COUNT(*) FROM operation_log WHERE tool='add_textbox'").Scan(&count)
	if count != 3 {
		t.Fatalf("count: got %d", count)
	}
}

func TestQuery_Filters(t *testing.T) {
	db := setupDB(t)
	j := New(db, 10)
	defer j.Close()
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	entries := []*Entry{
		{Tool: "ungroup_shapes", PresentationID: "prs_a", Timestamp: base},
		{Tool: "ungroup_shapes", PresentationID: "prs_b", Timestamp: base.Add(time.Second), ErrorMessage: "boom"},
		{Tool: "get_slides", PresentationID: "prs_a", Timestamp: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := j.Query(ctx, Filter{Tool: "ungroup_shapes"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].PresentationID != "prs_b" {
		t.Fatalf("tool filter: %+v", got)
	}
	if got[0].Status != "error" || got[0].ErrorMessage != "boom" {
		t.Errorf("status = %q", got[0].Status)
	}

	got, _ = j.Query(ctx, Filter{PresentationID: "prs_a", Limit: 1})
	if len(got) != 1 || got[0].Tool != "get_slides" {
		t.Fatalf("presentation filter: %+v", got)
	}

	got, _ = j.Query(ctx, Filter{Status: "error"})
	if len(got) != 1 {
		t.Fatalf("status filter: %d", len(got))
	}

	got, _ = j.Query(ctx, Filter{Since: base.Add(1500 * time.Millisecond)})
	if len(got) != 1 {
		t.Fatalf("since filter: %d", len(got))
	}
}

func TestNewEntry(t *testing.T) {
	db := setupDB(t)
	j := New(db, 10)
	defer j.Close()

	ok := j.NewEntry("update_text", map[string]int{"slide_index": 0}, map[string]bool{"success": true}, nil, 120*time.Millisecond)
	if ok.Status != "success" || ok.Parameters != `{"slide_index":0}` || ok.Result != `{"success":true}` || ok.DurationMs != 120 {
		t.Fatalf("entry = %+v", ok)
	}
	bad := j.NewEntry("update_text", nil, "ignored", errors.New("Invalid slide index: 3"), 0)
	if bad.Status != "error" || bad.Result != "" || bad.ErrorMessage != "Invalid slide index: 3" {
		t.Fatalf("entry = %+v", bad)
	}
}

type scopedReq struct{ ID string }

func (r *scopedReq) PresentationHandle() string { return r.ID }

func TestMiddleware(t *testing.T) {
	db := setupDB(t)
	j := New(db, 10)

	ep := j.Middleware()(func(_ context.Context, req any) (any, error) {
		return map[string]string{"ok": "yes"}, nil
	})
	ctx := kit.WithTool(context.Background(), "get_slide_text")
	ctx = kit.WithTransport(ctx, "http")
	ctx = kit.WithSessionID(ctx, "sess-1")
	if _, err := ep(ctx, &scopedReq{ID: "prs_x"}); err != nil {
		t.Fatal(err)
	}
	j.Close()

	j2 := New(db, 10)
	defer j2.Close()
	got, err := j2.Query(context.Background(), Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("entries: %d", len(got))
	}
	e := got[0]
	if e.Tool != "get_slide_text" || e.Transport != "http" || e.SessionID != "sess-1" || e.PresentationID != "prs_x" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestCleanup(t *testing.T) {
	db := setupDB(t)
	j := New(db, 10)
	defer j.Close()
	ctx := context.Background()
	j.Record(ctx, &Entry{Tool: "old", Timestamp: time.Now().Add(-48 * time.Hour)})
	j.Record(ctx, &Entry{Tool: "new"})

	n, err := j.Cleanup(ctx, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("deleted %d, want 1", n)
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "journal.db")
	j, err := Open(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Record(context.Background(), &Entry{Tool: "t"}); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
}

package slides

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/slidekit/dbopen"
	"github.com/hazyhaar/slidekit/idgen"
	"github.com/hazyhaar/slidekit/journal"
)

func connect(t *testing.T, s *Service) *mcp.ClientSession {
	t.Helper()
	impl := &mcp.Implementation{Name: "slidekit-test", Version: "0.1.0"}
	srv := mcp.NewServer(impl, nil)
	s.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	cs, err := mcp.NewClient(impl, nil).Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any, out any) bool {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	text := res.Content[0].(*mcp.TextContent).Text
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("%s: decode %q: %v", name, text, err)
	}
	return !res.IsError
}

func TestMCP_ListTools(t *testing.T) {
	cs := connect(t, newService(t))
	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"open_presentation", "get_slide_shapes", "update_text", "add_chart", "ungroup_shapes"} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
	if names["get_operation_log"] {
		t.Error("get_operation_log registered without a journal")
	}
}

func TestMCP_UngroupFlow(t *testing.T) {
	cs := connect(t, newService(t))

	var info PresentationInfo
	if !call(t, cs, "open_presentation", map[string]any{"file_path": groupedDeck(t)}, &info) {
		t.Fatalf("open failed: %+v", info)
	}

	var text SlideText
	call(t, cs, "get_slide_text", map[string]any{"presentation_id": info.ID, "slide_index": 0}, &text)
	if !text.HasGroupedShapes {
		t.Fatal("expected grouped shapes")
	}

	var st Status
	if !call(t, cs, "ungroup_shapes", map[string]any{"presentation_id": info.ID, "slide_index": 0}, &st) {
		t.Fatalf("ungroup failed: %+v", st)
	}
	if st.Message != "Ungrouped 1 text-containing groups, extracted 2 shapes" {
		t.Fatalf("message = %q", st.Message)
	}

	var failed struct {
		Error string `json:"error"`
	}
	if call(t, cs, "ungroup_shapes", map[string]any{"presentation_id": info.ID, "slide_index": 1}, &failed) {
		t.Fatal("nested group slide should fail")
	}
	if failed.Error != "Slide contains complex nested groups. Entire slide skipped." {
		t.Fatalf("error = %q", failed.Error)
	}

	if call(t, cs, "ungroup_shapes", map[string]any{"presentation_id": info.ID, "slide_index": 4}, &failed) {
		t.Fatal("bad index should fail")
	}
	if failed.Error != "Invalid slide index: 4" {
		t.Fatalf("error = %q", failed.Error)
	}
}

func TestMCP_InvalidArguments(t *testing.T) {
	cs := connect(t, newService(t))
	var failed struct {
		Error string `json:"error"`
	}
	if call(t, cs, "get_slides", map[string]any{"presentation_id": 42}, &failed) {
		t.Fatal("expected error")
	}
	if failed.Error == "" {
		t.Fatal("empty error payload")
	}
}

func TestMCP_OperationLog(t *testing.T) {
	db := dbopen.OpenMemory(t)
	if err := journal.Init(db); err != nil {
		t.Fatal(err)
	}
	j := journal.New(db, 16,
		journal.WithFlushInterval(10*time.Millisecond),
		journal.WithIDGenerator(idgen.Sequence("op_")),
		journal.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(func() { j.Close() })

	cs := connect(t, newService(t, WithJournal(j)))
	var info PresentationInfo
	call(t, cs, "open_presentation", map[string]any{"file_path": groupedDeck(t)}, &info)
	var st Status
	call(t, cs, "ungroup_shapes", map[string]any{"presentation_id": info.ID, "slide_index": 0}, &st)

	deadline := time.Now().Add(5 * time.Second)
	var log OperationLog
	for {
		call(t, cs, "get_operation_log", map[string]any{"presentation_id": info.ID, "tool": "ungroup_shapes"}, &log)
		if log.Count > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if log.Count != 1 {
		t.Fatalf("entries = %d", log.Count)
	}
	e := log.Entries[0]
	if e.Tool != "ungroup_shapes" || e.Status != "success" || e.Transport != "stdio" {
		t.Errorf("entry = %+v", e)
	}
}

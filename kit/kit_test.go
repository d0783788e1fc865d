package kit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestChain_Order(t *testing.T) {
	var order []string

	mw := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				order = append(order, name+"_before")
				resp, err := next(ctx, req)
				order = append(order, name+"_after")
				return resp, err
			}
		}
	}

	base := func(_ context.Context, _ any) (any, error) {
		order = append(order, "endpoint")
		return "ok", nil
	}

	resp, err := Chain(mw("a"), mw("b"))(base)(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp != "ok" {
		t.Fatalf("response: got %v", resp)
	}

	expected := []string{"a_before", "b_before", "endpoint", "b_after", "a_after"}
	if len(order) != len(expected) {
		t.Fatalf("order: got %v, want %v", order, expected)
	}
	for i, v := range expected {
		if order[i] != v {
			t.Fatalf("order[%d]: got %q, want %q", i, order[i], v)
		}
	}
}

func TestChain_ErrorPropagation(t *testing.T) {
	errFail := errors.New("fail")
	base := func(_ context.Context, _ any) (any, error) {
		return nil, errFail
	}

	noop := func(next Endpoint) Endpoint { return next }
	_, err := Chain(noop)(base)(context.Background(), nil)
	if !errors.Is(err, errFail) {
		t.Fatalf("error: got %v, want %v", err, errFail)
	}
}

func TestContext_Defaults(t *testing.T) {
	ctx := context.Background()
	if v := GetTransport(ctx); v != "stdio" {
		t.Fatalf("default transport: got %q", v)
	}
	if v := GetSessionID(ctx); v != "" {
		t.Fatalf("session default: got %q", v)
	}
	if v := GetTool(ctx); v != "" {
		t.Fatalf("tool default: got %q", v)
	}
}

func TestContext_Set(t *testing.T) {
	ctx := WithTransport(context.Background(), "mcp_quic")
	ctx = WithSessionID(ctx, "quic_abc")
	ctx = WithTool(ctx, "ungroup_shapes")
	if GetTransport(ctx) != "mcp_quic" || GetSessionID(ctx) != "quic_abc" || GetTool(ctx) != "ungroup_shapes" {
		t.Fatalf("context values not propagated")
	}
}

type echoReq struct {
	Word string `json:"word"`
}

func session(t *testing.T, register func(*mcp.Server)) *mcp.ClientSession {
	t.Helper()
	impl := &mcp.Implementation{Name: "kit-test", Version: "0.1.0"}
	srv := mcp.NewServer(impl, nil)
	register(srv)

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

func TestRegisterMCPTool_ErrorPayload(t *testing.T) {
	cs := session(t, func(srv *mcp.Server) {
		tool := &mcp.Tool{
			Name:        "echo",
			InputSchema: map[string]any{"type": "object"},
		}
		endpoint := func(ctx context.Context, req any) (any, error) {
			r := req.(*echoReq)
			if r.Word == "" {
				return nil, errors.New("word is required")
			}
			return map[string]string{"word": r.Word, "tool": GetTool(ctx)}, nil
		}
		RegisterMCPTool(srv, tool, endpoint, DecodeArgs[echoReq]())
	})

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "echo", Arguments: map[string]any{"word": "hi"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatal("unexpected tool error")
	}
	var ok map[string]string
	if err := json.Unmarshal([]byte(res.Content[0].(*mcp.TextContent).Text), &ok); err != nil {
		t.Fatal(err)
	}
	if ok["word"] != "hi" || ok["tool"] != "echo" {
		t.Fatalf("payload: %v", ok)
	}

	res, err = cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "echo", Arguments: map[string]any{}})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected IsError")
	}
	var failed ErrorPayload
	if err := json.Unmarshal([]byte(res.Content[0].(*mcp.TextContent).Text), &failed); err != nil {
		t.Fatal(err)
	}
	if failed.Error != "word is required" {
		t.Fatalf("error payload: %q", failed.Error)
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	boom := func(_ context.Context, _ any) (any, error) {
		panic("boom")
	}

	resp, err := Recovery(logger)(boom)(WithTool(context.Background(), "ungroup_shapes"), nil)
	if resp != nil {
		t.Fatalf("response: got %v", resp)
	}
	var p *ErrPanic
	if !errors.As(err, &p) || p.Value != "boom" {
		t.Fatalf("error: got %v", err)
	}
	if !strings.Contains(buf.String(), `"tool":"ungroup_shapes"`) {
		t.Fatalf("log: %s", buf.String())
	}
}

func TestLogging_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	fail := func(_ context.Context, _ any) (any, error) {
		return nil, errors.New("Invalid slide index: 9")
	}

	ctx := WithTransport(WithTool(context.Background(), "get_slide_text"), "http")
	if _, err := Logging(logger)(fail)(ctx, nil); err == nil {
		t.Fatal("expected error")
	}
	out := buf.String()
	for _, want := range []string{`"level":"WARN"`, `"tool":"get_slide_text"`, `"transport":"http"`, "Invalid slide index: 9"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s: %s", want, out)
		}
	}
}

package mcpquic

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/slidekit/idgen"
	"github.com/hazyhaar/slidekit/kit"
)

// --- Magic bytes ---

func TestSendAndValidate_Roundtrip(t *testing.T) {
	var buf bytes.Buffer
	if err := SendMagicBytes(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != MagicBytesMCP {
		t.Fatalf("magic: got %q, want %q", buf.String(), MagicBytesMCP)
	}
	if err := ValidateMagicBytes(&buf); err != nil {
		t.Fatal(err)
	}
}

func TestValidateMagicBytes_Invalid(t *testing.T) {
	err := ValidateMagicBytes(bytes.NewReader([]byte("HTTP")))
	if !errors.Is(err, ErrInvalidMagicBytes) {
		t.Fatalf("expected ErrInvalidMagicBytes, got: %v", err)
	}
}

func TestValidateMagicBytes_TooShort(t *testing.T) {
	err := ValidateMagicBytes(bytes.NewReader([]byte("MC")))
	if err == nil || errors.Is(err, ErrInvalidMagicBytes) {
		t.Fatalf("expected short read error, got: %v", err)
	}
}

// --- Config ---

func TestProductionQUICConfig(t *testing.T) {
	cfg := ProductionQUICConfig()
	if cfg.MaxIdleTimeout != DefaultIdleTimeout {
		t.Fatalf("idle timeout: got %v", cfg.MaxIdleTimeout)
	}
	if cfg.KeepAlivePeriod != DefaultKeepAlive {
		t.Fatalf("keepalive: got %v", cfg.KeepAlivePeriod)
	}
	if cfg.Allow0RTT {
		t.Fatal("0-RTT should be disabled")
	}
}

func TestSelfSignedTLSConfig(t *testing.T) {
	cfg, err := SelfSignedTLSConfig()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Certificates) != 1 {
		t.Fatalf("certs: got %d", len(cfg.Certificates))
	}
	if cfg.MinVersion != tls.VersionTLS13 {
		t.Fatalf("min version: got %x", cfg.MinVersion)
	}
	if len(cfg.NextProtos) != 1 || cfg.NextProtos[0] != ALPNProtocolMCP {
		t.Fatalf("ALPN: got %v", cfg.NextProtos)
	}
}

func TestServerTLSConfig_MissingFiles(t *testing.T) {
	if _, err := ServerTLSConfig("/nonexistent/cert.pem", "/nonexistent/key.pem"); err == nil {
		t.Fatal("expected error")
	}
}

func TestClientTLSConfig(t *testing.T) {
	if !ClientTLSConfig(true).InsecureSkipVerify {
		t.Fatal("expected InsecureSkipVerify=true")
	}
	cfg := ClientTLSConfig(false)
	if cfg.InsecureSkipVerify {
		t.Fatal("expected InsecureSkipVerify=false")
	}
	if cfg.MinVersion != tls.VersionTLS13 {
		t.Fatalf("min version: got %x", cfg.MinVersion)
	}
}

// --- Errors ---

func TestConnectionError(t *testing.T) {
	inner := errors.New("timeout")
	ce := &ConnectionError{
		RemoteAddr: "127.0.0.1:8443",
		Code:       ConnErrorProtocolViolation,
		Err:        inner,
	}
	msg := ce.Error()
	if !strings.Contains(msg, "127.0.0.1:8443") || !strings.Contains(msg, "0x03") {
		t.Fatalf("error message: %s", msg)
	}
	if !errors.Is(ce, inner) {
		t.Fatal("Unwrap should return inner error")
	}
}

// --- Client ---

func TestNewClient_DefaultTLS(t *testing.T) {
	c := NewClient("localhost:8443", nil)
	if c.tlsCfg == nil || c.tlsCfg.InsecureSkipVerify {
		t.Fatal("default TLS should verify the server certificate")
	}
}

func TestClient_NotConnected(t *testing.T) {
	c := NewClient("localhost:1234", nil)
	ctx := context.Background()
	if _, err := c.ListTools(ctx); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("ListTools: %v", err)
	}
	if _, err := c.CallTool(ctx, "get_slides", nil); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("CallTool: %v", err)
	}
	if err := c.Ping(ctx); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Ping: %v", err)
	}
}

// --- Loopback ---

func TestLoopback_CallTool(t *testing.T) {
	srv := mcp.NewServer(&mcp.Implementation{Name: "quic-test", Version: "0.1.0"}, nil)
	type echoReq struct {
		Word string `json:"word"`
	}
	kit.RegisterMCPTool(srv, &mcp.Tool{Name: "echo", InputSchema: map[string]any{"type": "object"}},
		func(_ context.Context, req any) (any, error) {
			return map[string]string{"word": req.(*echoReq).Word}, nil
		}, kit.DecodeArgs[echoReq]())

	tlsCfg, err := SelfSignedTLSConfig()
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l, err := NewListener("127.0.0.1:0", tlsCfg, srv, logger, WithHandlerIDGenerator(idgen.Sequence("s")))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	go l.Serve(ctx)
	t.Cleanup(func() { l.Close() })

	c := NewClient(l.Addr(), ClientTLSConfig(true))
	if err := c.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	tools, err := c.ListTools(ctx)
	if err != nil || len(tools.Tools) != 1 || tools.Tools[0].Name != "echo" {
		t.Fatalf("tools = %v, %v", tools, err)
	}
	res, err := c.CallTool(ctx, "echo", map[string]any{"word": "slide"})
	if err != nil || res.IsError {
		t.Fatalf("call = %v, %v", res, err)
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(res.Content[0].(*mcp.TextContent).Text), &out); err != nil {
		t.Fatal(err)
	}
	if out["word"] != "slide" {
		t.Fatalf("echo = %v", out)
	}
	if err := c.Ping(ctx); err != nil {
		t.Fatal(err)
	}
}

package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/slidekit/mcpquic"
	"github.com/hazyhaar/slidekit/shield"
	"github.com/hazyhaar/slidekit/slides"
)

type serveFlags struct {
	config    string
	transport string
	httpAddr  string
	quicAddr  string
	root      string
	journal   string
}

func serveCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, &f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, newLogger(cfg.LogLevel))
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "path to slidekit.yaml")
	fl.StringVar(&f.transport, "transport", "", "stdio, http or quic")
	fl.StringVar(&f.httpAddr, "http-addr", "", "listen address of the http transport")
	fl.StringVar(&f.quicAddr, "quic-addr", "", "listen address of the quic transport")
	fl.StringVar(&f.root, "root", "", "directory every file path is confined to")
	fl.StringVar(&f.journal, "journal", "", "SQLite path of the tool call journal")
	return cmd
}

// resolveConfig loads the config file, if any, then applies the flags the
// caller set explicitly.
func resolveConfig(cmd *cobra.Command, f *serveFlags) (*slides.Config, error) {
	cfg := slides.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = slides.LoadConfigFile(f.config); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	changed := cmd.Flags().Changed
	if changed("transport") {
		cfg.Transport = f.transport
	}
	if changed("http-addr") {
		cfg.HTTPAddr = f.httpAddr
	}
	if changed("quic-addr") {
		cfg.QUIC.Addr = f.quicAddr
	}
	if changed("root") {
		cfg.RootDir = f.root
	}
	if changed("journal") {
		cfg.Journal.DBPath = f.journal
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	switch cfg.Transport {
	case "stdio", "http", "quic":
	default:
		return nil, fmt.Errorf("invalid transport: %s (must be stdio, http or quic)", cfg.Transport)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *slides.Config, logger *slog.Logger) error {
	svc, err := slides.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	if j := svc.Journal(); j != nil {
		defer j.Close()
		n, err := j.Cleanup(ctx, cfg.Journal.Retention)
		if err != nil {
			logger.Warn("journal cleanup", "error", err)
		} else if n > 0 {
			logger.Info("journal cleanup", "deleted", n)
		}
	}

	srv := mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: cfg.Version}, nil)
	svc.RegisterMCP(srv)
	logger.Info("slidekit starting", "transport", cfg.Transport, "journal", cfg.Journal.Enabled())

	switch cfg.Transport {
	case "http":
		return serveHTTP(ctx, cfg, srv, logger)
	case "quic":
		return serveQUIC(ctx, cfg, srv, logger)
	default:
		err := srv.Run(ctx, &mcp.StdioTransport{})
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
}

func serveHTTP(ctx context.Context, cfg *slides.Config, srv *mcp.Server, logger *slog.Logger) error {
	r := chi.NewRouter()
	for _, mw := range shield.DefaultStack(logger, cfg.MaxFile) {
		r.Use(mw)
	}
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil))

	hs := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func serveQUIC(ctx context.Context, cfg *slides.Config, srv *mcp.Server, logger *slog.Logger) error {
	var tlsCfg *tls.Config
	var err error
	if cfg.QUIC.CertFile != "" && cfg.QUIC.KeyFile != "" {
		tlsCfg, err = mcpquic.ServerTLSConfig(cfg.QUIC.CertFile, cfg.QUIC.KeyFile)
	} else {
		logger.Warn("quic: no certificate configured, using a self-signed one")
		tlsCfg, err = mcpquic.SelfSignedTLSConfig()
	}
	if err != nil {
		return fmt.Errorf("quic tls: %w", err)
	}

	l, err := mcpquic.NewListener(cfg.QUIC.Addr, tlsCfg, srv, logger)
	if err != nil {
		return fmt.Errorf("quic listen: %w", err)
	}
	go func() {
		<-ctx.Done()
		l.Close()
	}()
	err = l.Serve(ctx)
	if ctx.Err() != nil || errors.Is(err, mcpquic.ErrConnectionClosed) {
		return nil
	}
	return err
}

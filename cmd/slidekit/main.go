// Command slidekit edits PowerPoint decks, as an MCP server or one-shot.
//
// Usage:
//
//	slidekit serve --config slidekit.yaml          # MCP over stdio (default)
//	slidekit serve --transport http --http-addr :8080
//	slidekit serve --transport quic --quic-addr :8443
//	slidekit ungroup deck.pptx out.pptx --slide 2  # flatten text groups
//	slidekit inspect deck.pptx                     # parts and slides as JSON
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var logLevel string

func main() {
	root := &cobra.Command{
		Use:           "slidekit",
		Short:         "Edit PowerPoint presentations over MCP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.AddCommand(serveCmd(), ungroupCmd(), inspectCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("slidekit: fatal", "error", err)
		os.Exit(1)
	}
}

// newLogger writes JSON to stderr: stdout carries the stdio transport.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

package kit

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// Logging logs every tool call with its duration. Failures are logged at
// warn level; the caller still receives the error as a tool result.
func Logging(logger *slog.Logger) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			dur := time.Since(start)

			if err != nil {
				logger.WarnContext(ctx, "tool call failed",
					"tool", GetTool(ctx),
					"transport", GetTransport(ctx),
					"duration_ms", dur.Milliseconds(),
					"error", err)
			} else {
				logger.DebugContext(ctx, "tool call ok",
					"tool", GetTool(ctx),
					"transport", GetTransport(ctx),
					"duration_ms", dur.Milliseconds())
			}
			return resp, err
		}
	}
}

// Recovery turns a panic in a downstream endpoint into an *ErrPanic so one
// malformed document cannot take the server down.
func Recovery(logger *slog.Logger) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (resp any, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "tool panic recovered",
						"tool", GetTool(ctx),
						"panic", r,
						"stack", string(debug.Stack()))
					resp, err = nil, &ErrPanic{Value: r}
				}
			}()
			return next(ctx, req)
		}
	}
}

// ErrPanic wraps a recovered panic value.
type ErrPanic struct {
	Value any
}

func (e *ErrPanic) Error() string {
	return fmt.Sprintf("internal error: %v", e.Value)
}

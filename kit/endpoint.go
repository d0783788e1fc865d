// Package kit holds the transport-neutral plumbing shared by slidekit tools:
// endpoints, middleware chains, context keys and the MCP tool adapter.
package kit

import "context"

// Endpoint is a single tool operation. req is the decoded request struct.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint.
type Middleware func(next Endpoint) Endpoint

// Chain composes middlewares left-to-right: the first one is the outermost
// wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

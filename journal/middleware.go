package journal

import (
	"context"
	"time"

	"github.com/hazyhaar/slidekit/kit"
)

// Scoped is implemented by requests that address one presentation.
type Scoped interface {
	PresentationHandle() string
}

// Middleware journals every call passing through the endpoint chain. The
// tool name, transport and session come from the kit context keys.
func (j *Journal) Middleware() kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			e := j.NewEntry(kit.GetTool(ctx), req, resp, err, time.Since(start))
			e.Transport = kit.GetTransport(ctx)
			e.SessionID = kit.GetSessionID(ctx)
			if s, ok := req.(Scoped); ok {
				e.PresentationID = s.PresentationHandle()
			}
			j.RecordAsync(e)
			return resp, err
		}
	}
}

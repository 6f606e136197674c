package httpapi

import (
	"context"
	"net/http"
	"time"
)

// serverBaseCtx is canceled on shutdown so in-flight LM Studio calls stop too.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// callTimeout bounds one API call including any fallback attempt. Zero disables it.
var callTimeout time.Duration

// SetCallTimeout sets the per-request deadline handed to the services.
func SetCallTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	callTimeout = d
}

// callContext returns the context handlers pass to the services: canceled when
// the client goes away, when the server shuts down, or when callTimeout expires.
func callContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	if callTimeout <= 0 {
		return ctx, cancel
	}
	tctx, tcancel := context.WithTimeout(ctx, callTimeout)
	return tctx, func() {
		tcancel()
		cancel()
	}
}

// joinContexts returns a context that is canceled when either a or b is done.
// The returned cancel func must be called to release the goroutine.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

package testutil

import (
	"context"
	"net/http"
	"time"

	"vouch/pkg/domain"
	"vouch/pkg/requestcontext"
)

// CallerAt returns a context carrying an authenticated caller and a fixed
// request time, the state services see behind the HTTP middleware.
func CallerAt(caller domain.PublicKey, at time.Time) context.Context {
	ctx := requestcontext.WithTime(context.Background(), at)
	return requestcontext.WithCaller(ctx, caller)
}

// WithCaller adds an authenticated caller to the request context.
func WithCaller(req *http.Request, caller domain.PublicKey) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}

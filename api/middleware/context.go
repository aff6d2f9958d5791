package middleware

import "context"

type contextKey string

const (
	ctxClientID  contextKey = "client_id"
	ctxRequestID contextKey = "request_id"
)

// ClientIDFromContext returns the caller-supplied client identifier, if any.
func ClientIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxClientID).(string); ok {
		return v
	}
	return ""
}

// WithClientID injects the client identifier into the context.
func WithClientID(ctx context.Context, clientID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClientID, clientID)
}

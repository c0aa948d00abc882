package service

import "context"

type contextKey string

const (
	ctxKeySessionID contextKey = "audit_session_id"
	ctxKeyClientIP  contextKey = "audit_client_ip"
	ctxKeyUserAgent contextKey = "audit_user_agent"
)

// Placeholder values used when no request context is available. The true
// client IP cannot be trusted from the client side; the receiving collector
// populates it authoritatively.
const (
	placeholderIP        = "0.0.0.0"
	placeholderUserAgent = "unknown"
)

// WithSessionID tags a context with the session whose persisted user record
// should attribute audit entries.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID, sessionID)
}

// SessionIDFromContext extracts the session id, if any.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySessionID).(string); ok {
		return v
	}
	return ""
}

// WithClientInfo tags a context with the caller's network identity.
func WithClientInfo(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyClientIP, ip)
	return context.WithValue(ctx, ctxKeyUserAgent, userAgent)
}

func clientInfoFromContext(ctx context.Context) (ip, userAgent string) {
	ip, userAgent = placeholderIP, placeholderUserAgent
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok && v != "" {
		ip = v
	}
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok && v != "" {
		userAgent = v
	}
	return ip, userAgent
}

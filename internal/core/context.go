package core

import "context"

type contextKey string

const ctxKeyClient contextKey = "audit_client"

// ClientInfo identifies who issued a request, for the audit trail.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// ContextWithClient attaches client details to ctx.
func ContextWithClient(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, ctxKeyClient, ClientInfo{IPAddress: ip, UserAgent: userAgent})
}

// ClientFromContext returns the client details attached to ctx, if any.
func ClientFromContext(ctx context.Context) ClientInfo {
	if v, ok := ctx.Value(ctxKeyClient).(ClientInfo); ok {
		return v
	}
	return ClientInfo{}
}

package aclkit

import (
	"context"
)

// Context keys for ACLKit values.
type contextKey string

const (
	contextKeyRoles     contextKey = "aclkit:roles"
	contextKeyActorID   contextKey = "aclkit:actor_id"
	contextKeyIPAddress contextKey = "aclkit:ip_address"
	contextKeyUserAgent contextKey = "aclkit:user_agent"
	contextKeyRequestID contextKey = "aclkit:request_id"
	contextKeyChecker   contextKey = "aclkit:checker"
)

// WithRoles adds the caller's roles to the context.
// These are the roles permission checks run with.
func WithRoles(ctx context.Context, roles ...string) context.Context {
	stored := make([]string, len(roles))
	copy(stored, roles)
	return context.WithValue(ctx, contextKeyRoles, stored)
}

// GetRoles retrieves the caller's roles from context.
// Returns nil if not set.
func GetRoles(ctx context.Context) []string {
	if v := ctx.Value(contextKeyRoles); v != nil {
		if roles, ok := v.([]string); ok {
			out := make([]string, len(roles))
			copy(out, roles)
			return out
		}
	}
	return nil
}

// MustGetRoles retrieves the caller's roles from context.
// Panics if none are set.
func MustGetRoles(ctx context.Context) []string {
	roles := GetRoles(ctx)
	if len(roles) == 0 {
		panic("aclkit: no roles in context")
	}
	return roles
}

// WithActorID adds an actor ID to the context.
// This identifies who performs definition changes (for audit purposes);
// roles say what a caller may do, the actor ID says who the caller is.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, contextKeyActorID, actorID)
}

// GetActorID retrieves the actor ID from context.
// Returns empty string if not set.
func GetActorID(ctx context.Context) string {
	if v := ctx.Value(contextKeyActorID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithIPAddress adds the client IP address to the context (for audit).
func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyIPAddress, ip)
}

// GetIPAddress retrieves the IP address from context.
func GetIPAddress(ctx context.Context) string {
	if v := ctx.Value(contextKeyIPAddress); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithUserAgent adds the user agent to the context (for audit).
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, contextKeyUserAgent, ua)
}

// GetUserAgent retrieves the user agent from context.
func GetUserAgent(ctx context.Context) string {
	if v := ctx.Value(contextKeyUserAgent); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context (for audit and correlation).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(contextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithChecker adds a Checker to the context.
// This is set by middleware and can be retrieved in handlers.
func WithChecker(ctx context.Context, checker *Checker) context.Context {
	return context.WithValue(ctx, contextKeyChecker, checker)
}

// GetChecker retrieves the Checker from context.
// Returns nil if not set.
func GetChecker(ctx context.Context) *Checker {
	if v := ctx.Value(contextKeyChecker); v != nil {
		if c, ok := v.(*Checker); ok {
			return c
		}
	}
	return nil
}

// FromContext retrieves the Checker from context.
// Alias for GetChecker for convenience.
func FromContext(ctx context.Context) *Checker {
	return GetChecker(ctx)
}

// AuditContext holds all audit-related information from context.
type AuditContext struct {
	ActorID   string
	IPAddress string
	UserAgent string
	RequestID string
}

// GetAuditContext extracts all audit information from context.
func GetAuditContext(ctx context.Context) AuditContext {
	return AuditContext{
		ActorID:   GetActorID(ctx),
		IPAddress: GetIPAddress(ctx),
		UserAgent: GetUserAgent(ctx),
		RequestID: GetRequestID(ctx),
	}
}

// WithAuditContext adds all audit information to context at once.
func WithAuditContext(ctx context.Context, ac AuditContext) context.Context {
	if ac.ActorID != "" {
		ctx = WithActorID(ctx, ac.ActorID)
	}
	if ac.IPAddress != "" {
		ctx = WithIPAddress(ctx, ac.IPAddress)
	}
	if ac.UserAgent != "" {
		ctx = WithUserAgent(ctx, ac.UserAgent)
	}
	if ac.RequestID != "" {
		ctx = WithRequestID(ctx, ac.RequestID)
	}
	return ctx
}

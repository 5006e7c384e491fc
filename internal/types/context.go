package types

import "context"

// ContextKey is the type for request scoped context values
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxUserID    ContextKey = "ctx_user_id"
	CtxUserEmail ContextKey = "ctx_user_email"
	CtxUserRole  ContextKey = "ctx_user_role"
)

// DefaultUserID is recorded as the actor when no caller is authenticated,
// e.g. for background jobs
const DefaultUserID = "system"

func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(CtxRequestID).(string); ok {
		return v
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(CtxUserID).(string); ok && v != "" {
		return v
	}
	return DefaultUserID
}

func GetUserEmail(ctx context.Context) string {
	if v, ok := ctx.Value(CtxUserEmail).(string); ok {
		return v
	}
	return ""
}

func GetUserRole(ctx context.Context) UserRole {
	if v, ok := ctx.Value(CtxUserRole).(UserRole); ok {
		return v
	}
	return ""
}

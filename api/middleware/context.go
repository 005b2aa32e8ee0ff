package middleware

import (
	"context"

	pkgAuth "github.com/riderschoice/riderschoice-backend/pkg/auth"
)

type contextKey string

const (
	ctxActor    contextKey = "actor"
	ctxAccessID contextKey = "access_id"
)

// WithAuth attaches the resolved caller and its session id to the context.
func WithAuth(ctx context.Context, actor pkgAuth.AuthenticatedContext, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxActor, actor)
	return context.WithValue(ctx, ctxAccessID, accessID)
}

// AuthFromContext returns the caller seeded by Auth, or a zero value for anonymous requests.
func AuthFromContext(ctx context.Context) pkgAuth.AuthenticatedContext {
	if ctx == nil {
		return pkgAuth.AuthenticatedContext{}
	}
	if v, ok := ctx.Value(ctxActor).(pkgAuth.AuthenticatedContext); ok {
		return v
	}
	return pkgAuth.AuthenticatedContext{}
}

func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

func UserIDFromContext(ctx context.Context) string {
	actor := AuthFromContext(ctx)
	if actor.IsZero() {
		return ""
	}
	return actor.AccountID.String()
}

func RoleFromContext(ctx context.Context) string {
	return string(AuthFromContext(ctx).Role)
}

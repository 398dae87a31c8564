package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/NghaReformer/eventune-backend/internal/authz"
	"github.com/NghaReformer/eventune-backend/pkg/enums"
)

type contextKey string

const ctxActor contextKey = "staff_actor"

// WithActor injects the authenticated staff actor into the context.
func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// ActorFromContext returns the authenticated staff actor, or a zero actor
// when the request is unauthenticated.
func ActorFromContext(ctx context.Context) authz.Actor {
	if ctx == nil {
		return authz.Actor{}
	}
	if actor, ok := ctx.Value(ctxActor).(authz.Actor); ok {
		return actor
	}
	return authz.Actor{}
}

// RoleFromContext returns the authenticated actor's role.
func RoleFromContext(ctx context.Context) enums.StaffRole {
	return ActorFromContext(ctx).Role
}

func actorIsAuthenticated(actor authz.Actor) bool {
	return actor.ID != uuid.Nil && actor.Email != ""
}

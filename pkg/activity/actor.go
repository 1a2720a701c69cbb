package activity

import (
	"context"
	"strings"
)

// Actor identifies who triggered a write.
type Actor struct {
	ActorID  string
	UserID   string
	TenantID string
}

// IsZero reports whether no identifier is set.
func (a Actor) IsZero() bool {
	return a == Actor{}
}

func (a Actor) trimmed() Actor {
	return Actor{
		ActorID:  strings.TrimSpace(a.ActorID),
		UserID:   strings.TrimSpace(a.UserID),
		TenantID: strings.TrimSpace(a.TenantID),
	}
}

// fill copies identifiers from other into the fields a leaves empty.
func (a Actor) fill(other Actor) Actor {
	if a.ActorID == "" {
		a.ActorID = other.ActorID
	}
	if a.UserID == "" {
		a.UserID = other.UserID
	}
	if a.TenantID == "" {
		a.TenantID = other.TenantID
	}
	return a
}

type actorKey struct{}

// WithActor returns a context whose writes are attributed to actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

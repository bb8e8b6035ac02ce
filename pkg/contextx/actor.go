package contextx

import (
	"context"
	"fmt"
)

// Actor identifies who issued a write (settings toggles record it as updated_by).
type Actor string

type contextKeyActor struct{}

func (a Actor) String() string {
	return string(a)
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextKeyActor{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, error) {
	actor, ok := ctx.Value(contextKeyActor{}).(Actor)
	if !ok {
		return "", fmt.Errorf("actor: %w", ErrNoValue)
	}

	return actor, nil
}

// ActorFromContextOr falls back to def when no actor was attached.
func ActorFromContextOr(ctx context.Context, def Actor) Actor {
	actor, err := ActorFromContext(ctx)
	if err != nil || actor == "" {
		return def
	}

	return actor
}

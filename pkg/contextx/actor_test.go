package contextx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"p2p_market/pkg/contextx"
)

func TestActor(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	var testActorEmpty contextx.Actor

	testActor := contextx.Actor("operator-1")

	actor, err := contextx.ActorFromContext(ctx)
	rq.Equal(testActorEmpty, actor)
	rq.ErrorIs(err, contextx.ErrNoValue)
	rq.ErrorContains(err, "actor: no value in context")
	rq.Equal(contextx.Actor("api"), contextx.ActorFromContextOr(ctx, "api"))

	ctx = contextx.WithActor(ctx, testActor)

	actor, err = contextx.ActorFromContext(ctx)
	rq.Equal(testActor, actor)
	rq.NoError(err)
	rq.Equal(testActor, contextx.ActorFromContextOr(ctx, "api"))
}

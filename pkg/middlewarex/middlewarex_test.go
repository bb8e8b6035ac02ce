package middlewarex_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"p2p_market/pkg/contextx"
	"p2p_market/pkg/middlewarex"
)

func TestCORS(t *testing.T) {
	rq := require.New(t)

	var called bool

	h := middlewarex.CORS(http.MethodGet, http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/offers", http.NoBody))

	rq.False(called)
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
	rq.Equal("GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	rq.Equal("86400", rec.Header().Get("Access-Control-Max-Age"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/offers", http.NoBody))

	rq.True(called)
	rq.Equal(http.StatusTeapot, rec.Code)
	rq.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
	rq.Empty(rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestActorAndTraceID(t *testing.T) {
	rq := require.New(t)

	var (
		gotActor contextx.Actor
		gotTrace contextx.TraceID
	)

	h := middlewarex.TraceID(middlewarex.Actor(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotActor = contextx.ActorFromContextOr(r.Context(), "anonymous")
		gotTrace, _ = contextx.TraceIDFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodPost, "/v1/settings", http.NoBody)
	req.Header.Set("X-Actor", "  ops  ")
	req.Header.Set("X-Trace-Id", "trace-1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	rq.Equal(contextx.Actor("ops"), gotActor)
	rq.Equal(contextx.TraceID("trace-1"), gotTrace)
	rq.Equal("trace-1", rec.Header().Get("X-Trace-Id"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/offers", http.NoBody))

	rq.Equal(contextx.Actor("anonymous"), gotActor)
	rq.Len(rec.Header().Get("X-Trace-Id"), 20)
}

func TestRecovery(t *testing.T) {
	rq := require.New(t)

	h := middlewarex.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	rq.Equal(http.StatusInternalServerError, rec.Code)
	rq.JSONEq(`{"success":false,"code":"InternalServerError","message":"internal error"}`, rec.Body.String())
}

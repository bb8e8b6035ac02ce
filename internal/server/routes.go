package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"p2p_market/pkg/httpx/reply"
	"p2p_market/pkg/logx"
	"p2p_market/pkg/middlewarex"
)

// NewRouter собирает публичный API вместе с цепочкой middleware.
func NewRouter(s Server, sensitiveDataMasker logx.SensitiveDataMaskerInterface, logFieldMaxLen int) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middlewarex.CORS(http.MethodGet, http.MethodPost),
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.Actor,
		middlewarex.RequestLogging(sensitiveDataMasker, logFieldMaxLen),
		middlewarex.ResponseLogging(sensitiveDataMasker, logFieldMaxLen),
	)

	s.RegisterRoutes(r)

	return r
}

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/offers", handler(s.getV1Offers))
		r.Post("/settings", handler(s.postV1Settings))
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}

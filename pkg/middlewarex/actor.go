package middlewarex

import (
	"net/http"
	"strings"

	"p2p_market/pkg/contextx"
)

const (
	headerNameActor = "X-Actor"
	maxActorLen     = 64
)

// Actor records the caller-supplied operator name for audit fields. End-user
// authentication is out of scope; the value is informational only.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := strings.TrimSpace(r.Header.Get(headerNameActor))
		if actor == "" {
			next.ServeHTTP(w, r)

			return
		}

		if len(actor) > maxActorLen {
			actor = actor[:maxActorLen]
		}

		next.ServeHTTP(w, r.WithContext(contextx.WithActor(r.Context(), contextx.Actor(actor))))
	})
}

package middlewarex

import (
	"net/http"
	"strings"
)

const corsMaxAge = "86400"

// CORS allows browser dashboards on any origin to read the offer book.
func CORS(methods ...string) func(next http.Handler) http.Handler {
	allowMethods := strings.Join(append(methods, http.MethodOptions), ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)

				return
			}

			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+headerNameActor+", "+headerNameTraceID)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusOK)
		})
	}
}

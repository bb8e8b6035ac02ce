package middlewarex

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"p2p_market/pkg/logx"
)

const panicResponseBody = `{"success":false,"code":"InternalServerError","message":"internal error"}`

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			if rec := recover(); rec != nil {
				logger(ctx).Error(
					"panic in handler",
					slog.Any(logx.FieldError, rec),
					slog.String(logx.FieldStack, string(debug.Stack())),
				)

				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(panicResponseBody)) //nolint:errcheck
			}
		}()

		next.ServeHTTP(w, r)
	})
}

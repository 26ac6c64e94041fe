package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// WithTrustedProxy rewrites RemoteAddr from X-Real-IP / X-Forwarded-For only
// when the API sits behind a proxy that sets those headers itself. Otherwise
// any client could rotate the header and dodge the conversion allowance, so
// the socket address is kept as is.
func WithTrustedProxy(trusted bool) func(http.Handler) http.Handler {
	if trusted {
		return chimw.RealIP
	}
	return func(next http.Handler) http.Handler { return next }
}

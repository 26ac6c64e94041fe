package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/opustools/opustools-go/internal/api_context"
	"github.com/opustools/opustools-go/internal/handler/api"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
)

type limitExceeded struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

var errLimitExceeded = limitExceeded{
	Detail: "Conversion limit exceeded. Please create an account to process more files.",
	Code:   "conversion_limit_exceeded",
}

// WithConversionAllowance caps the kind jobs an anonymous client may create
// per UTC day. Each tool has its own allowance. It must run after
// WithOptionalAuth and WithTrustedProxy.
func WithConversionAllowance(counter port.ConversionCounter, kind port.JobKind, limit int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := api_context.AuthUserIDFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			client := clientIP(r)
			n, err := counter.IncrementConversions(r.Context(), kind, client, time.Now().UTC())
			if err != nil {
				logger.Warnf(r.Context(), "%s conversion counter degraded for %s: %v", kind, client, err)
			}
			if n == 0 {
				// unknown count: a broken counter must not take the tools down
				next.ServeHTTP(w, r)
				return
			}
			if n > int64(limit) {
				logger.Infof(r.Context(), "%s conversion limit reached for %s (%d/%d)", kind, client, n, limit)
				w.Header().Set("Cache-Control", "no-store, max-age=0, must-revalidate")
				api.RespondJSON(w, http.StatusForbidden, errLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

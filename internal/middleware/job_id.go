package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opustools/opustools-go/internal/api_context"
	"github.com/opustools/opustools-go/internal/handler/api"
	"github.com/opustools/opustools-go/internal/uuid"
)

// WithJobID resolves the {id} path segment of the job routes. Malformed ids
// stop at 400 so handlers only ever see a parsed job id.
func WithJobID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := chi.URLParam(r, "id")
			if raw == "" {
				api.WriteError(w, http.StatusBadRequest, "Job id is required.", nil)
				return
			}
			jobID, err := uuid.Parse(raw)
			if err != nil {
				api.WriteError(w, http.StatusBadRequest, "Job id must be a UUID.", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(api_context.WithJobID(r.Context(), jobID)))
		})
	}
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/opustools/opustools-go/internal/api_context"
	"github.com/opustools/opustools-go/internal/uuid"
)

func TestWithJobID(t *testing.T) {
	validID := "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

	tests := []struct {
		name         string
		param        string
		wantStatus   int
		wantInBody   string
		wantNextCall bool
	}{
		{"missing id", "", http.StatusBadRequest, "Job id is required.", false},
		{"invalid uuid", "not-a-uuid", http.StatusBadRequest, "Job id must be a UUID.", false},
		{"valid uuid", validID, http.StatusOK, "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotID uuid.UUID
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				id, ok := api_context.IDFromContext(r.Context())
				if !ok {
					t.Fatal("expected ID in context")
				}
				gotID = id
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/image/jobs/"+tc.param+"/status", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tc.param)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rec := httptest.NewRecorder()
			WithJobID()(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tc.wantStatus)
			}
			if called != tc.wantNextCall {
				t.Fatalf("next called = %v; want %v", called, tc.wantNextCall)
			}
			if tc.wantInBody != "" && !strings.Contains(rec.Body.String(), tc.wantInBody) {
				t.Errorf("body = %q; want to contain %q", rec.Body.String(), tc.wantInBody)
			}
			if tc.wantNextCall && gotID.String() != validID {
				t.Errorf("context ID = %s; want %s", gotID, validID)
			}
		})
	}
}

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/opustools/opustools-go/internal/api_context"
	"github.com/opustools/opustools-go/internal/mock"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/token"
	"github.com/opustools/opustools-go/internal/uuid"
)

var testUser = uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

func validClaims() port.TokenClaims {
	return port.TokenClaims{UserID: testUser, TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}
}

type capture struct {
	called bool
	userID uuid.UUID
	authed bool
	jti    string
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.userID, c.authed = api_context.AuthUserIDFromContext(r.Context())
		c.jti, _, _ = api_context.AuthTokenFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestWithAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		parseErr   error
		denied     bool
		checkErr   error
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", nil, false, nil, http.StatusUnauthorized, "missing bearer token"},
		{"wrong scheme", "Basic abc", nil, false, nil, http.StatusUnauthorized, "missing bearer token"},
		{"empty bearer", "Bearer   ", nil, false, nil, http.StatusUnauthorized, "missing bearer token"},
		{"expired", "Bearer tok", token.ErrTokenExpired, false, nil, http.StatusUnauthorized, "token expired"},
		{"bad issuer", "Bearer tok", token.ErrBadIssuer, false, nil, http.StatusUnauthorized, "bad issuer"},
		{"bad audience", "Bearer tok", token.ErrBadAudience, false, nil, http.StatusUnauthorized, "bad audience"},
		{"bad signature", "Bearer tok", token.ErrInvalidToken, false, nil, http.StatusUnauthorized, "unauthorized"},
		{"revoked", "Bearer tok", nil, true, nil, http.StatusUnauthorized, "token revoked"},
		{"deny-list down", "Bearer tok", nil, false, errors.New("redis down"), http.StatusUnauthorized, "unauthorized"},
		{"valid", "Bearer tok", nil, false, nil, http.StatusNoContent, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tokens := &mock.TokenManager{Claims: validClaims(), ParseErr: tc.parseErr}
			deny := &mock.TokenDenyList{Denied: map[string]bool{"jti-1": tc.denied}, CheckErr: tc.checkErr}
			c := &capture{}

			req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			WithAuth(tokens, deny)(c.handler()).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantBody != "" && !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Errorf("body = %q; want to contain %q", rec.Body.String(), tc.wantBody)
			}
			if tc.wantStatus != http.StatusNoContent {
				if c.called {
					t.Error("next handler should not be called")
				}
				return
			}
			if tokens.Parsed != "tok" {
				t.Errorf("parsed %q; want %q", tokens.Parsed, "tok")
			}
			if !c.authed || c.userID != testUser || c.jti != "jti-1" {
				t.Errorf("context not populated: authed=%v user=%s jti=%q", c.authed, c.userID, c.jti)
			}
		})
	}
}

func TestWithOptionalAuth(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		tokens := &mock.TokenManager{}
		c := &capture{}
		rec := httptest.NewRecorder()
		WithOptionalAuth(tokens, &mock.TokenDenyList{})(c.handler()).
			ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/image/convert", nil))

		if !c.called || c.authed {
			t.Fatalf("called=%v authed=%v; want anonymous pass-through", c.called, c.authed)
		}
		if tokens.Parsed != "" {
			t.Error("no token should have been parsed")
		}
	})

	t.Run("invalid token continues anonymously", func(t *testing.T) {
		c := &capture{}
		req := httptest.NewRequest(http.MethodPost, "/api/image/convert", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		WithOptionalAuth(&mock.TokenManager{ParseErr: token.ErrInvalidToken}, &mock.TokenDenyList{})(c.handler()).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent || !c.called || c.authed {
			t.Fatalf("status=%d called=%v authed=%v", rec.Code, c.called, c.authed)
		}
	})

	t.Run("revoked token continues anonymously", func(t *testing.T) {
		c := &capture{}
		req := httptest.NewRequest(http.MethodPost, "/api/image/convert", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		deny := &mock.TokenDenyList{Denied: map[string]bool{"jti-1": true}}
		WithOptionalAuth(&mock.TokenManager{Claims: validClaims()}, deny)(c.handler()).ServeHTTP(rec, req)

		if !c.called || c.authed {
			t.Fatalf("called=%v authed=%v", c.called, c.authed)
		}
	})

	t.Run("valid token identifies the user", func(t *testing.T) {
		c := &capture{}
		req := httptest.NewRequest(http.MethodPost, "/api/image/convert", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		WithOptionalAuth(&mock.TokenManager{Claims: validClaims()}, &mock.TokenDenyList{})(c.handler()).ServeHTTP(rec, req)

		if !c.authed || c.userID != testUser {
			t.Fatalf("authed=%v user=%s", c.authed, c.userID)
		}
	})
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/portalkit/portal/internal/api/websession"
	"github.com/portalkit/portal/internal/core/domain"
)

func sessionFor(role domain.Role) *domain.Session {
	s := domain.NewSession(time.Hour)
	if role != "" {
		s.SetAuthenticatedUser(domain.PublicUser{ID: 1, Username: "alice", Role: role})
	}
	return s
}

func TestGate(t *testing.T) {
	tests := []struct {
		name     string
		mw       echo.MiddlewareFunc
		role     domain.Role
		wantCode int
	}{
		{"auth anonymous", RequireAuth(), "", http.StatusUnauthorized},
		{"auth user", RequireAuth(), domain.RoleUser, http.StatusOK},
		{"auth admin", RequireAuth(), domain.RoleAdmin, http.StatusOK},
		{"admin anonymous", RequireAdmin(), "", http.StatusUnauthorized},
		{"admin user", RequireAdmin(), domain.RoleUser, http.StatusForbidden},
		{"admin admin", RequireAdmin(), domain.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			websession.Attach(c, sessionFor(tt.role))

			called := false
			handler := tt.mw(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})

			if err := handler(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if called != (tt.wantCode == http.StatusOK) {
				t.Fatalf("next called=%v with status %d", called, rec.Code)
			}
		})
	}
}

func TestGate_Messages(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = RequireAdmin()(func(echo.Context) error { return nil })(c)
	if want := `{"error":"please log in to access this page"}`; rec.Body.String() != want+"\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	websession.Attach(c, sessionFor(domain.RoleUser))
	_ = RequireAdmin()(func(echo.Context) error { return nil })(c)
	if want := `{"error":"you don't have permission to access this page"}`; rec.Body.String() != want+"\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func echoRequest(t *testing.T, e *echo.Echo, method, path, authz string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newTestServer(codec *TokenCodec, roles ...string) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(codec, DefaultSkipper))

	handler := func(c echo.Context) error {
		p, _ := PrincipalFromContext(c.Request().Context())
		return c.String(http.StatusOK, p.Username)
	}
	e.GET("/health", handler)
	e.POST("/api/v1/auth/login", handler)
	if len(roles) > 0 {
		e.GET("/api/v1/guarded", handler, RequireRole(roles...))
	} else {
		e.GET("/api/v1/guarded", handler)
	}
	return e
}

func TestMiddlewareResolvesPrincipal(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)
	e := newTestServer(codec)

	token, err := codec.Sign(uuid.New(), "patzero", RolePatient)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	rec := echoRequest(t, e, http.MethodGet, "/api/v1/guarded", "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if rec.Body.String() != "patzero" {
		t.Errorf("principal username = %q", rec.Body)
	}
}

func TestMiddlewareRejects(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)
	e := newTestServer(codec)

	cases := []struct {
		name  string
		authz string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"malformed token", "Bearer garbage"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := echoRequest(t, e, http.MethodGet, "/api/v1/guarded", tc.authz)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestMiddlewareSkipsPublicSurface(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)
	e := newTestServer(codec)

	for _, path := range []string{"/health", "/api/v1/auth/login"} {
		method := http.MethodGet
		if path != "/health" {
			method = http.MethodPost
		}
		rec := echoRequest(t, e, method, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)
	e := newTestServer(codec, RoleDoctor)

	sign := func(role string) string {
		token, err := codec.Sign(uuid.New(), role+"-user", role)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return "Bearer " + token
	}

	if rec := echoRequest(t, e, http.MethodGet, "/api/v1/guarded", sign(RolePatient)); rec.Code != http.StatusForbidden {
		t.Errorf("patient: status = %d, want 403", rec.Code)
	}
	if rec := echoRequest(t, e, http.MethodGet, "/api/v1/guarded", sign(RoleDoctor)); rec.Code != http.StatusOK {
		t.Errorf("doctor: status = %d, want 200", rec.Code)
	}
	// admin passes every role gate
	if rec := echoRequest(t, e, http.MethodGet, "/api/v1/guarded", sign(RoleAdmin)); rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}
}

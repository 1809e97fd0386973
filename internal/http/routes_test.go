package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	authctl "github.com/dropDatabas3/ssobridge/internal/http/controllers/auth"
	svcauth "github.com/dropDatabas3/ssobridge/internal/http/services/auth"
	"github.com/dropDatabas3/ssobridge/internal/session"
)

type stubService struct{}

func (stubService) Begin(context.Context, string) (string, error) {
	return "https://idp.test/authorize", nil
}

func (stubService) Callback(context.Context, svcauth.CallbackRequest) (*svcauth.CallbackResult, error) {
	return &svcauth.CallbackResult{UserID: "user-1", Provider: "acme"}, nil
}

func (stubService) Unlink(context.Context, string) error { return nil }

func (stubService) Providers() []svcauth.ProviderInfo { return nil }

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	sessions := session.NewManager(session.NewMemoryStore(), session.CookieOptions{}, time.Hour)
	handler, err := NewRouter(RouterDeps{
		Auth:            authctl.NewController(stubService{}, sessions),
		Unlink:          authctl.NewUnlinkController(stubService{}),
		Redirect:        &authctl.RedirectController{LoginURL: "https://idp.test/login"},
		MetricsRegistry: prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return handler
}

func TestRouter_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rec.Code)
	}
}

func TestRouter_NoStoreOnAuthRoutes(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/acme", nil))

	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("cache-control = %q", got)
	}
}

func TestRouter_RequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("missing X-Request-Id")
	}

	// Un request id entrante se respeta.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec = httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("request id = %q", got)
	}
}

func TestRouter_LoginRedirect(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("login = %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "https://idp.test/login" {
		t.Fatalf("location = %q", got)
	}

	// register_url no configurada: la ruta no existe.
	rec = httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/register", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("register = %d", rec.Code)
	}
}

func TestRouter_NotFoundEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not_found") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/auth/acme/callback":          "/auth/:provider/callback",
		"/auth/acme":                   "/auth/:provider",
		"/internal/users/u-99/deleted": "/internal/users/:id/deleted",
		"/healthz":                     "/healthz",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

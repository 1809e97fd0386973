package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	authctl "github.com/dropDatabas3/ssobridge/internal/http/controllers/auth"
)

// RouterDeps agrupa los controllers que monta el router.
type RouterDeps struct {
	Auth     *authctl.Controller
	Unlink   *authctl.UnlinkController
	Redirect *authctl.RedirectController

	// MetricsRegistry permite inyectar un registry propio en tests.
	// Nil usa el default de prometheus.
	MetricsRegistry prometheus.Registerer
}

// NewRouter arma el router chi con la cadena de middlewares completa.
func NewRouter(d RouterDeps) (http.Handler, error) {
	metricsHandler, err := RegisterMetrics(d.MetricsRegistry)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(withRecover)
	r.Use(withRequestID)
	r.Use(withMetrics)
	r.Use(withLogging)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// Flujo de login: nada de este grupo debe quedar cacheado.
	r.Group(func(r chi.Router) {
		r.Use(withNoStore)

		r.Get("/auth/providers", d.Auth.Providers)
		r.Get("/auth/{provider}", d.Auth.Begin)
		r.Get("/auth/{provider}/callback", d.Auth.Callback)
		r.Post("/auth/logout", d.Auth.Logout)
	})

	// Evento interno de borrado de cuenta.
	r.Post("/internal/users/{id}/deleted", d.Unlink.AccountDeleted)

	// Redirects opcionales hacia las páginas del provider.
	if d.Redirect != nil {
		if d.Redirect.LoginURL != "" {
			r.Get("/login", d.Redirect.Login)
		}
		if d.Redirect.RegisterURL != "" {
			r.Get("/register", d.Redirect.Register)
		}
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, errNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, errMethodNotAllowed)
	})

	return r, nil
}

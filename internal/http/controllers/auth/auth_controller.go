// Package auth contains the HTTP controllers for the federated login flow.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	svc "github.com/dropDatabas3/ssobridge/internal/http/services/auth"
	"github.com/dropDatabas3/ssobridge/internal/observability/logger"
	"github.com/dropDatabas3/ssobridge/internal/session"
)

// Controller handles /auth/{provider} begin and callback endpoints.
type Controller struct {
	service  svc.LoginService
	sessions *session.Manager
}

// NewController creates the auth controller.
func NewController(service svc.LoginService, sessions *session.Manager) *Controller {
	return &Controller{service: service, sessions: sessions}
}

// Begin handles GET /auth/{provider}: redirects to the provider.
func (c *Controller) Begin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.Begin"))

	providerName := chi.URLParam(r, "provider")
	if providerName == "" {
		writeBadRequest(w, "missing provider")
		return
	}

	authURL, err := c.service.Begin(ctx, providerName)
	if err != nil {
		if errors.Is(err, svc.ErrUnknownProvider) {
			writeNotFound(w)
			return
		}
		log.Error("begin failed", logger.Provider(providerName), logger.Err(err))
		writeAuthFailed(w)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles GET /auth/{provider}/callback: completes the login and
// establishes the session. The session is set exactly once, only on
// success; every failure surfaces as an opaque auth error.
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.Callback"))

	providerName := chi.URLParam(r, "provider")
	q := r.URL.Query()

	// Provider-reported errors short-circuit before any state handling.
	if idpErr := strings.TrimSpace(q.Get("error")); idpErr != "" {
		log.Warn("provider returned error",
			logger.Provider(providerName),
			logger.String("error", idpErr),
			logger.String("description", q.Get("error_description")),
		)
		writeAuthFailed(w)
		return
	}

	result, err := c.service.Callback(ctx, svc.CallbackRequest{
		Provider: providerName,
		State:    strings.TrimSpace(q.Get("state")),
		Code:     strings.TrimSpace(q.Get("code")),
	})
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrUnknownProvider):
			writeNotFound(w)
		case errors.Is(err, svc.ErrMissingState), errors.Is(err, svc.ErrMissingCode):
			writeBadRequest(w, err.Error())
		default:
			// Internal detail stays in logs; the user sees a generic failure.
			log.Error("callback failed", logger.Provider(providerName), logger.Err(err))
			writeAuthFailed(w)
		}
		return
	}

	if err := c.sessions.Establish(ctx, w, result.UserID, result.Provider); err != nil {
		log.Error("session establish failed", logger.UserID(result.UserID), logger.Err(err))
		writeAuthFailed(w)
		return
	}

	writeLoginOK(w, result.UserID)
}

// Providers handles GET /auth/providers: lists active strategies.
func (c *Controller) Providers(w http.ResponseWriter, r *http.Request) {
	writeProviders(w, c.service.Providers())
}

// Logout handles POST /auth/logout.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := c.sessions.Destroy(ctx, w, r); err != nil {
		logger.From(ctx).Error("logout failed", logger.Err(err))
		writeInternal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

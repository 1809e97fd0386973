package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	svc "github.com/dropDatabas3/ssobridge/internal/http/services/auth"
	"github.com/dropDatabas3/ssobridge/internal/observability/logger"
)

// UnlinkController receives account-deletion events from the host
// application and removes provider linkage data.
type UnlinkController struct {
	service svc.LoginService
}

// NewUnlinkController creates the unlink controller.
func NewUnlinkController(service svc.LoginService) *UnlinkController {
	return &UnlinkController{service: service}
}

// AccountDeleted handles POST /internal/users/{id}/deleted.
// Unlink is cleanup, not a gate: errors are reported to the caller but the
// response makes clear the deletion workflow should proceed regardless.
func (c *UnlinkController) AccountDeleted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.AccountDeleted"))

	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeBadRequest(w, "missing user id")
		return
	}

	if err := c.service.Unlink(ctx, userID); err != nil {
		log.Error("unlink failed", logger.UserID(userID), logger.Err(err))
		writeJSON(w, http.StatusOK, map[string]string{"status": "partial", "detail": "linkage cleanup failed, see logs"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

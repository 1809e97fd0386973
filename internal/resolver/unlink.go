package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/ssobridge/internal/domain/repository"
	"github.com/dropDatabas3/ssobridge/internal/metrics"
	"github.com/dropDatabas3/ssobridge/internal/observability/logger"
	"github.com/dropDatabas3/ssobridge/internal/provider"
)

// ErrUnlink wraps failures while removing provider linkage data.
var ErrUnlink = errors.New("unlink failed")

// UnlinkHandler removes the provider linkage when an internal account is
// deleted. It is a cleanup step, not a gate: callers log the error and
// proceed with the deletion workflow regardless.
type UnlinkHandler struct {
	cfg   *provider.Config
	links repository.LinkRepository
	dir   repository.UserDirectory
}

// NewUnlinkHandler creates an UnlinkHandler for one provider.
func NewUnlinkHandler(cfg *provider.Config, links repository.LinkRepository, dir repository.UserDirectory) *UnlinkHandler {
	return &UnlinkHandler{cfg: cfg, links: links, dir: dir}
}

// OnAccountDeleted deletes the identity link for the user, if any.
// Idempotent end to end: a user without a provider field, or an already
// deleted link, is not an error.
func (h *UnlinkHandler) OnAccountDeleted(ctx context.Context, userID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("unlink"),
		logger.Provider(h.cfg.Name),
		logger.UserID(userID),
	)

	providerUserID, err := h.dir.GetUserField(ctx, userID, h.cfg.UserIDField())
	if err != nil {
		if repository.IsNotFound(err) {
			// User never logged in through this provider.
			log.Debug("no provider linkage to remove")
			return nil
		}
		metrics.RecordUnlink(h.cfg.Name, "error")
		log.Error("could not read provider user id", logger.Err(err))
		return fmt.Errorf("%w: %v", ErrUnlink, err)
	}

	if err := h.links.DeleteLink(ctx, h.cfg.Name, providerUserID); err != nil {
		metrics.RecordUnlink(h.cfg.Name, "error")
		log.Error("could not delete link", logger.ProviderUserID(providerUserID), logger.Err(err))
		return fmt.Errorf("%w: %v", ErrUnlink, err)
	}

	metrics.RecordUnlink(h.cfg.Name, "ok")
	log.Info("provider linkage removed", logger.ProviderUserID(providerUserID))
	return nil
}

// Package resolver contains the account-reconciliation core: given a
// canonical profile asserted by a provider, resolve it to exactly one
// internal user, creating or merging accounts as needed, and record the
// provider linkage.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/ssobridge/internal/domain/repository"
	"github.com/dropDatabas3/ssobridge/internal/metrics"
	"github.com/dropDatabas3/ssobridge/internal/observability/logger"
	"github.com/dropDatabas3/ssobridge/internal/profile"
	"github.com/dropDatabas3/ssobridge/internal/provider"
)

// Errors for account resolution. ErrResolution wraps one of the cause
// sentinels so callers can branch with errors.Is on either level.
var (
	ErrResolution  = errors.New("account resolution failed")
	ErrEmailLookup = errors.New("email lookup failed")
	ErrUserCreate  = errors.New("user create failed")
	ErrLinkPersist = errors.New("link persist failed")
	ErrGroupJoin   = errors.New("admin group join failed")
)

// Deps contains dependencies for the account resolver.
type Deps struct {
	Links     repository.LinkRepository
	Directory repository.UserDirectory
	Groups    repository.GroupService
}

// AccountResolver resolves canonical profiles to internal user ids.
type AccountResolver struct {
	cfg    *provider.Config
	links  repository.LinkRepository
	dir    repository.UserDirectory
	groups repository.GroupService

	// flight collapses concurrent resolutions of the same provider
	// identity so a single process never races itself into duplicate
	// accounts. Cross-process races are bounded by the store backend.
	flight singleflight.Group
}

// New creates an AccountResolver for one provider.
func New(cfg *provider.Config, d Deps) *AccountResolver {
	return &AccountResolver{
		cfg:    cfg,
		links:  d.Links,
		dir:    d.Directory,
		groups: d.Groups,
	}
}

// Resolve maps the profile to exactly one internal user id.
//
// The fast path (identity already linked) performs a single read and no
// writes. The first login for a provider identity either merges into the
// account matching the primary email or creates a new account, then records
// the provider field and the link, strictly in that order.
func (r *AccountResolver) Resolve(ctx context.Context, p *profile.Profile) (string, error) {
	key := r.cfg.Name + "\x00" + p.ProviderUserID
	uid, err, _ := r.flight.Do(key, func() (any, error) {
		return r.resolve(ctx, p)
	})
	if err != nil {
		metrics.RecordResolution(r.cfg.Name, metrics.OutcomeError)
		return "", err
	}
	return uid.(string), nil
}

func (r *AccountResolver) resolve(ctx context.Context, p *profile.Profile) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("resolver"),
		logger.Provider(r.cfg.Name),
		logger.ProviderUserID(p.ProviderUserID),
	)

	// Fast path: known identity.
	uid, err := r.links.FindUserID(ctx, r.cfg.Name, p.ProviderUserID)
	if err == nil {
		log.Debug("existing link", logger.UserID(uid))
		metrics.RecordResolution(r.cfg.Name, metrics.OutcomeFastPath)
		return uid, nil
	}
	if !repository.IsNotFound(err) {
		return "", fmt.Errorf("%w: link lookup: %v", ErrResolution, err)
	}

	// First login for this provider identity.
	email := p.PrimaryEmail()
	outcome := metrics.OutcomeMerged

	uid, err = r.dir.FindByEmail(ctx, email)
	switch {
	case err == nil:
		// Implicit merge: attach the provider identity to the account
		// sharing the email, without further confirmation.
		log.Info("merging into email-matched account", logger.UserID(uid), logger.Email(email))
	case repository.IsNotFound(err):
		uid, err = r.dir.Create(ctx, repository.CreateUserInput{
			Username: p.DisplayName,
			Email:    email,
		})
		if err != nil {
			return "", fmt.Errorf("%w: %w: %v", ErrResolution, ErrUserCreate, err)
		}
		outcome = metrics.OutcomeCreated
		log.Info("created new account", logger.UserID(uid), logger.Email(email))
	default:
		return "", fmt.Errorf("%w: %w: %v", ErrResolution, ErrEmailLookup, err)
	}

	if err := r.dir.SetUserField(ctx, uid, r.cfg.UserIDField(), p.ProviderUserID); err != nil {
		return "", fmt.Errorf("%w: %w: %v", ErrResolution, ErrLinkPersist, err)
	}
	if err := r.links.CreateLink(ctx, r.cfg.Name, p.ProviderUserID, uid); err != nil {
		// The user may now exist without a link. Accepted degraded state:
		// a retry lands on the email-merge branch above.
		return "", fmt.Errorf("%w: %w: %v", ErrResolution, ErrLinkPersist, err)
	}

	if err := r.joinAdminGroup(ctx, p, uid); err != nil {
		return "", err
	}

	metrics.RecordResolution(r.cfg.Name, outcome)
	return uid, nil
}

// joinAdminGroup honors the provider's admin claim under the configured
// trust policy. The join is best-effort unless AdminGroupRequired is set.
func (r *AccountResolver) joinAdminGroup(ctx context.Context, p *profile.Profile, uid string) error {
	if !p.IsAdmin || !r.cfg.TrustAdminClaim || r.groups == nil {
		return nil
	}

	group := r.cfg.AdminGroupName()
	if err := r.groups.JoinGroup(ctx, group, uid); err != nil {
		metrics.RecordGroupJoinFailure(r.cfg.Name)
		if r.cfg.AdminGroupRequired {
			return fmt.Errorf("%w: %w: %v", ErrResolution, ErrGroupJoin, err)
		}
		logger.From(ctx).Warn("admin group join failed, continuing login",
			logger.Component("resolver"),
			logger.Provider(r.cfg.Name),
			logger.UserID(uid),
			logger.String("group", group),
			logger.Err(err),
		)
	}
	return nil
}

package auth

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dropDatabas3/ssobridge/internal/domain/repository"
	"github.com/dropDatabas3/ssobridge/internal/http/state"
	"github.com/dropDatabas3/ssobridge/internal/oauth"
	"github.com/dropDatabas3/ssobridge/internal/observability/logger"
	"github.com/dropDatabas3/ssobridge/internal/profile"
	"github.com/dropDatabas3/ssobridge/internal/provider"
	"github.com/dropDatabas3/ssobridge/internal/resolver"
)

// Deps contains dependencies for the login service.
type Deps struct {
	Registry  *provider.Registry
	Signer    *state.Signer
	Links     repository.LinkRepository
	Directory repository.UserDirectory
	Groups    repository.GroupService

	// BaseURL is the externally visible base URL of the bridge, used to
	// build each provider's callback URL.
	BaseURL string

	// Handshakes overrides the built-in handshake per provider name.
	// This is how an OAuth1 provider (or a test double) plugs in.
	Handshakes map[string]oauth.Handshake
}

// strategy bundles everything needed to run one provider's flow.
type strategy struct {
	cfg        *provider.Config
	handshake  oauth.Handshake
	normalizer *profile.Normalizer
	resolver   *resolver.AccountResolver
	unlinker   *resolver.UnlinkHandler
}

type loginService struct {
	signer     *state.Signer
	strategies map[string]*strategy
}

// NewLoginService wires a strategy per registered provider. A provider whose
// handshake cannot be built (unsupported variant without an override) is
// skipped and logged, never half-enabled.
func NewLoginService(d Deps) LoginService {
	s := &loginService{
		signer:     d.Signer,
		strategies: make(map[string]*strategy),
	}

	base := strings.TrimRight(d.BaseURL, "/")
	for _, name := range d.Registry.Names() {
		cfg, _ := d.Registry.Get(name)

		hs := d.Handshakes[name]
		if hs == nil {
			var err error
			hs, err = oauth.ForProvider(cfg, base+"/auth/"+cfg.Name+"/callback")
			if err != nil {
				logger.L().Warn("provider disabled: no handshake available",
					logger.Provider(cfg.Name),
					logger.Err(err),
				)
				continue
			}
		}

		s.strategies[name] = &strategy{
			cfg:        cfg,
			handshake:  hs,
			normalizer: profile.NewNormalizer(cfg.Name, cfg.FieldMap, cfg.TrustAdminClaim),
			resolver: resolver.New(cfg, resolver.Deps{
				Links:     d.Links,
				Directory: d.Directory,
				Groups:    d.Groups,
			}),
			unlinker: resolver.NewUnlinkHandler(cfg, d.Links, d.Directory),
		}
	}
	return s
}

func (s *loginService) Begin(ctx context.Context, providerName string) (string, error) {
	st, ok := s.strategies[strings.ToLower(providerName)]
	if !ok {
		return "", ErrUnknownProvider
	}

	token, err := s.signer.Sign(state.Claims{Provider: st.cfg.Name})
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}

	authURL, err := st.handshake.AuthURL(ctx, token)
	if err != nil {
		return "", fmt.Errorf("build auth url: %w", err)
	}

	logger.From(ctx).Info("login started",
		logger.Layer("service"),
		logger.Component("auth.begin"),
		logger.Provider(st.cfg.Name),
	)
	return authURL, nil
}

func (s *loginService) Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.callback"),
		logger.Provider(req.Provider),
	)

	st, ok := s.strategies[strings.ToLower(req.Provider)]
	if !ok {
		return nil, ErrUnknownProvider
	}
	if req.State == "" {
		return nil, ErrMissingState
	}
	if req.Code == "" {
		return nil, ErrMissingCode
	}

	if _, err := s.signer.Parse(req.State, st.cfg.Name); err != nil {
		log.Warn("state validation failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	accessToken, err := st.handshake.Exchange(ctx, req.Code)
	if err != nil {
		log.Error("code exchange failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	raw, err := st.handshake.FetchProfile(ctx, accessToken)
	if err != nil {
		log.Error("profile fetch failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}

	p, err := st.normalizer.Normalize(raw)
	if err != nil {
		// The raw cause stays in the logs; the caller surfaces a generic
		// auth failure.
		log.Error("profile rejected", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrProfileInvalid, err)
	}

	uid, err := st.resolver.Resolve(ctx, p)
	if err != nil {
		log.Error("resolution failed", logger.ProviderUserID(p.ProviderUserID), logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrResolveFailed, err)
	}

	log.Info("login completed", logger.UserID(uid), logger.ProviderUserID(p.ProviderUserID))
	return &CallbackResult{UserID: uid, Provider: st.cfg.Name}, nil
}

func (s *loginService) Unlink(ctx context.Context, userID string) error {
	var firstErr error
	for _, name := range s.strategyNames() {
		st := s.strategies[name]
		if err := st.unlinker.OnAccountDeleted(ctx, userID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *loginService) Providers() []ProviderInfo {
	infos := make([]ProviderInfo, 0, len(s.strategies))
	for _, name := range s.strategyNames() {
		st := s.strategies[name]
		infos = append(infos, ProviderInfo{
			Name:        st.cfg.Name,
			URL:         "/auth/" + st.cfg.Name,
			CallbackURL: "/auth/" + st.cfg.Name + "/callback",
			Icon:        st.cfg.Icon,
			Scope:       st.cfg.Scopes,
		})
	}
	return infos
}

func (s *loginService) strategyNames() []string {
	names := make([]string, 0, len(s.strategies))
	for n := range s.strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

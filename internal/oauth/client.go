// Package oauth defines the handshake collaborator contract. The bridge does
// not implement OAuth protocol cryptography; it composes a Handshake that
// performs the exchange and hands back the raw profile payload for
// normalization.
package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/ssobridge/internal/provider"
	oauth2client "github.com/dropDatabas3/ssobridge/internal/oauth/oauth2"
)

// ErrVariantUnsupported indicates no built-in Handshake exists for the
// provider's protocol variant.
var ErrVariantUnsupported = errors.New("unsupported protocol variant")

// Handshake completes the protocol exchange with one provider.
type Handshake interface {
	// AuthURL returns the provider authorization URL for the redirect.
	AuthURL(ctx context.Context, state string) (string, error)

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (accessToken string, err error)

	// FetchProfile retrieves the raw profile payload from the provider's
	// user-info endpoint. The payload is opaque and untrusted; the
	// normalizer decides whether it is usable.
	FetchProfile(ctx context.Context, accessToken string) ([]byte, error)
}

// ForProvider builds the default Handshake for a provider config.
// OAuth1 providers need a custom Handshake injected by the host application;
// only OAuth2 ships built in.
func ForProvider(cfg *provider.Config, callbackURL string) (Handshake, error) {
	switch cfg.Variant {
	case provider.VariantOAuth2:
		return oauth2client.New(oauth2client.Config{
			AuthURL:      cfg.OAuth2.AuthURL,
			TokenURL:     cfg.OAuth2.TokenURL,
			UserInfoURL:  cfg.UserInfoURL,
			ClientID:     cfg.OAuth2.ClientID,
			ClientSecret: cfg.OAuth2.ClientSecret,
			RedirectURL:  callbackURL,
			Scopes:       cfg.Scopes,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrVariantUnsupported, cfg.Variant, cfg.Name)
	}
}

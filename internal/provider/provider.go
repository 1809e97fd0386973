// Package provider holds the static, validated description of each identity
// provider the bridge can federate with. A Config that fails validation is
// never registered: a misconfigured provider must not be half-enabled.
package provider

import (
	"errors"
	"fmt"
	"strings"
)

// Protocol variants supported by the bridge.
const (
	VariantOAuth1 = "oauth"
	VariantOAuth2 = "oauth2"
)

// Errors for provider configuration.
var (
	ErrInvalid = errors.New("invalid provider config")
)

// OAuth2Endpoints contains the OAuth2 credentials and endpoints for a provider.
type OAuth2Endpoints struct {
	AuthURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Config describes one identity provider.
type Config struct {
	// Name is the unique id of the provider ("google", "acme", ...).
	// It also names the persisted link keyspace ("{name}Id:uid") and the
	// user field ("{name}Id") written to the external directory.
	Name string

	// Variant is the protocol variant: VariantOAuth1 or VariantOAuth2.
	Variant string

	// UserInfoURL is the provider endpoint that returns the raw profile.
	UserInfoURL string

	// FieldMap maps canonical profile fields (id, displayName, emails,
	// isAdmin) to provider-specific key paths in the raw payload.
	FieldMap map[string]string

	// OAuth2 carries protocol credentials when Variant == VariantOAuth2.
	OAuth2 OAuth2Endpoints

	// Scopes requested during the handshake.
	Scopes []string

	// Icon is an opaque reference for UI integrations.
	Icon string

	// LoginURL / RegisterURL enable the optional /login and /register
	// redirect routes when non-empty.
	LoginURL    string
	RegisterURL string

	// TokenIDField names the access-token claim carrying the provider user
	// id, for providers that encode it in the token instead of the profile.
	TokenIDField string

	// TrustAdminClaim enables honoring a provider-supplied admin flag.
	// Off by default: silently trusting it is a known foot-gun.
	TrustAdminClaim bool

	// AdminGroup is the group joined when an admin claim is honored.
	// Defaults to "administrators".
	AdminGroup string

	// AdminGroupRequired makes a failed group join fail the whole login.
	// Default false: the join is best-effort and the login succeeds.
	AdminGroupRequired bool
}

// Validate checks the invariants a provider must satisfy before activation.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	switch c.Variant {
	case VariantOAuth1, VariantOAuth2:
	case "":
		return fmt.Errorf("%w: %s: type is required", ErrInvalid, c.Name)
	default:
		return fmt.Errorf("%w: %s: unknown type %q", ErrInvalid, c.Name, c.Variant)
	}
	if strings.TrimSpace(c.UserInfoURL) == "" {
		return fmt.Errorf("%w: %s: user info endpoint is required", ErrInvalid, c.Name)
	}
	if c.Variant == VariantOAuth2 {
		if c.OAuth2.AuthURL == "" || c.OAuth2.TokenURL == "" {
			return fmt.Errorf("%w: %s: oauth2 auth_url and token_url are required", ErrInvalid, c.Name)
		}
		if c.OAuth2.ClientID == "" {
			return fmt.Errorf("%w: %s: oauth2 client_id is required", ErrInvalid, c.Name)
		}
	}
	return nil
}

// UserIDField returns the directory field name holding the provider user id,
// e.g. "acmeId" for provider "acme".
func (c *Config) UserIDField() string {
	return c.Name + "Id"
}

// AdminGroupName returns the configured admin group, defaulting to
// "administrators".
func (c *Config) AdminGroupName() string {
	if c.AdminGroup != "" {
		return c.AdminGroup
	}
	return "administrators"
}

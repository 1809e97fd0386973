package auth

import (
	"context"
	"errors"
)

// LoginService drives the federated login flow for all registered providers.
type LoginService interface {
	// Begin returns the provider authorization URL to redirect the user to.
	Begin(ctx context.Context, provider string) (string, error)

	// Callback completes the flow: validates state, exchanges the code,
	// fetches and normalizes the profile, and resolves the internal user.
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error)

	// Unlink removes the provider linkage for a deleted account, across
	// every registered provider. Best-effort per provider.
	Unlink(ctx context.Context, userID string) error

	// Providers lists the active strategies for client integrations.
	Providers() []ProviderInfo
}

// CallbackRequest carries the provider callback parameters.
type CallbackRequest struct {
	Provider string
	State    string
	Code     string
}

// CallbackResult is the outcome of a completed login.
type CallbackResult struct {
	UserID   string
	Provider string
}

// ProviderInfo describes one active strategy, mirroring what login pages
// need to render provider buttons.
type ProviderInfo struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	CallbackURL string   `json:"callbackURL"`
	Icon        string   `json:"icon,omitempty"`
	Scope       []string `json:"scope,omitempty"`
}

// Errors for the login service.
var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrMissingState    = errors.New("missing state")
	ErrMissingCode     = errors.New("missing code")
	ErrInvalidState    = errors.New("invalid state")
	ErrExchangeFailed  = errors.New("code exchange failed")
	ErrProfileFetch    = errors.New("profile fetch failed")
	ErrProfileInvalid  = errors.New("profile rejected")
	ErrResolveFailed   = errors.New("account resolution failed")
)

package session

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/ssobridge/internal/observability/logger"
)

// CookieOptions defines how the session cookie is issued.
type CookieOptions struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Name == "" {
		o.Name = "ssobridge_session"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// Manager establishes and destroys authenticated sessions. It is pure
// delegation around the Store: no business logic, called exactly once per
// successful resolution and never on failure paths.
type Manager struct {
	store  Store
	cookie CookieOptions
	ttl    time.Duration
}

// NewManager creates a session manager.
func NewManager(store Store, cookie CookieOptions, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{store: store, cookie: cookie.normalize(), ttl: ttl}
}

// Establish creates a session for the user and sets the cookie.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, userID, providerName string) error {
	id, err := generateID()
	if err != nil {
		return err
	}

	now := time.Now()
	s := Session{
		ID:        id,
		UserID:    userID,
		Provider:  providerName,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    id,
		Path:     "/",
		Domain:   m.cookie.Domain,
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: m.cookie.SameSite,
	})

	logger.From(ctx).Debug("session established",
		logger.Component("session"),
		logger.UserID(userID),
		logger.SessionID(id),
	)
	return nil
}

// Resolve returns the session referenced by the request cookie, if valid.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.cookie.Name)
	if err != nil {
		return nil, ErrNotFound
	}
	s, err := m.store.Get(ctx, c.Value)
	if err != nil {
		return nil, err
	}
	if time.Now().After(s.ExpiresAt) {
		return nil, ErrExpired
	}
	return s, nil
}

// Destroy deletes the session and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if c, err := r.Cookie(m.cookie.Name); err == nil {
		if err := m.store.Delete(ctx, c.Value); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     "/",
		Domain:   m.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: m.cookie.SameSite,
	})
	return nil
}

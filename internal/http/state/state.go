// Package state issues and validates the signed state token that rides the
// OAuth redirect round-trip. The token binds the callback to the provider
// it was issued for and expires quickly; it is the bridge's CSRF guard.
package state

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Audience is the expected audience for state tokens.
const Audience = "auth-state"

// Errors for state operations.
var (
	ErrInvalid  = errors.New("invalid state token")
	ErrExpired  = errors.New("state token expired")
	ErrAudience = errors.New("state audience mismatch")
	ErrProvider = errors.New("state provider mismatch")
)

// Claims carried by a state token.
type Claims struct {
	Provider string
	Nonce    string
}

// Signer signs and parses state tokens with an HMAC key.
type Signer struct {
	key []byte
	ttl time.Duration
}

// NewSigner creates a state signer. A zero ttl defaults to 10 minutes.
func NewSigner(key []byte, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Signer{key: key, ttl: ttl}
}

// Sign issues a state token for the provider.
func (s *Signer) Sign(claims Claims) (string, error) {
	nonce := claims.Nonce
	if nonce == "" {
		var err error
		if nonce, err = generateNonce(); err != nil {
			return "", err
		}
	}

	now := time.Now().UTC()
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"aud":      Audience,
		"exp":      now.Add(s.ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"provider": claims.Provider,
		"nonce":    nonce,
	})
	return tok.SignedString(s.key)
}

// Parse validates a state token and checks it was issued for the expected
// provider.
func (s *Signer) Parse(tokenString, expectedProvider string) (*Claims, error) {
	tk, err := jwtv5.Parse(tokenString, func(t *jwtv5.Token) (any, error) {
		return s.key, nil
	}, jwtv5.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tk.Valid {
		return nil, ErrInvalid
	}

	mapClaims, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}

	if aud, _ := mapClaims["aud"].(string); aud != Audience {
		return nil, ErrAudience
	}

	claims := &Claims{
		Provider: getString(mapClaims, "provider"),
		Nonce:    getString(mapClaims, "nonce"),
	}
	if claims.Provider == "" || claims.Nonce == "" {
		return nil, ErrInvalid
	}
	if expectedProvider != "" && claims.Provider != expectedProvider {
		return nil, ErrProvider
	}
	return claims, nil
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func generateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

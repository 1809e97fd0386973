// Package profile converts provider-specific raw profile payloads into the
// canonical, provider-agnostic record the resolver works with.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Canonical field names recognized in a provider field map.
const (
	FieldID          = "id"
	FieldDisplayName = "displayName"
	FieldEmails      = "emails"
	FieldIsAdmin     = "isAdmin"
)

// ErrMalformed indica que el payload del provider no sirve para construir
// un perfil canónico (JSON inválido o campos requeridos vacíos).
var ErrMalformed = errors.New("malformed provider profile")

// Profile is the canonical identity record extracted from a provider payload.
type Profile struct {
	Provider       string
	ProviderUserID string
	DisplayName    string
	// Emails is ordered; the first entry is the primary email.
	Emails []string
	// IsAdmin is only ever true when the provider's field map binds an
	// admin flag AND the normalizer was built with TrustAdminClaim.
	IsAdmin bool
}

// PrimaryEmail returns the first email of the profile.
func (p *Profile) PrimaryEmail() string {
	if len(p.Emails) == 0 {
		return ""
	}
	return p.Emails[0]
}

// Normalizer maps raw provider payloads onto canonical profiles using a
// provider field map. It is a pure transform: no I/O, no side effects.
type Normalizer struct {
	provider string
	fieldMap map[string]string

	// trustAdminClaim must be opted into deliberately; without it any
	// admin flag asserted by the provider is dropped.
	trustAdminClaim bool
}

// NewNormalizer builds a Normalizer for one provider.
func NewNormalizer(providerName string, fieldMap map[string]string, trustAdminClaim bool) *Normalizer {
	return &Normalizer{
		provider:        providerName,
		fieldMap:        fieldMap,
		trustAdminClaim: trustAdminClaim,
	}
}

// Normalize parses the raw payload and extracts the canonical fields.
// Fails with ErrMalformed when the payload is not a JSON object or any
// required field (id, displayName, primary email) is missing after mapping.
func (n *Normalizer) Normalize(raw []byte) (*Profile, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	p := &Profile{Provider: n.provider}

	p.ProviderUserID = stringAt(data, n.fieldMap[FieldID])
	p.DisplayName = stringAt(data, n.fieldMap[FieldDisplayName])

	// The mapped email becomes the sole element of the ordered list;
	// callers needing multiple emails extend the map.
	if email := stringAt(data, n.fieldMap[FieldEmails]); email != "" {
		p.Emails = []string{email}
	}

	if p.ProviderUserID == "" {
		return nil, fmt.Errorf("%w: missing provider user id (key %q)", ErrMalformed, n.fieldMap[FieldID])
	}
	if p.DisplayName == "" {
		return nil, fmt.Errorf("%w: missing display name (key %q)", ErrMalformed, n.fieldMap[FieldDisplayName])
	}
	if p.PrimaryEmail() == "" {
		return nil, fmt.Errorf("%w: missing email (key %q)", ErrMalformed, n.fieldMap[FieldEmails])
	}

	if n.trustAdminClaim {
		if path, ok := n.fieldMap[FieldIsAdmin]; ok {
			p.IsAdmin = boolAt(data, path)
		}
	}

	return p, nil
}

// stringAt extracts a string value at a dot-separated key path.
// Numeric values are stringified (GitHub-style numeric ids).
func stringAt(data map[string]any, path string) string {
	v, ok := valueAt(data, path)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// JSON numbers decode as float64; ids are integral in practice.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// boolAt extracts a boolean at a dot-separated key path.
// Accepts the string forms "true"/"1" some providers emit.
func boolAt(data map[string]any, path string) bool {
	v, ok := valueAt(data, path)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	default:
		return false
	}
}

// valueAt walks a dot-separated key path through nested JSON objects.
func valueAt(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	cur := any(data)
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

package provider

import (
	"errors"
	"testing"
)

func validConfig(name string) Config {
	return Config{
		Name:        name,
		Variant:     VariantOAuth2,
		UserInfoURL: "https://idp.test/me",
		OAuth2: OAuth2Endpoints{
			AuthURL:  "https://idp.test/authorize",
			TokenURL: "https://idp.test/token",
			ClientID: "client",
		},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid oauth2", func(*Config) {}, true},
		{"valid oauth1", func(c *Config) { c.Variant = VariantOAuth1; c.OAuth2 = OAuth2Endpoints{} }, true},
		{"empty name", func(c *Config) { c.Name = " " }, false},
		{"missing type", func(c *Config) { c.Variant = "" }, false},
		{"unknown type", func(c *Config) { c.Variant = "saml" }, false},
		{"missing userinfo", func(c *Config) { c.UserInfoURL = "" }, false},
		{"oauth2 without token url", func(c *Config) { c.OAuth2.TokenURL = "" }, false},
		{"oauth2 without client id", func(c *Config) { c.OAuth2.ClientID = "" }, false},
	}

	for _, tc := range cases {
		cfg := validConfig("acme")
		tc.mutate(&cfg)
		err := cfg.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok {
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("%s: got %v, want ErrInvalid", tc.name, err)
			}
		}
	}
}

func TestNewRegistry_SkipsInvalidAndDuplicates(t *testing.T) {
	bad := validConfig("broken")
	bad.UserInfoURL = ""

	reg, rejected := NewRegistry([]Config{
		validConfig("acme"),
		bad,
		validConfig("acme"), // duplicado
		validConfig("other"),
	})

	if reg.Len() != 2 {
		t.Fatalf("registry len = %d, want 2", reg.Len())
	}
	if len(rejected) != 2 {
		t.Fatalf("rejected = %d, want 2 (invalid + duplicate)", len(rejected))
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "acme" || names[1] != "other" {
		t.Fatalf("names = %v", names)
	}
}

func TestRegistry_GetCaseInsensitive(t *testing.T) {
	reg, _ := NewRegistry([]Config{validConfig("Acme")})

	cfg, ok := reg.Get("ACME")
	if !ok {
		t.Fatal("case-insensitive lookup failed")
	}
	if cfg.UserIDField() != "AcmeId" {
		t.Fatalf("user id field = %q", cfg.UserIDField())
	}

	if _, ok := reg.Get("ghost"); ok {
		t.Fatal("unknown provider resolved")
	}
}

func TestAdminGroupName_Default(t *testing.T) {
	cfg := validConfig("acme")
	if cfg.AdminGroupName() != "administrators" {
		t.Fatalf("default admin group = %q", cfg.AdminGroupName())
	}
	cfg.AdminGroup = "staff"
	if cfg.AdminGroupName() != "staff" {
		t.Fatalf("admin group = %q", cfg.AdminGroupName())
	}
}

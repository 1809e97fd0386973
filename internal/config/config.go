package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/ssobridge/internal/provider"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
		// BaseURL es la URL pública del bridge, usada para armar los
		// callback URLs de cada provider.
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`

	Storage struct {
		// memory | redis | postgres
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
		Redis  struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"storage"`

	Session struct {
		// memory | redis
		Store      string `yaml:"store"`
		CookieName string `yaml:"cookie_name"`
		Domain     string `yaml:"domain"`
		SameSite   string `yaml:"samesite"`
		Secure     bool   `yaml:"secure"`
		TTL        string `yaml:"ttl"`
	} `yaml:"session"`

	State struct {
		Secret string `yaml:"secret"`
		TTL    string `yaml:"ttl"`
	} `yaml:"state"`

	Providers []ProviderConfig `yaml:"providers"`
}

// ProviderConfig es la forma YAML de un provider. Se convierte a
// provider.Config antes de registrarse.
type ProviderConfig struct {
	Name         string            `yaml:"name"`
	Type         string            `yaml:"type"` // oauth | oauth2
	UserInfoURL  string            `yaml:"user_info_url"`
	AuthURL      string            `yaml:"auth_url"`
	TokenURL     string            `yaml:"token_url"`
	ClientID     string            `yaml:"client_id"`
	ClientSecret string            `yaml:"client_secret"`
	Scope        []string          `yaml:"scope"`
	Icon         string            `yaml:"icon"`
	LoginURL     string            `yaml:"login_url"`
	RegisterURL  string            `yaml:"register_url"`
	TokenIDField string            `yaml:"token_id_field"`
	FieldMap     map[string]string `yaml:"profile"`

	TrustAdminClaim    bool   `yaml:"trust_admin_claim"`
	AdminGroup         string `yaml:"admin_group"`
	AdminGroupRequired bool   `yaml:"admin_group_required"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Session.Store == "" {
		c.Session.Store = "memory"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "24h"
	}
	if c.State.TTL == "" {
		c.State.TTL = "10m"
	}

	c.applyEnvOverrides()

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown session store %q", c.Session.Store)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("config: storage.dsn required for postgres driver")
	}
	if c.State.Secret == "" {
		return fmt.Errorf("config: state.secret is required")
	}
	return nil
}

// SessionTTL parsea el TTL de sesión, con fallback a 24h.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// StateTTL parsea el TTL del state token, con fallback a 10m.
func (c *Config) StateTTL() time.Duration {
	d, err := time.ParseDuration(c.State.TTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// ProviderConfigs convierte el bloque providers del YAML al tipo del
// registry.
func (c *Config) ProviderConfigs() []provider.Config {
	out := make([]provider.Config, 0, len(c.Providers))
	for _, p := range c.Providers {
		out = append(out, provider.Config{
			Name:         p.Name,
			Variant:      p.Type,
			UserInfoURL:  p.UserInfoURL,
			FieldMap:     p.FieldMap,
			Scopes:       p.Scope,
			Icon:         p.Icon,
			LoginURL:     p.LoginURL,
			RegisterURL:  p.RegisterURL,
			TokenIDField: p.TokenIDField,
			OAuth2: provider.OAuth2Endpoints{
				AuthURL:      p.AuthURL,
				TokenURL:     p.TokenURL,
				ClientID:     p.ClientID,
				ClientSecret: p.ClientSecret,
			},
			TrustAdminClaim:    p.TrustAdminClaim,
			AdminGroup:         p.AdminGroup,
			AdminGroupRequired: p.AdminGroupRequired,
		})
	}
	return out
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SERVER_BASE_URL"); ok {
		c.Server.BaseURL = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("STORAGE_REDIS_ADDR"); ok {
		c.Storage.Redis.Addr = v
	}
	if v, ok := getEnvStr("STORAGE_REDIS_PASSWORD"); ok {
		c.Storage.Redis.Password = v
	}
	if v, ok := getEnvInt("STORAGE_REDIS_DB"); ok {
		c.Storage.Redis.DB = v
	}
	if v, ok := getEnvStr("STORAGE_REDIS_PREFIX"); ok {
		c.Storage.Redis.Prefix = v
	}

	// SESSION
	if v, ok := getEnvStr("SESSION_STORE"); ok {
		c.Session.Store = v
	}
	if v, ok := getEnvStr("SESSION_COOKIE_NAME"); ok {
		c.Session.CookieName = v
	}
	if v, ok := getEnvStr("SESSION_DOMAIN"); ok {
		c.Session.Domain = v
	}
	if v, ok := getEnvBool("SESSION_SECURE"); ok {
		c.Session.Secure = v
	}
	if v, ok := getEnvStr("SESSION_TTL"); ok {
		c.Session.TTL = v
	}

	// STATE
	if v, ok := getEnvStr("STATE_SECRET"); ok {
		c.State.Secret = v
	}
	if v, ok := getEnvStr("STATE_TTL"); ok {
		c.State.TTL = v
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/ssobridge/internal/config"
	"github.com/dropDatabas3/ssobridge/internal/domain/repository"
	httpserver "github.com/dropDatabas3/ssobridge/internal/http"
	authctl "github.com/dropDatabas3/ssobridge/internal/http/controllers/auth"
	svcauth "github.com/dropDatabas3/ssobridge/internal/http/services/auth"
	"github.com/dropDatabas3/ssobridge/internal/http/state"
	"github.com/dropDatabas3/ssobridge/internal/observability/logger"
	"github.com/dropDatabas3/ssobridge/internal/provider"
	"github.com/dropDatabas3/ssobridge/internal/session"
	memstore "github.com/dropDatabas3/ssobridge/internal/store/memory"
	pgstore "github.com/dropDatabas3/ssobridge/internal/store/pg"
	redisstore "github.com/dropDatabas3/ssobridge/internal/store/redis"
	pgmigrations "github.com/dropDatabas3/ssobridge/migrations/postgres"
)

func main() {
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:   "ssobridge",
		Short: "Bridge de identidad federada OAuth/OAuth2",
	}
	root.PersistentFlags().StringVar(&configPath, "config", envOr("SSOBRIDGE_CONFIG", "configs/config.yaml"), "ruta al config.yaml")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones de PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), configPath)
		},
	}

	root.AddCommand(serve, migrate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       envOr("LOG_LEVEL", "info"),
		ServiceName: "ssobridge",
	})
	defer logger.Sync()

	registry, rejected := provider.NewRegistry(cfg.ProviderConfigs())
	for _, rerr := range rejected {
		logger.L().Warn("provider config rejected", logger.Err(rerr))
	}
	if registry.Len() == 0 {
		return fmt.Errorf("no valid providers configured")
	}

	links, directory, groups, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sessStore, err := buildSessionStore(cfg)
	if err != nil {
		return err
	}
	sessions := session.NewManager(sessStore, session.CookieOptions{
		Name:     cfg.Session.CookieName,
		Domain:   cfg.Session.Domain,
		Secure:   cfg.Session.Secure,
		SameSite: parseSameSite(cfg.Session.SameSite),
	}, cfg.SessionTTL())

	service := svcauth.NewLoginService(svcauth.Deps{
		Registry:  registry,
		Signer:    state.NewSigner([]byte(cfg.State.Secret), cfg.StateTTL()),
		Links:     links,
		Directory: directory,
		Groups:    groups,
		BaseURL:   cfg.Server.BaseURL,
	})

	handler, err := httpserver.NewRouter(httpserver.RouterDeps{
		Auth:     authctl.NewController(service, sessions),
		Unlink:   authctl.NewUnlinkController(service),
		Redirect: redirectFor(registry),
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := httpserver.NewServer(cfg.Server.Addr, handler)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func runMigrate(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Storage.Driver != "postgres" {
		return fmt.Errorf("migrate requiere storage.driver=postgres (actual: %s)", cfg.Storage.Driver)
	}

	store, err := pgstore.Open(ctx, cfg.Storage.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RunMigrations(ctx, pgmigrations.FS); err != nil {
		return err
	}
	fmt.Println("migrations applied")
	return nil
}

// buildStores arma links, directorio y grupos según el driver. El driver
// redis persiste solo los links (layout hash compatible con NodeBB);
// directorio y grupos quedan en memoria.
func buildStores(ctx context.Context, cfg *config.Config) (
	links repository.LinkRepository,
	directory repository.UserDirectory,
	groups repository.GroupService,
	cleanup func(),
	err error,
) {
	cleanup = func() {}

	switch cfg.Storage.Driver {
	case "memory":
		return memstore.NewLinkStore(), memstore.NewDirectory(), memstore.NewGroups(), cleanup, nil

	case "redis":
		rl, rerr := redisstore.NewLinkStore(redisstore.Config{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
			Prefix:   cfg.Storage.Redis.Prefix,
		})
		if rerr != nil {
			return nil, nil, nil, nil, rerr
		}
		logger.L().Info("redis driver: links en redis, directorio en memoria")
		return rl, memstore.NewDirectory(), memstore.NewGroups(), func() { _ = rl.Close() }, nil

	case "postgres":
		st, perr := pgstore.Open(ctx, cfg.Storage.DSN)
		if perr != nil {
			return nil, nil, nil, nil, perr
		}
		return st.Links, st.Directory, st.Groups, st.Close, nil

	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func buildSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Store {
	case "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("session redis ping: %w", err)
		}
		return session.NewRedisStore(client, cfg.Storage.Redis.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

// redirectFor toma las URLs de login/registro del primer provider que las
// configure. En el caso típico hay un solo provider.
func redirectFor(registry *provider.Registry) *authctl.RedirectController {
	for _, name := range registry.Names() {
		cfg, _ := registry.Get(name)
		if cfg.LoginURL != "" || cfg.RegisterURL != "" {
			return &authctl.RedirectController{
				LoginURL:    cfg.LoginURL,
				RegisterURL: cfg.RegisterURL,
			}
		}
	}
	return nil
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return 0
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Package redis implementa el link repository sobre Redis.
//
// El layout persistido es un hash por provider, "{provider}Id:uid", que
// mapea provider-user-id -> user id interno. Es el mismo layout que usan
// los plugins sso de NodeBB, así que migrar datos existentes es directo.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/ssobridge/internal/domain/repository"
)

// Config configuración del backend Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// LinkStore implementa repository.LinkRepository sobre Redis.
type LinkStore struct {
	client *redis.Client
	prefix string
}

// NewLinkStore crea el link store y verifica la conexión.
func NewLinkStore(cfg Config) (*LinkStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &LinkStore{client: rdb, prefix: cfg.Prefix}, nil
}

// NewLinkStoreWithClient crea el link store sobre un cliente existente.
// Útil para compartir la conexión con el session store.
func NewLinkStoreWithClient(client *redis.Client, prefix string) *LinkStore {
	return &LinkStore{client: client, prefix: prefix}
}

func (s *LinkStore) key(provider string) string {
	k := provider + "Id:uid"
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *LinkStore) FindUserID(ctx context.Context, provider, providerUserID string) (string, error) {
	uid, err := s.client.HGet(ctx, s.key(provider), providerUserID).Result()
	if err == redis.Nil {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return uid, nil
}

func (s *LinkStore) CreateLink(ctx context.Context, provider, providerUserID, userID string) error {
	// HSet sobreescribe: last-write-wins ante un duplicado.
	if err := s.client.HSet(ctx, s.key(provider), providerUserID, userID).Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return nil
}

func (s *LinkStore) DeleteLink(ctx context.Context, provider, providerUserID string) error {
	if err := s.client.HDel(ctx, s.key(provider), providerUserID).Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return nil
}

// Close cierra la conexión.
func (s *LinkStore) Close() error {
	return s.client.Close()
}

package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/ssobridge/internal/domain/repository"
)

// LinkStore implementa repository.LinkRepository sobre la tabla identity_link.
//
// La tabla tiene UNIQUE (provider, provider_user_id): el constraint cierra
// la ventana de links duplicados entre procesos concurrentes, y el upsert
// aplica last-write-wins según el contrato del store.
type LinkStore struct {
	pool *pgxpool.Pool
}

func (s *LinkStore) FindUserID(ctx context.Context, provider, providerUserID string) (string, error) {
	const query = `
		SELECT user_id FROM identity_link
		WHERE provider = $1 AND provider_user_id = $2
	`
	var uid string
	err := s.pool.QueryRow(ctx, query, provider, providerUserID).Scan(&uid)
	if err == pgx.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return uid, nil
}

func (s *LinkStore) CreateLink(ctx context.Context, provider, providerUserID, userID string) error {
	const query = `
		INSERT INTO identity_link (provider, provider_user_id, user_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (provider, provider_user_id) DO UPDATE SET user_id = EXCLUDED.user_id
	`
	if _, err := s.pool.Exec(ctx, query, provider, providerUserID, userID); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return nil
}

func (s *LinkStore) DeleteLink(ctx context.Context, provider, providerUserID string) error {
	const query = `DELETE FROM identity_link WHERE provider = $1 AND provider_user_id = $2`
	if _, err := s.pool.Exec(ctx, query, provider, providerUserID); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return nil
}

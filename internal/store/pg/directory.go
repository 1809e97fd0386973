package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/ssobridge/internal/domain/repository"
)

// Directory implementa repository.UserDirectory sobre app_user/user_field.
// En producción este rol lo cumple el sistema externo de usuarios; este
// adapter existe para deployments standalone y para integración.
type Directory struct {
	pool *pgxpool.Pool
}

func (d *Directory) FindByEmail(ctx context.Context, email string) (string, error) {
	const query = `SELECT id FROM app_user WHERE email = $1`
	var uid string
	err := d.pool.QueryRow(ctx, query, email).Scan(&uid)
	if err == pgx.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return uid, nil
}

func (d *Directory) Create(ctx context.Context, input repository.CreateUserInput) (string, error) {
	const query = `
		INSERT INTO app_user (id, username, email, created_at)
		VALUES ($1, $2, $3, $4)
	`
	uid := uuid.NewString()
	if _, err := d.pool.Exec(ctx, query, uid, input.Username, input.Email, time.Now()); err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return uid, nil
}

func (d *Directory) SetUserField(ctx context.Context, userID, field, value string) error {
	const query = `
		INSERT INTO user_field (user_id, field, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, field) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := d.pool.Exec(ctx, query, userID, field, value); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return nil
}

func (d *Directory) GetUserField(ctx context.Context, userID, field string) (string, error) {
	const query = `SELECT value FROM user_field WHERE user_id = $1 AND field = $2`
	var value string
	err := d.pool.QueryRow(ctx, query, userID, field).Scan(&value)
	if err == pgx.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return value, nil
}

// Groups implementa repository.GroupService sobre group_member.
type Groups struct {
	pool *pgxpool.Pool
}

func (g *Groups) JoinGroup(ctx context.Context, group, userID string) error {
	const query = `
		INSERT INTO group_member (group_name, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := g.pool.Exec(ctx, query, group, userID); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return nil
}

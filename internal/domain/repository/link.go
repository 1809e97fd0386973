package repository

import (
	"context"
	"time"
)

// IdentityLink representa la asociación entre una identidad de un provider
// y un usuario interno. Se crea una sola vez (primer login) y solo se
// elimina via unlink; nunca se muta.
type IdentityLink struct {
	Provider       string // "google", "github", "acme", etc.
	ProviderUserID string // ID del usuario dentro del provider
	UserID         string // ID del usuario interno
	CreatedAt      time.Time
}

// LinkRepository define el almacenamiento de identity links.
// Todas las operaciones son atómicas a nivel de una sola key
// (provider, providerUserID); no se asumen transacciones multi-key.
type LinkRepository interface {
	// FindUserID busca el usuario interno vinculado a (provider, providerUserID).
	// Retorna ErrNotFound si no existe link. Errores de I/O del backend se
	// propagan tal cual (el caller decide si reintenta).
	FindUserID(ctx context.Context, provider, providerUserID string) (string, error)

	// CreateLink registra el link (provider, providerUserID) -> userID.
	// El caller garantiza llamarlo a lo sumo una vez por key; ante un
	// duplicado el backend aplica last-write-wins en vez de fallar.
	CreateLink(ctx context.Context, provider, providerUserID, userID string) error

	// DeleteLink elimina el link. Idempotente: borrar un link inexistente
	// no es un error.
	DeleteLink(ctx context.Context, provider, providerUserID string) error
}

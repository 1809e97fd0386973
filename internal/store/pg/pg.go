// Package pg implementa el link repository y los colaboradores externos
// (directorio de usuarios, grupos) sobre PostgreSQL con pgx.
package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store agrupa los repositorios PostgreSQL sobre un pool compartido.
type Store struct {
	pool *pgxpool.Pool

	Links     *LinkStore
	Directory *Directory
	Groups    *Groups
}

// Open crea el pool y los repositorios.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Store{
		pool:      pool,
		Links:     &LinkStore{pool: pool},
		Directory: &Directory{pool: pool},
		Groups:    &Groups{pool: pool},
	}, nil
}

// Pool expone el pool para métricas.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Close cierra el pool.
func (s *Store) Close() { s.pool.Close() }

// RunMigrations ejecuta los archivos .sql del filesystem embebido, en orden
// lexicográfico. Cada archivo corre en su propia transacción implícita.
func (s *Store) RunMigrations(ctx context.Context, fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("pg: read migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if len(name) > 4 && name[len(name)-4:] == ".sql" {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	for _, name := range files {
		sql, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("pg: read %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("pg: migration %s: %w", name, err)
		}
	}
	return nil
}

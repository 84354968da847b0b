package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"restart50-service/internal/store"
)

// DocumentBackend keeps each named document as a json row in Postgres.
// The column is json rather than jsonb so key order survives a round trip.
type DocumentBackend struct {
	pool *pgxpool.Pool
}

func NewDocumentBackend(pool *pgxpool.Pool) *DocumentBackend {
	return &DocumentBackend{pool: pool}
}

func (b *DocumentBackend) Load(ctx context.Context, name string) ([]byte, error) {
	var raw []byte
	err := b.pool.QueryRow(ctx, `SELECT data::text FROM documents WHERE name=$1`, name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", name, err)
	}
	return raw, nil
}

func (b *DocumentBackend) Save(ctx context.Context, name string, data []byte) error {
	_, err := b.pool.Exec(ctx, `
INSERT INTO documents (name, data, updated_at) VALUES ($1, $2::json, now())
ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		name, string(data))
	if err != nil {
		return fmt.Errorf("save document %s: %w", name, err)
	}
	return nil
}

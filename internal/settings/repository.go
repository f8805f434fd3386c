package settings

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const configKey = "app_config"

// Repository guarda o documento de configuração em Postgres, uma linha
// única na tabela app_config.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de configuração.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetConfig devolve o documento vivo ou ErrNotFound.
func (r *Repository) GetConfig(ctx context.Context) (map[string]any, error) {
	const query = `
        SELECT value FROM app_config
        WHERE key = $1
    `

	var raw []byte
	err := r.pool.QueryRow(ctx, query, configKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SetConfig substitui o documento inteiro via upsert atômico.
func (r *Repository) SetConfig(ctx context.Context, doc map[string]any) error {
	const query = `
        INSERT INTO app_config (key, value)
        VALUES ($1, $2)
        ON CONFLICT (key)
        DO UPDATE SET value = EXCLUDED.value, updated_at = now()
    `

	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query, configKey, raw)
	return err
}

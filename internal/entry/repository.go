package entry

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso às declarações em Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de declarações.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListEntries devolve as declarações do usuário na categoria, ano
// decrescente, e o total sem paginação. limit <= 0 devolve tudo.
func (r *Repository) ListEntries(ctx context.Context, username, category string, limit, offset int) ([]Entry, int, error) {
	const countQuery = `
        SELECT COUNT(*) FROM entries
        WHERE username = $1 AND category = $2
    `

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, username, category).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
        SELECT year, payload FROM entries
        WHERE username = $1 AND category = $2
        ORDER BY year DESC
    `
	args := []any{username, category}
	if limit > 0 {
		query += ` LIMIT $3 OFFSET $4`
		args = append(args, limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e   Entry
			raw []byte
		)
		if err := rows.Scan(&e.Year, &raw); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(raw, &e.Values); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return entries, total, nil
}

// GetEntry busca a declaração de um ano. Ausência devolve ErrNotFound.
func (r *Repository) GetEntry(ctx context.Context, username, category, year string) (map[string]any, error) {
	const query = `
        SELECT payload FROM entries
        WHERE username = $1 AND category = $2 AND year = $3
    `

	var raw []byte
	err := r.pool.QueryRow(ctx, query, username, category, year).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// UpsertEntry grava a declaração substituindo o payload anterior por
// inteiro. O upsert atômico garante no máximo uma linha por chave.
func (r *Repository) UpsertEntry(ctx context.Context, username, category, year string, values map[string]any) error {
	const query = `
        INSERT INTO entries (username, category, year, payload)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (username, category, year)
        DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
    `

	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query, username, category, year, raw)
	return err
}

// DeleteEntry remove a declaração; remover o inexistente não é erro.
func (r *Repository) DeleteEntry(ctx context.Context, username, category, year string) error {
	const query = `
        DELETE FROM entries
        WHERE username = $1 AND category = $2 AND year = $3
    `

	_, err := r.pool.Exec(ctx, query, username, category, year)
	return err
}

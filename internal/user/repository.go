package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso ao armazenamento de usuários em Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de usuários.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetUser busca usuário pelo identifiant.
func (r *Repository) GetUser(ctx context.Context, username string) (User, error) {
	const query = `
        SELECT username, fullname, password_hash, role
        FROM users
        WHERE username = $1
    `

	var u User
	err := r.pool.QueryRow(ctx, query, username).Scan(&u.Username, &u.Fullname, &u.Password, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// CreateUser insere uma nova conta. Identifiant duplicado devolve ErrExists.
func (r *Repository) CreateUser(ctx context.Context, u User) error {
	const query = `
        INSERT INTO users (username, fullname, password_hash, role)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (username) DO NOTHING
    `

	tag, err := r.pool.Exec(ctx, query, u.Username, u.Fullname, u.Password, u.Role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

// ListUsers devolve todas as contas ordenadas por identifiant.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	const query = `
        SELECT username, fullname, password_hash, role
        FROM users
        ORDER BY username
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Username, &u.Fullname, &u.Password, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}

// UpdateUserRole troca o papel da conta alvo.
func (r *Repository) UpdateUserRole(ctx context.Context, username, role string) error {
	const query = `
        UPDATE users SET role = $2, updated_at = now()
        WHERE username = $1
    `

	tag, err := r.pool.Exec(ctx, query, username, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUserFullname atualiza o nome exibido (usado pelo import).
func (r *Repository) UpdateUserFullname(ctx context.Context, username, fullname string) error {
	const query = `
        UPDATE users SET fullname = $2, updated_at = now()
        WHERE username = $1
    `

	tag, err := r.pool.Exec(ctx, query, username, fullname)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertUser grava a conta substituindo dados existentes (ferramenta
// createadmin usa para promover uma conta já registrada).
func (r *Repository) UpsertUser(ctx context.Context, u User) error {
	const query = `
        INSERT INTO users (username, fullname, password_hash, role)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (username) DO UPDATE SET
            fullname = EXCLUDED.fullname,
            password_hash = EXCLUDED.password_hash,
            role = EXCLUDED.role,
            updated_at = now()
    `

	_, err := r.pool.Exec(ctx, query, u.Username, u.Fullname, u.Password, u.Role)
	return err
}

package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dmchat/internal/app/db"
)

// PostgresRepository stores user records in the users table. The primary key
// on name makes the Create uniqueness check-then-insert atomic.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `INSERT INTO users (name, password_hash) VALUES ($1, $2)`

	if _, err := r.pool.Exec(ctx, query, u.Name, u.PasswordHash); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrNameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*User, error) {
	query := `SELECT name, password_hash FROM users WHERE name = $1`

	u := &User{}
	err := r.pool.QueryRow(ctx, query, name).Scan(&u.Name, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	return u, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Summary, error) {
	query := `SELECT name FROM users ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Name); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return summaries, nil
}

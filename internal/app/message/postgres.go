package message

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores the message log in the messages table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Append(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO messages (id, sender, recipient, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq`

	err := r.pool.QueryRow(ctx, query,
		m.ID, m.Sender, m.Recipient, m.Content, m.Timestamp,
	).Scan(&m.Seq)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	return nil
}

func (r *PostgresRepository) HistoryBetween(ctx context.Context, userA, userB string) ([]Message, error) {
	query := `
		SELECT id, sender, recipient, content, created_at, seq
		FROM messages
		WHERE (sender = $1 AND recipient = $2)
		   OR (sender = $2 AND recipient = $1)
		ORDER BY created_at ASC, seq ASC`

	rows, err := r.pool.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	history := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Recipient, &m.Content, &m.Timestamp, &m.Seq); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		history = append(history, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	return history, nil
}

package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/burakorkmez/debate-settled/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// InsertMessage persists a message, assigning its ULID and creation time.
func (s *PostgresStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.CreationTime == 0 {
		msg.CreationTime = time.Now().UnixMilli()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, text, sender, side, created_at, creation_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, msg.ID, msg.Text, msg.Sender, string(msg.Side), msg.CreatedAt, msg.CreationTime)
	return err
}

// ListMessages returns up to limit messages for a side, newest first,
// resuming strictly before the cursor when one is given.
func (s *PostgresStore) ListMessages(ctx context.Context, side models.Side, cursor Cursor, limit int) ([]models.Message, error) {
	query := `
		SELECT id, text, sender, side, created_at, creation_time
		FROM messages
		WHERE side = $1
		ORDER BY creation_time DESC, id DESC
		LIMIT $2
	`
	args := []interface{}{string(side), limit}

	if !cursor.IsZero() {
		query = `
			SELECT id, text, sender, side, created_at, creation_time
			FROM messages
			WHERE side = $1 AND (creation_time, id) < ($2, $3)
			ORDER BY creation_time DESC, id DESC
			LIMIT $4
		`
		args = []interface{}{string(side), cursor.Time, cursor.ID, limit}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0, limit)
	for rows.Next() {
		var msg models.Message
		var sideStr string
		if err := rows.Scan(&msg.ID, &msg.Text, &msg.Sender, &sideStr, &msg.CreatedAt, &msg.CreationTime); err != nil {
			return nil, err
		}
		msg.Side = models.Side(sideStr)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CountMessages returns the total number of messages on a side.
func (s *PostgresStore) CountMessages(ctx context.Context, side models.Side) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages WHERE side = $1
	`, string(side)).Scan(&count)
	return count, err
}

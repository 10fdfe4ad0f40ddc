package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/burakorkmez/debate-settled/internal/models"
)

// SQLiteStore handles SQLite database operations for local development.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/debate.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/debate.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		sender TEXT NOT NULL DEFAULT '',
		side TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT 0,
		creation_time INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_side_creation
		ON messages(side, creation_time DESC, id DESC);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertMessage persists a message, assigning its ULID and creation time.
func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.CreationTime == 0 {
		msg.CreationTime = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, text, sender, side, created_at, creation_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.Text, msg.Sender, string(msg.Side), msg.CreatedAt, msg.CreationTime)
	return err
}

// ListMessages returns up to limit messages for a side, newest first,
// resuming strictly before the cursor when one is given.
func (s *SQLiteStore) ListMessages(ctx context.Context, side models.Side, cursor Cursor, limit int) ([]models.Message, error) {
	query := `
		SELECT id, text, sender, side, created_at, creation_time
		FROM messages
		WHERE side = ?
		ORDER BY creation_time DESC, id DESC
		LIMIT ?
	`
	args := []interface{}{string(side), limit}

	if !cursor.IsZero() {
		// SQLite has no row-value index support worth relying on; expand
		// the (creation_time, id) < (t, id) comparison explicitly.
		query = `
			SELECT id, text, sender, side, created_at, creation_time
			FROM messages
			WHERE side = ?
			  AND (creation_time < ? OR (creation_time = ? AND id < ?))
			ORDER BY creation_time DESC, id DESC
			LIMIT ?
		`
		args = []interface{}{string(side), cursor.Time, cursor.Time, cursor.ID, limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *SQLiteStore) CountMessages(ctx context.Context, side models.Side) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE side = ?
	`, string(side)).Scan(&count)
	return count, err
}

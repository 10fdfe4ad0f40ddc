package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	sender TEXT NOT NULL DEFAULT '',
	side TEXT NOT NULL,
	created_at BIGINT NOT NULL DEFAULT 0,
	creation_time BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_side_creation
	ON messages(side, creation_time DESC, id DESC);
`

// RunMigrations applies the schema to the PostgreSQL database.
func RunMigrations(databaseURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, postgresSchema)
	return err
}

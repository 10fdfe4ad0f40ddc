package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/burakorkmez/debate-settled/internal/models"
)

// DataStore defines the interface for durable message storage.
// Both PostgresStore and SQLiteStore implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Message operations
	InsertMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, side models.Side, cursor Cursor, limit int) ([]models.Message, error)
	CountMessages(ctx context.Context, side models.Side) (int64, error)
}

// Cursor is a keyset-pagination position within a feed. Listing resumes
// strictly before (Time, ID), so pages never duplicate or skip entries
// even when neighbors share a millisecond.
type Cursor struct {
	Time int64
	ID   string
}

// IsZero reports whether the cursor points at the head of the feed.
func (c Cursor) IsZero() bool {
	return c.Time == 0 && c.ID == ""
}

// String encodes the cursor as the opaque token handed to clients.
func (c Cursor) String() string {
	if c.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d:%s", c.Time, c.ID)
}

// ParseCursor decodes a client-supplied cursor token. An empty token is
// the head of the feed.
func ParseCursor(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}
	ts, id, ok := strings.Cut(token, ":")
	if !ok || id == "" {
		return Cursor{}, fmt.Errorf("malformed cursor %q", token)
	}
	t, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || t <= 0 {
		return Cursor{}, fmt.Errorf("malformed cursor %q", token)
	}
	return Cursor{Time: t, ID: id}, nil
}

// CursorFor returns the cursor that resumes listing after msg.
func CursorFor(msg models.Message) Cursor {
	return Cursor{Time: msg.CreationTime, ID: msg.ID}
}

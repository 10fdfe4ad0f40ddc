package store

import (
	"testing"

	"github.com/burakorkmez/debate-settled/internal/models"
)

func TestCursorRoundTrip(t *testing.T) {
	msg := models.Message{ID: "01HV3ZJXQK5T9GQF8M2B4N6R7S", CreationTime: 1712345678901}

	token := CursorFor(msg).String()
	got, err := ParseCursor(token)
	if err != nil {
		t.Fatal(err)
	}
	if got.Time != msg.CreationTime || got.ID != msg.ID {
		t.Fatalf("round trip changed cursor: %+v", got)
	}
}

func TestParseCursorEmptyIsHead(t *testing.T) {
	c, err := ParseCursor("")
	if err != nil {
		t.Fatal(err)
	}
	if !c.IsZero() {
		t.Fatalf("expected head cursor, got %+v", c)
	}
	if c.String() != "" {
		t.Fatalf("head cursor should encode empty, got %q", c.String())
	}
}

func TestParseCursorMalformed(t *testing.T) {
	for _, token := range []string{"garbage", "123", ":id", "abc:id", "-5:id", "12:"} {
		if _, err := ParseCursor(token); err == nil {
			t.Fatalf("token %q: expected error", token)
		}
	}
}

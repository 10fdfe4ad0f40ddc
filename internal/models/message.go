package models

import "strings"

// Side identifies which feed a message belongs to.
type Side string

const (
	SidePrisma  Side = "prisma"
	SideDrizzle Side = "drizzle"
)

// Sides lists every valid feed, in display order.
var Sides = []Side{SidePrisma, SideDrizzle}

// Valid reports whether s is a known feed.
func (s Side) Valid() bool {
	return s == SidePrisma || s == SideDrizzle
}

// ParseSide normalizes and validates a feed name.
func ParseSide(raw string) (Side, bool) {
	s := Side(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// MaxTextBytes caps message length, matching the original input limit.
const MaxTextBytes = 500

// Message is a single entry in one of the two feeds.
//
// ID is a ULID assigned by the store on persist. Client-side pending
// copies carry a "temp-" prefixed placeholder instead; the prefix is
// outside the ULID alphabet, so the two id spaces never collide.
type Message struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Sender       string `json:"sender"`
	Side         Side   `json:"side"`
	CreatedAt    int64  `json:"created_at"`    // client logical clock, unix ms
	CreationTime int64  `json:"creation_time"` // store clock, unix ms; feed ordering key
}

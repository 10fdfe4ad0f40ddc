package debate

import (
	"sort"
	"sync"
)

// Aggregate merges a server-confirmed page with locally held optimistic
// messages into the single sequence a feed displays.
//
// Duplicate IDs keep the first occurrence in concatenation order, so a
// confirmed message present in both inputs is taken from the server
// copy. The sort is stable and ascending by creation time; entries
// sharing a millisecond keep their concatenation order.
//
// Pure function: recompute whenever either input changes.
func Aggregate(serverPage, localPending []Message) []Message {
	merged := make([]Message, 0, len(serverPage)+len(localPending))
	seen := make(map[string]bool, cap(merged))

	for _, msg := range serverPage {
		if seen[msg.ID] {
			continue
		}
		seen[msg.ID] = true
		merged = append(merged, msg)
	}
	for _, msg := range localPending {
		if seen[msg.ID] {
			continue
		}
		seen[msg.ID] = true
		merged = append(merged, msg)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreationTime < merged[j].CreationTime
	})

	return merged
}

// Feed holds the local state of one side: the confirmed window loaded
// from the server, the optimistic set, the input draft, and the
// pagination cursor. Each side owns a disjoint Feed, so submissions on
// different sides never interfere.
type Feed struct {
	mu        sync.Mutex
	side      Side
	draft     string
	pending   []Message
	confirmed []Message // ascending by creation time
	cursor    string
	hasMore   bool
	loaded    bool
}

// NewFeed creates an empty feed for one side.
func NewFeed(side Side) *Feed {
	return &Feed{side: side}
}

// Side returns the feed's partition.
func (f *Feed) Side() Side {
	return f.side
}

// SetDraft replaces the feed's input draft.
func (f *Feed) SetDraft(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = text
}

// Draft returns the feed's current input draft.
func (f *Feed) Draft() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// ClearDraft empties the input draft.
func (f *Feed) ClearDraft() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = ""
}

// AddPending inserts an optimistic message.
func (f *Feed) AddPending(msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, msg)
}

// RemovePending discards an optimistic message after a failed submit.
func (f *Feed) RemovePending(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.pending[:0]
	for _, msg := range f.pending {
		if msg.ID != id {
			kept = append(kept, msg)
		}
	}
	f.pending = kept
}

// ConfirmPending swaps a pending message's placeholder ID for its
// server identity in place. Keeping the same entry (rather than remove
// and re-add) means the aggregated view never shows a gap or duplicate
// between confirmation and the next page refresh.
func (f *Feed) ConfirmPending(tempID, serverID string, creationTime int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.pending {
		if f.pending[i].ID == tempID {
			f.pending[i].ID = serverID
			f.pending[i].CreationTime = creationTime
			return
		}
	}
}

// ApplyPage folds one server page (newest first, as listed) into the
// confirmed window. The head page replaces the newest window entries;
// load-more pages extend the window backward in time.
func (f *Feed) ApplyPage(page *ListMessagesResponse, loadMore bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Reverse to ascending for display order
	older := make([]Message, len(page.Messages))
	for i, msg := range page.Messages {
		older[len(page.Messages)-1-i] = msg
	}

	if !loadMore || !f.loaded {
		f.confirmed = older
	} else {
		f.confirmed = append(older, f.confirmed...)
	}
	f.cursor = page.NextCursor
	f.hasMore = page.HasMore
	f.loaded = true
}

// Cursor returns the token that loads the next (older) page.
func (f *Feed) Cursor() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

// HasMore reports whether older messages remain beyond the window.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Snapshot returns the feed as it should be displayed: confirmed window
// merged with the optimistic set, deduplicated and ordered.
func (f *Feed) Snapshot() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Aggregate(f.confirmed, f.pending)
}

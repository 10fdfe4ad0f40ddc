package debate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultSender is the display name attached to every message in this
// deployment.
const DefaultSender = "Enjoyer"

// ErrIdentityUnresolved is returned when a submit is attempted before
// the client IP lookup has succeeded. The pending entry is rolled back;
// the user may resubmit once identity resolves.
var ErrIdentityUnresolved = errors.New("client identity not resolved yet, try again in a moment")

// RateLimitError reports a rejected submit with the window state needed
// for a user-facing notice.
type RateLimitError struct {
	Used    int
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Rate limit exceeded. You've sent %d messages. Limit resets at %s.",
		e.Used, e.ResetAt.Format("3:04:05 PM"))
}

// SendAPI is the slice of the server API the coordinator touches.
// *Client implements it.
type SendAPI interface {
	CheckRateLimit(ctx context.Context, clientIP string) (*RateLimitResult, error)
	SendMessage(ctx context.Context, text, sender string, side Side) (*SendResult, error)
}

// IdentityResolver resolves the caller's public IP, the key for the
// send quota.
type IdentityResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Coordinator submits user-authored messages: optimistic insert first,
// then quota check and persist, reconciling or rolling back the local
// state against the outcome.
type Coordinator struct {
	api      SendAPI
	identity IdentityResolver
	sender   string
	now      func() time.Time
	seq      atomic.Int64
}

// NewCoordinator creates a send coordinator.
func NewCoordinator(api SendAPI, identity IdentityResolver) *Coordinator {
	return &Coordinator{
		api:      api,
		identity: identity,
		sender:   DefaultSender,
		now:      time.Now,
	}
}

// Submit sends the feed's current draft.
//
// The pending entry is inserted and the draft cleared before any network
// round trip, which is what makes the send feel instantaneous. Every
// failure path removes the pending entry again, so a failed submit
// leaves no trace; the other feed is never touched. Exactly one quota
// call is made per submit, and one persist call when the quota allows.
//
// A nil return with empty draft is a silent no-op, not an error.
func (c *Coordinator) Submit(ctx context.Context, feed *Feed) error {
	text := strings.TrimSpace(feed.Draft())
	if text == "" {
		return nil
	}

	// The sequence keeps placeholder ids unique across in-flight
	// submissions sharing a millisecond, so a rollback can only ever
	// remove its own pending entry.
	now := c.now()
	pending := Message{
		ID:           fmt.Sprintf("temp-%d-%d", now.UnixMilli(), c.seq.Add(1)),
		Text:         text,
		Sender:       c.sender,
		Side:         feed.Side(),
		CreatedAt:    now.UnixMilli(),
		CreationTime: now.UnixMilli(),
	}

	feed.AddPending(pending)
	feed.ClearDraft()

	ip, err := c.identity.Resolve(ctx)
	if err != nil {
		feed.RemovePending(pending.ID)
		return ErrIdentityUnresolved
	}

	limit, err := c.api.CheckRateLimit(ctx, ip)
	if err != nil {
		feed.RemovePending(pending.ID)
		return fmt.Errorf("failed to send message, please try again: %w", err)
	}
	if !limit.IsAllowed {
		feed.RemovePending(pending.ID)
		return &RateLimitError{
			Used:    limit.CurrentRequests,
			ResetAt: c.now().Add(time.Duration(limit.ResetMs) * time.Millisecond),
		}
	}

	result, err := c.api.SendMessage(ctx, text, c.sender, feed.Side())
	if err != nil {
		feed.RemovePending(pending.ID)
		return fmt.Errorf("failed to send message, please try again: %w", err)
	}

	feed.ConfirmPending(pending.ID, result.ID, result.CreationTime)
	return nil
}

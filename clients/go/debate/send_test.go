package debate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeAPI scripts the quota and persist behavior for one test.
type fakeAPI struct {
	limit      RateLimitResult
	limitErr   error
	sendResult SendResult
	sendErr    error

	limitCalls []string
	sendCalls  []string
}

func (f *fakeAPI) CheckRateLimit(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	f.limitCalls = append(f.limitCalls, clientIP)
	if f.limitErr != nil {
		return nil, f.limitErr
	}
	res := f.limit
	return &res, nil
}

func (f *fakeAPI) SendMessage(ctx context.Context, text, sender string, side Side) (*SendResult, error) {
	f.sendCalls = append(f.sendCalls, text)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	res := f.sendResult
	return &res, nil
}

type failingResolver struct{}

func (failingResolver) Resolve(ctx context.Context) (string, error) {
	return "", errors.New("lookup unavailable")
}

func newTestCoordinator(api *fakeAPI) *Coordinator {
	c := NewCoordinator(api, StaticResolver("203.0.113.7"))
	c.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return c
}

func allowedAPI() *fakeAPI {
	return &fakeAPI{
		limit:      RateLimitResult{IsAllowed: true, CurrentRequests: 1, MaxRequests: 3},
		sendResult: SendResult{ID: "01HSERVERID", CreationTime: 1_700_000_000_500},
	}
}

func TestSubmitEmptyDraftIsSilentNoop(t *testing.T) {
	for _, draft := range []string{"", "   ", "\n\t "} {
		api := allowedAPI()
		feed := NewFeed(SidePrisma)
		feed.SetDraft(draft)

		if err := newTestCoordinator(api).Submit(context.Background(), feed); err != nil {
			t.Fatalf("draft %q: unexpected error %v", draft, err)
		}
		if len(feed.Snapshot()) != 0 {
			t.Fatalf("draft %q: pending entry created", draft)
		}
		if len(api.limitCalls) != 0 || len(api.sendCalls) != 0 {
			t.Fatalf("draft %q: network calls issued", draft)
		}
	}
}

func TestSubmitConfirmsInPlace(t *testing.T) {
	api := allowedAPI()
	feed := NewFeed(SideDrizzle)
	feed.SetDraft("  drizzle wins  ")

	if err := newTestCoordinator(api).Submit(context.Background(), feed); err != nil {
		t.Fatal(err)
	}

	if feed.Draft() != "" {
		t.Fatal("draft not cleared")
	}
	if len(api.limitCalls) != 1 || len(api.sendCalls) != 1 {
		t.Fatalf("expected 1 limit and 1 send call, got %d and %d", len(api.limitCalls), len(api.sendCalls))
	}
	if api.sendCalls[0] != "drizzle wins" {
		t.Fatalf("expected trimmed text sent, got %q", api.sendCalls[0])
	}

	snap := feed.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected exactly 1 entry, got %d", len(snap))
	}
	got := snap[0]
	if got.ID != "01HSERVERID" {
		t.Fatalf("expected server id, got %s", got.ID)
	}
	if got.Pending() {
		t.Fatal("entry still pending after confirm")
	}
	if got.CreationTime != 1_700_000_000_500 {
		t.Fatalf("creation time not updated, got %d", got.CreationTime)
	}
	if got.CreatedAt != 1_700_000_000_000 {
		t.Fatalf("client timestamp overwritten, got %d", got.CreatedAt)
	}
}

func TestSubmitRateLimitedRollsBack(t *testing.T) {
	api := allowedAPI()
	api.limit = RateLimitResult{IsAllowed: false, CurrentRequests: 3, MaxRequests: 3, ResetMs: 60_000}

	feed := NewFeed(SidePrisma)
	feed.SetDraft("fourth message")

	err := newTestCoordinator(api).Submit(context.Background(), feed)

	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rlErr.Used != 3 {
		t.Fatalf("expected 3 used, got %d", rlErr.Used)
	}
	if !strings.Contains(rlErr.Error(), "You've sent 3 messages") {
		t.Fatalf("error missing used count: %q", rlErr.Error())
	}
	if len(feed.Snapshot()) != 0 {
		t.Fatal("pending entry not rolled back")
	}
	if len(api.sendCalls) != 0 {
		t.Fatal("persist attempted despite rejection")
	}
}

func TestSubmitStoreFailureRollsBack(t *testing.T) {
	api := allowedAPI()
	api.sendErr = errors.New("store unreachable")

	feed := NewFeed(SidePrisma)
	feed.SetDraft("hello")

	err := newTestCoordinator(api).Submit(context.Background(), feed)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(feed.Snapshot()) != 0 {
		t.Fatal("pending entry not rolled back")
	}
}

func TestSubmitQuotaFailureRollsBack(t *testing.T) {
	api := allowedAPI()
	api.limitErr = errors.New("quota service down")

	feed := NewFeed(SidePrisma)
	feed.SetDraft("hello")

	err := newTestCoordinator(api).Submit(context.Background(), feed)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(feed.Snapshot()) != 0 {
		t.Fatal("pending entry not rolled back")
	}
	if len(api.sendCalls) != 0 {
		t.Fatal("persist attempted after quota failure")
	}
}

func TestSubmitUnresolvedIdentityRollsBack(t *testing.T) {
	api := allowedAPI()
	c := NewCoordinator(api, failingResolver{})

	feed := NewFeed(SideDrizzle)
	feed.SetDraft("hello")

	err := c.Submit(context.Background(), feed)
	if !errors.Is(err, ErrIdentityUnresolved) {
		t.Fatalf("expected ErrIdentityUnresolved, got %v", err)
	}
	if len(feed.Snapshot()) != 0 {
		t.Fatal("pending entry not rolled back")
	}
	if len(api.limitCalls) != 0 {
		t.Fatal("quota checked without resolved identity")
	}
}

// parkingAPI lets the test hold its first submission at the quota call
// while later submissions proceed and get rejected.
type parkingAPI struct {
	mu         sync.Mutex
	calls      int
	entered    chan struct{} // closed when the first call reaches the limiter
	release    chan struct{} // closed to let the first call continue
	sendResult SendResult
	sendCalls  int
}

func (p *parkingAPI) CheckRateLimit(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	p.mu.Lock()
	p.calls++
	first := p.calls == 1
	p.mu.Unlock()

	if first {
		close(p.entered)
		<-p.release
		return &RateLimitResult{IsAllowed: true, CurrentRequests: 1, MaxRequests: 3}, nil
	}
	return &RateLimitResult{IsAllowed: false, CurrentRequests: 3, MaxRequests: 3}, nil
}

func (p *parkingAPI) SendMessage(ctx context.Context, text, sender string, side Side) (*SendResult, error) {
	p.mu.Lock()
	p.sendCalls++
	p.mu.Unlock()
	res := p.sendResult
	return &res, nil
}

func TestSameMillisecondSubmitsGetDistinctPlaceholders(t *testing.T) {
	api := &parkingAPI{
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
		sendResult: SendResult{ID: "01HSURVIVOR", CreationTime: 1_700_000_000_900},
	}

	// Frozen clock: both submissions share one millisecond
	c := NewCoordinator(api, StaticResolver("203.0.113.7"))
	c.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	feed := NewFeed(SidePrisma)
	feed.SetDraft("first in flight")

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), feed) }()
	<-api.entered

	// While the first submission is parked at the limiter, a second one
	// on the same feed is rejected and rolled back
	feed.SetDraft("second, over quota")
	if err := c.Submit(context.Background(), feed); err == nil {
		t.Fatal("expected rate limit rejection for second submit")
	}

	close(api.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	// The rejection's rollback must not have taken the first
	// submission's pending entry with it
	snap := feed.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected the surviving message, got %d entries", len(snap))
	}
	if snap[0].ID != "01HSURVIVOR" || snap[0].Text != "first in flight" {
		t.Fatalf("unexpected surviving entry %+v", snap[0])
	}
	if api.sendCalls != 1 {
		t.Fatalf("expected exactly 1 persist call, got %d", api.sendCalls)
	}
}

func TestFeedsAreIndependent(t *testing.T) {
	// A confirmed entry on drizzle must survive a failed submit on prisma
	okAPI := allowedAPI()
	drizzle := NewFeed(SideDrizzle)
	drizzle.SetDraft("drizzle message")
	if err := newTestCoordinator(okAPI).Submit(context.Background(), drizzle); err != nil {
		t.Fatal(err)
	}

	failAPI := allowedAPI()
	failAPI.limit = RateLimitResult{IsAllowed: false, CurrentRequests: 3, MaxRequests: 3}
	prisma := NewFeed(SidePrisma)
	prisma.SetDraft("prisma message")
	if err := newTestCoordinator(failAPI).Submit(context.Background(), prisma); err == nil {
		t.Fatal("expected rate limit error")
	}

	if len(prisma.Snapshot()) != 0 {
		t.Fatal("prisma feed should be empty after rollback")
	}
	if len(drizzle.Snapshot()) != 1 {
		t.Fatal("drizzle feed affected by prisma failure")
	}
}

package debate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientListMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("side") != "prisma" || q.Get("cursor") != "50:abc" || q.Get("limit") != "10" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":"m1","text":"hi","side":"prisma","creation_time":40}],"next_cursor":"40:m1","has_more":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	page, err := c.ListMessages(context.Background(), SidePrisma, "50:abc", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Messages) != 1 || page.Messages[0].ID != "m1" {
		t.Fatalf("unexpected page %+v", page)
	}
	if !page.HasMore || page.NextCursor != "40:m1" {
		t.Fatalf("unexpected pagination state %+v", page)
	}
}

func TestClientSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/messages" {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"01HXYZ","creation_time":123}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.SendMessage(context.Background(), "hello", "Enjoyer", SideDrizzle)
	if err != nil {
		t.Fatal(err)
	}
	if res.ID != "01HXYZ" || res.CreationTime != 123 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestClientSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"text too long (max 500 bytes)"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.SendMessage(context.Background(), "x", "Enjoyer", SidePrisma)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", apiErr.Status)
	}
	if apiErr.Message != "text too long (max 500 bytes)" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestClientCheckRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ratelimit/check" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"is_allowed":false,"current_requests":3,"max_requests":3,"reset_ms":7200000}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.CheckRateLimit(context.Background(), "203.0.113.7")
	if err != nil {
		t.Fatal(err)
	}
	if res.IsAllowed || res.CurrentRequests != 3 || res.ResetMs != 7200000 {
		t.Fatalf("unexpected result %+v", res)
	}
}

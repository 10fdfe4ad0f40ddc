package debate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIPResolverCachesFirstAnswer(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"ip":"198.51.100.9"}`))
	}))
	defer srv.Close()

	r := NewIPResolver()
	r.URL = srv.URL

	for i := 0; i < 3; i++ {
		ip, err := r.Resolve(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if ip != "198.51.100.9" {
			t.Fatalf("expected 198.51.100.9, got %s", ip)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 lookup, got %d", calls)
	}
}

func TestIPResolverRejectsInvalidAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"not-an-ip"}`))
	}))
	defer srv.Close()

	r := NewIPResolver()
	r.URL = srv.URL

	if _, err := r.Resolve(context.Background()); err == nil {
		t.Fatal("expected error for invalid address")
	}
}

func TestIPResolverRetriesAfterFailure(t *testing.T) {
	fail := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ip":"203.0.113.42"}`))
	}))
	defer srv.Close()

	r := NewIPResolver()
	r.URL = srv.URL

	if _, err := r.Resolve(context.Background()); err == nil {
		t.Fatal("expected first lookup to fail")
	}

	fail = false
	ip, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ip != "203.0.113.42" {
		t.Fatalf("expected 203.0.113.42, got %s", ip)
	}
}

package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "42", "Expo Industrial":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"title":"Expo Industrial 2024"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	title, err := c.Lookup(ctx, "42")
	if err != nil {
		t.Fatalf("Lookup by id: %v", err)
	}
	if title != "Expo Industrial 2024" {
		t.Errorf("title = %q", title)
	}

	title, err = c.Lookup(ctx, "Expo Industrial")
	if err != nil {
		t.Fatalf("Lookup by title: %v", err)
	}
	if title != "Expo Industrial 2024" {
		t.Errorf("title = %q", title)
	}
}

func TestLookupMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	title, err := NewClient(srv.URL).Lookup(context.Background(), "nothing here")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if title != "" {
		t.Errorf("expected empty title, got %q", title)
	}
}

func TestLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Lookup(context.Background(), "x"); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestLookupDisabled(t *testing.T) {
	c := NewClient("")
	if c.Enabled() {
		t.Error("empty baseURL should disable the client")
	}
	title, err := c.Lookup(context.Background(), "42")
	if err != nil || title != "" {
		t.Errorf("disabled lookup = %q, %v", title, err)
	}
}

func TestLookupEmptyQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("empty query hit the proxy")
	}))
	defer srv.Close()

	title, err := NewClient(srv.URL).Lookup(context.Background(), "   ")
	if err != nil || title != "" {
		t.Errorf("empty query = %q, %v", title, err)
	}
}

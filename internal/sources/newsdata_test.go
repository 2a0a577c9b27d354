package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/localpress/localpress/internal/config"
	"github.com/localpress/localpress/internal/ratelimit"
)

func TestNewNewsDataClient_MissingKey(t *testing.T) {
	_, err := NewNewsDataClient("  ", "", ratelimit.New(0), DefaultConfig())
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("NewNewsDataClient() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestNewsDataClient_Search(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept header = %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"totalResults": 1,
			"results": [{
				"article_id": "abc123",
				"title": "Beverly Hills fair opens",
				"link": "https://news.example.com/fair",
				"description": "Crowds gather.",
				"content": null,
				"pubDate": "2024-05-14 10:00:00",
				"image_url": null,
				"source_name": "Example",
				"category": ["domestic"]
			}]
		}`))
	}))
	defer srv.Close()

	client, err := NewNewsDataClient("pub_test", srv.URL+"/api/1/news", ratelimit.New(0), DefaultConfig())
	if err != nil {
		t.Fatalf("NewNewsDataClient() error = %v", err)
	}

	records, err := client.Search(context.Background(), Query{
		Q:          "Beverly Hills",
		Categories: []string{"politics", "domestic", "other"},
		Timeframe:  7,
		Size:       120,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := map[string]string{
		"apikey":    "pub_test",
		"language":  "en",
		"q":         "Beverly Hills",
		"category":  "politics,domestic,other",
		"country":   "us",
		"timeframe": "7",
		"size":      "50",
	}
	for key, value := range want {
		if gotQuery[key] != value {
			t.Errorf("query %s = %q, want %q", key, gotQuery[key], value)
		}
	}

	if len(records) != 1 {
		t.Fatalf("Search() returned %d records, want 1", len(records))
	}
	if records[0].ArticleID != "abc123" || records[0].Content != "" {
		t.Errorf("record = %+v", records[0])
	}
	if client.Name() != "newsdata" {
		t.Errorf("Name() = %q", client.Name())
	}
}

func TestNewsDataClient_SearchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non-2xx", status: http.StatusTooManyRequests, body: `{"status":"error"}`},
		{name: "server error", status: http.StatusInternalServerError, body: ``},
		{name: "malformed body", status: http.StatusOK, body: `{"results": [`},
		{name: "error status", status: http.StatusOK, body: `{"status":"error","results":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := NewNewsDataClient("pub_test", srv.URL, nil, FetcherConfig{Timeout: time.Second, MaxItems: 50})
			if err != nil {
				t.Fatalf("NewNewsDataClient() error = %v", err)
			}
			if _, err := client.Search(context.Background(), Query{Q: "x", Size: 5}); err == nil {
				t.Error("Search() expected error")
			}
		})
	}
}

func TestNewsDataClient_OmitsEmptyParams(t *testing.T) {
	client, err := NewNewsDataClient("k", "", nil, DefaultConfig())
	if err != nil {
		t.Fatalf("NewNewsDataClient() error = %v", err)
	}

	u, err := client.searchURL(Query{})
	if err != nil {
		t.Fatalf("searchURL() error = %v", err)
	}
	q := u.Query()
	for _, key := range []string{"q", "category", "timeframe"} {
		if q.Has(key) {
			t.Errorf("searchURL() should omit %s, got %q", key, q.Get(key))
		}
	}
	if q.Get("size") != "1" {
		t.Errorf("size = %q, want clamped to 1", q.Get("size"))
	}
	if u.Host != "newsdata.io" {
		t.Errorf("host = %q, want default newsdata.io", u.Host)
	}
}

func TestNewsDataClient_SearchStopsWaitingWhenCancelled(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"status": "success", "results": []}`))
	}))
	defer srv.Close()

	client, err := NewNewsDataClient("pub_test", srv.URL+"/api/1/news", ratelimit.New(time.Minute), DefaultConfig())
	if err != nil {
		t.Fatalf("NewNewsDataClient() error = %v", err)
	}
	if _, err := client.Search(context.Background(), Query{Q: "Beverly Hills"}); err != nil {
		t.Fatalf("first Search() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = client.Search(ctx, Query{Q: "Beverly Hills"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Search() error = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Search() kept waiting for %v after cancellation", elapsed)
	}
	if calls != 1 {
		t.Errorf("provider called %d times, want 1", calls)
	}
}

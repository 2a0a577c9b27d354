// Package sources queries external news providers and normalizes their
// records into models.Article values.
package sources

import (
	"context"
	"time"
)

// Record is one article as reported by an external provider. Field names
// follow the NewsData.io wire format; other providers fill what they can.
type Record struct {
	ArticleID   string   `json:"article_id"`
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Keywords    []string `json:"keywords"`
	Creator     []string `json:"creator"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	PubDate     string   `json:"pubDate"`
	ImageURL    string   `json:"image_url"`
	SourceID    string   `json:"source_id"`
	SourceName  string   `json:"source_name"`
	SourceURL   string   `json:"source_url"`
	SourceIcon  string   `json:"source_icon"`
	Language    string   `json:"language"`
	Country     []string `json:"country"`
	Category    []string `json:"category"`
}

// Query narrows a provider search.
type Query struct {
	Q          string
	Categories []string
	Country    string
	// Timeframe is a day count; zero leaves the provider default.
	Timeframe int
	Size      int
}

// Provider is an external news search backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) ([]Record, error)
}

type FetcherConfig struct {
	Timeout   time.Duration
	MaxItems  int
	UserAgent string
}

func DefaultConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:   10 * time.Second,
		MaxItems:  50,
		UserAgent: "LocalPress/1.0",
	}
}

// clampSize bounds a requested page size to [1, max].
func clampSize(size, max int) int {
	if size < 1 {
		return 1
	}
	if max > 0 && size > max {
		return max
	}
	return size
}

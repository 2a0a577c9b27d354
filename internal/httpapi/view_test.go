package httpapi

import (
	"strings"
	"testing"
	"time"

	"github.com/localpress/localpress/internal/models"
)

func TestOptimizedImageURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"https://imgix.example/a.jpg", "https://imgix.example/a.jpg?w=800&h=450&auto=format,compress"},
		{"https://imgix.example/a.jpg?v=2", "https://imgix.example/a.jpg?v=2&w=800&h=450&auto=format,compress"},
	}

	for _, tt := range tests {
		if got := OptimizedImageURL(tt.raw, 800, 450); got != tt.want {
			t.Errorf("OptimizedImageURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNewArticleView(t *testing.T) {
	now := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	t.Run("undated external article", func(t *testing.T) {
		v := newArticleView(models.Article{
			ID:            "ext-newsdata-0",
			Title:         "Road closures",
			Summary:       strings.Repeat("detour ", 40),
			FeaturedImage: &models.Image{URL: "https://img.example/r.jpg", ImgixURL: "https://img.example/r.jpg"},
			Category:      models.CategoryKey("unknown").Ref(),
		}, now)

		if v.DisplayTitle != "Road closures" {
			t.Errorf("DisplayTitle = %q", v.DisplayTitle)
		}
		if v.DisplayDate != "" || v.RelativeTime != "" {
			t.Errorf("undated article has date %q / %q", v.DisplayDate, v.RelativeTime)
		}
		if !strings.HasSuffix(v.MetaDescription, "...") || len([]rune(v.MetaDescription)) > 163 {
			t.Errorf("MetaDescription = %q", v.MetaDescription)
		}
		if v.CategoryStyle != "news-local" {
			t.Errorf("CategoryStyle = %q, want news-local", v.CategoryStyle)
		}
		if !strings.Contains(v.ImageURL, "auto=format,compress") {
			t.Errorf("ImageURL = %q", v.ImageURL)
		}
		if v.CoverageAreas == nil {
			t.Error("CoverageAreas should serialize as an empty array")
		}
	})

	t.Run("dated article", func(t *testing.T) {
		v := newArticleView(models.Article{
			Headline:        "Farmers market opens",
			PublicationDate: "2024-04-29",
			Content:         "<p>Fresh produce every Sunday.</p>",
			Category:        models.CategorySports.Ref(),
		}, now)

		if v.DisplayDate != "April 29, 2024" {
			t.Errorf("DisplayDate = %q", v.DisplayDate)
		}
		if v.RelativeTime != "1 week ago" {
			t.Errorf("RelativeTime = %q", v.RelativeTime)
		}
		if v.MetaDescription != "Fresh produce every Sunday." {
			t.Errorf("MetaDescription = %q", v.MetaDescription)
		}
		if v.ReadingTime != 1 {
			t.Errorf("ReadingTime = %d, want 1", v.ReadingTime)
		}
	})
}

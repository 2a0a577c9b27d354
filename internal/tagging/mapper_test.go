package tagging

import (
	"testing"

	"github.com/localpress/localpress/internal/models"
)

func TestMapCategory(t *testing.T) {
	tests := []struct {
		tag  string
		want models.CategoryKey
	}{
		{"politics", models.CategoryPolitics},
		{"business", models.CategoryBusiness},
		{"sports", models.CategorySports},
		{"domestic", models.CategoryLocal},
		{"other", models.CategoryCommunity},
		{"environment", models.CategoryCommunity},
		{"health", models.CategoryCommunity},
		{"science", models.CategoryCommunity},
		{"technology", models.CategoryBusiness},
		{" Politics ", models.CategoryPolitics},
		{"entertainment", models.CategoryLocal},
		{"", models.CategoryLocal},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got := MapCategory(tt.tag)
			if got.Key != tt.want {
				t.Errorf("MapCategory(%q).Key = %q, want %q", tt.tag, got.Key, tt.want)
			}
			if got != tt.want.Ref() {
				t.Errorf("MapCategory(%q) = %+v, want %+v", tt.tag, got, tt.want.Ref())
			}
		})
	}
}

func TestMapCategories(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want models.CategoryKey
	}{
		{name: "nil tags", tags: nil, want: models.CategoryLocal},
		{name: "empty tags", tags: []string{}, want: models.CategoryLocal},
		{name: "single tag", tags: []string{"sports"}, want: models.CategorySports},
		{name: "only first tag counts", tags: []string{"top", "politics"}, want: models.CategoryLocal},
		{name: "first of several", tags: []string{"health", "sports"}, want: models.CategoryCommunity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapCategories(tt.tags); got.Key != tt.want {
				t.Errorf("MapCategories(%v).Key = %q, want %q", tt.tags, got.Key, tt.want)
			}
		})
	}
}

func TestProviderTags(t *testing.T) {
	got := ProviderTags(models.CategoryCommunity)
	want := []string{"environment", "health", "other", "science"}
	if len(got) != len(want) {
		t.Fatalf("ProviderTags(community) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ProviderTags(community)[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := ProviderTags(models.CategoryWeather); len(got) != 0 {
		t.Errorf("ProviderTags(weather) = %v, want none", got)
	}
}

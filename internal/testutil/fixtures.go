package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/localpress/localpress/internal/cms"
	"github.com/localpress/localpress/internal/database"
)

// Fixture object ids.
const (
	AreaBeverlyHills = "area-90210"
	AreaInactive     = "area-10001"
	SourceCourier    = "src-courier"
)

// FixtureObjects is a small newsroom: one active area with three articles,
// one inactive area with one article, and a news source.
func FixtureObjects() []cms.Object {
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	return []cms.Object{
		object(cms.TypeAreas, AreaBeverlyHills, "beverly-hills-90210", "Beverly Hills", base, map[string]any{
			"zip_code": "90210", "city": "Beverly Hills", "state": "CA", "county": "Los Angeles County", "active": true,
		}),
		object(cms.TypeAreas, AreaInactive, "new-york-10001", "New York", base, map[string]any{
			"zip_code": "10001", "city": "New York", "state": "NY", "active": false,
		}),
		object(cms.TypeSources, SourceCourier, "beverly-hills-courier", "Beverly Hills Courier", base, map[string]any{
			"source_name": "Beverly Hills Courier", "website_url": "https://courier.example.com",
			"type": map[string]any{"key": "newspaper", "value": "Newspaper"},
		}),
		object(cms.TypeArticles, "art-1", "council-park-budget", "Council approves park budget", base.Add(time.Hour), map[string]any{
			"headline": "Council approves park budget", "summary": "The vote was 4-1.",
			"content": "<p>The city council approved the park budget.</p>", "source_url": "https://courier.example.com/park-budget",
			"publication_date": "2024-05-03", "zip_code_areas": []any{AreaBeverlyHills}, "news_source": SourceCourier,
			"category": map[string]any{"key": "politics", "value": "Politics"},
		}),
		object(cms.TypeArticles, "art-2", "summer-festival-returns", "Summer festival returns", base.Add(2*time.Hour), map[string]any{
			"headline": "Summer festival returns to Roxbury Park", "summary": "Music and food all weekend.",
			"content": "The festival opens Friday.", "source_url": "https://courier.example.com/festival",
			"publication_date": "2024-05-02", "zip_code_areas": []any{AreaBeverlyHills},
			"category": map[string]any{"key": "community", "value": "Community"},
		}),
		object(cms.TypeArticles, "art-3", "rodeo-drive-hours", "Rodeo Drive shops extend hours", base.Add(3*time.Hour), map[string]any{
			"headline": "Rodeo Drive shops extend hours", "summary": "Retailers stay open late.",
			"source_url": "https://courier.example.com/rodeo", "publication_date": "2024-05-01",
			"zip_code_areas": []any{AreaBeverlyHills}, "category": map[string]any{"key": "business", "value": "Business"},
		}),
		object(cms.TypeArticles, "art-4", "midtown-street-festival", "Midtown street festival planned", base.Add(4*time.Hour), map[string]any{
			"headline": "Midtown street festival planned", "summary": "Blocks will close Saturday.",
			"source_url": "https://metro.example.com/street-festival", "publication_date": "2024-04-20",
			"zip_code_areas": []any{AreaInactive}, "category": map[string]any{"key": "community", "value": "Community"},
		}),
	}
}

// NewFixtureStore returns an in-memory SQLite store holding FixtureObjects.
func NewFixtureStore(t *testing.T) *database.ObjectStore {
	t.Helper()
	store := NewSQLiteStore(t)
	SeedObjects(t, store, FixtureObjects()...)
	return store
}

// SeedObjects upserts objs into store.
func SeedObjects(t *testing.T, store *database.ObjectStore, objs ...cms.Object) {
	t.Helper()
	for _, obj := range objs {
		if err := store.Upsert(context.Background(), obj); err != nil {
			t.Fatalf("Failed to seed %s: %v", obj.ID, err)
		}
	}
}

func object(typ, id, slug, title string, created time.Time, metadata map[string]any) cms.Object {
	raw, err := json.Marshal(metadata)
	if err != nil {
		panic(err)
	}
	return cms.Object{ID: id, Type: typ, Slug: slug, Title: title, Metadata: raw, CreatedAt: created}
}

package database_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/localpress/localpress/internal/cms"
	"github.com/localpress/localpress/internal/database"
	"github.com/localpress/localpress/internal/testutil"
)

const seedYAML = `
objects:
  - id: area-73301
    type: zip-code-areas
    title: Austin
    created_at: 2024-05-01T09:00:00Z
    metadata:
      zip_code: "73301"
      city: Austin
      state: TX
      active: true
  - id: art-austin-1
    type: news-articles
    slug: capitol-tour
    title: Capitol tours resume
    metadata:
      headline: Capitol tours resume
      publication_date: "2024-05-04"
      zip_code_areas: [area-73301]
      category: {key: community, value: Community}
`

func TestLoadSeed_Apply(t *testing.T) {
	seed, err := database.LoadSeed(strings.NewReader(seedYAML))
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}
	if len(seed.Objects) != 2 {
		t.Fatalf("LoadSeed() returned %d objects, want 2", len(seed.Objects))
	}

	store := testutil.NewSQLiteStore(t)
	ctx := context.Background()

	n, err := seed.Apply(ctx, store)
	if err != nil || n != 2 {
		t.Fatalf("Apply() = %d, %v", n, err)
	}
	// Applying twice updates in place.
	if _, err := seed.Apply(ctx, store); err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}

	area, err := store.FindOne(ctx, cms.Query{Type: cms.TypeAreas, Filter: map[string]any{"metadata.zip_code": "73301"}})
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if area.Slug != "austin" {
		t.Errorf("slug = %q, want derived from title", area.Slug)
	}

	objs, err := store.Find(ctx, cms.Query{
		Type:   cms.TypeArticles,
		Filter: map[string]any{"metadata.zip_code_areas": "area-73301"},
		Depth:  1,
	})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	article, err := cms.DecodeArticle(objs[0])
	if err != nil {
		t.Fatalf("DecodeArticle() error = %v", err)
	}
	if article.CoverageAreas[0].ZipCode != "73301" {
		t.Errorf("CoverageAreas = %+v", article.CoverageAreas)
	}
}

func TestLoadSeed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing id", yaml: "objects:\n  - type: tips\n"},
		{name: "missing type", yaml: "objects:\n  - id: x\n"},
		{name: "unknown field", yaml: "objects:\n  - id: x\n    type: tips\n    color: red\n"},
		{name: "not yaml", yaml: "objects: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := database.LoadSeed(strings.NewReader(tt.yaml)); err == nil {
				t.Error("LoadSeed() expected error")
			}
		})
	}
}

func TestLoadSeed_Empty(t *testing.T) {
	seed, err := database.LoadSeed(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}
	if len(seed.Objects) != 0 {
		t.Errorf("LoadSeed() = %+v, want no objects", seed)
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	seed, err := database.LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile() error = %v", err)
	}
	if seed.Objects[1].Slug != "capitol-tour" {
		t.Errorf("Objects[1].Slug = %q", seed.Objects[1].Slug)
	}

	if _, err := database.LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadSeedFile() expected error for missing file")
	}
}

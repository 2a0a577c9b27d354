package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/localpress/localpress/internal/cms"
)

// Seed is the YAML document accepted by LoadSeed.
//
//	objects:
//	  - id: area-90210
//	    type: zip-code-areas
//	    title: Beverly Hills
//	    metadata:
//	      zip_code: "90210"
type Seed struct {
	Objects []SeedObject `yaml:"objects"`
}

type SeedObject struct {
	ID        string         `yaml:"id"`
	Type      string         `yaml:"type"`
	Slug      string         `yaml:"slug"`
	Title     string         `yaml:"title"`
	CreatedAt time.Time      `yaml:"created_at"`
	Metadata  map[string]any `yaml:"metadata"`
}

// LoadSeed parses a seed document and checks every object has an id and a
// type.
func LoadSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		if err == io.EOF {
			return &seed, nil
		}
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	for i, obj := range seed.Objects {
		if obj.ID == "" || obj.Type == "" {
			return nil, fmt.Errorf("seed object %d: id and type are required", i+1)
		}
	}
	return &seed, nil
}

// LoadSeedFile is LoadSeed over a file path.
func LoadSeedFile(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// Apply upserts every seed object into store and returns how many were
// written.
func (s *Seed) Apply(ctx context.Context, store *ObjectStore) (int, error) {
	for i, obj := range s.Objects {
		metadata, err := json.Marshal(obj.Metadata)
		if err != nil {
			return i, fmt.Errorf("seed object %s: invalid metadata: %w", obj.ID, err)
		}
		if obj.Metadata == nil {
			metadata = []byte("{}")
		}

		slug := obj.Slug
		if slug == "" {
			slug = Slugify(obj.Title)
		}

		if err := store.Upsert(ctx, cms.Object{
			ID:        obj.ID,
			Type:      obj.Type,
			Slug:      slug,
			Title:     obj.Title,
			Metadata:  metadata,
			CreatedAt: obj.CreatedAt,
		}); err != nil {
			return i, err
		}
	}
	return len(s.Objects), nil
}

// Package cms defines the content store contract shared by the Cosmic REST
// client and the SQL-backed store, plus the decoders that turn stored
// objects into domain models.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Object types stored in the CMS.
const (
	TypeArticles = "news-articles"
	TypeAreas    = "zip-code-areas"
	TypeSources  = "news-sources"
	TypeTips     = "tips"
)

// DefaultProps is the projection every read uses.
// Cosmic only returns the fields named here, so the timestamps must be
// listed for undated articles to fall back to their creation time.
var DefaultProps = []string{"id", "title", "slug", "metadata", "created_at", "modified_at"}

// ErrNotFound is the provider "no results" condition. Callers translate it
// into an empty result; it never reaches the rendering layer.
var ErrNotFound = errors.New("cms: not found")

// ProviderError is a transport failure, an unexpected status or a malformed
// response from the store.
type ProviderError struct {
	Op     string
	Status int
	Err    error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("cms %s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("cms %s: status %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("cms %s: %v", e.Op, e.Err)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Object is the stored record shape.
type Object struct {
	ID         string          `json:"id"`
	Type       string          `json:"type,omitempty"`
	Slug       string          `json:"slug"`
	Title      string          `json:"title"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	ModifiedAt time.Time       `json:"modified_at"`
}

// Query selects objects of one type. Filter keys are "id", "slug",
// "title", "metadata.<field>" or "$or"; see Match for the value forms.
type Query struct {
	Type   string
	Filter map[string]any
	Props  []string
	// Depth 1 expands relationship ids into full objects.
	Depth int
	Limit int
}

// NewObject is the payload for InsertOne.
type NewObject struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Slug     string         `json:"slug,omitempty"`
	Metadata map[string]any `json:"metadata"`
}

// Provider is the content store. Find and FindOne return ErrNotFound when
// nothing matches.
type Provider interface {
	Find(ctx context.Context, q Query) ([]Object, error)
	FindOne(ctx context.Context, q Query) (*Object, error)
	InsertOne(ctx context.Context, obj NewObject) (*Object, error)
}

// IsNotFound reports whether err is the provider "no results" condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

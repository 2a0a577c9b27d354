package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/localpress/localpress/internal/cms"
)

// relationFields are metadata fields holding object ids that Depth 1
// expands into full objects.
var relationFields = map[string]bool{
	"zip_code_areas": true,
	"news_source":    true,
}

const objectColumns = `id, type, slug, title, metadata, created_at, modified_at`

// ObjectStore is a cms.Provider over the cms_objects table. Column filters
// on id and slug are pushed into SQL; metadata filters run through
// cms.Match.
type ObjectStore struct {
	db  *DB
	now func() time.Time
}

var _ cms.Provider = (*ObjectStore)(nil)

func NewObjectStore(db *DB) *ObjectStore {
	return &ObjectStore{db: db, now: time.Now}
}

func (s *ObjectStore) Find(ctx context.Context, q cms.Query) ([]cms.Object, error) {
	candidates, err := s.selectCandidates(ctx, q)
	if err != nil {
		return nil, &cms.ProviderError{Op: "find", Err: err}
	}

	var out []cms.Object
	for _, obj := range candidates {
		ok, err := cms.Match(obj, q.Filter)
		if err != nil {
			return nil, &cms.ProviderError{Op: "find", Err: err}
		}
		if !ok {
			continue
		}
		out = append(out, obj)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}

	if len(out) == 0 {
		return nil, cms.ErrNotFound
	}

	for i := range out {
		if q.Depth > 0 {
			if err := s.expand(ctx, &out[i]); err != nil {
				return nil, &cms.ProviderError{Op: "find", Err: err}
			}
		}
		project(&out[i], q.Props)
	}
	return out, nil
}

func (s *ObjectStore) FindOne(ctx context.Context, q cms.Query) (*cms.Object, error) {
	q.Limit = 1
	objects, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return &objects[0], nil
}

func (s *ObjectStore) InsertOne(ctx context.Context, obj cms.NewObject) (*cms.Object, error) {
	metadata, err := json.Marshal(obj.Metadata)
	if err != nil {
		return nil, &cms.ProviderError{Op: "insert", Err: fmt.Errorf("invalid metadata: %w", err)}
	}
	if obj.Metadata == nil {
		metadata = []byte("{}")
	}

	id := uuid.NewString()
	slug := obj.Slug
	if slug == "" {
		slug = Slugify(obj.Title) + "-" + id[:8]
	}
	now := s.now().UTC()

	created := cms.Object{
		ID:         id,
		Type:       obj.Type,
		Slug:       slug,
		Title:      obj.Title,
		Metadata:   metadata,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.Upsert(ctx, created); err != nil {
		return nil, &cms.ProviderError{Op: "insert", Err: err}
	}
	return &created, nil
}

// Upsert writes obj, replacing any object with the same id.
func (s *ObjectStore) Upsert(ctx context.Context, obj cms.Object) error {
	if len(obj.Metadata) == 0 {
		obj.Metadata = json.RawMessage("{}")
	}
	if obj.CreatedAt.IsZero() {
		obj.CreatedAt = s.now().UTC()
	}
	if obj.ModifiedAt.IsZero() {
		obj.ModifiedAt = obj.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, s.db.rebind(`
		INSERT INTO cms_objects (`+objectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			type = excluded.type,
			slug = excluded.slug,
			title = excluded.title,
			metadata = excluded.metadata,
			modified_at = excluded.modified_at
	`), obj.ID, obj.Type, obj.Slug, obj.Title, string(obj.Metadata), obj.CreatedAt.UTC(), obj.ModifiedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert %s %s: %w", obj.Type, obj.ID, err)
	}
	return nil
}

// Count returns the number of stored objects of type t.
func (s *ObjectStore) Count(ctx context.Context, t string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.db.rebind(`SELECT COUNT(*) FROM cms_objects WHERE type = ?`), t).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t, err)
	}
	return n, nil
}

// selectCandidates loads every object of the query type that passes the
// column-level filters, newest first. Rows are fully read before returning
// so callers may issue further queries on a single-connection pool.
func (s *ObjectStore) selectCandidates(ctx context.Context, q cms.Query) ([]cms.Object, error) {
	query := `SELECT ` + objectColumns + ` FROM cms_objects WHERE type = ?`
	args := []interface{}{q.Type}
	for _, col := range []string{"id", "slug"} {
		if v, ok := q.Filter[col].(string); ok {
			query += ` AND ` + col + ` = ?`
			args = append(args, v)
		}
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, s.db.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []cms.Object
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, rows.Err()
}

func (s *ObjectStore) getByID(ctx context.Context, id string) (*cms.Object, error) {
	row := s.db.QueryRowContext(ctx, s.db.rebind(`SELECT `+objectColumns+` FROM cms_objects WHERE id = ?`), id)
	obj, err := scanObject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// expand replaces relationship ids in obj's metadata with the referenced
// objects. Ids that do not resolve are kept as-is.
func (s *ObjectStore) expand(ctx context.Context, obj *cms.Object) error {
	if len(obj.Metadata) == 0 {
		return nil
	}

	var metadata map[string]any
	if err := json.Unmarshal(obj.Metadata, &metadata); err != nil {
		return fmt.Errorf("invalid metadata for %s: %w", obj.ID, err)
	}

	changed := false
	for field := range relationFields {
		value, ok := metadata[field]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if ref, err := s.resolveRef(ctx, v); err != nil {
				return err
			} else if ref != nil {
				metadata[field] = ref
				changed = true
			}
		case []any:
			for i, elem := range v {
				id, isID := elem.(string)
				if !isID {
					continue
				}
				ref, err := s.resolveRef(ctx, id)
				if err != nil {
					return err
				}
				if ref != nil {
					v[i] = ref
					changed = true
				}
			}
		}
	}

	if !changed {
		return nil
	}
	expanded, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	obj.Metadata = expanded
	return nil
}

func (s *ObjectStore) resolveRef(ctx context.Context, id string) (*cms.Object, error) {
	if id == "" {
		return nil, nil
	}
	ref, err := s.getByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", id, err)
	}
	return ref, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanObject(row scanner) (cms.Object, error) {
	var obj cms.Object
	var metadata string
	var created, modified sql.NullTime
	if err := row.Scan(&obj.ID, &obj.Type, &obj.Slug, &obj.Title, &metadata, &created, &modified); err != nil {
		return cms.Object{}, err
	}
	obj.Metadata = json.RawMessage(metadata)
	if created.Valid {
		obj.CreatedAt = created.Time.UTC()
	}
	if modified.Valid {
		obj.ModifiedAt = modified.Time.UTC()
	}
	return obj, nil
}

// project clears the fields not named in props. An empty props keeps all.
func project(obj *cms.Object, props []string) {
	if len(props) == 0 {
		return
	}
	keep := make(map[string]bool, len(props))
	for _, p := range props {
		keep[p] = true
	}
	if !keep["metadata"] {
		obj.Metadata = nil
	}
	if !keep["title"] {
		obj.Title = ""
	}
	if !keep["slug"] {
		obj.Slug = ""
	}
	if !keep["created_at"] {
		obj.CreatedAt = time.Time{}
	}
	if !keep["modified_at"] {
		obj.ModifiedAt = time.Time{}
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "object"
	}
	return slug
}

// Package coverage resolves zip codes to active coverage areas.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/localpress/localpress/internal/cms"
	"github.com/localpress/localpress/internal/models"
)

const maxAreas = 100

// Resolver looks coverage areas up in the CMS.
type Resolver struct {
	cms cms.Provider
}

func NewResolver(provider cms.Provider) *Resolver {
	return &Resolver{cms: provider}
}

// Resolve returns the active area for zipCode, or nil when none exists.
// A ZIP+4 code is looked up by its first five digits. Inactive and missing
// areas look the same to callers. Provider failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, zipCode string) (*models.CoverageArea, error) {
	obj, err := r.cms.FindOne(ctx, cms.Query{
		Type: cms.TypeAreas,
		Filter: map[string]any{
			"metadata.zip_code": lookupKey(zipCode),
			"metadata.active":   true,
		},
		Props: cms.DefaultProps,
	})
	if errors.Is(err, cms.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find zip code area: %w", err)
	}

	area, err := cms.DecodeArea(*obj)
	if err != nil {
		return nil, fmt.Errorf("failed to find zip code area: %w", err)
	}
	if !area.Active {
		return nil, nil
	}
	return &area, nil
}

// ListActive returns up to 100 active areas.
func (r *Resolver) ListActive(ctx context.Context) ([]models.CoverageArea, error) {
	objs, err := r.cms.Find(ctx, cms.Query{
		Type:   cms.TypeAreas,
		Filter: map[string]any{"metadata.active": true},
		Props:  cms.DefaultProps,
		Limit:  maxAreas,
	})
	if errors.Is(err, cms.ErrNotFound) {
		return []models.CoverageArea{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch zip code areas: %w", err)
	}

	areas := make([]models.CoverageArea, 0, len(objs))
	for _, obj := range objs {
		area, err := cms.DecodeArea(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch zip code areas: %w", err)
		}
		if area.Active {
			areas = append(areas, area)
		}
	}
	return areas, nil
}

// lookupKey reduces a ZIP+4 code to the 5-digit form areas are stored under.
// Anything else is only trimmed.
func lookupKey(zipCode string) string {
	zipCode = strings.TrimSpace(zipCode)
	if len(zipCode) == 10 && models.IsValidZipCode(zipCode) {
		return zipCode[:5]
	}
	return zipCode
}

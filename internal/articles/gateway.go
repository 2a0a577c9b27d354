// Package articles reads news articles and news sources from the CMS.
package articles

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/localpress/localpress/internal/cms"
	"github.com/localpress/localpress/internal/models"
)

const (
	AreaLimit    = 50
	RecentLimit  = 100
	SearchLimit  = 10
	SourcesLimit = 50
)

// Gateway is the CMS article reader. "No results" is an empty slice or a
// nil article, never an error; any other provider failure is returned.
type Gateway struct {
	cms cms.Provider
}

func NewGateway(provider cms.Provider) *Gateway {
	return &Gateway{cms: provider}
}

// FetchByArea returns up to 50 articles associated with areaID.
func (g *Gateway) FetchByArea(ctx context.Context, areaID string) ([]models.Article, error) {
	articles, err := g.find(ctx, map[string]any{"metadata.zip_code_areas": areaID}, AreaLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news articles for zip code: %w", err)
	}
	return articles, nil
}

// FetchRecent returns up to 100 articles from every area.
func (g *Gateway) FetchRecent(ctx context.Context) ([]models.Article, error) {
	articles, err := g.find(ctx, nil, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news articles: %w", err)
	}
	return articles, nil
}

// Search returns up to 10 articles whose headline, summary or content
// contains keyword, case-insensitively. A non-empty areaID narrows the
// search to that area.
func (g *Gateway) Search(ctx context.Context, keyword, areaID string) ([]models.Article, error) {
	pattern := regexp.QuoteMeta(strings.TrimSpace(keyword))
	filter := map[string]any{
		"$or": []map[string]any{
			{"metadata.headline": map[string]any{"$regex": pattern, "$options": "i"}},
			{"metadata.summary": map[string]any{"$regex": pattern, "$options": "i"}},
			{"metadata.content": map[string]any{"$regex": pattern, "$options": "i"}},
		},
	}
	if areaID != "" {
		filter["metadata.zip_code_areas"] = areaID
	}

	articles, err := g.find(ctx, filter, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search news articles: %w", err)
	}
	return articles, nil
}

// GetBySlug returns the article with slug, or nil when there is none.
func (g *Gateway) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	obj, err := g.cms.FindOne(ctx, cms.Query{
		Type:   cms.TypeArticles,
		Filter: map[string]any{"slug": slug},
		Props:  cms.DefaultProps,
		Depth:  1,
	})
	if errors.Is(err, cms.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news article: %w", err)
	}

	article, err := cms.DecodeArticle(*obj)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news article: %w", err)
	}
	return &article, nil
}

// ListSources returns up to 50 news sources.
func (g *Gateway) ListSources(ctx context.Context) ([]models.NewsSource, error) {
	objs, err := g.cms.Find(ctx, cms.Query{
		Type:  cms.TypeSources,
		Props: cms.DefaultProps,
		Limit: SourcesLimit,
	})
	if errors.Is(err, cms.ErrNotFound) {
		return []models.NewsSource{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news sources: %w", err)
	}

	out := make([]models.NewsSource, 0, len(objs))
	for _, obj := range objs {
		src, err := cms.DecodeSource(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch news sources: %w", err)
		}
		out = append(out, src)
	}
	return out, nil
}

func (g *Gateway) find(ctx context.Context, filter map[string]any, limit int) ([]models.Article, error) {
	objs, err := g.cms.Find(ctx, cms.Query{
		Type:   cms.TypeArticles,
		Filter: filter,
		Props:  cms.DefaultProps,
		Depth:  1,
		Limit:  limit,
	})
	if errors.Is(err, cms.ErrNotFound) {
		return []models.Article{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]models.Article, 0, len(objs))
	for _, obj := range objs {
		article, err := cms.DecodeArticle(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, article)
	}
	return out, nil
}

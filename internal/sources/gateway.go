package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/localpress/localpress/internal/logging"
	"github.com/localpress/localpress/internal/models"
)

const (
	maxLocationTerms = 2
	maxProviderSize  = 50
)

var (
	localCategories   = []string{"politics", "domestic", "other"}
	generalCategories = []string{"politics", "business", "domestic"}
)

// Gateway is the best-effort front of an external provider. None of its
// methods return an error: provider failures are logged and yield fewer or
// no articles.
type Gateway struct {
	provider Provider
	logger   *logging.Logger
	now      func() time.Time
}

func NewGateway(provider Provider, logger *logging.Logger) *Gateway {
	return &Gateway{
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// FetchByArea searches the provider for the area's location terms over the
// last 7 days and returns at most limit de-duplicated articles.
func (g *Gateway) FetchByArea(ctx context.Context, area models.CoverageArea, limit int) []models.Article {
	if limit <= 0 {
		limit = 10
	}

	candidates := LocationTerms(area)
	if len(candidates) == 0 {
		return []models.Article{}
	}
	size := clampSize(ceilDiv(limit, len(candidates)), maxProviderSize)
	terms := candidates
	if len(terms) > maxLocationTerms {
		terms = terms[:maxLocationTerms]
	}

	perTerm := make([][]models.Article, len(terms))
	var eg errgroup.Group
	for i, term := range terms {
		eg.Go(func() error {
			perTerm[i] = g.search(ctx, Query{
				Q:          term,
				Categories: localCategories,
				Timeframe:  7,
				Size:       size,
			}, []models.CoverageArea{area})
			return nil
		})
	}
	_ = eg.Wait()

	var combined []models.Article
	for _, articles := range perTerm {
		combined = append(combined, articles...)
	}

	return g.finish(models.Deduplicate(combined), limit)
}

// SearchByKeyword runs a keyword search with no location expansion.
// timeframeDays defaults to 7.
func (g *Gateway) SearchByKeyword(ctx context.Context, keyword string, limit, timeframeDays int) []models.Article {
	if limit <= 0 {
		limit = 15
	}
	if timeframeDays <= 0 {
		timeframeDays = 7
	}

	articles := g.search(ctx, Query{
		Q:         keyword,
		Timeframe: timeframeDays,
		Size:      clampSize(limit, maxProviderSize),
	}, nil)

	return g.finish(articles, limit)
}

// FetchGeneral returns recent national headlines from the last 3 days,
// optionally narrowed by a search string.
func (g *Gateway) FetchGeneral(ctx context.Context, search string, limit int) []models.Article {
	if limit <= 0 {
		limit = 20
	}

	articles := g.search(ctx, Query{
		Q:          search,
		Categories: generalCategories,
		Timeframe:  3,
		Size:       clampSize(limit, maxProviderSize),
	}, nil)

	return g.finish(articles, limit)
}

// FetchBreaking returns headlines from the last 24 hours.
func (g *Gateway) FetchBreaking(ctx context.Context, limit int) []models.Article {
	if limit <= 0 {
		limit = 10
	}

	articles := g.search(ctx, Query{
		Categories: generalCategories,
		Timeframe:  1,
		Size:       clampSize(limit, maxProviderSize),
	}, nil)

	return g.finish(articles, limit)
}

// search runs one provider query and normalizes the results. Failures are
// logged and produce nil.
func (g *Gateway) search(ctx context.Context, q Query, areas []models.CoverageArea) []models.Article {
	records, err := g.provider.Search(ctx, q)
	if err != nil {
		g.logger.Warn("External news query failed", logging.WithFields(map[string]interface{}{
			"provider": g.provider.Name(),
			"term":     q.Q,
			"error":    err.Error(),
		}))
		return nil
	}

	articles := make([]models.Article, 0, len(records))
	for _, rec := range records {
		articles = append(articles, Normalize(rec, areas, nil))
	}
	return articles
}

// finish truncates to limit and stamps provider-namespaced ids and the
// synthesis time.
func (g *Gateway) finish(articles []models.Article, limit int) []models.Article {
	if len(articles) > limit {
		articles = articles[:limit]
	}

	now := g.now()
	out := make([]models.Article, len(articles))
	for i, a := range articles {
		a.ID = fmt.Sprintf("ext-%s-%d", g.provider.Name(), i)
		if a.Slug == "" {
			a.Slug = a.ID
		}
		a.CreatedAt = now
		out[i] = a
	}
	return out
}

// LocationTerms builds the distinct search terms for an area: city, county
// and "city state", in that order.
func LocationTerms(area models.CoverageArea) []string {
	city := strings.TrimSpace(area.City)
	county := strings.TrimSpace(area.County)
	state := strings.TrimSpace(area.State)

	candidates := []string{city, county}
	if city != "" && state != "" {
		candidates = append(candidates, city+" "+state)
	}

	seen := make(map[string]bool, len(candidates))
	terms := make([]string, 0, len(candidates))
	for _, term := range candidates {
		if term == "" || seen[strings.ToLower(term)] {
			continue
		}
		seen[strings.ToLower(term)] = true
		terms = append(terms, term)
	}
	return terms
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

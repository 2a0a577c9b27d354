// Package aggregator merges CMS and external articles into one list.
package aggregator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/localpress/localpress/internal/logging"
	"github.com/localpress/localpress/internal/models"
)

const (
	DefaultRecentLimit = 20
	MaxSearchResults   = 20
	externalSearchSize = 10
	externalSearchDays = 7
)

// AreaResolver resolves a zip code to an active coverage area.
type AreaResolver interface {
	Resolve(ctx context.Context, zipCode string) (*models.CoverageArea, error)
}

// ArticleStore is the CMS side of the fan-out. NotFound is reported as an
// empty slice; any error is a real provider failure.
type ArticleStore interface {
	FetchByArea(ctx context.Context, areaID string) ([]models.Article, error)
	FetchRecent(ctx context.Context) ([]models.Article, error)
	Search(ctx context.Context, keyword, areaID string) ([]models.Article, error)
}

// ExternalSource is the best-effort side of the fan-out. It has no error
// returns.
type ExternalSource interface {
	FetchByArea(ctx context.Context, area models.CoverageArea, limit int) []models.Article
	SearchByKeyword(ctx context.Context, keyword string, limit, days int) []models.Article
	FetchGeneral(ctx context.Context, search string, limit int) []models.Article
	FetchBreaking(ctx context.Context, limit int) []models.Article
}

type Aggregator struct {
	areas    AreaResolver
	cms      ArticleStore
	external ExternalSource
	logger   *logging.Logger
	now      func() time.Time
}

func New(areas AreaResolver, cms ArticleStore, external ExternalSource, logger *logging.Logger) *Aggregator {
	return &Aggregator{
		areas:    areas,
		cms:      cms,
		external: external,
		logger:   logger,
		now:      time.Now,
	}
}

// outcome is the settled result of one branch of the fan-out.
type outcome struct {
	articles []models.Article
	err      error
}

// ResolveArea returns the active area for zipCode, or nil.
func (a *Aggregator) ResolveArea(ctx context.Context, zipCode string) (*models.CoverageArea, error) {
	return a.areas.Resolve(ctx, zipCode)
}

// GetArticlesForZip returns CMS and external articles for the area covering
// zipCode, newest first. An uncovered zip code yields an empty slice.
func (a *Aggregator) GetArticlesForZip(ctx context.Context, zipCode string) ([]models.Article, error) {
	area, err := a.areas.Resolve(ctx, zipCode)
	if err != nil {
		return nil, err
	}
	if area == nil {
		a.logger.Debug("Zip code not covered", logging.WithField("zip_code", zipCode))
		return []models.Article{}, nil
	}
	return a.GetArticlesForArea(ctx, *area)
}

// GetArticlesForArea is GetArticlesForZip for a caller that has already
// resolved the area.
func (a *Aggregator) GetArticlesForArea(ctx context.Context, area models.CoverageArea) ([]models.Article, error) {
	local, external := a.fanOut(ctx,
		func(ctx context.Context) ([]models.Article, error) {
			return a.cms.FetchByArea(ctx, area.ID)
		},
		func(ctx context.Context) []models.Article {
			return a.external.FetchByArea(ctx, area, 0)
		},
	)
	if local.err != nil {
		return nil, local.err
	}

	merged := a.merge(local.articles, external.articles)

	a.logger.Info("Aggregated articles for zip code", logging.WithFields(map[string]interface{}{
		"zip_code": area.ZipCode,
		"area":     area.ID,
		"cms":      len(local.articles),
		"external": len(external.articles),
		"total":    len(merged),
	}))

	return merged, nil
}

// GetAllArticles returns the recent feed: CMS articles from every area,
// topped up with general external headlines when the CMS has fewer than
// limit.
func (a *Aggregator) GetAllArticles(ctx context.Context, limit int) ([]models.Article, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	recent, err := a.cms.FetchRecent(ctx)
	if err != nil {
		return nil, err
	}

	var external []models.Article
	if missing := limit - len(recent); missing > 0 {
		external = a.bestEffort(ctx, func(ctx context.Context) []models.Article {
			return a.external.FetchGeneral(ctx, "", missing)
		})
	}

	return truncate(a.merge(recent, external), limit), nil
}

// GetBreaking returns external headlines from the last day, newest first.
// It never fails; a provider outage yields an empty slice.
func (a *Aggregator) GetBreaking(ctx context.Context, limit int) []models.Article {
	breaking := a.bestEffort(ctx, func(ctx context.Context) []models.Article {
		return a.external.FetchBreaking(ctx, limit)
	})
	return a.merge(nil, breaking)
}

// SearchArticles runs keyword through both providers. A zip code that
// resolves to an active area narrows only the CMS query; one that does not
// resolve is ignored.
func (a *Aggregator) SearchArticles(ctx context.Context, keyword, zipCode string) ([]models.Article, error) {
	var areaID string
	if zipCode != "" {
		area, err := a.areas.Resolve(ctx, zipCode)
		if err != nil {
			return nil, err
		}
		if area != nil {
			areaID = area.ID
		}
	}

	local, external := a.fanOut(ctx,
		func(ctx context.Context) ([]models.Article, error) {
			return a.cms.Search(ctx, keyword, areaID)
		},
		func(ctx context.Context) []models.Article {
			return a.external.SearchByKeyword(ctx, keyword, externalSearchSize, externalSearchDays)
		},
	)
	if local.err != nil {
		return nil, local.err
	}

	return truncate(a.merge(local.articles, external.articles), MaxSearchResults), nil
}

// fanOut runs both branches concurrently and waits for both to settle.
func (a *Aggregator) fanOut(
	ctx context.Context,
	cmsFetch func(context.Context) ([]models.Article, error),
	externalFetch func(context.Context) []models.Article,
) (outcome, outcome) {
	var (
		wg       sync.WaitGroup
		local    outcome
		external outcome
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		local.articles, local.err = cmsFetch(ctx)
	}()
	go func() {
		defer wg.Done()
		external.articles = a.bestEffort(ctx, externalFetch)
	}()
	wg.Wait()

	return local, external
}

// bestEffort runs fetch and turns a panic into zero results.
func (a *Aggregator) bestEffort(ctx context.Context, fetch func(context.Context) []models.Article) (articles []models.Article) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("External source failed", logging.WithField("error", fmt.Sprint(r)))
			articles = nil
		}
	}()
	return fetch(ctx)
}

// merge concatenates CMS articles ahead of external ones, drops duplicates
// and sorts the result newest first.
func (a *Aggregator) merge(local, external []models.Article) []models.Article {
	all := make([]models.Article, 0, len(local)+len(external))
	all = append(all, local...)
	all = append(all, external...)

	result := models.Deduplicate(all)
	sortByDate(result, a.now())
	return result
}

// sortByDate orders articles by effective date, newest first. Undated
// articles count as now.
func sortByDate(articles []models.Article, now time.Time) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].EffectiveDate(now).After(articles[j].EffectiveDate(now))
	})
}

func truncate(articles []models.Article, limit int) []models.Article {
	if len(articles) > limit {
		return articles[:limit]
	}
	return articles
}

package sources

import (
	"strings"
	"time"

	"github.com/localpress/localpress/internal/models"
	"github.com/localpress/localpress/internal/tagging"
)

const untitled = "Untitled"

// pubDateLayouts are tried in order when reading a provider timestamp.
var pubDateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	models.DateLayout,
}

// Normalize maps a provider record onto the common article schema. It never
// fails: missing fields degrade to defaults. When source is nil and the
// record names its publisher, an attribution is synthesized from it.
//
// The returned article has no ID or CreatedAt; the gateway assigns both.
func Normalize(rec Record, areas []models.CoverageArea, source *models.NewsSource) models.Article {
	title := rec.Title
	if strings.TrimSpace(title) == "" {
		title = untitled
	}

	content := rec.Content
	if content == "" {
		content = rec.Description
	}

	article := models.Article{
		Slug:            rec.ArticleID,
		Title:           title,
		Headline:        title,
		Summary:         rec.Description,
		Content:         content,
		SourceURL:       rec.Link,
		PublicationDate: publicationDate(rec.PubDate),
		CoverageAreas:   make([]models.CoverageArea, len(areas)),
		NewsSource:      source,
		Category:        tagging.MapCategories(rec.Category),
		Origin:          models.OriginExternal,
	}
	copy(article.CoverageAreas, areas)

	if rec.ImageURL != "" {
		article.FeaturedImage = &models.Image{URL: rec.ImageURL, ImgixURL: rec.ImageURL}
	}

	if article.NewsSource == nil && rec.SourceName != "" {
		article.NewsSource = &models.NewsSource{
			ID:         rec.SourceID,
			Name:       rec.SourceName,
			WebsiteURL: rec.SourceURL,
			Type:       "external",
		}
		if rec.SourceIcon != "" {
			article.NewsSource.Logo = &models.Image{URL: rec.SourceIcon, ImgixURL: rec.SourceIcon}
		}
	}

	return article
}

// publicationDate reduces a provider timestamp to a UTC calendar date, or
// "" when it cannot be read.
func publicationDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(models.DateLayout)
		}
	}
	return ""
}

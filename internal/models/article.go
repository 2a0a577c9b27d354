package models

import (
	"time"
)

// DateLayout is the ISO calendar date format used for publication dates.
const DateLayout = "2006-01-02"

// Origin records which provider produced an Article.
type Origin string

const (
	OriginCMS      Origin = "cms"
	OriginExternal Origin = "external"
)

// Image holds a raw image URL plus a display-optimizable URL.
type Image struct {
	URL      string `json:"url"`
	ImgixURL string `json:"imgixUrl"`
}

// Article is the common article schema shared by CMS and external records.
type Article struct {
	ID              string         `json:"id"`
	Slug            string         `json:"slug"`
	Title           string         `json:"title"`
	Headline        string         `json:"headline,omitempty"`
	Summary         string         `json:"summary,omitempty"`
	Content         string         `json:"content,omitempty"`
	SourceURL       string         `json:"sourceUrl,omitempty"`
	PublicationDate string         `json:"publicationDate,omitempty"`
	CoverageAreas   []CoverageArea `json:"coverageAreas"`
	NewsSource      *NewsSource    `json:"newsSource,omitempty"`
	FeaturedImage   *Image         `json:"featuredImage,omitempty"`
	Category        CategoryRef    `json:"category"`
	Origin          Origin         `json:"origin"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// DisplayTitle returns the headline, falling back to the title.
func (a Article) DisplayTitle() string {
	if a.Headline != "" {
		return a.Headline
	}
	return a.Title
}

// PublishedOn parses PublicationDate. ok is false when the date is absent
// or not a calendar date.
func (a Article) PublishedOn() (t time.Time, ok bool) {
	if a.PublicationDate == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, a.PublicationDate); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, a.PublicationDate); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// EffectiveDate is the timestamp articles are ordered by. A missing
// publication date falls back to CreatedAt, and to now when that is unset
// too, so undated articles sort as the newest.
func (a Article) EffectiveDate(now time.Time) time.Time {
	if t, ok := a.PublishedOn(); ok {
		return t
	}
	if !a.CreatedAt.IsZero() {
		return a.CreatedAt
	}
	return now
}

// HasArea reports whether the article is associated with the area id.
func (a Article) HasArea(areaID string) bool {
	for _, area := range a.CoverageAreas {
		if area.ID == areaID {
			return true
		}
	}
	return false
}

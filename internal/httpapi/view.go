package httpapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/localpress/localpress/internal/models"
)

const (
	displayDateLayout  = "January 2, 2006"
	metaDescriptionLen = 160
	cardImageWidth     = 800
	cardImageHeight    = 450
)

// ArticleView is an Article plus the fields the rendering layer shows.
type ArticleView struct {
	models.Article
	DisplayTitle    string `json:"displayTitle"`
	DisplayDate     string `json:"displayDate,omitempty"`
	RelativeTime    string `json:"relativeTime,omitempty"`
	ReadingTime     int    `json:"readingTime"`
	MetaDescription string `json:"metaDescription"`
	ImageURL        string `json:"imageUrl,omitempty"`
	CategoryStyle   string `json:"categoryStyle"`
}

func newArticleView(a models.Article, now time.Time) ArticleView {
	v := ArticleView{
		Article:      a,
		DisplayTitle: a.DisplayTitle(),
	}
	if a.CoverageAreas == nil {
		v.CoverageAreas = []models.CoverageArea{}
	}

	if published, ok := a.PublishedOn(); ok {
		v.DisplayDate = published.Format(displayDateLayout)
		v.RelativeTime = humanize.RelTime(published, now, "ago", "from now")
	}

	body := a.Content
	if body == "" {
		body = a.Summary
	}
	v.ReadingTime = models.ReadingTime(body)

	description := a.Summary
	if description == "" {
		description = a.Content
	}
	v.MetaDescription = models.MetaDescription(description, metaDescriptionLen)

	if a.FeaturedImage != nil {
		v.ImageURL = OptimizedImageURL(a.FeaturedImage.ImgixURL, cardImageWidth, cardImageHeight)
	}

	if c, ok := models.LookupCategory(a.Category.Key); ok {
		v.CategoryStyle = c.Style
	} else {
		c, _ := models.LookupCategory(models.DefaultCategory)
		v.CategoryStyle = c.Style
	}

	return v
}

func newArticleViews(articles []models.Article, now time.Time) []ArticleView {
	views := make([]ArticleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, newArticleView(a, now))
	}
	return views
}

// OptimizedImageURL appends resize and format parameters to an image CDN
// URL. An empty URL stays empty.
func OptimizedImageURL(raw string, width, height int) string {
	if raw == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + "w=" + strconv.Itoa(width) + "&h=" + strconv.Itoa(height) + "&auto=format,compress"
}

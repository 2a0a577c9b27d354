package sources

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/localpress/localpress/internal/models"
	"github.com/localpress/localpress/internal/ratelimit"
)

const DefaultRSSSearchURL = "https://news.google.com/rss/search?q={query}+when:{days}d&hl=en-US&gl=US&ceid=US:en"

// RSSProvider answers searches from an RSS search endpoint. The URL
// template carries {query} and {days} placeholders.
type RSSProvider struct {
	template string
	parser   *gofeed.Parser
	limiter  ratelimit.RateLimiter
	config   FetcherConfig
}

func NewRSSProvider(template string, limiter ratelimit.RateLimiter, cfg FetcherConfig) *RSSProvider {
	if template == "" {
		template = DefaultRSSSearchURL
	}
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.UserAgent
	return &RSSProvider{
		template: template,
		parser:   parser,
		limiter:  limiter,
		config:   cfg,
	}
}

func (p *RSSProvider) Name() string {
	return "rss"
}

// Search fetches the feed for q. Categories are not supported by RSS search
// endpoints and are ignored.
func (p *RSSProvider) Search(ctx context.Context, q Query) ([]Record, error) {
	feedURL := p.searchURL(q)

	if p.limiter != nil {
		host := feedURL
		if u, err := url.Parse(feedURL); err == nil {
			host = u.Host
		}
		if err := p.limiter.Wait(ctx, host); err != nil {
			return nil, err
		}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	feed, err := p.parser.ParseURLWithContext(feedURL, ctxWithTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed %s: %w", feedURL, err)
	}

	size := clampSize(q.Size, p.config.MaxItems)
	records := make([]Record, 0, len(feed.Items))
	for i, item := range feed.Items {
		if i >= size {
			break
		}
		records = append(records, recordFromItem(item))
	}

	return records, nil
}

func (p *RSSProvider) searchURL(q Query) string {
	days := q.Timeframe
	if days <= 0 {
		days = 7
	}
	return strings.NewReplacer(
		"{query}", url.QueryEscape(q.Q),
		"{days}", strconv.Itoa(days),
	).Replace(p.template)
}

func recordFromItem(item *gofeed.Item) Record {
	rec := Record{
		ArticleID:   generateID("rss", item.Link),
		Title:       item.Title,
		Link:        item.Link,
		Description: models.PlainText(item.Description),
		Content:     item.Content,
		Category:    item.Categories,
	}

	if item.PublishedParsed != nil {
		rec.PubDate = item.PublishedParsed.UTC().Format(time.RFC3339)
	}

	if item.Image != nil {
		rec.ImageURL = item.Image.URL
	} else {
		for _, enc := range item.Enclosures {
			if strings.HasPrefix(enc.Type, "image/") {
				rec.ImageURL = enc.URL
				break
			}
		}
	}

	if len(item.Authors) > 0 && item.Authors[0] != nil {
		rec.SourceName = item.Authors[0].Name
	}

	return rec
}

func generateID(source, link string) string {
	hash := sha256.Sum256([]byte(source + link))
	return fmt.Sprintf("%x", hash[:8])
}

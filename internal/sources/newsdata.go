package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/localpress/localpress/internal/config"
	"github.com/localpress/localpress/internal/ratelimit"
)

const DefaultNewsDataURL = "https://newsdata.io/api/1/news"

// NewsDataClient searches the NewsData.io latest-news endpoint.
type NewsDataClient struct {
	apiKey  string
	baseURL string
	limiter ratelimit.RateLimiter
	config  FetcherConfig
	client  *http.Client
}

type newsDataResponse struct {
	Status       string   `json:"status"`
	TotalResults int      `json:"totalResults"`
	Results      []Record `json:"results"`
	NextPage     string   `json:"nextPage,omitempty"`
}

// NewNewsDataClient fails with config.ErrMissingAPIKey when apiKey is blank.
func NewNewsDataClient(apiKey, baseURL string, limiter ratelimit.RateLimiter, cfg FetcherConfig) (*NewsDataClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, config.ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultNewsDataURL
	}
	return &NewsDataClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		limiter: limiter,
		config:  cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

func (c *NewsDataClient) Name() string {
	return "newsdata"
}

// Search runs one provider query. Any non-2xx status is an error.
func (c *NewsDataClient) Search(ctx context.Context, q Query) ([]Record, error) {
	endpoint, err := c.searchURL(q)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint.Host); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from newsdata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("newsdata returned status %d", resp.StatusCode)
	}

	var data newsDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode newsdata response: %w", err)
	}
	if data.Status == "error" {
		return nil, fmt.Errorf("newsdata reported an error status")
	}

	return data.Results, nil
}

func (c *NewsDataClient) searchURL(q Query) (*url.URL, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid newsdata url: %w", err)
	}

	params := endpoint.Query()
	params.Set("apikey", c.apiKey)
	params.Set("language", "en")
	if q.Q != "" {
		params.Set("q", q.Q)
	}
	if len(q.Categories) > 0 {
		params.Set("category", strings.Join(q.Categories, ","))
	}
	country := q.Country
	if country == "" {
		country = "us"
	}
	params.Set("country", country)
	if q.Timeframe > 0 {
		params.Set("timeframe", strconv.Itoa(q.Timeframe))
	}
	params.Set("size", strconv.Itoa(clampSize(q.Size, c.config.MaxItems)))

	endpoint.RawQuery = params.Encode()
	return endpoint, nil
}

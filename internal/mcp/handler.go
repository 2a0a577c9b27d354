package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/localpress/localpress/internal/logging"
	"github.com/localpress/localpress/internal/models"
)

const (
	defaultHeadlineLimit = 10
	maxHeadlineLimit     = 50
)

// NewsService is the aggregation core the tools call.
type NewsService interface {
	GetArticlesForZip(ctx context.Context, zipCode string) ([]models.Article, error)
	GetAllArticles(ctx context.Context, limit int) ([]models.Article, error)
	SearchArticles(ctx context.Context, keyword, zipCode string) ([]models.Article, error)
	ResolveArea(ctx context.Context, zipCode string) (*models.CoverageArea, error)
}

type Handler struct {
	news   NewsService
	logger *logging.Logger
}

func NewHandler(news NewsService, logger *logging.Logger) *Handler {
	return &Handler{
		news:   news,
		logger: logger,
	}
}

type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

type zipParams struct {
	ZipCode string `json:"zip_code"`
}

type searchParams struct {
	Keyword string `json:"keyword"`
	ZipCode string `json:"zip_code"`
}

type headlinesParams struct {
	Limit int `json:"limit"`
}

// headline is the compact article form returned to tool callers.
type headline struct {
	ID              string `json:"id"`
	Headline        string `json:"headline"`
	Summary         string `json:"summary,omitempty"`
	PublicationDate string `json:"publicationDate,omitempty"`
	Category        string `json:"category"`
	Source          string `json:"source,omitempty"`
	URL             string `json:"url,omitempty"`
	Origin          string `json:"origin"`
}

func (h *Handler) GetTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "get_local_news",
			Description: "Get local news for a US zip code, merged from the newsroom CMS and external news sources, newest first.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"zip_code": {
						"type": "string",
						"description": "5-digit or ZIP+4 US zip code"
					}
				},
				"required": ["zip_code"]
			}`),
		},
		{
			Name:        "search_local_news",
			Description: "Search local and external news by keyword, optionally narrowing newsroom articles to a zip code.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"keyword": {
						"type": "string",
						"description": "Search keyword"
					},
					"zip_code": {
						"type": "string",
						"description": "Optional zip code to narrow newsroom results"
					}
				},
				"required": ["keyword"]
			}`),
		},
		{
			Name:        "get_recent_headlines",
			Description: "Get the most recent headlines across all coverage areas.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"limit": {
						"type": "integer",
						"description": "Maximum number of headlines to return (default: 10)"
					}
				}
			}`),
		},
		{
			Name:        "resolve_coverage_area",
			Description: "Check whether a zip code is covered and return its coverage area.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"zip_code": {
						"type": "string",
						"description": "5-digit or ZIP+4 US zip code"
					}
				},
				"required": ["zip_code"]
			}`),
		},
	}
}

func (h *Handler) HandleToolCall(ctx context.Context, name string, arguments json.RawMessage) (interface{}, error) {
	switch name {
	case "get_local_news":
		return h.handleLocalNews(ctx, arguments)
	case "search_local_news":
		return h.handleSearch(ctx, arguments)
	case "get_recent_headlines":
		return h.handleHeadlines(ctx, arguments)
	case "resolve_coverage_area":
		return h.handleResolveArea(ctx, arguments)
	default:
		return nil, &ToolError{Message: "Unknown tool: " + name}
	}
}

func (h *Handler) handleLocalNews(ctx context.Context, arguments json.RawMessage) (interface{}, error) {
	var params zipParams
	if err := unmarshalArgs(arguments, &params); err != nil {
		return nil, err
	}
	zip, err := validZip(params.ZipCode)
	if err != nil {
		return nil, err
	}

	articles, err := h.news.GetArticlesForZip(ctx, zip)
	if err != nil {
		return nil, h.internalError("get_local_news", err)
	}

	return map[string]interface{}{
		"zip_code": zip,
		"articles": headlines(articles),
		"count":    len(articles),
	}, nil
}

func (h *Handler) handleSearch(ctx context.Context, arguments json.RawMessage) (interface{}, error) {
	var params searchParams
	if err := unmarshalArgs(arguments, &params); err != nil {
		return nil, err
	}
	keyword := strings.TrimSpace(params.Keyword)
	if keyword == "" {
		return nil, &ToolError{Message: "keyword is required"}
	}
	var zip string
	if strings.TrimSpace(params.ZipCode) != "" {
		var err error
		if zip, err = validZip(params.ZipCode); err != nil {
			return nil, err
		}
	}

	articles, err := h.news.SearchArticles(ctx, keyword, zip)
	if err != nil {
		return nil, h.internalError("search_local_news", err)
	}

	return map[string]interface{}{
		"keyword":  keyword,
		"articles": headlines(articles),
		"count":    len(articles),
	}, nil
}

func (h *Handler) handleHeadlines(ctx context.Context, arguments json.RawMessage) (interface{}, error) {
	var params headlinesParams
	if err := unmarshalArgs(arguments, &params); err != nil {
		return nil, err
	}
	if params.Limit <= 0 {
		params.Limit = defaultHeadlineLimit
	}
	if params.Limit > maxHeadlineLimit {
		params.Limit = maxHeadlineLimit
	}

	articles, err := h.news.GetAllArticles(ctx, params.Limit)
	if err != nil {
		return nil, h.internalError("get_recent_headlines", err)
	}

	return map[string]interface{}{
		"articles": headlines(articles),
		"count":    len(articles),
	}, nil
}

func (h *Handler) handleResolveArea(ctx context.Context, arguments json.RawMessage) (interface{}, error) {
	var params zipParams
	if err := unmarshalArgs(arguments, &params); err != nil {
		return nil, err
	}
	zip, err := validZip(params.ZipCode)
	if err != nil {
		return nil, err
	}

	area, err := h.news.ResolveArea(ctx, zip)
	if err != nil {
		return nil, h.internalError("resolve_coverage_area", err)
	}

	return map[string]interface{}{
		"zip_code": zip,
		"covered":  area != nil,
		"area":     area,
	}, nil
}

// internalError logs err and hides its detail from the caller.
func (h *Handler) internalError(tool string, err error) error {
	h.logger.Error("Tool call failed", logging.WithFields(map[string]interface{}{
		"tool":  tool,
		"error": err.Error(),
	}))
	return &ToolError{Message: "Something went wrong, please try again."}
}

func unmarshalArgs(arguments json.RawMessage, dst interface{}) error {
	if len(arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(arguments, dst); err != nil {
		return &ToolError{Message: "Invalid arguments: " + err.Error()}
	}
	return nil
}

// validZip checks zip and returns it trimmed.
func validZip(zip string) (string, error) {
	zip = strings.TrimSpace(zip)
	if !models.IsValidZipCode(zip) {
		return "", &ToolError{Message: "zip_code must be a 5-digit or ZIP+4 US zip code"}
	}
	return zip, nil
}

func headlines(articles []models.Article) []headline {
	out := make([]headline, 0, len(articles))
	for _, a := range articles {
		hl := headline{
			ID:              a.ID,
			Headline:        a.DisplayTitle(),
			Summary:         models.Truncate(models.PlainText(a.Summary), 200),
			PublicationDate: a.PublicationDate,
			Category:        a.Category.Value,
			URL:             a.SourceURL,
			Origin:          string(a.Origin),
		}
		if a.NewsSource != nil {
			hl.Source = a.NewsSource.Name
		}
		out = append(out, hl)
	}
	return out
}

type ToolError struct {
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}

package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/localpress/localpress/internal/models"
)

const (
	defaultRecentLimit   = 20
	maxRecentLimit       = 100
	defaultBreakingLimit = 10
	maxBreakingLimit     = 50
)

// handleNewsForZip handles GET /api/news/{zipCode}
func (s *Server) handleNewsForZip(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zipCode")
	if !models.IsValidZipCode(zip) {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "invalid_zip",
			"field":   "zipCode",
			"message": "Please enter a valid 5-digit zip code",
		})
		return
	}

	var category models.CategoryKey
	if c := r.URL.Query().Get("category"); c != "" {
		category = models.CategoryKey(strings.ToLower(c))
		if !category.IsValid() {
			s.writeError(w, http.StatusBadRequest, "invalid_category", "Unknown category "+c)
			return
		}
	}

	zip = strings.TrimSpace(zip)
	area, err := s.news.ResolveArea(r.Context(), zip)
	if err != nil {
		s.writeInternalError(w, r, "Failed to resolve coverage area", err)
		return
	}

	articles := []models.Article{}
	if area != nil {
		articles, err = s.news.GetArticlesForArea(r.Context(), *area)
		if err != nil {
			s.writeInternalError(w, r, "Failed to aggregate news", err)
			return
		}
	}

	if category != "" {
		filtered := make([]models.Article, 0, len(articles))
		for _, a := range articles {
			if a.Category.Key == category {
				filtered = append(filtered, a)
			}
		}
		articles = filtered
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"zipCode":  zip,
		"area":     area,
		"covered":  area != nil,
		"articles": newArticleViews(articles, s.now()),
		"count":    len(articles),
	})
}

// handleRecentArticles handles GET /api/articles
func (s *Server) handleRecentArticles(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, defaultRecentLimit, maxRecentLimit)

	articles, err := s.news.GetAllArticles(r.Context(), limit)
	if err != nil {
		s.writeInternalError(w, r, "Failed to fetch recent articles", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"articles": newArticleViews(articles, s.now()),
		"count":    len(articles),
	})
}

// handleBreaking handles GET /api/breaking
func (s *Server) handleBreaking(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, defaultBreakingLimit, maxBreakingLimit)
	articles := s.news.GetBreaking(r.Context(), limit)

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"articles": newArticleViews(articles, s.now()),
		"count":    len(articles),
	})
}

// handleArticle handles GET /api/articles/{slug}
func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	article, err := s.articles.GetBySlug(r.Context(), slug)
	if err != nil {
		s.writeInternalError(w, r, "Failed to fetch article", err)
		return
	}
	if article == nil {
		s.writeError(w, http.StatusNotFound, "not_found", "Article not found")
		return
	}

	s.writeJSON(w, http.StatusOK, newArticleView(*article, s.now()))
}

// handleSearch handles GET /api/search?q=&zip=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "invalid_input", "Search query is required")
		return
	}

	zip := strings.TrimSpace(r.URL.Query().Get("zip"))
	if zip != "" {
		if !models.IsValidZipCode(zip) {
			s.writeError(w, http.StatusBadRequest, "invalid_zip", "Please enter a valid 5-digit zip code")
			return
		}
	}

	articles, err := s.news.SearchArticles(r.Context(), query, zip)
	if err != nil {
		s.writeInternalError(w, r, "Failed to search articles", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":    query,
		"zipCode":  zip,
		"articles": newArticleViews(articles, s.now()),
		"count":    len(articles),
	})
}

// handleListAreas handles GET /api/areas
func (s *Server) handleListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.areas.ListActive(r.Context())
	if err != nil {
		s.writeInternalError(w, r, "Failed to list coverage areas", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"areas": areas,
		"count": len(areas),
	})
}

// handleGetArea handles GET /api/areas/{zipCode}
func (s *Server) handleGetArea(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zipCode")
	if !models.IsValidZipCode(zip) {
		s.writeError(w, http.StatusBadRequest, "invalid_zip", "Please enter a valid 5-digit zip code")
		return
	}

	area, err := s.news.ResolveArea(r.Context(), zip)
	if err != nil {
		s.writeInternalError(w, r, "Failed to resolve coverage area", err)
		return
	}
	if area == nil {
		s.writeError(w, http.StatusNotFound, "not_covered", "We don't cover this zip code yet")
		return
	}

	s.writeJSON(w, http.StatusOK, area)
}

// handleCategories handles GET /api/categories
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories := models.Categories()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// handleSources handles GET /api/sources
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.articles.ListSources(r.Context())
	if err != nil {
		s.writeInternalError(w, r, "Failed to list news sources", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sources": sources,
		"count":   len(sources),
	})
}

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/localpress/localpress/internal/logging"
	"github.com/localpress/localpress/internal/models"
	"github.com/localpress/localpress/internal/ratelimit"
)

const (
	maxBodyBytes    = 64 << 10
	genericErrorMsg = "Something went wrong, please try again."
)

// NewsService is the aggregation core the news routes read from.
type NewsService interface {
	GetArticlesForArea(ctx context.Context, area models.CoverageArea) ([]models.Article, error)
	GetAllArticles(ctx context.Context, limit int) ([]models.Article, error)
	GetBreaking(ctx context.Context, limit int) []models.Article
	SearchArticles(ctx context.Context, keyword, zipCode string) ([]models.Article, error)
	ResolveArea(ctx context.Context, zipCode string) (*models.CoverageArea, error)
}

type ArticleReader interface {
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	ListSources(ctx context.Context) ([]models.NewsSource, error)
}

type AreaLister interface {
	ListActive(ctx context.Context) ([]models.CoverageArea, error)
}

type TipService interface {
	Create(ctx context.Context, req models.TipRequest) (*models.Tip, error)
	ListPublic(ctx context.Context) ([]models.Tip, error)
}

type Server struct {
	news       NewsService
	articles   ArticleReader
	areas      AreaLister
	tips       TipService
	tipLimiter ratelimit.RateLimiter
	logger     *logging.Logger
	now        func() time.Time
	server     *http.Server
}

func New(news NewsService, articles ArticleReader, areas AreaLister, tips TipService, tipLimiter ratelimit.RateLimiter, logger *logging.Logger) *Server {
	return &Server{
		news:       news,
		articles:   articles,
		areas:      areas,
		tips:       tips,
		tipLimiter: tipLimiter,
		logger:     logger,
		now:        time.Now,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/news/{zipCode}", s.handleNewsForZip)
		r.Get("/articles", s.handleRecentArticles)
		r.Get("/articles/{slug}", s.handleArticle)
		r.Get("/breaking", s.handleBreaking)
		r.Get("/search", s.handleSearch)
		r.Get("/areas", s.handleListAreas)
		r.Get("/areas/{zipCode}", s.handleGetArea)
		r.Get("/categories", s.handleCategories)
		r.Get("/sources", s.handleSources)

		r.Get("/tips", s.handleListTips)
		r.Post("/tips", s.handleCreateTip)
		r.Post("/newsletter", s.handleNewsletter)
		r.Post("/contact", s.handleContact)
	})

	return r
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.logger.Info("HTTP API server starting", logging.WithField("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Debug("HTTP request", logging.WithFields(map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// writeInternalError logs err and answers with the generic message.
func (s *Server) writeInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg, logging.WithFields(map[string]interface{}{
		"error":      err.Error(),
		"path":       r.URL.Path,
		"request_id": middleware.GetReqID(r.Context()),
	}))
	s.writeError(w, http.StatusInternalServerError, "internal_error", genericErrorMsg)
}

func (s *Server) writeValidationError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "invalid_input",
			"field":   verr.Field,
			"message": verr.Message,
		})
		return
	}
	s.writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return false
	}
	return true
}

func parseLimit(r *http.Request, defaultLimit, maxLimit int) int {
	limit := defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// clientIP is the remote host without port. RealIP has already applied
// any forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/localpress/localpress/internal/aggregator"
	"github.com/localpress/localpress/internal/articles"
	"github.com/localpress/localpress/internal/coverage"
	"github.com/localpress/localpress/internal/models"
	"github.com/localpress/localpress/internal/ratelimit"
	"github.com/localpress/localpress/internal/testutil"
	"github.com/localpress/localpress/internal/tips"
)

type noExternal struct{}

func (noExternal) FetchByArea(ctx context.Context, area models.CoverageArea, limit int) []models.Article {
	return nil
}

func (noExternal) SearchByKeyword(ctx context.Context, keyword string, limit, days int) []models.Article {
	return nil
}

func (noExternal) FetchGeneral(ctx context.Context, search string, limit int) []models.Article {
	return nil
}

func (noExternal) FetchBreaking(ctx context.Context, limit int) []models.Article {
	return nil
}

type brokenNews struct{ NewsService }

func (brokenNews) ResolveArea(ctx context.Context, zipCode string) (*models.CoverageArea, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := testutil.NewFixtureStore(t)
	logger := testutil.NullLogger()
	resolver := coverage.NewResolver(store)
	gateway := articles.NewGateway(store)

	s := New(
		aggregator.New(resolver, gateway, noExternal{}, logger),
		gateway,
		resolver,
		tips.NewService(store, logger),
		ratelimit.New(time.Minute),
		logger,
	)
	s.now = func() time.Time { return time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC) }
	return s
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

func TestWriteJSON(t *testing.T) {
	s := &Server{logger: testutil.NullLogger()}

	tests := []struct {
		name       string
		status     int
		data       interface{}
		wantStatus int
	}{
		{
			name:       "success response",
			status:     http.StatusOK,
			data:       map[string]string{"message": "hello"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "created response",
			status:     http.StatusCreated,
			data:       models.Tip{ID: "123", Title: "Anonymous Tip"},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.writeJSON(w, tt.status, tt.data)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %s, want application/json", ct)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	s := &Server{logger: testutil.NullLogger()}

	tests := []struct {
		name    string
		status  int
		code    string
		message string
	}{
		{name: "bad request", status: http.StatusBadRequest, code: "invalid_input", message: "name is required"},
		{name: "not found", status: http.StatusNotFound, code: "not_found", message: "resource not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.writeError(w, tt.status, tt.code, tt.message)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			response := decode(t, w)
			if response["code"] != tt.code {
				t.Errorf("code = %v, want %s", response["code"], tt.code)
			}
			if response["message"] != tt.message {
				t.Errorf("message = %v, want %s", response["message"], tt.message)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	s := &Server{logger: testutil.NullLogger()}

	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("OPTIONS request", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/test", nil))

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if w.Header().Get("Access-Control-Allow-Origin") == "" {
			t.Error("Missing Access-Control-Allow-Origin header")
		}
	})

	t.Run("GET request", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/test", nil))

		if w.Code != http.StatusTeapot {
			t.Errorf("status = %d, want %d", w.Code, http.StatusTeapot)
		}
	})
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "default", query: "", want: 20},
		{name: "custom", query: "limit=50", want: 50},
		{name: "exceeds max", query: "limit=200", want: 100},
		{name: "not a number", query: "limit=abc", want: 20},
		{name: "negative", query: "limit=-5", want: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/articles?"+tt.query, nil)
			if got := parseLimit(req, 20, 100); got != tt.want {
				t.Errorf("parseLimit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if decode(t, w)["status"] != "healthy" {
		t.Error("health status should be healthy")
	}
}

func TestNewsForZip(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name        string
		target      string
		wantStatus  int
		wantCount   float64
		wantCovered bool
	}{
		{name: "covered zip", target: "/api/news/90210", wantStatus: 200, wantCount: 3, wantCovered: true},
		{name: "zip plus four", target: "/api/news/90210-1234", wantStatus: 200, wantCount: 3, wantCovered: true},
		{name: "uncovered zip", target: "/api/news/00000", wantStatus: 200, wantCount: 0},
		{name: "inactive zip", target: "/api/news/10001", wantStatus: 200, wantCount: 0},
		{name: "category filter", target: "/api/news/90210?category=Business", wantStatus: 200, wantCount: 1, wantCovered: true},
		{name: "unknown category", target: "/api/news/90210?category=gossip", wantStatus: 400},
		{name: "invalid zip", target: "/api/news/9021a", wantStatus: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodGet, tt.target, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			body := decode(t, w)
			if body["count"] != tt.wantCount {
				t.Errorf("count = %v, want %v", body["count"], tt.wantCount)
			}
			if body["covered"] != tt.wantCovered {
				t.Errorf("covered = %v, want %v", body["covered"], tt.wantCovered)
			}
			if _, ok := body["articles"].([]interface{}); !ok {
				t.Errorf("articles = %v, want JSON array", body["articles"])
			}
		})
	}
}

type countingResolver struct {
	next  aggregator.AreaResolver
	calls int
}

func (c *countingResolver) Resolve(ctx context.Context, zipCode string) (*models.CoverageArea, error) {
	c.calls++
	return c.next.Resolve(ctx, zipCode)
}

func TestNewsForZip_ResolvesAreaOnce(t *testing.T) {
	store := testutil.NewFixtureStore(t)
	logger := testutil.NullLogger()
	resolver := &countingResolver{next: coverage.NewResolver(store)}
	gateway := articles.NewGateway(store)
	s := New(aggregator.New(resolver, gateway, noExternal{}, logger), gateway, coverage.NewResolver(store),
		tips.NewService(store, logger), ratelimit.New(time.Minute), logger)

	w := do(t, s, http.MethodGet, "/api/news/90210-1234", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decode(t, w)["count"]; got != float64(3) {
		t.Errorf("count = %v, want 3", got)
	}
	if resolver.calls != 1 {
		t.Errorf("area resolved %d times per request, want 1", resolver.calls)
	}
}

func TestNewsForZip_ArticleView(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/api/news/90210", "")
	body := decode(t, w)

	first := body["articles"].([]interface{})[0].(map[string]interface{})
	if first["id"] != "art-1" {
		t.Fatalf("first article = %v, want art-1", first["id"])
	}
	checks := map[string]interface{}{
		"displayTitle":  "Council approves park budget",
		"displayDate":   "May 3, 2024",
		"relativeTime":  "3 days ago",
		"categoryStyle": "news-politics",
		"readingTime":   float64(1),
	}
	for field, want := range checks {
		if first[field] != want {
			t.Errorf("%s = %v, want %v", field, first[field], want)
		}
	}
}

func TestNewsForZip_InternalError(t *testing.T) {
	s := newTestServer(t)
	s.news = brokenNews{s.news}

	w := do(t, s, http.MethodGet, "/api/news/90210", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	body := decode(t, w)
	if body["code"] != "internal_error" || body["message"] != genericErrorMsg {
		t.Errorf("body = %v", body)
	}
	if strings.Contains(w.Body.String(), "refused") {
		t.Error("error detail leaked to client")
	}
}

func TestRecentArticles(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/api/articles?limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decode(t, w)["count"]; got != float64(2) {
		t.Errorf("count = %v, want 2", got)
	}
}

type breakingExternal struct {
	noExternal
	articles []models.Article
}

func (b breakingExternal) FetchBreaking(ctx context.Context, limit int) []models.Article {
	return b.articles
}

func TestBreakingArticles(t *testing.T) {
	store := testutil.NewFixtureStore(t)
	logger := testutil.NullLogger()
	resolver := coverage.NewResolver(store)
	gateway := articles.NewGateway(store)
	ext := breakingExternal{articles: []models.Article{
		{ID: "ext-newsdata-0", Headline: "Water main break on Canon Drive", PublicationDate: "2024-05-05"},
	}}
	s := New(aggregator.New(resolver, gateway, ext, logger), gateway, resolver,
		tips.NewService(store, logger), ratelimit.New(time.Minute), logger)

	w := do(t, s, http.MethodGet, "/api/breaking?limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decode(t, w)["count"]; got != float64(1) {
		t.Errorf("count = %v, want 1", got)
	}

	w = do(t, newTestServer(t), http.MethodGet, "/api/breaking", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when the provider has nothing", w.Code)
	}
	if got := decode(t, w)["count"]; got != float64(0) {
		t.Errorf("count = %v, want 0", got)
	}
}

func TestArticleBySlug(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/articles/summer-festival-returns", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decode(t, w)["id"]; got != "art-2" {
		t.Errorf("id = %v, want art-2", got)
	}

	w = do(t, s, http.MethodGet, "/api/articles/missing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSearch(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCount  float64
	}{
		{name: "keyword", target: "/api/search?q=festival", wantStatus: 200, wantCount: 2},
		{name: "keyword in area", target: "/api/search?q=festival&zip=90210", wantStatus: 200, wantCount: 1},
		{name: "missing query", target: "/api/search?q=%20", wantStatus: 400},
		{name: "bad zip", target: "/api/search?q=festival&zip=abc", wantStatus: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodGet, tt.target, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if got := decode(t, w)["count"]; got != tt.wantCount {
					t.Errorf("count = %v, want %v", got, tt.wantCount)
				}
			}
		})
	}
}

func TestAreas(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/areas", "")
	if got := decode(t, w)["count"]; got != float64(1) {
		t.Errorf("areas count = %v, want 1", got)
	}

	w = do(t, s, http.MethodGet, "/api/areas/90210", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decode(t, w)["city"]; got != "Beverly Hills" {
		t.Errorf("city = %v, want Beverly Hills", got)
	}

	if w := do(t, s, http.MethodGet, "/api/areas/10001", ""); w.Code != http.StatusNotFound {
		t.Errorf("inactive area status = %d, want 404", w.Code)
	}
}

func TestCategoriesAndSources(t *testing.T) {
	s := newTestServer(t)

	if got := decode(t, do(t, s, http.MethodGet, "/api/categories", ""))["count"]; got != float64(6) {
		t.Errorf("categories count = %v, want 6", got)
	}
	if got := decode(t, do(t, s, http.MethodGet, "/api/sources", ""))["count"]; got != float64(1) {
		t.Errorf("sources count = %v, want 1", got)
	}
}

func TestCreateTip(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/tips", `{"amount": 0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid tip status = %d, want 400", w.Code)
	}
	if got := decode(t, w)["field"]; got != "amount" {
		t.Errorf("field = %v, want amount", got)
	}

	s.tipLimiter = ratelimit.New(time.Minute)
	w = do(t, s, http.MethodPost, "/api/tips", `{"amount": 10, "tipperName": "Sam", "showPublicly": true}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	w = do(t, s, http.MethodPost, "/api/tips", `{"amount": 10}`)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second tip status = %d, want 429", w.Code)
	}

	w = do(t, s, http.MethodGet, "/api/tips", "")
	if got := decode(t, w)["count"]; got != float64(1) {
		t.Errorf("public tips = %v, want 1", got)
	}
}

func TestCreateTip_BadJSON(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodPost, "/api/tips", `{"amount":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestNewsletter(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{name: "valid", body: `{"email":"reader@example.com"}`, wantStatus: 200},
		{name: "valid with zip", body: `{"email":"reader@example.com","zipCode":" 90210 "}`, wantStatus: 200},
		{name: "bad email", body: `{"email":"reader"}`, wantStatus: 400, wantField: "email"},
		{name: "bad zip", body: `{"email":"reader@example.com","zipCode":"123"}`, wantStatus: 400, wantField: "zipCode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/newsletter", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantField != "" {
				if got := decode(t, w)["field"]; got != tt.wantField {
					t.Errorf("field = %v, want %s", got, tt.wantField)
				}
			}
		})
	}
}

func TestContact(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "valid", body: `{"name":"Ana","email":"ana@example.com","message":"Hello"}`},
		{name: "missing name", body: `{"email":"ana@example.com","message":"Hello"}`, wantField: "name"},
		{name: "bad email", body: `{"name":"Ana","email":"ana","message":"Hello"}`, wantField: "email"},
		{name: "missing message", body: `{"name":"Ana","email":"ana@example.com"}`, wantField: "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/contact", tt.body)
			if tt.wantField == "" {
				if w.Code != http.StatusOK {
					t.Fatalf("status = %d, want 200", w.Code)
				}
				return
			}
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := decode(t, w)["field"]; got != tt.wantField {
				t.Errorf("field = %v, want %s", got, tt.wantField)
			}
		})
	}
}

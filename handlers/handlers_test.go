package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jobboard/backend/aggregator"
	"github.com/jobboard/backend/analytics"
	"github.com/jobboard/backend/auth"
	"github.com/jobboard/backend/config"
	"github.com/jobboard/backend/handlers"
	"github.com/jobboard/backend/jobs"
	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/social"
	"github.com/jobboard/backend/sources"
	"github.com/jobboard/backend/storage"
)

type stubSource struct{}

func (stubSource) Name() string { return "remotive" }

func (stubSource) Search(ctx context.Context, query string) ([]models.ExternalJob, error) {
	return []models.ExternalJob{{ID: "remotive-1", Title: "Go Engineer", Source: "remotive"}}, nil
}

type fixture struct {
	mem    *storage.MemoryBackend
	router *gin.Engine
	admin  string
	viewer string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiryHours: 1}
	jwtService := auth.NewJWTService(cfg)
	users := storage.NewMemoryUserStore()
	if err := auth.BootstrapAdmin(context.Background(), users, "admin@example.com", "hunter22"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	mem := storage.NewMemoryBackend()
	svc := jobs.NewService(mem, nil, nil)
	agg := aggregator.New(map[string]sources.Source{"remotive": stubSource{}}, nil, time.Minute)
	gen := social.NewGenerator("https://jobs.example")

	jobsHandler := handlers.NewJobsHandler(svc)
	adminHandler := handlers.NewAdminHandler(svc, nil, gen)
	externalHandler := handlers.NewExternalHandler(agg, svc)
	analyticsHandler := handlers.NewAnalyticsHandler(analytics.NewService(nil, nil))
	authHandler := handlers.NewAuthHandler(users, jwtService, auth.NewGoogleAuthService(cfg))

	r := gin.New()
	r.GET("/health", handlers.HealthCheck)
	api := r.Group("/api")
	api.GET("/jobs", jobsHandler.ListJobs)
	api.GET("/jobs/:slug", jobsHandler.GetJob)
	api.GET("/jobs/:slug/related", jobsHandler.RelatedJobs)
	api.POST("/jobs/:slug/click", jobsHandler.RecordClick)
	api.GET("/external-jobs", externalHandler.SearchExternal)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", auth.AuthMiddleware(jwtService), authHandler.GetProfile)
	api.POST("/ga4", auth.AuthMiddleware(jwtService), auth.AdminMiddleware(), analyticsHandler.Report)

	admin := api.Group("/admin", auth.AuthMiddleware(jwtService), auth.AdminMiddleware())
	admin.POST("/jobs", adminHandler.CreateJob)
	admin.PATCH("/jobs/:id/toggle/:field", adminHandler.ToggleJob)
	admin.GET("/jobs/:id/social", adminHandler.SocialPosts)
	admin.POST("/logos", adminHandler.UploadLogo)
	admin.POST("/external/search", externalHandler.AdminSearch)

	adminToken, err := jwtService.GenerateToken(&models.User{ID: "admin@example.com", Email: "admin@example.com", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	viewerToken, err := jwtService.GenerateToken(&models.User{ID: "v@example.com", Email: "v@example.com", Role: "viewer"})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return &fixture{mem: mem, router: r, admin: adminToken, viewer: viewerToken}
}

func (f *fixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func validInput() models.JobInput {
	return models.JobInput{
		Title:          "Go Engineer",
		Company:        "Acme",
		Location:       "Berlin, Germany",
		Type:           models.JobTypeFullTime,
		Category:       models.CategoryBackend,
		Experience:     models.ExperienceSenior,
		Description:    "<p>Build services</p>",
		ApplicationURL: "https://acme.example/apply",
		Tags:           []string{"Go"},
	}
}

func TestAdminJobLifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/admin/jobs", f.admin, validInput())
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}
	var created models.Job
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Slug != "go-engineer-at-acme" {
		t.Errorf("slug = %q", created.Slug)
	}

	if w := f.do(http.MethodPost, "/api/admin/jobs", f.admin, validInput()); w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d", w.Code)
	}

	bad := validInput()
	bad.Title = ""
	if w := f.do(http.MethodPost, "/api/admin/jobs", f.admin, bad); w.Code != http.StatusBadRequest {
		t.Errorf("invalid create = %d", w.Code)
	}

	if w := f.do(http.MethodGet, "/api/jobs/go-engineer-at-acme", "", nil); w.Code != http.StatusOK {
		t.Errorf("public get = %d", w.Code)
	}
	if w := f.do(http.MethodPost, "/api/jobs/go-engineer-at-acme/click", "", nil); w.Code != http.StatusAccepted {
		t.Errorf("click = %d %s", w.Code, w.Body.String())
	}

	if w := f.do(http.MethodPatch, "/api/admin/jobs/"+created.ID+"/toggle/active", f.admin, nil); w.Code != http.StatusOK {
		t.Errorf("toggle = %d", w.Code)
	}
	if w := f.do(http.MethodGet, "/api/jobs/go-engineer-at-acme", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("inactive job visible: %d", w.Code)
	}
	if w := f.do(http.MethodPatch, "/api/admin/jobs/"+created.ID+"/toggle/salary", f.admin, nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown toggle = %d", w.Code)
	}

	w = f.do(http.MethodGet, "/api/admin/jobs/"+created.ID+"/social?platform=linkedin", f.admin, nil)
	if w.Code != http.StatusOK {
		t.Errorf("social = %d %s", w.Code, w.Body.String())
	}
	if w := f.do(http.MethodGet, "/api/admin/jobs/"+created.ID+"/social?platform=myspace", f.admin, nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown platform = %d", w.Code)
	}
}

func TestAdminAccess(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"viewer", f.viewer, http.StatusForbidden},
	}
	for _, tt := range tests {
		if w := f.do(http.MethodPost, "/api/admin/jobs", tt.token, validInput()); w.Code != tt.want {
			t.Errorf("%s: status %d, want %d", tt.name, w.Code, tt.want)
		}
	}

	if w := f.do(http.MethodPost, "/api/admin/logos", f.admin, nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("logos without bucket = %d", w.Code)
	}
}

func TestLoginAndProfile(t *testing.T) {
	f := newFixture(t)

	if w := f.do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "admin@example.com", Password: "wrong"}); w.Code != http.StatusUnauthorized {
		t.Errorf("bad password = %d", w.Code)
	}

	w := f.do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "admin@example.com", Password: "hunter22"})
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d %s", w.Code, w.Body.String())
	}
	var resp models.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("auth response = %s", w.Body.String())
	}

	if w := f.do(http.MethodGet, "/api/auth/me", resp.Token, nil); w.Code != http.StatusOK {
		t.Errorf("me = %d", w.Code)
	}
}

func TestPublicErrors(t *testing.T) {
	f := newFixture(t)

	if w := f.do(http.MethodGet, "/api/jobs?page=0&limit=500", "", nil); w.Code != http.StatusOK {
		t.Errorf("list with out-of-range paging = %d", w.Code)
	}
	if w := f.do(http.MethodGet, "/api/jobs/nope", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing job = %d", w.Code)
	}
	if w := f.do(http.MethodGet, "/api/external-jobs", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("external without query = %d", w.Code)
	}
	if w := f.do(http.MethodPost, "/api/ga4", f.admin, models.AnalyticsRequest{Report: "revenue"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown report = %d", w.Code)
	}

	w := f.do(http.MethodPost, "/api/ga4", f.admin, models.AnalyticsRequest{Report: "overview"})
	var overview analytics.Overview
	if err := json.Unmarshal(w.Body.Bytes(), &overview); err != nil || w.Code != http.StatusOK || !overview.Mock {
		t.Errorf("overview without GA4 = %d %s", w.Code, w.Body.String())
	}
	if w := f.do(http.MethodPost, "/api/ga4", f.admin, models.AnalyticsRequest{Report: "traffic"}); w.Code != http.StatusServiceUnavailable {
		t.Errorf("traffic without GA4 = %d", w.Code)
	}

	if w := f.do(http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Errorf("health = %d", w.Code)
	}
}

func TestRelatedJobsDefaultCount(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		j := models.Job{
			ID: fmt.Sprintf("j%02d", i), Title: fmt.Sprintf("Engineer %d", i), Company: "Acme",
			Type: models.JobTypeFullTime, Category: models.CategoryBackend, Experience: models.ExperienceMid,
			IsActive: true, ApplicationURL: "https://acme.example/apply",
			CreatedAt: created.Add(time.Duration(i) * time.Hour),
		}
		j.Slug = models.GenerateSlug(j.Title, j.Company)
		if err := f.mem.Insert(context.Background(), storage.TableJobs, storage.EncodeJob(j)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", jobs.DefaultRelatedCount},
		{"?limit=3", 3},
		{"?limit=50", jobs.DefaultRelatedCount},
		{"?limit=abc", jobs.DefaultRelatedCount},
	}
	for _, tt := range tests {
		w := f.do(http.MethodGet, "/api/jobs/j00/related"+tt.query, "", nil)
		var resp models.RelatedJobsResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || w.Code != http.StatusOK {
			t.Fatalf("related%s = %d %s", tt.query, w.Code, w.Body.String())
		}
		if len(resp.Jobs) != tt.want {
			t.Errorf("related%s returned %d jobs, want %d", tt.query, len(resp.Jobs), tt.want)
		}
		for _, j := range resp.Jobs {
			if j.ID == "j00" {
				t.Errorf("related%s includes the reference job", tt.query)
			}
		}
	}
}

func TestAdminSearchRecordsQueriedSources(t *testing.T) {
	f := newFixture(t)

	req := models.ExternalSearchRequest{Query: "golang", Sources: []string{"remotive", "dice", "github"}}
	w := f.do(http.MethodPost, "/api/admin/external/search", f.admin, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d %s", w.Code, w.Body.String())
	}
	var hist models.SearchHistory
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hist.Sources) != 1 || hist.Sources[0] != "remotive" || hist.ResultCount != 1 {
		t.Errorf("history = %+v", hist)
	}

	req.Sources = []string{"dice"}
	if w := f.do(http.MethodPost, "/api/admin/external/search", f.admin, req); w.Code != http.StatusBadRequest {
		t.Errorf("only unknown sources = %d", w.Code)
	}
}

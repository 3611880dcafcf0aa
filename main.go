package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/jobboard/backend/aggregator"
	"github.com/jobboard/backend/analytics"
	"github.com/jobboard/backend/auth"
	"github.com/jobboard/backend/config"
	_ "github.com/jobboard/backend/docs"
	"github.com/jobboard/backend/gemini"
	"github.com/jobboard/backend/handlers"
	"github.com/jobboard/backend/jobs"
	"github.com/jobboard/backend/mcp"
	"github.com/jobboard/backend/scheduler"
	"github.com/jobboard/backend/social"
	"github.com/jobboard/backend/sources"
	"github.com/jobboard/backend/storage"
	"github.com/jobboard/backend/tools"
	"github.com/jobboard/backend/utils"
)

// @title Job Board API
// @version 1.0
// @description Job listings, admin dashboard, external job aggregation and analytics.

// @contact.name API Support

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load .env file if present (for local development)
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	setupLogging(cfg)

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	log.WithField("url", redactURL(cfg.DatabaseURL)).Info("[Storage] database ready")

	var cache *storage.Cache
	if cfg.RedisURL != "" {
		cache, err = storage.NewCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Warnf("[Cache] Redis unavailable, continuing without cache: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	var users storage.UserStore
	if cfg.ProjectID != "" {
		firestoreClient, err := storage.NewFirestoreClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Firestore client: %v", err)
		}
		defer firestoreClient.Close()
		users = firestoreClient
	} else {
		log.Warn("[Auth] PROJECT_ID not set, admin accounts are kept in memory")
		users = storage.NewMemoryUserStore()
	}
	if err := auth.BootstrapAdmin(ctx, users, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	var logos storage.LogoStore
	if cfg.LogoBucketName != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage client: %v", err)
		}
		defer storageClient.Close()
		logos = storageClient
	}

	httpClient := utils.NewHTTPClient(cfg.HTTPTimeout())

	svc := jobs.NewService(db, cache, utils.NewLinkChecker(httpClient))
	if cfg.EnableAIClassification {
		geminiClient, err := gemini.NewClient(ctx, cfg)
		if err != nil {
			log.Warnf("[Gemini] classification disabled: %v", err)
		} else {
			defer geminiClient.Close()
			svc.SetClassifier(geminiClient)
		}
	}

	runner, err := analytics.NewGA4Runner(ctx, cfg)
	if err != nil {
		log.Warnf("[GA4] %v", err)
		runner = nil
	}
	reports := analytics.NewService(runner, cache)

	agg := aggregator.New(sources.NewFromConfig(cfg, httpClient), cache, cfg.ExternalCacheTTL())
	gen := social.NewGenerator(cfg.SiteURL)

	jwtService := auth.NewJWTService(cfg)
	googleAuthService := auth.NewGoogleAuthService(cfg)

	jobsHandler := handlers.NewJobsHandler(svc)
	adminHandler := handlers.NewAdminHandler(svc, logos, gen)
	externalHandler := handlers.NewExternalHandler(agg, svc)
	analyticsHandler := handlers.NewAnalyticsHandler(reports)
	authHandler := handlers.NewAuthHandler(users, jwtService, googleAuthService)

	toolRegistry := tools.NewToolRegistry()
	toolRegistry.Register(tools.NewSearchJobsTool(svc))
	toolRegistry.Register(tools.NewRelatedJobsTool(svc))
	toolRegistry.Register(tools.NewSocialPostTool(svc, gen))
	toolRegistry.Register(tools.NewSearchExternalTool(agg))
	toolRegistry.Register(tools.NewFetchPageTool(svc, httpClient))
	mcpServer := mcp.NewServer(toolRegistry)

	warmer := scheduler.New(agg, cfg.WarmQueries, cfg.WarmSchedule)
	if err := warmer.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.MaxMultipartMemory = storage.MaxLogoBytes

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/jobs", jobsHandler.ListJobs)
		api.GET("/jobs/:slug", jobsHandler.GetJob)
		api.GET("/jobs/:slug/related", jobsHandler.RelatedJobs)
		api.POST("/jobs/:slug/click", jobsHandler.RecordClick)
		api.GET("/stats", jobsHandler.Stats)

		api.GET("/external-jobs", externalHandler.SearchExternal)
		api.GET("/external-jobs/sources", externalHandler.Sources)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/google", authHandler.GoogleLogin)
		}

		authProtected := api.Group("/auth")
		authProtected.Use(auth.AuthMiddleware(jwtService))
		{
			authProtected.GET("/me", authHandler.GetProfile)
			authProtected.POST("/refresh", authHandler.Refresh)
		}

		api.POST("/ga4", auth.AuthMiddleware(jwtService), auth.AdminMiddleware(), analyticsHandler.Report)

		admin := api.Group("/admin")
		admin.Use(auth.AuthMiddleware(jwtService), auth.AdminMiddleware())
		{
			admin.GET("/jobs", adminHandler.ListJobs)
			admin.POST("/jobs", adminHandler.CreateJob)
			admin.POST("/jobs/check-duplicate", adminHandler.CheckDuplicate)
			admin.GET("/jobs/:id", adminHandler.GetJob)
			admin.PUT("/jobs/:id", adminHandler.UpdateJob)
			admin.DELETE("/jobs/:id", adminHandler.DeleteJob)
			admin.PATCH("/jobs/:id/toggle/:field", adminHandler.ToggleJob)
			admin.GET("/jobs/:id/social", adminHandler.SocialPosts)
			admin.POST("/logos", adminHandler.UploadLogo)
			admin.GET("/clicks", adminHandler.ClickStats)
			admin.GET("/import", adminHandler.ListImported)
			admin.POST("/import", adminHandler.ImportJobs)

			admin.POST("/external/search", externalHandler.AdminSearch)
			admin.GET("/external/history", externalHandler.ListHistory)
			admin.GET("/external/history/:id", externalHandler.GetHistory)
			admin.DELETE("/external/history/:id", externalHandler.DeleteHistory)
		}

		// MCP endpoints for external AI agents
		mcpServer.RegisterRoutes(api)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	warmer.Stop()
	svc.Wait()

	log.Info("Server exited gracefully")
}

func setupLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	if cfg.Debug && level < log.DebugLevel {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}

// redactURL drops credentials from a database URL before logging it
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(invalid)"
	}
	return u.Redacted()
}

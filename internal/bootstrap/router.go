package bootstrap

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marketpulse/marketpulse/internal/config"
	"github.com/marketpulse/marketpulse/internal/handlers"
	"github.com/marketpulse/marketpulse/internal/metrics"
	"github.com/marketpulse/marketpulse/internal/middleware"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(app *Application) (*gin.Engine, error) {
	cfg := app.Config

	setupGinMode(cfg)
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(metrics.HTTPMetricsMiddleware(app.Recorder))
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", createHealthCheckHandler(app))
	setupMetricsEndpoint(r, cfg)

	rateLimiter, err := setupRateLimiting(cfg)
	if err != nil {
		return nil, err
	}

	setupAuthRoutes(r, app, rateLimiter)
	setupAPIRoutes(r, app, rateLimiter)
	logServerStartup(cfg)

	return r, nil
}

// setupAuthRoutes mounts login (the only unauthenticated endpoint besides
// health and metrics) and the token-derived profile
func setupAuthRoutes(r *gin.Engine, app *Application, rateLimiter gin.HandlerFunc) {
	authHandler := handlers.NewAuthHandler(app.AuthService)

	auth := r.Group("/auth")
	if rateLimiter != nil {
		auth.Use(rateLimiter)
	}
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", middleware.RequireAuth(app.Config.JWTSecret), authHandler.Profile)
}

// setupAPIRoutes mounts the authenticated API surface
func setupAPIRoutes(r *gin.Engine, app *Application, rateLimiter gin.HandlerFunc) {
	credentialHandler := handlers.NewCredentialHandler(app.CredentialService, app.Recorder)
	platformHandler := handlers.NewPlatformHandler(app.PlatformService)
	analyticsHandler := handlers.NewAnalyticsHandler(app.AnalyticsService)
	searchConsoleHandler := handlers.NewSearchConsoleHandler(app.SearchConsoleService)
	adsHandler := handlers.NewAdsHandler(app.AdsService)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth(app.Config.JWTSecret))
	if rateLimiter != nil {
		api.Use(rateLimiter)
	}

	api.POST("/google-oauth", credentialHandler.Connect)
	api.GET("/google-oauth", credentialHandler.Profile)
	api.DELETE("/google-oauth", credentialHandler.Disconnect)

	api.PUT("/platform", platformHandler.Upsert)
	api.GET("/platform", platformHandler.Status)

	analytics := api.Group("/google-analytics")
	{
		analytics.GET("/overall", analyticsHandler.Overall)
		analytics.GET("/daily", analyticsHandler.Daily)
		analytics.GET("/pages", analyticsHandler.Pages)
	}

	searchConsole := api.Group("/google-search-console")
	{
		searchConsole.GET("/overall", searchConsoleHandler.Overall)
		searchConsole.GET("/daily", searchConsoleHandler.Daily)
		searchConsole.GET("/keywords", searchConsoleHandler.Keywords)
	}

	ads := api.Group("/google-ads")
	{
		ads.GET("/overall", adsHandler.Overall)
		ads.GET("/daily", adsHandler.Daily)
		ads.GET("/campaigns", adsHandler.Campaigns)
		ads.GET("/campaigns/:id", adsHandler.CampaignByID)
	}
}

// setupRateLimiting builds the shared API rate limiter; the store follows
// the cache backend so multi-instance deployments limit globally.
func setupRateLimiting(cfg *config.Config) (gin.HandlerFunc, error) {
	if !cfg.EnableRateLimit {
		log.Printf("Rate limiting disabled")
		return nil, nil
	}

	if cfg.CacheType == config.CacheTypeRedis {
		return middleware.NewRedisRateLimiter(
			cfg.RequestsPerMinute,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
		)
	}
	return middleware.NewMemoryRateLimiter(cfg.RequestsPerMinute)
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	if !cfg.EnableMetrics {
		log.Printf("Prometheus metrics disabled")
		return
	}
	log.Printf("Prometheus metrics enabled at /metrics")
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(app *Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "healthy", "database": "connected", "cache": "connected"}
		healthy := true

		if err := app.DB.Health(ctx); err != nil {
			status["database"] = "disconnected"
			healthy = false
		}
		if err := app.ReportCache.Health(ctx); err != nil {
			status["cache"] = "disconnected"
			healthy = false
		}

		if !healthy {
			status["status"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
		return
	}
	gin.SetMode(gin.DebugMode)
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("Environment: %s", cfg.Env)
	log.Printf("Report cache TTL: %s", cfg.ReportCacheTTL)
	log.Printf("Marketing reports server starting on %s", cfg.ServerAddr)
}

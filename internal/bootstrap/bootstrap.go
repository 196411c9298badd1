package bootstrap

import (
	"encoding/json"
	"net/http"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"

	"github.com/marketpulse/marketpulse/internal/cache"
	"github.com/marketpulse/marketpulse/internal/config"
	"github.com/marketpulse/marketpulse/internal/googleauth"
	"github.com/marketpulse/marketpulse/internal/metrics"
	"github.com/marketpulse/marketpulse/internal/msauth"
	"github.com/marketpulse/marketpulse/internal/services"
	"github.com/marketpulse/marketpulse/internal/store"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB          *store.Store
	ReportCache cache.Cache[json.RawMessage]
	Recorder    metrics.Recorder

	// Credential resolution
	Resolver *googleauth.Resolver
	Identity *msauth.Authenticator

	// Services
	AuthService          *services.AuthService
	CredentialService    *services.CredentialService
	PlatformService      *services.PlatformService
	AnalyticsService     *services.AnalyticsService
	SearchConsoleService *services.SearchConsoleService
	AdsService           *services.AdsService

	// HTTP
	Router *gin.Engine
	Server *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	app := &Application{Config: cfg}

	// Phase 1: Validate configuration
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	app.initializeBusinessLayer()

	// Phase 4: Initialize HTTP layer
	if err := app.initializeHTTPLayer(); err != nil {
		return err
	}

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up the database, metrics and the report cache
func (app *Application) initializeInfrastructure() error {
	var err error

	app.DB, err = store.New(app.Config.DatabaseDriver, app.Config.DatabaseDSN)
	if err != nil {
		return err
	}

	app.Recorder = metrics.Init(app.Config.EnableMetrics)

	reportCache, err := initializeReportCache(app.Config)
	if err != nil {
		return err
	}
	app.ReportCache = metrics.InstrumentCache(reportCache, app.Recorder)

	return nil
}

// initializeBusinessLayer sets up the credential resolver and services
func (app *Application) initializeBusinessLayer() {
	cfg := app.Config

	app.Resolver = googleauth.NewResolver(
		app.DB,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)

	app.Identity = msauth.NewAuthenticator(
		cfg.MicrosoftClientID,
		cfg.MicrosoftClientSecret,
		cfg.MicrosoftTenantID,
		cfg.MicrosoftRedirectURL,
	)

	app.AuthService = services.NewAuthService(app.Identity, cfg.JWTSecret, cfg.JWTExpiration)
	app.CredentialService = services.NewCredentialService(app.DB, app.Resolver, app.ReportCache)
	app.PlatformService = services.NewPlatformService(app.DB, app.DB, app.Resolver)
	app.AnalyticsService = services.NewAnalyticsService(
		app.Resolver, app.DB, app.ReportCache, cfg.ReportCacheTTL)
	app.SearchConsoleService = services.NewSearchConsoleService(
		app.Resolver, app.DB, app.ReportCache, cfg.ReportCacheTTL)
	app.AdsService = services.NewAdsService(
		app.Resolver, app.DB, app.ReportCache, cfg.ReportCacheTTL)
}

// initializeHTTPLayer sets up the router and server
func (app *Application) initializeHTTPLayer() error {
	router, err := setupRouter(app)
	if err != nil {
		return err
	}
	app.Router = router
	app.Server = createHTTPServer(app.Config, app.Router)
	return nil
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Server, app.Config.ShutdownTimeout)
	addCacheShutdownJob(m, app.ReportCache)

	<-m.Done()
}

package app

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/uniedit/orgauth/cmd/server/docs" // swagger docs
	"github.com/uniedit/orgauth/internal/infra/wire"
	"github.com/uniedit/orgauth/internal/shared/config"
	"github.com/uniedit/orgauth/internal/utils/middleware"
)

// App represents the application.
type App struct {
	config  *config.Config
	deps    *wire.Dependencies
	cleanup func()
	router  *gin.Engine
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	deps, cleanup, err := wire.InitializeDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("init dependencies: %w", err)
	}

	app := &App{
		config:  cfg,
		deps:    deps,
		cleanup: cleanup,
	}
	app.router = app.setupRouter()
	app.registerRoutes()

	deps.ZapLogger.Info("application initialized")
	return app, nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.deps.Logger))
	r.Use(middleware.Metrics(a.deps.Metrics))
	r.Use(middleware.CORS(a.config.Server.CORSOrigins))

	r.GET("/health", a.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.deps.Registry, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

func (a *App) health(c *gin.Context) {
	status := gin.H{"status": "ok", "database": a.config.Database.Driver}
	if a.deps.Redis != nil {
		if err := a.deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
			status["status"] = "degraded"
			status["redis"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["redis"] = "ok"
	}
	c.JSON(http.StatusOK, status)
}

// registerRoutes registers the API routes.
func (a *App) registerRoutes() {
	v1 := a.router.Group("/api/v1")

	a.deps.AccountHandler.RegisterRoutes(v1)
	a.deps.OrgHandler.RegisterRoutes(v1)
	a.deps.InvitationHandler.RegisterRoutes(v1)

	if a.config.Auth.DevLogin {
		a.deps.ZapLogger.Warn("dev login enabled: POST /api/v1/dev/token issues tokens for any identity")
	}
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases resources: the zap logger, redis and the SQL pool.
func (a *App) Stop() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

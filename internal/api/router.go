package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/example/usermanagement/docs"
	"github.com/example/usermanagement/internal/api/handler"
	"github.com/example/usermanagement/internal/api/middleware"
	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer needs. Mongo and Redis
// are optional and only used by the readiness probe.
type Dependencies struct {
	Log      zerolog.Logger
	Auth     ports.AuthService
	Accounts ports.AccountService
	Resolver middleware.IdentityResolver
	TokenTTL time.Duration

	Mongo *mongo.Database
	Redis *redis.Client

	// Registry receives the HTTP metrics. Nil means the default Prometheus
	// registry, where the domain metrics also live.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	promConfig := echoprometheus.MiddlewareConfig{Subsystem: "usermanagement"}
	promHandlerConfig := echoprometheus.HandlerConfig{}
	if deps.Registry != nil {
		promConfig.Registerer = deps.Registry
		promHandlerConfig.Gatherer = deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(promConfig))
	e.Use(middleware.Identity(deps.Resolver))

	authn := middleware.RequireAuthenticated()
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.TokenTTL)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/validate", authHandler.Validate)
	e.POST("/auth/token", authHandler.IssueOwnToken, authn)

	// --- Admin routes ---
	adminHandler := handler.NewAdminHandler(deps.Accounts, deps.Auth, deps.TokenTTL)
	admin := e.Group("/admin", adminOnly)
	admin.POST("/users", adminHandler.CreateUser)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/admins", adminHandler.CreateAdmin)
	admin.POST("/tokens", adminHandler.IssueToken)

	// --- User routes ---
	userHandler := handler.NewUserHandler(deps.Accounts)
	users := e.Group("/users", authn)
	users.POST("", userHandler.Create, adminOnly)
	users.GET("", userHandler.List)
	users.GET("/active", userHandler.ListActive)
	users.GET("/search", userHandler.Search)
	users.GET("/age-range", userHandler.AgeRange)
	users.GET("/stats", userHandler.Stats)
	users.GET("/email/:email", userHandler.GetByEmail)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.PUT("/:id/password", userHandler.ChangePassword)
	users.PATCH("/:id/activate", userHandler.Activate, adminOnly)
	users.PATCH("/:id/deactivate", userHandler.Deactivate, adminOnly)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	// --- Health probes and ops (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis, deps.Accounts)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(promHandlerConfig))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

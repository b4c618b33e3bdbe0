package api

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"

	_ "github.com/corehr/identity-service/docs"
	"github.com/corehr/identity-service/internal/api/handler"
	"github.com/corehr/identity-service/internal/api/middleware"
	"github.com/corehr/identity-service/internal/core/domain"
	"github.com/corehr/identity-service/internal/core/service"
	"github.com/corehr/identity-service/internal/infrastructure/config"
	"github.com/corehr/identity-service/internal/infrastructure/db/postgres"
	"github.com/corehr/identity-service/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(pool *pgxpool.Pool, rdb *goredis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	tokenCfg := service.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL}

	userRepo := postgres.NewUserRepository(pool)
	throttle := redis.NewLoginThrottle(rdb)

	credentialSvc, err := service.NewCredentialService(userRepo, throttle, tokenCfg, log)
	if err != nil {
		return nil, err
	}
	resolver, err := service.NewContextResolver(userRepo, tokenCfg, log)
	if err != nil {
		return nil, err
	}
	userSvc := service.NewUserService(userRepo, log)

	authHandler := handler.NewAuthHandler(credentialSvc)
	userHandler := handler.NewUserHandler(userSvc)
	authMiddleware := middleware.Auth(resolver)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register, authMiddleware, middleware.RequireRole(domain.RoleAdmin))

	// --- User routes (authenticated) ---
	v1 := e.Group("/v1", authMiddleware)
	v1.GET("/users", userHandler.List)
	v1.GET("/users/:id", userHandler.Get)
	v1.PATCH("/users/:id", userHandler.UpdateProfile)
	v1.PATCH("/users/:id/sensitive", userHandler.UpdateSensitive, middleware.RequireRole(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(pool, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e, nil
}

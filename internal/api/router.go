package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/userhub/account-api/internal/api/handler"
	"github.com/userhub/account-api/internal/api/middleware"
	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/ports"
	"github.com/userhub/account-api/internal/infrastructure/http/handlers"
)

// Deps bundles everything the router needs. Services are constructed once
// in main and passed by reference; the router only wires routes.
type Deps struct {
	AuthService ports.AuthService
	UserService ports.UserService
	Tokens      ports.TokenIssuer
	Templates   ports.TemplateRenderer
	FrontendURL string
	Mongo       *mongo.Database
	Redis       *redis.Client
	Log         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes
// registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("account"))

	authHandler := handler.NewAuthHandler(d.AuthService, d.Templates, d.FrontendURL)
	userHandler := handler.NewUserHandler(d.UserService)
	authRequired := middleware.Auth(d.Tokens)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh-token", authHandler.Refresh)
	e.GET("/auth/verify-email", authHandler.VerifyEmail)
	e.GET("/auth/resend-verification-email", authHandler.ResendVerification)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)
	e.PUT("/auth/profile", authHandler.UpdateProfile, authRequired)
	e.PUT("/auth/change-password", authHandler.ChangePassword, authRequired)
	e.POST("/auth/verify-password", authHandler.VerifyPassword, authRequired)

	// --- User routes ---
	e.GET("/users", userHandler.List, authRequired, middleware.RBAC(domain.RoleAdmin))
	e.GET("/users/:id", userHandler.Get, authRequired)
	e.PUT("/users/:id", userHandler.Update, authRequired)
	e.DELETE("/users/:id", userHandler.Delete, authRequired)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability / docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}

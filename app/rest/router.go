package rest

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pettracker/app/port"
	"pettracker/app/rest/handlers"
	custommw "pettracker/app/rest/middleware"
)

// RouterConfig holds router configuration
type RouterConfig struct {
	Logger             *slog.Logger
	SessionUsecase     port.SessionUsecase
	PetUsecase         port.PetUsecase
	DB                 handlers.Pinger
	RateLimitPerSecond float64
	RateLimitBurst     int
	EnableDebug        bool
}

// NewRouter creates and configures the Echo router
func NewRouter(config RouterConfig) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.Debug = config.EnableDebug

	// Create handlers
	authHandler := handlers.NewAuthHandler(config.SessionUsecase, config.Logger)
	petHandler := handlers.NewPetHandler(config.PetUsecase, config.Logger)
	healthHandler := handlers.NewHealthHandler(config.DB, config.Logger)

	// Create middleware
	identityMiddleware := custommw.NewIdentityMiddleware(config.Logger)
	rateLimiter := custommw.NewRateLimiter(config.RateLimitPerSecond, config.RateLimitBurst)

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(custommw.DefaultCORS())
	e.Use(custommw.SecurityHeaders())
	e.Use(rateLimiter.RateLimit())

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}, latency=${latency_human}, error=${error}\n",
	}))

	// Health endpoints (no auth required)
	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/ready", healthHandler.ReadinessCheck)
	e.GET("/live", healthHandler.LivenessCheck)

	// Authentication endpoints
	auth := e.Group("/auth")
	auth.POST("/signin", authHandler.SignIn)
	auth.POST("/mfa", authHandler.SubmitMFACode)
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/confirm", authHandler.ConfirmRegistration)
	auth.POST("/resend", authHandler.ResendConfirmationCode)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.POST("/signout", authHandler.SignOut)
	auth.GET("/status", authHandler.Status)

	// Pet endpoints, scoped to the caller identity (guests fall back to
	// the shared unauthenticated identity)
	items := e.Group("/items")
	items.Use(identityMiddleware.ResolveIdentity())
	items.GET("/pets", petHandler.List)
	items.POST("/pets", petHandler.Create)
	items.POST("/pets/photos", petHandler.UploadPhoto)

	return e
}

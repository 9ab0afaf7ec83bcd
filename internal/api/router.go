package api

import (
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/portalkit/portal/docs"
	"github.com/portalkit/portal/internal/api/handler"
	"github.com/portalkit/portal/internal/api/middleware"
	"github.com/portalkit/portal/internal/api/websession"
	"github.com/portalkit/portal/internal/core/ports"
	"github.com/portalkit/portal/internal/pkg/config"
)

// Dependencies are the services the HTTP layer needs.
type Dependencies struct {
	Auth      ports.AuthService
	Documents ports.DocumentService
	Store     handler.Pinger
	Log       zerolog.Logger
	// Registerer receives the HTTP request metrics. Defaults to the global
	// Prometheus registerer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: registerer,
	}))

	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	e.Use(session.Middleware(store))
	e.Use(middleware.Session(websession.Options{
		CookieName: cfg.Session.CookieName,
		Timeout:    cfg.SessionTimeout(),
		Secure:     cfg.IsProduction(),
	}, deps.Log))

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler(cfg.AppName, cfg.AppVersion)
	readinessHandler := handler.NewReadinessHandler(cfg.Store.Driver, deps.Store)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Log)
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, middleware.RequireAuth())
	auth.PUT("/password", authHandler.ChangePassword, middleware.RequireAuth())

	// --- User administration (admin only) ---
	userHandler := handler.NewUserHandler(deps.Auth)
	users := e.Group("/v1/users", middleware.RequireAdmin())
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.DELETE("/:id", userHandler.Delete)
	users.PUT("/:id/password", userHandler.ResetPassword)
	users.PUT("/:id/role", userHandler.UpdateRole)

	// --- Documents (any logged-in user) ---
	documentHandler := handler.NewDocumentHandler(deps.Documents)
	docs := e.Group("/v1/documents", middleware.RequireAuth())
	docs.POST("/messages/preview", documentHandler.PreviewMessage)
	docs.POST("/messages", documentHandler.SaveMessage)
	docs.GET("/messages", documentHandler.ListMessages)
	docs.POST("/account-opening", documentHandler.AccountOpening)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error()
			}
			if v.Error != nil {
				evt = evt.Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

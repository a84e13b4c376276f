package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Ovii2/EventSync/internal/api/handler"
	"github.com/Ovii2/EventSync/internal/api/middleware"
	"github.com/Ovii2/EventSync/internal/core/domain"
	"github.com/Ovii2/EventSync/internal/core/ports"
	"github.com/Ovii2/EventSync/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Auth     ports.AuthService
	Sessions ports.CredentialValidator
	Events   ports.EventService
	Feedback ports.FeedbackService
	// Push is mounted at GET /ws when set.
	Push   http.Handler
	Checks map[string]handlers.Checker
	// Registerer receives the HTTP request metrics; nil means the default registry.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	reg := d.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "eventsync",
		Registerer: reg,
	}))

	authMW := middleware.Auth(d.Sessions)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Accounts and sessions ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/users", authHandler.Register)
	e.POST("/sessions", authHandler.Login)
	e.DELETE("/sessions", authHandler.Logout)

	// --- Events and feedback ---
	eventHandler := handler.NewEventHandler(d.Events)
	feedbackHandler := handler.NewFeedbackHandler(d.Feedback)

	events := e.Group("/events", authMW)
	events.POST("", eventHandler.Create, adminOnly)
	events.GET("", eventHandler.List)
	events.GET("/:id", eventHandler.Get)
	events.POST("/:id/feedback", feedbackHandler.Submit)
	events.GET("/:id/feedback", feedbackHandler.List)
	events.GET("/:id/feedback/summary", feedbackHandler.Summary)

	// --- Push channel (authenticates during the handshake) ---
	if d.Push != nil {
		e.GET("/ws", echo.WrapHandler(d.Push))
	}

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octobees/icp-finder/internal/auth"
	"github.com/octobees/icp-finder/internal/config"
	"github.com/octobees/icp-finder/internal/handler"
	middlewarepkg "github.com/octobees/icp-finder/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Health   *handler.HealthHandler
	Search   *handler.SearchHandler
	Sessions *handler.SessionHandler
	Outreach *handler.OutreachHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/", handlers.Health.Root)
	e.GET("/healthz", handlers.Health.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	searchLimit := middlewarepkg.RateLimiter(cfg.RateLimitSearch)
	e.POST("/search", handlers.Search.Search, searchLimit)

	if handlers.Outreach != nil {
		e.POST("/outreach/draft", handlers.Outreach.Draft)
	}

	if handlers.Sessions != nil {
		e.POST("/sessions", handlers.Sessions.Create)

		secured := e.Group("/sessions/:id")
		secured.Use(middlewarepkg.SessionToken(jwtManager, "id"))
		secured.GET("", handlers.Sessions.Get)
		secured.POST("/search", handlers.Sessions.Search, searchLimit)
		secured.GET("/export", handlers.Sessions.Export)
		secured.DELETE("/results", handlers.Sessions.Clear)
	}
}

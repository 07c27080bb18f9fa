package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vietnam-explorer/api/internal/auth"
	"github.com/vietnam-explorer/api/internal/config"
	"github.com/vietnam-explorer/api/internal/handler"
	middlewarepkg "github.com/vietnam-explorer/api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth  *handler.AuthHandler
	Chat  *handler.ChatHandler
	Place *handler.PlaceHandler
}

// Register wires all HTTP routes for the API. When auth is configured the
// chat and place endpoints require a bearer token; otherwise they are open.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	api := e.Group("")
	if cfg.AuthEnabled() {
		e.POST("/auth/token", handlers.Auth.Token)
		api.Use(middlewarepkg.JWT(jwtManager))
	}

	api.POST("/ai/chat", handlers.Chat.Chat, middlewarepkg.ChatRateLimiter(cfg.RateLimitChat))
	api.POST("/place/geocode", handlers.Place.Geocode)
	api.POST("/place/poi", handlers.Place.Search)
}

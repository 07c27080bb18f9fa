package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vietnam-explorer/api/internal/auth"
	"github.com/vietnam-explorer/api/internal/dto"
)

// AuthHandler exchanges the configured API key for a bearer token.
type AuthHandler struct {
	manager *auth.JWTManager
	apiKey  string
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(manager *auth.JWTManager, apiKey string) *AuthHandler {
	return &AuthHandler{manager: manager, apiKey: apiKey}
}

// Token handles POST /auth/token requests.
func (h *AuthHandler) Token(c echo.Context) error {
	var req dto.TokenRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	if req.APIKey == "" {
		return Error(c, http.StatusBadRequest, "api_key is required")
	}

	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.apiKey)) != 1 {
		return Error(c, http.StatusUnauthorized, "invalid api key")
	}

	token, err := h.manager.GenerateToken("frontend", "chat")
	if err != nil {
		return Error(c, http.StatusInternalServerError, "unable to issue token")
	}

	return Success(c, http.StatusOK, "token issued", dto.TokenResponse{Token: token})
}

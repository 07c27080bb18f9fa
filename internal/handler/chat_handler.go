package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vietnam-explorer/api/internal/dto"
	"github.com/vietnam-explorer/api/internal/middleware"
	"github.com/vietnam-explorer/api/internal/service"
)

// ChatHandler exposes the conversational search endpoint.
type ChatHandler struct {
	chat *service.ChatService
	log  *zap.Logger
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(chat *service.ChatService, log *zap.Logger) *ChatHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatHandler{chat: chat, log: log}
}

// Chat handles POST /ai/chat requests. The reply body is the chat payload
// itself rather than the shared envelope so the frontend can render it
// directly. An empty message is not an error: the pipeline answers it with a
// clarifying question like any other incomplete turn.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req dto.ChatRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Message = strings.TrimSpace(req.Message)

	resp, err := h.chat.Chat(c.Request().Context(), req)
	if err != nil {
		h.log.Error("chat turn failed",
			zap.String("request_id", middleware.RequestIDFromContext(c)),
			zap.Error(err))
		return Error(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, resp)
}

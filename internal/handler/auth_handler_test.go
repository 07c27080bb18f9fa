package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vietnam-explorer/api/internal/auth"
)

func TestAuthHandler_Token(t *testing.T) {
	manager := auth.NewJWTManager("secret", 0)
	h := NewAuthHandler(manager, "frontend-key")

	tests := map[string]struct {
		body       string
		expectCode int
	}{
		"missing key": {`{}`, http.StatusBadRequest},
		"wrong key":   {`{"api_key":"nope"}`, http.StatusUnauthorized},
		"valid key":   {`{"api_key":"frontend-key"}`, http.StatusOK},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := h.Token(c); err != nil {
				t.Fatalf("expected handler to write response, got %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, rec.Code)
			}

			if tt.expectCode == http.StatusOK {
				var resp APIResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				data, ok := resp.Data.(map[string]any)
				if !ok || data["token"] == "" {
					t.Fatalf("expected token in response, got %+v", resp.Data)
				}
			}
		})
	}
}

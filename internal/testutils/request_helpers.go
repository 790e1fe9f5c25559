package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/api/middleware"
	"github.com/google/uuid"
)

// CreateTestRequestWithContext builds a request as it looks after SessionAuth accepted the token.
func CreateTestRequestWithContext(method, target string, body io.Reader, sessionID uuid.UUID, pathParams map[string]string) *http.Request {
	req := CreateTestRequestWithoutContext(method, target, body, pathParams)

	ctx := context.WithValue(req.Context(), middleware.SessionContextKey, sessionID)

	return req.WithContext(ctx)
}

func CreateTestRequestWithoutContext(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.WithValue(req.Context(), middleware.LoggerKey, logger)

	return req.WithContext(ctx)
}

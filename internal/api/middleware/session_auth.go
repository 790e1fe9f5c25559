package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/errors"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const SessionContextKey = contextKey("session")

type SessionAuth struct {
	jwtKey []byte
}

func NewSessionAuth(jwtKey []byte) *SessionAuth {

	return &SessionAuth{jwtKey: jwtKey}

}

// Authenticate resolves the bearer token into the wizard session it was issued for.
func (m *SessionAuth) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")

		if authHeader == "" {
			logger.Warn("Missing authorization header")
			response.Error(w, errors.UnauthorizedError("Authorization header is required"))
			return
		}

		// Token is of format : "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")

		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.Warn("Invalid authorization header format")
			response.Error(w, errors.UnauthorizedError("Invalid authorization format"))
			return
		}

		claims := &models.Claims{}

		token, err := jwt.ParseWithClaims(tokenParts[1], claims, func(t *jwt.Token) (any, error) {
			return m.jwtKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

		if err != nil {
			logger.Warn("JWT parsing failed", slog.String("error", err.Error()))
			response.Error(w, errors.UnauthorizedError("Invalid or expired token"))
			return
		}

		if !token.Valid || claims.SessionID == uuid.Nil {
			logger.Warn("Invalid token")
			response.Error(w, errors.UnauthorizedError("Invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, claims.SessionID)

		requestScopedLogger := logger.With(slog.String("session_id", claims.SessionID.String()))
		ctx = context.WithValue(ctx, LoggerKey, requestScopedLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(SessionContextKey).(uuid.UUID)

	return id, ok && id != uuid.Nil
}

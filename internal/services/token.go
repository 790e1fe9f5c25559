package service

import (
	"time"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer signs the bearer token that binds a browser to its wizard session.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenIssuer(key []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &TokenIssuer{key: key, ttl: ttl, now: time.Now}
}

func (i *TokenIssuer) Issue(sessionID uuid.UUID) (string, time.Time, error) {
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.ttl)

	claims := &models.Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

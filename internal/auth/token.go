package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/beifitycom/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

const tokenLifetime = 24 * time.Hour

// AuthToken issues and verifies HMAC-signed JWTs.
type AuthToken struct {
	key []byte
}

// NewAuthToken creates a token service with the given signing key.
func NewAuthToken(key []byte) *AuthToken {
	return &AuthToken{key: key}
}

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// CreateToken issues a signed token for the user.
func (at *AuthToken) CreateToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
		Role: user.Role,
	})
	return token.SignedString(at.key)
}

// VerifyToken parses and validates a token string.
func (at *AuthToken) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return at.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return &models.TokenPayload{
		UserID: c.Subject,
		Role:   c.Role,
	}, nil
}

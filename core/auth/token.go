package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"arifmusic/core/apperr"
	"arifmusic/model"
)

// tokenTTL matches the backend contract: tokens are valid for 30 days.
const tokenTTL = 30 * 24 * time.Hour

// Claims is the JWT payload. Subject is the user id.
type Claims struct {
	UserType model.UserType `json:"userType"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed JWT for the user.
func GenerateToken(secret []byte, user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserType: user.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a signed JWT and returns its claims.
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Wrap(apperr.Unauthenticated, "invalid token", err)
	}
	return claims, nil
}

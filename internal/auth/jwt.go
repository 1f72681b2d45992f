package auth

import (
	"errors"
	"time"

	"medlink/config"
	"medlink/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID             uint        `json:"user_id"`
	Role               domain.Role `json:"role"`
	VerificationStatus string      `json:"verification_status"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() domain.Principal {
	return domain.Principal{Role: c.Role, ID: c.UserID}
}

func GenerateAccessToken(cfg *config.JWTConfig, userID uint, role domain.Role, verificationStatus string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:             userID,
		Role:               role,
		VerificationStatus: verificationStatus,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

var ErrInvalidToken = errors.New("invalid token")

func ParseAccessToken(cfg *config.JWTConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, known := domain.ParseRole(string(claims.Role)); !known {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

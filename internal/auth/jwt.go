package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lilights/tunedeck/internal/playlist"
)

type TokenClaims struct {
	UserID    string `json:"uid"`
	Username  string `json:"username"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(u playlist.User) (string, error) {
	now := time.Now()

	claims := &TokenClaims{
		UserID:    u.ID,
		Username:  u.Username,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *Server) parseToken(raw string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.TokenType != "access" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

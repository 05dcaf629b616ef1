package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/core/catalog"
)

type Service struct {
	config *config.JWTConfig
}

func NewService(cfg *config.JWTConfig) *Service {
	return &Service{config: cfg}
}

// ValidateToken verifies an HS256 token and returns the caller it identifies.
func (s *Service) ValidateToken(tokenString string) (*Client, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithLeeway(s.config.Leeway), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, unauthorized(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, unauthorized(errors.New("invalid token"))
	}
	if claims.UserID == uuid.Nil {
		return nil, unauthorized(errors.New("token has no user_id"))
	}

	return &Client{
		UserID:         claims.UserID,
		OrganizationID: claims.OrganizationID,
		Permissions:    claims.Permissions,
	}, nil
}

// IssueToken signs a token for c valid for ttl. Used by tooling and tests;
// the service itself never hands out tokens.
func (s *Service) IssueToken(c *Client, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:         c.UserID,
		OrganizationID: c.OrganizationID,
		Permissions:    c.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func unauthorized(err error) error {
	return &catalog.Error{Code: catalog.EUnauthorized, Op: "auth.ValidateToken", Msg: "invalid or expired token", Err: err}
}

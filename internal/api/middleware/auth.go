package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/auth"
	"github.com/metacatalog/catalog/internal/core/catalog"
)

const ContextClient = "client"

// TokenValidator turns a bearer token into the caller it identifies.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Client, error)
}

type AuthMiddleware struct {
	validator TokenValidator
}

func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			abort(c, unauthorized("invalid authorization header"))
			return
		}

		client, err := m.validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(ContextClient, client)
		c.Next()
	}
}

func (m *AuthMiddleware) RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetClient(c).HasPermission(permission) {
			abort(c, &catalog.Error{
				Code:   catalog.EForbidden,
				Msg:    "permission denied",
				Detail: map[string]any{"permission": permission},
			})
			return
		}
		c.Next()
	}
}

// GetClient returns the authenticated caller, or nil outside Authenticate.
func GetClient(c *gin.Context) *auth.Client {
	val, exists := c.Get(ContextClient)
	if !exists {
		return nil
	}
	client, _ := val.(*auth.Client)
	return client
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	client := GetClient(c)
	if client == nil {
		return uuid.Nil, false
	}
	return client.UserID, true
}

func unauthorized(msg string) error {
	return &catalog.Error{Code: catalog.EUnauthorized, Msg: msg}
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

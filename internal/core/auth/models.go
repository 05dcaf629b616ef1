package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PermSuperuserRead gates every catalog administration endpoint.
const PermSuperuserRead = "platform:superuser:read"

// Claims is the token payload issued by the platform identity service.
type Claims struct {
	UserID         uuid.UUID  `json:"user_id"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	Permissions    []string   `json:"permissions"`
	jwt.RegisteredClaims
}

// Client is the authenticated caller attached to a request.
type Client struct {
	UserID         uuid.UUID
	OrganizationID *uuid.UUID
	Permissions    []string
}

func (c *Client) HasPermission(permission string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Permissions, permission)
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/core/catalog"
)

func newTestService() *Service {
	return NewService(&config.JWTConfig{Secret: "test-secret", Leeway: time.Second})
}

func TestValidateToken_RoundTrip(t *testing.T) {
	svc := newTestService()
	orgID := uuid.New()
	client := &Client{
		UserID:         uuid.New(),
		OrganizationID: &orgID,
		Permissions:    []string{PermSuperuserRead},
	}

	token, err := svc.IssueToken(client, time.Minute)
	require.NoError(t, err)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, client, got)
	assert.True(t, got.HasPermission(PermSuperuserRead))
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	expired, err := svc.IssueToken(&Client{UserID: userID}, -time.Hour)
	require.NoError(t, err)

	wrongKey, err := NewService(&config.JWTConfig{Secret: "other"}).IssueToken(&Client{UserID: userID}, time.Minute)
	require.NoError(t, err)

	noUser, err := svc.IssueToken(&Client{}, time.Minute)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: userID}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":        expired,
		"wrong key":      wrongKey,
		"missing user":   noUser,
		"none algorithm": none,
		"garbage":        "not-a-token",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, catalog.ErrUnauthorized)
		})
	}
}

func TestClient_HasPermission(t *testing.T) {
	var nilClient *Client
	assert.False(t, nilClient.HasPermission(PermSuperuserRead))
	assert.False(t, (&Client{Permissions: []string{"metrics:read"}}).HasPermission(PermSuperuserRead))
}

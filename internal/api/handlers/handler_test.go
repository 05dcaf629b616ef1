package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/api/middleware"
	"github.com/metacatalog/catalog/internal/core/auth"
	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/event"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func createTestContext(target string) *gin.Context {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, target, nil)
	return c
}

func TestFindOptions(t *testing.T) {
	cfg := config.PaginationConfig{DefaultLimit: 100, MaxLimit: 1000}

	tests := []struct {
		name    string
		query   string
		want    catalog.FindOptions
		wantErr bool
	}{
		{name: "defaults", query: "", want: catalog.FindOptions{Limit: 100}},
		{
			name:  "all set",
			query: "?skip=20&limit=10&sortField=name&sortMethod=DESC&withDeleted=true",
			want:  catalog.FindOptions{Skip: 20, Limit: 10, SortField: "name", SortMethod: catalog.SortDesc, WithDeleted: true},
		},
		{name: "limit clamped high", query: "?limit=5000", want: catalog.FindOptions{Limit: 1000}},
		{name: "limit clamped low", query: "?limit=0", want: catalog.FindOptions{Limit: 1}},
		{name: "negative skip", query: "?skip=-1", wantErr: true},
		{name: "bad limit", query: "?limit=ten", wantErr: true},
		{name: "bad sort method", query: "?sortMethod=sideways", wantErr: true},
		{name: "bad withDeleted", query: "?withDeleted=maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findOptions(createTestContext("/search"+tt.query), cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, catalog.ErrInvalid)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("findOptions() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBindJSON_KeepsIntegerPrecision(t *testing.T) {
	c := createTestContext("/metrics")
	c.Request = httptest.NewRequest(http.MethodPost, "/metrics",
		strings.NewReader(`{"name":"Energy","metaData":{"externalRef":9007199254740993,"ratio":0.25}}`))

	var req struct {
		Name     string           `json:"name" binding:"required"`
		MetaData catalog.Metadata `json:"metaData"`
	}
	require.NoError(t, bindJSON(c, &req))
	assert.Equal(t, json.Number("9007199254740993"), req.MetaData["externalRef"])

	raw, err := json.Marshal(req.MetaData)
	require.NoError(t, err)
	assert.Equal(t, `{"externalRef":9007199254740993,"ratio":0.25}`, string(raw))
}

func TestBindJSON_Validates(t *testing.T) {
	c := createTestContext("/metrics")
	c.Request = httptest.NewRequest(http.MethodPost, "/metrics", strings.NewReader(`{"metaData":{}}`))

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	assert.ErrorIs(t, bindJSON(c, &req), catalog.ErrInvalid)
}

func TestBindFilter_EmptyBody(t *testing.T) {
	c := createTestContext("/search")
	c.Request = httptest.NewRequest(http.MethodPost, "/search", http.NoBody)

	var filter struct {
		Name *string `json:"name"`
	}
	require.NoError(t, bindFilter(c, &filter))
	assert.Nil(t, filter.Name)
}

func TestQueryBool(t *testing.T) {
	tests := []struct {
		query   string
		want    bool
		wantErr bool
	}{
		{query: "", want: false},
		{query: "?withDeleted=true", want: true},
		{query: "?withDeleted=0", want: false},
		{query: "?withDeleted=yes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := queryBool(createTestContext("/x"+tt.query), "withDeleted")
			if tt.wantErr {
				assert.ErrorIs(t, err, catalog.ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseID(t *testing.T) {
	c := createTestContext("/x")
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	_, err := parseID(c)
	assert.ErrorIs(t, err, catalog.ErrInvalid)

	id := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	got, err := parseID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

type recorderFunc func(ctx context.Context, eventType catalog.EventType, nodeType catalog.EntityType,
	nodeID uuid.UUID, userID *uuid.UUID, newData any) (*event.Event, error)

func (f recorderFunc) Record(ctx context.Context, eventType catalog.EventType, nodeType catalog.EntityType,
	nodeID uuid.UUID, userID *uuid.UUID, newData any) (*event.Event, error) {
	return f(ctx, eventType, nodeType, nodeID, userID, newData)
}

func TestAudit_Record(t *testing.T) {
	userID := uuid.New()
	nodeID := uuid.New()

	var gotUser *uuid.UUID
	var calls int
	a := NewAudit(recorderFunc(func(_ context.Context, et catalog.EventType, nt catalog.EntityType,
		id uuid.UUID, uid *uuid.UUID, _ any) (*event.Event, error) {
		calls++
		gotUser = uid
		assert.Equal(t, catalog.EventCreated, et)
		assert.Equal(t, catalog.EntityMetric, nt)
		assert.Equal(t, nodeID, id)
		return nil, errors.New("insert failed")
	}), zaptest.NewLogger(t))

	c := createTestContext("/x")
	c.Set(middleware.ContextClient, &auth.Client{UserID: userID})

	a.Record(c, catalog.EventCreated, catalog.EntityMetric, nodeID, gin.H{"name": "x"})

	assert.Equal(t, 1, calls)
	require.NotNil(t, gotUser)
	assert.Equal(t, userID, *gotUser)

	var nilAudit *Audit
	nilAudit.Record(c, catalog.EventCreated, catalog.EntityMetric, nodeID, nil)
}

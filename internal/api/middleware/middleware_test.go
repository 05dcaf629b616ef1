package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/metacatalog/catalog/internal/core/auth"
	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator map[string]*auth.Client

func (v stubValidator) ValidateToken(token string) (*auth.Client, error) {
	if c, ok := v[token]; ok {
		return c, nil
	}
	return nil, &catalog.Error{Code: catalog.EUnauthorized, Msg: "invalid or expired token"}
}

func newTestEngine(t *testing.T, hideDetail bool, handlers ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.Use(RequestLogger(zaptest.NewLogger(t)), ErrorHandler(zaptest.NewLogger(t), hideDetail))
	r.GET("/test", handlers...)
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticate(t *testing.T) {
	admin := &auth.Client{UserID: uuid.New(), Permissions: []string{auth.PermSuperuserRead}}
	reader := &auth.Client{UserID: uuid.New()}
	m := NewAuthMiddleware(stubValidator{"admin": admin, "reader": reader})

	ok := func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user": id.String()})
	}
	r := newTestEngine(t, false, m.Authenticate(), m.RequirePermission(auth.PermSuperuserRead), ok)

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized, code: catalog.EUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, code: catalog.EUnauthorized},
		{name: "unknown token", header: "Bearer nope", status: http.StatusUnauthorized, code: catalog.EUnauthorized},
		{name: "missing permission", header: "Bearer reader", status: http.StatusForbidden, code: catalog.EForbidden},
		{name: "admin", header: "bearer admin", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			if tt.code != "" {
				assert.Equal(t, tt.code, body["code"])
			} else {
				assert.Equal(t, admin.UserID.String(), body["user"])
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	invalid := &catalog.Error{
		Code:   catalog.EInvalid,
		Msg:    "invalid metadata keys",
		Detail: map[string]any{"invalid_keys": []string{"unknown_prop"}},
	}

	t.Run("detail shown outside production", func(t *testing.T) {
		r := newTestEngine(t, false, func(c *gin.Context) { _ = c.Error(invalid) })
		w := serve(r, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "invalid metadata keys", body["message"])
		assert.Equal(t, map[string]any{"invalid_keys": []any{"unknown_prop"}}, body["detail"])
	})

	t.Run("detail hidden in production", func(t *testing.T) {
		r := newTestEngine(t, true, func(c *gin.Context) { _ = c.Error(invalid) })
		body := decode(t, serve(r, ""))
		assert.NotContains(t, body, "detail")
	})

	t.Run("foreign errors are internal", func(t *testing.T) {
		r := newTestEngine(t, true, func(c *gin.Context) { _ = c.Error(errors.New("pq: connection reset")) })
		w := serve(r, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, map[string]any{"code": catalog.EInternal, "message": "internal server error"}, decode(t, w))
	})
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusCode(catalog.ENotFound))
	assert.Equal(t, http.StatusConflict, StatusCode(catalog.EConflict))
	assert.Equal(t, http.StatusInternalServerError, StatusCode("unknown"))
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewHTTPMetrics(reg)

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+uuid.NewString(), nil))
	}

	count, err := testutil.GatherAndCount(reg, "catalog_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClientIP(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	c.Request.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")

	assert.Equal(t, "10.0.0.1", clientIP(c))
}

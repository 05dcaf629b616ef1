package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/api/middleware"
	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/event"
	"github.com/metacatalog/catalog/internal/logger"
)

// EventRecorder appends audit events.
type EventRecorder interface {
	Record(ctx context.Context, eventType catalog.EventType, nodeType catalog.EntityType,
		nodeID uuid.UUID, userID *uuid.UUID, newData any) (*event.Event, error)
}

// Audit records mutations. The mutation has already been committed, so a
// failure here is logged and otherwise ignored.
type Audit struct {
	recorder EventRecorder
	logger   *zap.Logger
}

func NewAudit(recorder EventRecorder, logger *zap.Logger) *Audit {
	return &Audit{recorder: recorder, logger: logger}
}

func (a *Audit) Record(c *gin.Context, eventType catalog.EventType, nodeType catalog.EntityType, nodeID uuid.UUID, newData any) {
	if a == nil || a.recorder == nil {
		return
	}

	var userID *uuid.UUID
	if id, ok := middleware.GetUserID(c); ok {
		userID = &id
	}

	ctx := c.Request.Context()
	if _, err := a.recorder.Record(ctx, eventType, nodeType, nodeID, userID, newData); err != nil {
		logger.FromContext(ctx, a.logger).Warn("failed to record event",
			zap.String("event_type", string(eventType)),
			zap.String("node_type", string(nodeType)),
			zap.Stringer("node_id", nodeID),
			zap.Error(err),
		)
	}
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, catalog.Invalid("", "invalid id", map[string]any{"id": raw})
	}
	return id, nil
}

// numberJSON is binding.JSON with UseNumber, so metadata integers beyond
// 2^53 reach storage unchanged.
type numberJSON struct{}

func (numberJSON) Name() string { return "json" }

func (numberJSON) Bind(req *http.Request, obj any) error {
	if req == nil || req.Body == nil {
		return errors.New("invalid request")
	}
	dec := json.NewDecoder(req.Body)
	dec.UseNumber()
	if err := dec.Decode(obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}

// bindJSON decodes the request body and converts binding failures to EInvalid.
func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindWith(v, numberJSON{}); err != nil {
		return catalog.Invalid("", err.Error(), nil)
	}
	return nil
}

// bindFilter decodes an optional search body; an empty body means no filter.
func bindFilter(c *gin.Context, v any) error {
	if err := c.ShouldBindWith(v, numberJSON{}); err != nil && !errors.Is(err, io.EOF) {
		return catalog.Invalid("", err.Error(), nil)
	}
	return nil
}

// findOptions reads skip, limit, sortField, sortMethod and withDeleted from the
// query string. limit is clamped to [1, MaxLimit].
func findOptions(c *gin.Context, cfg config.PaginationConfig) (catalog.FindOptions, error) {
	opts := catalog.FindOptions{
		Limit:     cfg.DefaultLimit,
		SortField: c.Query("sortField"),
	}

	if raw := c.Query("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return opts, catalog.Invalid("", "skip must be a non-negative integer", map[string]any{"skip": raw})
		}
		opts.Skip = skip
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return opts, catalog.Invalid("", "limit must be an integer", map[string]any{"limit": raw})
		}
		opts.Limit = min(max(limit, 1), cfg.MaxLimit)
	}

	switch method := catalog.SortMethod(strings.ToLower(c.Query("sortMethod"))); method {
	case "", catalog.SortAsc, catalog.SortDesc:
		opts.SortMethod = method
	default:
		return opts, catalog.Invalid("", "sortMethod must be asc or desc", map[string]any{"sortMethod": c.Query("sortMethod")})
	}

	withDeleted, err := queryBool(c, "withDeleted")
	if err != nil {
		return opts, err
	}
	opts.WithDeleted = withDeleted

	return opts, nil
}

// queryBool reads an optional boolean query parameter; absent means false.
func queryBool(c *gin.Context, key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, catalog.Invalid("", key+" must be a boolean", map[string]any{key: raw})
	}
	return b, nil
}

// fail attaches err for middleware.ErrorHandler to render.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

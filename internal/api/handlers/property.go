package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/property"
)

// MetadataValidator checks metadata against the registry: keys by name, then
// values against the generated schema.
type MetadataValidator interface {
	Validate(ctx context.Context, entityType catalog.EntityType, md catalog.Metadata) error
}

type SchemaProvider interface {
	Schema(ctx context.Context, entityType catalog.EntityType) (map[string]any, error)
	CheckValues(ctx context.Context, entityType catalog.EntityType, md catalog.Metadata) error
}

type ValidateMetadataRequest struct {
	EntityType catalog.EntityType `json:"entityType" binding:"required"`
	MetaData   catalog.Metadata   `json:"metaData"`
}

type PropertyHandler struct {
	propertyService *property.Service
	keys            MetadataValidator
	schemas         SchemaProvider
	audit           *Audit
	pagination      config.PaginationConfig
}

func NewPropertyHandler(propertyService *property.Service, keys MetadataValidator, schemas SchemaProvider,
	audit *Audit, pagination config.PaginationConfig) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		keys:            keys,
		schemas:         schemas,
		audit:           audit,
		pagination:      pagination,
	}
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var req property.CreatePropertyRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	p, err := h.propertyService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventCreated, catalog.EntityProperty, p.ID, p)
	c.JSON(http.StatusCreated, p)
}

func (h *PropertyHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	withDeleted, err := queryBool(c, "withDeleted")
	if err != nil {
		fail(c, err)
		return
	}

	p, err := h.propertyService.Get(c.Request.Context(), id, withDeleted)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *PropertyHandler) Search(c *gin.Context) {
	opts, err := findOptions(c, h.pagination)
	if err != nil {
		fail(c, err)
		return
	}

	var filter property.Filter
	if err := bindFilter(c, &filter); err != nil {
		fail(c, err)
		return
	}

	props, err := h.propertyService.Find(c.Request.Context(), filter, opts)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, property.ListPropertiesResponse{Properties: props, Total: len(props)})
}

func (h *PropertyHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req property.UpdatePropertyRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	p, err := h.propertyService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventUpdated, catalog.EntityProperty, p.ID, p)
	c.JSON(http.StatusOK, p)
}

// Delete soft-deletes by default; ?hard=true removes the row.
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	hard, err := queryBool(c, "hard")
	if err != nil {
		fail(c, err)
		return
	}

	p, err := h.propertyService.Delete(c.Request.Context(), id, hard)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventDeleted, catalog.EntityProperty, p.ID, p)
	c.JSON(http.StatusOK, p)
}

// Schema returns the JSON Schema generated from an entity type's properties.
func (h *PropertyHandler) Schema(c *gin.Context) {
	entityType, err := catalog.ParseEntityType(c.Param("entityType"))
	if err != nil {
		fail(c, err)
		return
	}

	schema, err := h.schemas.Schema(c.Request.Context(), entityType)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, schema)
}

func (h *PropertyHandler) Validate(c *gin.Context) {
	var req ValidateMetadataRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if !req.EntityType.Valid() {
		_, err := catalog.ParseEntityType(string(req.EntityType))
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.keys.Validate(ctx, req.EntityType, req.MetaData); err != nil {
		fail(c, err)
		return
	}
	if err := h.schemas.CheckValues(ctx, req.EntityType, req.MetaData); err != nil {
		fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/metricset"
)

type MetricSetHandler struct {
	metricSetService *metricset.Service
	audit            *Audit
	pagination       config.PaginationConfig
}

func NewMetricSetHandler(metricSetService *metricset.Service, audit *Audit, pagination config.PaginationConfig) *MetricSetHandler {
	return &MetricSetHandler{metricSetService: metricSetService, audit: audit, pagination: pagination}
}

func (h *MetricSetHandler) Create(c *gin.Context) {
	var req metricset.CreateMetricSetRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	ms, err := h.metricSetService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventCreated, catalog.EntityMetricSet, ms.ID, ms)
	c.JSON(http.StatusCreated, ms)
}

func (h *MetricSetHandler) Get(c *gin.Context) {
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

	ms, err := h.metricSetService.Get(c.Request.Context(), id, withDeleted)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ms)
}

func (h *MetricSetHandler) Search(c *gin.Context) {
	opts, err := findOptions(c, h.pagination)
	if err != nil {
		fail(c, err)
		return
	}

	var filter metricset.Filter
	if err := bindFilter(c, &filter); err != nil {
		fail(c, err)
		return
	}

	sets, err := h.metricSetService.Find(c.Request.Context(), filter, opts)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, metricset.ListMetricSetsResponse{MetricSets: sets, Total: len(sets)})
}

func (h *MetricSetHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req metricset.UpdateMetricSetRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	ms, err := h.metricSetService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventUpdated, catalog.EntityMetricSet, ms.ID, ms)
	c.JSON(http.StatusOK, ms)
}

func (h *MetricSetHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	ms, err := h.metricSetService.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventDeleted, catalog.EntityMetricSet, ms.ID, ms)
	c.JSON(http.StatusOK, ms)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/metric"
)

type MetricHandler struct {
	metricService *metric.Service
	audit         *Audit
	pagination    config.PaginationConfig
}

func NewMetricHandler(metricService *metric.Service, audit *Audit, pagination config.PaginationConfig) *MetricHandler {
	return &MetricHandler{metricService: metricService, audit: audit, pagination: pagination}
}

func (h *MetricHandler) Create(c *gin.Context) {
	var req metric.CreateMetricRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	m, err := h.metricService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventCreated, catalog.EntityMetric, m.ID, m)
	c.JSON(http.StatusCreated, m)
}

func (h *MetricHandler) Get(c *gin.Context) {
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

	m, err := h.metricService.Get(c.Request.Context(), id, withDeleted)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

func (h *MetricHandler) Search(c *gin.Context) {
	opts, err := findOptions(c, h.pagination)
	if err != nil {
		fail(c, err)
		return
	}

	var filter metric.Filter
	if err := bindFilter(c, &filter); err != nil {
		fail(c, err)
		return
	}

	metrics, err := h.metricService.Find(c.Request.Context(), filter, opts)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, metric.ListMetricsResponse{Metrics: metrics, Total: len(metrics)})
}

func (h *MetricHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req metric.UpdateMetricRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	m, err := h.metricService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventUpdated, catalog.EntityMetric, m.ID, m)
	c.JSON(http.StatusOK, m)
}

func (h *MetricHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	m, err := h.metricService.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventDeleted, catalog.EntityMetric, m.ID, m)
	c.JSON(http.StatusOK, m)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/datametric"
)

type DataMetricHandler struct {
	dataMetricService *datametric.Service
	audit             *Audit
	pagination        config.PaginationConfig
}

func NewDataMetricHandler(dataMetricService *datametric.Service, audit *Audit, pagination config.PaginationConfig) *DataMetricHandler {
	return &DataMetricHandler{dataMetricService: dataMetricService, audit: audit, pagination: pagination}
}

func (h *DataMetricHandler) Create(c *gin.Context) {
	var req datametric.CreateDataMetricRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	dm, err := h.dataMetricService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventCreated, catalog.EntityDataMetric, dm.ID, dm)
	c.JSON(http.StatusCreated, dm)
}

func (h *DataMetricHandler) Get(c *gin.Context) {
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

	dm, err := h.dataMetricService.Get(c.Request.Context(), id, withDeleted)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dm)
}

func (h *DataMetricHandler) Search(c *gin.Context) {
	opts, err := findOptions(c, h.pagination)
	if err != nil {
		fail(c, err)
		return
	}

	var filter datametric.Filter
	if err := bindFilter(c, &filter); err != nil {
		fail(c, err)
		return
	}

	dataMetrics, err := h.dataMetricService.Find(c.Request.Context(), filter, opts)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, datametric.ListDataMetricsResponse{DataMetrics: dataMetrics, Total: len(dataMetrics)})
}

func (h *DataMetricHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req datametric.UpdateDataMetricRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	dm, err := h.dataMetricService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventUpdated, catalog.EntityDataMetric, dm.ID, dm)
	c.JSON(http.StatusOK, dm)
}

func (h *DataMetricHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	dm, err := h.dataMetricService.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventDeleted, catalog.EntityDataMetric, dm.ID, dm)
	c.JSON(http.StatusOK, dm)
}

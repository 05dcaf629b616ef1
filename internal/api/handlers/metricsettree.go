package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/metricsettree"
)

type MetricSetTreeHandler struct {
	treeService *metricsettree.Service
	audit       *Audit
	pagination  config.PaginationConfig
}

func NewMetricSetTreeHandler(treeService *metricsettree.Service, audit *Audit, pagination config.PaginationConfig) *MetricSetTreeHandler {
	return &MetricSetTreeHandler{treeService: treeService, audit: audit, pagination: pagination}
}

func (h *MetricSetTreeHandler) Create(c *gin.Context) {
	var req metricsettree.CreateNodeRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	n, err := h.treeService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventCreated, catalog.EntityMetricSetTree, n.ID, n)
	c.JSON(http.StatusCreated, n)
}

func (h *MetricSetTreeHandler) Get(c *gin.Context) {
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

	n, err := h.treeService.Get(c.Request.Context(), id, withDeleted)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, n)
}

func (h *MetricSetTreeHandler) Search(c *gin.Context) {
	opts, err := findOptions(c, h.pagination)
	if err != nil {
		fail(c, err)
		return
	}

	var filter metricsettree.Filter
	if err := bindFilter(c, &filter); err != nil {
		fail(c, err)
		return
	}

	nodes, err := h.treeService.Find(c.Request.Context(), filter, opts)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, metricsettree.ListNodesResponse{MetricSetTrees: nodes, Total: len(nodes)})
}

func (h *MetricSetTreeHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req metricsettree.UpdateNodeRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	n, err := h.treeService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventUpdated, catalog.EntityMetricSetTree, n.ID, n)
	c.JSON(http.StatusOK, n)
}

func (h *MetricSetTreeHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	n, err := h.treeService.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	h.audit.Record(c, catalog.EventDeleted, catalog.EntityMetricSetTree, n.ID, n)
	c.JSON(http.StatusOK, n)
}

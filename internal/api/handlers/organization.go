package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/core/organization"
)

type OrganizationHandler struct {
	organizationService *organization.Service
	pagination          config.PaginationConfig
}

func NewOrganizationHandler(organizationService *organization.Service, pagination config.PaginationConfig) *OrganizationHandler {
	return &OrganizationHandler{organizationService: organizationService, pagination: pagination}
}

func (h *OrganizationHandler) Create(c *gin.Context) {
	var req organization.CreateOrganizationRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	org, err := h.organizationService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

func (h *OrganizationHandler) Get(c *gin.Context) {
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

	org, err := h.organizationService.Get(c.Request.Context(), id, withDeleted)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandler) Search(c *gin.Context) {
	opts, err := findOptions(c, h.pagination)
	if err != nil {
		fail(c, err)
		return
	}

	var filter organization.Filter
	if err := bindFilter(c, &filter); err != nil {
		fail(c, err)
		return
	}

	orgs, err := h.organizationService.Find(c.Request.Context(), filter, opts)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, organization.ListOrganizationsResponse{Organizations: orgs, Total: len(orgs)})
}

func (h *OrganizationHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req organization.UpdateOrganizationRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	org, err := h.organizationService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	org, err := h.organizationService.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

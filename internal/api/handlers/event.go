package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/core/event"
)

type EventHandler struct {
	eventService *event.Service
	pagination   config.PaginationConfig
}

func NewEventHandler(eventService *event.Service, pagination config.PaginationConfig) *EventHandler {
	return &EventHandler{eventService: eventService, pagination: pagination}
}

func (h *EventHandler) Get(c *gin.Context) {
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

	e, err := h.eventService.Get(c.Request.Context(), id, withDeleted)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, e)
}

func (h *EventHandler) Search(c *gin.Context) {
	opts, err := findOptions(c, h.pagination)
	if err != nil {
		fail(c, err)
		return
	}

	var filter event.Filter
	if err := bindFilter(c, &filter); err != nil {
		fail(c, err)
		return
	}

	events, err := h.eventService.Find(c.Request.Context(), filter, opts)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, event.ListEventsResponse{Events: events, Total: len(events)})
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	e, err := h.eventService.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, e)
}

package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

// Event is one entry of the audit log.
type Event struct {
	ID        uuid.UUID          `json:"id"`
	EventType catalog.EventType  `json:"eventType"`
	NodeType  catalog.EntityType `json:"nodeType"`
	NodeID    uuid.UUID          `json:"nodeId"`
	UserID    *uuid.UUID         `json:"userId,omitempty"`
	NewData   map[string]any     `json:"newData"`
	Timestamp time.Time          `json:"timestamp"`
	DeletedAt *time.Time         `json:"deletedAt,omitempty"`
}

type Filter struct {
	EventType *catalog.EventType  `json:"eventType"`
	NodeType  *catalog.EntityType `json:"nodeType"`
	NodeID    *uuid.UUID          `json:"nodeId"`
	UserID    *uuid.UUID          `json:"userId"`
}

type ListEventsResponse struct {
	Events []*Event `json:"events"`
	Total  int      `json:"total"`
}

package catalog

import (
	"fmt"
	"strings"
	"time"
)

// EntityType is the namespace a property or a metadata mapping belongs to.
type EntityType string

const (
	EntityMetric        EntityType = "metric"
	EntityMetricSet     EntityType = "metric_set"
	EntityMetricSetTree EntityType = "metric_set_tree"
	EntityDataMetric    EntityType = "data_metric"
	EntityProperty      EntityType = "property"
)

var EntityTypes = []EntityType{
	EntityMetric,
	EntityMetricSet,
	EntityMetricSetTree,
	EntityDataMetric,
	EntityProperty,
}

func (e EntityType) Valid() bool {
	for _, t := range EntityTypes {
		if t == e {
			return true
		}
	}
	return false
}

func ParseEntityType(s string) (EntityType, error) {
	e := EntityType(s)
	if !e.Valid() {
		return "", &Error{
			Code:   EInvalid,
			Msg:    fmt.Sprintf("unknown entity type %q", s),
			Detail: map[string]any{"entity_type": s},
		}
	}
	return e, nil
}

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

type SortMethod string

const (
	SortAsc  SortMethod = "asc"
	SortDesc SortMethod = "desc"
)

// FindOptions controls paging, ordering and soft-delete visibility of list queries.
// A non-positive Limit means no limit.
type FindOptions struct {
	Skip        int
	Limit       int
	SortField   string
	SortMethod  SortMethod
	WithDeleted bool
}

// OrderBy validates SortField against the allowed columns and renders an
// ORDER BY expression. An empty SortField falls back to def.
func (o FindOptions) OrderBy(allowed map[string]string, def string) (string, error) {
	if o.SortField == "" {
		return def, nil
	}
	column, ok := allowed[o.SortField]
	if !ok {
		fields := make([]string, 0, len(allowed))
		for f := range allowed {
			fields = append(fields, f)
		}
		return "", &Error{
			Code:   EInvalid,
			Msg:    fmt.Sprintf("invalid sort field %q", o.SortField),
			Detail: map[string]any{"sort_field": o.SortField, "valid_fields": sortedStrings(fields)},
		}
	}
	dir := "ASC"
	if strings.EqualFold(string(o.SortMethod), string(SortDesc)) {
		dir = "DESC"
	}
	return column + " " + dir, nil
}

// Timestamps are the lifecycle fields shared by every stored record.
type Timestamps struct {
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Metadata is a schema-less bag keyed by property name (API side) or
// property id (storage side).
type Metadata map[string]any

// Status is the deployment state of metrics and metric sets.
type Status string

const (
	StatusDeployed Status = "deployed"
	StatusNotUsed  Status = "not_used"
)

func (s Status) Valid() bool {
	return s == StatusDeployed || s == StatusNotUsed
}

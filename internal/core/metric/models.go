package metric

import (
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

type Metric struct {
	ID              uuid.UUID        `json:"id"`
	MetricSetID     uuid.UUID        `json:"metricSetId"`
	ParentSectionID *uuid.UUID       `json:"parentSectionId,omitempty"`
	ParentMetricID  *uuid.UUID       `json:"parentMetricId,omitempty"`
	DataMetricID    *uuid.UUID       `json:"dataMetricId,omitempty"`
	Status          catalog.Status   `json:"status"`
	Name            string           `json:"name"`
	NameSuffix      *string          `json:"nameSuffix,omitempty"`
	MetaData        catalog.Metadata `json:"metaData"`
	catalog.Timestamps
}

type CreateMetricRequest struct {
	MetricSetID     uuid.UUID        `json:"metricSetId" binding:"required"`
	ParentSectionID *uuid.UUID       `json:"parentSectionId"`
	ParentMetricID  *uuid.UUID       `json:"parentMetricId"`
	DataMetricID    *uuid.UUID       `json:"dataMetricId"`
	Status          catalog.Status   `json:"status" binding:"required"`
	Name            string           `json:"name" binding:"required,max=100"`
	NameSuffix      *string          `json:"nameSuffix" binding:"omitempty,max=50"`
	MetaData        catalog.Metadata `json:"metaData"`
}

// UpdateMetricRequest is a partial patch. A non-nil MetaData replaces the
// stored mapping as a whole.
type UpdateMetricRequest struct {
	MetricSetID     *uuid.UUID       `json:"metricSetId"`
	ParentSectionID *uuid.UUID       `json:"parentSectionId"`
	ParentMetricID  *uuid.UUID       `json:"parentMetricId"`
	DataMetricID    *uuid.UUID       `json:"dataMetricId"`
	Status          *catalog.Status  `json:"status"`
	Name            *string          `json:"name" binding:"omitempty,max=100"`
	NameSuffix      *string          `json:"nameSuffix" binding:"omitempty,max=50"`
	MetaData        catalog.Metadata `json:"metaData"`
}

type Filter struct {
	MetricSetID     *uuid.UUID      `json:"metricSetId"`
	ParentSectionID *uuid.UUID      `json:"parentSectionId"`
	ParentMetricID  *uuid.UUID      `json:"parentMetricId"`
	DataMetricID    *uuid.UUID      `json:"dataMetricId"`
	Status          *catalog.Status `json:"status"`
	Name            *string         `json:"name"`
}

type ListMetricsResponse struct {
	Metrics []*Metric `json:"metrics"`
	Total   int       `json:"total"`
}

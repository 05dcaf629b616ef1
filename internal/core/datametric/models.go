package datametric

import (
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

type DataMetric struct {
	ID         uuid.UUID        `json:"id"`
	DataID     uuid.UUID        `json:"dataId"`
	MetricType string           `json:"metricType"`
	Name       string           `json:"name"`
	MetaData   catalog.Metadata `json:"metaData"`
	catalog.Timestamps
}

type CreateDataMetricRequest struct {
	DataID     uuid.UUID        `json:"dataId" binding:"required"`
	MetricType string           `json:"metricType" binding:"required,max=50"`
	Name       string           `json:"name" binding:"required,max=100"`
	MetaData   catalog.Metadata `json:"metaData"`
}

type UpdateDataMetricRequest struct {
	DataID     *uuid.UUID       `json:"dataId"`
	MetricType *string          `json:"metricType" binding:"omitempty,max=50"`
	Name       *string          `json:"name" binding:"omitempty,max=100"`
	MetaData   catalog.Metadata `json:"metaData"`
}

type Filter struct {
	DataID     *uuid.UUID `json:"dataId"`
	MetricType *string    `json:"metricType"`
	Name       *string    `json:"name"`
}

type ListDataMetricsResponse struct {
	DataMetrics []*DataMetric `json:"dataMetrics"`
	Total       int           `json:"total"`
}

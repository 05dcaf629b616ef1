package metricset

import (
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

// Placement is where a metric set is surfaced in the product.
type Placement string

const (
	PlacementESGInsights Placement = "datasets/esgInsights"
	PlacementSDGs        Placement = "datasets/sdgs"
	PlacementRegulatory  Placement = "datasets/regulatory"
	PlacementMatter      Placement = "collections/matter"
)

var Placements = []Placement{PlacementESGInsights, PlacementSDGs, PlacementRegulatory, PlacementMatter}

func (p Placement) Valid() bool {
	for _, v := range Placements {
		if v == p {
			return true
		}
	}
	return false
}

type MetricSet struct {
	ID        uuid.UUID        `json:"id"`
	Status    catalog.Status   `json:"status"`
	ShortName string           `json:"shortName"`
	Placement Placement        `json:"placement"`
	MetaData  catalog.Metadata `json:"metaData"`
	catalog.Timestamps
}

type CreateMetricSetRequest struct {
	Status    catalog.Status   `json:"status" binding:"required"`
	ShortName string           `json:"shortName" binding:"required,max=100"`
	Placement Placement        `json:"placement" binding:"required"`
	MetaData  catalog.Metadata `json:"metaData"`
}

type UpdateMetricSetRequest struct {
	Status    *catalog.Status  `json:"status"`
	ShortName *string          `json:"shortName" binding:"omitempty,max=100"`
	Placement *Placement       `json:"placement"`
	MetaData  catalog.Metadata `json:"metaData"`
}

type Filter struct {
	Status    *catalog.Status `json:"status"`
	ShortName *string         `json:"shortName"`
	Placement *Placement      `json:"placement"`
}

type ListMetricSetsResponse struct {
	MetricSets []*MetricSet `json:"metricSets"`
	Total      int          `json:"total"`
}

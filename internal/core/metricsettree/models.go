package metricsettree

import (
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

type NodeType string

const (
	NodeRoot     NodeType = "root"
	NodeCategory NodeType = "category"
	NodeMetric   NodeType = "metric"
	NodeSection  NodeType = "section"
	NodeChart    NodeType = "chart"
)

var NodeTypes = []NodeType{NodeRoot, NodeCategory, NodeMetric, NodeSection, NodeChart}

func (n NodeType) Valid() bool {
	for _, v := range NodeTypes {
		if v == n {
			return true
		}
	}
	return false
}

// Node is one node of a metric set's hierarchy.
type Node struct {
	ID              uuid.UUID        `json:"id"`
	MetricSetID     uuid.UUID        `json:"metricSetId"`
	NodeType        NodeType         `json:"nodeType"`
	NodeDepth       int              `json:"nodeDepth"`
	NodeName        string           `json:"nodeName"`
	NodeDescription *string          `json:"nodeDescription,omitempty"`
	NodeReferenceID *string          `json:"nodeReferenceId,omitempty"`
	NodeSpecial     *string          `json:"nodeSpecial,omitempty"`
	MetaData        catalog.Metadata `json:"metaData"`
	catalog.Timestamps
}

type CreateNodeRequest struct {
	MetricSetID     uuid.UUID        `json:"metricSetId" binding:"required"`
	NodeType        NodeType         `json:"nodeType" binding:"required"`
	NodeDepth       int              `json:"nodeDepth" binding:"min=0"`
	NodeName        string           `json:"nodeName" binding:"required,max=100"`
	NodeDescription *string          `json:"nodeDescription"`
	NodeReferenceID *string          `json:"nodeReferenceId"`
	NodeSpecial     *string          `json:"nodeSpecial"`
	MetaData        catalog.Metadata `json:"metaData"`
}

type UpdateNodeRequest struct {
	MetricSetID     *uuid.UUID       `json:"metricSetId"`
	NodeType        *NodeType        `json:"nodeType"`
	NodeDepth       *int             `json:"nodeDepth" binding:"omitempty,min=0"`
	NodeName        *string          `json:"nodeName" binding:"omitempty,max=100"`
	NodeDescription *string          `json:"nodeDescription"`
	NodeReferenceID *string          `json:"nodeReferenceId"`
	NodeSpecial     *string          `json:"nodeSpecial"`
	MetaData        catalog.Metadata `json:"metaData"`
}

type Filter struct {
	MetricSetID     *uuid.UUID `json:"metricSetId"`
	NodeType        *NodeType  `json:"nodeType"`
	NodeDepth       *int       `json:"nodeDepth"`
	NodeName        *string    `json:"nodeName"`
	NodeReferenceID *string    `json:"nodeReferenceId"`
}

type ListNodesResponse struct {
	MetricSetTrees []*Node `json:"metricSetTrees"`
	Total          int     `json:"total"`
}

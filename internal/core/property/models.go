package property

import (
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

// DataType is the value type a property accepts.
type DataType string

const (
	DataTypeString   DataType = "string"
	DataTypeNumber   DataType = "number"
	DataTypeBoolean  DataType = "boolean"
	DataTypeDatetime DataType = "datetime"
	DataTypeUUID     DataType = "uuid"
)

var DataTypes = []DataType{
	DataTypeString,
	DataTypeNumber,
	DataTypeBoolean,
	DataTypeDatetime,
	DataTypeUUID,
}

func (d DataType) Valid() bool {
	for _, t := range DataTypes {
		if t == d {
			return true
		}
	}
	return false
}

// Property is a named, typed metadata field definition scoped to one entity type.
type Property struct {
	ID                  uuid.UUID          `json:"id"`
	PropertyName        string             `json:"propertyName"`
	PropertyDescription *string            `json:"propertyDescription,omitempty"`
	DataType            DataType           `json:"dataType"`
	EntityType          catalog.EntityType `json:"entityType"`
	IsRequired          bool               `json:"isRequired"`
	catalog.Timestamps
}

type CreatePropertyRequest struct {
	PropertyName        string             `json:"propertyName" binding:"required"`
	PropertyDescription *string            `json:"propertyDescription"`
	DataType            DataType           `json:"dataType" binding:"required"`
	EntityType          catalog.EntityType `json:"entityType" binding:"required"`
	IsRequired          bool               `json:"isRequired"`
}

// UpdatePropertyRequest is a partial patch; nil fields are left untouched.
type UpdatePropertyRequest struct {
	PropertyName        *string             `json:"propertyName"`
	PropertyDescription *string             `json:"propertyDescription"`
	DataType            *DataType           `json:"dataType"`
	EntityType          *catalog.EntityType `json:"entityType"`
	IsRequired          *bool               `json:"isRequired"`
}

// Filter narrows Find by equality on the set fields.
type Filter struct {
	PropertyName *string             `json:"propertyName"`
	DataType     *DataType           `json:"dataType"`
	EntityType   *catalog.EntityType `json:"entityType"`
	IsRequired   *bool               `json:"isRequired"`
}

type ListPropertiesResponse struct {
	Properties []*Property `json:"properties"`
	Total      int         `json:"total"`
}

package validation

import (
	"context"
	"sort"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/property"
)

// PropertyFinder lists every live property of an entity type.
type PropertyFinder interface {
	FindAll(ctx context.Context, entityType catalog.EntityType) ([]*property.Property, error)
}

// SchemaProperty is one entry of the generated "properties" object.
type SchemaProperty struct {
	Type        string `json:"type"`
	Format      string `json:"format,omitempty"`
	Description string `json:"description,omitempty"`
}

func schemaProperty(p *property.Property) SchemaProperty {
	sp := SchemaProperty{}
	switch p.DataType {
	case property.DataTypeNumber:
		sp.Type = "number"
	case property.DataTypeBoolean:
		sp.Type = "boolean"
	case property.DataTypeDatetime:
		sp.Type, sp.Format = "string", "date-time"
	case property.DataTypeUUID:
		sp.Type, sp.Format = "string", "uuid"
	default:
		sp.Type = "string"
	}
	if p.PropertyDescription != nil {
		sp.Description = *p.PropertyDescription
	}
	return sp
}

// BuildSchema renders the JSON Schema that name-keyed metadata of entityType
// must satisfy. Keys outside the property set are rejected.
func BuildSchema(entityType catalog.EntityType, props []*property.Property) map[string]any {
	properties := make(map[string]any, len(props))
	required := []string{}
	for _, p := range props {
		if p.DeletedAt != nil {
			continue
		}
		properties[p.PropertyName] = schemaProperty(p)
		if p.IsRequired {
			required = append(required, p.PropertyName)
		}
	}
	sort.Strings(required)

	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                string(entityType) + " metadata",
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// Service validates metadata values against the live property definitions.
// It reads the registry on every call; schemas are not cached.
type Service struct {
	finder PropertyFinder
}

func NewService(finder PropertyFinder) *Service {
	return &Service{finder: finder}
}

func (s *Service) Schema(ctx context.Context, entityType catalog.EntityType) (map[string]any, error) {
	props, err := s.finder.FindAll(ctx, entityType)
	if err != nil {
		return nil, err
	}
	return BuildSchema(entityType, props), nil
}

// CheckValues validates md, keyed by property name, including required properties.
func (s *Service) CheckValues(ctx context.Context, entityType catalog.EntityType, md catalog.Metadata) error {
	const op = "validation.CheckValues"

	schema, err := s.Schema(ctx, entityType)
	if err != nil {
		return err
	}

	err = Check(schema, md)
	if err == nil {
		return nil
	}
	if fe, ok := AsFieldErrors(err); ok {
		return &catalog.Error{
			Code:   catalog.EInvalid,
			Op:     op,
			Msg:    "metadata values do not match the property definitions",
			Err:    err,
			Detail: map[string]any{"entity_type": string(entityType), "errors": []FieldError(fe)},
		}
	}
	return catalog.Internal(op, err)
}

package metadata

import (
	"context"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

// Binding fixes a Translator to one entity type. Entity services call Inbound
// before persisting and Outbound after every read.
type Binding struct {
	translator *Translator
	entityType catalog.EntityType
}

func (t *Translator) Bind(entityType catalog.EntityType) Binding {
	return Binding{translator: t, entityType: entityType}
}

func (b Binding) EntityType() catalog.EntityType {
	return b.entityType
}

// Inbound validates md and rewrites it to id keys. When a ValueChecker is
// configured, the values are then checked against the property definitions;
// empty metadata is checked too, so required properties cannot be skipped.
func (b Binding) Inbound(ctx context.Context, md catalog.Metadata) (catalog.Metadata, error) {
	out, err := b.translator.NamesToIDs(ctx, b.entityType, md)
	if err != nil {
		return nil, err
	}
	if b.translator.values != nil {
		if err := b.translator.values.CheckValues(ctx, b.entityType, md); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Outbound rewrites stored md back to name keys.
func (b Binding) Outbound(ctx context.Context, md catalog.Metadata) (catalog.Metadata, error) {
	return b.translator.IDsToNames(ctx, b.entityType, md)
}

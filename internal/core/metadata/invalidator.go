package metadata

import (
	"context"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/storage/cache"
)

// Invalidator drops both translation tables of an entity type.
// It satisfies property.Invalidator.
type Invalidator struct {
	cache cache.Store
}

func NewInvalidator(store cache.Store) *Invalidator {
	return &Invalidator{cache: store}
}

func (i *Invalidator) Invalidate(ctx context.Context, entityTypes ...catalog.EntityType) error {
	if i == nil || i.cache == nil || len(entityTypes) == 0 {
		return nil
	}
	keys := make([]string, 0, 2*len(entityTypes))
	for _, et := range entityTypes {
		keys = append(keys, CacheKey(et, NamesToIDs), CacheKey(et, IDsToNames))
	}
	return i.cache.Delete(ctx, keys...)
}

// Package metadata translates entity metadata between the caller-facing
// property-name keys and the property-id keys that are persisted.
//
// names -> ids is strict: an unknown name rejects the whole mapping.
// ids -> names is lenient: an unknown id is passed through as its own key,
// so stored metadata stays readable after its property is hard-deleted.
//
// Both directions read a per-entity-type translation table through a
// cache-aside wrapper. Tables are rebuilt from the property registry on a
// miss and never expire; the registry invalidates them on every mutation.
// Two concurrent misses may both rebuild and store the same table, which is
// harmless because the table is a deterministic snapshot of the registry.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/property"
	"github.com/metacatalog/catalog/internal/metrics"
	"github.com/metacatalog/catalog/internal/storage/cache"
)

// Direction names a translation table.
type Direction string

const (
	NamesToIDs Direction = "names_to_ids"
	IDsToNames Direction = "ids_to_names"
)

// CacheKey is the cache key of the table for entityType in direction dir.
func CacheKey(entityType catalog.EntityType, dir Direction) string {
	return fmt.Sprintf("property_%s_%s", entityType, dir)
}

// PropertyFinder lists every live property of an entity type.
// *property.Service implements it.
type PropertyFinder interface {
	FindAll(ctx context.Context, entityType catalog.EntityType) ([]*property.Property, error)
}

// ValueChecker validates metadata values against the property definitions.
type ValueChecker interface {
	CheckValues(ctx context.Context, entityType catalog.EntityType, md catalog.Metadata) error
}

type Option func(*Translator)

// WithValueChecker makes every Binding check values after key translation.
func WithValueChecker(c ValueChecker) Option {
	return func(t *Translator) {
		t.values = c
	}
}

// WithCacheMetrics counts table lookups.
func WithCacheMetrics(m *metrics.CacheMetrics) Option {
	return func(t *Translator) {
		t.cacheMetrics = m
	}
}

// WithRecorder records RED metrics for translations.
func WithRecorder(rec *metrics.REDClient) Option {
	return func(t *Translator) {
		t.rec = rec
	}
}

type Translator struct {
	finder       PropertyFinder
	cache        cache.Store
	logger       *zap.Logger
	values       ValueChecker
	cacheMetrics *metrics.CacheMetrics
	rec          *metrics.REDClient
}

// NewTranslator builds a Translator. store may be nil, in which case every
// call reads the registry.
func NewTranslator(finder PropertyFinder, store cache.Store, logger *zap.Logger, opts ...Option) *Translator {
	t := &Translator{
		finder: finder,
		cache:  store,
		logger: logger.With(zap.String("component", "translator")),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NamesToIDs rewrites the keys of md from property names to property ids.
// Any key that is not the name of a live property of entityType fails the
// whole call with an EInvalid error listing invalid_keys and valid_keys.
func (t *Translator) NamesToIDs(ctx context.Context, entityType catalog.EntityType, md catalog.Metadata) (catalog.Metadata, error) {
	if len(md) == 0 {
		return catalog.Metadata{}, nil
	}
	rec := t.rec.Record("names_to_ids")

	table, err := t.table(ctx, entityType, NamesToIDs)
	if err != nil {
		return nil, rec(err)
	}
	if err := checkKeys("metadata.NamesToIDs", entityType, md, table); err != nil {
		return nil, rec(err)
	}

	out := make(catalog.Metadata, len(md))
	for name, v := range md {
		out[table[name]] = v
	}
	return out, rec(nil)
}

// IDsToNames rewrites the keys of md from property ids to property names.
// Unknown ids are kept as-is.
func (t *Translator) IDsToNames(ctx context.Context, entityType catalog.EntityType, md catalog.Metadata) (catalog.Metadata, error) {
	if len(md) == 0 {
		return catalog.Metadata{}, nil
	}
	rec := t.rec.Record("ids_to_names")

	table, err := t.table(ctx, entityType, IDsToNames)
	if err != nil {
		return nil, rec(err)
	}

	out := make(catalog.Metadata, len(md))
	for id, v := range md {
		if name, ok := table[id]; ok {
			out[name] = v
			continue
		}
		out[id] = v
	}
	return out, rec(nil)
}

// Validate checks that every key of md names a live property of entityType
// without translating anything.
func (t *Translator) Validate(ctx context.Context, entityType catalog.EntityType, md catalog.Metadata) error {
	if len(md) == 0 {
		return nil
	}
	table, err := t.table(ctx, entityType, NamesToIDs)
	if err != nil {
		return err
	}
	return checkKeys("metadata.Validate", entityType, md, table)
}

// table returns the translation table for entityType, reading through the cache.
func (t *Translator) table(ctx context.Context, entityType catalog.EntityType, dir Direction) (map[string]string, error) {
	key := CacheKey(entityType, dir)

	if table, ok := t.cached(ctx, key); ok {
		t.cacheMetrics.Hit(string(entityType), string(dir))
		t.logger.Debug("translation table cache hit", zap.String("key", key))
		return table, nil
	}
	t.cacheMetrics.Miss(string(entityType), string(dir))
	t.logger.Debug("translation table cache miss", zap.String("key", key))

	props, err := t.finder.FindAll(ctx, entityType)
	if err != nil {
		return nil, err
	}
	namesToIDs, idsToNames := BuildTables(props)

	table := namesToIDs
	if dir == IDsToNames {
		table = idsToNames
	}
	t.store(ctx, key, table)
	return table, nil
}

func (t *Translator) cached(ctx context.Context, key string) (map[string]string, bool) {
	if t.cache == nil {
		return nil, false
	}

	raw, ok, err := t.cache.Get(ctx, key)
	if err != nil {
		t.cacheMetrics.Error("get")
		t.logger.Warn("failed to read translation table from cache", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var table map[string]string
	if err := json.Unmarshal(raw, &table); err != nil {
		t.cacheMetrics.Error("decode")
		t.logger.Warn("discarding undecodable translation table", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if table == nil {
		table = map[string]string{}
	}
	return table, true
}

// store writes table under key. A failure only costs a future registry read.
func (t *Translator) store(ctx context.Context, key string, table map[string]string) {
	if t.cache == nil {
		return
	}

	raw, err := json.Marshal(table)
	if err != nil {
		t.logger.Warn("failed to encode translation table", zap.String("key", key), zap.Error(err))
		return
	}
	if err := t.cache.Set(ctx, key, raw); err != nil {
		t.cacheMetrics.Error("set")
		t.logger.Warn("failed to write translation table to cache", zap.String("key", key), zap.Error(err))
	}
}

// BuildTables derives both translation tables from a set of live properties.
func BuildTables(props []*property.Property) (namesToIDs, idsToNames map[string]string) {
	namesToIDs = make(map[string]string, len(props))
	idsToNames = make(map[string]string, len(props))
	for _, p := range props {
		if p.DeletedAt != nil {
			continue
		}
		id := p.ID.String()
		namesToIDs[p.PropertyName] = id
		idsToNames[id] = p.PropertyName
	}
	return namesToIDs, idsToNames
}

func checkKeys(op string, entityType catalog.EntityType, md catalog.Metadata, table map[string]string) error {
	var invalid []string
	for k := range md {
		if _, ok := table[k]; !ok {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	sort.Strings(invalid)

	valid := make([]string, 0, len(table))
	for k := range table {
		valid = append(valid, k)
	}
	sort.Strings(valid)

	return &catalog.Error{
		Code: catalog.EInvalid,
		Op:   op,
		Msg:  fmt.Sprintf("metadata contains unknown properties for %s", entityType),
		Detail: map[string]any{
			"entity_type":  string(entityType),
			"invalid_keys": invalid,
			"valid_keys":   valid,
		},
	}
}

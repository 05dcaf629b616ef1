package property

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/metrics"
)

const maxNameLength = 100

// Store is the persistence contract the registry needs. *Repository implements it.
type Store interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*Property, error)
	Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Property, error)
	Update(ctx context.Context, p *Property) error
	SoftDelete(ctx context.Context, p *Property) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

// Invalidator drops cached translation tables for the given entity types.
type Invalidator interface {
	Invalidate(ctx context.Context, entityTypes ...catalog.EntityType) error
}

// Service is the property registry: the source of truth for which property
// names and ids are valid per entity type.
type Service struct {
	store       Store
	invalidator Invalidator
	logger      *zap.Logger
	rec         *metrics.REDClient
}

func NewService(store Store, invalidator Invalidator, logger *zap.Logger, rec *metrics.REDClient) *Service {
	return &Service{
		store:       store,
		invalidator: invalidator,
		logger:      logger.With(zap.String("component", "property")),
		rec:         rec,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, withDeleted bool) (*Property, error) {
	rec := s.rec.Record("get")
	p, err := s.get(ctx, "property.Get", id, withDeleted)
	return p, rec(err)
}

func (s *Service) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Property, error) {
	rec := s.rec.Record("find")
	properties, err := s.store.Find(ctx, filter, opts)
	if err != nil {
		return nil, rec(err)
	}
	if properties == nil {
		properties = []*Property{}
	}
	return properties, rec(nil)
}

// FindAll returns every non-deleted property of entityType, unpaged.
func (s *Service) FindAll(ctx context.Context, entityType catalog.EntityType) ([]*Property, error) {
	rec := s.rec.Record("find_all")
	properties, err := s.store.Find(ctx, Filter{EntityType: &entityType}, catalog.FindOptions{
		SortField:  "propertyName",
		SortMethod: catalog.SortAsc,
	})
	return properties, rec(err)
}

func (s *Service) Create(ctx context.Context, req *CreatePropertyRequest) (*Property, error) {
	rec := s.rec.Record("create")

	p := &Property{
		ID:                  uuid.New(),
		PropertyName:        strings.TrimSpace(req.PropertyName),
		PropertyDescription: req.PropertyDescription,
		DataType:            req.DataType,
		EntityType:          req.EntityType,
		IsRequired:          req.IsRequired,
	}
	if err := validate("property.Create", p); err != nil {
		return nil, rec(err)
	}

	if err := s.store.Create(ctx, p); err != nil {
		return nil, rec(err)
	}

	s.invalidate(ctx, p.EntityType)
	return p, rec(nil)
}

// Update applies the non-nil fields of req. Moving a property to another
// entity type invalidates the tables of both types.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdatePropertyRequest) (*Property, error) {
	rec := s.rec.Record("update")

	p, err := s.get(ctx, "property.Update", id, false)
	if err != nil {
		return nil, rec(err)
	}
	previous := p.EntityType

	if req.PropertyName != nil {
		p.PropertyName = strings.TrimSpace(*req.PropertyName)
	}
	if req.PropertyDescription != nil {
		p.PropertyDescription = req.PropertyDescription
	}
	if req.DataType != nil {
		p.DataType = *req.DataType
	}
	if req.EntityType != nil {
		p.EntityType = *req.EntityType
	}
	if req.IsRequired != nil {
		p.IsRequired = *req.IsRequired
	}
	if err := validate("property.Update", p); err != nil {
		return nil, rec(err)
	}

	if err := s.store.Update(ctx, p); err != nil {
		return nil, rec(err)
	}

	if previous != p.EntityType {
		s.invalidate(ctx, previous, p.EntityType)
	} else {
		s.invalidate(ctx, p.EntityType)
	}
	return p, rec(nil)
}

// Delete soft-deletes the property, or removes the row when hard is set.
// A hard delete also reaches rows that were already soft-deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, hard bool) (*Property, error) {
	rec := s.rec.Record("delete")

	p, err := s.get(ctx, "property.Delete", id, hard)
	if err != nil {
		return nil, rec(err)
	}

	if hard {
		err = s.store.HardDelete(ctx, id)
	} else {
		err = s.store.SoftDelete(ctx, p)
	}
	if err != nil {
		return nil, rec(err)
	}

	s.invalidate(ctx, p.EntityType)
	return p, rec(nil)
}

func (s *Service) get(ctx context.Context, op string, id uuid.UUID, withDeleted bool) (*Property, error) {
	p, err := s.store.GetByID(ctx, id, withDeleted)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, catalog.NotFound(op, "property not found", map[string]any{"id": id.String()})
	}
	return p, nil
}

// invalidate runs after the store has committed. A failure leaves a stale
// table until the next successful invalidation, so it is logged and swallowed.
func (s *Service) invalidate(ctx context.Context, entityTypes ...catalog.EntityType) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, entityTypes...); err != nil {
		s.logger.Warn("failed to invalidate translation cache",
			zap.Any("entity_types", entityTypes), zap.Error(err))
	}
}

func validate(op string, p *Property) error {
	detail := map[string]any{"propertyName": p.PropertyName}

	switch {
	case p.PropertyName == "":
		return catalog.Invalid(op, "property name must not be empty", detail)
	case len([]rune(p.PropertyName)) > maxNameLength:
		return catalog.Invalid(op, "property name must be at most 100 characters", detail)
	case strings.IndexFunc(p.PropertyName, unicode.IsDigit) >= 0:
		return catalog.Invalid(op, "property name must not contain digits", detail)
	}

	if !p.DataType.Valid() {
		return catalog.Invalid(op, "unknown data type", map[string]any{"dataType": p.DataType, "valid": DataTypes})
	}
	if !p.EntityType.Valid() {
		return catalog.Invalid(op, "unknown entity type", map[string]any{"entityType": p.EntityType, "valid": catalog.EntityTypes})
	}
	return nil
}

// Package propertytest provides an in-memory property.Store for tests.
package propertytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/property"
)

// Store keeps properties in a map and enforces (name, entity type) uniqueness
// among rows, mirroring the database constraint.
type Store struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*property.Property
	Calls map[string]int

	// FindErr, when set, is returned by Find.
	FindErr error
}

func NewStore() *Store {
	return &Store{
		rows:  make(map[uuid.UUID]*property.Property),
		Calls: make(map[string]int),
	}
}

func (s *Store) Create(_ context.Context, p *property.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["Create"]++

	if s.duplicate(p) {
		return &catalog.Error{Code: catalog.EConflict, Op: "property.Create", Msg: "record already exists"}
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	s.rows[p.ID] = &cp
	return nil
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID, withDeleted bool) (*property.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["GetByID"]++

	p, ok := s.rows[id]
	if !ok || (p.DeletedAt != nil && !withDeleted) {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *Store) Find(_ context.Context, filter property.Filter, opts catalog.FindOptions) ([]*property.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["Find"]++

	if s.FindErr != nil {
		return nil, s.FindErr
	}

	var out []*property.Property
	for _, p := range s.rows {
		if p.DeletedAt != nil && !opts.WithDeleted {
			continue
		}
		if filter.EntityType != nil && p.EntityType != *filter.EntityType {
			continue
		}
		if filter.PropertyName != nil && p.PropertyName != *filter.PropertyName {
			continue
		}
		if filter.DataType != nil && p.DataType != *filter.DataType {
			continue
		}
		if filter.IsRequired != nil && p.IsRequired != *filter.IsRequired {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PropertyName < out[j].PropertyName })

	if opts.Skip > 0 {
		if opts.Skip >= len(out) {
			return nil, nil
		}
		out = out[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Store) Update(_ context.Context, p *property.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["Update"]++

	cur, ok := s.rows[p.ID]
	if !ok || cur.DeletedAt != nil {
		return catalog.NotFound("property.Update", "property not found", nil)
	}
	if s.duplicate(p) {
		return &catalog.Error{Code: catalog.EConflict, Op: "property.Update", Msg: "record already exists"}
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	s.rows[p.ID] = &cp
	return nil
}

func (s *Store) SoftDelete(_ context.Context, p *property.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["SoftDelete"]++

	cur, ok := s.rows[p.ID]
	if !ok || cur.DeletedAt != nil {
		return catalog.NotFound("property.SoftDelete", "property not found", nil)
	}
	now := time.Now().UTC()
	cur.DeletedAt, cur.UpdatedAt = &now, now
	p.DeletedAt, p.UpdatedAt = &now, now
	return nil
}

func (s *Store) HardDelete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["HardDelete"]++

	if _, ok := s.rows[id]; !ok {
		return catalog.NotFound("property.HardDelete", "property not found", nil)
	}
	delete(s.rows, id)
	return nil
}

func (s *Store) duplicate(p *property.Property) bool {
	for id, row := range s.rows {
		if id != p.ID && row.PropertyName == p.PropertyName && row.EntityType == p.EntityType {
			return true
		}
	}
	return false
}

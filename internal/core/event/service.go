package event

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/metrics"
	"github.com/metacatalog/catalog/internal/storage/postgres"
)

type Store interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*Event, error)
	Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Event, error)
	SoftDelete(ctx context.Context, e *Event) error
}

type Service struct {
	store Store
	rec   *metrics.REDClient
}

func NewService(store Store, rec *metrics.REDClient) *Service {
	return &Service{store: store, rec: rec}
}

// Record appends an event for nodeID. newData is stored as its JSON object form.
func (s *Service) Record(ctx context.Context, eventType catalog.EventType, nodeType catalog.EntityType,
	nodeID uuid.UUID, userID *uuid.UUID, newData any) (*Event, error) {
	rec := s.rec.Record("record")

	data, err := toMap(newData)
	if err != nil {
		return nil, rec(catalog.Internal("event.Record", err))
	}

	e := &Event{
		ID:        uuid.New(),
		EventType: eventType,
		NodeType:  nodeType,
		NodeID:    nodeID,
		UserID:    userID,
		NewData:   data,
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, rec(err)
	}
	return e, rec(nil)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, withDeleted bool) (*Event, error) {
	rec := s.rec.Record("get")
	e, err := s.get(ctx, "event.Get", id, withDeleted)
	return e, rec(err)
}

func (s *Service) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Event, error) {
	rec := s.rec.Record("find")
	events, err := s.store.Find(ctx, filter, opts)
	if err != nil {
		return nil, rec(err)
	}
	if events == nil {
		events = []*Event{}
	}
	return events, rec(nil)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Event, error) {
	rec := s.rec.Record("delete")

	e, err := s.get(ctx, "event.Delete", id, false)
	if err != nil {
		return nil, rec(err)
	}
	if err := s.store.SoftDelete(ctx, e); err != nil {
		return nil, rec(err)
	}
	return e, rec(nil)
}

func (s *Service) get(ctx context.Context, op string, id uuid.UUID, withDeleted bool) (*Event, error) {
	e, err := s.store.GetByID(ctx, id, withDeleted)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, catalog.NotFound(op, "event not found", map[string]any{"id": id.String()})
	}
	return e, nil
}

func toMap(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := postgres.DecodeNumbers(bytes.NewReader(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

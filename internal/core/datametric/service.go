package datametric

import (
	"context"

	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/metadata"
	"github.com/metacatalog/catalog/internal/metrics"
)

type Store interface {
	Create(ctx context.Context, dm *DataMetric) error
	GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*DataMetric, error)
	Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*DataMetric, error)
	Update(ctx context.Context, dm *DataMetric) error
	SoftDelete(ctx context.Context, dm *DataMetric) error
}

type Service struct {
	store Store
	meta  metadata.Binding
	rec   *metrics.REDClient
}

func NewService(store Store, translator *metadata.Translator, rec *metrics.REDClient) *Service {
	return &Service{
		store: store,
		meta:  translator.Bind(catalog.EntityDataMetric),
		rec:   rec,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, withDeleted bool) (*DataMetric, error) {
	rec := s.rec.Record("get")
	dm, err := s.get(ctx, "datametric.Get", id, withDeleted)
	if err != nil {
		return nil, rec(err)
	}
	return dm, rec(s.present(ctx, dm))
}

func (s *Service) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*DataMetric, error) {
	rec := s.rec.Record("find")
	found, err := s.store.Find(ctx, filter, opts)
	if err != nil {
		return nil, rec(err)
	}
	if found == nil {
		found = []*DataMetric{}
	}
	for _, dm := range found {
		if err := s.present(ctx, dm); err != nil {
			return nil, rec(err)
		}
	}
	return found, rec(nil)
}

func (s *Service) Create(ctx context.Context, req *CreateDataMetricRequest) (*DataMetric, error) {
	rec := s.rec.Record("create")

	md, err := s.meta.Inbound(ctx, req.MetaData)
	if err != nil {
		return nil, rec(err)
	}

	dm := &DataMetric{
		ID:         uuid.New(),
		DataID:     req.DataID,
		MetricType: req.MetricType,
		Name:       req.Name,
		MetaData:   md,
	}
	if err := s.store.Create(ctx, dm); err != nil {
		return nil, rec(err)
	}
	return dm, rec(s.present(ctx, dm))
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateDataMetricRequest) (*DataMetric, error) {
	rec := s.rec.Record("update")

	dm, err := s.get(ctx, "datametric.Update", id, false)
	if err != nil {
		return nil, rec(err)
	}

	if req.DataID != nil {
		dm.DataID = *req.DataID
	}
	if req.MetricType != nil {
		dm.MetricType = *req.MetricType
	}
	if req.Name != nil {
		dm.Name = *req.Name
	}
	if req.MetaData != nil {
		if dm.MetaData, err = s.meta.Inbound(ctx, req.MetaData); err != nil {
			return nil, rec(err)
		}
	}

	if err := s.store.Update(ctx, dm); err != nil {
		return nil, rec(err)
	}
	return dm, rec(s.present(ctx, dm))
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*DataMetric, error) {
	rec := s.rec.Record("delete")

	dm, err := s.get(ctx, "datametric.Delete", id, false)
	if err != nil {
		return nil, rec(err)
	}
	if err := s.store.SoftDelete(ctx, dm); err != nil {
		return nil, rec(err)
	}
	return dm, rec(s.present(ctx, dm))
}

func (s *Service) get(ctx context.Context, op string, id uuid.UUID, withDeleted bool) (*DataMetric, error) {
	dm, err := s.store.GetByID(ctx, id, withDeleted)
	if err != nil {
		return nil, err
	}
	if dm == nil {
		return nil, catalog.NotFound(op, "data metric not found", map[string]any{"id": id.String()})
	}
	return dm, nil
}

func (s *Service) present(ctx context.Context, dm *DataMetric) error {
	md, err := s.meta.Outbound(ctx, dm.MetaData)
	if err != nil {
		return err
	}
	dm.MetaData = md
	return nil
}

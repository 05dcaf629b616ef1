package metricset

import (
	"context"

	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/metadata"
	"github.com/metacatalog/catalog/internal/metrics"
)

type Store interface {
	Create(ctx context.Context, ms *MetricSet) error
	GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*MetricSet, error)
	Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*MetricSet, error)
	Update(ctx context.Context, ms *MetricSet) error
	SoftDelete(ctx context.Context, ms *MetricSet) error
}

type Service struct {
	store Store
	meta  metadata.Binding
	rec   *metrics.REDClient
}

func NewService(store Store, translator *metadata.Translator, rec *metrics.REDClient) *Service {
	return &Service{
		store: store,
		meta:  translator.Bind(catalog.EntityMetricSet),
		rec:   rec,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, withDeleted bool) (*MetricSet, error) {
	rec := s.rec.Record("get")
	ms, err := s.get(ctx, "metricset.Get", id, withDeleted)
	if err != nil {
		return nil, rec(err)
	}
	return ms, rec(s.present(ctx, ms))
}

func (s *Service) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*MetricSet, error) {
	rec := s.rec.Record("find")
	found, err := s.store.Find(ctx, filter, opts)
	if err != nil {
		return nil, rec(err)
	}
	if found == nil {
		found = []*MetricSet{}
	}
	for _, ms := range found {
		if err := s.present(ctx, ms); err != nil {
			return nil, rec(err)
		}
	}
	return found, rec(nil)
}

func (s *Service) Create(ctx context.Context, req *CreateMetricSetRequest) (*MetricSet, error) {
	rec := s.rec.Record("create")

	if err := validate("metricset.Create", req.Status, req.Placement); err != nil {
		return nil, rec(err)
	}
	md, err := s.meta.Inbound(ctx, req.MetaData)
	if err != nil {
		return nil, rec(err)
	}

	ms := &MetricSet{
		ID:        uuid.New(),
		Status:    req.Status,
		ShortName: req.ShortName,
		Placement: req.Placement,
		MetaData:  md,
	}
	if err := s.store.Create(ctx, ms); err != nil {
		return nil, rec(err)
	}
	return ms, rec(s.present(ctx, ms))
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateMetricSetRequest) (*MetricSet, error) {
	rec := s.rec.Record("update")

	ms, err := s.get(ctx, "metricset.Update", id, false)
	if err != nil {
		return nil, rec(err)
	}

	if req.Status != nil {
		ms.Status = *req.Status
	}
	if req.ShortName != nil {
		ms.ShortName = *req.ShortName
	}
	if req.Placement != nil {
		ms.Placement = *req.Placement
	}
	if err := validate("metricset.Update", ms.Status, ms.Placement); err != nil {
		return nil, rec(err)
	}
	if req.MetaData != nil {
		if ms.MetaData, err = s.meta.Inbound(ctx, req.MetaData); err != nil {
			return nil, rec(err)
		}
	}

	if err := s.store.Update(ctx, ms); err != nil {
		return nil, rec(err)
	}
	return ms, rec(s.present(ctx, ms))
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*MetricSet, error) {
	rec := s.rec.Record("delete")

	ms, err := s.get(ctx, "metricset.Delete", id, false)
	if err != nil {
		return nil, rec(err)
	}
	if err := s.store.SoftDelete(ctx, ms); err != nil {
		return nil, rec(err)
	}
	return ms, rec(s.present(ctx, ms))
}

func (s *Service) get(ctx context.Context, op string, id uuid.UUID, withDeleted bool) (*MetricSet, error) {
	ms, err := s.store.GetByID(ctx, id, withDeleted)
	if err != nil {
		return nil, err
	}
	if ms == nil {
		return nil, catalog.NotFound(op, "metric set not found", map[string]any{"id": id.String()})
	}
	return ms, nil
}

func (s *Service) present(ctx context.Context, ms *MetricSet) error {
	md, err := s.meta.Outbound(ctx, ms.MetaData)
	if err != nil {
		return err
	}
	ms.MetaData = md
	return nil
}

func validate(op string, status catalog.Status, placement Placement) error {
	if !status.Valid() {
		return catalog.Invalid(op, "unknown status", map[string]any{"status": status})
	}
	if !placement.Valid() {
		return catalog.Invalid(op, "unknown placement", map[string]any{"placement": placement, "valid": Placements})
	}
	return nil
}

package metric

import (
	"context"

	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/metadata"
	"github.com/metacatalog/catalog/internal/metrics"
)

type Store interface {
	Create(ctx context.Context, m *Metric) error
	GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*Metric, error)
	Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Metric, error)
	Update(ctx context.Context, m *Metric) error
	SoftDelete(ctx context.Context, m *Metric) error
}

type Service struct {
	store Store
	meta  metadata.Binding
	rec   *metrics.REDClient
}

func NewService(store Store, translator *metadata.Translator, rec *metrics.REDClient) *Service {
	return &Service{
		store: store,
		meta:  translator.Bind(catalog.EntityMetric),
		rec:   rec,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, withDeleted bool) (*Metric, error) {
	rec := s.rec.Record("get")
	m, err := s.get(ctx, "metric.Get", id, withDeleted)
	if err != nil {
		return nil, rec(err)
	}
	return m, rec(s.present(ctx, m))
}

func (s *Service) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Metric, error) {
	rec := s.rec.Record("find")
	found, err := s.store.Find(ctx, filter, opts)
	if err != nil {
		return nil, rec(err)
	}
	if found == nil {
		found = []*Metric{}
	}
	for _, m := range found {
		if err := s.present(ctx, m); err != nil {
			return nil, rec(err)
		}
	}
	return found, rec(nil)
}

func (s *Service) Create(ctx context.Context, req *CreateMetricRequest) (*Metric, error) {
	rec := s.rec.Record("create")

	if !req.Status.Valid() {
		return nil, rec(invalidStatus("metric.Create", req.Status))
	}
	md, err := s.meta.Inbound(ctx, req.MetaData)
	if err != nil {
		return nil, rec(err)
	}

	m := &Metric{
		ID:              uuid.New(),
		MetricSetID:     req.MetricSetID,
		ParentSectionID: req.ParentSectionID,
		ParentMetricID:  req.ParentMetricID,
		DataMetricID:    req.DataMetricID,
		Status:          req.Status,
		Name:            req.Name,
		NameSuffix:      req.NameSuffix,
		MetaData:        md,
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, rec(err)
	}
	return m, rec(s.present(ctx, m))
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateMetricRequest) (*Metric, error) {
	rec := s.rec.Record("update")

	m, err := s.get(ctx, "metric.Update", id, false)
	if err != nil {
		return nil, rec(err)
	}

	if req.MetricSetID != nil {
		m.MetricSetID = *req.MetricSetID
	}
	if req.ParentSectionID != nil {
		m.ParentSectionID = req.ParentSectionID
	}
	if req.ParentMetricID != nil {
		m.ParentMetricID = req.ParentMetricID
	}
	if req.DataMetricID != nil {
		m.DataMetricID = req.DataMetricID
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, rec(invalidStatus("metric.Update", *req.Status))
		}
		m.Status = *req.Status
	}
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.NameSuffix != nil {
		m.NameSuffix = req.NameSuffix
	}
	if req.MetaData != nil {
		if m.MetaData, err = s.meta.Inbound(ctx, req.MetaData); err != nil {
			return nil, rec(err)
		}
	}

	if err := s.store.Update(ctx, m); err != nil {
		return nil, rec(err)
	}
	return m, rec(s.present(ctx, m))
}

// Delete soft-deletes the metric and returns its final state.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Metric, error) {
	rec := s.rec.Record("delete")

	m, err := s.get(ctx, "metric.Delete", id, false)
	if err != nil {
		return nil, rec(err)
	}
	if err := s.store.SoftDelete(ctx, m); err != nil {
		return nil, rec(err)
	}
	return m, rec(s.present(ctx, m))
}

func (s *Service) get(ctx context.Context, op string, id uuid.UUID, withDeleted bool) (*Metric, error) {
	m, err := s.store.GetByID(ctx, id, withDeleted)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, catalog.NotFound(op, "metric not found", map[string]any{"id": id.String()})
	}
	return m, nil
}

// present rewrites the stored metadata of m to property names.
func (s *Service) present(ctx context.Context, m *Metric) error {
	md, err := s.meta.Outbound(ctx, m.MetaData)
	if err != nil {
		return err
	}
	m.MetaData = md
	return nil
}

func invalidStatus(op string, status catalog.Status) error {
	return catalog.Invalid(op, "unknown status", map[string]any{
		"status": status,
		"valid":  []catalog.Status{catalog.StatusDeployed, catalog.StatusNotUsed},
	})
}

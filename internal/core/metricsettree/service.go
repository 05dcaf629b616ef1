package metricsettree

import (
	"context"

	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/metadata"
	"github.com/metacatalog/catalog/internal/metrics"
)

type Store interface {
	Create(ctx context.Context, n *Node) error
	GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*Node, error)
	Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Node, error)
	Update(ctx context.Context, n *Node) error
	SoftDelete(ctx context.Context, n *Node) error
}

type Service struct {
	store Store
	meta  metadata.Binding
	rec   *metrics.REDClient
}

func NewService(store Store, translator *metadata.Translator, rec *metrics.REDClient) *Service {
	return &Service{
		store: store,
		meta:  translator.Bind(catalog.EntityMetricSetTree),
		rec:   rec,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, withDeleted bool) (*Node, error) {
	rec := s.rec.Record("get")
	n, err := s.get(ctx, "metricsettree.Get", id, withDeleted)
	if err != nil {
		return nil, rec(err)
	}
	return n, rec(s.present(ctx, n))
}

func (s *Service) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Node, error) {
	rec := s.rec.Record("find")
	found, err := s.store.Find(ctx, filter, opts)
	if err != nil {
		return nil, rec(err)
	}
	if found == nil {
		found = []*Node{}
	}
	for _, n := range found {
		if err := s.present(ctx, n); err != nil {
			return nil, rec(err)
		}
	}
	return found, rec(nil)
}

func (s *Service) Create(ctx context.Context, req *CreateNodeRequest) (*Node, error) {
	rec := s.rec.Record("create")

	if err := validate("metricsettree.Create", req.NodeType, req.NodeDepth); err != nil {
		return nil, rec(err)
	}
	md, err := s.meta.Inbound(ctx, req.MetaData)
	if err != nil {
		return nil, rec(err)
	}

	n := &Node{
		ID:              uuid.New(),
		MetricSetID:     req.MetricSetID,
		NodeType:        req.NodeType,
		NodeDepth:       req.NodeDepth,
		NodeName:        req.NodeName,
		NodeDescription: req.NodeDescription,
		NodeReferenceID: req.NodeReferenceID,
		NodeSpecial:     req.NodeSpecial,
		MetaData:        md,
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, rec(err)
	}
	return n, rec(s.present(ctx, n))
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateNodeRequest) (*Node, error) {
	rec := s.rec.Record("update")

	n, err := s.get(ctx, "metricsettree.Update", id, false)
	if err != nil {
		return nil, rec(err)
	}

	if req.MetricSetID != nil {
		n.MetricSetID = *req.MetricSetID
	}
	if req.NodeType != nil {
		n.NodeType = *req.NodeType
	}
	if req.NodeDepth != nil {
		n.NodeDepth = *req.NodeDepth
	}
	if req.NodeName != nil {
		n.NodeName = *req.NodeName
	}
	if req.NodeDescription != nil {
		n.NodeDescription = req.NodeDescription
	}
	if req.NodeReferenceID != nil {
		n.NodeReferenceID = req.NodeReferenceID
	}
	if req.NodeSpecial != nil {
		n.NodeSpecial = req.NodeSpecial
	}
	if err := validate("metricsettree.Update", n.NodeType, n.NodeDepth); err != nil {
		return nil, rec(err)
	}
	if req.MetaData != nil {
		if n.MetaData, err = s.meta.Inbound(ctx, req.MetaData); err != nil {
			return nil, rec(err)
		}
	}

	if err := s.store.Update(ctx, n); err != nil {
		return nil, rec(err)
	}
	return n, rec(s.present(ctx, n))
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Node, error) {
	rec := s.rec.Record("delete")

	n, err := s.get(ctx, "metricsettree.Delete", id, false)
	if err != nil {
		return nil, rec(err)
	}
	if err := s.store.SoftDelete(ctx, n); err != nil {
		return nil, rec(err)
	}
	return n, rec(s.present(ctx, n))
}

func (s *Service) get(ctx context.Context, op string, id uuid.UUID, withDeleted bool) (*Node, error) {
	n, err := s.store.GetByID(ctx, id, withDeleted)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, catalog.NotFound(op, "metric set tree node not found", map[string]any{"id": id.String()})
	}
	return n, nil
}

func (s *Service) present(ctx context.Context, n *Node) error {
	md, err := s.meta.Outbound(ctx, n.MetaData)
	if err != nil {
		return err
	}
	n.MetaData = md
	return nil
}

func validate(op string, nodeType NodeType, depth int) error {
	if !nodeType.Valid() {
		return catalog.Invalid(op, "unknown node type", map[string]any{"nodeType": nodeType, "valid": NodeTypes})
	}
	if depth < 0 {
		return catalog.Invalid(op, "node depth must not be negative", map[string]any{"nodeDepth": depth})
	}
	return nil
}

package organization

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/metrics"
)

type Store interface {
	Create(ctx context.Context, o *Organization) error
	GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*Organization, error)
	Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Organization, error)
	Update(ctx context.Context, o *Organization) error
	SoftDelete(ctx context.Context, o *Organization) error
}

type Service struct {
	store Store
	rec   *metrics.REDClient
}

func NewService(store Store, rec *metrics.REDClient) *Service {
	return &Service{store: store, rec: rec}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, withDeleted bool) (*Organization, error) {
	rec := s.rec.Record("get")
	o, err := s.get(ctx, "organization.Get", id, withDeleted)
	return o, rec(err)
}

func (s *Service) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Organization, error) {
	rec := s.rec.Record("find")
	orgs, err := s.store.Find(ctx, filter, opts)
	if err != nil {
		return nil, rec(err)
	}
	if orgs == nil {
		orgs = []*Organization{}
	}
	return orgs, rec(nil)
}

// Create fails with EConflict when the name or email is already taken.
func (s *Service) Create(ctx context.Context, req *CreateOrganizationRequest) (*Organization, error) {
	rec := s.rec.Record("create")

	o := &Organization{
		ID:                uuid.New(),
		OrganizationName:  strings.TrimSpace(req.OrganizationName),
		OrganizationEmail: strings.ToLower(strings.TrimSpace(req.OrganizationEmail)),
		FirstName:         req.FirstName,
		LastName:          req.LastName,
	}
	if err := validateName("organization.Create", o.OrganizationName); err != nil {
		return nil, rec(err)
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, rec(err)
	}
	return o, rec(nil)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateOrganizationRequest) (*Organization, error) {
	rec := s.rec.Record("update")

	o, err := s.get(ctx, "organization.Update", id, false)
	if err != nil {
		return nil, rec(err)
	}

	if req.OrganizationName != nil {
		o.OrganizationName = strings.TrimSpace(*req.OrganizationName)
		if err := validateName("organization.Update", o.OrganizationName); err != nil {
			return nil, rec(err)
		}
	}
	if req.FirstName != nil {
		o.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		o.LastName = *req.LastName
	}

	if err := s.store.Update(ctx, o); err != nil {
		return nil, rec(err)
	}
	return o, rec(nil)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Organization, error) {
	rec := s.rec.Record("delete")

	o, err := s.get(ctx, "organization.Delete", id, false)
	if err != nil {
		return nil, rec(err)
	}
	if err := s.store.SoftDelete(ctx, o); err != nil {
		return nil, rec(err)
	}
	return o, rec(nil)
}

func (s *Service) get(ctx context.Context, op string, id uuid.UUID, withDeleted bool) (*Organization, error) {
	o, err := s.store.GetByID(ctx, id, withDeleted)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, catalog.NotFound(op, "organization not found", map[string]any{"id": id.String()})
	}
	return o, nil
}

func validateName(op, name string) error {
	if name == "" {
		return catalog.Invalid(op, "organization name must not be empty", nil)
	}
	if strings.IndexFunc(name, unicode.IsDigit) >= 0 {
		return catalog.Invalid(op, "organization name must not contain digits", map[string]any{"organizationName": name})
	}
	return nil
}

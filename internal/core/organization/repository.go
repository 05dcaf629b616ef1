package organization

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/storage/postgres"
)

const selectColumns = `id, organization_name, organization_email, first_name, last_name, created_at, updated_at, deleted_at`

var sortFields = map[string]string{
	"organizationName":  "organization_name",
	"organizationEmail": "organization_email",
	"createdAt":         "created_at",
	"updatedAt":         "updated_at",
}

type Repository struct {
	db *postgres.Client
}

func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, o *Organization) error {
	query := `
		INSERT INTO organizations (id, organization_name, organization_email, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.DB.QueryRowContext(ctx, query,
		o.ID, o.OrganizationName, o.OrganizationEmail, o.FirstName, o.LastName,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	return postgres.MapError("organization.Create", err, "", nil)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*Organization, error) {
	q := postgres.Builder.Select(selectColumns).From("organizations").Where(sq.Eq{"id": id})
	query, args, err := postgres.Query("organization.GetByID", postgres.NotDeleted(q, withDeleted))
	if err != nil {
		return nil, err
	}

	o, err := scanOrganization(r.db.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, postgres.MapError("organization.GetByID", err, "", nil)
	}
	return o, nil
}

func (r *Repository) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Organization, error) {
	orderBy, err := opts.OrderBy(sortFields, "created_at ASC")
	if err != nil {
		return nil, err
	}

	eq := sq.Eq{}
	postgres.EqIfSet(eq, "organization_name", filter.OrganizationName)
	postgres.EqIfSet(eq, "organization_email", filter.OrganizationEmail)

	q := postgres.Builder.Select(selectColumns).From("organizations")
	q = postgres.NotDeleted(postgres.Where(q, eq), opts.WithDeleted)
	q = postgres.Page(q.OrderBy(orderBy, "id"), opts)

	query, args, err := postgres.Query("organization.Find", q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError("organization.Find", err, "", nil)
	}
	defer rows.Close()

	var orgs []*Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, postgres.MapError("organization.Find", err, "", nil)
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError("organization.Find", err, "", nil)
	}
	return orgs, nil
}

func (r *Repository) Update(ctx context.Context, o *Organization) error {
	query := `
		UPDATE organizations
		SET organization_name = $2, first_name = $3, last_name = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.DB.QueryRowContext(ctx, query, o.ID, o.OrganizationName, o.FirstName, o.LastName).Scan(&o.UpdatedAt)
	return postgres.MapError("organization.Update", err, "organization not found", map[string]any{"id": o.ID})
}

func (r *Repository) SoftDelete(ctx context.Context, o *Organization) error {
	query := `
		UPDATE organizations
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING deleted_at, updated_at`

	var deletedAt sql.NullTime
	if err := r.db.DB.QueryRowContext(ctx, query, o.ID).Scan(&deletedAt, &o.UpdatedAt); err != nil {
		return postgres.MapError("organization.SoftDelete", err, "organization not found", map[string]any{"id": o.ID})
	}
	o.DeletedAt = &deletedAt.Time
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row scanner) (*Organization, error) {
	o := &Organization{}
	var deletedAt sql.NullTime

	if err := row.Scan(
		&o.ID, &o.OrganizationName, &o.OrganizationEmail, &o.FirstName, &o.LastName,
		&o.CreatedAt, &o.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		o.DeletedAt = &deletedAt.Time
	}
	return o, nil
}

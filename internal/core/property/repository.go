package property

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/storage/postgres"
)

const selectColumns = `id, property_name, property_description, data_type, entity_type, is_required, created_at, updated_at, deleted_at`

var sortFields = map[string]string{
	"propertyName": "property_name",
	"dataType":     "data_type",
	"entityType":   "entity_type",
	"isRequired":   "is_required",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

type Repository struct {
	db *postgres.Client
}

func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, p *Property) error {
	query := `
		INSERT INTO properties (id, property_name, property_description, data_type, entity_type, is_required)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.DB.QueryRowContext(ctx, query,
		p.ID, p.PropertyName, p.PropertyDescription, p.DataType, p.EntityType, p.IsRequired,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return postgres.MapError("property.Create", err, "", nil)
}

// GetByID returns (nil, nil) when no matching row exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*Property, error) {
	q := postgres.Builder.Select(selectColumns).From("properties").Where(sq.Eq{"id": id})
	query, args, err := postgres.Query("property.GetByID", postgres.NotDeleted(q, withDeleted))
	if err != nil {
		return nil, err
	}

	p, err := scanProperty(r.db.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, postgres.MapError("property.GetByID", err, "", nil)
	}
	return p, nil
}

func (r *Repository) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Property, error) {
	orderBy, err := opts.OrderBy(sortFields, "created_at ASC")
	if err != nil {
		return nil, err
	}

	eq := sq.Eq{}
	postgres.EqIfSet(eq, "property_name", filter.PropertyName)
	postgres.EqIfSet(eq, "data_type", filter.DataType)
	postgres.EqIfSet(eq, "entity_type", filter.EntityType)
	postgres.EqIfSet(eq, "is_required", filter.IsRequired)

	q := postgres.Builder.Select(selectColumns).From("properties")
	q = postgres.NotDeleted(postgres.Where(q, eq), opts.WithDeleted)
	q = postgres.Page(q.OrderBy(orderBy, "id"), opts)

	query, args, err := postgres.Query("property.Find", q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError("property.Find", err, "", nil)
	}
	defer rows.Close()

	var properties []*Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, postgres.MapError("property.Find", err, "", nil)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError("property.Find", err, "", nil)
	}
	return properties, nil
}

// Update writes every mutable column of p in a single statement.
func (r *Repository) Update(ctx context.Context, p *Property) error {
	query := `
		UPDATE properties
		SET property_name = $2, property_description = $3, data_type = $4, entity_type = $5,
			is_required = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.DB.QueryRowContext(ctx, query,
		p.ID, p.PropertyName, p.PropertyDescription, p.DataType, p.EntityType, p.IsRequired,
	).Scan(&p.UpdatedAt)
	return postgres.MapError("property.Update", err, "property not found", map[string]any{"id": p.ID})
}

// SoftDelete stamps deleted_at on p and records the new timestamps on it.
func (r *Repository) SoftDelete(ctx context.Context, p *Property) error {
	query := `
		UPDATE properties
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING deleted_at, updated_at`

	var deletedAt sql.NullTime
	err := r.db.DB.QueryRowContext(ctx, query, p.ID).Scan(&deletedAt, &p.UpdatedAt)
	if err != nil {
		return postgres.MapError("property.SoftDelete", err, "property not found", map[string]any{"id": p.ID})
	}
	p.DeletedAt = &deletedAt.Time
	return nil
}

func (r *Repository) HardDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.DB.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError("property.HardDelete", err, "", nil)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return postgres.MapError("property.HardDelete", err, "", nil)
	}
	if n == 0 {
		return catalog.NotFound("property.HardDelete", "property not found", map[string]any{"id": id})
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProperty(row scanner) (*Property, error) {
	p := &Property{}
	var description sql.NullString
	var deletedAt sql.NullTime

	if err := row.Scan(
		&p.ID, &p.PropertyName, &description, &p.DataType, &p.EntityType, &p.IsRequired,
		&p.CreatedAt, &p.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		p.PropertyDescription = &description.String
	}
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}
	return p, nil
}

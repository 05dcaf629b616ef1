package metricset

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/storage/postgres"
)

const selectColumns = `id, status, short_name, placement, metadata, created_at, updated_at, deleted_at`

var sortFields = map[string]string{
	"shortName": "short_name",
	"status":    "status",
	"placement": "placement",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type Repository struct {
	db *postgres.Client
}

func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, ms *MetricSet) error {
	md, err := postgres.EncodeJSON(ms.MetaData)
	if err != nil {
		return catalog.Internal("metricset.Create", err)
	}

	query := `
		INSERT INTO metric_sets (id, status, short_name, placement, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err = r.db.DB.QueryRowContext(ctx, query,
		ms.ID, ms.Status, ms.ShortName, ms.Placement, md,
	).Scan(&ms.CreatedAt, &ms.UpdatedAt)
	return postgres.MapError("metricset.Create", err, "", nil)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*MetricSet, error) {
	q := postgres.Builder.Select(selectColumns).From("metric_sets").Where(sq.Eq{"id": id})
	query, args, err := postgres.Query("metricset.GetByID", postgres.NotDeleted(q, withDeleted))
	if err != nil {
		return nil, err
	}

	ms, err := scanMetricSet(r.db.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, postgres.MapError("metricset.GetByID", err, "", nil)
	}
	return ms, nil
}

func (r *Repository) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*MetricSet, error) {
	orderBy, err := opts.OrderBy(sortFields, "created_at ASC")
	if err != nil {
		return nil, err
	}

	eq := sq.Eq{}
	postgres.EqIfSet(eq, "status", filter.Status)
	postgres.EqIfSet(eq, "short_name", filter.ShortName)
	postgres.EqIfSet(eq, "placement", filter.Placement)

	q := postgres.Builder.Select(selectColumns).From("metric_sets")
	q = postgres.NotDeleted(postgres.Where(q, eq), opts.WithDeleted)
	q = postgres.Page(q.OrderBy(orderBy, "id"), opts)

	query, args, err := postgres.Query("metricset.Find", q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError("metricset.Find", err, "", nil)
	}
	defer rows.Close()

	var sets []*MetricSet
	for rows.Next() {
		ms, err := scanMetricSet(rows)
		if err != nil {
			return nil, postgres.MapError("metricset.Find", err, "", nil)
		}
		sets = append(sets, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError("metricset.Find", err, "", nil)
	}
	return sets, nil
}

func (r *Repository) Update(ctx context.Context, ms *MetricSet) error {
	md, err := postgres.EncodeJSON(ms.MetaData)
	if err != nil {
		return catalog.Internal("metricset.Update", err)
	}

	query := `
		UPDATE metric_sets
		SET status = $2, short_name = $3, placement = $4, metadata = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err = r.db.DB.QueryRowContext(ctx, query,
		ms.ID, ms.Status, ms.ShortName, ms.Placement, md,
	).Scan(&ms.UpdatedAt)
	return postgres.MapError("metricset.Update", err, "metric set not found", map[string]any{"id": ms.ID})
}

func (r *Repository) SoftDelete(ctx context.Context, ms *MetricSet) error {
	query := `
		UPDATE metric_sets
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING deleted_at, updated_at`

	var deletedAt sql.NullTime
	if err := r.db.DB.QueryRowContext(ctx, query, ms.ID).Scan(&deletedAt, &ms.UpdatedAt); err != nil {
		return postgres.MapError("metricset.SoftDelete", err, "metric set not found", map[string]any{"id": ms.ID})
	}
	ms.DeletedAt = &deletedAt.Time
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMetricSet(row scanner) (*MetricSet, error) {
	ms := &MetricSet{}
	var md []byte
	var deletedAt sql.NullTime

	if err := row.Scan(
		&ms.ID, &ms.Status, &ms.ShortName, &ms.Placement, &md, &ms.CreatedAt, &ms.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		ms.DeletedAt = &deletedAt.Time
	}

	var err error
	if ms.MetaData, err = postgres.DecodeJSON(md); err != nil {
		return nil, err
	}
	return ms, nil
}

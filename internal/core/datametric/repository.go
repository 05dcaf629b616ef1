package datametric

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/storage/postgres"
)

const selectColumns = `id, data_id, metric_type, name, metadata, created_at, updated_at, deleted_at`

var sortFields = map[string]string{
	"name":       "name",
	"metricType": "metric_type",
	"dataId":     "data_id",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

type Repository struct {
	db *postgres.Client
}

func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, dm *DataMetric) error {
	md, err := postgres.EncodeJSON(dm.MetaData)
	if err != nil {
		return catalog.Internal("datametric.Create", err)
	}

	query := `
		INSERT INTO data_metrics (id, data_id, metric_type, name, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err = r.db.DB.QueryRowContext(ctx, query,
		dm.ID, dm.DataID, dm.MetricType, dm.Name, md,
	).Scan(&dm.CreatedAt, &dm.UpdatedAt)
	return postgres.MapError("datametric.Create", err, "", nil)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*DataMetric, error) {
	q := postgres.Builder.Select(selectColumns).From("data_metrics").Where(sq.Eq{"id": id})
	query, args, err := postgres.Query("datametric.GetByID", postgres.NotDeleted(q, withDeleted))
	if err != nil {
		return nil, err
	}

	dm, err := scanDataMetric(r.db.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, postgres.MapError("datametric.GetByID", err, "", nil)
	}
	return dm, nil
}

func (r *Repository) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*DataMetric, error) {
	orderBy, err := opts.OrderBy(sortFields, "created_at ASC")
	if err != nil {
		return nil, err
	}

	eq := sq.Eq{}
	postgres.EqIfSet(eq, "data_id", filter.DataID)
	postgres.EqIfSet(eq, "metric_type", filter.MetricType)
	postgres.EqIfSet(eq, "name", filter.Name)

	q := postgres.Builder.Select(selectColumns).From("data_metrics")
	q = postgres.NotDeleted(postgres.Where(q, eq), opts.WithDeleted)
	q = postgres.Page(q.OrderBy(orderBy, "id"), opts)

	query, args, err := postgres.Query("datametric.Find", q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError("datametric.Find", err, "", nil)
	}
	defer rows.Close()

	var out []*DataMetric
	for rows.Next() {
		dm, err := scanDataMetric(rows)
		if err != nil {
			return nil, postgres.MapError("datametric.Find", err, "", nil)
		}
		out = append(out, dm)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError("datametric.Find", err, "", nil)
	}
	return out, nil
}

func (r *Repository) Update(ctx context.Context, dm *DataMetric) error {
	md, err := postgres.EncodeJSON(dm.MetaData)
	if err != nil {
		return catalog.Internal("datametric.Update", err)
	}

	query := `
		UPDATE data_metrics
		SET data_id = $2, metric_type = $3, name = $4, metadata = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err = r.db.DB.QueryRowContext(ctx, query,
		dm.ID, dm.DataID, dm.MetricType, dm.Name, md,
	).Scan(&dm.UpdatedAt)
	return postgres.MapError("datametric.Update", err, "data metric not found", map[string]any{"id": dm.ID})
}

func (r *Repository) SoftDelete(ctx context.Context, dm *DataMetric) error {
	query := `
		UPDATE data_metrics
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING deleted_at, updated_at`

	var deletedAt sql.NullTime
	if err := r.db.DB.QueryRowContext(ctx, query, dm.ID).Scan(&deletedAt, &dm.UpdatedAt); err != nil {
		return postgres.MapError("datametric.SoftDelete", err, "data metric not found", map[string]any{"id": dm.ID})
	}
	dm.DeletedAt = &deletedAt.Time
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDataMetric(row scanner) (*DataMetric, error) {
	dm := &DataMetric{}
	var md []byte
	var deletedAt sql.NullTime

	if err := row.Scan(
		&dm.ID, &dm.DataID, &dm.MetricType, &dm.Name, &md, &dm.CreatedAt, &dm.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		dm.DeletedAt = &deletedAt.Time
	}

	var err error
	if dm.MetaData, err = postgres.DecodeJSON(md); err != nil {
		return nil, err
	}
	return dm, nil
}

package metric

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/storage/postgres"
)

const selectColumns = `id, metric_set_id, parent_section_id, parent_metric_id, data_metric_id, status, name, name_suffix, metadata, created_at, updated_at, deleted_at`

var sortFields = map[string]string{
	"name":        "name",
	"status":      "status",
	"metricSetId": "metric_set_id",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// Repository persists metrics. MetaData is stored keyed by property id.
type Repository struct {
	db *postgres.Client
}

func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, m *Metric) error {
	md, err := postgres.EncodeJSON(m.MetaData)
	if err != nil {
		return catalog.Internal("metric.Create", err)
	}

	query := `
		INSERT INTO metrics (id, metric_set_id, parent_section_id, parent_metric_id, data_metric_id, status, name, name_suffix, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err = r.db.DB.QueryRowContext(ctx, query,
		m.ID, m.MetricSetID, m.ParentSectionID, m.ParentMetricID, m.DataMetricID, m.Status, m.Name, m.NameSuffix, md,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return postgres.MapError("metric.Create", err, "", nil)
}

// GetByID returns (nil, nil) when no matching row exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*Metric, error) {
	q := postgres.Builder.Select(selectColumns).From("metrics").Where(sq.Eq{"id": id})
	query, args, err := postgres.Query("metric.GetByID", postgres.NotDeleted(q, withDeleted))
	if err != nil {
		return nil, err
	}

	m, err := scanMetric(r.db.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, postgres.MapError("metric.GetByID", err, "", nil)
	}
	return m, nil
}

func (r *Repository) Find(ctx context.Context, filter Filter, opts catalog.FindOptions) ([]*Metric, error) {
	orderBy, err := opts.OrderBy(sortFields, "created_at ASC")
	if err != nil {
		return nil, err
	}

	eq := sq.Eq{}
	postgres.EqIfSet(eq, "metric_set_id", filter.MetricSetID)
	postgres.EqIfSet(eq, "parent_section_id", filter.ParentSectionID)
	postgres.EqIfSet(eq, "parent_metric_id", filter.ParentMetricID)
	postgres.EqIfSet(eq, "data_metric_id", filter.DataMetricID)
	postgres.EqIfSet(eq, "status", filter.Status)
	postgres.EqIfSet(eq, "name", filter.Name)

	q := postgres.Builder.Select(selectColumns).From("metrics")
	q = postgres.NotDeleted(postgres.Where(q, eq), opts.WithDeleted)
	q = postgres.Page(q.OrderBy(orderBy, "id"), opts)

	query, args, err := postgres.Query("metric.Find", q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError("metric.Find", err, "", nil)
	}
	defer rows.Close()

	var metrics []*Metric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, postgres.MapError("metric.Find", err, "", nil)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError("metric.Find", err, "", nil)
	}
	return metrics, nil
}

func (r *Repository) Update(ctx context.Context, m *Metric) error {
	md, err := postgres.EncodeJSON(m.MetaData)
	if err != nil {
		return catalog.Internal("metric.Update", err)
	}

	query := `
		UPDATE metrics
		SET metric_set_id = $2, parent_section_id = $3, parent_metric_id = $4, data_metric_id = $5,
			status = $6, name = $7, name_suffix = $8, metadata = $9, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err = r.db.DB.QueryRowContext(ctx, query,
		m.ID, m.MetricSetID, m.ParentSectionID, m.ParentMetricID, m.DataMetricID, m.Status, m.Name, m.NameSuffix, md,
	).Scan(&m.UpdatedAt)
	return postgres.MapError("metric.Update", err, "metric not found", map[string]any{"id": m.ID})
}

func (r *Repository) SoftDelete(ctx context.Context, m *Metric) error {
	query := `
		UPDATE metrics
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING deleted_at, updated_at`

	var deletedAt sql.NullTime
	if err := r.db.DB.QueryRowContext(ctx, query, m.ID).Scan(&deletedAt, &m.UpdatedAt); err != nil {
		return postgres.MapError("metric.SoftDelete", err, "metric not found", map[string]any{"id": m.ID})
	}
	m.DeletedAt = &deletedAt.Time
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMetric(row scanner) (*Metric, error) {
	m := &Metric{}
	var parentSection, parentMetric, dataMetric uuid.NullUUID
	var suffix sql.NullString
	var md []byte
	var deletedAt sql.NullTime

	if err := row.Scan(
		&m.ID, &m.MetricSetID, &parentSection, &parentMetric, &dataMetric, &m.Status, &m.Name, &suffix, &md,
		&m.CreatedAt, &m.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}

	m.ParentSectionID = postgres.UUIDPtr(parentSection)
	m.ParentMetricID = postgres.UUIDPtr(parentMetric)
	m.DataMetricID = postgres.UUIDPtr(dataMetric)
	if suffix.Valid {
		m.NameSuffix = &suffix.String
	}
	if deletedAt.Valid {
		m.DeletedAt = &deletedAt.Time
	}

	var err error
	if m.MetaData, err = postgres.DecodeJSON(md); err != nil {
		return nil, err
	}
	return m, nil
}
